package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/deepdrunktalk/backend/internal/server/models"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingFields),
			errors.Is(err, common.ErrPasswordMismatch),
			errors.Is(err, common.ErrUserExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.internalError(c, "registering user", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, common.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			s.internalError(c, "logging in user", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.users.Settings(c.Request.Context(), UserID(c))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.internalError(c, "loading settings", err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	var req models.UserSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.users.UpdateSettings(c.Request.Context(), UserID(c), req.VolumeLevel, req.RefreshFrequency); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.internalError(c, "updating settings", err)
		return
	}

	c.Status(http.StatusOK)
}

func (s *Server) startConversation(c *gin.Context) {
	result, err := s.conversations.Start(c.Request.Context(), UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConversationActive):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			s.internalError(c, "starting conversation", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversationId": result.ConversationID,
		"question":       result.Question,
	})
}

func (s *Server) stopConversation(c *gin.Context) {
	conversationID, ok := pathID(c)
	if !ok {
		return
	}

	stopped, err := s.conversations.Stop(c.Request.Context(), UserID(c), conversationID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.internalError(c, "stopping conversation", err)
		return
	}
	if !stopped {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no matching open conversation"})
		return
	}

	c.Status(http.StatusOK)
}

func (s *Server) listConversations(c *gin.Context) {
	summaries, err := s.conversations.List(c.Request.Context(), UserID(c))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.internalError(c, "listing conversations", err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

func (s *Server) deleteConversation(c *gin.Context) {
	conversationID, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := s.conversations.Delete(c.Request.Context(), UserID(c), conversationID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.internalError(c, "deleting conversation", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) uploadAudio(c *gin.Context) {
	conversationID, ok := pathID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": common.ErrInvalidUpload.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.internalError(c, "opening uploaded file", err)
		return
	}
	defer file.Close()

	url, err := s.audio.Store(c.Request.Context(), UserID(c), conversationID, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, common.ErrInvalidUpload):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			s.internalError(c, "storing audio", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *Server) fetchAudio(c *gin.Context) {
	conversationID, ok := pathID(c)
	if !ok {
		return
	}

	body, contentType, err := s.audio.Fetch(c.Request.Context(), UserID(c), conversationID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no audio for conversation"})
		default:
			s.internalError(c, "fetching audio", err)
		}
		return
	}
	defer body.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		s.log.Error(c.Request.Context(), "streaming audio", "error", err)
	}
}

// pathID parses the :id path parameter. On failure it writes a 400 response
// and returns false.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return 0, false
	}
	return id, true
}

// internalError hides details from the client and logs them instead.
func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.log.Error(c.Request.Context(), msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

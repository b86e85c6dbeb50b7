// Package httpapi exposes the backend over HTTP: account endpoints,
// conversation lifecycle, and audio artifact upload/download. Every route
// except the allow-listed ones sits behind the token gate.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/deepdrunktalk/backend/internal/logging"
	"github.com/deepdrunktalk/backend/internal/server/config"
	"github.com/deepdrunktalk/backend/internal/server/models"
	"github.com/deepdrunktalk/backend/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// UserService is the slice of the user service the handlers need.
type UserService interface {
	Register(ctx context.Context, name, email, password, confirmPassword string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Settings(ctx context.Context, userID int64) (*models.UserSettings, error)
	UpdateSettings(ctx context.Context, userID int64, volumeLevel, refreshFrequency int) error
}

// ConversationService is the slice of the conversation service the handlers need.
type ConversationService interface {
	Start(ctx context.Context, userID int64) (*services.StartResult, error)
	Stop(ctx context.Context, userID, conversationID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]models.ConversationSummary, error)
	Delete(ctx context.Context, userID, conversationID int64) (bool, error)
}

// AudioService is the slice of the audio service the handlers need.
type AudioService interface {
	Store(ctx context.Context, userID, conversationID int64, filename string, size int64, r io.Reader) (string, error)
	Fetch(ctx context.Context, userID, conversationID int64) (io.ReadCloser, string, error)
}

// Server wires the gin engine, the token gate, and the handlers together.
type Server struct {
	cfg           *config.Config
	log           logging.Logger
	users         UserService
	conversations ConversationService
	audio         AudioService

	engine *gin.Engine
	http   *http.Server
}

func NewServer(cfg *config.Config, log logging.Logger, users UserService, conversations ConversationService, audio AudioService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:           cfg,
		log:           log,
		users:         users,
		conversations: conversations,
		audio:         audio,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.tokenGate())
	s.registerRoutes(engine)

	s.engine = engine
	s.http = &http.Server{Addr: cfg.Addr, Handler: engine}
	return s
}

func (s *Server) registerRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/ping", s.ping)

	api.POST("/users/register", s.register)
	api.POST("/users/login", s.login)
	api.GET("/users/settings", s.getSettings)
	api.PUT("/users/settings", s.updateSettings)

	api.POST("/conversations/start", s.startConversation)
	api.GET("/conversations", s.listConversations)
	api.PUT("/conversations/:id/stop", s.stopConversation)
	api.DELETE("/conversations/:id", s.deleteConversation)
	api.POST("/conversations/:id/audio", s.uploadAudio)
	api.GET("/conversations/:id/audio", s.fetchAudio)
}

// Handler exposes the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info(ctx, "http server listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info(ctx, "http server shutting down")
	return s.http.Shutdown(shutdownCtx)
}

package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/deepdrunktalk/backend/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// ctxUserIDKey is the gin context key under which the gate stores the
// authenticated user id.
const ctxUserIDKey = "httpapi.userID"

// Paths served without a token. Matched by prefix so variants like
// /swagger/index.html pass too.
var openPrefixes = []string{
	"/api/users/login",
	"/api/users/register",
	"/api/ping",
	"/swagger",
}

// UserID returns the authenticated user id stored by the token gate. Zero
// means the gate did not run, which only happens on allow-listed routes.
func UserID(c *gin.Context) int64 {
	id, _ := c.Get(ctxUserIDKey)
	userID, _ := id.(int64)
	return userID
}

// tokenGate authenticates every request before routing. CORS preflights pass
// untouched, allow-listed paths skip auth, everything else needs a valid
// bearer token. The token itself is never logged.
func (s *Server) tokenGate() gin.HandlerFunc {
	secret := []byte(s.cfg.SecretKey)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range openPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.log.Warn(c.Request.Context(), "request without bearer token", "path", path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		// A JWT has exactly three segments; reject anything else before
		// touching the crypto.
		if strings.Count(token, ".") != 2 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrTokenMalformed.Error()})
			return
		}

		userID, err := auth.UserIDFromToken(token, secret)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrTokenExpired),
				errors.Is(err, common.ErrTokenMalformed),
				errors.Is(err, common.ErrTokenInvalidClaims):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			default:
				s.log.Error(c.Request.Context(), "token verification failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

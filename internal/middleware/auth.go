package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/models"
	"github.com/BruksfildServices01/barber-calendar/internal/session"
)

const ContextUser = "user"

// TokenVerifier is satisfied by *session.Manager.
type TokenVerifier interface {
	Verify(token string) (*models.User, error)
}

func AuthMiddleware(sessions TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header is required.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Expected a Bearer token.")
			return
		}

		user, err := sessions.Verify(strings.TrimSpace(parts[1]))
		if errors.Is(err, session.ErrExpired) {
			httperr.Unauthorized(c, "session_expired", "Session has expired, please log in again.")
			return
		}
		if err != nil {
			httperr.Unauthorized(c, "invalid_token", "Invalid session token.")
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

// Actor names the caller in audit events.
func Actor(c *gin.Context) string {
	if u, ok := CurrentUser(c); ok {
		return u.Email
	}
	return ""
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/middleware"
	"github.com/BruksfildServices01/barber-calendar/internal/session"
)

type AuthHandler struct {
	sessions *session.Manager
	log      *zap.Logger
}

func NewAuthHandler(sessions *session.Manager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, log: log}
}

// --------- Requests ---------

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Email and password are required.")
		return
	}

	sess, err := h.sessions.Login(req.Email, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		h.log.Info("login refused", zap.String("ip", c.ClientIP()))
		httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
		return
	}
	if err != nil {
		writeError(c, h.log, err, "failed_to_generate_token")
		return
	}

	c.JSON(http.StatusOK, sess)
}

// Me returns the user behind the session token.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		httperr.Unauthorized(c, "user_not_in_context", "Not logged in.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

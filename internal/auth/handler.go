package auth

import (
	"net/http"

	"conciergerie_backend/platform/httpkit"
	"conciergerie_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// LoginRequest is the portal login payload.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// Handler serves the portal login and logout endpoints.
type Handler struct {
	sessions *Sessions
	log      *logger.Logger
}

// NewHandler creates the auth handler.
func NewHandler(sessions *Sessions, log *logger.Logger) *Handler {
	return &Handler{sessions: sessions, log: log}
}

// Login exchanges the shared portal secret for a session cookie. The
// response never says whether the secret or the payload was wrong.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		httpkit.Error(c, http.StatusUnauthorized, "identifiants invalides", nil)
		return
	}

	token, ok := h.sessions.Authenticate(req.Password)
	if !ok {
		h.log.Warn("portal login rejected", "client_ip", c.ClientIP())
		httpkit.Error(c, http.StatusUnauthorized, "identifiants invalides", nil)
		return
	}

	h.sessions.SetCookie(c, token)
	httpkit.OK(c, gin.H{"success": true})
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c)
	httpkit.OK(c, gin.H{"success": true})
}

// Package auth provides the staff portal session: a shared secret exchanged
// for an HTTP-only cookie carrying a SHA-256 signature of that secret.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"conciergerie_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// CookieName is the portal session cookie.
const CookieName = "portal_session"

// Sessions mints and verifies portal session tokens. The token is derived
// from the configured secret only, so every instance verifies without
// shared session state.
type Sessions struct {
	secret []byte
	token  string
	ttl    time.Duration
	secure bool
}

// NewSessions derives the session token from the portal secret.
func NewSessions(cfg config.PortalConfig) *Sessions {
	sum := sha256.Sum256([]byte("portal-session:" + cfg.GetPortalSecret()))
	return &Sessions{
		secret: []byte(cfg.GetPortalSecret()),
		token:  hex.EncodeToString(sum[:]),
		ttl:    cfg.GetPortalSessionTTL(),
		secure: cfg.GetPortalCookieSecure(),
	}
}

// Authenticate checks a submitted secret in constant time and returns the
// session token when it matches.
func (s *Sessions) Authenticate(secret string) (string, bool) {
	if subtle.ConstantTimeCompare([]byte(secret), s.secret) != 1 {
		return "", false
	}
	return s.token, true
}

// Verify reports whether a presented cookie value is the current session
// token, in constant time.
func (s *Sessions) Verify(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1
}

// TTL returns the configured session lifetime.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// SetCookie writes the session cookie on the response.
func (s *Sessions) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
}

// Middleware guards staff routes: requests without a valid session cookie
// are rejected with 401 before reaching the handler.
func (s *Sessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || !s.Verify(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session invalide"})
			return
		}
		c.Next()
	}
}

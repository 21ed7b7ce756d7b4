package auth

import (
	apphttp "conciergerie_backend/internal/http"
	"conciergerie_backend/platform/config"
	"conciergerie_backend/platform/logger"
)

// Module represents the portal auth module.
type Module struct {
	sessions *Sessions
	handler  *Handler
}

// NewModule creates the auth module with all dependencies wired.
func NewModule(cfg config.PortalConfig, log *logger.Logger) *Module {
	sessions := NewSessions(cfg)
	return &Module{
		sessions: sessions,
		handler:  NewHandler(sessions, log),
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "auth"
}

// Sessions exposes the session verifier so the router can build the portal
// middleware before routes are registered.
func (m *Module) Sessions() *Sessions {
	return m.sessions
}

// RegisterRoutes registers login/logout outside the guarded portal group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/portal/login", ctx.LoginRateLimiter.RateLimit(), m.handler.Login)
	ctx.V1.POST("/portal/logout", m.handler.Logout)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

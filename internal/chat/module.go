package chat

import (
	"conciergerie_backend/internal/chat/llm"
	apphttp "conciergerie_backend/internal/http"
	"conciergerie_backend/platform/logger"
	"conciergerie_backend/platform/validator"
)

// Module represents the chat domain module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates the chat module with all dependencies wired.
func NewModule(provider llm.Provider, submitter Submitter, idem IdempotencyStore, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(provider, submitter, idem, log)
	return &Module{
		handler: NewHandler(svc, val, log),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes registers the chat routes. Both endpoints call a paid LLM
// API, so both sit behind the stricter rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/chat", ctx.ChatRateLimiter.RateLimit(), m.handler.ClientChat)
	ctx.Portal.POST("/chat", ctx.ChatRateLimiter.RateLimit(), m.handler.CollaboratorChat)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

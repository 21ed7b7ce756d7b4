// Package requests provides the quote-request bounded context: public
// submission, staff listing and detail, and the status workflow.
package requests

import (
	apphttp "conciergerie_backend/internal/http"
	"conciergerie_backend/internal/requests/handler"
	"conciergerie_backend/internal/requests/repository"
	"conciergerie_backend/internal/requests/service"
	"conciergerie_backend/platform/cache"
	"conciergerie_backend/platform/logger"
	"conciergerie_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the quote-request bounded context implementing http.Module.
type Module struct {
	svc     *service.Service
	handler *handler.Handler
}

// NewModule creates the requests module with all dependencies wired. views
// may be nil when no cache is configured.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, views *cache.Store, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, val, views, log)
	return &Module{
		svc:     svc,
		handler: handler.New(svc, log),
	}
}

// Service exposes the requests service for cross-module wiring (chat
// auto-submission, quote finalization).
func (m *Module) Service() *service.Service {
	return m.svc
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "requests"
}

// RegisterRoutes mounts the public submission endpoint on the open API
// group and the staff endpoints behind the portal session guard.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/quote-requests", m.handler.Submit)

	ctx.Portal.GET("/quote-requests", m.handler.List)
	ctx.Portal.GET("/quote-requests/:id", m.handler.GetByID)
	ctx.Portal.PATCH("/quote-requests/:id/status", m.handler.UpdateStatus)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

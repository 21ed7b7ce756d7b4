// Package quotes provides the quote bounded context: staff finalization of
// quote requests into sent quotes and the document render-and-archive
// action.
package quotes

import (
	apphttp "conciergerie_backend/internal/http"
	"conciergerie_backend/internal/quotes/handler"
	"conciergerie_backend/internal/quotes/repository"
	"conciergerie_backend/internal/quotes/service"
	"conciergerie_backend/internal/render"
	"conciergerie_backend/internal/storage"
	"conciergerie_backend/platform/logger"
	"conciergerie_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the quotes bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the quotes module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, requests service.RequestGateway, renderer *render.Renderer, store storage.ObjectStore, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, requests, renderer, store, bucket, val, log)
	return &Module{handler: handler.New(svc, log)}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "quotes"
}

// RegisterRoutes mounts every quote endpoint behind the portal session
// guard.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Portal.POST("/quote-requests/:id/finalize", m.handler.Finalize)
	ctx.Portal.POST("/documents", m.handler.SaveDocument)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"conciergerie_backend/platform/config"
	"conciergerie_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
// Each domain module implements this interface to encapsulate its own
// route setup, keeping the main router decoupled from specific endpoints.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router group.
	// The RouterContext provides access to shared middleware and configuration.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
// This avoids passing many parameters to each module's RegisterRoutes method.
type RouterContext struct {
	// Engine is the root Gin engine for modules that need engine-level access.
	Engine *gin.Engine
	// V1 is the public /api/v1 route group.
	V1 *gin.RouterGroup
	// Portal is the staff-only route group under /api/v1/portal, guarded by
	// the session cookie middleware.
	Portal *gin.RouterGroup
	// Config is the portal session configuration (scoped access).
	Config config.PortalConfig
	// PortalMiddleware provides the session cookie middleware for modules
	// that mount staff routes outside the Portal group.
	PortalMiddleware gin.HandlerFunc
	// ChatRateLimiter is the stricter rate limiter for LLM-backed routes.
	ChatRateLimiter *httpkit.ChatRateLimiter
	// LoginRateLimiter is the stricter rate limiter for the login route.
	LoginRateLimiter *httpkit.LoginRateLimiter
}

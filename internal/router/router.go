package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/neofitness/gym-management/internal/handler"
	"github.com/neofitness/gym-management/internal/middleware"
)

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers registration and login under /v1/auth and the
// caller's profile at /v1/me. Any role may read its own profile.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers guest endpoints: the cached price list and
// catalog, and the gateway's payment notification, which is authenticated by
// its signature rather than a token.
func RegisterPublic(e *echo.Echo, p *handler.PricingHandler, cat *handler.CatalogHandler, pay *handler.PaymentHandler, cache *middleware.ResponseCache) {
	cached := cache.Middleware()
	e.GET("/v1/pricings", p.List, cached)
	e.GET("/v1/pricings/:id", p.Get, cached)
	e.GET("/v1/branches", cat.Branches, cached)
	e.GET("/v1/services", cat.Services, cached)
	e.GET("/v1/trainers", cat.Trainers, cached)

	e.POST("/v1/payments/momo/ipn", pay.IPN)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/handler"
	"github.com/neofitness/gym-management/internal/middleware"
)

// CustomerHandlers groups the handlers behind customer routes.
type CustomerHandlers struct {
	Pricing *handler.PricingHandler
	Payment *handler.PaymentHandler
	Package *handler.PackageHandler
	Booking *handler.BookingHandler
}

// RegisterCustomer registers customer-scoped endpoints under /v1. All routes
// require a valid JWT and the customer role. limit guards the endpoints that
// reach the gateway or take row locks.
func RegisterCustomer(e *echo.Echo, h CustomerHandlers, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(auth.RoleCustomer),
	)
	g.POST("/pricings/:id/trial", h.Pricing.RegisterTrial)

	g.POST("/payments/charge", h.Payment.Charge, limit)
	g.GET("/my-payments", h.Payment.Mine)

	g.GET("/my-packages", h.Package.Mine)
	g.POST("/my-packages/:id/cancel", h.Package.CancelMine)

	g.POST("/bookings", h.Booking.Create, limit)
	g.GET("/my-bookings", h.Booking.Mine)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/handler"
	"github.com/neofitness/gym-management/internal/middleware"
)

// AdminHandlers groups the handlers behind admin routes.
type AdminHandlers struct {
	Pricing *handler.PricingHandler
	Payment *handler.PaymentHandler
	Package *handler.PackageHandler
	Booking *handler.BookingHandler
}

// RegisterAdmin registers admin-scoped endpoints under /v1.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(auth.RoleAdmin),
	)

	// ---- Pricing tiers ----
	g.POST("/pricings", h.Pricing.Create)
	g.PUT("/pricings/:id", h.Pricing.Update)
	g.DELETE("/pricings/:id", h.Pricing.Delete)

	// ---- Ledger ----
	g.GET("/payments", h.Payment.List)
	g.POST("/packages/:id/cancel", h.Package.Cancel)

	g.GET("/bookings", h.Booking.List)
}

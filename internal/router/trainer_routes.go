package router

import (
	"github.com/labstack/echo/v4"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/handler"
	"github.com/neofitness/gym-management/internal/middleware"
)

// RegisterTrainer registers the trainer's booking list and the status
// transition shared by trainers and admins. Whether a trainer may touch a
// given booking is decided by the scheduler.
func RegisterTrainer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	authn := middleware.JWTAuth(jwtSecret)

	e.GET("/v1/trainer/bookings", h.Assigned, authn, middleware.RequireRole(auth.RoleTrainer))
	e.PATCH("/v1/bookings/:id/status", h.UpdateStatus, authn, middleware.RequireRole(auth.RoleAdmin, auth.RoleTrainer))
}

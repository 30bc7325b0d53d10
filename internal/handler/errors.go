package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/repository"
	"github.com/neofitness/gym-management/internal/service"
)

// writeError maps the error taxonomy onto HTTP statuses. Unclassified errors
// are logged and answered with a generic 500.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, repository.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, repository.ErrInvalid):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrGateway):
		status, msg = http.StatusBadGateway, "payment gateway unavailable"
		log.Warn("gateway failure", zap.String("path", c.Path()), zap.Error(err))
	default:
		log.Error("request failed", zap.String("method", c.Request().Method), zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": msg})
}

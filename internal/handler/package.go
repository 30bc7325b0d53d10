package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/model"
)

// Packages lists and cancels customer packages.
type Packages interface {
	ListForCustomer(ctx context.Context, customerID uint64) ([]model.CustomerPackageView, error)
	Cancel(ctx context.Context, packageID uint64, ownerID *uint64) (*model.CustomerPackage, error)
}

type PackageHandler struct {
	packages  Packages
	customers CustomerResolver
	log       *zap.Logger
}

func NewPackageHandler(packages Packages, customers CustomerResolver, log *zap.Logger) *PackageHandler {
	return &PackageHandler{packages: packages, customers: customers, log: log}
}

// Mine lists the caller's packages, newest first.
func (h *PackageHandler) Mine(c echo.Context) error {
	customerID, err := currentCustomer(c, h.customers)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items, err := h.packages.ListForCustomer(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CancelMine cancels one of the caller's pending or active packages.
func (h *PackageHandler) CancelMine(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	customerID, err := currentCustomer(c, h.customers)
	if err != nil {
		return writeError(c, h.log, err)
	}
	pkg, err := h.packages.Cancel(c.Request().Context(), id, &customerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, pkg)
}

// Cancel is the admin override.
func (h *PackageHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	pkg, err := h.packages.Cancel(c.Request().Context(), id, nil)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, pkg)
}

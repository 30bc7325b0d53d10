package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/model"
)

// Catalog lists the reference data a booking refers to.
type Catalog interface {
	ListBranches(ctx context.Context) ([]model.Branch, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	ListTrainers(ctx context.Context, branchID *uint64) ([]model.Trainer, error)
}

// CatalogHandler serves the public browse endpoints. Responses carry no
// account data.
type CatalogHandler struct {
	catalog Catalog
	log     *zap.Logger
}

func NewCatalogHandler(catalog Catalog, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

func (h *CatalogHandler) Branches(c echo.Context) error {
	items, err := h.catalog.ListBranches(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *CatalogHandler) Services(c echo.Context) error {
	items, err := h.catalog.ListServices(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Trainers accepts ?branch_id= to narrow the list to one branch.
func (h *CatalogHandler) Trainers(c echo.Context) error {
	branchID, err := queryID(c, "branch_id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	items, err := h.catalog.ListTrainers(c.Request().Context(), branchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

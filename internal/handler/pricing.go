package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/service"
)

// Pricing is the pricing resolver and catalogue editor.
type Pricing interface {
	Quote(ctx context.Context, tierID uint64) (service.Quote, error)
	ListQuotes(ctx context.Context) ([]service.Quote, error)
	CreateTier(ctx context.Context, in service.TierInput) (service.Quote, error)
	UpdateTier(ctx context.Context, id uint64, in service.TierInput) (service.Quote, error)
	DeleteTier(ctx context.Context, id uint64) error
}

// Trials registers free tiers.
type Trials interface {
	RegisterFreeTrial(ctx context.Context, customerID, tierID uint64) (*model.CustomerPackage, error)
}

// CachePurger drops cached pricing reads after a catalogue change.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// PricingHandler serves the public price list, admin tier edits and free
// trial registration.
type PricingHandler struct {
	pricing   Pricing
	trials    Trials
	customers CustomerResolver
	cache     CachePurger
	log       *zap.Logger
}

func NewPricingHandler(pricing Pricing, trials Trials, customers CustomerResolver, cache CachePurger, log *zap.Logger) *PricingHandler {
	return &PricingHandler{pricing: pricing, trials: trials, customers: customers, cache: cache, log: log}
}

type tierReq struct {
	PackageID     uint64          `json:"package_id" validate:"required"`
	BasePrice     decimal.Decimal `json:"base_price"`
	DurationLabel string          `json:"duration_label" validate:"required,max=50"`
	SessionCount  *int            `json:"session_count" validate:"omitempty,min=1"`
	PromotionID   *uint64         `json:"promotion_id" validate:"omitempty,min=1"`
}

func (r tierReq) input() service.TierInput {
	return service.TierInput{
		PackageID:     r.PackageID,
		BasePrice:     r.BasePrice,
		DurationLabel: r.DurationLabel,
		SessionCount:  r.SessionCount,
		PromotionID:   r.PromotionID,
	}
}

// List returns every tier priced at the current time.
func (h *PricingHandler) List(c echo.Context) error {
	quotes, err := h.pricing.ListQuotes(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": quotes})
}

// Get returns one tier priced at the current time.
func (h *PricingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	q, err := h.pricing.Quote(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *PricingHandler) Create(c echo.Context) error {
	var req tierReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	q, err := h.pricing.CreateTier(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.purge(c)
	return c.JSON(http.StatusCreated, q)
}

func (h *PricingHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req tierReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	q, err := h.pricing.UpdateTier(c.Request().Context(), id, req.input())
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.purge(c)
	return c.JSON(http.StatusOK, q)
}

func (h *PricingHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.pricing.DeleteTier(c.Request().Context(), id); err != nil {
		return writeError(c, h.log, err)
	}
	h.purge(c)
	return c.NoContent(http.StatusNoContent)
}

// RegisterTrial grants the calling customer a free tier once.
func (h *PricingHandler) RegisterTrial(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	customerID, err := currentCustomer(c, h.customers)
	if err != nil {
		return writeError(c, h.log, err)
	}
	pkg, err := h.trials.RegisterFreeTrial(c.Request().Context(), customerID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, pkg)
}

func (h *PricingHandler) purge(c echo.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Purge(c.Request().Context()); err != nil {
		h.log.Warn("pricing cache purge failed", zap.Error(err))
	}
}

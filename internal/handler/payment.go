package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/momo"
	"github.com/neofitness/gym-management/internal/service"
)

// Payments starts charges, accepts gateway confirmations and lists payments.
type Payments interface {
	InitiateCharge(ctx context.Context, customerID, tierID uint64) (*service.Charge, error)
	HandleConfirmation(ctx context.Context, n momo.IPN) error
	ListPayments(ctx context.Context, customerID *uint64, limit, offset int) ([]model.PaymentView, error)
}

type PaymentHandler struct {
	payments  Payments
	customers CustomerResolver
	log       *zap.Logger
}

func NewPaymentHandler(payments Payments, customers CustomerResolver, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, customers: customers, log: log}
}

type chargeReq struct {
	PricingTierID uint64 `json:"pricing_tier_id" validate:"required"`
}

// Charge returns the gateway pay URL for the chosen tier.
func (h *PaymentHandler) Charge(c echo.Context) error {
	var req chargeReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	customerID, err := currentCustomer(c, h.customers)
	if err != nil {
		return writeError(c, h.log, err)
	}
	ch, err := h.payments.InitiateCharge(c.Request().Context(), customerID, req.PricingTierID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, ch)
}

// IPN receives the gateway's signed payment notification. Accepted and
// ignored notifications are both answered 204 so the gateway stops retrying.
func (h *PaymentHandler) IPN(c echo.Context) error {
	var n momo.IPN
	if err := json.NewDecoder(c.Request().Body).Decode(&n); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.payments.HandleConfirmation(c.Request().Context(), n); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List is the admin view of all payments, optionally for one customer.
func (h *PaymentHandler) List(c echo.Context) error {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	items, err := h.payments.ListPayments(c.Request().Context(), customerID, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Mine lists the calling customer's payments.
func (h *PaymentHandler) Mine(c echo.Context) error {
	customerID, err := currentCustomer(c, h.customers)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items, err := h.payments.ListPayments(c.Request().Context(), &customerID, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/momo"
	"github.com/neofitness/gym-management/internal/repository"
)

// ErrGateway marks failures talking to the payment gateway.
var ErrGateway = errors.New("payment gateway error")

// Gateway is the slice of the wallet client the payment flow needs.
type Gateway interface {
	CreatePayment(ctx context.Context, req momo.PaymentRequest) (*momo.PaymentResponse, error)
	VerifyIPN(n momo.IPN) bool
}

// Charge is what the customer needs to complete a payment at the gateway.
type Charge struct {
	PayURL   string `json:"pay_url"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Deeplink string `json:"deeplink,omitempty"`
}

// orderContext rides through the gateway in extraData so the confirmation
// can be tied back to the customer and tier.
type orderContext struct {
	CustomerID    uint64 `json:"customer_id"`
	PricingTierID uint64 `json:"pricing_tier_id"`
}

func encodeOrderContext(oc orderContext) string {
	b, _ := json.Marshal(oc)
	return base64.StdEncoding.EncodeToString(b)
}

func decodeOrderContext(s string) (orderContext, error) {
	var oc orderContext
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return oc, err
	}
	if err := json.Unmarshal(raw, &oc); err != nil {
		return oc, err
	}
	if oc.CustomerID == 0 || oc.PricingTierID == 0 {
		return oc, errors.New("missing customer_id or pricing_tier_id")
	}
	return oc, nil
}

// PaymentService starts gateway charges and turns confirmed ones into
// packages.
type PaymentService struct {
	db          *sql.DB
	pricing     *PricingService
	tiers       *repository.PricingRepo
	payments    *repository.PaymentRepo
	customers   *repository.CustomerRepo
	ledger      *Ledger
	gateway     Gateway
	partnerCode string
	log         *zap.Logger
}

func NewPaymentService(db *sql.DB, pricing *PricingService, tiers *repository.PricingRepo, payments *repository.PaymentRepo,
	customers *repository.CustomerRepo, ledger *Ledger, gateway Gateway, partnerCode string, log *zap.Logger) *PaymentService {
	return &PaymentService{
		db:          db,
		pricing:     pricing,
		tiers:       tiers,
		payments:    payments,
		customers:   customers,
		ledger:      ledger,
		gateway:     gateway,
		partnerCode: partnerCode,
		log:         log,
	}
}

func (s *PaymentService) newOrderID() string {
	return s.partnerCode + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// InitiateCharge asks the gateway for a pay URL for the tier's current
// price. Free tiers go through trial registration instead.
func (s *PaymentService) InitiateCharge(ctx context.Context, customerID, tierID uint64) (*Charge, error) {
	q, err := s.pricing.Quote(ctx, tierID)
	if err != nil {
		return nil, err
	}
	if q.IsFree {
		return nil, repository.Errorf(repository.ErrInvalid, "pricing tier %d is free, register it as a trial", tierID)
	}
	amount := q.FinalPrice.Round(0).IntPart()
	if amount <= 0 {
		return nil, repository.Errorf(repository.ErrInvalid, "pricing tier %d rounds to a zero charge", tierID)
	}

	orderID := s.newOrderID()
	resp, err := s.gateway.CreatePayment(ctx, momo.PaymentRequest{
		OrderID:   orderID,
		RequestID: orderID,
		Amount:    amount,
		OrderInfo: fmt.Sprintf("Payment for %s (%s)", q.PackageName, q.DurationLabel),
		ExtraData: encodeOrderContext(orderContext{CustomerID: customerID, PricingTierID: tierID}),
	})
	if err != nil {
		s.log.Warn("gateway create failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return &Charge{PayURL: resp.PayURL, OrderID: orderID, Amount: amount, Deeplink: resp.Deeplink}, nil
}

// HandleConfirmation processes a gateway payment notification. A forged or
// malformed notification is rejected without side effects; a failed payment
// and a repeated confirmation are acknowledged with nil.
func (s *PaymentService) HandleConfirmation(ctx context.Context, n momo.IPN) error {
	if !s.gateway.VerifyIPN(n) {
		return repository.Errorf(repository.ErrInvalid, "invalid signature")
	}
	oc, err := decodeOrderContext(n.ExtraData)
	if err != nil {
		return repository.Errorf(repository.ErrInvalid, "malformed extraData: %v", err)
	}
	if !n.Succeeded() {
		s.log.Warn("payment not successful",
			zap.String("order_id", n.OrderID), zap.Int("result_code", n.ResultCode), zap.String("message", n.Message))
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := s.customers.LockTx(ctx, tx, oc.CustomerID); err != nil {
		return err
	}
	seen, err := s.payments.ExistsByGatewayOrderTx(ctx, tx, n.OrderID)
	if err != nil {
		return err
	}
	if seen {
		s.log.Info("duplicate payment confirmation", zap.String("order_id", n.OrderID))
		return nil
	}
	tier, err := s.tiers.GetTierTx(ctx, tx, oc.PricingTierID)
	if err != nil {
		return err
	}

	orderID := n.OrderID
	transID := strconv.FormatInt(n.TransID, 10)
	pay := &model.Payment{
		PackageID:      tier.PackageID,
		CustomerID:     oc.CustomerID,
		Amount:         decimal.NewFromInt(n.Amount),
		Method:         model.PaymentMethodMomo,
		Status:         model.PaymentStatusPaid,
		PaidAt:         s.ledger.now().UTC(),
		GatewayOrderID: &orderID,
		GatewayTransID: &transID,
	}
	if err := s.payments.InsertTx(ctx, tx, pay); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			s.log.Info("duplicate payment confirmation", zap.String("order_id", n.OrderID))
			return nil
		}
		return err
	}
	pkg, err := s.ledger.activate(ctx, tx, oc.CustomerID, tier, pay.ID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	s.log.Info("package activated",
		zap.String("order_id", n.OrderID), zap.Uint64("package_id", pkg.ID), zap.String("status", string(pkg.Status)))
	s.ledger.publishActivated(ctx, pkg, pay)
	return nil
}

// ListPayments returns payments newest first; customerID nil lists all.
func (s *PaymentService) ListPayments(ctx context.Context, customerID *uint64, limit, offset int) ([]model.PaymentView, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.payments.List(ctx, customerID, limit, offset)
}

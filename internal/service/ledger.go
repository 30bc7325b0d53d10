package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/queue"
	"github.com/neofitness/gym-management/internal/repository"
)

// Ledger turns payments into customer packages and keeps their session
// counters. A customer's packages never overlap in active time: a purchase
// made while another package is running is queued behind it.
type Ledger struct {
	db        *sql.DB
	tiers     *repository.PricingRepo
	packages  *repository.PackageRepo
	payments  *repository.PaymentRepo
	customers *repository.CustomerRepo
	events    EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewLedger(db *sql.DB, tiers *repository.PricingRepo, packages *repository.PackageRepo, payments *repository.PaymentRepo,
	customers *repository.CustomerRepo, events EventPublisher, log *zap.Logger) *Ledger {
	if events == nil {
		events = NopPublisher{}
	}
	return &Ledger{
		db:        db,
		tiers:     tiers,
		packages:  packages,
		payments:  payments,
		customers: customers,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// ActivateTx creates the customer package for a payment already inserted in
// tx. The caller must hold the customer's row lock.
func (l *Ledger) ActivateTx(ctx context.Context, tx *sql.Tx, customerID, tierID, paymentID uint64) (*model.CustomerPackage, error) {
	tier, err := l.tiers.GetTierTx(ctx, tx, tierID)
	if err != nil {
		return nil, err
	}
	return l.activate(ctx, tx, customerID, tier, paymentID)
}

func (l *Ledger) activate(ctx context.Context, tx *sql.Tx, customerID uint64, tier *model.PricingTier, paymentID uint64) (*model.CustomerPackage, error) {
	now := l.now().UTC()
	latest, err := l.packages.LatestQueuedExpiryTx(ctx, tx, customerID)
	if err != nil {
		return nil, fmt.Errorf("latest expiry: %w", err)
	}

	pkg := &model.CustomerPackage{
		CustomerID:    customerID,
		PricingTierID: tier.ID,
		PaymentID:     paymentID,
		TotalSessions: tier.SessionCount,
		ActivatedAt:   now,
		Status:        model.PackageActive,
	}
	if latest != nil {
		// queue behind the running package: start the day after it ends
		if next := latest.AddDate(0, 0, 1); next.After(now) {
			pkg.ActivatedAt = next
			pkg.Status = model.PackagePending
		}
	}
	pkg.ExpiresAt = ParseDuration(tier.DurationLabel).ExpiresAt(pkg.ActivatedAt)

	if err := l.packages.InsertTx(ctx, tx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// RegisterFreeTrial grants a free tier to a customer once. The tier must
// resolve to a final price of exactly zero right now.
func (l *Ledger) RegisterFreeTrial(ctx context.Context, customerID, tierID uint64) (*model.CustomerPackage, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := l.customers.LockTx(ctx, tx, customerID); err != nil {
		return nil, err
	}
	tier, err := l.tiers.GetTierTx(ctx, tx, tierID)
	if err != nil {
		return nil, err
	}
	now := l.now().UTC()
	if q := Resolve(*tier, now); !q.IsFree {
		return nil, repository.Errorf(repository.ErrInvalid, "pricing tier %d is not free (final price %s)", tierID, q.FinalPrice)
	}
	exists, err := l.packages.ExistsForTierTx(ctx, tx, customerID, tierID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.Errorf(repository.ErrConflict, "free trial for pricing tier %d already registered", tierID)
	}

	pay := &model.Payment{
		PackageID:  tier.PackageID,
		CustomerID: customerID,
		Amount:     decimal.Zero,
		Method:     model.PaymentMethodFreeTrial,
		Status:     model.PaymentStatusPaid,
		PaidAt:     now,
	}
	if err := l.payments.InsertTx(ctx, tx, pay); err != nil {
		return nil, err
	}
	pkg, err := l.activate(ctx, tx, customerID, tier, pay.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	l.publishActivated(ctx, pkg, pay)
	return pkg, nil
}

// DebitSessionTx consumes one session of a finite package inside tx. The
// package row stays locked until tx ends. Reaching the total flips an active
// package to used; a package with no credit left is rejected.
func (l *Ledger) DebitSessionTx(ctx context.Context, tx *sql.Tx, packageID uint64) (*model.CustomerPackage, error) {
	pkg, err := l.packages.GetForUpdateTx(ctx, tx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg.TotalSessions == nil {
		return pkg, nil
	}
	if pkg.SessionsUsed >= *pkg.TotalSessions {
		return nil, repository.Errorf(repository.ErrInvalid, "package %d has no sessions left", packageID)
	}
	pkg.SessionsUsed++
	if pkg.SessionsUsed == *pkg.TotalSessions && pkg.Status == model.PackageActive {
		pkg.Status = model.PackageUsed
	}
	if err := l.packages.UpdateUsageTx(ctx, tx, pkg.ID, pkg.SessionsUsed, pkg.Status); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Cancel stops a pending or active package. ownerID restricts the call to
// the owning customer; nil is the admin override.
func (l *Ledger) Cancel(ctx context.Context, packageID uint64, ownerID *uint64) (*model.CustomerPackage, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	pkg, err := l.packages.GetForUpdateTx(ctx, tx, packageID)
	if err != nil {
		return nil, err
	}
	if ownerID != nil && pkg.CustomerID != *ownerID {
		return nil, repository.Errorf(repository.ErrForbidden, "package %d belongs to another customer", packageID)
	}
	if pkg.Status != model.PackagePending && pkg.Status != model.PackageActive {
		return nil, repository.Errorf(repository.ErrInvalid, "package is %s and cannot be cancelled", pkg.Status)
	}
	if err := l.packages.UpdateStatusTx(ctx, tx, pkg.ID, model.PackageCancelled); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	pkg.Status = model.PackageCancelled
	return pkg, nil
}

// ListForCustomer returns the customer's packages with tier and payment
// details.
func (l *Ledger) ListForCustomer(ctx context.Context, customerID uint64) ([]model.CustomerPackageView, error) {
	return l.packages.ListByCustomer(ctx, customerID)
}

func (l *Ledger) publishActivated(ctx context.Context, pkg *model.CustomerPackage, pay *model.Payment) {
	ev := queue.PackageActivatedEvent{
		PackageID:     pkg.ID,
		CustomerID:    pkg.CustomerID,
		PricingTierID: pkg.PricingTierID,
		PaymentID:     pay.ID,
		Method:        pay.Method,
		Amount:        pay.Amount.StringFixed(2),
		Status:        string(pkg.Status),
		ActivatedAt:   pkg.ActivatedAt.Format(time.RFC3339),
		OccurredAt:    l.now().UTC().Format(time.RFC3339),
	}
	if pkg.ExpiresAt != nil {
		s := pkg.ExpiresAt.Format(time.RFC3339)
		ev.ExpiresAt = &s
	}
	if err := l.events.PublishPackageActivated(ctx, ev); err != nil {
		l.log.Warn("publish package.activated failed", zap.Uint64("package_id", pkg.ID), zap.Error(err))
	}
}

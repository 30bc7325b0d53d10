package service

import (
	"context"
	"database/sql"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/queue"
	"github.com/neofitness/gym-management/internal/repository"
)

func q(s string) string { return regexp.QuoteMeta(s) }

type recordingPublisher struct {
	mu        sync.Mutex
	activated []queue.PackageActivatedEvent
	changed   []queue.BookingStatusChangedEvent
}

func (p *recordingPublisher) PublishPackageActivated(_ context.Context, ev queue.PackageActivatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activated = append(p.activated, ev)
	return nil
}

func (p *recordingPublisher) PublishBookingStatusChanged(_ context.Context, ev queue.BookingStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, ev)
	return nil
}

type fixture struct {
	db        *sql.DB
	mock      sqlmock.Sqlmock
	events    *recordingPublisher
	tiers     *repository.PricingRepo
	packages  *repository.PackageRepo
	payments  *repository.PaymentRepo
	customers *repository.CustomerRepo
	trainers  *repository.TrainerRepo
	bookings  *repository.BookingRepo
	ledger    *Ledger
	scheduler *Scheduler
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:        db,
		mock:      mock,
		events:    &recordingPublisher{},
		tiers:     repository.NewPricingRepo(db),
		packages:  repository.NewPackageRepo(db),
		payments:  repository.NewPaymentRepo(db),
		customers: repository.NewCustomerRepo(db),
		trainers:  repository.NewTrainerRepo(db),
		bookings:  repository.NewBookingRepo(db),
	}
	log := zap.NewNop()
	f.ledger = NewLedger(db, f.tiers, f.packages, f.payments, f.customers, f.events, log)
	f.ledger.now = func() time.Time { return now }
	f.scheduler = NewScheduler(db, f.bookings, f.packages, f.trainers, f.ledger, f.events, log)
	f.scheduler.now = func() time.Time { return now }
	return f
}

var tierColumns = []string{"id", "package_id", "name", "description", "base_price", "duration_label",
	"session_count", "promotion_id", "promo_name", "discount_percent", "start_date", "end_date"}

func tierRow(id, packageID uint64, price, label string, sessions any) *sqlmock.Rows {
	return sqlmock.NewRows(tierColumns).
		AddRow(id, packageID, "Gym access", "", price, label, sessions, nil, nil, nil, nil, nil)
}

var packageColumns = []string{"id", "customer_id", "pricing_tier_id", "payment_id", "total_sessions",
	"sessions_used", "activated_at", "expires_at", "status"}

var bookingColumns = []string{"id", "customer_id", "trainer_id", "branch_id", "service_id",
	"customer_package_id", "start_time", "end_time", "status", "created_at"}

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

var mysqlDuplicate = mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'MOMO-abc' for key 'uq_payments_gateway_order'"}

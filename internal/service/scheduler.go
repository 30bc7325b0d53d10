package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/queue"
	"github.com/neofitness/gym-management/internal/repository"
)

// BookingRequest is a customer's request for one session.
type BookingRequest struct {
	CustomerID uint64
	PackageID  uint64
	ServiceID  uint64
	BranchID   uint64
	TrainerID  *uint64
	StartTime  time.Time
}

// Scheduler validates and records bookings and drives the session debit on
// completion.
type Scheduler struct {
	db       *sql.DB
	bookings *repository.BookingRepo
	packages *repository.PackageRepo
	trainers *repository.TrainerRepo
	ledger   *Ledger
	events   EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

func NewScheduler(db *sql.DB, bookings *repository.BookingRepo, packages *repository.PackageRepo, trainers *repository.TrainerRepo,
	ledger *Ledger, events EventPublisher, log *zap.Logger) *Scheduler {
	if events == nil {
		events = NopPublisher{}
	}
	return &Scheduler{
		db:       db,
		bookings: bookings,
		packages: packages,
		trainers: trainers,
		ledger:   ledger,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// CreateBooking checks the package entitlement and the trainer's calendar
// and inserts the booking as awaiting_confirmation. Checks run in a fixed
// order and the first failure is returned. The package and trainer rows are
// locked so concurrent requests cannot both pass the checks.
func (s *Scheduler) CreateBooking(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	start := req.StartTime.UTC()
	end := start.Add(model.SessionDuration)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	pkg, err := s.packages.GetForUpdateTx(ctx, tx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.CustomerID != req.CustomerID {
		return nil, repository.Errorf(repository.ErrForbidden, "package %d does not belong to you", req.PackageID)
	}
	if pkg.Status != model.PackageActive {
		return nil, repository.Errorf(repository.ErrInvalid, "package is %s, only active packages can be booked", pkg.Status)
	}
	if pkg.ExpiresAt != nil && start.After(*pkg.ExpiresAt) {
		return nil, repository.Errorf(repository.ErrInvalid, "booking starts after the package expires at %s", pkg.ExpiresAt.Format(time.RFC3339))
	}
	if !pkg.HasSessionsLeft() {
		return nil, repository.Errorf(repository.ErrInvalid, "package has no sessions left (%d of %d used)", pkg.SessionsUsed, *pkg.TotalSessions)
	}
	if req.TrainerID != nil {
		if err := s.trainers.LockTx(ctx, tx, *req.TrainerID); err != nil {
			return nil, err
		}
		busy, err := s.bookings.HasTrainerOverlapTx(ctx, tx, *req.TrainerID, start, end)
		if err != nil {
			return nil, err
		}
		if busy {
			return nil, repository.Errorf(repository.ErrConflict, "trainer already booked for this time")
		}
	}

	b := &model.Booking{
		CustomerID:        req.CustomerID,
		TrainerID:         req.TrainerID,
		BranchID:          req.BranchID,
		ServiceID:         req.ServiceID,
		CustomerPackageID: &pkg.ID,
		StartTime:         start,
		EndTime:           end,
		Status:            model.BookingAwaitingConfirmation,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.bookings.InsertTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

func allowedBookingTarget(st model.BookingStatus) bool {
	switch st {
	case model.BookingConfirmed, model.BookingCancelled, model.BookingCompleted:
		return true
	}
	return false
}

// UpdateStatus moves a booking to confirmed, cancelled or completed. Admins
// may touch any booking, trainers only their own. Completing a booking debits
// its package in the same transaction; repeating the completion is a no-op.
func (s *Scheduler) UpdateStatus(ctx context.Context, bookingID uint64, to model.BookingStatus, actor auth.Principal) (*model.Booking, error) {
	if !allowedBookingTarget(to) {
		return nil, repository.Errorf(repository.ErrInvalid, "status must be one of confirmed, cancelled, completed")
	}

	var trainerID uint64
	switch {
	case actor.IsAdmin():
	case actor.IsTrainer():
		id, err := s.trainers.IDByAccount(ctx, actor.SubjectID)
		if err != nil {
			if errors.Is(err, repository.ErrTrainerNotFound) {
				return nil, repository.Errorf(repository.ErrForbidden, "no trainer profile for this account")
			}
			return nil, err
		}
		trainerID = id
	default:
		return nil, repository.Errorf(repository.ErrForbidden, "only admins and trainers can change booking status")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.IsTrainer() && (b.TrainerID == nil || *b.TrainerID != trainerID) {
		return nil, repository.Errorf(repository.ErrForbidden, "booking %d is assigned to another trainer", bookingID)
	}
	if b.Status == to {
		return b, nil
	}
	if b.Status == model.BookingCompleted {
		return nil, repository.Errorf(repository.ErrInvalid, "booking is already completed")
	}

	var pkg *model.CustomerPackage
	if to == model.BookingCompleted && b.CustomerPackageID != nil {
		pkg, err = s.ledger.DebitSessionTx(ctx, tx, *b.CustomerPackageID)
		if err != nil {
			return nil, err
		}
	}
	if err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, to); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	from := b.Status
	b.Status = to
	s.publishStatusChanged(ctx, b, from, pkg, actor)
	return b, nil
}

// ListBookings returns bookings matching the filter.
func (s *Scheduler) ListBookings(ctx context.Context, f repository.BookingFilter) ([]model.BookingView, error) {
	return s.bookings.List(ctx, f)
}

// TrainerIDFor resolves a trainer account to its trainer id.
func (s *Scheduler) TrainerIDFor(ctx context.Context, accountID uint64) (uint64, error) {
	return s.trainers.IDByAccount(ctx, accountID)
}

func (s *Scheduler) publishStatusChanged(ctx context.Context, b *model.Booking, from model.BookingStatus, pkg *model.CustomerPackage, actor auth.Principal) {
	ev := queue.BookingStatusChangedEvent{
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		TrainerID:  b.TrainerID,
		From:       string(from),
		To:         string(b.Status),
		PackageID:  b.CustomerPackageID,
		ActorID:    actor.SubjectID,
		ActorRole:  string(actor.Role),
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	}
	if pkg != nil {
		used := pkg.SessionsUsed
		ev.SessionsUsed = &used
		ev.PackageStatus = string(pkg.Status)
	}
	if err := s.events.PublishBookingStatusChanged(ctx, ev); err != nil {
		s.log.Warn("publish booking.status_changed failed", zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}

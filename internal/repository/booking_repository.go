package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/neofitness/gym-management/internal/model"
)

// BookingRepo persists session bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that run transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, customer_id, trainer_id, branch_id, service_id, customer_package_id, start_time, end_time, status, created_at`

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b         model.Booking
		trainerID sql.NullInt64
		packageID sql.NullInt64
		statusDB  string
	)
	if err := s.Scan(&b.ID, &b.CustomerID, &trainerID, &b.BranchID, &b.ServiceID, &packageID,
		&b.StartTime, &b.EndTime, &statusDB, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.TrainerID = uintPtr(trainerID)
	b.CustomerPackageID = uintPtr(packageID)
	b.Status = model.BookingStatus(statusDB)
	return &b, nil
}

// HasTrainerOverlapTx reports whether the trainer already holds a live
// booking intersecting [start, end). Cancelled and completed bookings do
// not block; touching intervals do not overlap.
func (r *BookingRepo) HasTrainerOverlapTx(ctx context.Context, tx *sql.Tx, trainerID uint64, start, end time.Time) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings
         WHERE trainer_id = ? AND status NOT IN ('cancelled', 'completed')
           AND start_time < ? AND end_time > ?)`,
		trainerID, end.UTC(), start.UTC()).Scan(&exists)
	return exists, err
}

// InsertTx creates the booking and assigns its id. Unknown branch, service
// or trainer ids surface as ErrInvalid.
func (r *BookingRepo) InsertTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (customer_id, trainer_id, branch_id, service_id, customer_package_id, start_time, end_time, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.CustomerID, nullableUint(b.TrainerID), b.BranchID, b.ServiceID, nullableUint(b.CustomerPackageID),
		b.StartTime.UTC(), b.EndTime.UTC(), string(b.Status), b.CreatedAt.UTC())
	if err != nil {
		return translateFK(err, "booking")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetForUpdateTx loads a booking and locks it for the rest of the
// transaction.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// UpdateStatusTx sets the booking status.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// BookingFilter narrows List. Zero-valued fields do not filter.
type BookingFilter struct {
	CustomerID *uint64
	TrainerID  *uint64
	Status     model.BookingStatus
}

// List returns bookings newest start first with display names joined in.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.BookingView, error) {
	var (
		where []string
		args  []any
	)
	if f.CustomerID != nil {
		where = append(where, "b.customer_id = ?")
		args = append(args, *f.CustomerID)
	}
	if f.TrainerID != nil {
		where = append(where, "b.trainer_id = ?")
		args = append(args, *f.TrainerID)
	}
	if f.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, string(f.Status))
	}
	q := `SELECT b.id, b.customer_id, b.trainer_id, b.branch_id, b.service_id, b.customer_package_id,
                 b.start_time, b.end_time, b.status, b.created_at,
                 c.full_name, t.full_name, s.name, br.name
          FROM bookings b
          JOIN customers c ON c.id = b.customer_id
          LEFT JOIN trainers t ON t.id = b.trainer_id
          JOIN services s ON s.id = b.service_id
          JOIN branches br ON br.id = b.branch_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY b.start_time DESC, b.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BookingView{}
	for rows.Next() {
		var (
			v           model.BookingView
			trainerID   sql.NullInt64
			packageID   sql.NullInt64
			statusDB    string
			trainerName sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.CustomerID, &trainerID, &v.BranchID, &v.ServiceID, &packageID,
			&v.StartTime, &v.EndTime, &statusDB, &v.CreatedAt,
			&v.CustomerName, &trainerName, &v.ServiceName, &v.BranchName); err != nil {
			return nil, err
		}
		v.TrainerID = uintPtr(trainerID)
		v.CustomerPackageID = uintPtr(packageID)
		v.Status = model.BookingStatus(statusDB)
		v.TrainerName = stringPtr(trainerName)
		out = append(out, v)
	}
	return out, rows.Err()
}

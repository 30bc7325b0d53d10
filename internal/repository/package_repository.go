package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/neofitness/gym-management/internal/model"
)

// PackageRepo persists customer packages (entitlements).
type PackageRepo struct {
	db *sql.DB
}

// NewPackageRepo constructs a PackageRepo with the given DB handle.
func NewPackageRepo(db *sql.DB) *PackageRepo { return &PackageRepo{db: db} }

// DB exposes the underlying handle for callers that run transactions.
func (r *PackageRepo) DB() *sql.DB { return r.db }

const packageColumns = `id, customer_id, pricing_tier_id, payment_id, total_sessions, sessions_used, activated_at, expires_at, status`

func scanPackage(s rowScanner) (*model.CustomerPackage, error) {
	var (
		p        model.CustomerPackage
		total    sql.NullInt64
		expires  sql.NullTime
		statusDB string
	)
	if err := s.Scan(&p.ID, &p.CustomerID, &p.PricingTierID, &p.PaymentID, &total, &p.SessionsUsed,
		&p.ActivatedAt, &expires, &statusDB); err != nil {
		return nil, err
	}
	p.TotalSessions = intPtr(total)
	p.ExpiresAt = timePtr(expires)
	p.ActivatedAt = p.ActivatedAt.UTC()
	p.Status = model.PackageStatus(statusDB)
	return &p, nil
}

// LatestQueuedExpiryTx returns the latest expiry among the customer's active
// and pending packages, or nil when none of them expires.
func (r *PackageRepo) LatestQueuedExpiryTx(ctx context.Context, tx *sql.Tx, customerID uint64) (*time.Time, error) {
	var latest sql.NullTime
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(expires_at) FROM customer_packages
         WHERE customer_id = ? AND status IN ('active', 'pending') AND expires_at IS NOT NULL`,
		customerID).Scan(&latest)
	if err != nil {
		return nil, err
	}
	return timePtr(latest), nil
}

// ExistsForTierTx reports whether the customer already holds any package
// derived from the tier.
func (r *PackageRepo) ExistsForTierTx(ctx context.Context, tx *sql.Tx, customerID, tierID uint64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM customer_packages WHERE customer_id = ? AND pricing_tier_id = ?)`,
		customerID, tierID).Scan(&exists)
	return exists, err
}

// InsertTx creates the package row and assigns its id.
func (r *PackageRepo) InsertTx(ctx context.Context, tx *sql.Tx, p *model.CustomerPackage) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO customer_packages (customer_id, pricing_tier_id, payment_id, total_sessions, sessions_used, activated_at, expires_at, status)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.CustomerID, p.PricingTierID, p.PaymentID, nullableInt(p.TotalSessions), p.SessionsUsed,
		p.ActivatedAt.UTC(), nullableTime(p.ExpiresAt), string(p.Status))
	if err != nil {
		if isDuplicate(err) {
			return Errorf(ErrConflict, "payment %d already activated a package", p.PaymentID)
		}
		return translateFK(err, "customer package")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetForUpdateTx loads a package and holds its row lock until the
// transaction ends.
func (r *PackageRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.CustomerPackage, error) {
	p, err := scanPackage(tx.QueryRowContext(ctx,
		`SELECT `+packageColumns+` FROM customer_packages WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpdateUsageTx writes the session counter and status together.
func (r *PackageRepo) UpdateUsageTx(ctx context.Context, tx *sql.Tx, id uint64, sessionsUsed int, status model.PackageStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE customer_packages SET sessions_used = ?, status = ? WHERE id = ?`,
		sessionsUsed, string(status), id)
	return err
}

// UpdateStatusTx changes only the status column.
func (r *PackageRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.PackageStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE customer_packages SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// ListByCustomer returns the customer's packages newest first, joined with
// the tier and the payment that created them.
func (r *PackageRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.CustomerPackageView, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT cp.id, cp.customer_id, cp.pricing_tier_id, cp.payment_id, cp.total_sessions, cp.sessions_used,
                cp.activated_at, cp.expires_at, cp.status,
                p.name, t.duration_label, pay.amount, pay.method
         FROM customer_packages cp
         JOIN pricing_tiers t ON t.id = cp.pricing_tier_id
         JOIN packages p ON p.id = t.package_id
         JOIN payments pay ON pay.id = cp.payment_id
         WHERE cp.customer_id = ?
         ORDER BY cp.activated_at DESC, cp.id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CustomerPackageView{}
	for rows.Next() {
		var (
			v        model.CustomerPackageView
			total    sql.NullInt64
			expires  sql.NullTime
			statusDB string
		)
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.PricingTierID, &v.PaymentID, &total, &v.SessionsUsed,
			&v.ActivatedAt, &expires, &statusDB,
			&v.PackageName, &v.DurationLabel, &v.AmountPaid, &v.PaymentMethod); err != nil {
			return nil, err
		}
		v.TotalSessions = intPtr(total)
		v.ExpiresAt = timePtr(expires)
		v.Status = model.PackageStatus(statusDB)
		out = append(out, v)
	}
	return out, rows.Err()
}

// ExpireDue flips active packages whose expiry has passed to expired.
func (r *PackageRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customer_packages SET status = 'expired'
         WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PromoteDue activates queued packages whose activation date has arrived.
func (r *PackageRepo) PromoteDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customer_packages SET status = 'active'
         WHERE status = 'pending' AND activated_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/neofitness/gym-management/internal/model"
)

// PricingRepo reads and manages pricing tiers together with their package and
// promotion rows.
type PricingRepo struct {
	db *sql.DB
}

// NewPricingRepo constructs a PricingRepo with the given DB handle.
func NewPricingRepo(db *sql.DB) *PricingRepo { return &PricingRepo{db: db} }

// DB exposes the underlying handle for callers that run transactions.
func (r *PricingRepo) DB() *sql.DB { return r.db }

const tierSelect = `SELECT t.id, t.package_id, p.name, COALESCE(p.description, ''), t.base_price,
       t.duration_label, t.session_count, t.promotion_id,
       pr.name, pr.discount_percent, pr.start_date, pr.end_date
FROM pricing_tiers t
JOIN packages p ON p.id = t.package_id
LEFT JOIN promotions pr ON pr.id = t.promotion_id`

func scanTier(s rowScanner) (*model.PricingTier, error) {
	var (
		t         model.PricingTier
		sessions  sql.NullInt64
		promoID   sql.NullInt64
		promoName sql.NullString
		discount  decimal.NullDecimal
		start     sql.NullTime
		end       sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.PackageID, &t.PackageName, &t.Description, &t.BasePrice,
		&t.DurationLabel, &sessions, &promoID,
		&promoName, &discount, &start, &end); err != nil {
		return nil, err
	}
	t.SessionCount = intPtr(sessions)
	t.PromotionID = uintPtr(promoID)
	if promoID.Valid {
		t.Promotion = &model.Promotion{
			ID:              uint64(promoID.Int64),
			Name:            promoName.String,
			DiscountPercent: discount.Decimal,
			StartDate:       timePtr(start),
			EndDate:         timePtr(end),
		}
	}
	return &t, nil
}

func (r *PricingRepo) getTier(ctx context.Context, q rowQuerier, id uint64) (*model.PricingTier, error) {
	t, err := scanTier(q.QueryRowContext(ctx, tierSelect+` WHERE t.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetTier returns the tier with its promotion, or ErrTierNotFound.
func (r *PricingRepo) GetTier(ctx context.Context, id uint64) (*model.PricingTier, error) {
	return r.getTier(ctx, r.db, id)
}

// GetTierTx is GetTier inside the caller's transaction.
func (r *PricingRepo) GetTierTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.PricingTier, error) {
	return r.getTier(ctx, tx, id)
}

// ListTiers returns every tier ordered by package then price.
func (r *PricingRepo) ListTiers(ctx context.Context) ([]model.PricingTier, error) {
	rows, err := r.db.QueryContext(ctx, tierSelect+` ORDER BY t.package_id, t.base_price`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tiers := []model.PricingTier{}
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, *t)
	}
	return tiers, rows.Err()
}

// CreateTier inserts a tier and assigns its id. A missing package or
// promotion surfaces as ErrInvalid.
func (r *PricingRepo) CreateTier(ctx context.Context, t *model.PricingTier) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO pricing_tiers (package_id, base_price, duration_label, session_count, promotion_id) VALUES (?, ?, ?, ?, ?)`,
		t.PackageID, t.BasePrice, t.DurationLabel, nullableInt(t.SessionCount), nullableUint(t.PromotionID))
	if err != nil {
		return translateFK(err, "pricing tier")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// UpdateTier overwrites the editable columns of an existing tier.
func (r *PricingRepo) UpdateTier(ctx context.Context, t *model.PricingTier) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pricing_tiers SET package_id = ?, base_price = ?, duration_label = ?, session_count = ?, promotion_id = ? WHERE id = ?`,
		t.PackageID, t.BasePrice, t.DurationLabel, nullableInt(t.SessionCount), nullableUint(t.PromotionID), t.ID)
	if err != nil {
		return translateFK(err, "pricing tier")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows for an unchanged row too
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM pricing_tiers WHERE id = ?)`, t.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrTierNotFound
		}
	}
	return nil
}

// DeleteTier removes a tier. A tier already referenced by a purchase cannot
// be deleted and yields ErrConflict.
func (r *PricingRepo) DeleteTier(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pricing_tiers WHERE id = ?`, id)
	if err != nil {
		return translateFK(err, "pricing tier")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTierNotFound
	}
	return nil
}

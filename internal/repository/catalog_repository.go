package repository

import (
	"context"
	"database/sql"

	"github.com/neofitness/gym-management/internal/model"
)

// CatalogRepo reads the reference data clients need to build a booking:
// branches, services and trainers.
type CatalogRepo struct{ db *sql.DB }

func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

func (r *CatalogRepo) ListBranches(ctx context.Context) ([]model.Branch, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address FROM branches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Branch{}
	for rows.Next() {
		var (
			b       model.Branch
			address sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Name, &address); err != nil {
			return nil, err
		}
		b.Address = stringPtr(address)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM services ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Service{}
	for rows.Next() {
		var (
			s    model.Service
			desc sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &desc); err != nil {
			return nil, err
		}
		s.Description = stringPtr(desc)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListTrainers returns trainers ordered by name, optionally only those of
// one branch.
func (r *CatalogRepo) ListTrainers(ctx context.Context, branchID *uint64) ([]model.Trainer, error) {
	q := `SELECT id, full_name, branch_id FROM trainers`
	var args []any
	if branchID != nil {
		q += ` WHERE branch_id = ?`
		args = append(args, *branchID)
	}
	q += ` ORDER BY full_name, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Trainer{}
	for rows.Next() {
		var (
			t      model.Trainer
			branch sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.FullName, &branch); err != nil {
			return nil, err
		}
		t.BranchID = uintPtr(branch)
		out = append(out, t)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TrainerRepo reads trainer profiles.
type TrainerRepo struct{ db *sql.DB }

func NewTrainerRepo(db *sql.DB) *TrainerRepo { return &TrainerRepo{db: db} }

// IDByAccount resolves a trainer account to its trainer id.
func (r *TrainerRepo) IDByAccount(ctx context.Context, accountID uint64) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM trainers WHERE account_id = ?`, accountID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTrainerNotFound
	}
	return id, err
}

// LockTx takes the trainer's row lock so the overlap check and the booking
// insert for that trainer run one at a time.
func (r *TrainerRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var got uint64
	err := tx.QueryRowContext(ctx, `SELECT id FROM trainers WHERE id = ? FOR UPDATE`, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTrainerNotFound
	}
	return err
}

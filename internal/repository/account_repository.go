package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/utils"
)

// AccountRepo persists login accounts.
type AccountRepo struct{ db *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

// DB exposes the underlying handle for callers that run transactions.
func (r *AccountRepo) DB() *sql.DB { return r.db }

// CreateTx hashes the password and inserts the account, returning its id.
func (r *AccountRepo) CreateTx(ctx context.Context, tx *sql.Tx, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO accounts (email, password_hash, role) VALUES (?, ?, ?)",
		email, hash, role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *AccountRepo) getOne(ctx context.Context, where string, arg any) (*model.Account, error) {
	var a model.Account
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, role, created_at FROM accounts WHERE "+where+" LIMIT 1",
		arg).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.getOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	return r.getOne(ctx, "id = ?", id)
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/neofitness/gym-management/internal/model"
)

// CustomerRepo persists member profiles.
type CustomerRepo struct{ db *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// CreateTx inserts the profile for a freshly created account.
func (r *CustomerRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.Customer) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO customers (account_id, full_name, phone) VALUES (?, ?, ?)`,
		c.AccountID, c.FullName, nullableString(c.Phone))
	if err != nil {
		return translateFK(err, "customer")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByAccount returns the profile owned by the account.
func (r *CustomerRepo) GetByAccount(ctx context.Context, accountID uint64) (*model.Customer, error) {
	var (
		c     model.Customer
		phone sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, full_name, phone FROM customers WHERE account_id = ?`, accountID).
		Scan(&c.ID, &c.AccountID, &c.FullName, &phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	c.Phone = stringPtr(phone)
	return &c, nil
}

// IDByAccount resolves a customer account to its profile id.
func (r *CustomerRepo) IDByAccount(ctx context.Context, accountID uint64) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM customers WHERE account_id = ?`, accountID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrCustomerNotFound
	}
	return id, err
}

// LockTx takes the customer's row lock. Activations for one customer
// serialize on it.
func (r *CustomerRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var got uint64
	err := tx.QueryRowContext(ctx, `SELECT id FROM customers WHERE id = ? FOR UPDATE`, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCustomerNotFound
	}
	return err
}

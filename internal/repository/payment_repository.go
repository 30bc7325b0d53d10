package repository

import (
	"context"
	"database/sql"

	"github.com/neofitness/gym-management/internal/model"
)

// PaymentRepo persists payment records. Rows are immutable once written.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo constructs a PaymentRepo with the given DB handle.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// DB exposes the underlying handle for callers that run transactions.
func (r *PaymentRepo) DB() *sql.DB { return r.db }

// InsertTx writes the payment and assigns its id. A second row with the same
// gateway order id is rejected by the unique key and reported as
// ErrDuplicatePayment.
func (r *PaymentRepo) InsertTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	if p.Status == "" {
		p.Status = model.PaymentStatusPaid
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (package_id, customer_id, amount, method, status, paid_at, gateway_order_id, gateway_trans_id)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PackageID, p.CustomerID, p.Amount, p.Method, p.Status, p.PaidAt.UTC(),
		nullableString(p.GatewayOrderID), nullableString(p.GatewayTransID))
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicatePayment
		}
		return translateFK(err, "payment")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ExistsByGatewayOrderTx reports whether a confirmation for orderID was
// already recorded.
func (r *PaymentRepo) ExistsByGatewayOrderTx(ctx context.Context, tx *sql.Tx, orderID string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM payments WHERE gateway_order_id = ?)`, orderID).Scan(&exists)
	return exists, err
}

// List returns payments newest first. When customerID is non-nil only that
// customer's payments are returned.
func (r *PaymentRepo) List(ctx context.Context, customerID *uint64, limit, offset int) ([]model.PaymentView, error) {
	q := `SELECT pay.id, pay.package_id, pay.customer_id, pay.amount, pay.method, pay.status, pay.paid_at,
                 pay.gateway_order_id, pay.gateway_trans_id, p.name, c.full_name
          FROM payments pay
          JOIN packages p ON p.id = pay.package_id
          JOIN customers c ON c.id = pay.customer_id`
	args := []any{}
	if customerID != nil {
		q += ` WHERE pay.customer_id = ?`
		args = append(args, *customerID)
	}
	q += ` ORDER BY pay.paid_at DESC, pay.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PaymentView{}
	for rows.Next() {
		var (
			v       model.PaymentView
			orderID sql.NullString
			transID sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.PackageID, &v.CustomerID, &v.Amount, &v.Method, &v.Status, &v.PaidAt,
			&orderID, &transID, &v.PackageName, &v.CustomerName); err != nil {
			return nil, err
		}
		v.GatewayOrderID = stringPtr(orderID)
		v.GatewayTransID = stringPtr(transID)
		out = append(out, v)
	}
	return out, rows.Err()
}

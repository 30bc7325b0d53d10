package model

import "time"

// Account is a login identity. Role is one of admin, trainer or customer;
// trainer and customer accounts have a matching profile row.
type Account struct {
	ID           uint64    // accounts.id
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	Role         string    // accounts.role
	CreatedAt    time.Time // accounts.created_at
}

// Customer is the member profile attached to a customer account.
type Customer struct {
	ID        uint64  `json:"id"`         // customers.id
	AccountID uint64  `json:"account_id"` // customers.account_id
	FullName  string  `json:"full_name"`  // customers.full_name
	Phone     *string `json:"phone"`      // customers.phone (nullable)
}

// TrainerProfile is the staff profile attached to a trainer account.
type TrainerProfile struct {
	ID        uint64  // trainers.id
	AccountID uint64  // trainers.account_id
	BranchID  *uint64 // trainers.branch_id (nullable)
	FullName  string  // trainers.full_name
}

// Package repository defines error types that are reused across multiple
// repositories and by the service layer. Handlers translate the four kinds
// into HTTP statuses; anything else is an internal failure.
package repository

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid")
	ErrConflict  = errors.New("conflict")
)

// Not-found sentinels for the entities the core looks up.
var (
	ErrTierNotFound     = fmt.Errorf("pricing tier %w", ErrNotFound)
	ErrPackageNotFound  = fmt.Errorf("customer package %w", ErrNotFound)
	ErrBookingNotFound  = fmt.Errorf("booking %w", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrTrainerNotFound  = fmt.Errorf("trainer %w", ErrNotFound)
	ErrAccountNotFound  = fmt.Errorf("account %w", ErrNotFound)
)

// ErrDuplicatePayment is returned when a payment with the same gateway order
// id already exists.
var ErrDuplicatePayment = fmt.Errorf("payment already recorded: %w", ErrConflict)

// ErrEmailExists is returned on registration with a taken email.
var ErrEmailExists = fmt.Errorf("email already exists: %w", ErrConflict)

// Error carries a user-facing message and unwraps to its kind, so handlers can
// both pick the status with errors.Is and show the precise reason.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

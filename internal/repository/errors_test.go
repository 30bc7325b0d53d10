package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestErrorfUnwrapsToKind(t *testing.T) {
	err := Errorf(ErrInvalid, "package is %s", "used")
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "package is used", err.Error())

	wrapped := fmt.Errorf("create booking: %w", err)
	var appErr *Error
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "package is used", appErr.Msg)
}

func TestSentinelsCarryKinds(t *testing.T) {
	assert.ErrorIs(t, ErrTierNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrDuplicatePayment, ErrConflict)
	assert.Equal(t, "pricing tier not found", ErrTierNotFound.Error())
}

func TestTranslateFK(t *testing.T) {
	missing := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	assert.ErrorIs(t, translateFK(missing, "booking"), ErrInvalid)

	referenced := &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}
	assert.ErrorIs(t, translateFK(referenced, "pricing tier"), ErrConflict)

	other := errors.New("boom")
	assert.Same(t, other, translateFK(other, "x"))

	assert.True(t, isDuplicate(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicate(other))
}

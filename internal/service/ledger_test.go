package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/repository"
)

func expectTrialPrologue(m sqlmock.Sqlmock, customerID, tierID uint64, label string) {
	m.ExpectBegin()
	m.ExpectQuery(q("SELECT id FROM customers WHERE id = ? FOR UPDATE")).
		WithArgs(customerID).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(customerID))
	m.ExpectQuery(q("WHERE t.id = ?")).WithArgs(tierID).
		WillReturnRows(tierRow(tierID, 1, "0.00", label, nil))
}

func TestRegisterFreeTrialQueuesBehindRunningPackage(t *testing.T) {
	now := date(2025, 1, 10, 8)
	f := newFixture(t, now)
	m := f.mock

	running := date(2025, 3, 1, 8)
	expectTrialPrologue(m, 4, 2, "1 month")
	m.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM customer_packages")).WithArgs(4, 2).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	m.ExpectExec(q("INSERT INTO payments")).WillReturnResult(sqlmock.NewResult(11, 1))
	m.ExpectQuery(q("SELECT MAX(expires_at) FROM customer_packages")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"m"}).AddRow(running))
	wantStart := date(2025, 3, 2, 8)
	wantEnd := date(2025, 4, 2, 8)
	m.ExpectExec(q("INSERT INTO customer_packages")).
		WithArgs(4, 2, 11, nil, 0, wantStart, wantEnd, "pending").
		WillReturnResult(sqlmock.NewResult(21, 1))
	m.ExpectCommit()

	pkg, err := f.ledger.RegisterFreeTrial(context.Background(), 4, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(21), pkg.ID)
	assert.Equal(t, model.PackagePending, pkg.Status)
	assert.Equal(t, wantStart, pkg.ActivatedAt)
	require.NotNil(t, pkg.ExpiresAt)
	assert.Equal(t, wantEnd, *pkg.ExpiresAt)
	require.NoError(t, m.ExpectationsWereMet())

	require.Len(t, f.events.activated, 1)
	ev := f.events.activated[0]
	assert.Equal(t, uint64(21), ev.PackageID)
	assert.Equal(t, "pending", ev.Status)
	assert.Equal(t, model.PaymentMethodFreeTrial, ev.Method)
	assert.Equal(t, "0.00", ev.Amount)
}

func TestRegisterFreeTrialActivatesNowAfterLapsedPackage(t *testing.T) {
	now := date(2025, 1, 10, 8)
	f := newFixture(t, now)
	m := f.mock

	expectTrialPrologue(m, 4, 2, "7 ngày")
	m.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM customer_packages")).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	m.ExpectExec(q("INSERT INTO payments")).WillReturnResult(sqlmock.NewResult(12, 1))
	// latest expiry was yesterday morning; the day after is already past
	m.ExpectQuery(q("SELECT MAX(expires_at)")).
		WillReturnRows(sqlmock.NewRows([]string{"m"}).AddRow(date(2025, 1, 8, 8)))
	m.ExpectExec(q("INSERT INTO customer_packages")).
		WithArgs(4, 2, 12, nil, 0, now, date(2025, 1, 17, 8), "active").
		WillReturnResult(sqlmock.NewResult(22, 1))
	m.ExpectCommit()

	pkg, err := f.ledger.RegisterFreeTrial(context.Background(), 4, 2)
	require.NoError(t, err)
	assert.Equal(t, model.PackageActive, pkg.Status)
	assert.Equal(t, now, pkg.ActivatedAt)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestRegisterFreeTrialTwiceConflicts(t *testing.T) {
	f := newFixture(t, date(2025, 1, 10, 8))
	m := f.mock

	expectTrialPrologue(m, 4, 2, "1 month")
	m.ExpectQuery(q("SELECT EXISTS(SELECT 1 FROM customer_packages")).WithArgs(4, 2).
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))
	m.ExpectRollback()

	_, err := f.ledger.RegisterFreeTrial(context.Background(), 4, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrConflict))
	assert.Empty(t, f.events.activated)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestRegisterFreeTrialRejectsPaidTier(t *testing.T) {
	f := newFixture(t, date(2025, 1, 10, 8))
	m := f.mock

	m.ExpectBegin()
	m.ExpectQuery(q("FOR UPDATE")).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	m.ExpectQuery(q("WHERE t.id = ?")).WillReturnRows(tierRow(2, 1, "500000.00", "1 month", nil))
	m.ExpectRollback()

	_, err := f.ledger.RegisterFreeTrial(context.Background(), 4, 2)
	assert.True(t, errors.Is(err, repository.ErrInvalid))
	require.NoError(t, m.ExpectationsWereMet())
}

func TestRegisterFreeTrialUnknownCustomer(t *testing.T) {
	f := newFixture(t, date(2025, 1, 10, 8))
	m := f.mock

	m.ExpectBegin()
	m.ExpectQuery(q("SELECT id FROM customers")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	m.ExpectRollback()

	_, err := f.ledger.RegisterFreeTrial(context.Background(), 99, 2)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	require.NoError(t, m.ExpectationsWereMet())
}

func TestCancelPackage(t *testing.T) {
	now := date(2025, 1, 10, 8)
	owner := uint64(4)
	stranger := uint64(5)

	t.Run("owner cancels active", func(t *testing.T) {
		f := newFixture(t, now)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(q("FROM customer_packages WHERE id = ? FOR UPDATE")).WithArgs(8).
			WillReturnRows(sqlmock.NewRows(packageColumns).AddRow(8, 4, 2, 11, nil, 0, now, nil, "active"))
		f.mock.ExpectExec(q("UPDATE customer_packages SET status = ?")).WithArgs("cancelled", 8).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectCommit()

		pkg, err := f.ledger.Cancel(context.Background(), 8, &owner)
		require.NoError(t, err)
		assert.Equal(t, model.PackageCancelled, pkg.Status)
		require.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("other customer is forbidden", func(t *testing.T) {
		f := newFixture(t, now)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(q("FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows(packageColumns).AddRow(8, 4, 2, 11, nil, 0, now, nil, "active"))
		f.mock.ExpectRollback()

		_, err := f.ledger.Cancel(context.Background(), 8, &stranger)
		assert.True(t, errors.Is(err, repository.ErrForbidden))
	})

	t.Run("used package cannot be cancelled", func(t *testing.T) {
		f := newFixture(t, now)
		f.mock.ExpectBegin()
		f.mock.ExpectQuery(q("FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows(packageColumns).AddRow(8, 4, 2, 11, 10, 10, now, nil, "used"))
		f.mock.ExpectRollback()

		_, err := f.ledger.Cancel(context.Background(), 8, nil)
		assert.True(t, errors.Is(err, repository.ErrInvalid))
	})
}

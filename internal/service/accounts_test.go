package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/repository"
	"github.com/neofitness/gym-management/internal/utils"
)

func newAccountService(t *testing.T) (*AccountService, sqlmock.Sqlmock) {
	f := newFixture(t, time.Now())
	svc := NewAccountService(f.db, repository.NewAccountRepo(f.db), f.customers, f.trainers, "secret", 15, bcrypt.MinCost)
	return svc, f.mock
}

func TestRegisterCreatesAccountAndProfile(t *testing.T) {
	svc, m := newAccountService(t)
	m.ExpectBegin()
	m.ExpectExec(q("INSERT INTO accounts")).
		WithArgs("an@example.com", sqlmock.AnyArg(), "customer").
		WillReturnResult(sqlmock.NewResult(9, 1))
	m.ExpectExec(q("INSERT INTO customers")).
		WithArgs(9, "An Nguyen", nil).
		WillReturnResult(sqlmock.NewResult(4, 1))
	m.ExpectCommit()

	sess, err := svc.Register(context.Background(), RegisterInput{Email: " An@Example.com ", Password: "hunter22", FullName: "An Nguyen"})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), sess.AccountID)
	require.NotNil(t, sess.CustomerID)
	assert.Equal(t, uint64(4), *sess.CustomerID)

	p, err := utils.ParseAccessToken("secret", sess.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{SubjectID: 9, Role: auth.RoleCustomer}, p)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, m := newAccountService(t)
	m.ExpectBegin()
	m.ExpectExec(q("INSERT INTO accounts")).WillReturnError(&mysqlDuplicate)
	m.ExpectRollback()

	_, err := svc.Register(context.Background(), RegisterInput{Email: "an@example.com", Password: "hunter22", FullName: "An"})
	assert.True(t, errors.Is(err, repository.ErrConflict))
	require.NoError(t, m.ExpectationsWereMet())
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at"}).
			AddRow(2, "coach@example.com", hash, "trainer", time.Now())
	}

	svc, m := newAccountService(t)
	m.ExpectQuery(q("FROM accounts WHERE email = ?")).WithArgs("coach@example.com").WillReturnRows(rows())
	sess, err := svc.Login(context.Background(), "Coach@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleTrainer, sess.Role)

	m.ExpectQuery(q("FROM accounts WHERE email = ?")).WillReturnRows(rows())
	_, err = svc.Login(context.Background(), "coach@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	m.ExpectQuery(q("FROM accounts WHERE email = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at"}))
	_, err = svc.Login(context.Background(), "nobody@example.com", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.NoError(t, m.ExpectationsWereMet())
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/repository"
	"github.com/neofitness/gym-management/internal/utils"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterInput is a customer self-registration.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    *string
}

// Session is an issued access token and who it belongs to.
type Session struct {
	AccountID  uint64    `json:"account_id"`
	Email      string    `json:"email"`
	Role       auth.Role `json:"role"`
	CustomerID *uint64   `json:"customer_id,omitempty"`
	Token      string    `json:"access_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Profile is the caller's account plus its customer or trainer profile id.
type Profile struct {
	AccountID  uint64          `json:"account_id"`
	Email      string          `json:"email"`
	Role       auth.Role       `json:"role"`
	Customer   *model.Customer `json:"customer,omitempty"`
	TrainerID  *uint64         `json:"trainer_id,omitempty"`
	SignedUpAt time.Time       `json:"signed_up_at"`
}

// AccountService registers customers and issues access tokens. Admin and
// trainer accounts are provisioned out of band.
type AccountService struct {
	db        *sql.DB
	accounts  *repository.AccountRepo
	customers *repository.CustomerRepo
	trainers  *repository.TrainerRepo
	secret    string
	ttlMin    int
	cost      int
	now       func() time.Time
}

func NewAccountService(db *sql.DB, accounts *repository.AccountRepo, customers *repository.CustomerRepo,
	trainers *repository.TrainerRepo, secret string, ttlMin, bcryptCost int) *AccountService {
	return &AccountService{
		db:        db,
		accounts:  accounts,
		customers: customers,
		trainers:  trainers,
		secret:    secret,
		ttlMin:    ttlMin,
		cost:      bcryptCost,
		now:       time.Now,
	}
}

// Register creates a customer account and its profile together and signs
// the caller in.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	accountID, err := s.accounts.CreateTx(ctx, tx, email, in.Password, string(auth.RoleCustomer), s.cost)
	if err != nil {
		return nil, err
	}
	cust := &model.Customer{AccountID: accountID, FullName: strings.TrimSpace(in.FullName), Phone: in.Phone}
	if err := s.customers.CreateTx(ctx, tx, cust); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	sess, err := s.issue(accountID, email, auth.RoleCustomer)
	if err != nil {
		return nil, err
	}
	sess.CustomerID = &cust.ID
	return sess, nil
}

// Login checks the password and issues a fresh access token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	role, err := auth.ParseRole(a.Role)
	if err != nil {
		return nil, err
	}
	return s.issue(a.ID, a.Email, role)
}

func (s *AccountService) issue(accountID uint64, email string, role auth.Role) (*Session, error) {
	tok, err := utils.NewAccessToken(s.secret, auth.Principal{SubjectID: accountID, Role: role}, s.ttlMin, s.now())
	if err != nil {
		return nil, err
	}
	return &Session{AccountID: accountID, Email: email, Role: role, Token: tok.Token, ExpiresAt: tok.Exp}, nil
}

// Me describes the authenticated caller.
func (s *AccountService) Me(ctx context.Context, p auth.Principal) (*Profile, error) {
	a, err := s.accounts.GetByID(ctx, p.SubjectID)
	if err != nil {
		return nil, err
	}
	out := &Profile{AccountID: a.ID, Email: a.Email, Role: p.Role, SignedUpAt: a.CreatedAt}
	switch p.Role {
	case auth.RoleCustomer:
		c, err := s.customers.GetByAccount(ctx, a.ID)
		if err != nil && !errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, err
		}
		out.Customer = c
	case auth.RoleTrainer:
		id, err := s.trainers.IDByAccount(ctx, a.ID)
		if err == nil {
			out.TrainerID = &id
		} else if !errors.Is(err, repository.ErrTrainerNotFound) {
			return nil, err
		}
	}
	return out, nil
}

// CustomerIDFor resolves a customer account to its profile id.
func (s *AccountService) CustomerIDFor(ctx context.Context, accountID uint64) (uint64, error) {
	return s.customers.IDByAccount(ctx, accountID)
}

package handler

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/middleware"
	"github.com/neofitness/gym-management/internal/repository"
)

// CustomerResolver maps a customer account to its profile id.
type CustomerResolver interface {
	CustomerIDFor(ctx context.Context, accountID uint64) (uint64, error)
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return auth.Principal{}, repository.Errorf(repository.ErrForbidden, "unauthenticated")
	}
	return p, nil
}

// currentCustomer resolves the calling customer's profile id.
func currentCustomer(c echo.Context, r CustomerResolver) (uint64, error) {
	p, err := principal(c)
	if err != nil {
		return 0, err
	}
	id, err := r.CustomerIDFor(c.Request().Context(), p.SubjectID)
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return 0, repository.Errorf(repository.ErrForbidden, "no customer profile for this account")
	}
	return id, err
}

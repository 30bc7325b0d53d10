package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/neofitness/gym-management/internal/repository"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator { return &Validator{v: validator.New()} }

func (cv *Validator) Validate(i interface{}) error { return cv.v.Struct(i) }

// bind decodes the body into req and validates it. Both failures are
// ErrInvalid so they surface as 400.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return repository.Errorf(repository.ErrInvalid, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]string, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return repository.Errorf(repository.ErrInvalid, "invalid fields: %s", strings.Join(fields, ", "))
		}
		return repository.Errorf(repository.ErrInvalid, "%v", err)
	}
	return nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, repository.Errorf(repository.ErrInvalid, "invalid %s", name)
	}
	return id, nil
}

// queryID parses an optional numeric query parameter.
func queryID(c echo.Context, name string) (*uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, repository.Errorf(repository.ErrInvalid, "invalid %s", name)
	}
	return &id, nil
}

func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return n
}

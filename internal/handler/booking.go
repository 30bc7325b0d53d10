package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/neofitness/gym-management/internal/auth"
	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/repository"
	"github.com/neofitness/gym-management/internal/service"
)

// Bookings is the booking scheduler.
type Bookings interface {
	CreateBooking(ctx context.Context, req service.BookingRequest) (*model.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uint64, to model.BookingStatus, actor auth.Principal) (*model.Booking, error)
	ListBookings(ctx context.Context, f repository.BookingFilter) ([]model.BookingView, error)
	TrainerIDFor(ctx context.Context, accountID uint64) (uint64, error)
}

type BookingHandler struct {
	bookings  Bookings
	customers CustomerResolver
	log       *zap.Logger
}

func NewBookingHandler(bookings Bookings, customers CustomerResolver, log *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, customers: customers, log: log}
}

type createBookingReq struct {
	PackageID uint64    `json:"customer_package_id" validate:"required"`
	ServiceID uint64    `json:"service_id" validate:"required"`
	BranchID  uint64    `json:"branch_id" validate:"required"`
	TrainerID *uint64   `json:"trainer_id" validate:"omitempty,min=1"`
	StartTime time.Time `json:"start_time" validate:"required"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled completed"`
}

// Create books one session against the caller's package.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	customerID, err := currentCustomer(c, h.customers)
	if err != nil {
		return writeError(c, h.log, err)
	}
	b, err := h.bookings.CreateBooking(c.Request().Context(), service.BookingRequest{
		CustomerID: customerID,
		PackageID:  req.PackageID,
		ServiceID:  req.ServiceID,
		BranchID:   req.BranchID,
		TrainerID:  req.TrainerID,
		StartTime:  req.StartTime,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// UpdateStatus lets admins and the assigned trainer move a booking along.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	p, err := principal(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	b, err := h.bookings.UpdateStatus(c.Request().Context(), id, model.BookingStatus(req.Status), p)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, b)
}

func statusFilter(c echo.Context) (model.BookingStatus, error) {
	st := model.BookingStatus(c.QueryParam("status"))
	switch st {
	case "", model.BookingAwaitingConfirmation, model.BookingConfirmed, model.BookingCancelled, model.BookingCompleted:
		return st, nil
	}
	return "", repository.Errorf(repository.ErrInvalid, "unknown status %q", st)
}

func (h *BookingHandler) list(c echo.Context, f repository.BookingFilter) error {
	st, err := statusFilter(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	f.Status = st
	items, err := h.bookings.ListBookings(c.Request().Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Mine lists the calling customer's bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
	customerID, err := currentCustomer(c, h.customers)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.list(c, repository.BookingFilter{CustomerID: &customerID})
}

// Assigned lists bookings assigned to the calling trainer.
func (h *BookingHandler) Assigned(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	trainerID, err := h.bookings.TrainerIDFor(c.Request().Context(), p.SubjectID)
	if err != nil {
		if errors.Is(err, repository.ErrTrainerNotFound) {
			err = repository.Errorf(repository.ErrForbidden, "no trainer profile for this account")
		}
		return writeError(c, h.log, err)
	}
	return h.list(c, repository.BookingFilter{TrainerID: &trainerID})
}

// List is the admin view, filterable by customer, trainer and status.
func (h *BookingHandler) List(c echo.Context) error {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	trainerID, err := queryID(c, "trainer_id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.list(c, repository.BookingFilter{CustomerID: customerID, TrainerID: trainerID})
}

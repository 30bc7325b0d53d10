package model

import "time"

// BookingStatus is the state of a training session booking.
type BookingStatus string

const (
	BookingAwaitingConfirmation BookingStatus = "awaiting_confirmation"
	BookingConfirmed            BookingStatus = "confirmed"
	BookingCancelled            BookingStatus = "cancelled"
	BookingCompleted            BookingStatus = "completed"
)

// SessionDuration is the fixed length of one booked session.
const SessionDuration = 60 * time.Minute

// Booking reserves a [StartTime, EndTime) slot at a branch, optionally with a
// trainer, consuming a customer package on completion.
type Booking struct {
	ID                uint64        `json:"id"`                  // bookings.id
	CustomerID        uint64        `json:"customer_id"`         // bookings.customer_id
	TrainerID         *uint64       `json:"trainer_id"`          // bookings.trainer_id (nullable)
	BranchID          uint64        `json:"branch_id"`           // bookings.branch_id
	ServiceID         uint64        `json:"service_id"`          // bookings.service_id
	CustomerPackageID *uint64       `json:"customer_package_id"` // bookings.customer_package_id (nullable)
	StartTime         time.Time     `json:"start_time"`          // bookings.start_time
	EndTime           time.Time     `json:"end_time"`            // bookings.end_time
	Status            BookingStatus `json:"status"`              // bookings.status
	CreatedAt         time.Time     `json:"created_at"`          // bookings.created_at
}

// BookingView adds display names for list endpoints.
type BookingView struct {
	Booking
	CustomerName string  `json:"customer_name"`
	TrainerName  *string `json:"trainer_name"`
	ServiceName  string  `json:"service_name"`
	BranchName   string  `json:"branch_name"`
}

// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// Queue names. Both are durable.
const (
	PackageActivatedQueue     = "package.activated"
	BookingStatusChangedQueue = "booking.status_changed"
)

// PackageActivatedEvent is published after a payment has materialized a
// customer package, whether immediately active or queued as pending.
type PackageActivatedEvent struct {
	PackageID     uint64  `json:"package_id"`
	CustomerID    uint64  `json:"customer_id"`
	PricingTierID uint64  `json:"pricing_tier_id"`
	PaymentID     uint64  `json:"payment_id"`
	Method        string  `json:"method"`
	Amount        string  `json:"amount"`
	Status        string  `json:"status"`
	ActivatedAt   string  `json:"activated_at"`
	ExpiresAt     *string `json:"expires_at"`
	OccurredAt    string  `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after a booking status update
// commits. SessionsUsed and PackageStatus are set when a session was
// debited.
type BookingStatusChangedEvent struct {
	BookingID     uint64  `json:"booking_id"`
	CustomerID    uint64  `json:"customer_id"`
	TrainerID     *uint64 `json:"trainer_id"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	PackageID     *uint64 `json:"customer_package_id"`
	SessionsUsed  *int    `json:"sessions_used,omitempty"`
	PackageStatus string  `json:"package_status,omitempty"`
	ActorID       uint64  `json:"actor_id"`
	ActorRole     string  `json:"actor_role"`
	OccurredAt    string  `json:"occurred_at"`
}

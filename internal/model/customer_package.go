package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackageStatus is the lifecycle state of a customer package.
type PackageStatus string

const (
	PackagePending   PackageStatus = "pending"
	PackageActive    PackageStatus = "active"
	PackageUsed      PackageStatus = "used"
	PackageExpired   PackageStatus = "expired"
	PackageCancelled PackageStatus = "cancelled"
)

// CustomerPackage is an entitlement instance created from a pricing tier by
// a payment. TotalSessions nil means time-based or unlimited; ExpiresAt nil
// means it never expires.
type CustomerPackage struct {
	ID            uint64        `json:"id"`              // customer_packages.id
	CustomerID    uint64        `json:"customer_id"`     // customer_packages.customer_id
	PricingTierID uint64        `json:"pricing_tier_id"` // customer_packages.pricing_tier_id
	PaymentID     uint64        `json:"payment_id"`      // customer_packages.payment_id
	TotalSessions *int          `json:"total_sessions"`  // customer_packages.total_sessions (nullable)
	SessionsUsed  int           `json:"sessions_used"`   // customer_packages.sessions_used
	ActivatedAt   time.Time     `json:"activated_at"`    // customer_packages.activated_at
	ExpiresAt     *time.Time    `json:"expires_at"`      // customer_packages.expires_at (nullable)
	Status        PackageStatus `json:"status"`          // customer_packages.status
}

// HasSessionsLeft is true for unlimited packages and for finite ones that
// still have credit.
func (p *CustomerPackage) HasSessionsLeft() bool {
	return p.TotalSessions == nil || p.SessionsUsed < *p.TotalSessions
}

// CustomerPackageView is the "my packages" row: the entitlement plus the tier
// and payment it came from.
type CustomerPackageView struct {
	CustomerPackage
	PackageName   string          `json:"package_name"`
	DurationLabel string          `json:"duration_label"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentMethod string          `json:"payment_method"`
}

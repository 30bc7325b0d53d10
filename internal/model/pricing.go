package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promotion is a time-boxed percentage discount attached to pricing tiers.
// Either bound may be absent.
type Promotion struct {
	ID              uint64          `json:"id"`               // promotions.id
	Name            string          `json:"name"`             // promotions.name
	DiscountPercent decimal.Decimal `json:"discount_percent"` // promotions.discount_percent
	StartDate       *time.Time      `json:"start_date"`       // promotions.start_date (nullable)
	EndDate         *time.Time      `json:"end_date"`         // promotions.end_date (nullable)
}

// ActiveAt reports whether the promotion applies at t: a positive discount
// and t inside the (inclusive, optionally open-ended) window.
func (p *Promotion) ActiveAt(t time.Time) bool {
	if p == nil || !p.DiscountPercent.IsPositive() {
		return false
	}
	if p.StartDate != nil && t.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && t.After(*p.EndDate) {
		return false
	}
	return true
}

// PricingTier is a priced variant of a package. DurationLabel is free text
// such as "3 months" or "10 buổi"; SessionCount is nil for time-based tiers.
type PricingTier struct {
	ID            uint64          // pricing_tiers.id
	PackageID     uint64          // pricing_tiers.package_id
	PackageName   string          // packages.name
	Description   string          // packages.description
	BasePrice     decimal.Decimal // pricing_tiers.base_price
	DurationLabel string          // pricing_tiers.duration_label
	SessionCount  *int            // pricing_tiers.session_count (nullable)
	PromotionID   *uint64         // pricing_tiers.promotion_id (nullable)
	Promotion     *Promotion      // joined promotion, nil when absent
}

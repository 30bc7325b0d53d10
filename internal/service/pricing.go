package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neofitness/gym-management/internal/model"
	"github.com/neofitness/gym-management/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// Quote is a tier's resolved price at a point in time.
type Quote struct {
	TierID          uint64           `json:"pricing_tier_id"`
	PackageID       uint64           `json:"package_id"`
	PackageName     string           `json:"package_name"`
	Description     string           `json:"description,omitempty"`
	BasePrice       decimal.Decimal  `json:"base_price"`
	FinalPrice      decimal.Decimal  `json:"final_price"`
	DiscountPercent decimal.Decimal  `json:"discount_percent_applied"`
	DurationLabel   string           `json:"duration_label"`
	Duration        Duration         `json:"duration"`
	SessionCount    *int             `json:"session_count"`
	Promotion       *model.Promotion `json:"promotion,omitempty"`
	IsFree          bool             `json:"is_free"`
}

// Resolve prices a tier at time at. An active promotion takes its percentage
// off the base price; the result is rounded to cents. A tier is free only
// when that final price is exactly zero.
func Resolve(t model.PricingTier, at time.Time) Quote {
	q := Quote{
		TierID:          t.ID,
		PackageID:       t.PackageID,
		PackageName:     t.PackageName,
		Description:     t.Description,
		BasePrice:       t.BasePrice,
		FinalPrice:      t.BasePrice,
		DiscountPercent: decimal.Zero,
		DurationLabel:   t.DurationLabel,
		Duration:        ParseDuration(t.DurationLabel),
		SessionCount:    t.SessionCount,
		Promotion:       t.Promotion,
	}
	if t.Promotion.ActiveAt(at) {
		d := t.Promotion.DiscountPercent
		q.DiscountPercent = d
		q.FinalPrice = t.BasePrice.Mul(hundred.Sub(d)).Div(hundred).Round(2)
	}
	q.IsFree = q.FinalPrice.IsZero()
	return q
}

// TierInput is the editable part of a pricing tier.
type TierInput struct {
	PackageID     uint64
	BasePrice     decimal.Decimal
	DurationLabel string
	SessionCount  *int
	PromotionID   *uint64
}

// PricingService resolves and manages pricing tiers.
type PricingService struct {
	tiers *repository.PricingRepo
	now   func() time.Time
}

func NewPricingService(tiers *repository.PricingRepo) *PricingService {
	return &PricingService{tiers: tiers, now: time.Now}
}

// Quote resolves one tier at the current time.
func (s *PricingService) Quote(ctx context.Context, tierID uint64) (Quote, error) {
	t, err := s.tiers.GetTier(ctx, tierID)
	if err != nil {
		return Quote{}, err
	}
	return Resolve(*t, s.now()), nil
}

// ListQuotes resolves every tier at the current time.
func (s *PricingService) ListQuotes(ctx context.Context) ([]Quote, error) {
	tiers, err := s.tiers.ListTiers(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]Quote, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, Resolve(t, now))
	}
	return out, nil
}

func validateTier(in TierInput) error {
	if in.BasePrice.IsNegative() {
		return repository.Errorf(repository.ErrInvalid, "base price must not be negative")
	}
	if in.SessionCount != nil && *in.SessionCount <= 0 {
		return repository.Errorf(repository.ErrInvalid, "session count must be positive")
	}
	return nil
}

// CreateTier adds a tier and returns its quote.
func (s *PricingService) CreateTier(ctx context.Context, in TierInput) (Quote, error) {
	if err := validateTier(in); err != nil {
		return Quote{}, err
	}
	t := model.PricingTier{
		PackageID:     in.PackageID,
		BasePrice:     in.BasePrice,
		DurationLabel: in.DurationLabel,
		SessionCount:  in.SessionCount,
		PromotionID:   in.PromotionID,
	}
	if err := s.tiers.CreateTier(ctx, &t); err != nil {
		return Quote{}, err
	}
	return s.Quote(ctx, t.ID)
}

// UpdateTier rewrites a tier and returns its new quote.
func (s *PricingService) UpdateTier(ctx context.Context, id uint64, in TierInput) (Quote, error) {
	if err := validateTier(in); err != nil {
		return Quote{}, err
	}
	t := model.PricingTier{
		ID:            id,
		PackageID:     in.PackageID,
		BasePrice:     in.BasePrice,
		DurationLabel: in.DurationLabel,
		SessionCount:  in.SessionCount,
		PromotionID:   in.PromotionID,
	}
	if err := s.tiers.UpdateTier(ctx, &t); err != nil {
		return Quote{}, err
	}
	return s.Quote(ctx, id)
}

// DeleteTier removes a tier that no purchase references.
func (s *PricingService) DeleteTier(ctx context.Context, id uint64) error {
	return s.tiers.DeleteTier(ctx, id)
}

package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/neofitness/gym-management/internal/model"
)

func TestResolveAppliesActivePromotion(t *testing.T) {
	start := date(2025, 1, 1, 0)
	end := date(2025, 1, 31, 23)
	tier := model.PricingTier{
		ID:            3,
		BasePrice:     decimal.RequireFromString("500000"),
		DurationLabel: "1 month",
		Promotion: &model.Promotion{
			ID:              9,
			DiscountPercent: decimal.NewFromInt(25),
			StartDate:       &start,
			EndDate:         &end,
		},
	}

	q := Resolve(tier, date(2025, 1, 15, 10))
	assert.True(t, decimal.RequireFromString("375000").Equal(q.FinalPrice), q.FinalPrice.String())
	assert.True(t, decimal.NewFromInt(25).Equal(q.DiscountPercent))
	assert.False(t, q.IsFree)
	assert.Equal(t, Duration{Unit: Months, N: 1}, q.Duration)

	// the window is inclusive on both ends
	assert.True(t, Resolve(tier, start).DiscountPercent.Equal(decimal.NewFromInt(25)))
	assert.True(t, Resolve(tier, end).DiscountPercent.Equal(decimal.NewFromInt(25)))

	outside := Resolve(tier, date(2025, 2, 1, 0))
	assert.True(t, tier.BasePrice.Equal(outside.FinalPrice))
	assert.True(t, outside.DiscountPercent.IsZero())
}

func TestResolveRoundsToCents(t *testing.T) {
	tier := model.PricingTier{
		BasePrice:     decimal.RequireFromString("99.99"),
		DurationLabel: "10 buổi",
		Promotion:     &model.Promotion{DiscountPercent: decimal.RequireFromString("33.333")},
	}
	q := Resolve(tier, time.Now())
	assert.Equal(t, "66.66", q.FinalPrice.StringFixed(2))
	assert.Equal(t, Unlimited, q.Duration.Unit)
}

func TestResolveFreeTier(t *testing.T) {
	full := Resolve(model.PricingTier{
		BasePrice: decimal.NewFromInt(200000),
		Promotion: &model.Promotion{DiscountPercent: decimal.NewFromInt(100)},
	}, time.Now())
	assert.True(t, full.IsFree)

	zero := Resolve(model.PricingTier{BasePrice: decimal.Zero}, time.Now())
	assert.True(t, zero.IsFree)

	// a zero-percent promotion is not active
	none := Resolve(model.PricingTier{
		BasePrice: decimal.NewFromInt(100),
		Promotion: &model.Promotion{DiscountPercent: decimal.Zero},
	}, time.Now())
	assert.False(t, none.Promotion.ActiveAt(time.Now()))
	assert.True(t, none.DiscountPercent.IsZero())
}

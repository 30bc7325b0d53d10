package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]Duration{
		"3 months":  {Unit: Months, N: 3},
		"1 month":   {Unit: Months, N: 1},
		"3 Tháng":   {Unit: Months, N: 3},
		"12thang":   {Unit: Months, N: 12},
		"1 năm":     {Unit: Years, N: 1},
		"2 Years":   {Unit: Years, N: 2},
		"30 ngày":   {Unit: Days, N: 30},
		" 7 days ":  {Unit: Days, N: 7},
		"10 buổi":   {Unit: Unlimited},
		"unlimited": {Unit: Unlimited},
		"0 months":  {Unit: Unlimited},
		"":          {Unit: Unlimited},
	}
	for label, want := range cases {
		assert.Equal(t, want, ParseDuration(label), label)
	}
}

func TestDurationExpiresAt(t *testing.T) {
	from := date(2025, 1, 31, 9)

	got := Duration{Unit: Months, N: 1}.ExpiresAt(from)
	require.NotNil(t, got)
	// calendar arithmetic normalizes Feb 31 to Mar 3
	assert.Equal(t, date(2025, 3, 3, 9), *got)

	got = Duration{Unit: Days, N: 30}.ExpiresAt(from)
	require.NotNil(t, got)
	assert.Equal(t, date(2025, 3, 2, 9), *got)

	got = Duration{Unit: Years, N: 1}.ExpiresAt(from)
	require.NotNil(t, got)
	assert.Equal(t, date(2026, 1, 31, 9), *got)

	assert.Nil(t, Duration{Unit: Unlimited}.ExpiresAt(from))
}

func TestDurationString(t *testing.T) {
	assert.Equal(t, "3 months", Duration{Unit: Months, N: 3}.String())
	assert.Equal(t, "1 year", Duration{Unit: Years, N: 1}.String())
	assert.Equal(t, "unlimited", Duration{}.String())
}

package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sonuudigital/lovecakes/internal/pricing"
	"github.com/stretchr/testify/assert"
)

func ptr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCurrent(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		promo    *decimal.Decimal
		modifier string
		want     string
	}{
		{"base only", "80.00", nil, "0", "80.00"},
		{"promotion applied", "80.00", ptr("65.50"), "0", "65.50"},
		{"promotion plus size", "80.00", ptr("65.50"), "15.00", "80.50"},
		{"base plus size", "80.00", nil, "20.25", "100.25"},
		{"promotion equal to base ignored", "80.00", ptr("80.00"), "0", "80.00"},
		{"promotion above base ignored", "80.00", ptr("95.00"), "5.00", "85.00"},
		{"zero promotion ignored", "80.00", ptr("0"), "0", "80.00"},
		{"rounded to cents", "10.005", nil, "0", "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.Current(decimal.RequireFromString(tt.base), tt.promo, decimal.RequireFromString(tt.modifier))
			assert.Equal(t, tt.want, pricing.Format(got))
		})
	}
}

func TestHasPromotion(t *testing.T) {
	base := decimal.RequireFromString("50")
	assert.True(t, pricing.HasPromotion(base, ptr("49.99")))
	assert.False(t, pricing.HasPromotion(base, nil))
	assert.False(t, pricing.HasPromotion(base, ptr("-1")))
	assert.False(t, pricing.HasPromotion(base, ptr("50")))
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "131.00", pricing.Format(pricing.LineTotal(decimal.RequireFromString("65.50"), 2)))
	assert.Equal(t, "0.00", pricing.Format(pricing.LineTotal(decimal.Zero, 10)))
}

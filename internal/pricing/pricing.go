// Package pricing holds the storefront price rules. All amounts are
// fixed-point and rounded to cents.
package pricing

import "github.com/shopspring/decimal"

const Places = 2

// HasPromotion reports whether promo is a usable discount on base: positive
// and strictly cheaper.
func HasPromotion(base decimal.Decimal, promo *decimal.Decimal) bool {
	return promo != nil && promo.IsPositive() && promo.LessThan(base)
}

func Effective(base decimal.Decimal, promo *decimal.Decimal) decimal.Decimal {
	if HasPromotion(base, promo) {
		return promo.Round(Places)
	}
	return base.Round(Places)
}

// Current is the price of one unit for a given size. A product without sizes
// uses a zero modifier.
func Current(base decimal.Decimal, promo *decimal.Decimal, modifier decimal.Decimal) decimal.Decimal {
	return Effective(base, promo).Add(modifier).Round(Places)
}

func LineTotal(unit decimal.Decimal, quantity int32) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt32(quantity)).Round(Places)
}

func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

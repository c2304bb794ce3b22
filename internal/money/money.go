// Package money holds the currency helpers shared by pricing, orders and
// customers. Amounts are exact decimals; rounding happens only when a value
// is presented.
package money

import "github.com/shopspring/decimal"

// DisplayPlaces is the number of decimal places amounts are shown with.
const DisplayPlaces = 2

var hundred = decimal.NewFromInt(100)

// Percent returns pct percent of amount. pct is not clamped.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// RateFromPercent turns 5 into 0.05.
func RateFromPercent(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// Round rounds half away from zero to DisplayPlaces.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPlaces)
}

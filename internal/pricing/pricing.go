// Package pricing turns cart contents into bill totals.
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/money"
)

// DefaultTaxPercent is the GST rate the shop is configured with.
const DefaultTaxPercent = 5

// Totals are exact; call Rounded before showing them.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// Rounded returns the totals at display precision. Subtotal, discount and
// tax are rounded; taxable amount and total are derived from them, so the
// rounded figures still add up line by line.
func (t Totals) Rounded() Totals {
	subtotal := money.Round(t.Subtotal)
	discount := money.Round(t.DiscountAmount)
	taxable := subtotal.Sub(discount)
	tax := money.Round(t.Tax)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		Tax:            tax,
		Total:          taxable.Add(tax),
	}
}

// Calculate prices items with a discount percentage and a tax rate given as
// a fraction (0.05 for 5%). Tax applies to the amount left after discount.
// discountPercent is used as given, out-of-range values included.
func Calculate(items []cart.Item, discountPercent, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	discountAmount := money.Percent(subtotal, discountPercent)
	taxable := subtotal.Sub(discountAmount)
	tax := taxable.Mul(taxRate)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxable,
		Tax:            tax,
		Total:          taxable.Add(tax),
	}
}

// Calculator binds Calculate to the configured tax rate.
type Calculator struct {
	taxRate decimal.Decimal
}

// NewCalculator takes the tax rate as a percentage, 5 meaning 5%.
func NewCalculator(taxPercent decimal.Decimal) *Calculator {
	return &Calculator{taxRate: money.RateFromPercent(taxPercent)}
}

func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

func (c *Calculator) Calculate(items []cart.Item, discountPercent decimal.Decimal) Totals {
	return Calculate(items, discountPercent, c.taxRate)
}

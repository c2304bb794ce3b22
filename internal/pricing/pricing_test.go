package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/pricing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(id, price string, qty int) cart.Item {
	return cart.Item{Product: catalog.Product{ID: id, Price: dec(price)}, Quantity: qty}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestCalculate_SampleOrders(t *testing.T) {
	tests := []struct {
		name     string
		items    []cart.Item
		discount string
		subtotal string
		discAmt  string
		tax      string
		total    string
	}{
		{
			name:     "ORD-2024-001",
			items:    []cart.Item{item("1", "120", 2), item("11", "320", 1)},
			discount: "0",
			subtotal: "560", discAmt: "0", tax: "28", total: "588",
		},
		{
			name:     "ORD-2024-002",
			items:    []cart.Item{item("6", "180", 3), item("9", "120", 2)},
			discount: "5",
			subtotal: "780", discAmt: "39", tax: "37.05", total: "778.05",
		},
		{
			name:     "ORD-2024-004",
			items:    []cart.Item{item("2", "80", 5)},
			discount: "5",
			subtotal: "400", discAmt: "20", tax: "19", total: "399",
		},
		{
			name:     "empty_cart",
			items:    nil,
			discount: "10",
			subtotal: "0", discAmt: "0", tax: "0", total: "0",
		},
	}

	calc := pricing.NewCalculator(decimal.NewFromInt(pricing.DefaultTaxPercent))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Calculate(tt.items, dec(tt.discount))
			assertDecimal(t, tt.subtotal, got.Subtotal, "subtotal")
			assertDecimal(t, tt.discAmt, got.DiscountAmount, "discount")
			assertDecimal(t, tt.tax, got.Tax, "tax")
			assertDecimal(t, tt.total, got.Total, "total")
		})
	}
}

func TestCalculate_Identities(t *testing.T) {
	items := []cart.Item{item("a", "19.99", 3), item("b", "0.10", 7), item("c", "333.33", 1)}
	rate := dec("0.05")

	for pct := 0; pct <= 100; pct++ {
		got := pricing.Calculate(items, decimal.NewFromInt(int64(pct)), rate)

		assert.True(t, got.DiscountAmount.Add(got.TaxableAmount).Equal(got.Subtotal), "discount + taxable != subtotal at %d%%", pct)
		assert.True(t, got.TaxableAmount.Add(got.Tax).Equal(got.Total), "taxable + tax != total at %d%%", pct)
		assert.True(t, got.TaxableAmount.Mul(rate).Equal(got.Tax), "tax not on taxable amount at %d%%", pct)
	}
}

func TestCalculate_SubtotalIsSumOfLines(t *testing.T) {
	c := cart.New()
	c.Add(catalog.Product{ID: "1", Price: dec("120")})
	c.Add(catalog.Product{ID: "2", Price: dec("0.1")})
	c.SetQuantity("2", 3)
	c.Add(catalog.Product{ID: "1", Price: dec("120")})

	got := pricing.Calculate(c.Items(), decimal.Zero, dec("0.05"))
	assertDecimal(t, "240.3", got.Subtotal, "subtotal")

	c.Remove("1")
	got = pricing.Calculate(c.Items(), decimal.Zero, dec("0.05"))
	assertDecimal(t, "0.3", got.Subtotal, "subtotal")
}

func TestCalculate_DiscountNotClamped(t *testing.T) {
	items := []cart.Item{item("1", "100", 1)}

	over := pricing.Calculate(items, dec("150"), dec("0.05"))
	assertDecimal(t, "150", over.DiscountAmount, "discount")
	assertDecimal(t, "-50", over.TaxableAmount, "taxable")
	assertDecimal(t, "-52.5", over.Total, "total")

	under := pricing.Calculate(items, dec("-10"), dec("0.05"))
	assertDecimal(t, "110", under.TaxableAmount, "taxable")
}

func TestCalculate_PerItemDiscountNotPriced(t *testing.T) {
	d := dec("50")
	withDiscount := item("1", "100", 1)
	withDiscount.Discount = &d

	got := pricing.Calculate([]cart.Item{withDiscount}, decimal.Zero, dec("0.05"))
	assertDecimal(t, "100", got.Subtotal, "subtotal")
}

func TestTotals_Rounded(t *testing.T) {
	got := pricing.Calculate([]cart.Item{item("1", "33.33", 1)}, dec("7"), dec("0.05")).Rounded()

	// 33.33 - 2.3331 = 30.9969; tax 1.549845; total 32.546745
	assertDecimal(t, "2.33", got.DiscountAmount, "discount")
	assertDecimal(t, "31", got.TaxableAmount, "taxable")
	assertDecimal(t, "1.55", got.Tax, "tax")
	assertDecimal(t, "32.55", got.Total, "total")
}

func TestTotals_RoundedAddsUp(t *testing.T) {
	rate := dec("0.05")
	percents := []string{"0", "2.5", "5", "7.5", "12.5", "15", "33.33"}

	for cents := int64(1001); cents <= 1399; cents++ {
		price := decimal.New(cents, -2)
		for _, pct := range percents {
			got := pricing.Calculate([]cart.Item{{Product: catalog.Product{ID: "1", Price: price}, Quantity: 1}}, dec(pct), rate).Rounded()

			assert.True(t, got.DiscountAmount.Add(got.TaxableAmount).Equal(got.Subtotal), "price %s at %s%%: discount + taxable != subtotal", price, pct)
			assert.True(t, got.TaxableAmount.Add(got.Tax).Equal(got.Total), "price %s at %s%%: taxable + tax != total", price, pct)
			assert.True(t, got.Subtotal.Sub(got.DiscountAmount).Add(got.Tax).Equal(got.Total), "price %s at %s%%: subtotal - discount + tax != total", price, pct)
			assert.True(t, got.Total.Equal(got.Total.Round(2)), "price %s at %s%%: total has more than 2 places", price, pct)
		}
	}
}

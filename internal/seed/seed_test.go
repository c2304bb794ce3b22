package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/customer"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/pricing"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/seed"
)

func TestOrders_TotalsMatchCalculator(t *testing.T) {
	rate := decimal.RequireFromString("0.05")

	for _, o := range seed.Orders(time.UTC) {
		t.Run(o.ID, func(t *testing.T) {
			got := pricing.Calculate(o.Items, o.DiscountPercent, rate).Rounded()
			assert.True(t, o.Subtotal.Equal(got.Subtotal), "subtotal: want %s got %s", o.Subtotal, got.Subtotal)
			assert.True(t, o.Discount.Equal(got.DiscountAmount), "discount: want %s got %s", o.Discount, got.DiscountAmount)
			assert.True(t, o.Tax.Equal(got.Tax), "tax: want %s got %s", o.Tax, got.Tax)
			assert.True(t, o.Total.Equal(got.Total), "total: want %s got %s", o.Total, got.Total)
		})
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	repos := seed.Repositories{
		Products:  catalog.NewMemoryRepository(),
		Customers: customer.NewMemoryRepository(),
		Orders:    order.NewMemoryRepository(),
	}

	require.NoError(t, seed.Load(ctx, repos, nil))

	products, err := repos.Products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 16)
	for _, p := range products {
		assert.True(t, p.Category.Valid(), "product %s", p.ID)
		assert.True(t, p.Unit.Valid(), "product %s", p.ID)
	}

	customers, err := repos.Customers.List(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 4)

	orders, err := repos.Orders.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 4)
	assert.Equal(t, "ORD-2024-003", orders[0].ID)
	assert.Equal(t, "ORD-2024-004", orders[3].ID)

	byID, err := repos.Products.GetByBarcode(ctx, "8901234567893")
	require.NoError(t, err)
	assert.Equal(t, catalog.StockLow, byID.StockStatus())

	err = seed.Load(ctx, repos, time.UTC)
	require.ErrorIs(t, err, catalog.ErrDuplicateProduct, "loading twice must not silently duplicate")
}

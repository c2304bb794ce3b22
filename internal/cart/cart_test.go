package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
)

var (
	foxtail = catalog.Product{ID: "1", Name: "Foxtail Millet", Price: decimal.NewFromInt(120), Stock: 50, MinStock: 10}
	laddu   = catalog.Product{ID: "11", Name: "Ragi Laddu", Price: decimal.NewFromInt(320), Stock: 15, MinStock: 5}
	cookies = catalog.Product{ID: "9", Name: "Millet Cookies", Price: decimal.NewFromInt(120), Stock: 0, MinStock: 10}
)

func ids(items []cart.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Product.ID)
	}
	return out
}

func TestCart_Add(t *testing.T) {
	c := cart.New()
	c.Add(foxtail)
	c.Add(laddu)
	require.Equal(t, 2, c.Len())

	c.Add(foxtail)

	assert.Equal(t, 2, c.Len(), "adding an existing product must not create a new entry")
	assert.Equal(t, 2, c.Quantity("1"))
	assert.Equal(t, 1, c.Quantity("11"))
	assert.Equal(t, []string{"1", "11"}, ids(c.Items()))
}

func TestCart_Add_IgnoresStock(t *testing.T) {
	c := cart.New()
	c.Add(cookies)
	c.Add(cookies)

	assert.Equal(t, 2, c.Quantity("9"))
}

func TestCart_SetQuantity(t *testing.T) {
	c := cart.New()
	c.Add(foxtail)
	c.Add(laddu)

	c.SetQuantity("1", 7)
	assert.Equal(t, 7, c.Quantity("1"))

	c.SetQuantity("missing", 3)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0, c.Quantity("missing"))
}

func TestCart_SetQuantityZeroEqualsRemove(t *testing.T) {
	for _, qty := range []int{0, -3} {
		viaSet := cart.New()
		viaSet.Add(foxtail)
		viaSet.Add(laddu)
		viaSet.SetQuantity("1", qty)

		viaRemove := cart.New()
		viaRemove.Add(foxtail)
		viaRemove.Add(laddu)
		viaRemove.Remove("1")

		assert.Equal(t, viaRemove.Items(), viaSet.Items())
	}
}

func TestCart_Remove(t *testing.T) {
	c := cart.New()
	c.Add(foxtail)
	c.Add(laddu)
	c.Add(cookies)

	c.Remove("11")
	assert.Equal(t, []string{"1", "9"}, ids(c.Items()))

	c.Remove("11")
	assert.Equal(t, 2, c.Len())
}

func TestCart_Clear(t *testing.T) {
	c := cart.New()
	c.Add(foxtail)
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Items())
}

func TestCart_ItemsIsACopy(t *testing.T) {
	c := cart.New()
	c.Add(foxtail)

	items := c.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, c.Quantity("1"))
}

func TestItem_LineTotal(t *testing.T) {
	c := cart.New()
	c.Add(foxtail)
	c.Add(foxtail)
	c.Add(laddu)

	items := c.Items()
	assert.True(t, decimal.NewFromInt(240).Equal(items[0].LineTotal()))
	assert.Equal(t, 3, c.Units())
}

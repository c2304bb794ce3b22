// Package cart holds the items of a billing session. Every operation is
// total: there are no error paths and no stock checks.
package cart

import (
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
)

// Item is a product snapshot with a positive quantity. Discount is an
// optional per-item percentage that is carried into orders but not priced.
type Item struct {
	Product  catalog.Product  `json:"product"`
	Quantity int              `json:"quantity"`
	Discount *decimal.Decimal `json:"discount,omitempty"`
}

// LineTotal is price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered list of items, unique by product id.
type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of product in the cart. A product already present gets
// its quantity bumped instead of a second entry.
func (c *Cart) Add(product catalog.Product) {
	if i := c.index(product.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, Item{Product: product, Quantity: 1})
}

// SetQuantity replaces the quantity of a product. Zero or less removes it.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Len is the number of distinct products.
func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Units is the total quantity across all items.
func (c *Cart) Units() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) index(productID string) int {
	for i, item := range c.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

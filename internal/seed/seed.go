// Package seed loads the shop's sample catalog, customers and orders.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/customer"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
)

type Repositories struct {
	Products  catalog.Repository
	Customers customer.Repository
	Orders    order.Repository
}

func product(id, name string, category catalog.Category, price, cost int64, stock, minStock int, unit catalog.Unit, barcode string) catalog.Product {
	return catalog.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Price:    decimal.NewFromInt(price),
		Cost:     decimal.NewFromInt(cost),
		Stock:    stock,
		MinStock: minStock,
		Unit:     unit,
		Barcode:  barcode,
	}
}

// Products is the sample catalog of sixteen millet products.
func Products() []catalog.Product {
	products := []catalog.Product{
		product("1", "Foxtail Millet", catalog.CategoryRawMillets, 120, 90, 50, 10, catalog.UnitKg, "8901234567890"),
		product("2", "Pearl Millet (Bajra)", catalog.CategoryRawMillets, 80, 60, 75, 15, catalog.UnitKg, "8901234567891"),
		product("3", "Finger Millet (Ragi)", catalog.CategoryRawMillets, 100, 75, 40, 10, catalog.UnitKg, "8901234567892"),
		product("4", "Little Millet", catalog.CategoryRawMillets, 150, 120, 8, 10, catalog.UnitKg, "8901234567893"),
		product("5", "Barnyard Millet", catalog.CategoryRawMillets, 140, 110, 25, 10, catalog.UnitKg, "8901234567894"),
		product("6", "Millet Flour Mix", catalog.CategoryProcessed, 180, 140, 30, 8, catalog.UnitKg, "8901234567895"),
		product("7", "Ragi Flour", catalog.CategoryProcessed, 160, 120, 45, 10, catalog.UnitKg, "8901234567896"),
		product("8", "Millet Noodles", catalog.CategoryProcessed, 80, 60, 60, 15, catalog.UnitPacket, "8901234567897"),
		product("9", "Millet Cookies", catalog.CategorySnacks, 120, 90, 35, 10, catalog.UnitPacket, "8901234567898"),
		product("10", "Millet Crackers", catalog.CategorySnacks, 100, 75, 42, 12, catalog.UnitPacket, "8901234567899"),
		product("11", "Ragi Laddu", catalog.CategorySweets, 320, 240, 15, 5, catalog.UnitKg, "8901234567900"),
		product("12", "Nuvvula Laddu", catalog.CategorySweets, 380, 280, 12, 5, catalog.UnitKg, "8901234567901"),
		product("13", "Millet Poli", catalog.CategorySweets, 200, 150, 20, 8, catalog.UnitPiece, "8901234567902"),
		product("14", "Millet Dosa Mix", catalog.CategoryBreakfast, 150, 115, 28, 8, catalog.UnitKg, "8901234567903"),
		product("15", "Pesarattu Mix", catalog.CategoryBreakfast, 140, 105, 32, 10, catalog.UnitKg, "8901234567904"),
		product("16", "Millet Idly Mix", catalog.CategoryBreakfast, 120, 90, 38, 10, catalog.UnitKg, "8901234567905"),
	}
	products[0].Supplier = "Organic Farms Ltd"
	products[0].Description = "Premium quality foxtail millet"
	products[1].Supplier = "Organic Farms Ltd"
	return products
}

func Customers(loc *time.Location) []customer.Customer {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, loc) }
	return []customer.Customer{
		{ID: "1", Name: "Rajesh Kumar", Phone: "+91 9876543210", Email: "rajesh@email.com", Address: "123 MG Road, Bangalore", TotalPurchases: decimal.NewFromInt(15420), LastVisit: day(15)},
		{ID: "2", Name: "Priya Sharma", Phone: "+91 9876543211", Email: "priya@email.com", Address: "456 Koramangala, Bangalore", TotalPurchases: decimal.NewFromInt(8750), LastVisit: day(14)},
		{ID: "3", Name: "Amit Patel", Phone: "+91 9876543212", TotalPurchases: decimal.NewFromInt(12300), LastVisit: day(13)},
		{ID: "4", Name: "Sunita Devi", Phone: "+91 9876543213", Email: "sunita@email.com", TotalPurchases: decimal.NewFromInt(5680), LastVisit: day(12)},
	}
}

// Orders are the sample orders with their totals as originally billed.
func Orders(loc *time.Location) []order.Order {
	at := func(d, h, m int) time.Time { return time.Date(2024, time.January, d, h, m, 0, 0, loc) }
	ptr := func(t time.Time) *time.Time { return &t }

	catalogByID := make(map[string]catalog.Product)
	for _, p := range Products() {
		catalogByID[p.ID] = p
	}
	line := func(id string, qty int) cart.Item {
		p := catalogByID[id]
		p.Barcode, p.Supplier, p.Description = "", "", ""
		return cart.Item{Product: p, Quantity: qty}
	}
	amount := decimal.RequireFromString

	orders := []order.Order{
		{
			ID: "ORD-2024-001", CustomerID: "1",
			Items:    []cart.Item{line("1", 2), line("11", 1)},
			Subtotal: amount("560"), DiscountPercent: decimal.Zero, Discount: decimal.Zero, Tax: amount("28"), Total: amount("588"),
			Status: order.StatusConfirmed, OrderType: order.TypeOnline,
			Date: at(15, 10, 30), ExpectedDelivery: ptr(at(16, 15, 0)), Notes: "Please pack carefully",
		},
		{
			ID: "ORD-2024-002", CustomerID: "2",
			Items:    []cart.Item{line("6", 3), line("9", 2)},
			Subtotal: amount("780"), DiscountPercent: amount("5"), Discount: amount("39"), Tax: amount("37.05"), Total: amount("778.05"),
			Status: order.StatusProcessing, OrderType: order.TypePhone,
			Date: at(15, 14, 20), ExpectedDelivery: ptr(at(17, 11, 0)),
		},
		{
			ID: "ORD-2024-003", CustomerID: "3",
			Items:    []cart.Item{line("14", 2), line("15", 1)},
			Subtotal: amount("440"), DiscountPercent: decimal.Zero, Discount: decimal.Zero, Tax: amount("22"), Total: amount("462"),
			Status: order.StatusReady, OrderType: order.TypeWalkIn,
			Date: at(15, 16, 45),
		},
		{
			ID: "ORD-2024-004", CustomerID: "4",
			Items:    []cart.Item{line("2", 5)},
			Subtotal: amount("400"), DiscountPercent: amount("5"), Discount: amount("20"), Tax: amount("19"), Total: amount("399"),
			Status: order.StatusDelivered, OrderType: order.TypeOnline,
			Date: at(14, 9, 15), ExpectedDelivery: ptr(at(15, 14, 0)),
		},
	}
	for i := range orders {
		orders[i].UpdatedAt = orders[i].Date
	}
	return orders
}

// Load writes the sample data straight into the repositories so ids, dates
// and frozen totals are kept as they are.
func Load(ctx context.Context, repos Repositories, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	products, customers, orders := Products(), Customers(loc), Orders(loc)

	for _, p := range products {
		p := p
		if err := repos.Products.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed: product %s: %w", p.ID, err)
		}
	}
	for _, c := range customers {
		c := c
		if err := repos.Customers.Create(ctx, &c); err != nil {
			return fmt.Errorf("seed: customer %s: %w", c.ID, err)
		}
	}
	for _, o := range orders {
		o := o
		if err := repos.Orders.CreateOrder(ctx, &o); err != nil {
			return fmt.Errorf("seed: order %s: %w", o.ID, err)
		}
	}

	log.Info().
		Int("products", len(products)).
		Int("customers", len(customers)).
		Int("orders", len(orders)).
		Msg("seed: sample data loaded")
	return nil
}

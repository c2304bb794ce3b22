package catalog

import (
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryRawMillets Category = "raw-millets"
	CategoryProcessed  Category = "processed"
	CategorySweets     Category = "sweets"
	CategoryBreakfast  Category = "breakfast"
	CategorySnacks     Category = "snacks"
)

var categoryLabels = map[Category]string{
	CategoryRawMillets: "Raw Millets",
	CategoryProcessed:  "Processed Products",
	CategorySweets:     "Sweets & Desserts",
	CategoryBreakfast:  "Breakfast Items",
	CategorySnacks:     "Snacks & Crackers",
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryRawMillets, CategoryProcessed, CategorySweets, CategoryBreakfast, CategorySnacks}
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the human readable category name.
func (c Category) Label() string {
	return categoryLabels[c]
}

func (c Category) String() string {
	return string(c)
}

type Unit string

const (
	UnitKg     Unit = "kg"
	UnitGram   Unit = "g"
	UnitPiece  Unit = "piece"
	UnitPacket Unit = "packet"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitGram, UnitPiece, UnitPacket:
		return true
	}
	return false
}

type StockStatus string

const (
	StockIn  StockStatus = "in-stock"
	StockLow StockStatus = "low-stock"
	StockOut StockStatus = "out-of-stock"
)

// StockStatusOf classifies a stock level against its reorder threshold.
// An empty shelf is out of stock whatever the threshold is.
func StockStatusOf(stock, minStock int) StockStatus {
	switch {
	case stock == 0:
		return StockOut
	case stock <= minStock:
		return StockLow
	default:
		return StockIn
	}
}

// Product is shared reference data. Price is expected to be at least Cost
// but nothing enforces it.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	Unit        Unit            `json:"unit"`
	Barcode     string          `json:"barcode,omitempty"`
	Description string          `json:"description,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
}

func (p Product) StockStatus() StockStatus {
	return StockStatusOf(p.Stock, p.MinStock)
}

// IsLowStock reports stock at or below the threshold, empty shelves included.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

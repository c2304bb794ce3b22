// Package report derives the dashboard figures from orders, customers and
// the catalog. Nothing here is stored.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/customer"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/money"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
)

const (
	trendDays    = 7
	recentOrders = 5
	topProducts  = 5
)

type OrderSource interface {
	ListOrders(ctx context.Context, filter order.Filter) ([]order.Order, error)
	Stats(ctx context.Context, now time.Time) (order.Stats, error)
}

type CustomerSource interface {
	ListCustomers(ctx context.Context, filter customer.Filter) ([]customer.Customer, error)
	Stats(ctx context.Context, now time.Time) (customer.Stats, error)
}

type CatalogSource interface {
	ListProducts(ctx context.Context, filter catalog.Filter) ([]catalog.Product, error)
	LowStockProducts(ctx context.Context) ([]catalog.Product, error)
	InventoryValue(ctx context.Context) (decimal.Decimal, error)
}

type CategorySales struct {
	Category catalog.Category `json:"category"`
	Label    string           `json:"label"`
	Amount   decimal.Decimal  `json:"amount"`
}

type PaymentSales struct {
	Method order.PaymentMethod `json:"method"`
	Orders int                 `json:"orders"`
	Amount decimal.Decimal     `json:"amount"`
}

type DaySales struct {
	Date   string          `json:"date"`
	Orders int             `json:"orders"`
	Sales  decimal.Decimal `json:"sales"`
}

type ProductSales struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type TierCount struct {
	Tier      customer.Tier `json:"tier"`
	Customers int           `json:"customers"`
}

type Dashboard struct {
	GeneratedAt       time.Time         `json:"generated_at"`
	Orders            order.Stats       `json:"orders"`
	Customers         customer.Stats    `json:"customers"`
	CustomersByTier   []TierCount       `json:"customers_by_tier"`
	Products          int               `json:"products"`
	LowStock          []catalog.Product `json:"low_stock"`
	InventoryValue    decimal.Decimal   `json:"inventory_value"`
	GrossProfit       decimal.Decimal   `json:"gross_profit"`
	SalesByCategory   []CategorySales   `json:"sales_by_category"`
	SalesByPayment    []PaymentSales    `json:"sales_by_payment"`
	SalesTrend        []DaySales        `json:"sales_trend"`
	TopByRevenue      []ProductSales    `json:"top_by_revenue"`
	TopByQuantity     []ProductSales    `json:"top_by_quantity"`
	RecentOrders      []order.Order     `json:"recent_orders"`
	CancelledExcluded int               `json:"cancelled_excluded"`
}

type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	orders    OrderSource
	customers CustomerSource
	catalog   CatalogSource
	now       func() time.Time
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func NewService(orders OrderSource, customers CustomerSource, catalog CatalogSource, opts ...Option) Service {
	s := &service{orders: orders, customers: customers, catalog: catalog, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()

	orderStats, err := s.orders.Stats(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get order stats: %w", err)
	}
	customerStats, err := s.customers.Stats(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get customer stats: %w", err)
	}
	customers, err := s.customers.ListCustomers(ctx, customer.Filter{})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list customers: %w", err)
	}
	products, err := s.catalog.ListProducts(ctx, catalog.Filter{})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	lowStock, err := s.catalog.LowStockProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get low stock products: %w", err)
	}
	value, err := s.catalog.InventoryValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get inventory value: %w", err)
	}
	orders, err := s.orders.ListOrders(ctx, order.Filter{})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	d := &Dashboard{
		GeneratedAt:     now,
		Orders:          orderStats,
		Customers:       customerStats,
		CustomersByTier: tierCounts(customers),
		Products:        len(products),
		LowStock:        lowStock,
		InventoryValue:  value,
		GrossProfit:     grossProfit(orders),
		SalesTrend:      salesTrend(orders, now),
	}
	d.SalesByCategory, d.SalesByPayment, d.CancelledExcluded = salesBreakdown(orders)
	d.TopByRevenue, d.TopByQuantity = productRankings(orders)

	if len(orders) > recentOrders {
		orders = orders[:recentOrders]
	}
	d.RecentOrders = orders

	return d, nil
}

// salesBreakdown sums line totals per category and order totals per payment
// method. Cancelled orders are left out and counted.
func salesBreakdown(orders []order.Order) ([]CategorySales, []PaymentSales, int) {
	byCategory := make(map[catalog.Category]decimal.Decimal)
	byPayment := make(map[order.PaymentMethod]*PaymentSales)
	cancelled := 0

	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			cancelled++
			continue
		}
		for _, item := range o.Items {
			byCategory[item.Product.Category] = byCategory[item.Product.Category].Add(item.LineTotal())
		}
		if o.PaymentMethod == "" {
			continue
		}
		ps, ok := byPayment[o.PaymentMethod]
		if !ok {
			ps = &PaymentSales{Method: o.PaymentMethod, Amount: decimal.Zero}
			byPayment[o.PaymentMethod] = ps
		}
		ps.Orders++
		ps.Amount = ps.Amount.Add(o.Total)
	}

	categories := make([]CategorySales, 0, len(byCategory))
	for _, c := range catalog.Categories() {
		if amount, ok := byCategory[c]; ok {
			categories = append(categories, CategorySales{Category: c, Label: c.Label(), Amount: money.Round(amount)})
		}
	}

	payments := make([]PaymentSales, 0, len(byPayment))
	for _, m := range []order.PaymentMethod{order.PaymentCash, order.PaymentCard, order.PaymentUPI, order.PaymentSplit} {
		if ps, ok := byPayment[m]; ok {
			ps.Amount = money.Round(ps.Amount)
			payments = append(payments, *ps)
		}
	}

	return categories, payments, cancelled
}

// salesTrend buckets non-cancelled orders into the last trendDays calendar
// days ending today, oldest first.
func salesTrend(orders []order.Order, now time.Time) []DaySales {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	days := make([]DaySales, trendDays)
	index := make(map[string]int, trendDays)
	for i := range days {
		day := today.AddDate(0, 0, i-trendDays+1).Format(time.DateOnly)
		days[i] = DaySales{Date: day, Sales: decimal.Zero}
		index[day] = i
	}

	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		i, ok := index[o.Date.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		days[i].Orders++
		days[i].Sales = days[i].Sales.Add(o.Total)
	}
	return days
}

// grossProfit is the margin over cost on every line of a non-cancelled
// order, before order discounts.
func grossProfit(orders []order.Order) decimal.Decimal {
	profit := decimal.Zero
	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		for _, item := range o.Items {
			margin := item.Product.Price.Sub(item.Product.Cost)
			profit = profit.Add(margin.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return money.Round(profit)
}

// productRankings totals units and line revenue per product over
// non-cancelled orders and returns the topProducts leaders by revenue and
// by quantity. Ties fall back to the other measure, then to the name.
func productRankings(orders []order.Order) ([]ProductSales, []ProductSales) {
	byProduct := make(map[string]*ProductSales)
	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		for _, item := range o.Items {
			ps, ok := byProduct[item.Product.ID]
			if !ok {
				ps = &ProductSales{ProductID: item.Product.ID, Name: item.Product.Name, Revenue: decimal.Zero}
				byProduct[item.Product.ID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.LineTotal())
		}
	}

	all := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		ps.Revenue = money.Round(ps.Revenue)
		all = append(all, *ps)
	}

	byRevenue := append([]ProductSales(nil), all...)
	sort.Slice(byRevenue, func(i, j int) bool {
		a, b := byRevenue[i], byRevenue[j]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})

	byQuantity := all
	sort.Slice(byQuantity, func(i, j int) bool {
		a, b := byQuantity[i], byQuantity[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.Name < b.Name
	})

	if len(byRevenue) > topProducts {
		byRevenue = byRevenue[:topProducts]
	}
	if len(byQuantity) > topProducts {
		byQuantity = byQuantity[:topProducts]
	}
	return byRevenue, byQuantity
}

// tierCounts counts customers per loyalty tier, highest tier first. Empty
// tiers are listed with zero.
func tierCounts(customers []customer.Customer) []TierCount {
	counts := []TierCount{
		{Tier: customer.TierGold},
		{Tier: customer.TierSilver},
		{Tier: customer.TierBronze},
		{Tier: customer.TierRegular},
	}
	for _, c := range customers {
		tier := c.Tier()
		for i := range counts {
			if counts[i].Tier == tier {
				counts[i].Customers++
				break
			}
		}
	}
	return counts
}

package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/customer"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/metrics"
)

var (
	ErrEmptyOrder              = errors.New("order must contain at least one item")
	ErrInvalidOrder            = errors.New("invalid order")
	ErrUnknownStatus           = errors.New("unknown order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrStatusConflict          = errors.New("order status changed concurrently")
)

// CustomerLookup resolves customer names and phones for order search.
type CustomerLookup interface {
	GetCustomerByID(ctx context.Context, id string) (*customer.Customer, error)
}

// Filter is the order table state. Empty fields match everything.
type Filter struct {
	Search string
	Status OrderStatus
	Type   OrderType
}

type Stats struct {
	Total        int             `json:"total"`
	Pending      int             `json:"pending"`
	Ready        int             `json:"ready"`
	TodayRevenue decimal.Decimal `json:"today_revenue"`
}

type Service interface {
	CreateOrder(ctx context.Context, orderInput *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, filter Filter) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, newStatus OrderStatus) (*Order, error)
	Stats(ctx context.Context, now time.Time) (Stats, error)
}

type Option func(*service)

// WithFreeStatusTransitions lets any status be assigned from any other, as
// the shop's order screen always allowed.
func WithFreeStatusTransitions(free bool) Option {
	return func(s *service) {
		s.freeTransitions = free
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func WithCustomerLookup(customers CustomerLookup) Option {
	return func(s *service) {
		s.customers = customers
	}
}

type service struct {
	orderRepo       Repository
	customers       CustomerLookup
	freeTransitions bool
	now             func() time.Time
}

func NewService(orderRepo Repository, opts ...Option) Service {
	s := &service{
		orderRepo: orderRepo,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateOrder(ctx context.Context, orderInput *Order) (*Order, error) {
	if len(orderInput.Items) == 0 {
		log.Warn().Msg("service: attempt to create order with no items")
		return nil, ErrEmptyOrder
	}

	for _, item := range orderInput.Items {
		if item.Product.ID == "" {
			return nil, fmt.Errorf("%w: product id in order item cannot be empty", ErrInvalidOrder)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %s must be greater than zero", ErrInvalidOrder, item.Product.ID)
		}
	}

	if orderInput.OrderType == "" {
		orderInput.OrderType = TypeWalkIn
	}
	if !orderInput.OrderType.Valid() {
		return nil, fmt.Errorf("%w: unknown order type %q", ErrInvalidOrder, orderInput.OrderType)
	}
	if orderInput.PaymentMethod != "" && !orderInput.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, orderInput.PaymentMethod)
	}
	if orderInput.Status == "" {
		orderInput.Status = orderInput.OrderType.InitialStatus()
	}
	if !orderInput.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, orderInput.Status)
	}

	now := s.now()
	if orderInput.Date.IsZero() {
		orderInput.Date = now
	}
	orderInput.UpdatedAt = now

	if orderInput.ID == "" {
		id, err := newOrderID(orderInput.Date)
		if err != nil {
			log.Error().Err(err).Msg("service: failed to generate order ID")
			return nil, fmt.Errorf("service: failed to generate order ID: %w", err)
		}
		orderInput.ID = id
	}

	if err := s.orderRepo.CreateOrder(ctx, orderInput); err != nil {
		if errors.Is(err, ErrDuplicateOrderID) {
			return nil, ErrDuplicateOrderID
		}
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Str("order_id", orderInput.ID).
		Str("customer_id", orderInput.CustomerID).
		Stringer("status", orderInput.Status).
		Str("total", orderInput.Total.StringFixed(2)).
		Msg("service: order created successfully")

	created := orderInput.clone()
	return &created, nil
}

func (s *service) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Err(err).Str("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}

		log.Error().Err(err).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return order, nil
}

func (s *service) ListOrders(ctx context.Context, filter Filter) ([]Order, error) {
	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Type != "" && o.OrderType != filter.Type {
			continue
		}
		if search != "" && !s.matchesSearch(ctx, o, search) {
			continue
		}
		result = append(result, o)
	}

	return result, nil
}

func (s *service) matchesSearch(ctx context.Context, o Order, search string) bool {
	if strings.Contains(strings.ToLower(o.ID), search) {
		return true
	}
	if s.customers == nil || o.IsWalkInCustomer() {
		return false
	}

	c, err := s.customers.GetCustomerByID(ctx, o.CustomerID)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(c.Name), search) || strings.Contains(c.Phone, search)
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID string, newStatus OrderStatus) (*Order, error) {
	if !newStatus.Valid() {
		log.Warn().Str("order_id", orderID).Stringer("new_status", newStatus).Msg("service: unknown status requested")
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}

	currentOrder, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Err(err).Str("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Str("order_id", orderID).Msg("service: failed to get order for status update")
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if currentOrder.Status == newStatus {
		log.Info().Str("order_id", orderID).Stringer("status", newStatus).Msg("service: order status is already the same, no update needed")
		return currentOrder, nil
	}

	if !s.freeTransitions && !CanTransition(currentOrder.Status, newStatus) {
		log.Warn().
			Str("order_id", currentOrder.ID).
			Stringer("current_status", currentOrder.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, currentOrder.Status, newStatus)
	}

	now := s.now()
	err = s.orderRepo.UpdateOrderStatus(ctx, orderID, currentOrder.Status, newStatus, now)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrStatusConflict) {
			log.Warn().Err(err).Str("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order changed during status update")
			return nil, err
		}
		log.Error().Err(err).Str("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	metrics.ObserveStatusChange(newStatus.String())
	log.Info().Str("order_id", orderID).Stringer("old_status", currentOrder.Status).Stringer("new_status", newStatus).Msg("service: order status updated successfully")

	currentOrder.Status = newStatus
	currentOrder.UpdatedAt = now
	return currentOrder, nil
}

// Stats counts open orders and sums the revenue of orders dated on now's
// calendar day, in now's location.
func (s *service) Stats(ctx context.Context, now time.Time) (Stats, error) {
	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("service: failed to list orders: %w", err)
	}

	stats := Stats{Total: len(orders), TodayRevenue: decimal.Zero}
	y, m, d := now.Date()
	for _, o := range orders {
		switch o.Status {
		case StatusPending, StatusConfirmed:
			stats.Pending++
		case StatusReady:
			stats.Ready++
		}
		oy, om, od := o.Date.In(now.Location()).Date()
		if oy == y && om == m && od == d {
			stats.TodayRevenue = stats.TodayRevenue.Add(o.Total)
		}
	}
	return stats, nil
}

func newOrderID(at time.Time) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", at.Year(), suffix), nil
}

package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateOrderID = errors.New("order with this ID already exists")
)

type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, from, to OrderStatus, at time.Time) error
}

type memoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewMemoryRepository() Repository {
	return &memoryRepository{orders: make(map[string]Order)}
}

func (r *memoryRepository) CreateOrder(ctx context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return ErrDuplicateOrderID
	}
	r.orders[order.ID] = order.clone()
	return nil
}

func (r *memoryRepository) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	out := stored.clone()
	return &out, nil
}

// ListOrders returns the newest orders first.
func (r *memoryRepository) ListOrders(ctx context.Context) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o.clone())
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Date.Equal(orders[j].Date) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].Date.After(orders[j].Date)
	})
	return orders, nil
}

// UpdateOrderStatus is a compare-and-set: it fails with ErrStatusConflict
// when the stored status is no longer from.
func (r *memoryRepository) UpdateOrderStatus(ctx context.Context, orderID string, from, to OrderStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[orderID]
	if !ok {
		log.Warn().Str("order_id", orderID).Stringer("new_status", to).Msg("repository: order not found for status update")
		return ErrOrderNotFound
	}
	if stored.Status != from {
		return ErrStatusConflict
	}

	stored.Status = to
	stored.UpdatedAt = at
	r.orders[orderID] = stored
	return nil
}

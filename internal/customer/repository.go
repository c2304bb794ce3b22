package customer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("customer not found")
	ErrDuplicateCustomer = errors.New("customer with this id already exists")
)

type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	UpdateContact(ctx context.Context, customer *Customer) (*Customer, error)
	Delete(ctx context.Context, id string) error
	AddPurchase(ctx context.Context, id string, amount decimal.Decimal, at time.Time) (*Customer, error)
}

type memoryRepository struct {
	mu        sync.RWMutex
	customers map[string]Customer
	order     []string
}

func NewMemoryRepository() Repository {
	return &memoryRepository{customers: make(map[string]Customer)}
}

func (r *memoryRepository) Create(ctx context.Context, customer *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[customer.ID]; ok {
		return ErrDuplicateCustomer
	}
	r.customers[customer.ID] = *customer
	r.order = append(r.order, customer.ID)
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepository) List(ctx context.Context) ([]Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Customer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.customers[id])
	}
	return out, nil
}

// UpdateContact replaces name, phone, email and address and leaves the
// purchase history as stored, so it cannot undo a concurrent AddPurchase.
func (r *memoryRepository) UpdateContact(ctx context.Context, customer *Customer) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[customer.ID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Name = customer.Name
	c.Phone = customer.Phone
	c.Email = customer.Email
	c.Address = customer.Address
	r.customers[customer.ID] = c
	return &c, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[id]; !ok {
		return ErrNotFound
	}
	delete(r.customers, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// AddPurchase adds amount to the running total and moves the last visit
// forward, never backward.
func (r *memoryRepository) AddPurchase(ctx context.Context, id string, amount decimal.Decimal, at time.Time) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.TotalPurchases = c.TotalPurchases.Add(amount)
	if at.After(c.LastVisit) {
		c.LastVisit = at
	}
	r.customers[id] = c
	return &c, nil
}

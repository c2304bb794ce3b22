package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product with this id or barcode already exists")
)

type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}

// memoryRepository keeps products in insertion order.
type memoryRepository struct {
	mu       sync.RWMutex
	products map[string]Product
	order    []string
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		products: make(map[string]Product),
	}
}

func (r *memoryRepository) Create(ctx context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; ok {
		return ErrDuplicateProduct
	}
	if product.Barcode != "" && r.barcodeTaken(product.Barcode, "") {
		return ErrDuplicateProduct
	}

	r.products[product.ID] = *product
	r.order = append(r.order, product.ID)
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

func (r *memoryRepository) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if product := r.products[id]; product.Barcode == barcode {
			return &product, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *memoryRepository) List(ctx context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]Product, 0, len(r.order))
	for _, id := range r.order {
		products = append(products, r.products[id])
	}
	return products, nil
}

func (r *memoryRepository) Update(ctx context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		log.Warn().Str("product_id", product.ID).Msg("repository: product not found for update")
		return ErrProductNotFound
	}
	if product.Barcode != "" && r.barcodeTaken(product.Barcode, product.ID) {
		return ErrDuplicateProduct
	}

	r.products[product.ID] = *product
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}

	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// barcodeTaken must be called with the lock held.
func (r *memoryRepository) barcodeTaken(barcode, exceptID string) bool {
	for id, product := range r.products {
		if id != exceptID && product.Barcode == barcode {
			return true
		}
	}
	return false
}

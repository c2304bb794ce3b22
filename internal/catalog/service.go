package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var ErrInvalidProduct = errors.New("invalid product")

type SortField string

const (
	SortByName  SortField = "name"
	SortByStock SortField = "stock"
	SortByPrice SortField = "price"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter is the inventory table state: a search term matched against name
// and barcode, an optional category and a sort key.
type Filter struct {
	Search   string
	Category Category
	SortBy   SortField
	Order    SortOrder
}

type Service interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	ListProducts(ctx context.Context, filter Filter) ([]Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id string) error
	LowStockProducts(ctx context.Context) ([]Product, error)
	InventoryValue(ctx context.Context) (decimal.Decimal, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if product.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: failed to generate product id: %w", err)
		}
		product.ID = id.String()
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, ErrDuplicateProduct) {
			log.Warn().Str("product_id", product.ID).Str("barcode", product.Barcode).Msg("service: duplicate product")
			return nil, ErrDuplicateProduct
		}
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Str("product_id", product.ID).Str("name", product.Name).Msg("service: product created")
	return product, nil
}

func (s *service) GetProductByID(ctx context.Context, id string) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to get product %s: %w", id, err)
	}
	return product, nil
}

func (s *service) GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	if barcode == "" {
		return nil, ErrProductNotFound
	}

	product, err := s.repo.GetByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			log.Debug().Str("barcode", barcode).Msg("service: no product for barcode")
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to get product by barcode %s: %w", barcode, err)
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filter Filter) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			(p.Barcode == "" || !strings.Contains(p.Barcode, search)) {
			continue
		}
		result = append(result, p)
	}

	sortProducts(result, filter.SortBy, filter.Order)
	return result, nil
}

func (s *service) UpdateProduct(ctx context.Context, product *Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrDuplicateProduct) {
			return err
		}
		log.Error().Err(err).Str("product_id", product.ID).Msg("service: failed to update product")
		return fmt.Errorf("service: failed to update product %s: %w", product.ID, err)
	}
	return nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("service: failed to delete product %s: %w", id, err)
	}

	log.Info().Str("product_id", id).Msg("service: product deleted")
	return nil
}

func (s *service) LowStockProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	low := make([]Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}

// InventoryValue is the cost of everything on the shelves.
func (s *service) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service: failed to list products: %w", err)
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Cost.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return total, nil
}

func validateProduct(p *Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case !p.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.Category)
	case !p.Unit.Valid():
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidProduct, p.Unit)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	case p.Cost.IsNegative():
		return fmt.Errorf("%w: cost cannot be negative", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	case p.MinStock < 0:
		return fmt.Errorf("%w: min stock cannot be negative", ErrInvalidProduct)
	}
	return nil
}

func sortProducts(products []Product, by SortField, order SortOrder) {
	if by == "" {
		by = SortByName
	}
	desc := order == SortDesc

	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		var cmp int
		switch by {
		case SortByStock:
			cmp = a.Stock - b.Stock
		case SortByPrice:
			cmp = a.Price.Cmp(b.Price)
		default:
			cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

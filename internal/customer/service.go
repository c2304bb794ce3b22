package customer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCustomer      = errors.New("invalid customer")
	ErrConfirmationRequired = errors.New("customer deletion must be confirmed")
)

type SortField string

const (
	SortByName           SortField = "name"
	SortByTotalPurchases SortField = "total_purchases"
	SortByLastVisit      SortField = "last_visit"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter matches Search against name, phone and email.
type Filter struct {
	Search string
	SortBy SortField
	Order  SortOrder
}

// Stats are the figures shown above the customer table.
type Stats struct {
	Total           int             `json:"total"`
	ActiveThisMonth int             `json:"active_this_month"`
	AveragePurchase decimal.Decimal `json:"average_purchase"`
	GoldMembers     int             `json:"gold_members"`
}

type Service interface {
	CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context, filter Filter) ([]Customer, error)
	UpdateCustomer(ctx context.Context, customer *Customer) (*Customer, error)
	DeleteCustomer(ctx context.Context, id string, confirmed bool) error
	RecordPurchase(ctx context.Context, id string, amount decimal.Decimal, at time.Time) (*Customer, error)
	Stats(ctx context.Context, now time.Time) (Stats, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.Name == "" || customer.Phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", ErrInvalidCustomer)
	}

	if customer.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: failed to generate customer id: %w", err)
		}
		customer.ID = id.String()
	}
	customer.Email = strings.TrimSpace(customer.Email)
	customer.Address = strings.TrimSpace(customer.Address)
	customer.TotalPurchases = decimal.Zero
	customer.LastVisit = s.now()

	if err := s.repo.Create(ctx, customer); err != nil {
		if errors.Is(err, ErrDuplicateCustomer) {
			return nil, ErrDuplicateCustomer
		}
		log.Error().Err(err).Msg("service: failed to create customer in repository")
		return nil, fmt.Errorf("service: failed to save customer: %w", err)
	}

	log.Info().Str("customer_id", customer.ID).Msg("service: customer created")
	return customer, nil
}

func (s *service) GetCustomerByID(ctx context.Context, id string) (*Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		log.Error().Err(err).Str("customer_id", id).Msg("service: failed to get customer by id in repository")
		return nil, fmt.Errorf("service: failed to get customer by id '%s': %w", id, err)
	}

	return customer, nil
}

func (s *service) ListCustomers(ctx context.Context, filter Filter) ([]Customer, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list customers: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if search == "" ||
			strings.Contains(strings.ToLower(c.Name), search) ||
			strings.Contains(c.Phone, search) ||
			strings.Contains(strings.ToLower(c.Email), search) {
			result = append(result, c)
		}
	}

	sortCustomers(result, filter.SortBy, filter.Order)
	return result, nil
}

// UpdateCustomer edits contact details. Purchase history is kept from the
// stored record.
func (s *service) UpdateCustomer(ctx context.Context, customer *Customer) (*Customer, error) {
	name := strings.TrimSpace(customer.Name)
	phone := strings.TrimSpace(customer.Phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", ErrInvalidCustomer)
	}

	updated, err := s.repo.UpdateContact(ctx, &Customer{
		ID:      customer.ID,
		Name:    name,
		Phone:   phone,
		Email:   strings.TrimSpace(customer.Email),
		Address: strings.TrimSpace(customer.Address),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("customer_id", customer.ID).Msg("service: failed to update customer")
		return nil, fmt.Errorf("service: failed to update customer by id '%s': %w", customer.ID, err)
	}

	log.Info().Str("customer_id", updated.ID).Msg("service: customer updated")
	return updated, nil
}

// DeleteCustomer removes a customer only when the caller confirmed it.
func (s *service) DeleteCustomer(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		log.Info().Str("customer_id", id).Msg("service: customer deletion cancelled, not confirmed")
		return ErrConfirmationRequired
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		log.Error().Err(err).Str("customer_id", id).Msg("service: failed to delete customer")
		return fmt.Errorf("service: failed to delete customer by id '%s': %w", id, err)
	}

	log.Info().Str("customer_id", id).Msg("service: customer deleted")
	return nil
}

func (s *service) RecordPurchase(ctx context.Context, id string, amount decimal.Decimal, at time.Time) (*Customer, error) {
	customer, err := s.repo.AddPurchase(ctx, id, amount, at)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Str("customer_id", id).Msg("service: purchase for unknown customer")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to record purchase for '%s': %w", id, err)
	}

	log.Debug().
		Str("customer_id", id).
		Str("amount", amount.String()).
		Str("total_purchases", customer.TotalPurchases.String()).
		Stringer("tier", customer.Tier()).
		Msg("service: purchase recorded")
	return customer, nil
}

func (s *service) Stats(ctx context.Context, now time.Time) (Stats, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("service: failed to list customers: %w", err)
	}

	stats := Stats{Total: len(customers), AveragePurchase: decimal.Zero}
	if len(customers) == 0 {
		return stats, nil
	}

	monthAgo := now.AddDate(0, -1, 0)
	sum := decimal.Zero
	for _, c := range customers {
		sum = sum.Add(c.TotalPurchases)
		if c.LastVisit.After(monthAgo) {
			stats.ActiveThisMonth++
		}
		if c.Tier() == TierGold {
			stats.GoldMembers++
		}
	}
	stats.AveragePurchase = sum.Div(decimal.NewFromInt(int64(len(customers)))).Round(0)

	return stats, nil
}

func sortCustomers(customers []Customer, by SortField, order SortOrder) {
	if by == "" {
		by = SortByName
	}
	desc := order == SortDesc

	sort.SliceStable(customers, func(i, j int) bool {
		a, b := customers[i], customers[j]
		var cmp int
		switch by {
		case SortByTotalPurchases:
			cmp = a.TotalPurchases.Cmp(b.TotalPurchases)
		case SortByLastVisit:
			cmp = a.LastVisit.Compare(b.LastVisit)
		default:
			cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

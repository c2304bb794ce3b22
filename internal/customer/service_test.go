package customer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/customer"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) UpdateContact(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) AddPurchase(ctx context.Context, id string, amount decimal.Decimal, at time.Time) (*customer.Customer, error) {
	args := m.Called(ctx, id, amount, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		total string
		want  customer.Tier
	}{
		{total: "0", want: customer.TierRegular},
		{total: "4999.99", want: customer.TierRegular},
		{total: "5000", want: customer.TierBronze},
		{total: "9999", want: customer.TierBronze},
		{total: "10000", want: customer.TierSilver},
		{total: "19999", want: customer.TierSilver},
		{total: "20000", want: customer.TierGold},
		{total: "154200", want: customer.TierGold},
	}

	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			assert.Equal(t, tt.want, customer.TierOf(decimal.RequireFromString(tt.total)))
		})
	}
}

func TestCustomerService_CreateCustomer_Success(t *testing.T) {
	svc := customer.NewService(customer.NewMemoryRepository())

	created, err := svc.CreateCustomer(context.Background(), &customer.Customer{
		Name:           "  Kavya Rao ",
		Phone:          "+91 9000000001",
		TotalPurchases: decimal.NewFromInt(99999),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Kavya Rao", created.Name)
	assert.Empty(t, created.Email)
	assert.True(t, created.TotalPurchases.IsZero(), "new customers start with no purchases")
	assert.WithinDuration(t, time.Now(), created.LastVisit, time.Second)
	assert.Equal(t, customer.TierRegular, created.Tier())
}

func TestCustomerService_CreateCustomer_RequiresNameAndPhone(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	svc := customer.NewService(mockRepo)

	for _, c := range []*customer.Customer{
		{Name: "", Phone: "+91 9000000001"},
		{Name: "No Phone", Phone: "  "},
	} {
		_, err := svc.CreateCustomer(context.Background(), c)
		require.ErrorIs(t, err, customer.ErrInvalidCustomer)
	}

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCustomerService_CreateCustomer_RepositoryError(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	svc := customer.NewService(mockRepo)

	repoErr := errors.New("boom")
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*customer.Customer")).Return(repoErr).Once()

	_, err := svc.CreateCustomer(context.Background(), &customer.Customer{Name: "A", Phone: "1"})
	require.ErrorIs(t, err, repoErr)
	mockRepo.AssertExpectations(t)
}

func TestCustomerService_GetCustomerByID_NotFound(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	svc := customer.NewService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, "42").Return(nil, customer.ErrNotFound).Once()

	c, err := svc.GetCustomerByID(context.Background(), "42")
	require.ErrorIs(t, err, customer.ErrNotFound)
	require.Nil(t, c)
	mockRepo.AssertExpectations(t)
}

func TestCustomerService_UpdateCustomer_KeepsPurchaseHistory(t *testing.T) {
	svc := customer.NewService(customer.NewMemoryRepository())
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, &customer.Customer{Name: "Amit Patel", Phone: "+91 9876543212"})
	require.NoError(t, err)
	_, err = svc.RecordPurchase(ctx, created.ID, decimal.NewFromInt(12300), created.LastVisit.Add(time.Hour))
	require.NoError(t, err)

	updated, err := svc.UpdateCustomer(ctx, &customer.Customer{
		ID:             created.ID,
		Name:           "Amit K. Patel",
		Phone:          "+91 9876543212",
		Email:          "amit@email.com",
		TotalPurchases: decimal.Zero,
	})
	require.NoError(t, err)

	assert.Equal(t, "Amit K. Patel", updated.Name)
	assert.Equal(t, "amit@email.com", updated.Email)
	assert.True(t, decimal.NewFromInt(12300).Equal(updated.TotalPurchases))
	assert.Equal(t, customer.TierSilver, updated.Tier())

	_, err = svc.UpdateCustomer(ctx, &customer.Customer{ID: "missing", Name: "x", Phone: "y"})
	require.ErrorIs(t, err, customer.ErrNotFound)
}

func TestMemoryRepository_UpdateContactKeepsConcurrentPurchase(t *testing.T) {
	repo := customer.NewMemoryRepository()
	ctx := context.Background()
	visit := time.Date(2024, time.January, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &customer.Customer{
		ID: "2", Name: "Priya Sharma", Phone: "+91 9876543211",
		TotalPurchases: decimal.NewFromInt(8750), LastVisit: visit,
	}))

	stale, err := repo.GetByID(ctx, "2")
	require.NoError(t, err)

	checkout := visit.Add(24 * time.Hour)
	_, err = repo.AddPurchase(ctx, "2", decimal.NewFromInt(378), checkout)
	require.NoError(t, err)

	stale.Email = "priya@email.com"
	updated, err := repo.UpdateContact(ctx, stale)
	require.NoError(t, err)

	assert.Equal(t, "priya@email.com", updated.Email)
	assert.True(t, decimal.NewFromInt(9128).Equal(updated.TotalPurchases), "got %s", updated.TotalPurchases)
	assert.True(t, checkout.Equal(updated.LastVisit))

	stored, err := repo.GetByID(ctx, "2")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(9128).Equal(stored.TotalPurchases))

	_, err = repo.UpdateContact(ctx, &customer.Customer{ID: "missing"})
	require.ErrorIs(t, err, customer.ErrNotFound)
}

func TestCustomerService_UpdateCustomer_WritesContactFieldsOnly(t *testing.T) {
	mockRepo := new(MockCustomerRepository)
	svc := customer.NewService(mockRepo)
	ctx := context.Background()

	stored := &customer.Customer{ID: "3", Name: "Amit Patel", Phone: "+91 9876543212", TotalPurchases: decimal.NewFromInt(12300)}
	mockRepo.On("UpdateContact", mock.Anything, &customer.Customer{
		ID: "3", Name: "Amit Patel", Phone: "+91 9876543212", Address: "7 Jubilee Hills",
	}).Return(stored, nil).Once()

	updated, err := svc.UpdateCustomer(ctx, &customer.Customer{
		ID: "3", Name: " Amit Patel ", Phone: "+91 9876543212", Address: "7 Jubilee Hills ",
		TotalPurchases: decimal.Zero,
	})
	require.NoError(t, err)
	assert.Same(t, stored, updated)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCustomerService_DeleteCustomer(t *testing.T) {
	svc := customer.NewService(customer.NewMemoryRepository())
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, &customer.Customer{Name: "Sunita Devi", Phone: "+91 9876543213"})
	require.NoError(t, err)

	err = svc.DeleteCustomer(ctx, created.ID, false)
	require.ErrorIs(t, err, customer.ErrConfirmationRequired)

	_, err = svc.GetCustomerByID(ctx, created.ID)
	require.NoError(t, err, "an unconfirmed delete must leave the customer in place")

	require.NoError(t, svc.DeleteCustomer(ctx, created.ID, true))
	_, err = svc.GetCustomerByID(ctx, created.ID)
	require.ErrorIs(t, err, customer.ErrNotFound)

	require.ErrorIs(t, svc.DeleteCustomer(ctx, created.ID, true), customer.ErrNotFound)
}

func TestCustomerService_RecordPurchase(t *testing.T) {
	svc := customer.NewService(customer.NewMemoryRepository())
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, &customer.Customer{Name: "Priya Sharma", Phone: "+91 9876543211"})
	require.NoError(t, err)

	later := created.LastVisit.Add(48 * time.Hour)
	got, err := svc.RecordPurchase(ctx, created.ID, decimal.RequireFromString("4999.50"), later)
	require.NoError(t, err)
	assert.Equal(t, customer.TierRegular, got.Tier())
	assert.True(t, later.Equal(got.LastVisit))

	got, err = svc.RecordPurchase(ctx, created.ID, decimal.RequireFromString("0.50"), created.LastVisit)
	require.NoError(t, err)
	assert.Equal(t, customer.TierBronze, got.Tier())
	assert.True(t, later.Equal(got.LastVisit), "an older purchase must not move last visit back")

	_, err = svc.RecordPurchase(ctx, "missing", decimal.NewFromInt(1), later)
	require.ErrorIs(t, err, customer.ErrNotFound)
}

func seedDirectory(t *testing.T, repo customer.Repository, now time.Time) {
	t.Helper()
	ctx := context.Background()
	for _, c := range []customer.Customer{
		{ID: "1", Name: "Rajesh Kumar", Phone: "+91 9876543210", Email: "rajesh@email.com", TotalPurchases: decimal.NewFromInt(15420), LastVisit: now.AddDate(0, 0, -3)},
		{ID: "2", Name: "Priya Sharma", Phone: "+91 9876543211", Email: "priya@email.com", TotalPurchases: decimal.NewFromInt(8750), LastVisit: now.AddDate(0, 0, -4)},
		{ID: "3", Name: "amit Patel", Phone: "+91 9876543212", TotalPurchases: decimal.NewFromInt(22300), LastVisit: now.AddDate(0, -2, 0)},
		{ID: "4", Name: "Sunita Devi", Phone: "+91 9876543213", Email: "sunita@email.com", TotalPurchases: decimal.NewFromInt(5680), LastVisit: now.AddDate(0, 0, -6)},
	} {
		c := c
		require.NoError(t, repo.Create(ctx, &c))
	}
}

func TestCustomerService_ListCustomers(t *testing.T) {
	now := time.Date(2024, 1, 18, 12, 0, 0, 0, time.UTC)
	repo := customer.NewMemoryRepository()
	seedDirectory(t, repo, now)
	svc := customer.NewService(repo)

	tests := []struct {
		name   string
		filter customer.Filter
		want   []string
	}{
		{name: "default_name_asc_case_insensitive", filter: customer.Filter{}, want: []string{"3", "2", "1", "4"}},
		{name: "name_desc", filter: customer.Filter{Order: customer.SortDesc}, want: []string{"4", "1", "2", "3"}},
		{name: "purchases_desc", filter: customer.Filter{SortBy: customer.SortByTotalPurchases, Order: customer.SortDesc}, want: []string{"3", "1", "2", "4"}},
		{name: "last_visit_asc", filter: customer.Filter{SortBy: customer.SortByLastVisit}, want: []string{"3", "4", "2", "1"}},
		{name: "search_phone", filter: customer.Filter{Search: "543211"}, want: []string{"2"}},
		{name: "search_email", filter: customer.Filter{Search: "SUNITA@"}, want: []string{"4"}},
		{name: "search_name", filter: customer.Filter{Search: "kumar"}, want: []string{"1"}},
		{name: "no_match", filter: customer.Filter{Search: "zzz"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListCustomers(context.Background(), tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCustomerService_Stats(t *testing.T) {
	now := time.Date(2024, 1, 18, 12, 0, 0, 0, time.UTC)
	repo := customer.NewMemoryRepository()
	seedDirectory(t, repo, now)
	svc := customer.NewService(repo)

	stats, err := svc.Stats(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.ActiveThisMonth)
	assert.Equal(t, 1, stats.GoldMembers)
	// (15420 + 8750 + 22300 + 5680) / 4 = 13037.5
	assert.True(t, decimal.NewFromInt(13038).Equal(stats.AveragePurchase), "got %s", stats.AveragePurchase)

	empty, err := customer.NewService(customer.NewMemoryRepository()).Stats(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.True(t, empty.AveragePurchase.IsZero())
}

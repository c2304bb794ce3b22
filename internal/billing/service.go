// Package billing runs the billing counter: one session per terminal holding
// a cart, the bill-level selections and the checkout that turns them into an
// order.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/customer"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/metrics"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/pricing"
)

var (
	ErrSessionNotFound         = errors.New("billing session not found")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidDiscount         = errors.New("discount must be between 0 and 100 percent")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrInvalidOrderType        = errors.New("invalid order type")
	ErrItemNotInCart           = errors.New("product is not in the cart")
	ErrInvalidExpectedDelivery = errors.New("expected delivery is only allowed for online and phone orders")
)

var maxDiscount = decimal.NewFromInt(100)

// Session is a read-only view of a billing session with its current totals.
type Session struct {
	ID               string              `json:"id"`
	Items            []cart.Item         `json:"items"`
	DiscountPercent  decimal.Decimal     `json:"discount_percent"`
	PaymentMethod    order.PaymentMethod `json:"payment_method"`
	CustomerID       string              `json:"customer_id,omitempty"`
	OrderType        order.OrderType     `json:"order_type"`
	Notes            string              `json:"notes,omitempty"`
	ExpectedDelivery *time.Time          `json:"expected_delivery,omitempty"`
	Units            int                 `json:"units"`
	Totals           pricing.Totals      `json:"totals"`
	CreatedAt        time.Time           `json:"created_at"`
}

type ProductLookup interface {
	GetProductByID(ctx context.Context, id string) (*catalog.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error)
}

type CustomerDirectory interface {
	GetCustomerByID(ctx context.Context, id string) (*customer.Customer, error)
	RecordPurchase(ctx context.Context, id string, amount decimal.Decimal, at time.Time) (*customer.Customer, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, orderInput *order.Order) (*order.Order, error)
}

type Service interface {
	NewSession(ctx context.Context) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	DiscardSession(ctx context.Context, sessionID string) error
	AddProduct(ctx context.Context, sessionID, productID string) (*Session, error)
	AddByBarcode(ctx context.Context, sessionID, barcode string) (*Session, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*Session, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*Session, error)
	SetDiscount(ctx context.Context, sessionID string, percent decimal.Decimal) (*Session, error)
	SelectCustomer(ctx context.Context, sessionID, customerID string) (*Session, error)
	SelectPaymentMethod(ctx context.Context, sessionID string, method order.PaymentMethod) (*Session, error)
	SetOrderType(ctx context.Context, sessionID string, orderType order.OrderType) (*Session, error)
	SetDetails(ctx context.Context, sessionID, notes string, expectedDelivery *time.Time) (*Session, error)
	Clear(ctx context.Context, sessionID string) (*Session, error)
	Checkout(ctx context.Context, sessionID string) (*order.Order, error)
}

type Config struct {
	Calculator           *pricing.Calculator
	DefaultPaymentMethod order.PaymentMethod
	Now                  func() time.Time
}

type service struct {
	products  ProductLookup
	customers CustomerDirectory
	orders    OrderCreator
	calc      *pricing.Calculator
	payment   order.PaymentMethod
	now       func() time.Time
	sessions  *store
}

func NewService(products ProductLookup, customers CustomerDirectory, orders OrderCreator, cfg Config) Service {
	if cfg.Calculator == nil {
		cfg.Calculator = pricing.NewCalculator(decimal.NewFromInt(pricing.DefaultTaxPercent))
	}
	if !cfg.DefaultPaymentMethod.Valid() {
		cfg.DefaultPaymentMethod = order.PaymentCash
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &service{
		products:  products,
		customers: customers,
		orders:    orders,
		calc:      cfg.Calculator,
		payment:   cfg.DefaultPaymentMethod,
		now:       cfg.Now,
		sessions:  newStore(),
	}
}

func (s *service) NewSession(ctx context.Context) (*Session, error) {
	sess, err := s.sessions.create(s.payment, s.now())
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate session id")
		return nil, fmt.Errorf("service: failed to create session: %w", err)
	}

	log.Info().Str("session_id", sess.id).Msg("service: billing session opened")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(s.calc), nil
}

func (s *service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return s.withSession(sessionID, func(*session) error { return nil })
}

func (s *service) DiscardSession(ctx context.Context, sessionID string) error {
	if !s.sessions.delete(sessionID) {
		return ErrSessionNotFound
	}
	log.Info().Str("session_id", sessionID).Msg("service: billing session discarded")
	return nil
}

// AddProduct snapshots the catalog product into the cart. Stock is never
// checked.
func (s *service) AddProduct(ctx context.Context, sessionID, productID string) (*Session, error) {
	if _, ok := s.sessions.get(sessionID); !ok {
		return nil, ErrSessionNotFound
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.addToCart(sessionID, product)
}

func (s *service) AddByBarcode(ctx context.Context, sessionID, barcode string) (*Session, error) {
	if _, ok := s.sessions.get(sessionID); !ok {
		return nil, ErrSessionNotFound
	}

	product, err := s.products.GetProductByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		log.Warn().Str("session_id", sessionID).Str("barcode", barcode).Msg("service: scanned barcode not in catalog")
		return nil, err
	}
	return s.addToCart(sessionID, product)
}

func (s *service) addToCart(sessionID string, product *catalog.Product) (*Session, error) {
	return s.withSession(sessionID, func(sess *session) error {
		sess.cart.Add(*product)
		log.Debug().
			Str("session_id", sessionID).
			Str("product_id", product.ID).
			Int("quantity", sess.cart.Quantity(product.ID)).
			Msg("service: product added to cart")
		return nil
	})
}

// SetQuantity sets a line's quantity. A quantity of zero or less removes the
// line and is a no-op for a product that is not in the cart.
func (s *service) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*Session, error) {
	return s.withSession(sessionID, func(sess *session) error {
		if quantity > 0 && sess.cart.Quantity(productID) == 0 {
			return ErrItemNotInCart
		}
		sess.cart.SetQuantity(productID, quantity)
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID, productID string) (*Session, error) {
	return s.withSession(sessionID, func(sess *session) error {
		sess.cart.Remove(productID)
		return nil
	})
}

func (s *service) SetDiscount(ctx context.Context, sessionID string, percent decimal.Decimal) (*Session, error) {
	if percent.IsNegative() || percent.GreaterThan(maxDiscount) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidDiscount, percent)
	}
	return s.withSession(sessionID, func(sess *session) error {
		sess.discountPercent = percent
		return nil
	})
}

// SelectCustomer attaches a directory customer to the bill. An empty id
// returns the bill to a walk-in customer.
func (s *service) SelectCustomer(ctx context.Context, sessionID, customerID string) (*Session, error) {
	if _, ok := s.sessions.get(sessionID); !ok {
		return nil, ErrSessionNotFound
	}

	customerID = strings.TrimSpace(customerID)
	if customerID != "" {
		if _, err := s.customers.GetCustomerByID(ctx, customerID); err != nil {
			return nil, err
		}
	}

	return s.withSession(sessionID, func(sess *session) error {
		sess.customerID = customerID
		return nil
	})
}

func (s *service) SelectPaymentMethod(ctx context.Context, sessionID string, method order.PaymentMethod) (*Session, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	return s.withSession(sessionID, func(sess *session) error {
		sess.paymentMethod = method
		return nil
	})
}

func (s *service) SetOrderType(ctx context.Context, sessionID string, orderType order.OrderType) (*Session, error) {
	if !orderType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderType, orderType)
	}
	return s.withSession(sessionID, func(sess *session) error {
		sess.orderType = orderType
		if orderType == order.TypeWalkIn {
			sess.expectedDelivery = nil
		}
		return nil
	})
}

func (s *service) SetDetails(ctx context.Context, sessionID, notes string, expectedDelivery *time.Time) (*Session, error) {
	return s.withSession(sessionID, func(sess *session) error {
		if expectedDelivery != nil && sess.orderType == order.TypeWalkIn {
			return ErrInvalidExpectedDelivery
		}
		sess.notes = strings.TrimSpace(notes)
		sess.expectedDelivery = nil
		if expectedDelivery != nil {
			ed := *expectedDelivery
			sess.expectedDelivery = &ed
		}
		return nil
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) (*Session, error) {
	return s.withSession(sessionID, func(sess *session) error {
		sess.reset(s.payment)
		log.Debug().Str("session_id", sessionID).Msg("service: cart cleared")
		return nil
	})
}

// Checkout freezes the bill into exactly one order, credits the selected
// customer and clears the session. An empty cart creates nothing and leaves
// the session as it was.
func (s *service) Checkout(ctx context.Context, sessionID string) (*order.Order, error) {
	sess, ok := s.sessions.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.cart.IsEmpty() {
		log.Warn().Str("session_id", sessionID).Msg("service: checkout attempted with empty cart")
		return nil, ErrEmptyCart
	}

	items := sess.cart.Items()
	totals := s.calc.Calculate(items, sess.discountPercent).Rounded()
	now := s.now()

	orderInput := &order.Order{
		CustomerID:      sess.customerID,
		Items:           items,
		Subtotal:        totals.Subtotal,
		DiscountPercent: sess.discountPercent,
		Discount:        totals.DiscountAmount,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Status:          sess.orderType.InitialStatus(),
		OrderType:       sess.orderType,
		PaymentMethod:   sess.paymentMethod,
		Date:            now,
		Notes:           sess.notes,
	}
	if sess.expectedDelivery != nil {
		ed := *sess.expectedDelivery
		orderInput.ExpectedDelivery = &ed
	}

	created, err := s.orders.CreateOrder(ctx, orderInput)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("service: checkout failed to create order")
		return nil, fmt.Errorf("service: checkout: %w", err)
	}

	if created.CustomerID != "" {
		if _, err := s.customers.RecordPurchase(ctx, created.CustomerID, created.Total, now); err != nil {
			log.Warn().Err(err).
				Str("order_id", created.ID).
				Str("customer_id", created.CustomerID).
				Msg("service: order placed but customer purchase not recorded")
		}
	}

	sess.reset(s.payment)

	metrics.ObserveCheckout(created.OrderType.String(), created.PaymentMethod.String(), created.Total.InexactFloat64())
	log.Info().
		Str("session_id", sessionID).
		Str("order_id", created.ID).
		Str("total", created.Total.StringFixed(2)).
		Msg("service: checkout completed")

	return created, nil
}

func (s *service) withSession(sessionID string, fn func(*session) error) (*Session, error) {
	sess, ok := s.sessions.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess); err != nil {
		return nil, err
	}
	return sess.view(s.calc), nil
}

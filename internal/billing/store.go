package billing

import (
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/pricing"
)

// session is the mutable state of one billing terminal. mu serializes every
// action on it.
type session struct {
	mu sync.Mutex

	id               string
	cart             *cart.Cart
	discountPercent  decimal.Decimal
	paymentMethod    order.PaymentMethod
	customerID       string
	orderType        order.OrderType
	notes            string
	expectedDelivery *time.Time
	createdAt        time.Time
}

// reset empties the cart and returns the selections to their defaults. The
// order type belongs to the terminal's flow and is kept.
func (s *session) reset(defaultPayment order.PaymentMethod) {
	s.cart.Clear()
	s.discountPercent = decimal.Zero
	s.paymentMethod = defaultPayment
	s.customerID = ""
	s.notes = ""
	s.expectedDelivery = nil
}

// view must be called with mu held.
func (s *session) view(calc *pricing.Calculator) *Session {
	items := s.cart.Items()
	out := &Session{
		ID:              s.id,
		Items:           items,
		DiscountPercent: s.discountPercent,
		PaymentMethod:   s.paymentMethod,
		CustomerID:      s.customerID,
		OrderType:       s.orderType,
		Notes:           s.notes,
		Units:           s.cart.Units(),
		Totals:          calc.Calculate(items, s.discountPercent).Rounded(),
		CreatedAt:       s.createdAt,
	}
	if s.expectedDelivery != nil {
		ed := *s.expectedDelivery
		out.ExpectedDelivery = &ed
	}
	return out
}

type store struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newStore() *store {
	return &store{sessions: make(map[string]*session)}
}

func (st *store) create(defaultPayment order.PaymentMethod, now time.Time) (*session, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	s := &session{
		id:              id.String(),
		cart:            cart.New(),
		discountPercent: decimal.Zero,
		paymentMethod:   defaultPayment,
		orderType:       order.TypeWalkIn,
		createdAt:       now,
	}

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s, nil
}

func (st *store) get(id string) (*session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *store) delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

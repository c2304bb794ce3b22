package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/cart"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusReady      OrderStatus = "ready"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (os OrderStatus) String() string {
	return string(os)
}

func (os OrderStatus) Valid() bool {
	_, ok := allowedTransitions[os]
	return ok
}

type OrderType string

const (
	TypeWalkIn OrderType = "walk-in"
	TypeOnline OrderType = "online"
	TypePhone  OrderType = "phone"
)

func (t OrderType) Valid() bool {
	switch t {
	case TypeWalkIn, TypeOnline, TypePhone:
		return true
	}
	return false
}

func (t OrderType) String() string {
	return string(t)
}

// InitialStatus is the status an order starts in: counter sales are settled
// on the spot, remote orders wait for confirmation.
func (t OrderType) InitialStatus() OrderStatus {
	if t == TypeWalkIn {
		return StatusConfirmed
	}
	return StatusPending
}

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentUPI   PaymentMethod = "upi"
	PaymentSplit PaymentMethod = "split"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentSplit:
		return true
	}
	return false
}

func (p PaymentMethod) String() string {
	return string(p)
}

// Order is a frozen snapshot of a sale. Only Status and UpdatedAt change
// after creation. An empty CustomerID is a walk-in customer.
type Order struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id,omitempty"`
	Items            []cart.Item     `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	Discount         decimal.Decimal `json:"discount"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	Status           OrderStatus     `json:"status"`
	OrderType        OrderType       `json:"order_type"`
	PaymentMethod    PaymentMethod   `json:"payment_method,omitempty"`
	Date             time.Time       `json:"date"`
	ExpectedDelivery *time.Time      `json:"expected_delivery,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (o *Order) IsWalkInCustomer() bool {
	return o.CustomerID == ""
}

// clone copies the order and its item slice so callers never share the
// stored snapshot.
func (o Order) clone() Order {
	out := o
	out.Items = make([]cart.Item, len(o.Items))
	copy(out.Items, o.Items)
	if o.ExpectedDelivery != nil {
		ed := *o.ExpectedDelivery
		out.ExpectedDelivery = &ed
	}
	return out
}

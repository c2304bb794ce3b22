package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/billing"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
)

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type ScanBarcodeRequest struct {
	Barcode string `json:"barcode" validate:"required,numeric,max=32"`
}

// SetQuantityRequest sets a line's quantity. Zero removes the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=10000"`
}

type SetDiscountRequest struct {
	Percent decimal.Decimal `json:"percent" validate:"gte=0,lte=100"`
}

// SelectCustomerRequest attaches a customer. An empty id means walk-in.
type SelectCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

type SelectPaymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash card upi split"`
}

type SetOrderTypeRequest struct {
	OrderType string `json:"order_type" validate:"required,oneof=walk-in online phone"`
}

type SetDetailsRequest struct {
	Notes            string     `json:"notes" validate:"max=500"`
	ExpectedDelivery *time.Time `json:"expected_delivery,omitempty"`
}

type SessionHandler struct {
	service  billing.Service
	validate *validator.Validate
}

func NewSessionHandler(service billing.Service) *SessionHandler {
	return &SessionHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *SessionHandler) RegisterRoutes(router chi.Router) {
	router.Post("/sessions", h.handleNewSession)
	router.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleDiscardSession)
		r.Post("/items", h.handleAddItem)
		r.Post("/barcode", h.handleScanBarcode)
		r.Put("/items/{productID}", h.handleSetQuantity)
		r.Delete("/items/{productID}", h.handleRemoveItem)
		r.Put("/discount", h.handleSetDiscount)
		r.Put("/customer", h.handleSelectCustomer)
		r.Put("/payment", h.handleSelectPayment)
		r.Put("/order-type", h.handleSetOrderType)
		r.Put("/details", h.handleSetDetails)
		r.Post("/clear", h.handleClear)
		r.Post("/checkout", h.handleCheckout)
	})
}

func (h *SessionHandler) respondWithSession(w http.ResponseWriter, session *billing.Session, err error, failure string) {
	if err != nil {
		respondWithServiceError(w, err, failure)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) handleNewSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.NewSession(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to open billing session")
		return
	}

	respondWithJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), chi.URLParam(r, "id"))
	h.respondWithSession(w, session, err, "Failed to get billing session")
}

func (h *SessionHandler) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DiscardSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err, "Failed to discard billing session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var requestPayload AddItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	session, err := h.service.AddProduct(r.Context(), chi.URLParam(r, "id"), requestPayload.ProductID)
	h.respondWithSession(w, session, err, "Failed to add product to cart")
}

func (h *SessionHandler) handleScanBarcode(w http.ResponseWriter, r *http.Request) {
	var requestPayload ScanBarcodeRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	session, err := h.service.AddByBarcode(r.Context(), chi.URLParam(r, "id"), requestPayload.Barcode)
	h.respondWithSession(w, session, err, "Failed to add scanned product to cart")
}

func (h *SessionHandler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var requestPayload SetQuantityRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	session, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productID"), requestPayload.Quantity)
	h.respondWithSession(w, session, err, "Failed to set quantity")
}

func (h *SessionHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productID"))
	h.respondWithSession(w, session, err, "Failed to remove item")
}

func (h *SessionHandler) handleSetDiscount(w http.ResponseWriter, r *http.Request) {
	var requestPayload SetDiscountRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	session, err := h.service.SetDiscount(r.Context(), chi.URLParam(r, "id"), requestPayload.Percent)
	h.respondWithSession(w, session, err, "Failed to set discount")
}

func (h *SessionHandler) handleSelectCustomer(w http.ResponseWriter, r *http.Request) {
	var requestPayload SelectCustomerRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	session, err := h.service.SelectCustomer(r.Context(), chi.URLParam(r, "id"), requestPayload.CustomerID)
	h.respondWithSession(w, session, err, "Failed to select customer")
}

func (h *SessionHandler) handleSelectPayment(w http.ResponseWriter, r *http.Request) {
	var requestPayload SelectPaymentRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	session, err := h.service.SelectPaymentMethod(r.Context(), chi.URLParam(r, "id"), order.PaymentMethod(requestPayload.PaymentMethod))
	h.respondWithSession(w, session, err, "Failed to select payment method")
}

func (h *SessionHandler) handleSetOrderType(w http.ResponseWriter, r *http.Request) {
	var requestPayload SetOrderTypeRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	session, err := h.service.SetOrderType(r.Context(), chi.URLParam(r, "id"), order.OrderType(requestPayload.OrderType))
	h.respondWithSession(w, session, err, "Failed to set order type")
}

func (h *SessionHandler) handleSetDetails(w http.ResponseWriter, r *http.Request) {
	var requestPayload SetDetailsRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	session, err := h.service.SetDetails(r.Context(), chi.URLParam(r, "id"), requestPayload.Notes, requestPayload.ExpectedDelivery)
	h.respondWithSession(w, session, err, "Failed to set order details")
}

func (h *SessionHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Clear(r.Context(), chi.URLParam(r, "id"))
	h.respondWithSession(w, session, err, "Failed to clear cart")
}

func (h *SessionHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.Checkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to check out")
		return
	}

	respondWithJSON(w, http.StatusCreated, newOrderResponse(*created))
}

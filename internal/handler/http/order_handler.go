package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
)

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderResponse struct {
	order.Order
	WalkIn       bool                `json:"walk_in"`
	Units        int                 `json:"units"`
	NextStatuses []order.OrderStatus `json:"next_statuses"`
}

func newOrderResponse(o order.Order) OrderResponse {
	units := 0
	for _, item := range o.Items {
		units += item.Quantity
	}
	return OrderResponse{
		Order:        o,
		WalkIn:       o.IsWalkInCustomer(),
		Units:        units,
		NextStatuses: order.NextStatuses(o.Status),
	}
}

// OrderHandler serves the order table. Orders are created only by checkout.
type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
	location *time.Location
}

// NewOrderHandler takes the store time zone that decides what "today" is in
// the stats. A nil location means the server's local zone.
func NewOrderHandler(service order.Service, location *time.Location) *OrderHandler {
	if location == nil {
		location = time.Local
	}
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
		location: location,
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/stats", h.handleStats)
	router.Get("/orders/{id}", h.handleGetOrderByID)
	router.Patch("/orders/{id}/status", h.handleUpdateStatus)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := order.Filter{
		Search: query.Get("search"),
		Status: order.OrderStatus(query.Get("status")),
		Type:   order.OrderType(query.Get("type")),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status parameter")
		return
	}
	if filter.Type != "" && !filter.Type.Valid() {
		respondWithError(w, http.StatusBadRequest, "Invalid type parameter")
		return
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderResponse(o))
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), time.Now().In(h.location))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Order id is required")
		return
	}

	found, err := h.service.GetOrderByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponse(*found))
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateStatusRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), order.OrderStatus(requestPayload.Status))
	if err != nil {
		respondWithServiceError(w, err, "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponse(*updated))
}

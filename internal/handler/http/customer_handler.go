package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/customer"
)

type CustomerRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Phone   string `json:"phone" validate:"required,min=6,max=20"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address,omitempty" validate:"max=300"`
}

type CustomerResponse struct {
	customer.Customer
	Tier customer.Tier `json:"tier"`
}

func newCustomerResponse(c customer.Customer) CustomerResponse {
	return CustomerResponse{Customer: c, Tier: c.Tier()}
}

type CustomerHandler struct {
	service  customer.Service
	validate *validator.Validate
	location *time.Location
}

// NewCustomerHandler takes the store time zone the stats are computed in. A
// nil location means the server's local zone.
func NewCustomerHandler(service customer.Service, location *time.Location) *CustomerHandler {
	if location == nil {
		location = time.Local
	}
	return &CustomerHandler{
		service:  service,
		validate: newValidator(),
		location: location,
	}
}

func (h *CustomerHandler) RegisterRoutes(router chi.Router) {
	router.Get("/customers", h.handleListCustomers)
	router.Get("/customers/stats", h.handleStats)
	router.Post("/customers", h.handleCreateCustomer)
	router.Get("/customers/{id}", h.handleGetCustomerByID)
	router.Put("/customers/{id}", h.handleUpdateCustomer)
	router.Delete("/customers/{id}", h.handleDeleteCustomer)
}

func (h *CustomerHandler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := customer.Filter{
		Search: query.Get("search"),
		SortBy: customer.SortField(query.Get("sort")),
		Order:  customer.SortOrder(query.Get("order")),
	}

	switch filter.SortBy {
	case "", customer.SortByName, customer.SortByTotalPurchases, customer.SortByLastVisit:
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid sort parameter")
		return
	}

	customers, err := h.service.ListCustomers(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list customers")
		return
	}

	out := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, newCustomerResponse(c))
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *CustomerHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), time.Now().In(h.location))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get customer stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func (h *CustomerHandler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var requestPayload CustomerRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	domainCustomer := customer.Customer{
		Name:    requestPayload.Name,
		Phone:   requestPayload.Phone,
		Email:   requestPayload.Email,
		Address: requestPayload.Address,
	}

	created, err := h.service.CreateCustomer(r.Context(), &domainCustomer)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create customer")
		return
	}

	respondWithJSON(w, http.StatusCreated, newCustomerResponse(*created))
}

func (h *CustomerHandler) handleGetCustomerByID(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetCustomerByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get customer by id")
		return
	}

	respondWithJSON(w, http.StatusOK, newCustomerResponse(*found))
}

func (h *CustomerHandler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var requestPayload CustomerRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	domainCustomer := customer.Customer{
		ID:      chi.URLParam(r, "id"),
		Name:    requestPayload.Name,
		Phone:   requestPayload.Phone,
		Email:   requestPayload.Email,
		Address: requestPayload.Address,
	}

	updated, err := h.service.UpdateCustomer(r.Context(), &domainCustomer)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update customer")
		return
	}

	respondWithJSON(w, http.StatusOK, newCustomerResponse(*updated))
}

// handleDeleteCustomer needs ?confirm=true, the API form of the confirmation
// prompt.
func (h *CustomerHandler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	confirmed := false
	if raw := r.URL.Query().Get("confirm"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid confirm parameter")
			return
		}
		confirmed = v
	}

	if err := h.service.DeleteCustomer(r.Context(), chi.URLParam(r, "id"), confirmed); err != nil {
		respondWithServiceError(w, err, "Failed to delete customer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

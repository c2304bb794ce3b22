package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
)

type ProductRequest struct {
	ID          string          `json:"id,omitempty" validate:"omitempty,max=64"`
	Name        string          `json:"name" validate:"required,min=2,max=120"`
	Category    string          `json:"category" validate:"required,oneof=raw-millets processed sweets breakfast snacks"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Cost        decimal.Decimal `json:"cost" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	MinStock    *int            `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	Unit        string          `json:"unit" validate:"required,oneof=kg g piece packet"`
	Barcode     string          `json:"barcode,omitempty" validate:"omitempty,numeric,max=32"`
	Description string          `json:"description,omitempty" validate:"max=500"`
	Supplier    string          `json:"supplier,omitempty" validate:"max=120"`
}

type ProductResponse struct {
	catalog.Product
	CategoryLabel string              `json:"category_label"`
	StockStatus   catalog.StockStatus `json:"stock_status"`
}

func newProductResponse(p catalog.Product) ProductResponse {
	return ProductResponse{
		Product:       p,
		CategoryLabel: p.Category.Label(),
		StockStatus:   p.StockStatus(),
	}
}

func newProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

type ProductHandler struct {
	service         catalog.Service
	validate        *validator.Validate
	defaultMinStock int
}

// NewProductHandler takes the reorder threshold applied to products created
// without one.
func NewProductHandler(service catalog.Service, defaultMinStock int) *ProductHandler {
	return &ProductHandler{
		service:         service,
		validate:        newValidator(),
		defaultMinStock: defaultMinStock,
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/low-stock", h.handleLowStock)
	router.Get("/products/barcode/{barcode}", h.handleGetProductByBarcode)
	router.Get("/products/{id}", h.handleGetProductByID)
	router.Post("/products", h.handleCreateProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := catalog.Filter{
		Search:   query.Get("search"),
		Category: catalog.Category(query.Get("category")),
		SortBy:   catalog.SortField(query.Get("sort")),
		Order:    catalog.SortOrder(query.Get("order")),
	}

	if filter.Category != "" && !filter.Category.Valid() {
		respondWithError(w, http.StatusBadRequest, "Invalid category parameter")
		return
	}
	switch filter.SortBy {
	case "", catalog.SortByName, catalog.SortByStock, catalog.SortByPrice:
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid sort parameter")
		return
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, newProductResponses(products))
}

func (h *ProductHandler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.LowStockProducts(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list low stock products")
		return
	}

	respondWithJSON(w, http.StatusOK, newProductResponses(products))
}

func (h *ProductHandler) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProductByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get product by id")
		return
	}

	respondWithJSON(w, http.StatusOK, newProductResponse(*product))
}

func (h *ProductHandler) handleGetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProductByBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get product by barcode")
		return
	}

	respondWithJSON(w, http.StatusOK, newProductResponse(*product))
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload ProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	product := h.toDomain(requestPayload)
	created, err := h.service.CreateProduct(r.Context(), &product)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, newProductResponse(*created))
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload ProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	product := h.toDomain(requestPayload)
	product.ID = chi.URLParam(r, "id")

	if err := h.service.UpdateProduct(r.Context(), &product); err != nil {
		respondWithServiceError(w, err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, newProductResponse(product))
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) toDomain(req ProductRequest) catalog.Product {
	minStock := h.defaultMinStock
	if req.MinStock != nil {
		minStock = *req.MinStock
	}
	return catalog.Product{
		ID:          req.ID,
		Name:        req.Name,
		Category:    catalog.Category(req.Category),
		Price:       req.Price,
		Cost:        req.Cost,
		Stock:       req.Stock,
		MinStock:    minStock,
		Unit:        catalog.Unit(req.Unit),
		Barcode:     req.Barcode,
		Description: req.Description,
		Supplier:    req.Supplier,
	}
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/report"
)

type ReportHandler struct {
	service report.Service
}

func NewReportHandler(service report.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) RegisterRoutes(router chi.Router) {
	router.Get("/reports/dashboard", h.handleDashboard)
}

func (h *ReportHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to build dashboard")
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

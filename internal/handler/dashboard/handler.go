// Package dashboard serves the interview-history summary endpoint.
package dashboard

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	dashboardservice "github.com/mockmate/webapp/internal/service/dashboard"
	"github.com/mockmate/webapp/pkg/utils"
)

// Handler serves dashboard statistics.
type Handler struct {
	service *dashboardservice.Service
}

// New creates a dashboard handler.
func New(service *dashboardservice.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the dashboard routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleStats)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Printf("[dashboard] history fetch failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "interview history unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

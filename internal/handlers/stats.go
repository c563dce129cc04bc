package handlers

import (
	"net/http"

	"github.com/nagorik/grievance-server/internal/services"
	"go.uber.org/zap"
)

// StatsHandler serves the aggregated numbers behind the admin dashboard
// charts.
type StatsHandler struct {
	svc    *services.StatsService
	logger *zap.SugaredLogger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc *services.StatsService, logger *zap.SugaredLogger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// Status handles GET /api/v1/stats/status.
func (h *StatsHandler) Status(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.StatusCounts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch status counts")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

// Wards handles GET /api/v1/stats/wards.
func (h *StatsHandler) Wards(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.WardCounts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch ward counts")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

// Categories handles GET /api/v1/stats/categories.
func (h *StatsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.CategoryCounts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch category counts")
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

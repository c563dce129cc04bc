package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nagorik/grievance-server/internal/services"
	"go.uber.org/zap"
)

// ActivityHandler exposes the audit log of authority actions.
type ActivityHandler struct {
	svc    *services.ActivityService
	logger *zap.SugaredLogger
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(svc *services.ActivityService, logger *zap.SugaredLogger) *ActivityHandler {
	return &ActivityHandler{svc: svc, logger: logger}
}

// ByComplaint handles GET /api/v1/activity/complaint/{id} (admin).
func (h *ActivityHandler) ByComplaint(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return
	}

	logs, err := h.svc.ByComplaint(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// Recent handles GET /api/v1/activity/recent (admin).
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.Recent(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch recent activity")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

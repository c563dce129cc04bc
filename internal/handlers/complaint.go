package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nagorik/grievance-server/internal/lifecycle"
	"github.com/nagorik/grievance-server/internal/middleware"
	"github.com/nagorik/grievance-server/internal/models"
	"github.com/nagorik/grievance-server/internal/services"
	"github.com/nagorik/grievance-server/internal/store"
	"go.uber.org/zap"
)

// ComplaintHandler handles complaint-related HTTP endpoints.
type ComplaintHandler struct {
	complaintSvc *services.ComplaintService
	userSvc      *services.UserService
	logger       *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler.
func NewComplaintHandler(cs *services.ComplaintService, us *services.UserService, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{complaintSvc: cs, userSvc: us, logger: logger}
}

// Submit handles POST /api/v1/complaints.
// Citizens file a new complaint; it enters the lifecycle as Pending.
func (h *ComplaintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req models.ComplaintSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	submitter, err := h.userSvc.GetByEmail(r.Context(), session.Email)
	if err != nil {
		respondServiceError(w, err, "Failed to submit complaint")
		return
	}

	complaint, err := h.complaintSvc.Submit(r.Context(), submitter, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to submit complaint")
		return
	}

	respondJSON(w, http.StatusCreated, complaint)
}

// List handles GET /api/v1/complaints with optional status and ward
// filters (administrator dashboards).
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	complaints, err := h.complaintSvc.List(r.Context(), store.ComplaintFilter{
		Status: status,
		Ward:   r.URL.Query().Get("ward"),
	})
	if err != nil {
		h.logger.Errorw("Failed to list complaints", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch complaints")
		return
	}
	respondJSON(w, http.StatusOK, complaints)
}

// Assigned handles GET /api/v1/complaints/assigned: the complaints
// assigned to the calling employee.
func (h *ComplaintHandler) Assigned(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	complaints, err := h.complaintSvc.ListForEmployee(r.Context(), session.Email)
	if err != nil {
		h.logger.Errorw("Failed to list assigned complaints", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch complaints")
		return
	}
	respondJSON(w, http.StatusOK, complaints)
}

// BySubmitter handles GET /api/v1/complaints/user/{email}. Citizens may
// only read their own; administrators may read anyone's.
func (h *ComplaintHandler) BySubmitter(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	email := chi.URLParam(r, "email")

	if session.Role != models.RoleAdministrative && session.Email != email {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}

	complaints, err := h.complaintSvc.ListBySubmitter(r.Context(), email)
	if err != nil {
		h.logger.Errorw("Failed to list complaints by submitter", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch complaints")
		return
	}
	respondJSON(w, http.StatusOK, complaints)
}

// Get handles GET /api/v1/complaints/{id}.
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	complaint, err := h.complaintSvc.Get(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch complaint")
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// View handles POST /api/v1/complaints/{id}/view (Pending → Viewed).
func (h *ComplaintHandler) View(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	complaint, err := h.complaintSvc.View(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to update complaint")
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// Assign handles POST /api/v1/complaints/{id}/assign (Viewed → Assigned).
func (h *ComplaintHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}

	var req models.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	complaint, err := h.complaintSvc.Assign(r.Context(), id, actor, req.EmployeeID)
	if err != nil {
		respondServiceError(w, err, "Failed to assign complaint")
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// Start handles POST /api/v1/complaints/{id}/start (Assigned → Ongoing).
func (h *ComplaintHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	complaint, err := h.complaintSvc.Start(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err, "Failed to update complaint")
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// Resolve handles POST /api/v1/complaints/{id}/resolve (Ongoing →
// Resolved, photo required).
func (h *ComplaintHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}

	var req models.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	complaint, err := h.complaintSvc.Resolve(r.Context(), id, actor, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to resolve complaint")
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

func (h *ComplaintHandler) idAndActor(w http.ResponseWriter, r *http.Request) (uuid.UUID, lifecycle.Actor, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return uuid.Nil, lifecycle.Actor{}, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return uuid.Nil, lifecycle.Actor{}, false
	}
	return id, lifecycle.Actor{Email: session.Email, Role: session.Role}, true
}

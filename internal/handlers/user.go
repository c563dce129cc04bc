package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nagorik/grievance-server/internal/middleware"
	"github.com/nagorik/grievance-server/internal/models"
	"github.com/nagorik/grievance-server/internal/services"
	"go.uber.org/zap"
)

// UserHandler handles account and employee-directory endpoints.
type UserHandler struct {
	userSvc *services.UserService
	logger  *zap.SugaredLogger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(us *services.UserService, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{userSvc: us, logger: logger}
}

// List handles GET /api/v1/users?role=employee|citizen (admin).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	users, err := h.userSvc.List(r.Context(), role)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Get handles GET /api/v1/users/{email}. Users may read themselves;
// administrators may read anyone.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	email := chi.URLParam(r, "email")

	if session.Role != models.RoleAdministrative && session.Email != email {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}

	user, err := h.userSvc.GetByEmail(r.Context(), email)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// CreateEmployee handles POST /api/v1/users (admin): explicit
// registration of an employee account.
func (h *UserHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req services.EmployeeRegistration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userSvc.RegisterEmployee(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "Failed to create employee")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

type suspendRequest struct {
	Suspended bool `json:"suspended"`
}

// Suspend handles PUT /api/v1/users/{email}/suspend (admin): the soft,
// reversible suspension toggle.
func (h *UserHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	var req suspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := chi.URLParam(r, "email")
	if err := h.userSvc.SetSuspended(r.Context(), email, req.Suspended); err != nil {
		respondServiceError(w, err, "Failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"suspended": req.Suspended})
}

type profileRequest struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
}

// UpdateProfile handles PUT /api/v1/users/me: display name and photo.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userSvc.UpdateProfile(r.Context(), session.Email, req.Name, req.PhotoURL); err != nil {
		respondServiceError(w, err, "Failed to update profile")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Departments handles GET /api/v1/employees/departments: level one of
// the assignment funnel.
func (h *UserHandler) Departments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.userSvc.Departments(r.Context())
	if err != nil {
		respondServiceError(w, err, "Failed to fetch departments")
		return
	}
	respondJSON(w, http.StatusOK, departments)
}

// Designations handles GET /api/v1/employees/designations?department=:
// level two of the funnel.
func (h *UserHandler) Designations(w http.ResponseWriter, r *http.Request) {
	designations, err := h.userSvc.Designations(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		respondServiceError(w, err, "Failed to fetch designations")
		return
	}
	respondJSON(w, http.StatusOK, designations)
}

// Employees handles GET /api/v1/employees?department=&designation=&q=:
// the final funnel level with live text search.
func (h *UserHandler) Employees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employees, err := h.userSvc.SearchEmployees(r.Context(), q.Get("department"), q.Get("designation"), q.Get("q"))
	if err != nil {
		respondServiceError(w, err, "Failed to fetch employees")
		return
	}
	respondJSON(w, http.StatusOK, employees)
}

// Package handlers contains HTTP request handlers for the grievance API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nagorik/grievance-server/internal/lifecycle"
	"github.com/nagorik/grievance-server/internal/services"
	"github.com/nagorik/grievance-server/internal/store"
)

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service and lifecycle error taxonomy to
// HTTP statuses. Unknown errors become an opaque 500 with the fallback
// message so internals never leak to clients.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, lifecycle.ErrMissingAttachment),
		errors.Is(err, lifecycle.ErrMissingEmployee):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, lifecycle.ErrUnauthorized),
		errors.Is(err, lifecycle.ErrNotAssignee),
		errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		respondError(w, http.StatusConflict, "already exists")
	default:
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nagorik/grievance-server/internal/middleware"
	"github.com/nagorik/grievance-server/internal/models"
	"github.com/nagorik/grievance-server/internal/services"
	"go.uber.org/zap"
)

// AuthHandler handles registration, login, and session introspection.
type AuthHandler struct {
	users  *services.UserService
	secret string
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users *services.UserService, secret string, ttl time.Duration, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{users: users, secret: secret, ttl: ttl, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/v1/auth/register.
// First successful registration provisions a citizen account; this is
// the implicit create-on-first-login the portal relies on.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.RegisterCitizen(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondServiceError(w, err, "Failed to register")
		return
	}

	token, err := middleware.IssueToken(user, []byte(h.secret), h.ttl)
	if err != nil {
		h.logger.Errorw("Failed to issue token", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, services.ErrSuspended):
			respondError(w, http.StatusForbidden, "Account is suspended")
		default:
			h.logger.Errorw("Login failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to authenticate")
		}
		return
	}

	token, err := middleware.IssueToken(user, []byte(h.secret), h.ttl)
	if err != nil {
		h.logger.Errorw("Failed to issue token", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), session.Email)
	if err != nil {
		respondServiceError(w, err, "Failed to load user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

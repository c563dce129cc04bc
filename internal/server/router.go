package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nagorik/grievance-server/internal/config"
	"github.com/nagorik/grievance-server/internal/handlers"
	"github.com/nagorik/grievance-server/internal/middleware"
	"github.com/nagorik/grievance-server/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Complaints *handlers.ComplaintHandler
	Users      *handlers.UserHandler
	Media      *handlers.MediaHandler
	Activity   *handlers.ActivityHandler
	Stats      *handlers.StatsHandler
	Health     *handlers.HealthHandler
}

// NewRouter builds the chi router with the global middleware stack and
// all role-gated route groups.
func NewRouter(cfg *config.Config, logger *zap.Logger, rdb *redis.Client, h Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(rdb, cfg.RateLimitRPM, logger.Sugar()))

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)
	adminOnly := middleware.RequireRole(models.RoleAdministrative)
	employeeOnly := middleware.RequireRole(models.RoleEmployee)
	citizenOnly := middleware.RequireRole(models.RoleCitizen)

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", h.Health.Check)
		r.Get("/health/ready", h.Health.Ready)

		// Session endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.With(requireAuth).Get("/me", h.Auth.Me)
		})

		// Media: display URLs are public, uploads need a session
		r.Route("/media", func(r chi.Router) {
			r.With(requireAuth).Post("/", h.Media.Upload)
			r.Get("/{key}", h.Media.Serve)
		})

		// Complaint lifecycle
		r.Route("/complaints", func(r chi.Router) {
			r.Use(requireAuth)

			r.With(citizenOnly).Post("/", h.Complaints.Submit)
			r.With(adminOnly).Get("/", h.Complaints.List)
			r.With(employeeOnly).Get("/assigned", h.Complaints.Assigned)
			r.Get("/user/{email}", h.Complaints.BySubmitter)
			r.Get("/{id}", h.Complaints.Get)

			// Transitions; the lifecycle policy re-checks the actor
			// inside the transaction, the route gate is first defense.
			r.With(adminOnly).Post("/{id}/view", h.Complaints.View)
			r.With(adminOnly).Post("/{id}/assign", h.Complaints.Assign)
			r.With(employeeOnly).Post("/{id}/start", h.Complaints.Start)
			r.With(employeeOnly).Post("/{id}/resolve", h.Complaints.Resolve)
		})

		// Accounts
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)

			r.With(adminOnly).Get("/", h.Users.List)
			r.With(adminOnly).Post("/", h.Users.CreateEmployee)
			r.Put("/me", h.Users.UpdateProfile)
			r.Get("/{email}", h.Users.Get)
			r.With(adminOnly).Put("/{email}/suspend", h.Users.Suspend)
		})

		// Assignment funnel (admin)
		r.Route("/employees", func(r chi.Router) {
			r.Use(requireAuth, adminOnly)

			r.Get("/", h.Users.Employees)
			r.Get("/departments", h.Users.Departments)
			r.Get("/designations", h.Users.Designations)
		})

		// Audit log (admin)
		r.Route("/activity", func(r chi.Router) {
			r.Use(requireAuth, adminOnly)

			r.Get("/recent", h.Activity.Recent)
			r.Get("/complaint/{id}", h.Activity.ByComplaint)
		})

		// Dashboard aggregates (admin)
		r.Route("/stats", func(r chi.Router) {
			r.Use(requireAuth, adminOnly)

			r.Get("/status", h.Stats.Status)
			r.Get("/wards", h.Stats.Wards)
			r.Get("/categories", h.Stats.Categories)
		})
	})

	return r
}

// Package server wires configuration, stores, services, and handlers
// into a running HTTP server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nagorik/grievance-server/internal/config"
	"github.com/nagorik/grievance-server/internal/database"
	"github.com/nagorik/grievance-server/internal/handlers"
	"github.com/nagorik/grievance-server/internal/services"
	"github.com/nagorik/grievance-server/internal/storage"
	"github.com/nagorik/grievance-server/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server is the assembled application.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	db     *pgxpool.Pool
	rdb    *redis.Client
	http   *http.Server

	statsWorker *services.StatsWorker
}

// New builds the full dependency graph from configuration.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	sugar := logger.Sugar()

	// Database connection pool
	db, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// Redis for rate limiting and the stats cache. Optional in
	// development: a failed connection just disables both.
	var rdb *redis.Client
	if opts, err := redis.ParseURL(cfg.RedisURL); err == nil {
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			sugar.Warnw("Redis unavailable, rate limiting and stats cache disabled", "error", err)
			rdb = nil
		}
	} else {
		sugar.Warnw("Invalid REDIS_URL, rate limiting and stats cache disabled", "error", err)
	}

	// Object storage for complaint photos
	objects, err := storage.NewMinioClient(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure media bucket: %w", err)
	}

	// Stores
	complaintStore := store.NewComplaintStore(db)
	userStore := store.NewUserStore(db)
	activityStore := store.NewActivityStore(db)

	// Services
	mediaSvc := services.NewMediaService(objects, cfg.PublicBaseURL, sugar)
	activitySvc := services.NewActivityService(activityStore, sugar)
	complaintSvc := services.NewComplaintService(complaintStore, userStore, mediaSvc, activitySvc, sugar)
	userSvc := services.NewUserService(userStore, sugar)
	statsSvc := services.NewStatsService(complaintStore, rdb, cfg.StatsCacheTTL, sugar)

	h := Handlers{
		Auth:       handlers.NewAuthHandler(userSvc, cfg.JWTSecret, cfg.TokenTTL, sugar),
		Complaints: handlers.NewComplaintHandler(complaintSvc, userSvc, sugar),
		Users:      handlers.NewUserHandler(userSvc, sugar),
		Media:      handlers.NewMediaHandler(mediaSvc, sugar),
		Activity:   handlers.NewActivityHandler(activitySvc, sugar),
		Stats:      handlers.NewStatsHandler(statsSvc, sugar),
		Health:     handlers.NewHealthHandler(db, sugar),
	}

	router := NewRouter(cfg, logger, rdb, h)

	return &Server{
		cfg:    cfg,
		logger: logger,
		sugar:  sugar,
		db:     db,
		rdb:    rdb,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		statsWorker: services.NewStatsWorker(statsSvc, sugar),
	}, nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	defer s.db.Close()

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	go s.statsWorker.Start(workerCtx, s.cfg.StatsCacheTTL)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.sugar.Infof("Server listening on :%d", s.cfg.Port)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-done:
	}

	s.sugar.Info("Shutting down gracefully...")
	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	s.sugar.Info("Server stopped")
	return nil
}

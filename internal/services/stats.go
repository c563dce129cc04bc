package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nagorik/grievance-server/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const wardStatsKey = "stats:wards"

// StatsRepository defines the aggregation queries behind the admin
// dashboards.
type StatsRepository interface {
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountByWard(ctx context.Context) ([]models.WardCount, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

// StatsService serves dashboard aggregates. The ward breakdown is the
// heaviest query and is cached in Redis; a nil client disables caching.
type StatsService struct {
	repo     StatsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
}

// NewStatsService creates a new stats service.
func NewStatsService(repo StatsRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.SugaredLogger) *StatsService {
	return &StatsService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// StatusCounts returns complaint counts per lifecycle state.
func (s *StatsService) StatusCounts(ctx context.Context) ([]models.StatusCount, error) {
	return s.repo.CountByStatus(ctx)
}

// CategoryCounts returns complaint counts per category.
func (s *StatsService) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	return s.repo.CountByCategory(ctx)
}

// WardCounts returns complaint counts per ward, served from the Redis
// cache when warm.
func (s *StatsService) WardCounts(ctx context.Context) ([]models.WardCount, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, wardStatsKey).Bytes(); err == nil {
			var counts []models.WardCount
			if err := json.Unmarshal(raw, &counts); err == nil {
				return counts, nil
			}
		}
	}
	return s.refreshWardCounts(ctx)
}

func (s *StatsService) refreshWardCounts(ctx context.Context) ([]models.WardCount, error) {
	counts, err := s.repo.CountByWard(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(counts); err == nil {
			if err := s.cache.Set(ctx, wardStatsKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warnw("Failed to cache ward stats", "error", err)
			}
		}
	}
	return counts, nil
}

// StatsWorker periodically rewarms the ward stats cache so the admin
// dashboard never waits on the aggregation query.
type StatsWorker struct {
	stats  *StatsService
	logger *zap.SugaredLogger
}

// NewStatsWorker creates a new background stats worker.
func NewStatsWorker(stats *StatsService, logger *zap.SugaredLogger) *StatsWorker {
	return &StatsWorker{stats: stats, logger: logger}
}

// Start begins the periodic refresh loop.
func (w *StatsWorker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial warm-up
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	counts, err := w.stats.refreshWardCounts(ctx)
	if err != nil {
		w.logger.Errorw("Stats refresh failed", "error", err)
		return
	}
	w.logger.Debugw("Ward stats refreshed", "wards", len(counts))
}

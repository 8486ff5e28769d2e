package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/smle-dev/smle/internal/domain/model"
	repo "github.com/smle-dev/smle/internal/domain/repository"
)

// Ensure CachedRunRepository implements the interface
var _ repo.RunRepository = (*CachedRunRepository)(nil)

// CachedRunRepository is a decorator for a RunRepository that adds a
// cache-aside layer using Redis. Only run records are cached; metric streams
// always go to the primary repository.
type CachedRunRepository struct {
	primaryRepo repo.RunRepository
	cache       repo.RunCache
	logger      zerolog.Logger
	ttl         time.Duration
}

// NewCachedRunRepository creates a new instance of the cached repository.
// It takes the primary repository and the cache as dependencies.
func NewCachedRunRepository(
	primaryRepo repo.RunRepository,
	cache repo.RunCache,
	logger *zerolog.Logger,
) *CachedRunRepository {
	return &CachedRunRepository{
		primaryRepo: primaryRepo,
		cache:       cache,
		logger:      logger.With().Str("layer", "cached_repository").Logger(),
		ttl:         time.Hour * 24,
	}
}

// Save first persists the run in the primary repository, then warms up the
// cache with the new data.
func (r *CachedRunRepository) Save(ctx context.Context, run *model.Run) (*model.Run, error) {
	created, err := r.primaryRepo.Save(ctx, run)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, created, r.ttl); err != nil {
		r.logger.Error().Err(err).Stringer("id", created.ID).Msg("failed to cache run after save")
	}

	return created, nil
}

// GetByID implements the cache-aside pattern: try the cache first, fall back
// to the primary repository on a miss and warm the cache with the result.
func (r *CachedRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	cached, err := r.cache.Get(ctx, id)
	if err == nil {
		r.logger.Info().Stringer("id", id).Msg("cache hit")
		return cached, nil
	}

	if !errors.Is(err, repo.ErrNotFound) {
		r.logger.Error().Err(err).Stringer("id", id).Msg("cache get error, falling back to primary repository")
	} else {
		r.logger.Info().Stringer("id", id).Msg("cache miss")
	}

	primary, err := r.primaryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, primary, r.ttl); err != nil {
		r.logger.Error().Err(err).Stringer("id", primary.ID).Msg("failed to set cache after db fetch")
	}

	return primary, nil
}

// Update first updates the data in the primary repository, then invalidates
// the corresponding cache entry.
func (r *CachedRunRepository) Update(ctx context.Context, run *model.Run) error {
	if err := r.primaryRepo.Update(ctx, run); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, run.ID); err != nil {
		r.logger.Error().Err(err).Stringer("id", run.ID).Msg("failed to invalidate cache after update")
	}

	return nil
}

// AddMetric passes straight through; metrics are not cached.
func (r *CachedRunRepository) AddMetric(ctx context.Context, m *model.Metric) error {
	return r.primaryRepo.AddMetric(ctx, m)
}

// ListMetrics passes straight through; metrics are not cached.
func (r *CachedRunRepository) ListMetrics(ctx context.Context, runID uuid.UUID) ([]model.Metric, error) {
	return r.primaryRepo.ListMetrics(ctx, runID)
}

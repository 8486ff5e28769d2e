package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smle-dev/smle/internal/domain/model"
)

// Sentinel errors shared by all repository implementations.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateRecord = errors.New("record already exists")
)

// RunRepository defines the contract for run persistence (e.g., a database).
type RunRepository interface {
	// Save persists a new run.
	Save(ctx context.Context, r *model.Run) (*model.Run, error)

	// GetByID retrieves a run by its unique ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Run, error)

	// Update updates the mutable fields of a run, primarily its status and finish time.
	Update(ctx context.Context, r *model.Run) error

	// AddMetric appends a metric observation to a run.
	AddMetric(ctx context.Context, m *model.Metric) error

	// ListMetrics returns all metrics recorded against a run, oldest first.
	ListMetrics(ctx context.Context, runID uuid.UUID) ([]model.Metric, error)
}

// RunCache defines the contract for a caching layer over runs.
type RunCache interface {
	// Get retrieves a run from the cache.
	Get(ctx context.Context, id uuid.UUID) (*model.Run, error)

	// Set adds a run to the cache for a specified duration.
	Set(ctx context.Context, r *model.Run, expiration time.Duration) error

	// Delete removes a run from the cache.
	Delete(ctx context.Context, id uuid.UUID) error
}

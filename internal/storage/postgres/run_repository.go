package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/smle-dev/smle/internal/domain/model"
	repo "github.com/smle-dev/smle/internal/domain/repository"
)

// Ensure RunRepository implements the interface
var _ repo.RunRepository = (*RunRepository)(nil)

const createRunQuery = `
INSERT INTO runs (id, name, status, config, started_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, name, status, config, started_at, finished_at, created_at, updated_at`

const getRunQuery = `
SELECT id, name, status, config, started_at, finished_at, created_at, updated_at
FROM runs
WHERE id = $1`

const updateRunQuery = `
UPDATE runs
SET status = $2, finished_at = $3, updated_at = $4
WHERE id = $1
RETURNING id`

const addMetricQuery = `
INSERT INTO run_metrics (run_id, key, value, step, recorded_at)
VALUES ($1, $2, $3, $4, $5)`

const listMetricsQuery = `
SELECT run_id, key, value, step, recorded_at
FROM run_metrics
WHERE run_id = $1
ORDER BY recorded_at, step`

// RunRepository implements the domain.repository.RunRepository interface
// using PostgreSQL as a backend.
type RunRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRunRepository creates a new instance of the RunRepository.
func NewRunRepository(pool *pgxpool.Pool, logger *zerolog.Logger) *RunRepository {
	return &RunRepository{
		pool:   pool,
		logger: logger.With().Str("layer", "postgres_repository").Logger(),
	}
}

// Save persists a new run and returns the created object as stored.
func (r *RunRepository) Save(ctx context.Context, run *model.Run) (*model.Run, error) {
	row := r.pool.QueryRow(ctx, createRunQuery,
		run.ID, run.Name, string(run.Status), run.Config, run.StartedAt, run.CreatedAt, run.UpdatedAt)

	created, err := scanRun(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, repo.ErrDuplicateRecord
		}
		r.logger.Err(err).Msg("cannot create run")
		return nil, fmt.Errorf("postgres: CreateRun failed: %w", err)
	}
	return created, nil
}

// GetByID retrieves a run by its unique ID.
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	run, err := scanRun(r.pool.QueryRow(ctx, getRunQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn().Stringer("id", id).Msg("run not found by id")
			return nil, repo.ErrNotFound
		}
		r.logger.Err(err).Str("method", "GetByID").Msg("cannot get run")
		return nil, fmt.Errorf("postgres: GetRunByID failed: %w", err)
	}
	return run, nil
}

// Update updates the mutable fields of a run.
func (r *RunRepository) Update(ctx context.Context, run *model.Run) error {
	var updatedID uuid.UUID
	err := r.pool.QueryRow(ctx, updateRunQuery,
		run.ID, string(run.Status), run.FinishedAt, run.UpdatedAt).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn().Stringer("id", run.ID).Msg("tried to update non-existent run")
			return repo.ErrNotFound
		}
		r.logger.Err(err).Stringer("id", run.ID).Msg("cannot update run")
		return fmt.Errorf("postgres: UpdateRun failed: %w", err)
	}
	return nil
}

// AddMetric appends a metric observation to a run.
func (r *RunRepository) AddMetric(ctx context.Context, m *model.Metric) error {
	_, err := r.pool.Exec(ctx, addMetricQuery, m.RunID, m.Key, m.Value, m.Step, m.RecordedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			r.logger.Warn().Stringer("run_id", m.RunID).Msg("tried to add metric for non-existent run")
			return repo.ErrNotFound
		}
		r.logger.Err(err).Stringer("run_id", m.RunID).Str("key", m.Key).Msg("cannot add metric")
		return fmt.Errorf("postgres: AddMetric failed: %w", err)
	}
	return nil
}

// ListMetrics returns all metrics recorded against a run, oldest first.
func (r *RunRepository) ListMetrics(ctx context.Context, runID uuid.UUID) ([]model.Metric, error) {
	rows, err := r.pool.Query(ctx, listMetricsQuery, runID)
	if err != nil {
		r.logger.Err(err).Stringer("run_id", runID).Msg("cannot list metrics")
		return nil, fmt.Errorf("postgres: ListMetrics failed: %w", err)
	}
	defer rows.Close()

	var metrics []model.Metric
	for rows.Next() {
		var m model.Metric
		if err := rows.Scan(&m.RunID, &m.Key, &m.Value, &m.Step, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: ListMetrics rows: %w", err)
	}
	return metrics, nil
}

// scanRun converts a database row into a domain model.
func scanRun(row pgx.Row) (*model.Run, error) {
	var (
		run    model.Run
		status string
	)
	err := row.Scan(&run.ID, &run.Name, &status, &run.Config,
		&run.StartedAt, &run.FinishedAt, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	run.Status = model.RunStatus(status)
	return &run, nil
}

package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/smle-dev/smle/internal/domain/model"
	repo "github.com/smle-dev/smle/internal/domain/repository"
)

// RunService encapsulates the business logic of the experiment tracker.
// It orchestrates the run repository.
type RunService struct {
	repo   repo.RunRepository
	logger zerolog.Logger
}

func NewRunService(repo repo.RunRepository, logger *zerolog.Logger) *RunService {
	return &RunService{
		repo:   repo,
		logger: logger.With().Str("layer", "service").Logger(),
	}
}

// StartRun validates input and persists a new run in the running state.
func (s *RunService) StartRun(ctx context.Context, name string, cfg map[string]any) (*model.Run, error) {
	if strings.TrimSpace(name) == "" {
		s.logger.Warn().Msg("invalid run name")
		return nil, fmt.Errorf("run name must not be empty")
	}

	run := model.NewRun(name, cfg)
	created, err := s.repo.Save(ctx, run)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save run")
		return nil, err
	}

	s.logger.Info().Stringer("id", created.ID).Str("name", name).Msg("run started")
	return created, nil
}

// GetRun retrieves a run by its ID. The repository decorator handles the
// cache-aside logic transparently.
func (s *RunService) GetRun(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Msgf("Failed to get run by ID: %s", id)
		return nil, err
	}
	return run, nil
}

// LogMetric records a scalar observation against a running run.
func (s *RunService) LogMetric(ctx context.Context, runID uuid.UUID, key string, value float64, step int64) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("metric key must not be empty")
	}

	run, err := s.repo.GetByID(ctx, runID)
	if err != nil {
		s.logger.Error().Err(err).Stringer("run_id", runID).Msg("can't get run for metric")
		return err
	}
	if run.Status != model.RunStatusRunning {
		s.logger.Warn().Stringer("run_id", runID).Str("status", string(run.Status)).Msg("can't log metric")
		return fmt.Errorf("cannot log metric for run with status: %s", run.Status)
	}

	return s.repo.AddMetric(ctx, model.NewMetric(runID, key, value, step))
}

// ListMetrics returns all metrics recorded against a run.
func (s *RunService) ListMetrics(ctx context.Context, runID uuid.UUID) ([]model.Metric, error) {
	metrics, err := s.repo.ListMetrics(ctx, runID)
	if err != nil {
		s.logger.Error().Err(err).Stringer("run_id", runID).Msg("failed to list metrics")
		return nil, err
	}
	return metrics, nil
}

// FinishRun moves a running run to a terminal status and stamps its finish time.
func (s *RunService) FinishRun(ctx context.Context, id uuid.UUID, status model.RunStatus) (*model.Run, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("cannot finish run with non-terminal status: %s", status)
	}

	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Stringer("run_id", id).Msg("can't get run")
		return nil, err
	}
	if run.Status != model.RunStatusRunning {
		s.logger.Warn().Stringer("run_id", id).Str("status", string(run.Status)).Msg("can't finish run")
		return nil, fmt.Errorf("cannot finish run with status: %s", run.Status)
	}

	now := time.Now().UTC()
	run.Status = status
	run.FinishedAt = &now
	run.UpdatedAt = now

	if err := s.repo.Update(ctx, run); err != nil {
		s.logger.Error().Err(err).Stringer("run_id", id).Msg("failed to update run")
		return nil, err
	}

	s.logger.Info().Stringer("run_id", id).Str("status", string(status)).Msg("run finished")
	return run, nil
}

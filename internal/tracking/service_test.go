package tracking

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smle-dev/smle/internal/domain/model"
	repo "github.com/smle-dev/smle/internal/domain/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memoryRepo is an in-memory RunRepository used to exercise the service layer.
type memoryRepo struct {
	runs    map[uuid.UUID]*model.Run
	metrics map[uuid.UUID][]model.Metric
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		runs:    make(map[uuid.UUID]*model.Run),
		metrics: make(map[uuid.UUID][]model.Metric),
	}
}

func (m *memoryRepo) Save(_ context.Context, r *model.Run) (*model.Run, error) {
	if _, ok := m.runs[r.ID]; ok {
		return nil, repo.ErrDuplicateRecord
	}
	cp := *r
	m.runs[r.ID] = &cp
	return &cp, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memoryRepo) Update(_ context.Context, r *model.Run) error {
	if _, ok := m.runs[r.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *r
	m.runs[r.ID] = &cp
	return nil
}

func (m *memoryRepo) AddMetric(_ context.Context, mt *model.Metric) error {
	if _, ok := m.runs[mt.RunID]; !ok {
		return repo.ErrNotFound
	}
	m.metrics[mt.RunID] = append(m.metrics[mt.RunID], *mt)
	return nil
}

func (m *memoryRepo) ListMetrics(_ context.Context, runID uuid.UUID) ([]model.Metric, error) {
	return m.metrics[runID], nil
}

func TestStartRun(t *testing.T) {
	svc := NewRunService(newMemoryRepo(), testLogger())

	run, err := svc.StartRun(context.Background(), "resnet-baseline", map[string]any{"lr": 0.01})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, "resnet-baseline", run.Name)
}

func TestStartRunRejectsBlankName(t *testing.T) {
	svc := NewRunService(newMemoryRepo(), testLogger())

	_, err := svc.StartRun(context.Background(), "   ", nil)
	require.Error(t, err)
}

func TestGetRunNotFound(t *testing.T) {
	svc := NewRunService(newMemoryRepo(), testLogger())

	_, err := svc.GetRun(context.Background(), uuid.New())
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestLogMetricAndList(t *testing.T) {
	svc := NewRunService(newMemoryRepo(), testLogger())
	run, err := svc.StartRun(context.Background(), "run", nil)
	require.NoError(t, err)

	require.NoError(t, svc.LogMetric(context.Background(), run.ID, "loss", 0.42, 1))
	require.NoError(t, svc.LogMetric(context.Background(), run.ID, "loss", 0.40, 2))

	metrics, err := svc.ListMetrics(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "loss", metrics[0].Key)
	assert.Equal(t, int64(2), metrics[1].Step)
}

func TestLogMetricRejectsBlankKey(t *testing.T) {
	svc := NewRunService(newMemoryRepo(), testLogger())
	run, err := svc.StartRun(context.Background(), "run", nil)
	require.NoError(t, err)

	require.Error(t, svc.LogMetric(context.Background(), run.ID, "  ", 1.0, 0))
}

func TestLogMetricRejectsFinishedRun(t *testing.T) {
	svc := NewRunService(newMemoryRepo(), testLogger())
	run, err := svc.StartRun(context.Background(), "run", nil)
	require.NoError(t, err)

	_, err = svc.FinishRun(context.Background(), run.ID, model.RunStatusCompleted)
	require.NoError(t, err)

	require.Error(t, svc.LogMetric(context.Background(), run.ID, "loss", 0.1, 3))
}

func TestFinishRun(t *testing.T) {
	svc := NewRunService(newMemoryRepo(), testLogger())
	run, err := svc.StartRun(context.Background(), "run", nil)
	require.NoError(t, err)

	finished, err := svc.FinishRun(context.Background(), run.ID, model.RunStatusFailed)
	require.NoError(t, err)

	assert.Equal(t, model.RunStatusFailed, finished.Status)
	require.NotNil(t, finished.FinishedAt)
	assert.False(t, finished.FinishedAt.Before(run.StartedAt))
}

func TestFinishRunRejectsNonTerminalStatus(t *testing.T) {
	svc := NewRunService(newMemoryRepo(), testLogger())
	run, err := svc.StartRun(context.Background(), "run", nil)
	require.NoError(t, err)

	_, err = svc.FinishRun(context.Background(), run.ID, model.RunStatusRunning)
	require.Error(t, err)
}

func TestFinishRunTwiceFails(t *testing.T) {
	svc := NewRunService(newMemoryRepo(), testLogger())
	run, err := svc.StartRun(context.Background(), "run", nil)
	require.NoError(t, err)

	_, err = svc.FinishRun(context.Background(), run.ID, model.RunStatusCompleted)
	require.NoError(t, err)

	_, err = svc.FinishRun(context.Background(), run.ID, model.RunStatusCancelled)
	require.Error(t, err)
}

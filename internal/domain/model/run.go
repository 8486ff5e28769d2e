package model

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the current state of a training run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"   // The run is in progress.
	RunStatusCompleted RunStatus = "completed" // The entrypoint returned without error.
	RunStatusFailed    RunStatus = "failed"    // The entrypoint returned an error or panicked.
	RunStatusCancelled RunStatus = "cancelled" // The run was cancelled by a user request.
)

// Terminal reports whether the status is a final state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Run is the core entity of the experiment tracker.
// It is technology-agnostic and does not contain any DB or JSON tags.
type Run struct {
	ID     uuid.UUID
	Name   string
	Status RunStatus

	// Config is a snapshot of the training configuration at start time.
	Config map[string]any

	StartedAt  time.Time
	FinishedAt *time.Time // Pointer to allow null value.
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Metric is a single scalar observation recorded against a run.
type Metric struct {
	RunID      uuid.UUID
	Key        string
	Value      float64
	Step       int64
	RecordedAt time.Time
}

// NewRun is a factory function to create a run in the running state.
func NewRun(name string, cfg map[string]any) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:        uuid.New(),
		Name:      name,
		Status:    RunStatusRunning,
		Config:    cfg,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMetric is a factory function for a metric observation.
func NewMetric(runID uuid.UUID, key string, value float64, step int64) *Metric {
	return &Metric{
		RunID:      runID,
		Key:        key,
		Value:      value,
		Step:       step,
		RecordedAt: time.Now().UTC(),
	}
}

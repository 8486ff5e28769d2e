package http

import (
	"time"

	"github.com/google/uuid"
)

// StartRunRequest defines the structure for registering a new run.
// It uses `json` tags for unmarshalling and `binding` for validation with Gin.
type StartRunRequest struct {
	Name   string         `json:"name" binding:"required"`
	Config map[string]any `json:"config"`
}

// LogMetricRequest defines the structure for a metric observation.
type LogMetricRequest struct {
	Key   string  `json:"key" binding:"required"`
	Value float64 `json:"value"`
	Step  int64   `json:"step"`
}

// FinishRunRequest moves a run to a terminal status.
type FinishRunRequest struct {
	Status string `json:"status" binding:"required"`
}

// RunResponse defines the structure for a standard run response.
// We don't expose all internal fields to the client.
type RunResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MetricResponse defines the structure for one recorded metric.
type MetricResponse struct {
	Key        string    `json:"key"`
	Value      float64   `json:"value"`
	Step       int64     `json:"step"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ErrorResponse defines a standard structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

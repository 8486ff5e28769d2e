package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/smle-dev/smle/internal/domain/model"
	repo "github.com/smle-dev/smle/internal/domain/repository"
	"github.com/smle-dev/smle/internal/tracking"
)

type Handlers struct {
	service *tracking.RunService
	logger  zerolog.Logger
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *tracking.RunService, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger.With().Str("layer", "http_handler").Logger(),
	}
}

// RegisterRoutes sets up the routing for the tracker API.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/runs", h.StartRun)
		api.GET("/runs/:id", h.GetRunByID)
		api.POST("/runs/:id/metrics", h.LogMetric)
		api.GET("/runs/:id/metrics", h.ListMetrics)
		api.POST("/runs/:id/finish", h.FinishRun)
	}
}

// StartRun handles the HTTP request for registering a new run.
func (h *Handlers) StartRun(c *gin.Context) {
	var req StartRunRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	run, err := h.service.StartRun(c.Request.Context(), req.Name, req.Config)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateRecord) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Msg("failed to start run")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to start run"})
		return
	}

	c.JSON(http.StatusCreated, toRunResponse(run))
}

// GetRunByID handles the HTTP request to retrieve a run.
func (h *Handlers) GetRunByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	run, err := h.service.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Stringer("id", id).Msg("failed to get run by id")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to retrieve run"})
		return
	}

	c.JSON(http.StatusOK, toRunResponse(run))
}

// LogMetric handles the HTTP request to record a metric observation.
func (h *Handlers) LogMetric(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req LogMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.service.LogMetric(c.Request.Context(), id, req.Key, req.Value, req.Step); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Stringer("id", id).Msg("failed to log metric")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to log metric"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMetrics handles the HTTP request to list a run's metrics.
func (h *Handlers) ListMetrics(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	metrics, err := h.service.ListMetrics(c.Request.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Stringer("id", id).Msg("failed to list metrics")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list metrics"})
		return
	}

	out := make([]MetricResponse, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, MetricResponse{Key: m.Key, Value: m.Value, Step: m.Step, RecordedAt: m.RecordedAt})
	}
	c.JSON(http.StatusOK, out)
}

// FinishRun handles the HTTP request to move a run to a terminal status.
func (h *Handlers) FinishRun(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req FinishRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	run, err := h.service.FinishRun(c.Request.Context(), id, model.RunStatus(req.Status))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Stringer("id", id).Msg("failed to finish run")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to finish run"})
		return
	}

	c.JSON(http.StatusOK, toRunResponse(run))
}

// parseID extracts and validates the run ID path parameter.
func (h *Handlers) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid run ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// toRunResponse is a helper function to map the domain model to the DTO.
func toRunResponse(r *model.Run) RunResponse {
	return RunResponse{
		ID:         r.ID,
		Name:       r.Name,
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		CreatedAt:  r.CreatedAt,
	}
}

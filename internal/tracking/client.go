package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/smle-dev/smle/internal/domain/model"
)

// Client is the contract the runner uses to record run lifecycle events with
// an experiment tracker.
type Client interface {
	// StartRun registers a new run and returns its ID.
	StartRun(ctx context.Context, name string, cfg map[string]any) (uuid.UUID, error)

	// LogMetric records a scalar observation against the run.
	LogMetric(ctx context.Context, runID uuid.UUID, key string, value float64, step int64) error

	// FinishRun moves the run to a terminal status.
	FinishRun(ctx context.Context, runID uuid.UUID, status model.RunStatus) error
}

// HTTPClient talks to a tracker server over its HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// Ensure the implementations satisfy the contract.
var (
	_ Client = (*HTTPClient)(nil)
	_ Client = NopClient{}
)

// NewHTTPClient creates a tracking client for the tracker at baseURL.
func NewHTTPClient(baseURL string, logger *zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger.With().Str("component", "tracking_client").Logger(),
	}
}

// StartRun implements the Client interface.
func (c *HTTPClient) StartRun(ctx context.Context, name string, cfg map[string]any) (uuid.UUID, error) {
	payload := struct {
		Name   string         `json:"name"`
		Config map[string]any `json:"config,omitempty"`
	}{Name: name, Config: cfg}

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if err := c.postJSON(ctx, "/api/v1/runs", payload, &created); err != nil {
		return uuid.Nil, fmt.Errorf("start run: %w", err)
	}

	c.logger.Info().Stringer("run_id", created.ID).Str("name", name).Msg("run registered with tracker")
	return created.ID, nil
}

// LogMetric implements the Client interface.
func (c *HTTPClient) LogMetric(ctx context.Context, runID uuid.UUID, key string, value float64, step int64) error {
	payload := struct {
		Key   string  `json:"key"`
		Value float64 `json:"value"`
		Step  int64   `json:"step"`
	}{Key: key, Value: value, Step: step}

	if err := c.postJSON(ctx, fmt.Sprintf("/api/v1/runs/%s/metrics", runID), payload, nil); err != nil {
		return fmt.Errorf("log metric %q: %w", key, err)
	}
	return nil
}

// FinishRun implements the Client interface.
func (c *HTTPClient) FinishRun(ctx context.Context, runID uuid.UUID, status model.RunStatus) error {
	payload := struct {
		Status string `json:"status"`
	}{Status: string(status)}

	if err := c.postJSON(ctx, fmt.Sprintf("/api/v1/runs/%s/finish", runID), payload, nil); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	c.logger.Info().Stringer("run_id", runID).Str("status", string(status)).Msg("run completion recorded with tracker")
	return nil
}

// postJSON issues one POST with a JSON body and optionally decodes the
// response into out. Any non-2xx status is an error.
func (c *HTTPClient) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("tracker returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// NopClient discards all tracking calls. Used when tracking is disabled.
type NopClient struct{}

func (NopClient) StartRun(context.Context, string, map[string]any) (uuid.UUID, error) {
	return uuid.Nil, nil
}

func (NopClient) LogMetric(context.Context, uuid.UUID, string, float64, int64) error {
	return nil
}

func (NopClient) FinishRun(context.Context, uuid.UUID, model.RunStatus) error {
	return nil
}

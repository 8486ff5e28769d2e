package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// EnvDiscordWebhook names the environment variable consulted when no webhook
// URL was passed to NewDiscord.
const EnvDiscordWebhook = "DISCORD_WEBHOOK"

// webhookTimeout bounds every webhook HTTP call. A timeout is a delivery
// failure, not a hang.
const webhookTimeout = 10 * time.Second

// Discord posts messages to a Discord channel webhook.
type Discord struct {
	webhookURL string
	username   string
	client     *http.Client
	logger     zerolog.Logger
}

// NewDiscord creates a new Discord service. An empty webhookURL defers
// resolution to the DISCORD_WEBHOOK environment variable at send time.
func NewDiscord(webhookURL string, logger *zerolog.Logger) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		username:   "smle",
		client:     &http.Client{Timeout: webhookTimeout},
		logger:     logger.With().Str("component", "discord_service").Logger(),
	}
}

func (d *Discord) Name() string { return "discord" }

// Send implements the Service interface for Discord.
func (d *Discord) Send(ctx context.Context, message string) error {
	url := d.webhookURL
	if url == "" {
		url = os.Getenv(EnvDiscordWebhook)
	}
	if url == "" {
		return &ConfigError{
			Service: d.Name(),
			Reason:  "webhook URL must be provided or set in " + EnvDiscordWebhook,
		}
	}

	payload := struct {
		Content  string `json:"content"`
		Username string `json:"username,omitempty"`
	}{Content: message, Username: d.username}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Service: d.Name(), Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Service: d.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return &DeliveryError{Service: d.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeliveryError{Service: d.Name(), Err: fmt.Errorf("webhook returned status %d", resp.StatusCode)}
	}

	d.logger.Info().Msg("discord notification delivered")
	return nil
}

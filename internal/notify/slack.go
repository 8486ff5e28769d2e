package notify

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// EnvSlackWebhook names the environment variable consulted when no webhook
// URL was passed to NewSlack.
const EnvSlackWebhook = "SLACK_WEBHOOK"

// Slack posts messages to a Slack incoming webhook.
type Slack struct {
	webhookURL string
	username   string
	client     *http.Client
	logger     zerolog.Logger
}

// NewSlack creates a new Slack service. An empty webhookURL defers resolution
// to the SLACK_WEBHOOK environment variable at send time.
func NewSlack(webhookURL string, logger *zerolog.Logger) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		username:   "smle",
		client:     &http.Client{Timeout: webhookTimeout},
		logger:     logger.With().Str("component", "slack_service").Logger(),
	}
}

func (s *Slack) Name() string { return "slack" }

// Send implements the Service interface for Slack.
func (s *Slack) Send(ctx context.Context, message string) error {
	url := s.webhookURL
	if url == "" {
		url = os.Getenv(EnvSlackWebhook)
	}
	if url == "" {
		return &ConfigError{
			Service: s.Name(),
			Reason:  "webhook URL must be provided or set in " + EnvSlackWebhook,
		}
	}

	msg := &slack.WebhookMessage{
		Text:      message,
		Username:  s.username,
		IconEmoji: ":robot_face:",
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, url, s.client, msg); err != nil {
		return &DeliveryError{Service: s.Name(), Err: err}
	}

	s.logger.Info().Msg("slack notification delivered")
	return nil
}

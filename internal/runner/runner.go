package runner

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/smle-dev/smle/internal/config"
	"github.com/smle-dev/smle/internal/domain/model"
	"github.com/smle-dev/smle/internal/logger"
	"github.com/smle-dev/smle/internal/notify"
	"github.com/smle-dev/smle/internal/tracking"
)

// Entrypoint is the user-supplied training function. It receives the parsed
// configuration and performs the actual training logic.
type Entrypoint func(ctx context.Context, cfg *config.Config) error

// Runner wires configuration, logging, experiment tracking and notifications
// around an Entrypoint.
type Runner struct {
	cfg      *config.Config
	logger   zerolog.Logger
	notifier *notify.Notifier
	tracker  tracking.Client
}

// New builds a Runner from an already-loaded configuration.
func New(cfg *config.Config, log *zerolog.Logger) *Runner {
	var tracker tracking.Client = tracking.NopClient{}
	if cfg.Tracking.Enabled && cfg.Tracking.BaseURL != "" {
		tracker = tracking.NewHTTPClient(cfg.Tracking.BaseURL, log)
	}

	return &Runner{
		cfg:      cfg,
		logger:   log.With().Str("component", "runner").Logger(),
		notifier: buildNotifier(cfg, log),
		tracker:  tracker,
	}
}

// NewFromFile loads configuration from path and builds a Runner with a fresh logger.
func NewFromFile(path string) (*Runner, error) {
	cfg, err := config.NewConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, log), nil
}

// Notifier exposes the runner's notifier so user code can register additional
// services or send mid-run notifications.
func (r *Runner) Notifier() *notify.Notifier { return r.notifier }

// Tracker exposes the tracking client for mid-run metric logging.
func (r *Runner) Tracker() tracking.Client { return r.tracker }

// Run executes the entrypoint, records the run with the tracker and sends a
// completion or failure notification. A panicking entrypoint is recovered and
// reported as a failed run. Tracking and notification failures are logged,
// never returned; the entrypoint's own error is.
func (r *Runner) Run(ctx context.Context, fn Entrypoint) (err error) {
	name := r.cfg.Run.Name
	if name == "" {
		name = "training run"
	}

	runID, trackErr := r.tracker.StartRun(ctx, name, r.configSnapshot())
	if trackErr != nil {
		r.logger.Warn().Err(trackErr).Msg("failed to register run with tracker")
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("entrypoint panicked: %v", rec)
			r.finish(ctx, runID, name, err)
		}
	}()

	r.logger.Info().Str("run", name).Msg("starting training run")
	err = fn(ctx, r.cfg)
	r.finish(ctx, runID, name, err)
	return err
}

// finish records the terminal status with the tracker and fans the outcome
// out to the notification services.
func (r *Runner) finish(ctx context.Context, runID uuid.UUID, name string, runErr error) {
	status := model.RunStatusCompleted
	message := fmt.Sprintf("Training run %q completed successfully", name)
	if runErr != nil {
		status = model.RunStatusFailed
		message = fmt.Sprintf("Training run %q failed: %v", name, runErr)
	}

	if runID != uuid.Nil {
		if err := r.tracker.FinishRun(ctx, runID, status); err != nil {
			r.logger.Warn().Err(err).Msg("failed to record run completion with tracker")
		}
	}

	r.notifier.Notify(ctx, message)
	r.logger.Info().Str("run", name).Str("status", string(status)).Msg("training run finished")
}

// configSnapshot is the run configuration recorded with the tracker.
func (r *Runner) configSnapshot() map[string]any {
	return map[string]any{
		"run_name":       r.cfg.Run.Name,
		"notifiers_mode": r.cfg.Notifiers.Mode,
	}
}

// buildNotifier assembles the notification fan-out from configuration: real
// channels only in production mode and only when they carry configuration,
// the log service otherwise.
func buildNotifier(cfg *config.Config, log *zerolog.Logger) *notify.Notifier {
	n := notify.NewNotifier(log)

	if cfg.Notifiers.Mode != "production" {
		n.AddService(notify.NewLog(log))
		return n
	}

	if cfg.Notifiers.Discord.WebhookURL != "" || os.Getenv(notify.EnvDiscordWebhook) != "" {
		n.AddService(notify.NewDiscord(cfg.Notifiers.Discord.WebhookURL, log))
	}
	if cfg.Notifiers.Slack.WebhookURL != "" || os.Getenv(notify.EnvSlackWebhook) != "" {
		n.AddService(notify.NewSlack(cfg.Notifiers.Slack.WebhookURL, log))
	}
	if cfg.Notifiers.Email.Host != "" || os.Getenv(notify.EnvSMTPServer) != "" {
		n.AddService(notify.NewEmail(notify.EmailConfig{
			Host:     cfg.Notifiers.Email.Host,
			Port:     cfg.Notifiers.Email.Port,
			Username: cfg.Notifiers.Email.Username,
			Password: cfg.Notifiers.Email.Password,
			From:     cfg.Notifiers.Email.From,
			To:       cfg.Notifiers.Email.To,
		}, log))
	}
	if cfg.Notifiers.Telegram.BotToken != "" || os.Getenv(notify.EnvTelegramToken) != "" {
		n.AddService(notify.NewTelegram(cfg.Notifiers.Telegram.BotToken, cfg.Notifiers.Telegram.ChatID, log))
	}
	if cfg.Notifiers.Desktop.Enabled {
		n.AddService(notify.NewDesktop(log))
	}

	if len(n.Services()) == 0 {
		n.AddService(notify.NewLog(log))
	}
	return n
}

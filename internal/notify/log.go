package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Log is a mock service that writes notifications to the logger instead of
// an external channel. It stands in for real services outside production
// mode and is extremely useful for development and testing.
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a new instance of Log.
func NewLog(logger *zerolog.Logger) *Log {
	return &Log{
		logger: logger.With().Str("component", "log_service").Logger(),
	}
}

func (l *Log) Name() string { return "log" }

// Send implements the Service interface.
func (l *Log) Send(_ context.Context, message string) error {
	l.logger.Info().Str("message", message).Msg(">>> MOCK SEND: notification dispatched")
	return nil
}

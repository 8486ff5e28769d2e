package notify

import (
	"context"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// Desktop shows a notification on the local desktop. Useful when training
// runs on the developer's own machine.
type Desktop struct {
	title  string
	logger zerolog.Logger
}

// NewDesktop creates a new Desktop service.
func NewDesktop(logger *zerolog.Logger) *Desktop {
	return &Desktop{
		title:  "smle",
		logger: logger.With().Str("component", "desktop_service").Logger(),
	}
}

func (d *Desktop) Name() string { return "desktop" }

// Send implements the Service interface for desktop notifications.
func (d *Desktop) Send(_ context.Context, message string) error {
	if err := beeep.Notify(d.title, message, ""); err != nil {
		return &DeliveryError{Service: d.Name(), Err: err}
	}
	d.logger.Info().Msg("desktop notification shown")
	return nil
}

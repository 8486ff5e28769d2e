package notify

import "context"

// Service defines the interface for any notification delivery channel.
// This allows us to easily swap or add new channels (e.g., SMS, Teams).
type Service interface {
	// Name returns a short stable identifier for the channel ("discord", "email", ...).
	Name() string

	// Send delivers a single message. Exactly one outbound call per invocation,
	// no retries. A missing endpoint or credentials yields a *ConfigError,
	// a failed transport call a *DeliveryError.
	Send(ctx context.Context, message string) error
}

package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Result is the outcome of one service's delivery attempt during a fan-out.
type Result struct {
	Service string
	Err     error
}

// Ok reports whether the delivery attempt succeeded.
func (r Result) Ok() bool { return r.Err == nil }

// Notifier broadcasts a message to an ordered collection of services.
// Services are attempted in insertion order and one service's failure never
// prevents delivery attempts to the services after it.
type Notifier struct {
	mu       sync.Mutex
	services []Service
	logger   zerolog.Logger
}

// NewNotifier creates an empty Notifier.
func NewNotifier(logger *zerolog.Logger) *Notifier {
	return &Notifier{
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

// AddService appends a service to the collection. Duplicates are allowed.
func (n *Notifier) AddService(s Service) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.services = append(n.services, s)
	n.logger.Info().Str("service", s.Name()).Msg("notification service added")
}

// RemoveService removes the first occurrence of s. Removing a service that
// was never added is a no-op.
func (n *Notifier) RemoveService(s Service) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, registered := range n.services {
		if registered == s {
			n.services = append(n.services[:i], n.services[i+1:]...)
			n.logger.Info().Str("service", s.Name()).Msg("notification service removed")
			return
		}
	}
	n.logger.Debug().Str("service", s.Name()).Msg("service not registered, nothing to remove")
}

// ClearServices empties the collection.
func (n *Notifier) ClearServices() {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := len(n.services)
	n.services = nil
	n.logger.Info().Int("count", count).Msg("notification services cleared")
}

// Services returns the registered service names in insertion order.
func (n *Notifier) Services() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.services))
	for _, s := range n.services {
		names = append(names, s.Name())
	}
	return names
}

// Notify sends the message to every registered service, sequentially and in
// insertion order. Per-service errors are logged and captured in the returned
// results; they never abort the fan-out and never reach the caller as an
// error. With no services registered this is a no-op.
func (n *Notifier) Notify(ctx context.Context, message string) []Result {
	n.mu.Lock()
	snapshot := make([]Service, len(n.services))
	copy(snapshot, n.services)
	n.mu.Unlock()

	if len(snapshot) == 0 {
		n.logger.Warn().Msg("no notification services registered")
		return nil
	}

	results := make([]Result, 0, len(snapshot))
	for _, s := range snapshot {
		err := s.Send(ctx, message)
		if err != nil {
			n.logger.Error().Err(err).Str("service", s.Name()).Msg("failed to send notification")
		} else {
			n.logger.Info().Str("service", s.Name()).Msg("notification sent")
		}
		results = append(results, Result{Service: s.Name(), Err: err})
	}
	return results
}

package notify

import "fmt"

// ConfigError reports a service whose endpoint or credentials could not be
// resolved from either explicit configuration or the environment.
// Constructors never return it; it surfaces on the first Send.
type ConfigError struct {
	Service string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: configuration error: %s", e.Service, e.Reason)
}

// DeliveryError reports a failed transport call: non-2xx status, SMTP
// rejection, DNS failure or timeout. It wraps the underlying error.
type DeliveryError struct {
	Service string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: delivery failed: %v", e.Service, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

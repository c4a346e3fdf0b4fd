// Package notify defines the payload and sink contract for authorization failure notifications.
package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// AuthFailurePayload captures the canonical data we emit when an authorization session fails.
type AuthFailurePayload struct {
	SessionID  string
	Code       string
	Error      string
	ErrorClass string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming authorization failure notifications.
type Sink interface {
	SendAuthFailure(ctx context.Context, payload AuthFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload AuthFailurePayload) error

// SendAuthFailure implements the Sink interface.
func (f SinkFunc) SendAuthFailure(ctx context.Context, payload AuthFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// Package pagerduty triggers PagerDuty incidents for failed authorization sessions.
package pagerduty

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/spotify-auth/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	Endpoint   string // defaults to APIEndpoint
}

// Client publishes events via PagerDuty's Events API v2.
type Client struct {
	routingKey string
	source     string
	component  string
	poster     *notify.Poster
}

type event struct {
	RoutingKey  string       `json:"routing_key"`
	EventAction string       `json:"event_action"`
	DedupKey    string       `json:"dedup_key"`
	Payload     eventPayload `json:"payload"`
}

type eventPayload struct {
	Summary       string            `json:"summary"`
	Severity      string            `json:"severity"`
	Source        string            `json:"source"`
	Component     string            `json:"component"`
	Timestamp     string            `json:"timestamp"`
	CustomDetails map[string]string `json:"custom_details"`
}

// NewClient constructs a PagerDuty events client. A routing key is required.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}

	return &Client{
		routingKey: key,
		source:     orDefault(cfg.Source, "spotify-auth"),
		component:  orDefault(cfg.Component, "authenticator"),
		poster: notify.NewPoster("pagerduty", orDefault(cfg.Endpoint, APIEndpoint),
			cfg.Client, cfg.Timeout, cfg.RetryLimit),
	}, nil
}

// SendAuthFailure submits a trigger event.
func (c *Client) SendAuthFailure(ctx context.Context, payload notify.AuthFailurePayload) error {
	return c.poster.PostJSON(ctx, c.buildEvent(payload))
}

// buildEvent deduplicates on the failure code so repeated timeouts update one incident.
func (c *Client) buildEvent(payload notify.AuthFailurePayload) event {
	occurredAt := payload.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	details := make(map[string]string, len(payload.Metadata)+4)
	for k, v := range payload.Metadata {
		details[k] = v
	}
	details["session_id"] = payload.SessionID
	details["code"] = payload.Code
	details["error"] = payload.Error
	details["error_class"] = payload.ErrorClass

	code := orDefault(payload.Code, "unknown")
	return event{
		RoutingKey:  c.routingKey,
		EventAction: "trigger",
		DedupKey:    c.source + ":auth:" + code,
		Payload: eventPayload{
			Summary:       fmt.Sprintf("Spotify authorization failed (%s)", code),
			Severity:      orDefault(strings.ToLower(payload.Severity), notify.SeverityCritical),
			Source:        c.source,
			Component:     c.component,
			Timestamp:     occurredAt.UTC().Format(time.RFC3339),
			CustomDetails: details,
		},
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// Package slack posts authorization failure notifications to a Slack incoming webhook.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/target/spotify-auth/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// StatusURL is linked from every message when it is an absolute URL.
	StatusURL string
}

// Client delivers authorization failure notifications to a Slack webhook.
type Client struct {
	channel   string
	username  string
	statusURL string
	poster    *notify.Poster
}

type message struct {
	Text     string `json:"text"`
	Username string `json:"username"`
	Channel  string `json:"channel,omitempty"`
}

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = "spotify-auth"
	}

	return &Client{
		channel:   strings.TrimSpace(cfg.Channel),
		username:  username,
		statusURL: validStatusURL(cfg.StatusURL),
		poster:    notify.NewPoster("slack webhook", webhookURL, cfg.Client, cfg.Timeout, cfg.RetryLimit),
	}, nil
}

// SendAuthFailure posts a formatted message to Slack.
func (c *Client) SendAuthFailure(ctx context.Context, payload notify.AuthFailurePayload) error {
	return c.poster.PostJSON(ctx, c.formatMessage(payload))
}

func (c *Client) formatMessage(payload notify.AuthFailurePayload) message {
	timestamp := payload.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	severity := payload.Severity
	if severity == "" {
		severity = notify.SeverityCritical
	}

	var text strings.Builder
	text.WriteString("*Spotify authorization failed*")
	if payload.Code != "" {
		fmt.Fprintf(&text, " (%s)", payload.Code)
	}
	text.WriteByte('\n')
	writeField(&text, "Severity", severity)
	writeField(&text, "Session", payload.SessionID)
	writeField(&text, "Error class", payload.ErrorClass)
	writeField(&text, "Error", escape(payload.Error))
	writeField(&text, "Status", c.statusLink())
	writeMetadata(&text, payload.Metadata)
	text.WriteString("• Timestamp: ")
	text.WriteString(timestamp.UTC().Format(time.RFC3339))

	return message{Text: text.String(), Username: c.username, Channel: c.channel}
}

func validStatusURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.String()
}

func (c *Client) statusLink() string {
	if c.statusURL == "" {
		return ""
	}
	return fmt.Sprintf("<%s|auth status>", c.statusURL)
}

// escape applies Slack's mrkdwn control character escaping.
var escape = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace

func writeField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(text, "• %s: %s\n", label, value)
}

func writeMetadata(text *strings.Builder, metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	text.WriteString("• Metadata:\n")
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(text, "    • %s: %s\n", k, escape(metadata[k]))
	}
}

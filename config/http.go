package config

import "strings"

// HTTPConfig contains management API configuration.
type HTTPConfig struct {
	// Enabled serves the management API.
	Enabled bool `env:"HTTP_ENABLED" envDefault:"true"`

	// Addr is the address to bind the HTTP server to. Keep it on loopback:
	// the API can start authorization sessions.
	Addr string `env:"HTTP_ADDR" envDefault:"127.0.0.1:58643"`

	// RefreshPerMinute limits manual token refreshes.
	RefreshPerMinute int `env:"HTTP_REFRESH_RATE" envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr = strings.TrimSpace(h.Addr); h.Addr == "" {
		h.Addr = "127.0.0.1:58643"
	}
	if h.RefreshPerMinute < 1 {
		h.RefreshPerMinute = 1
	}
	if h.RefreshPerMinute > 60 {
		h.RefreshPerMinute = 60
	}
}

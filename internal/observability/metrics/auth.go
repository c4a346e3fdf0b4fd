// Package metrics maps authorization and API events onto StatsD metrics.
package metrics

import (
	"time"

	"github.com/target/spotify-auth/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// AuthMetrics records the authenticator's sessions on a statsd sink.
type AuthMetrics struct {
	sink statsd.Sink
}

// NewAuthMetrics returns AuthMetrics emitting to sink; a nil sink drops everything.
func NewAuthMetrics(sink statsd.Sink) *AuthMetrics {
	return &AuthMetrics{sink: sink}
}

func (m *AuthMetrics) CacheHit() {
	if m.sink == nil {
		return
	}
	m.sink.Count("auth.cache_hit", 1, nil)
}

func (m *AuthMetrics) SessionStarted() {
	if m.sink == nil {
		return
	}
	m.sink.Count("auth.session.started", 1, nil)
}

// SessionFinished tags the session with its outcome: "success" or an error code.
func (m *AuthMetrics) SessionFinished(outcome string, d time.Duration) {
	if m.sink == nil {
		return
	}
	result := ResultSuccess
	if outcome != ResultSuccess {
		result = ResultError
	}
	tags := map[string]string{"result": result, "outcome": outcome}
	m.sink.Count("auth.session.finished", 1, tags)
	if d > 0 {
		m.sink.Timing("auth.session.duration", d, CloneTags(tags))
	}
}

func (m *AuthMetrics) LockTimeout() {
	if m.sink == nil {
		return
	}
	m.sink.Count("auth.lock_timeout", 1, nil)
}

// TokenIssued records how long a fresh token stays valid.
func (m *AuthMetrics) TokenIssued(ttl time.Duration) {
	if m.sink == nil {
		return
	}
	m.sink.Gauge("auth.token.ttl_seconds", ttl.Seconds(), nil)
}

// APICall records one Spotify Web API request.
func (m *AuthMetrics) APICall(endpoint string, status int, d time.Duration) {
	if m.sink == nil {
		return
	}
	result := ResultSuccess
	if status < 200 || status > 299 {
		result = ResultError
	}
	tags := map[string]string{"endpoint": endpoint, "result": result}
	m.sink.Count("spotify.api.request", 1, tags)
	m.sink.Timing("spotify.api.duration", d, CloneTags(tags))
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

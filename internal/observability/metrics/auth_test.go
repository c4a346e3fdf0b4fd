package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordedMetric struct {
	kind  string
	name  string
	value float64
	tags  map[string]string
}

type recordingSink struct {
	mu      sync.Mutex
	metrics []recordedMetric
}

func (s *recordingSink) Count(name string, value int64, tags map[string]string) {
	s.record("count", name, float64(value), tags)
}

func (s *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	s.record("gauge", name, value, tags)
}

func (s *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	s.record("timing", name, float64(value.Milliseconds()), tags)
}

func (s *recordingSink) record(kind, name string, value float64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, recordedMetric{kind: kind, name: name, value: value, tags: tags})
}

func TestAuthMetrics_Session(t *testing.T) {
	sink := &recordingSink{}
	m := NewAuthMetrics(sink)

	m.SessionStarted()
	m.SessionFinished("success", 2*time.Second)
	m.SessionFinished("callback_timeout", 0)
	m.CacheHit()
	m.LockTimeout()
	m.TokenIssued(time.Hour)

	assert.Equal(t, []recordedMetric{
		{kind: "count", name: "auth.session.started", value: 1},
		{kind: "count", name: "auth.session.finished", value: 1, tags: map[string]string{"result": "success", "outcome": "success"}},
		{kind: "timing", name: "auth.session.duration", value: 2000, tags: map[string]string{"result": "success", "outcome": "success"}},
		{kind: "count", name: "auth.session.finished", value: 1, tags: map[string]string{"result": "error", "outcome": "callback_timeout"}},
		{kind: "count", name: "auth.cache_hit", value: 1},
		{kind: "count", name: "auth.lock_timeout", value: 1},
		{kind: "gauge", name: "auth.token.ttl_seconds", value: 3600},
	}, sink.metrics)
}

func TestAuthMetrics_APICall(t *testing.T) {
	sink := &recordingSink{}
	m := NewAuthMetrics(sink)

	m.APICall("GET /me/player/devices", 200, 50*time.Millisecond)
	m.APICall("PUT /me/player/play", 0, time.Millisecond)

	assert.Len(t, sink.metrics, 4)
	assert.Equal(t, "success", sink.metrics[0].tags["result"])
	assert.Equal(t, "error", sink.metrics[2].tags["result"])
	assert.Equal(t, "spotify.api.duration", sink.metrics[1].name)
}

func TestAuthMetrics_NilSink(t *testing.T) {
	m := NewAuthMetrics(nil)
	assert.NotPanics(t, func() {
		m.CacheHit()
		m.SessionStarted()
		m.SessionFinished("success", time.Second)
		m.LockTimeout()
		m.TokenIssued(time.Minute)
		m.APICall("GET /", 200, time.Millisecond)
	})
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "b"}
	cp := CloneTags(src)
	cp["a"] = "c"
	assert.Equal(t, "b", src["a"])
}

package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func countingServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1))
		status := statuses[len(statuses)-1]
		if n <= len(statuses) {
			status = statuses[n-1]
		}
		if status >= 300 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestPosterRetriesTemporaryFailures(t *testing.T) {
	srv, calls := countingServer(t, http.StatusBadGateway, http.StatusTooManyRequests, http.StatusOK)

	p := NewPoster("test", srv.URL, srv.Client(), 0, 2)
	p.Backoff = time.Millisecond
	if err := p.PostJSON(context.Background(), map[string]string{"text": "hi"}); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestPosterGivesUpAfterRetryLimit(t *testing.T) {
	srv, calls := countingServer(t, http.StatusServiceUnavailable)

	p := NewPoster("test", srv.URL, srv.Client(), 0, 1)
	p.Backoff = time.Millisecond
	err := p.PostJSON(context.Background(), struct{}{})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestPosterDoesNotRetryClientErrors(t *testing.T) {
	srv, calls := countingServer(t, http.StatusForbidden)

	p := NewPoster("test", srv.URL, srv.Client(), 0, 3)
	if err := p.PostJSON(context.Background(), struct{}{}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestPosterStopsOnCancel(t *testing.T) {
	srv, _ := countingServer(t, http.StatusInternalServerError)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoster("test", srv.URL, srv.Client(), 0, 5)
	p.Backoff = time.Hour
	time.AfterFunc(20*time.Millisecond, cancel)

	err := p.PostJSON(ctx, struct{}{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPosterEncodeError(t *testing.T) {
	p := NewPoster("test", "http://127.0.0.1:1", nil, time.Second, 0)
	if err := p.PostJSON(context.Background(), make(chan int)); err == nil {
		t.Fatal("expected encode error")
	}
}

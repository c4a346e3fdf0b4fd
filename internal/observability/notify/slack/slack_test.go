package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/target/spotify-auth/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when webhook url missing")
	}
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#alerts",
		Username:   "bot",
		Timeout:    time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.AuthFailurePayload{
		SessionID:  "sess-1",
		Code:       "state_mismatch",
		Error:      "callback state does not match",
		ErrorClass: "errors_apperror",
		Metadata:   map[string]string{"redirect_url": "http://127.0.0.1:58642/"},
	})

	if msg.Username != "bot" {
		t.Fatalf("expected username to be preserved, got %v", msg.Username)
	}
	if msg.Channel != "#alerts" {
		t.Fatalf("expected channel to be set, got %v", msg.Channel)
	}

	text := msg.Text
	if !containsAll(text, []string{
		"Spotify authorization failed", "state_mismatch", "sess-1", "callback state does not match",
		"errors_apperror", "redirect_url: http://127.0.0.1:58642/", "Severity: critical",
	}) {
		t.Fatalf("message text missing fields: %s", text)
	}
	if strings.Contains(text, "Status:") {
		t.Fatalf("expected no status link without a status url: %s", text)
	}
}

func TestFormatMessageStatusLink(t *testing.T) {
	tcs := []struct {
		name   string
		status string
		want   string
	}{
		{name: "absolute url", status: "http://127.0.0.1:58643/auth/status", want: "<http://127.0.0.1:58643/auth/status|auth status>"},
		{name: "relative url", status: "/auth/status", want: ""},
		{name: "empty", status: "", want: ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(Config{
				WebhookURL: "https://hooks.slack.com/services/test",
				StatusURL:  tc.status,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := client.statusLink(); got != tc.want {
				t.Fatalf("statusLink() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatMessageEscapesError(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := client.formatMessage(notify.AuthFailurePayload{
		Error: "provider said <access_denied> & left",
	})

	if msg.Username != "spotify-auth" {
		t.Fatalf("expected default username, got %v", msg.Username)
	}
	if !strings.Contains(msg.Text, "provider said &lt;access_denied&gt; &amp; left") {
		t.Fatalf("expected escaped error, got: %s", msg.Text)
	}
}

func TestSendAuthFailureRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if calls.Add(1) == 1 {
			http.Error(w, "rate_limited", http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, RetryLimit: 1, Client: srv.Client()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := client.SendAuthFailure(context.Background(), notify.AuthFailurePayload{Code: "callback_timeout"}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestSendAuthFailureReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = client.SendAuthFailure(context.Background(), notify.AuthFailurePayload{})
	if err == nil || !strings.Contains(err.Error(), "invalid_payload") {
		t.Fatalf("expected webhook error body in error, got %v", err)
	}
}

func containsAll(text string, substrs []string) bool {
	for _, s := range substrs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return true
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 5 * time.Second
	defaultBackoff = 200 * time.Millisecond
	maxErrorBody   = 4 << 10
)

// StatusError is a non-2xx reply from a notification endpoint.
type StatusError struct {
	Service    string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Service, e.Status, e.Body)
}

// Temporary reports whether resending the same body may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Poster sends JSON bodies to a single endpoint. Transport errors, 429 and 5xx replies are
// retried up to RetryLimit times with a linear backoff; other replies fail immediately.
type Poster struct {
	Service    string
	URL        string
	Client     *http.Client
	RetryLimit int
	Backoff    time.Duration
}

// NewPoster builds a Poster for url. A nil client gets one with timeout (default 5s).
func NewPoster(service, url string, client *http.Client, timeout time.Duration, retryLimit int) *Poster {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Poster{
		Service:    service,
		URL:        url,
		Client:     client,
		RetryLimit: max(retryLimit, 0),
		Backoff:    defaultBackoff,
	}
}

// PostJSON encodes v and delivers it.
func (p *Poster) PostJSON(ctx context.Context, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", p.Service, err)
	}

	attempts := p.RetryLimit + 1
	for attempt := 1; ; attempt++ {
		err = p.post(ctx, body)
		if err == nil || attempt >= attempts || !retryable(err) {
			return err
		}

		timer := time.NewTimer(time.Duration(attempt) * p.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func (p *Poster) post(ctx context.Context, body []byte) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", p.Service, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", p.Service, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close response body: %w", cerr))
		}
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			return fmt.Errorf("drain %s response body: %w", p.Service, err)
		}
		return nil
	}

	msg, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return fmt.Errorf("read %s error response: %w", p.Service, readErr)
	}
	return &StatusError{
		Service:    p.Service,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(msg)),
	}
}

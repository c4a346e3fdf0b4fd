package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/target/spotify-auth/internal/domain/playback"
	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

// DefaultAPIBaseURL is the Spotify Web API root.
const DefaultAPIBaseURL = "https://api.spotify.com/v1"

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client // Optional base client; its transport carries the bearer token
	Logger     *slog.Logger
	Metrics    APIMetrics // Optional
}

// APIMetrics observes Web API requests. status is 0 when no response arrived.
type APIMetrics interface {
	APICall(endpoint string, status int, d time.Duration)
}

// Client calls the Spotify Web API with bearer tokens from a token source.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics APIMetrics
}

var _ ports.SpotifyAPI = (*Client)(nil)

// NewClient creates a Client whose requests are authorized by ts.
func NewClient(ts oauth2.TokenSource, cfg ClientConfig) *Client {
	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := oauth2.NewClient(context.WithValue(context.Background(), oauth2.HTTPClient, base), ts)
	httpClient.Timeout = base.Timeout

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger.With("component", "spotify_api"),
		metrics: cfg.Metrics,
	}
}

type devicesResponse struct {
	Devices []playback.Device `json:"devices"`
}

// Devices lists the Spotify Connect devices of the account.
func (c *Client) Devices(ctx context.Context) ([]playback.Device, error) {
	var out devicesResponse
	if err := c.do(ctx, http.MethodGet, "/me/player/devices", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

type playRequest struct {
	URIs []string `json:"uris,omitempty"`
}

// Play starts trackID on deviceID.
func (c *Client) Play(ctx context.Context, deviceID, trackID string) error {
	if trackID == "" {
		return apperrors.ValidationField("trackID", "track ID is required")
	}
	body := playRequest{URIs: []string{"spotify:track:" + trackID}}
	return c.do(ctx, http.MethodPut, "/me/player/play", deviceQuery(deviceID), body, nil)
}

// Pause pauses playback on deviceID.
func (c *Client) Pause(ctx context.Context, deviceID string) error {
	return c.do(ctx, http.MethodPut, "/me/player/pause", deviceQuery(deviceID), nil, nil)
}

// Resume continues the current track on deviceID.
func (c *Client) Resume(ctx context.Context, deviceID string) error {
	return c.do(ctx, http.MethodPut, "/me/player/play", deviceQuery(deviceID), nil, nil)
}

type playerResponse struct {
	IsPlaying  bool  `json:"is_playing"`
	ProgressMS int64 `json:"progress_ms"`
	Item       *struct {
		ID         string `json:"id"`
		DurationMS int64  `json:"duration_ms"`
	} `json:"item"`
}

// PlaybackState reports what is playing. Nothing active yields a zero State.
func (c *Client) PlaybackState(ctx context.Context) (playback.State, error) {
	var out playerResponse
	if err := c.do(ctx, http.MethodGet, "/me/player", nil, nil, &out); err != nil {
		return playback.State{}, err
	}
	st := playback.State{
		Playing:  out.IsPlaying,
		Progress: time.Duration(out.ProgressMS) * time.Millisecond,
	}
	if out.Item != nil {
		st.TrackID = out.Item.ID
		st.Duration = time.Duration(out.Item.DurationMS) * time.Millisecond
	}
	return st, nil
}

func deviceQuery(deviceID string) url.Values {
	if deviceID == "" {
		return nil
	}
	return url.Values{"device_id": {deviceID}}
}

type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends one request. A 204 or empty body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, start)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.observe(method, path, resp.StatusCode, start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "spotify api request failed", "method", method, "path", path, "status", resp.StatusCode)
		return statusError(resp.StatusCode, raw)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.APICall(method+" "+path, status, time.Since(start))
	}
}

func statusError(status int, raw []byte) error {
	msg := http.StatusText(status)
	var parsed apiError
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}

	code := apperrors.ErrCodeInternal
	switch status {
	case http.StatusNotFound:
		code = apperrors.ErrCodeNotFound
	case http.StatusBadRequest:
		code = apperrors.ErrCodeValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		code = apperrors.ErrCodeAuthorizationDenied
	}
	return apperrors.Newf(code, "spotify api: %s (status %d)", msg, status)
}

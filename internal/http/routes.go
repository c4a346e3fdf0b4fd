// Package httpx serves the local management API: token status and refresh, device
// selection and the plugin config entries.
package httpx

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/target/spotify-auth/internal/configstore"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     AuthService
	Playback PlaybackService // Optional
	Registry *configstore.Registry
	Store    HealthChecker // Optional
	// ActionLimiter throttles refreshes and config actions; nil means unlimited.
	ActionLimiter *rate.Limiter
	Logger        *slog.Logger // Optional
}

// NewRouter creates the management API router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()
	limiter := RateLimit(services.ActionLimiter)
	// Rejected requests must not spend rate limit tokens.
	action := func(h http.HandlerFunc) http.Handler { return RequireAPIRequest(limiter(h)) }
	mutate := func(h http.HandlerFunc) http.Handler { return RequireAPIRequest(h) }

	health := &HealthHandlers{Store: services.Store}
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("HEAD /healthz", health.Health)

	if services.Auth != nil {
		auth := &AuthHandlers{Svc: services.Auth}
		mux.HandleFunc("GET /auth/status", auth.Status)
		mux.Handle("POST /auth/refresh", action(auth.Refresh))
	}

	if services.Playback != nil {
		pb := &PlaybackHandlers{Svc: services.Playback}
		mux.HandleFunc("GET /devices", pb.Devices)
		mux.Handle("PUT /playback/device", mutate(pb.SelectDevice))
	}

	if services.Registry != nil {
		cfg := &ConfigHandlers{Registry: services.Registry}
		mux.HandleFunc("GET /config", cfg.List)
		mux.Handle("PUT /config/{scope}/{id}", mutate(cfg.Set))
		mux.HandleFunc("GET /config/{scope}/{id}/choices", cfg.Choices)
		mux.Handle("POST /config/{scope}/{id}/action", action(cfg.Action))
	}

	return mux
}

// NewHandler wraps the router with the standard middleware chain.
// Order: Recover -> Logging -> Router.
func NewHandler(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := NewRouter(services)
	h = Logging(logger)(h)
	h = Recover(logger)(h)
	return h
}

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/target/spotify-auth/config"
	httpx "github.com/target/spotify-auth/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Health   httpx.HealthChecker // Optional
	Logger   *slog.Logger
}

// BuildHTTPHandler builds the management API handler with middleware.
func BuildHTTPHandler(cfg *HTTPServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	perMinute := cfg.Config.HTTP.RefreshPerMinute
	if perMinute < 1 {
		perMinute = 1
	}

	return httpx.NewHandler(httpx.RouterServices{
		Auth:          cfg.Services.Auth,
		Playback:      cfg.Services.Playback,
		Registry:      cfg.Services.Host.Registry(),
		Store:         cfg.Health,
		ActionLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		Logger:        logger,
	})
}

// StartHTTPServer binds the management API and serves it in the background.
// Serve errors other than http.ErrServerClosed are delivered on the returned channel.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := cfg.Config.HTTP.Addr
	// Guard against empty addr to avoid listening on all interfaces
	if addr == "" {
		addr = "127.0.0.1:58643"
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	// A refresh blocks for the lock wait plus the whole login.
	writeTimeout := cfg.Config.Auth.LockTimeout + cfg.Config.Auth.CallbackTimeout + 10*time.Second
	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           BuildHTTPHandler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("starting HTTP server", "addr", server.Addr)
		if serveErr := server.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", serveErr)
		}
	}()

	return server, errCh, nil
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}

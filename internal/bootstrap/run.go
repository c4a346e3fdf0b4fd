package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/target/spotify-auth/config"
	httpx "github.com/target/spotify-auth/internal/http"
	"github.com/target/spotify-auth/internal/plugin"
)

// ServiceOrchestrationConfig contains what RunServicesWithShutdown runs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Storage  *Storage
	Logger   *slog.Logger
	// Ready is called with the bound management API address once it serves.
	Ready func(addr string)
}

// RunServicesWithShutdown initializes the plugins, serves the management API
// and blocks until ctx is canceled, a shutdown signal arrives or the server fails.
// A plugin that fails to initialize is logged; the API keeps running so the
// operator can fix the configuration and refresh.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := cfg.Services.Host.Initialize(gctx)
		switch {
		case err == nil:
		case gctx.Err() != nil:
			// Shutdown interrupted initialization.
		case plugin.IsInitializationError(err):
			logger.WarnContext(gctx, "continuing without initialized plugins", "error", err)
		default:
			logger.ErrorContext(gctx, "plugin initialization failed", "error", err)
		}
		return nil
	})

	if cfg.Config.HTTP.Enabled {
		var health httpx.HealthChecker
		if cfg.Storage != nil {
			health = cfg.Storage.Health
		}
		server, errCh, err := StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Health:   health,
			Logger:   logger,
		})
		if err != nil {
			stop()
			return errors.Join(err, g.Wait())
		}
		if cfg.Ready != nil {
			cfg.Ready(server.Addr)
		}

		g.Go(func() error {
			select {
			case err, ok := <-errCh:
				if ok {
					return err
				}
				return nil
			case <-gctx.Done():
			}
			logger.Info("shutting down services...")
			return ShutdownHTTPServer(context.WithoutCancel(gctx), server, logger)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

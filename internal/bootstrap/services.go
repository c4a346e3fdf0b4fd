package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/spotify-auth/config"
	"github.com/target/spotify-auth/internal/adapters/spotify"
	"github.com/target/spotify-auth/internal/configstore"
	"github.com/target/spotify-auth/internal/observability/metrics"
	"github.com/target/spotify-auth/internal/observability/notify/pagerduty"
	"github.com/target/spotify-auth/internal/observability/notify/slack"
	"github.com/target/spotify-auth/internal/observability/statsd"
	"github.com/target/spotify-auth/internal/plugin"
	"github.com/target/spotify-auth/internal/ports"
	"github.com/target/spotify-auth/internal/service"
	"github.com/target/spotify-auth/internal/service/failurenotifier"
)

// ServiceContainer holds the wired plugins and the services behind them.
type ServiceContainer struct {
	Entries  *service.AuthEntries
	Auth     *service.Authenticator
	Playback *service.PlaybackService
	Provider *plugin.Provider
	Host     *plugin.Host

	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	AuthMetrics     *metrics.AuthMetrics
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Store  ports.KeyValueStore
	Logger *slog.Logger

	// Optional overrides, mainly for tests.
	Browser     ports.BrowserOpener
	NewReceiver ports.ReceiverFactory
	API         ports.SpotifyAPI
	HTTPClient  *http.Client
	Now         func() time.Time
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  obsLogger,
	})
	if err != nil {
		obsLogger.Error("failed to initialise statsd client", "error", err)
		// A disabled client never fails to build.
		client, _ = statsd.NewClient(statsd.Config{Logger: obsLogger})
	}

	return ObservabilityContainer{
		MetricsSink:     client,
		AuthMetrics:     metrics.NewAuthMetrics(client),
		MetricsConfig:   cfg.Metrics,
		FailureNotifier: buildFailureNotifier(obsLogger, cfg.Notifications),
	}
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger.With("component", "failure_notifier"),
		})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
			StatusURL:  cfg.Slack.StatusURL,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "pagerduty",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: baseLogger.With("component", "failure_notifier"),
		Sinks:  sinks,
	})
}

// NewServices wires the authenticator, the playback service and the plugins on deps.Store.
// The returned host has registered all plugin entries but is not initialized yet.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.Store == nil {
		return nil, errors.New("service deps require config and store")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	obs := buildObservability(logger, cfg.Observability)

	auth, err := BuildAuthenticator(ctx, AuthDeps{
		Spotify:     cfg.Spotify,
		Auth:        cfg.Auth,
		Store:       deps.Store,
		Metrics:     obs.AuthMetrics,
		Notifier:    obs.FailureNotifier,
		Logger:      logger,
		Browser:     deps.Browser,
		NewReceiver: deps.NewReceiver,
		HTTPClient:  deps.HTTPClient,
		Now:         deps.Now,
	})
	if err != nil {
		return nil, err
	}

	api := deps.API
	if api == nil {
		api = spotify.NewClient(auth.Authenticator.TokenSource(ctx), spotify.ClientConfig{
			BaseURL:    cfg.Spotify.APIBaseURL,
			HTTPClient: deps.HTTPClient,
			Logger:     logger,
			Metrics:    obs.AuthMetrics,
		})
	}

	selector, err := service.NewDeviceSelector(cfg.Spotify.DeviceSelector)
	if err != nil {
		return nil, fmt.Errorf("device selector: %w", err)
	}
	playbackSvc := service.NewPlaybackService(service.PlaybackServiceOptions{
		Store:    deps.Store,
		API:      api,
		Selector: selector,
		Logger:   logger,
	})

	provider, err := plugin.NewProvider(deps.Store, cfg.Spotify.Market)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	host := plugin.NewHost(configstore.NewRegistry(), logger,
		plugin.NewAuthPlugin(auth.Entries, auth.Authenticator),
		plugin.NewPlaybackFactory(playbackSvc, auth.Authenticator),
		provider,
	)

	return &ServiceContainer{
		Entries:       auth.Entries,
		Auth:          auth.Authenticator,
		Playback:      playbackSvc,
		Provider:      provider,
		Host:          host,
		Observability: obs,
	}, nil
}

// Close closes the plugins and the metrics sink.
func (s *ServiceContainer) Close() error {
	var errs []error
	if s.Host != nil {
		errs = append(errs, s.Host.Close())
	}
	if s.Observability.MetricsSink != nil {
		errs = append(errs, s.Observability.MetricsSink.Close())
	}
	return errors.Join(errs...)
}

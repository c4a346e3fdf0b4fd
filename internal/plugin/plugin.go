// Package plugin exposes the Spotify features to a plugin host: the authenticator,
// the playback factory and the provider settings. Each plugin declares its config
// entries and initializes against an InitStateWriter.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/spotify-auth/internal/configstore"
	"github.com/target/spotify-auth/internal/ports"
)

// Plugin is what the host manages.
type Plugin interface {
	Name() string
	Description() string
	ConfigEntries() []configstore.Entry
	SecretEntries() []configstore.Entry
	Initialize(ctx context.Context, w ports.InitStateWriter) error
	Close() error
}

// InitializationError reports why a plugin could not start.
type InitializationError struct {
	Plugin string
	Reason string
	Cause  error
}

func (e *InitializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("initialize %s: %s: %v", e.Plugin, e.Reason, e.Cause)
	}
	return fmt.Sprintf("initialize %s: %s", e.Plugin, e.Reason)
}

func (e *InitializationError) Unwrap() error { return e.Cause }

// IsInitializationError reports whether err carries an InitializationError.
func IsInitializationError(err error) bool {
	var initErr *InitializationError
	return errors.As(err, &initErr)
}

// Host registers plugin entries and drives their lifecycle.
type Host struct {
	plugins  []Plugin
	registry *configstore.Registry
	logger   *slog.Logger
}

// NewHost registers the entries of plugins in registry.
func NewHost(registry *configstore.Registry, logger *slog.Logger, plugins ...Plugin) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range plugins {
		registry.Add(p.ConfigEntries()...)
		registry.Add(p.SecretEntries()...)
	}
	return &Host{plugins: plugins, registry: registry, logger: logger.With("component", "plugin_host")}
}

// Plugins returns the managed plugins in initialization order.
func (h *Host) Plugins() []Plugin { return h.plugins }

// Registry returns the registry holding all plugin entries.
func (h *Host) Registry() *configstore.Registry { return h.registry }

// Initialize initializes the plugins in order and stops at the first failure.
func (h *Host) Initialize(ctx context.Context) error {
	for _, p := range h.plugins {
		w := &logStateWriter{logger: h.logger.With("plugin", p.Name())}
		if err := p.Initialize(ctx, w); err != nil {
			h.logger.ErrorContext(ctx, "plugin initialization failed", "plugin", p.Name(), "error", err)
			return err
		}
		h.logger.InfoContext(ctx, "plugin initialized", "plugin", p.Name())
	}
	return nil
}

// Close closes all plugins in reverse order.
func (h *Host) Close() error {
	var errs []error
	for i := len(h.plugins) - 1; i >= 0; i-- {
		if err := h.plugins[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", h.plugins[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}

type logStateWriter struct {
	logger *slog.Logger
}

func (w *logStateWriter) State(msg string)   { w.logger.Info(msg) }
func (w *logStateWriter) Warning(msg string) { w.logger.Warn(msg) }

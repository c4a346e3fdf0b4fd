package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/spotify-auth/config"
	"github.com/target/spotify-auth/internal/adapters/browser"
	"github.com/target/spotify-auth/internal/adapters/callback"
	"github.com/target/spotify-auth/internal/adapters/spotify"
	"github.com/target/spotify-auth/internal/ports"
	"github.com/target/spotify-auth/internal/service"
	"github.com/target/spotify-auth/internal/service/failurenotifier"
)

// AuthDeps contains the dependencies of the authenticator.
type AuthDeps struct {
	Spotify  config.SpotifyConfig
	Auth     config.AuthConfig
	Store    ports.KeyValueStore
	Metrics  service.AuthMetrics     // Optional
	Notifier service.FailureNotifier // Optional
	Logger   *slog.Logger

	// Optional overrides, mainly for tests.
	Browser     ports.BrowserOpener
	NewReceiver ports.ReceiverFactory
	HTTPClient  *http.Client
	Now         func() time.Time
}

// AuthComponents are the authenticator and the entries it persists to.
type AuthComponents struct {
	Entries       *service.AuthEntries
	Tokens        *service.TokenStore
	Authenticator *service.Authenticator
}

// BuildAuthenticator wires the auth entries, token store and authenticator.
// The authorize endpoint is discovered once when SPOTIFY_DISCOVERY_URL is set.
func BuildAuthenticator(ctx context.Context, deps AuthDeps) (*AuthComponents, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	urls, err := spotify.NewAuthorizeURLBuilder(ctx, spotify.AuthorizeConfig{
		AuthURL:      deps.Spotify.AuthURL,
		DiscoveryURL: deps.Spotify.DiscoveryURL,
		Scopes:       deps.Spotify.Scopes,
		HTTPClient:   deps.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("authorize url builder: %w", err)
	}

	opener := deps.Browser
	if opener == nil {
		opener = newBrowserOpener(deps.Auth.OpenBrowser, logger)
	}
	newReceiver := deps.NewReceiver
	if newReceiver == nil {
		newReceiver = callback.Factory(deps.Spotify.CallbackHost, logger)
	}

	// The refresh button needs the authenticator, which needs the entries.
	var authenticator *service.Authenticator
	entries := service.NewAuthEntries(deps.Store, service.AuthEntryOptions{
		DefaultPort:     deps.Spotify.CallbackPort,
		DefaultClientID: deps.Spotify.ClientID,
		Refresh: func(ctx context.Context) bool {
			return authenticator.RefreshAction(ctx)
		},
	})
	tokens := service.NewTokenStore(entries)

	authenticator = service.NewAuthenticator(service.AuthenticatorOptions{
		Store:           tokens,
		Settings:        entries,
		URLBuilder:      urls,
		Browser:         opener,
		NewReceiver:     newReceiver,
		LockTimeout:     deps.Auth.LockTimeout,
		CallbackTimeout: deps.Auth.CallbackTimeout,
		ExpiryMargin:    expiryMargin(deps.Auth.ExpiryMargin),
		Metrics:         deps.Metrics,
		Notifier:        notifier(deps.Notifier),
		Logger:          logger,
		Now:             deps.Now,
	})

	logger.InfoContext(ctx, "authenticator configured",
		"auth_url", urls.AuthURL(),
		"open_browser", deps.Auth.OpenBrowser,
		"lock_timeout", deps.Auth.LockTimeout,
		"callback_timeout", deps.Auth.CallbackTimeout,
	)

	return &AuthComponents{Entries: entries, Tokens: tokens, Authenticator: authenticator}, nil
}

//nolint:ireturn // either opener satisfies the port.
func newBrowserOpener(open bool, logger *slog.Logger) ports.BrowserOpener {
	if open {
		return browser.NewSystemOpener()
	}
	return browser.NewLogOpener(logger)
}

// notifier drops a notifier without sinks so failed sessions skip the background dispatch.
//
//nolint:ireturn // nil or the given notifier.
func notifier(n service.FailureNotifier) service.FailureNotifier {
	if svc, ok := n.(*failurenotifier.Service); ok && (svc == nil || !svc.Enabled()) {
		return nil
	}
	return n
}

// expiryMargin maps a configured zero margin to "no margin"; the authenticator
// treats zero as "use the default".
func expiryMargin(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

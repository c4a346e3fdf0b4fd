package plugin

import (
	"context"

	"github.com/target/spotify-auth/internal/configstore"
	"github.com/target/spotify-auth/internal/ports"
	"github.com/target/spotify-auth/internal/service"
)

// AuthName is the display name of the auth plugin.
const AuthName = "Spotify Auth"

// AuthPlugin provides Spotify access tokens to the other plugins.
type AuthPlugin struct {
	entries *service.AuthEntries
	auth    *service.Authenticator
}

var _ Plugin = (*AuthPlugin)(nil)

// NewAuthPlugin wraps an Authenticator and its entries.
func NewAuthPlugin(entries *service.AuthEntries, auth *service.Authenticator) *AuthPlugin {
	return &AuthPlugin{entries: entries, auth: auth}
}

func (p *AuthPlugin) Name() string { return AuthName }

func (p *AuthPlugin) Description() string {
	return "Provides Spotify authentication to the other Spotify plugins."
}

func (p *AuthPlugin) ConfigEntries() []configstore.Entry { return p.entries.ConfigEntries() }

func (p *AuthPlugin) SecretEntries() []configstore.Entry { return p.entries.SecretEntries() }

// Initialize obtains a token, opening the browser if none is persisted.
func (p *AuthPlugin) Initialize(ctx context.Context, w ports.InitStateWriter) error {
	w.State("Retrieving token...")
	if _, err := p.auth.Token(ctx); err != nil {
		return &InitializationError{Plugin: AuthName, Reason: "Could not retrieve token", Cause: err}
	}
	w.State("Retrieved token.")
	return nil
}

// Authenticator returns the wrapped Authenticator.
func (p *AuthPlugin) Authenticator() *service.Authenticator { return p.auth }

func (p *AuthPlugin) Close() error { return nil }

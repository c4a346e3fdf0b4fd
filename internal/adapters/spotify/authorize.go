// Package spotify holds the adapters that talk to Spotify: the implicit-grant authorize URL
// and the Web API client used for device lookup and playback control.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/target/spotify-auth/internal/ports"
)

// DefaultAuthURL is the Spotify accounts authorization endpoint.
const DefaultAuthURL = "https://accounts.spotify.com/authorize"

// AuthorizeConfig configures an AuthorizeURLBuilder.
type AuthorizeConfig struct {
	// AuthURL is used as-is unless DiscoveryURL is set.
	AuthURL string
	// DiscoveryURL optionally points at an OpenID discovery document (or its issuer)
	// whose authorization_endpoint replaces AuthURL.
	DiscoveryURL string
	Scopes       []string
	HTTPClient   *http.Client // Optional, used for discovery only
}

// AuthorizeURLBuilder builds implicit-grant authorization URLs.
type AuthorizeURLBuilder struct {
	authURL string
	scopes  []string
}

var _ ports.AuthorizeURLBuilder = (*AuthorizeURLBuilder)(nil)

// NewAuthorizeURLBuilder resolves the authorization endpoint, fetching the discovery
// document once when configured.
func NewAuthorizeURLBuilder(ctx context.Context, cfg AuthorizeConfig) (*AuthorizeURLBuilder, error) {
	authURL := cfg.AuthURL
	if cfg.DiscoveryURL != "" {
		httpClient := cfg.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: 30 * time.Second}
		}
		issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
		issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
		op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, httpClient), issuer)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery: %w", err)
		}
		authURL = op.Endpoint().AuthURL
	}
	if authURL == "" {
		return nil, errors.New("authorization URL is required")
	}
	return &AuthorizeURLBuilder{authURL: authURL, scopes: append([]string(nil), cfg.Scopes...)}, nil
}

// AuthURL returns the resolved authorization endpoint.
func (b *AuthorizeURLBuilder) AuthURL() string { return b.authURL }

// AuthorizeURL returns the URL the browser is sent to for one session.
func (b *AuthorizeURLBuilder) AuthorizeURL(clientID, redirectURL, state string) (string, error) {
	switch {
	case clientID == "":
		return "", errors.New("client ID is required")
	case redirectURL == "":
		return "", errors.New("redirect URL is required")
	case state == "":
		return "", errors.New("state is required")
	}

	cfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURL,
		Scopes:      b.scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: b.authURL},
	}
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("response_type", "token")), nil
}

package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeURL(t *testing.T) {
	b, err := NewAuthorizeURLBuilder(context.Background(), AuthorizeConfig{
		AuthURL: DefaultAuthURL,
		Scopes:  []string{"user-modify-playback-state", "user-read-playback-state"},
	})
	require.NoError(t, err)

	raw, err := b.AuthorizeURL("902fe6b9a4b6421caf88ee01e809939a", "http://localhost:58642/callback", "state-123")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.spotify.com", u.Host)
	assert.Equal(t, "/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "902fe6b9a4b6421caf88ee01e809939a", q.Get("client_id"))
	assert.Equal(t, "http://localhost:58642/callback", q.Get("redirect_uri"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "token", q.Get("response_type"))
	assert.Equal(t, "user-modify-playback-state user-read-playback-state", q.Get("scope"))
}

func TestAuthorizeURL_Validation(t *testing.T) {
	b, err := NewAuthorizeURLBuilder(context.Background(), AuthorizeConfig{AuthURL: DefaultAuthURL})
	require.NoError(t, err)

	tests := []struct {
		name                      string
		clientID, redirect, state string
		errMsg                    string
	}{
		{name: "missing client", redirect: "http://localhost/callback", state: "s", errMsg: "client ID is required"},
		{name: "missing redirect", clientID: "c", state: "s", errMsg: "redirect URL is required"},
		{name: "missing state", clientID: "c", redirect: "http://localhost/callback", errMsg: "state is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.AuthorizeURL(tt.clientID, tt.redirect, tt.state)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err = NewAuthorizeURLBuilder(context.Background(), AuthorizeConfig{})
	require.Error(t, err)
}

func TestNewAuthorizeURLBuilder_Discovery(t *testing.T) {
	issuer := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"issuer":                 issuer,
			"authorization_endpoint": "https://accounts.example.com/authorize",
			"token_endpoint":         "https://accounts.example.com/token",
			"jwks_uri":               "https://accounts.example.com/jwks",
		})
	}))
	defer srv.Close()
	issuer = srv.URL

	b, err := NewAuthorizeURLBuilder(context.Background(), AuthorizeConfig{
		AuthURL:      DefaultAuthURL,
		DiscoveryURL: srv.URL + "/.well-known/openid-configuration",
		HTTPClient:   srv.Client(),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example.com/authorize", b.AuthURL())
}

func TestNewAuthorizeURLBuilder_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewAuthorizeURLBuilder(context.Background(), AuthorizeConfig{DiscoveryURL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oidc discovery")
}

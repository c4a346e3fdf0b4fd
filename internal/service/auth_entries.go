package service

import (
	"context"
	"strings"
	"time"

	"github.com/target/spotify-auth/internal/configstore"
	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

const (
	// AuthNamespace prefixes the stored keys of the auth entries.
	AuthNamespace = "auth"

	// DefaultCallbackPort is the local port registered as redirect URI.
	DefaultCallbackPort = 58642
	// DefaultClientID is the application registered for the implicit grant.
	DefaultClientID = "902fe6b9a4b6421caf88ee01e809939a"
)

// AuthEntryOptions customizes the defaults and the refresh action of the auth entries.
type AuthEntryOptions struct {
	DefaultPort     int
	DefaultClientID string
	// Refresh backs the "Refresh" button of the token expiration entry.
	Refresh func(ctx context.Context) bool
	// DescribeExpiration renders the expiration on the button; defaults to local time of day.
	DescribeExpiration func(time.Time) string
}

// AuthEntries are the persisted settings and secrets of the auth plugin.
type AuthEntries struct {
	Config  *configstore.Config
	Secrets *configstore.Config

	Port            *configstore.SerializedEntry[int]
	ClientID        *configstore.SerializedEntry[string]
	AccessToken     *configstore.SerializedEntry[string]
	TokenExpiration *configstore.SerializedEntry[time.Time]
}

// NewAuthEntries declares the auth entries on store.
func NewAuthEntries(store ports.KeyValueStore, opts AuthEntryOptions) *AuthEntries {
	if opts.DefaultPort == 0 {
		opts.DefaultPort = DefaultCallbackPort
	}
	if opts.DefaultClientID == "" {
		opts.DefaultClientID = DefaultClientID
	}
	if opts.DescribeExpiration == nil {
		opts.DescribeExpiration = func(t time.Time) string { return t.Local().Format(time.TimeOnly) }
	}
	refresh := opts.Refresh
	if refresh == nil {
		refresh = func(context.Context) bool { return false }
	}

	cfg := configstore.New(store, configstore.ScopeConfig, AuthNamespace)
	secrets := configstore.New(store, configstore.ScopeSecrets, AuthNamespace)
	port, clientID := opts.DefaultPort, opts.DefaultClientID

	return &AuthEntries{
		Config:  cfg,
		Secrets: secrets,
		Port: configstore.NewSerializedEntry(cfg, configstore.EntryOptions[int]{
			Key:         "port",
			Description: "OAuth callback port",
			Serializer:  configstore.IntSerializer{},
			Checker:     configstore.IntRange(1024, 65535),
			UI:          configstore.NumberBox{Min: 1024, Max: 65535},
			Default:     &port,
		}),
		ClientID: configstore.NewStringEntry(secrets, configstore.EntryOptions[string]{
			Key:         "clientId",
			Description: "OAuth client ID",
			Checker:     configstore.NonEmpty(),
			UI:          configstore.PasswordBox{},
			Default:     &clientID,
		}),
		AccessToken: configstore.NewStringEntry(secrets, configstore.EntryOptions[string]{
			Key:         "accessToken",
			Description: "OAuth access token",
			UI:          configstore.PasswordBox{},
		}),
		TokenExpiration: configstore.NewSerializedEntry(secrets, configstore.EntryOptions[time.Time]{
			Key:         "tokenExpiration",
			Description: "OAuth token expiration",
			Serializer:  configstore.InstantSerializer{},
			UI: configstore.ActionButton[time.Time]{
				Label:    "Refresh",
				Describe: opts.DescribeExpiration,
				Action:   refresh,
			},
		}),
	}
}

// ConfigEntries lists the entries shown in the plugin's config section.
func (e *AuthEntries) ConfigEntries() []configstore.Entry {
	return []configstore.Entry{e.Port}
}

// SecretEntries lists the entries shown in the plugin's secrets section.
// The access token itself is not exposed.
func (e *AuthEntries) SecretEntries() []configstore.Entry {
	return []configstore.Entry{e.TokenExpiration, e.ClientID}
}

// CallbackPort returns the configured callback port.
func (e *AuthEntries) CallbackPort(ctx context.Context) (int, error) {
	port, ok, err := e.Port.Get(ctx)
	if err != nil {
		return 0, err
	}
	if problem := configstore.IntRange(1024, 65535)(port, ok); problem != "" {
		return 0, apperrors.ValidationField("port", problem)
	}
	return port, nil
}

// OAuthClientID returns the configured OAuth client ID.
func (e *AuthEntries) OAuthClientID(ctx context.Context) (string, error) {
	id, ok, err := e.ClientID.Get(ctx)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(id) == "" {
		return "", apperrors.ValidationField("clientId", "client ID is not configured")
	}
	return id, nil
}

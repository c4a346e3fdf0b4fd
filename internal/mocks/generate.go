// Package mocks provides mock implementations for testing the Spotify auth plugin.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the ports in internal/ports.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockSpotifyAPI(ctrl)
//	api.EXPECT().Devices(gomock.Any()).Return(devices, nil)
package mocks

// Generate mock for SpotifyAPI interface from internal/ports package.
// This creates MockSpotifyAPI with methods for all SpotifyAPI interface methods:
// Devices, Play, Pause, Resume, PlaybackState
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=spotify_api_mock.go github.com/target/spotify-auth/internal/ports SpotifyAPI

// Generate mock for BrowserOpener interface from internal/ports package.
// This creates MockBrowserOpener with methods for all BrowserOpener interface methods:
// OpenURL
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=browser_opener_mock.go github.com/target/spotify-auth/internal/ports BrowserOpener

// Generate mock for AuthorizeURLBuilder interface from internal/ports package.
// This creates MockAuthorizeURLBuilder with methods for all AuthorizeURLBuilder interface methods:
// AuthorizeURL
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=authorize_url_builder_mock.go github.com/target/spotify-auth/internal/ports AuthorizeURLBuilder

// Generate mock for TokenStore interface from internal/ports package.
// This creates MockTokenStore with methods for all TokenStore interface methods:
// Load, Save
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_store_mock.go github.com/target/spotify-auth/internal/ports TokenStore

// Generate mock for KeyValueStore interface from internal/ports package.
// This creates MockKeyValueStore with methods for all KeyValueStore interface methods:
// Get, Keys, Apply
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=key_value_store_mock.go github.com/target/spotify-auth/internal/ports KeyValueStore

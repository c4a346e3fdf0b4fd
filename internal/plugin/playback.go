package plugin

import (
	"context"

	"github.com/target/spotify-auth/internal/configstore"
	"github.com/target/spotify-auth/internal/ports"
	"github.com/target/spotify-auth/internal/service"
)

// PlaybackName is the display name of the playback factory.
const PlaybackName = "Spotify"

// PlaybackFactory plays Spotify songs on a possibly remote Spotify Connect device.
type PlaybackFactory struct {
	playback *service.PlaybackService
	auth     *service.Authenticator
}

var _ Plugin = (*PlaybackFactory)(nil)

// NewPlaybackFactory creates the playback factory.
func NewPlaybackFactory(playback *service.PlaybackService, auth *service.Authenticator) *PlaybackFactory {
	return &PlaybackFactory{playback: playback, auth: auth}
}

func (f *PlaybackFactory) Name() string { return PlaybackName }

func (f *PlaybackFactory) Description() string {
	return "Plays Spotify songs with an official Spotify client on a possibly remote device. " +
		"Requires a Spotify Premium subscription."
}

func (f *PlaybackFactory) ConfigEntries() []configstore.Entry {
	return []configstore.Entry{f.playback.Device}
}

func (f *PlaybackFactory) SecretEntries() []configstore.Entry { return nil }

// Initialize checks that a device is selected and a token can be obtained.
func (f *PlaybackFactory) Initialize(ctx context.Context, w ports.InitStateWriter) error {
	w.State("Checking device config")
	_, ok, err := f.playback.SelectedDevice(ctx)
	if err != nil {
		return &InitializationError{Plugin: PlaybackName, Reason: "Could not read device config", Cause: err}
	}
	if !ok {
		return &InitializationError{Plugin: PlaybackName, Reason: "No device selected"}
	}

	w.State("Checking authentication")
	if _, err := f.auth.Token(ctx); err != nil {
		return &InitializationError{Plugin: PlaybackName, Reason: "Not authenticated", Cause: err}
	}
	return nil
}

// Playback returns a handle that plays songID on the selected device.
func (f *PlaybackFactory) Playback(ctx context.Context, songID string) (*service.Playback, error) {
	return f.playback.Playback(ctx, songID)
}

// Service returns the underlying playback service.
func (f *PlaybackFactory) Service() *service.PlaybackService { return f.playback }

func (f *PlaybackFactory) Close() error { return nil }

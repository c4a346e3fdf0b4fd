package ports

import (
	"context"

	"github.com/target/spotify-auth/internal/domain/playback"
)

// SpotifyAPI is the subset of the Spotify Web API used for device lookup and playback control.
type SpotifyAPI interface {
	Devices(ctx context.Context) ([]playback.Device, error)
	Play(ctx context.Context, deviceID, trackID string) error
	Pause(ctx context.Context, deviceID string) error
	Resume(ctx context.Context, deviceID string) error
	PlaybackState(ctx context.Context) (playback.State, error)
}

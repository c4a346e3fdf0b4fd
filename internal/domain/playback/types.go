// Package playback contains the domain types for remote Spotify playback.
package playback

import "time"

// Device is a Spotify Connect device that can receive playback commands.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Active        bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

// Ref returns the part of the device that is persisted as the selection.
func (d Device) Ref() DeviceRef {
	return DeviceRef{ID: d.ID, Name: d.Name}
}

// DeviceRef identifies the selected device. Name is kept for display only;
// the device may have been renamed since it was selected.
type DeviceRef struct {
	ID   string
	Name string
}

// State is a snapshot of what the selected device is playing.
type State struct {
	Playing  bool
	TrackID  string
	Progress time.Duration
	Duration time.Duration
}

package httpx

import (
	"context"
	"net/http"

	"github.com/target/spotify-auth/internal/domain/playback"
)

// PlaybackService lists devices and manages the selected one.
type PlaybackService interface {
	Devices(ctx context.Context) ([]playback.Device, error)
	SelectedDevice(ctx context.Context) (playback.DeviceRef, bool, error)
	SelectDevice(ctx context.Context, deviceID string) (playback.DeviceRef, error)
}

// PlaybackHandlers serves device listing and selection.
type PlaybackHandlers struct {
	Svc PlaybackService
}

type deviceRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type devicesResponse struct {
	Devices  []playback.Device  `json:"devices"`
	Selected *deviceRefResponse `json:"selected,omitempty"`
}

type selectDeviceRequest struct {
	DeviceID string `json:"device_id"`
}

// Devices lists the devices of the account together with the current selection.
func (h *PlaybackHandlers) Devices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.Svc.Devices(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if devices == nil {
		devices = []playback.Device{}
	}
	resp := devicesResponse{Devices: devices}

	ref, ok, err := h.Svc.SelectedDevice(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if ok {
		resp.Selected = &deviceRefResponse{ID: ref.ID, Name: ref.Name}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// SelectDevice stores the device playback is sent to.
func (h *PlaybackHandlers) SelectDevice(w http.ResponseWriter, r *http.Request) {
	var req selectDeviceRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	ref, err := h.Svc.SelectDevice(r.Context(), req.DeviceID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, deviceRefResponse{ID: ref.ID, Name: ref.Name})
}

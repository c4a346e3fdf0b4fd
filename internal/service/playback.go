package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/target/spotify-auth/internal/configstore"
	"github.com/target/spotify-auth/internal/domain/playback"
	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

// PlaybackNamespace prefixes the stored keys of the playback entries.
const PlaybackNamespace = "spotify"

// DeviceSerializer stores a device as "id;name". The name may itself contain ';'.
type DeviceSerializer struct{}

func (DeviceSerializer) Serialize(d playback.DeviceRef) string { return d.ID + ";" + d.Name }

func (DeviceSerializer) Deserialize(s string) (playback.DeviceRef, error) {
	id, name, _ := strings.Cut(s, ";")
	if id == "" {
		return playback.DeviceRef{}, fmt.Errorf("device id is empty in %q", s)
	}
	return playback.DeviceRef{ID: id, Name: name}, nil
}

// DeviceSelector picks a device with a JMESPath expression evaluated against the
// device list as returned by the Web API. The result may be a device ID, a device
// object or a list of either; the first element of a list wins.
type DeviceSelector struct {
	expr string
}

// NewDeviceSelector compiles expr. An empty expression yields a nil selector.
func NewDeviceSelector(expr string) (*DeviceSelector, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, apperrors.ValidationField("device_selector", err.Error())
	}
	return &DeviceSelector{expr: expr}, nil
}

// Expression returns the source expression.
func (s *DeviceSelector) Expression() string { return s.expr }

// Select evaluates the expression and resolves its result against devices.
func (s *DeviceSelector) Select(devices []playback.Device) (playback.Device, bool, error) {
	doc, err := toJSONValue(devices)
	if err != nil {
		return playback.Device{}, false, err
	}
	result, err := jmespath.Search(s.expr, doc)
	if err != nil {
		return playback.Device{}, false, fmt.Errorf("evaluate device selector: %w", err)
	}
	if list, ok := result.([]any); ok {
		if len(list) == 0 {
			return playback.Device{}, false, nil
		}
		result = list[0]
	}

	var id string
	switch v := result.(type) {
	case nil:
		return playback.Device{}, false, nil
	case string:
		id = v
	case map[string]any:
		id, _ = v["id"].(string)
	default:
		return playback.Device{}, false, apperrors.Validationf("device selector returned %T, want a device or an id", result)
	}
	for _, d := range devices {
		if d.ID == id {
			return d, true, nil
		}
	}
	return playback.Device{}, false, nil
}

// toJSONValue converts v into the generic shape JMESPath evaluates over.
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal devices: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal devices: %w", err)
	}
	return out, nil
}

// PlaybackServiceOptions groups dependencies for PlaybackService.
type PlaybackServiceOptions struct {
	Store    ports.KeyValueStore
	API      ports.SpotifyAPI
	Selector *DeviceSelector // Optional
	Logger   *slog.Logger
}

// PlaybackService owns the device selection and hands out Playbacks on it.
type PlaybackService struct {
	api      ports.SpotifyAPI
	selector *DeviceSelector
	logger   *slog.Logger

	Config *configstore.Config
	Device *configstore.SerializedEntry[playback.DeviceRef]
}

// NewPlaybackService declares the device entry on opts.Store.
func NewPlaybackService(opts PlaybackServiceOptions) *PlaybackService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &PlaybackService{
		api:      opts.API,
		selector: opts.Selector,
		logger:   logger.With("component", "playback"),
		Config:   configstore.New(opts.Store, configstore.ScopeConfig, PlaybackNamespace),
	}
	s.Device = configstore.NewSerializedEntry(s.Config, configstore.EntryOptions[playback.DeviceRef]{
		Key:         "deviceId",
		Description: "Spotify device to use",
		Serializer:  DeviceSerializer{},
		Checker:     configstore.NonNull[playback.DeviceRef](),
		UI: configstore.ChoiceBox[playback.DeviceRef]{
			Label: func(d playback.DeviceRef) string { return d.Name },
			Load:  s.deviceRefs,
			Lazy:  true,
		},
	})
	return s
}

// Devices lists the devices currently available to the account.
func (s *PlaybackService) Devices(ctx context.Context) ([]playback.Device, error) {
	devices, err := s.api.Devices(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "could not retrieve device list", "error", err)
		return nil, err
	}
	return devices, nil
}

func (s *PlaybackService) deviceRefs(ctx context.Context) ([]playback.DeviceRef, error) {
	devices, err := s.Devices(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]playback.DeviceRef, 0, len(devices))
	for _, d := range devices {
		refs = append(refs, d.Ref())
	}
	return refs, nil
}

// SelectedDevice returns the configured device. When none is configured and a
// selector is set, the selector picks one from the live device list and the
// choice is persisted.
func (s *PlaybackService) SelectedDevice(ctx context.Context) (playback.DeviceRef, bool, error) {
	ref, ok, err := s.Device.Get(ctx)
	if err != nil || ok || s.selector == nil {
		return ref, ok, err
	}

	devices, err := s.Devices(ctx)
	if err != nil {
		return playback.DeviceRef{}, false, err
	}
	d, found, err := s.selector.Select(devices)
	if err != nil || !found {
		return playback.DeviceRef{}, false, err
	}
	ref = d.Ref()
	if err := s.Device.Set(ctx, ref); err != nil {
		return playback.DeviceRef{}, false, err
	}
	s.logger.InfoContext(ctx, "device selected automatically",
		"device_id", ref.ID, "device_name", ref.Name, "selector", s.selector.Expression())
	return ref, true, nil
}

// SelectDevice stores the available device with the given ID as the selection.
func (s *PlaybackService) SelectDevice(ctx context.Context, deviceID string) (playback.DeviceRef, error) {
	if deviceID == "" {
		return playback.DeviceRef{}, apperrors.ValidationField("deviceId", "device id is required")
	}
	devices, err := s.Devices(ctx)
	if err != nil {
		return playback.DeviceRef{}, err
	}
	for _, d := range devices {
		if d.ID == deviceID {
			ref := d.Ref()
			if err := s.Device.Set(ctx, ref); err != nil {
				return playback.DeviceRef{}, err
			}
			s.logger.InfoContext(ctx, "device selected", "device_id", ref.ID, "device_name", ref.Name)
			return ref, nil
		}
	}
	return playback.DeviceRef{}, apperrors.NotFoundf("device %s is not available", deviceID)
}

// Playback returns a handle that plays songID on the selected device.
func (s *PlaybackService) Playback(ctx context.Context, songID string) (*Playback, error) {
	if songID == "" {
		return nil, apperrors.ValidationField("songId", "song id is required")
	}
	ref, ok, err := s.SelectedDevice(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ValidationField("deviceId", "no device selected")
	}
	return &Playback{api: s.api, device: ref, songID: songID, logger: s.logger}, nil
}

// Playback controls one song on one device.
type Playback struct {
	api    ports.SpotifyAPI
	device playback.DeviceRef
	songID string
	logger *slog.Logger
}

// Device returns the device the song plays on.
func (p *Playback) Device() playback.DeviceRef { return p.device }

// SongID returns the Spotify track ID.
func (p *Playback) SongID() string { return p.songID }

// Play starts the song from the beginning.
func (p *Playback) Play(ctx context.Context) error {
	if err := p.api.Play(ctx, p.device.ID, p.songID); err != nil {
		return fmt.Errorf("play %s: %w", p.songID, err)
	}
	p.logger.DebugContext(ctx, "playback started", "device_id", p.device.ID, "song_id", p.songID)
	return nil
}

// Pause pauses the device.
func (p *Playback) Pause(ctx context.Context) error {
	if err := p.api.Pause(ctx, p.device.ID); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	return nil
}

// Resume continues playback on the device.
func (p *Playback) Resume(ctx context.Context) error {
	if err := p.api.Resume(ctx, p.device.ID); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	return nil
}

// State reports the playback state. Playing is false once the device moved on
// to a different track.
func (p *Playback) State(ctx context.Context) (playback.State, error) {
	st, err := p.api.PlaybackState(ctx)
	if err != nil {
		return playback.State{}, err
	}
	if st.TrackID != p.songID {
		st.Playing = false
	}
	return st, nil
}

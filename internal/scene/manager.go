// Package scene stores named multi-device snapshots and replays them.
package scene

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/ledsyncd/internal/errors"
	"github.com/jmylchreest/ledsyncd/internal/events"
	"github.com/jmylchreest/ledsyncd/pkg/ledstrip"
)

// Defaults used when a scene names a device that is not registered.
const (
	DefaultBrightness = 100
	DefaultEffectName = ledstrip.EffectNameUnknown
)

// DeviceController is the part of the device manager scenes need.
type DeviceController interface {
	GetDevice(address string) (ledstrip.Device, error)
	ExecuteDevice(ctx context.Context, address string, cmd ledstrip.Command) error
}

// DeviceState is the full target state of one device within a scene.
type DeviceState struct {
	SelectedColor string                 `json:"selected_color"`
	EffectNumber  int                    `json:"effect_number"`
	EffectName    string                 `json:"effect_name"`
	Brightness    int                    `json:"brightness"`
	Custom        bool                   `json:"custom"`
	CustomEffect  *ledstrip.CustomEffect `json:"custom_effect,omitempty"`
}

func (s DeviceState) clone() DeviceState {
	s.CustomEffect = s.CustomEffect.Clone()
	return s
}

// PartialState holds the fields a caller supplied explicitly. Nil fields are
// filled from the device's live state.
type PartialState struct {
	SelectedColor *string                `json:"selected_color,omitempty"`
	EffectNumber  *int                   `json:"effect_number,omitempty"`
	EffectName    *string                `json:"effect_name,omitempty"`
	Brightness    *int                   `json:"brightness,omitempty"`
	Custom        *bool                  `json:"custom,omitempty"`
	CustomEffect  *ledstrip.CustomEffect `json:"custom_effect,omitempty"`
}

// DeviceConfig pairs an address with the state to capture for it.
type DeviceConfig struct {
	Address string       `json:"address"`
	State   PartialState `json:"state"`
}

// Scene is a named, self-contained target state for a set of devices. It
// keeps no reference to live devices and survives their removal.
type Scene struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Devices   map[string]DeviceState `json:"devices"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// MarshalJSON writes a nil Devices map as {}.
func (s Scene) MarshalJSON() ([]byte, error) {
	type plain Scene
	if s.Devices == nil {
		s.Devices = map[string]DeviceState{}
	}
	return json.Marshal(plain(s))
}

func (s *Scene) clone() Scene {
	out := *s
	out.Devices = make(map[string]DeviceState, len(s.Devices))
	for addr, st := range s.Devices {
		out.Devices[addr] = st.clone()
	}
	return out
}

// Manager holds the ordered scene list. Scenes are addressed by position.
type Manager struct {
	logger  *slog.Logger
	devices DeviceController
	bus     *events.Bus

	mu     sync.RWMutex
	scenes []*Scene
}

// NewManager creates an empty scene list.
func NewManager(logger *slog.Logger, devices DeviceController, bus *events.Bus) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:  logger.With("component", "scenes"),
		devices: devices,
		bus:     bus,
	}
}

// AddScene captures a new scene at the end of the list.
func (m *Manager) AddScene(name string, configs []DeviceConfig) (Scene, error) {
	if name == "" {
		return Scene{}, errors.InvalidInputf("scene name must not be empty")
	}
	resolved, err := m.resolve(configs)
	if err != nil {
		return Scene{}, err
	}

	now := time.Now()
	s := &Scene{
		ID:        uuid.NewString(),
		Name:      name,
		Devices:   resolved,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.scenes = append(m.scenes, s)
	index := len(m.scenes) - 1
	out := s.clone()
	m.mu.Unlock()

	m.logger.Info("created scene", "index", index, "id", s.ID, "name", name, "devices", len(resolved))
	m.bus.Emit(events.SceneCreated, out)
	return out, nil
}

// UpdateScene replaces the scene at index. An empty name keeps the current
// one. An index outside the list changes nothing and reports false.
func (m *Manager) UpdateScene(index int, name string, configs []DeviceConfig) (Scene, bool, error) {
	resolved, err := m.resolve(configs)
	if err != nil {
		return Scene{}, false, err
	}

	m.mu.Lock()
	if index < 0 || index >= len(m.scenes) {
		m.mu.Unlock()
		m.logger.Debug("update of missing scene ignored", "index", index)
		return Scene{}, false, nil
	}
	s := m.scenes[index]
	if name != "" {
		s.Name = name
	}
	s.Devices = resolved
	s.UpdatedAt = time.Now()
	out := s.clone()
	m.mu.Unlock()

	m.logger.Info("updated scene", "index", index, "id", out.ID, "name", out.Name, "devices", len(resolved))
	m.bus.Emit(events.SceneUpdated, out)
	return out, true, nil
}

// RemoveScene deletes the scene at index and reports whether one was there.
// Later scenes shift down by one.
func (m *Manager) RemoveScene(index int) bool {
	m.mu.Lock()
	if index < 0 || index >= len(m.scenes) {
		m.mu.Unlock()
		m.logger.Debug("removal of missing scene ignored", "index", index)
		return false
	}
	removed := m.scenes[index]
	m.scenes = slices.Delete(m.scenes, index, index+1)
	m.mu.Unlock()

	m.logger.Info("deleted scene", "index", index, "id", removed.ID, "name", removed.Name)
	m.bus.Emit(events.SceneDeleted, map[string]any{"index": index, "id": removed.ID})
	return true
}

// GetScene returns a copy of the scene at index, or false if there is none.
func (m *Manager) GetScene(index int) (Scene, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.scenes) {
		return Scene{}, false
	}
	return m.scenes[index].clone(), true
}

// GetScenes returns a copy of every scene in order.
func (m *Manager) GetScenes() []Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Scene, 0, len(m.scenes))
	for _, s := range m.scenes {
		out = append(out, s.clone())
	}
	return out
}

// ApplyScene drives every device in the scene to its stored state. Devices
// run concurrently; within a device the mode command goes first, then the
// brightness. One device failing does not stop or undo the others. The bool
// is false when index names no scene, in which case nothing is sent.
func (m *Manager) ApplyScene(ctx context.Context, index int) (bool, error) {
	s, ok := m.GetScene(index)
	if !ok {
		m.logger.Debug("apply of missing scene ignored", "index", index)
		return false, nil
	}
	m.logger.Info("applying scene", "index", index, "name", s.Name, "devices", len(s.Devices))

	errCh := make(chan error, len(s.Devices))
	var wg sync.WaitGroup
	for _, addr := range slices.Sorted(maps.Keys(s.Devices)) {
		st := s.Devices[addr]
		wg.Go(func() {
			if err := m.applyDevice(ctx, addr, st); err != nil {
				m.logger.Warn("scene device failed", "scene", s.Name, "address", addr, "error", err)
				errCh <- errors.WrapErrorf(err, "device %s", addr)
			}
		})
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	m.bus.Emit(events.SceneApplied, map[string]any{
		"index":  index,
		"id":     s.ID,
		"failed": len(errs),
	})
	return true, errors.Join(errs...)
}

func (m *Manager) applyDevice(ctx context.Context, address string, st DeviceState) error {
	var cmd ledstrip.Command
	switch {
	case st.Custom && st.CustomEffect != nil:
		cmd = ledstrip.CustomEffectCommand(*st.CustomEffect.Clone())
	case st.EffectName == ledstrip.EffectNameSolidColor:
		color, err := ledstrip.HexToHSV(st.SelectedColor)
		if err != nil {
			color = ledstrip.MustHexToHSV(ledstrip.White)
		}
		cmd = ledstrip.ColorCommand(color)
	default:
		cmd = ledstrip.EffectCommand(st.EffectNumber)
	}

	// Brightness is sent even if the mode command failed.
	modeErr := m.devices.ExecuteDevice(ctx, address, cmd)
	return errors.Join(modeErr, m.devices.ExecuteDevice(ctx, address, ledstrip.BrightnessCommand(st.Brightness)))
}

// resolve fills every device's state: explicit fields first, then the live
// device, then defaults.
func (m *Manager) resolve(configs []DeviceConfig) (map[string]DeviceState, error) {
	out := make(map[string]DeviceState, len(configs))
	for _, cfg := range configs {
		addr := ledstrip.NormalizeAddress(cfg.Address)
		if addr == "" {
			return nil, errors.InvalidInputf("scene device address must not be empty")
		}
		st, err := m.resolveOne(addr, cfg.State)
		if err != nil {
			return nil, err
		}
		out[addr] = st
	}
	return out, nil
}

func (m *Manager) resolveOne(address string, p PartialState) (DeviceState, error) {
	st := DeviceState{
		SelectedColor: ledstrip.White,
		EffectName:    DefaultEffectName,
		Brightness:    DefaultBrightness,
	}
	var liveCustom *ledstrip.CustomEffect
	live, liveErr := m.devices.GetDevice(address)
	if liveErr == nil {
		if hex, err := ledstrip.NormalizeHex(live.SelectedColor); err == nil {
			st.SelectedColor = hex
		}
		st.EffectNumber = live.EffectNumber
		st.EffectName = live.EffectName
		st.Brightness = live.Brightness
		if live.LastState != nil && live.Mode != ledstrip.ModeSolidColor {
			liveCustom = live.LastState.CustomEffect
		}
	} else {
		m.logger.Debug("scene device not registered, using defaults", "address", address)
	}

	if p.SelectedColor != nil {
		hex, err := ledstrip.NormalizeHex(*p.SelectedColor)
		if err != nil {
			return DeviceState{}, err
		}
		st.SelectedColor = hex
	}
	if p.EffectNumber != nil {
		st.EffectNumber = *p.EffectNumber
		if p.EffectName == nil {
			st.EffectName = effectName(live, *p.EffectNumber)
		}
	}
	if p.EffectName != nil {
		st.EffectName = *p.EffectName
	}
	if p.Brightness != nil {
		st.Brightness = *p.Brightness
	}
	st.Brightness = max(0, min(100, st.Brightness))

	st.Custom = st.EffectName != ledstrip.EffectNameSolidColor
	if p.Custom != nil {
		st.Custom = *p.Custom
	}
	switch {
	case p.CustomEffect != nil:
		st.CustomEffect = p.CustomEffect.Clone()
	case st.Custom && p.EffectName == nil && p.EffectNumber == nil:
		st.CustomEffect = liveCustom.Clone()
	}
	return st, nil
}

// effectName names the built-in effect fn from the device's capability list.
// An unknown number is never reported as Solid Color.
func effectName(d ledstrip.Device, fn int) string {
	if e, ok := d.EffectByNumber(fn); ok && e.Name != "" {
		return e.Name
	}
	return DefaultEffectName
}

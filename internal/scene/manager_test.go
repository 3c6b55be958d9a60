package scene

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/ledsyncd/internal/errors"
	"github.com/jmylchreest/ledsyncd/internal/events"
	"github.com/jmylchreest/ledsyncd/pkg/ledstrip"
)

// fakeController records commands per address and serves canned devices.
type fakeController struct {
	mu      sync.Mutex
	devices map[string]ledstrip.Device
	cmds    map[string][]ledstrip.Command
	failing map[string]bool
	delay   time.Duration
}

func newFakeController(devices ...ledstrip.Device) *fakeController {
	f := &fakeController{
		devices: make(map[string]ledstrip.Device),
		cmds:    make(map[string][]ledstrip.Command),
		failing: make(map[string]bool),
	}
	for _, d := range devices {
		f.devices[d.Address] = d
	}
	return f
}

func (f *fakeController) GetDevice(address string) (ledstrip.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[address]
	if !ok {
		return ledstrip.Device{}, errors.NotFoundf("device %s", address)
	}
	return d, nil
}

func (f *fakeController) ExecuteDevice(_ context.Context, address string, cmd ledstrip.Command) error {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds[address] = append(f.cmds[address], cmd)
	if f.failing[address] {
		return errors.DeviceUnavailablef("device %s", address)
	}
	return nil
}

func (f *fakeController) Commands(address string) []ledstrip.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ledstrip.Command(nil), f.cmds[address]...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func TestAddScene_EveningScenarioApplies(t *testing.T) {
	ctrl := newFakeController()
	ctrl.delay = 50 * time.Millisecond
	m := NewManager(testLogger(), ctrl, nil)

	s, err := m.AddScene("Evening", []DeviceConfig{
		{Address: "10.0.0.1", State: PartialState{
			EffectName:    ptr(ledstrip.EffectNameSolidColor),
			SelectedColor: ptr("#FF8800"),
			Brightness:    ptr(60),
		}},
		{Address: "10.0.0.2", State: PartialState{
			EffectName:   ptr("Rainbow"),
			EffectNumber: ptr(3),
			Brightness:   ptr(80),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "#ff8800", s.Devices["10.0.0.1"].SelectedColor)
	assert.False(t, s.Devices["10.0.0.1"].Custom)
	assert.True(t, s.Devices["10.0.0.2"].Custom)
	assert.Nil(t, s.Devices["10.0.0.2"].CustomEffect)

	start := time.Now()
	applied, err := m.ApplyScene(context.Background(), 0)
	require.NoError(t, err)
	require.True(t, applied)
	elapsed := time.Since(start)

	a := ctrl.Commands("10.0.0.1")
	require.Len(t, a, 2)
	assert.Equal(t, ledstrip.ColorCommand(ledstrip.MustHexToHSV("#ff8800")), a[0])
	assert.Equal(t, ledstrip.BrightnessCommand(60), a[1])

	b := ctrl.Commands("10.0.0.2")
	require.Len(t, b, 2)
	assert.Equal(t, ledstrip.EffectCommand(3), b[0])
	assert.Equal(t, ledstrip.BrightnessCommand(80), b[1])

	assert.Less(t, elapsed, 180*time.Millisecond, "devices should be applied concurrently")

	after, ok := m.GetScene(0)
	require.True(t, ok)
	assert.Equal(t, s, after, "applying never mutates the scene")
}

func TestAddScene_FillsFromLiveDevice(t *testing.T) {
	live := ledstrip.Device{
		Address:       "10.0.0.3",
		SelectedColor: "#00FF00",
		EffectNumber:  1,
		EffectName:    "Fire",
		Mode:          ledstrip.ModeEffect,
		Brightness:    42,
		LastState: &ledstrip.LastState{
			CustomEffect: &ledstrip.CustomEffect{FunctionNumber: 1, Colors: []ledstrip.HSV{{H: 10, S: 255, V: 255}}},
		},
	}
	m := NewManager(testLogger(), newFakeController(live), nil)

	s, err := m.AddScene("Fireplace", []DeviceConfig{{Address: "10.0.0.3"}})
	require.NoError(t, err)

	st := s.Devices["10.0.0.3"]
	assert.Equal(t, "#00ff00", st.SelectedColor)
	assert.Equal(t, 1, st.EffectNumber)
	assert.Equal(t, "Fire", st.EffectName)
	assert.Equal(t, 42, st.Brightness)
	assert.True(t, st.Custom)
	require.NotNil(t, st.CustomEffect)
	assert.Equal(t, 1, st.CustomEffect.FunctionNumber)
}

func TestAddScene_ExplicitFieldsWin(t *testing.T) {
	live := ledstrip.Device{
		Address: "10.0.0.3", SelectedColor: "#00ff00", EffectName: ledstrip.EffectNameSolidColor,
		Mode: ledstrip.ModeSolidColor, Brightness: 42,
	}
	m := NewManager(testLogger(), newFakeController(live), nil)

	s, err := m.AddScene("Bright", []DeviceConfig{{Address: "10.0.0.3", State: PartialState{Brightness: ptr(90)}}})
	require.NoError(t, err)
	st := s.Devices["10.0.0.3"]
	assert.Equal(t, 90, st.Brightness)
	assert.Equal(t, "#00ff00", st.SelectedColor)
	assert.False(t, st.Custom, "solid color is not custom")
}

func TestAddScene_UnregisteredDeviceUsesDefaults(t *testing.T) {
	m := NewManager(testLogger(), newFakeController(), nil)
	s, err := m.AddScene("Ghost", []DeviceConfig{{Address: "http://10.9.9.9/"}})
	require.NoError(t, err)

	st, ok := s.Devices["10.9.9.9"]
	require.True(t, ok, "address is normalised")
	assert.Equal(t, ledstrip.White, st.SelectedColor)
	assert.Equal(t, 100, st.Brightness)
	assert.Equal(t, ledstrip.EffectNameUnknown, st.EffectName)
	assert.Equal(t, 0, st.EffectNumber)
	assert.True(t, st.Custom)
}

func TestAddScene_Validation(t *testing.T) {
	m := NewManager(testLogger(), newFakeController(), nil)

	_, err := m.AddScene("", nil)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = m.AddScene("Bad", []DeviceConfig{{Address: "10.0.0.1", State: PartialState{SelectedColor: ptr("orange")}}})
	assert.True(t, errors.IsInvalidInput(err))

	_, err = m.AddScene("Bad", []DeviceConfig{{Address: ""}})
	assert.True(t, errors.IsInvalidInput(err))

	assert.Empty(t, m.GetScenes())
}

func TestUpdateAndRemoveScene(t *testing.T) {
	m := NewManager(testLogger(), newFakeController(), nil)
	first, err := m.AddScene("One", []DeviceConfig{{Address: "10.0.0.1"}})
	require.NoError(t, err)
	_, err = m.AddScene("Two", nil)
	require.NoError(t, err)

	updated, changed, err := m.UpdateScene(0, "", []DeviceConfig{{Address: "10.0.0.2", State: PartialState{Brightness: ptr(5)}}})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "One", updated.Name, "empty name keeps the old one")
	assert.Equal(t, first.ID, updated.ID)
	assert.NotContains(t, updated.Devices, "10.0.0.1")
	assert.Equal(t, 5, updated.Devices["10.0.0.2"].Brightness)

	require.True(t, m.RemoveScene(0))
	scenes := m.GetScenes()
	require.Len(t, scenes, 1)
	assert.Equal(t, "Two", scenes[0].Name)
}

func TestSceneIndexOutOfRangeIsNoop(t *testing.T) {
	bus := events.NewBus()
	var emitted []events.EventType
	ctrl := newFakeController()
	m := NewManager(testLogger(), ctrl, bus)
	_, err := m.AddScene("Only", []DeviceConfig{{Address: "10.0.0.1"}})
	require.NoError(t, err)
	bus.Subscribe(func(e events.Event) { emitted = append(emitted, e.Type) })

	for _, idx := range []int{-1, 1, 7} {
		_, changed, err := m.UpdateScene(idx, "x", nil)
		assert.NoError(t, err, "index %d", idx)
		assert.False(t, changed, "index %d", idx)

		assert.False(t, m.RemoveScene(idx), "index %d", idx)

		applied, err := m.ApplyScene(context.Background(), idx)
		assert.NoError(t, err, "index %d", idx)
		assert.False(t, applied, "index %d", idx)

		_, ok := m.GetScene(idx)
		assert.False(t, ok, "index %d", idx)
	}

	scenes := m.GetScenes()
	require.Len(t, scenes, 1)
	assert.Equal(t, "Only", scenes[0].Name)
	assert.Empty(t, ctrl.Commands("10.0.0.1"))
	assert.Empty(t, emitted)
}

func TestAddScene_ColorOverRunningEffectAppliesColor(t *testing.T) {
	live := ledstrip.Device{
		Address: "10.0.0.4", SelectedColor: "#ffffff", EffectNumber: 3, EffectName: "Rainbow",
		Mode: ledstrip.ModeEffect, Brightness: 50,
	}
	ctrl := newFakeController(live)
	m := NewManager(testLogger(), ctrl, nil)

	s, err := m.AddScene("Amber", []DeviceConfig{{Address: "10.0.0.4", State: PartialState{
		SelectedColor: ptr("#ff8800"),
		EffectName:    ptr(ledstrip.EffectNameSolidColor),
		Custom:        ptr(false),
	}}})
	require.NoError(t, err)
	assert.False(t, s.Devices["10.0.0.4"].Custom)

	_, err = m.ApplyScene(context.Background(), 0)
	require.NoError(t, err)
	cmds := ctrl.Commands("10.0.0.4")
	require.Len(t, cmds, 2)
	assert.Equal(t, ledstrip.ColorCommand(ledstrip.MustHexToHSV("#ff8800")), cmds[0])
	assert.Equal(t, ledstrip.BrightnessCommand(50), cmds[1])
}

func TestAddScene_EffectNumberTakesDeviceEffectName(t *testing.T) {
	live := ledstrip.Device{
		Address: "10.0.0.5", SelectedColor: "#00ff00", EffectName: ledstrip.EffectNameSolidColor,
		Mode: ledstrip.ModeSolidColor, Brightness: 70,
		Effects: []ledstrip.Effect{{Name: "Rainbow", FunctionNumber: 0}, {Name: "Fire", FunctionNumber: 1}},
	}
	ctrl := newFakeController(live)
	m := NewManager(testLogger(), ctrl, nil)

	s, err := m.AddScene("Fire", []DeviceConfig{
		{Address: "10.0.0.5", State: PartialState{EffectNumber: ptr(1), Custom: ptr(false)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Fire", s.Devices["10.0.0.5"].EffectName)

	_, err = m.ApplyScene(context.Background(), 0)
	require.NoError(t, err)
	cmds := ctrl.Commands("10.0.0.5")
	require.Len(t, cmds, 2)
	assert.Equal(t, ledstrip.EffectCommand(1), cmds[0])

	s, err = m.AddScene("Unknown number", []DeviceConfig{{Address: "10.0.0.5", State: PartialState{EffectNumber: ptr(9)}}})
	require.NoError(t, err)
	assert.Equal(t, DefaultEffectName, s.Devices["10.0.0.5"].EffectName)
}

func TestApplyScene_PartialFailureIsIsolated(t *testing.T) {
	ctrl := newFakeController()
	ctrl.failing["10.0.0.1"] = true
	m := NewManager(testLogger(), ctrl, nil)
	_, err := m.AddScene("Mixed", []DeviceConfig{
		{Address: "10.0.0.1", State: PartialState{EffectNumber: ptr(1)}},
		{Address: "10.0.0.2", State: PartialState{EffectNumber: ptr(2)}},
	})
	require.NoError(t, err)

	applied, err := m.ApplyScene(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, applied)
	assert.Contains(t, err.Error(), "10.0.0.1")

	assert.Len(t, ctrl.Commands("10.0.0.1"), 2, "brightness still sent after a failed mode command")
	assert.Len(t, ctrl.Commands("10.0.0.2"), 2)
}

func TestApplyScene_CustomPayload(t *testing.T) {
	ctrl := newFakeController()
	m := NewManager(testLogger(), ctrl, nil)
	effect := &ledstrip.CustomEffect{FunctionNumber: 2, Reverse: true}
	_, err := m.AddScene("Custom", []DeviceConfig{{Address: "10.0.0.1", State: PartialState{
		EffectName:   ptr("Twinkle"),
		CustomEffect: effect,
	}}})
	require.NoError(t, err)
	_, err = m.ApplyScene(context.Background(), 0)
	require.NoError(t, err)

	cmds := ctrl.Commands("10.0.0.1")
	require.Len(t, cmds, 2)
	got, ok := cmds[0].(ledstrip.CustomEffectCommand)
	require.True(t, ok)
	assert.Equal(t, 2, got.FunctionNumber)
	assert.True(t, got.Reverse)
}

func TestSceneEvents(t *testing.T) {
	bus := events.NewBus()
	var mu sync.Mutex
	var types []events.EventType
	bus.Subscribe(func(e events.Event) {
		mu.Lock()
		types = append(types, e.Type)
		mu.Unlock()
	})
	m := NewManager(testLogger(), newFakeController(), bus)

	_, err := m.AddScene("A", nil)
	require.NoError(t, err)
	_, _, err = m.UpdateScene(0, "B", nil)
	require.NoError(t, err)
	_, err = m.ApplyScene(context.Background(), 0)
	require.NoError(t, err)
	require.True(t, m.RemoveScene(0))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []events.EventType{
		events.SceneCreated, events.SceneUpdated, events.SceneApplied, events.SceneDeleted,
	}, types)
}

func TestSceneJSON_EmptyDevices(t *testing.T) {
	for _, v := range []any{Scene{ID: "x", Name: "Empty"}, &Scene{ID: "x", Name: "Empty"}} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"devices":{}`)
		assert.Contains(t, string(b), `"name":"Empty"`)
	}
}

func TestLedstripManagerIsDeviceController(t *testing.T) {
	var _ DeviceController = (*ledstrip.Manager)(nil)
}

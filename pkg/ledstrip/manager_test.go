package ledstrip

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/ledsyncd/internal/devicetest"
	"github.com/jmylchreest/ledsyncd/internal/errors"
	"github.com/jmylchreest/ledsyncd/internal/events"
)

func newTestManager(opts ...Option) *Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithRetryPolicy(3, 0), WithToggleTimeout(time.Second)}, opts...)
	return NewManager(logger, opts...)
}

// addFake starts a fake controller and registers it.
func addFake(t *testing.T, m *Manager, opts ...devicetest.Option) (*devicetest.Device, string) {
	t.Helper()
	fake := devicetest.New(t, opts...)
	_, err := m.AddDevice(context.Background(), fake.Address())
	require.NoError(t, err)
	return fake, fake.Address()
}

// collectEvents subscribes to a bus and returns a function to get collected events.
func collectEvents(bus *events.Bus) func() []events.Event {
	var mu sync.Mutex
	var collected []events.Event
	bus.Subscribe(func(e events.Event) {
		mu.Lock()
		collected = append(collected, e)
		mu.Unlock()
	})
	return func() []events.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]events.Event(nil), collected...)
	}
}

func TestNewManager(t *testing.T) {
	m := NewManager(nil)
	assert.NotNil(t, m.devices)
	assert.NotNil(t, m.clients)
	assert.False(t, m.SyncMode())
	assert.Equal(t, 3, m.fetchRetries)
	assert.Empty(t, m.Addresses())
}

func TestAddDevice(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)

	d, err := m.GetDevice(addr)
	require.NoError(t, err)
	assert.Equal(t, StatusOnline, d.Status)
	assert.Equal(t, "Strip", d.DeviceName)
	assert.Equal(t, "Lounge", d.RoomName)
	assert.Len(t, d.Effects, 3)
	assert.Equal(t, 3, d.EffectCount)
	assert.Equal(t, 100, d.Brightness)
	assert.Equal(t, "#ffffff", d.Color)
	assert.Equal(t, ModeSolidColor, d.Mode)
	assert.Equal(t, []string{White}, d.FavoriteColors)
	assert.Nil(t, d.LastState)
	assert.Equal(t, 1, fake.Calls("/ledData"))
	assert.Equal(t, 1, fake.Calls("/status"))
}

func TestAddDevice_EmptyAddress(t *testing.T) {
	m := newTestManager()
	_, err := m.AddDevice(context.Background(), "  ")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestAddDevice_Unreachable(t *testing.T) {
	m := newTestManager()
	addr := devicetest.Unreachable(t)

	d, err := m.AddDevice(context.Background(), addr)
	require.NoError(t, err, "adding fails soft")
	assert.Equal(t, StatusUnavailable, d.Status)
	assert.Equal(t, EffectNameUnavailable, d.EffectName)
	assert.Equal(t, ModeUnavailable, d.Mode)
	assert.Equal(t, NameUnavailable, d.DeviceName)
	assert.Equal(t, NameUnavailable, d.RoomName)
	assert.Empty(t, d.Effects)
	assert.Equal(t, []string{addr}, m.Addresses())
}

func TestFetchDeviceData_RetriesThenGivesUp(t *testing.T) {
	m := newTestManager()
	fake := devicetest.New(t)
	fake.FailPath("/ledData", true)

	d, err := m.AddDevice(context.Background(), fake.Address())
	require.NoError(t, err)
	assert.Equal(t, 3, fake.Calls("/ledData"))
	assert.Equal(t, NameUnavailable, d.DeviceName)
	assert.Empty(t, d.Effects)
	assert.Equal(t, StatusOnline, d.Status, "status still answered")
}

func TestFetchDeviceData_ExhaustionOnlyTouchesEffectsAndNames(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)
	before, err := m.GetDevice(addr)
	require.NoError(t, err)
	require.Equal(t, 3, before.EffectCount)

	fake.FailPath("/ledData", true)
	calls := fake.Calls("/ledData")
	err = m.FetchDeviceData(context.Background(), addr, 3)
	require.True(t, errors.IsDeviceUnavailable(err))

	after, err := m.GetDevice(addr)
	require.NoError(t, err)
	assert.Empty(t, after.Effects)
	assert.Equal(t, NameUnavailable, after.DeviceName)
	assert.Equal(t, NameUnavailable, after.RoomName)

	assert.Equal(t, before.EffectCount, after.EffectCount)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Brightness, after.Brightness)
	assert.Equal(t, before.SelectedColor, after.SelectedColor)
	assert.Equal(t, before.EffectName, after.EffectName)
	assert.Equal(t, before.EffectNumber, after.EffectNumber)
	assert.Equal(t, before.FavoriteColors, after.FavoriteColors)

	assert.Equal(t, calls+3, fake.Calls("/ledData"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls+3, fake.Calls("/ledData"), "no retries once attempts are exhausted")
}

func TestFetchDeviceData_NoDelayAfterLastAttempt(t *testing.T) {
	m := newTestManager(WithRetryPolicy(2, 150*time.Millisecond))
	fake := devicetest.New(t)
	fake.FailPath("/ledData", true)
	_, err := m.AddDevice(context.Background(), fake.Address())
	require.NoError(t, err)

	start := time.Now()
	err = m.FetchDeviceData(context.Background(), fake.Address(), 2)
	elapsed := time.Since(start)
	assert.True(t, errors.IsDeviceUnavailable(err))
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, 300*time.Millisecond)
}

func TestFetchDeviceData_RecoversOnRetry(t *testing.T) {
	m := newTestManager(WithRetryPolicy(3, 20*time.Millisecond))
	fake := devicetest.New(t)
	fake.FailPath("/ledData", true)
	go func() {
		time.Sleep(10 * time.Millisecond)
		fake.FailPath("/ledData", false)
	}()

	d, err := m.AddDevice(context.Background(), fake.Address())
	require.NoError(t, err)
	assert.Len(t, d.Effects, 3)
	assert.Equal(t, "Lounge", d.RoomName)
}

func TestAddDevice_ReAddKeepsFavoritesAndLastState(t *testing.T) {
	m := newTestManager()
	_, addr := addFake(t, m)

	_, err := m.UpdateDevice(addr, func(d *Device) {
		d.FavoriteColors = append(d.FavoriteColors, "#ff0000")
		d.LastState = &LastState{SelectedColor: "#00ff00", Mode: ModeSolidColor, Brightness: 30}
		d.DeviceName = "Desk"
	})
	require.NoError(t, err)

	d, err := m.AddDevice(context.Background(), "http://"+addr+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{White, "#ff0000"}, d.FavoriteColors)
	require.NotNil(t, d.LastState)
	assert.Equal(t, "#00ff00", d.LastState.SelectedColor)
	assert.Equal(t, "Desk", d.DeviceName, "user-set name is kept")
	assert.Len(t, m.Addresses(), 1)
}

func TestRemoveDevice(t *testing.T) {
	m := newTestManager()
	_, addr := addFake(t, m)

	require.NoError(t, m.RemoveDevice(addr))
	_, err := m.GetDevice(addr)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(m.RemoveDevice(addr)))
}

func TestSetDeviceAndRoomName(t *testing.T) {
	m := newTestManager()
	_, addr := addFake(t, m)

	require.NoError(t, m.SetDeviceName(addr, "Shelf"))
	require.NoError(t, m.SetRoomName(addr, "Office"))
	d, _ := m.GetDevice(addr)
	assert.Equal(t, "Shelf", d.DeviceName)
	assert.Equal(t, "Office", d.RoomName)

	assert.True(t, errors.IsNotFound(m.SetDeviceName("nope", "x")))
}

func TestFetchDeviceStatus_MapsWireValues(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)
	_, _ = m.UpdateDevice(addr, func(d *Device) {
		d.LastState = &LastState{SelectedColor: "#123456"}
	})

	fake.Update(func(s *devicetest.State) {
		s.Color = devicetest.HSV{H: 0, S: 255, V: 255}
		s.Brightness = 128
		s.EffectName = "Fire"
		s.EffectNumber = 1
	})
	require.True(t, m.FetchDeviceStatus(context.Background(), addr))

	d, _ := m.GetDevice(addr)
	assert.Equal(t, "#ff0000", d.Color)
	assert.Equal(t, "#ff0000", d.SelectedColor)
	assert.Equal(t, 50, d.Brightness)
	assert.Equal(t, "Fire", d.EffectName)
	assert.Equal(t, ModeEffect, d.Mode)
	assert.Equal(t, 1, d.EffectNumber)
	require.NotNil(t, d.LastState, "status fetch never discards last state")
	assert.Equal(t, "#123456", d.LastState.SelectedColor)
}

func TestFetchDeviceStatus_FailureLeavesStateAlone(t *testing.T) {
	m := newTestManager()
	fake, addr := addFake(t, m)
	before, _ := m.GetDevice(addr)

	fake.Fail(true)
	assert.False(t, m.FetchDeviceStatus(context.Background(), addr))
	after, _ := m.GetDevice(addr)
	assert.Equal(t, before, after)

	assert.False(t, m.FetchDeviceStatus(context.Background(), "unknown"))
}

func TestSyncMode(t *testing.T) {
	bus := events.NewBus()
	m := newTestManager(WithEventBus(bus))
	getEvents := collectEvents(bus)

	m.SetSyncMode(true)
	m.SetSyncMode(true)
	assert.True(t, m.SyncMode())
	assert.False(t, m.ToggleSyncMode())
	assert.False(t, m.SyncMode())

	var changes int
	for _, e := range getEvents() {
		if e.Type == events.SyncModeChanged {
			changes++
		}
	}
	assert.Equal(t, 2, changes)
}

func TestUpdateDevice_EmitsStateChanged(t *testing.T) {
	bus := events.NewBus()
	m := newTestManager()
	_, addr := addFake(t, m)
	m.SetEventBus(bus)
	getEvents := collectEvents(bus)

	_, err := m.UpdateDevice(addr, func(d *Device) { d.RoomName = "Attic" })
	require.NoError(t, err)

	evts := getEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, events.DeviceStateChanged, evts[0].Type)
	assert.Contains(t, string(evts[0].Data), `"room_name":"Attic"`)
}

func TestAddRemove_EmitEvents(t *testing.T) {
	bus := events.NewBus()
	m := newTestManager(WithEventBus(bus))
	getEvents := collectEvents(bus)

	_, addr := addFake(t, m)
	require.NoError(t, m.RemoveDevice(addr))

	var types []events.EventType
	for _, e := range getEvents() {
		types = append(types, e.Type)
	}
	require.NotEmpty(t, types)
	assert.Equal(t, events.DeviceAdded, types[0])
	assert.Equal(t, events.DeviceRemoved, types[len(types)-1])
}

func TestSetSelectedColor(t *testing.T) {
	m := newTestManager()
	fakeA, a := addFake(t, m)
	_, b := addFake(t, m)

	require.NoError(t, m.SetSelectedColor(a, "#00FF00"))
	da, _ := m.GetDevice(a)
	db, _ := m.GetDevice(b)
	assert.Equal(t, "#00ff00", da.SelectedColor)
	assert.Equal(t, White, db.SelectedColor)
	assert.Equal(t, 0, fakeA.Calls("/setColor"), "local only")

	m.SetSyncMode(true)
	require.NoError(t, m.SetSelectedColor(a, "#0000ff"))
	db, _ = m.GetDevice(b)
	assert.Equal(t, "#0000ff", db.SelectedColor)

	assert.True(t, errors.IsInvalidInput(m.SetSelectedColor(a, "blue")))
	assert.True(t, errors.IsNotFound(m.SetSelectedColor("missing", "#000000")))
}

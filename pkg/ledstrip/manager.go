package ledstrip

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/errors"
	"github.com/jmylchreest/ledsyncd/internal/events"
)

// Manager is the device registry and command dispatcher. All registry writes
// go through UpdateDevice (or add/remove) under one lock; network I/O never
// holds it, so reads are never blocked by a slow controller.
type Manager struct {
	devices map[string]*Device
	clients map[string]*Client
	mu      sync.RWMutex

	syncMode atomic.Bool

	httpClient    *http.Client
	toggleTimeout time.Duration
	fetchRetries  int
	retryDelay    time.Duration

	logger   *slog.Logger
	eventBus *events.Bus
}

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets the client used for every controller request.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Manager) {
		if hc != nil {
			m.httpClient = hc
		}
	}
}

// WithRequestTimeout sets the per-request timeout of the default HTTP client.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithToggleTimeout bounds /onOff and /setCustomEffect.
func WithToggleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.toggleTimeout = d
		}
	}
}

// WithRetryPolicy sets how many /ledData attempts AddDevice makes and the pause between them.
func WithRetryPolicy(retries int, delay time.Duration) Option {
	return func(m *Manager) {
		if retries > 0 {
			m.fetchRetries = retries
		}
		if delay >= 0 {
			m.retryDelay = delay
		}
	}
}

// WithSyncMode sets the initial sync mode.
func WithSyncMode(enabled bool) Option {
	return func(m *Manager) { m.syncMode.Store(enabled) }
}

// WithEventBus attaches a bus for registry change events.
func WithEventBus(bus *events.Bus) Option {
	return func(m *Manager) { m.eventBus = bus }
}

// NewManager creates an empty registry.
func NewManager(logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		devices:       make(map[string]*Device),
		clients:       make(map[string]*Client),
		httpClient:    &http.Client{Timeout: config.DefaultRequestTimeout},
		toggleTimeout: config.DefaultToggleTimeout,
		fetchRetries:  config.DefaultFetchRetries,
		retryDelay:    config.DefaultRetryDelay,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetEventBus attaches a bus after construction.
func (m *Manager) SetEventBus(bus *events.Bus) {
	m.mu.Lock()
	m.eventBus = bus
	m.mu.Unlock()
}

func (m *Manager) bus() *events.Bus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.eventBus
}

// --- Sync mode ---

// SyncMode reports whether commands are replicated to every device.
func (m *Manager) SyncMode() bool {
	return m.syncMode.Load()
}

// SetSyncMode turns command replication on or off. It affects every command
// dispatched after it returns.
func (m *Manager) SetSyncMode(enabled bool) {
	if m.syncMode.Swap(enabled) != enabled {
		m.logger.Info("sync mode changed", "enabled", enabled)
		m.bus().Emit(events.SyncModeChanged, map[string]bool{"enabled": enabled})
	}
}

// ToggleSyncMode flips sync mode and returns the new value.
func (m *Manager) ToggleSyncMode() bool {
	for {
		cur := m.syncMode.Load()
		if m.syncMode.CompareAndSwap(cur, !cur) {
			m.logger.Info("sync mode changed", "enabled", !cur)
			m.bus().Emit(events.SyncModeChanged, map[string]bool{"enabled": !cur})
			return !cur
		}
	}
}

// --- Registry reads ---

// GetDevices returns a copy of every registered device keyed by address.
func (m *Manager) GetDevices() map[string]Device {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Device, len(m.devices))
	for addr, d := range m.devices {
		out[addr] = d.Clone()
	}
	return out
}

// GetDevice returns a copy of one device.
func (m *Manager) GetDevice(address string) (Device, error) {
	address = NormalizeAddress(address)
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.devices[address]
	if !ok {
		return Device{}, errors.NotFoundf("device %s", address)
	}
	return d.Clone(), nil
}

// Addresses returns every registered address in sorted order.
func (m *Manager) Addresses() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.devices))
	for addr := range m.devices {
		out = append(out, addr)
	}
	slices.Sort(out)
	return out
}

// --- Registry writes ---

// UpdateDevice is the single write path for an existing device. fn runs
// under the registry lock and must not block or call back into the Manager.
func (m *Manager) UpdateDevice(address string, fn func(*Device)) (Device, error) {
	address = NormalizeAddress(address)
	m.mu.Lock()
	d, ok := m.devices[address]
	if !ok {
		m.mu.Unlock()
		return Device{}, errors.NotFoundf("device %s", address)
	}
	fn(d)
	snapshot := d.Clone()
	bus := m.eventBus
	m.mu.Unlock()

	bus.Emit(events.DeviceStateChanged, snapshot)
	return snapshot, nil
}

// AddDevice registers address with placeholder state, then fetches its
// capabilities and status. It fails soft: an unreachable controller stays
// registered and is marked unavailable. Adding a known address re-fetches it
// without discarding favorites or last state.
func (m *Manager) AddDevice(ctx context.Context, address string) (Device, error) {
	address = NormalizeAddress(address)
	if address == "" {
		return Device{}, errors.InvalidInputf("device address must not be empty")
	}

	m.mu.Lock()
	_, exists := m.devices[address]
	if !exists {
		m.devices[address] = newPlaceholder(address)
		m.clients[address] = m.newClient(address)
	}
	placeholder := m.devices[address].Clone()
	bus := m.eventBus
	m.mu.Unlock()

	if exists {
		m.logger.Debug("device already registered, refreshing", "address", address)
	} else {
		bus.Emit(events.DeviceAdded, placeholder)
	}

	if err := m.FetchDeviceData(ctx, address, m.fetchRetries); err != nil {
		m.logger.Warn("device capabilities unavailable", "address", address, "error", err)
	}
	if !m.FetchDeviceStatus(ctx, address) {
		_, _ = m.UpdateDevice(address, func(d *Device) {
			d.Status = StatusUnavailable
			d.setEffectName(EffectNameUnavailable)
		})
	}

	dev, err := m.GetDevice(address)
	if err != nil {
		return Device{}, err
	}
	m.logDeviceInfo(slog.LevelInfo, "device: added", &dev)
	return dev, nil
}

// RemoveDevice forgets a device. Nothing is sent to the controller.
func (m *Manager) RemoveDevice(address string) error {
	address = NormalizeAddress(address)
	m.mu.Lock()
	d, ok := m.devices[address]
	if !ok {
		m.mu.Unlock()
		return errors.NotFoundf("device %s", address)
	}
	snapshot := d.Clone()
	delete(m.devices, address)
	delete(m.clients, address)
	bus := m.eventBus
	m.mu.Unlock()

	m.logger.Info("device: removed", "address", address)
	bus.Emit(events.DeviceRemoved, snapshot)
	return nil
}

// SetDeviceName sets the display name. Local only.
func (m *Manager) SetDeviceName(address, name string) error {
	_, err := m.UpdateDevice(address, func(d *Device) { d.DeviceName = name })
	return err
}

// SetRoomName sets the room label. Local only.
func (m *Manager) SetRoomName(address, name string) error {
	_, err := m.UpdateDevice(address, func(d *Device) { d.RoomName = name })
	return err
}

// SetSelectedColor records a color the user is about to apply, ahead of any
// device confirmation. Nothing is sent to the controller; the next status
// fetch overwrites it with the confirmed color. Fans out in sync mode.
func (m *Manager) SetSelectedColor(address, hex string) error {
	norm, err := NormalizeHex(hex)
	if err != nil {
		return err
	}
	targets, err := m.targets(address)
	if err != nil {
		return err
	}
	for _, addr := range targets {
		_, _ = m.UpdateDevice(addr, func(d *Device) { d.SelectedColor = norm })
	}
	return nil
}

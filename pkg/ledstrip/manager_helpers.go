package ledstrip

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/ledsyncd/internal/errors"
)

func (m *Manager) newClient(address string) *Client {
	c := NewClient(address, m.logger, m.httpClient)
	c.toggleTimeout = m.toggleTimeout
	return c
}

// client retrieves the transport for a registered device, creating one if
// the device was registered without it.
func (m *Manager) client(address string) (*Client, error) {
	address = NormalizeAddress(address)

	m.mu.RLock()
	_, exists := m.devices[address]
	client, clientExists := m.clients[address]
	m.mu.RUnlock()

	if !exists {
		return nil, errors.NotFoundf("device %s", address)
	}
	if clientExists {
		return client, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.devices[address]; !exists {
		return nil, errors.NotFoundf("device %s", address)
	}
	if client, ok := m.clients[address]; ok {
		return client, nil
	}
	client = m.newClient(address)
	m.clients[address] = client
	return client, nil
}

// targets resolves the devices a command issued against address applies to:
// every registered device in sync mode, otherwise address alone.
func (m *Manager) targets(address string) ([]string, error) {
	address = NormalizeAddress(address)

	m.mu.RLock()
	_, exists := m.devices[address]
	m.mu.RUnlock()
	if !exists {
		return nil, errors.NotFoundf("device %s", address)
	}

	if m.SyncMode() {
		return m.Addresses(), nil
	}
	return []string{address}, nil
}

// fanOut runs fn once per target concurrently and joins the failures.
func (m *Manager) fanOut(ctx context.Context, targets []string, fn func(ctx context.Context, address string) error) error {
	errCh := make(chan error, len(targets))
	var wg sync.WaitGroup
	for _, addr := range targets {
		wg.Go(func() {
			if err := fn(ctx, addr); err != nil {
				errCh <- fmt.Errorf("%s: %w", addr, err)
			}
		})
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// FetchDeviceData loads the capability list. Up to retries attempts are made
// with a fixed pause between them; there is no pause after the last one. On
// exhaustion the device keeps an empty effect list and is labelled
// unavailable.
func (m *Manager) FetchDeviceData(ctx context.Context, address string, retries int) error {
	client, err := m.client(address)
	if err != nil {
		return err
	}
	retries = max(1, retries)

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		data, err := client.GetLedData(ctx)
		if err == nil {
			_, err = m.UpdateDevice(address, func(d *Device) { applyLedData(d, data) })
			return err
		}
		lastErr = err
		m.logger.Warn("failed to fetch device data",
			"address", address, "attempt", attempt, "of", retries, "error", err)

		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = retries
		case <-time.After(m.retryDelay):
		}
	}

	_, _ = m.UpdateDevice(address, func(d *Device) {
		d.Effects = []Effect{}
		d.DeviceName = NameUnavailable
		d.RoomName = NameUnavailable
	})
	return errors.DeviceUnavailablef("device data for %s after %d attempts: %w", address, retries, lastErr)
}

// FetchDeviceStatus reconciles the registry with the controller's reported
// status. Last state and favorites are left alone. Returns false on any
// transport failure, leaving the device untouched.
func (m *Manager) FetchDeviceStatus(ctx context.Context, address string) bool {
	client, err := m.client(address)
	if err != nil {
		return false
	}
	status, err := client.GetStatus(ctx)
	if err != nil {
		m.logger.Debug("status fetch failed", "address", address, "error", err)
		return false
	}
	dev, err := m.UpdateDevice(address, func(d *Device) { applyStatus(d, status) })
	if err != nil {
		return false
	}
	if m.logger.Enabled(ctx, slog.LevelDebug) {
		m.logger.Debug("device reconciled", "address", address, "device", dev.snapshotJSON())
	}
	return true
}

func applyLedData(d *Device, data *LedData) {
	d.Effects = data.Effects
	d.EffectCount = data.FunctionCount
	if d.EffectCount == 0 {
		d.EffectCount = len(data.Effects)
	}
	d.RoomName = NameUnknown
	if data.RoomName != "" {
		d.RoomName = data.RoomName
	}
	// A name set by the user wins over the firmware's.
	if data.DeviceName != "" && (d.DeviceName == NameUnknown || d.DeviceName == NameUnavailable) {
		d.DeviceName = data.DeviceName
	}
}

func applyStatus(d *Device, s *Status) {
	d.Brightness = WireToLocal(s.Brightness)
	hex := White
	if c, ok := s.ColorHSV(); ok {
		hex = HSVToHex(c)
	}
	d.Color = hex
	d.SelectedColor = hex

	name := s.EffectName
	if name == "" {
		name = EffectNameUnknown
	}
	d.setEffectName(name)
	if s.EffectNumber != nil {
		d.EffectNumber = int(*s.EffectNumber)
	}
	d.Status = StatusOnline
	d.LastSeen = time.Now()
}

// logDeviceInfo logs the identifying fields of a device.
func (m *Manager) logDeviceInfo(level slog.Level, message string, d *Device) {
	if d == nil {
		return
	}
	m.logger.Log(context.Background(), level, message,
		slog.String("address", d.Address),
		slog.String("name", d.DeviceName),
		slog.String("room", d.RoomName),
		slog.String("status", d.Status),
		slog.String("effect", d.EffectName),
		slog.Int("brightness", d.Brightness),
		slog.Int("effects", len(d.Effects)),
	)
}

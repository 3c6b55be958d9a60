// Package favorites manages the bounded per-device lists of saved colors and
// saved custom effects.
package favorites

import (
	"context"
	"log/slog"
	"slices"

	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/events"
	"github.com/jmylchreest/ledsyncd/pkg/ledstrip"
)

// DeviceStore is the part of the device manager favorites need.
type DeviceStore interface {
	GetDevice(address string) (ledstrip.Device, error)
	UpdateDevice(address string, fn func(*ledstrip.Device)) (ledstrip.Device, error)
	SetCustomEffect(ctx context.Context, address string, effect ledstrip.CustomEffect) error
}

// Manager edits favorites. Adding to a full list and touching an index that
// does not exist are silent no-ops: the bool results say whether anything
// changed, and errors are reserved for unknown devices and malformed input.
type Manager struct {
	store    DeviceStore
	capacity int
	logger   *slog.Logger
	bus      *events.Bus
}

// NewManager creates a favorites manager over store.
func NewManager(logger *slog.Logger, store DeviceStore, bus *events.Bus) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		capacity: config.MaxFavorites,
		logger:   logger.With("component", "favorites"),
		bus:      bus,
	}
}

// Changed is the payload of a FavoritesChanged event.
type Changed struct {
	Address string                    `json:"address"`
	Colors  []string                  `json:"colors"`
	Effects []ledstrip.FavoriteEffect `json:"effects"`
}

// edit runs fn against the device and publishes a change when fn reports one.
func (m *Manager) edit(address, op string, fn func(d *ledstrip.Device) bool) (bool, error) {
	var changed bool
	dev, err := m.store.UpdateDevice(address, func(d *ledstrip.Device) { changed = fn(d) })
	if err != nil {
		return false, err
	}
	if !changed {
		m.logger.Debug("favorites unchanged", "op", op, "address", dev.Address)
		return false, nil
	}
	m.logger.Debug("favorites changed", "op", op, "address", dev.Address,
		"colors", len(dev.FavoriteColors), "effects", len(dev.FavoriteEffects))
	m.bus.Emit(events.FavoritesChanged, Changed{
		Address: dev.Address,
		Colors:  dev.FavoriteColors,
		Effects: dev.FavoriteEffects,
	})
	return true, nil
}

// AddColor appends hex to the device's favorite colors.
func (m *Manager) AddColor(address, hex string) (bool, error) {
	norm, err := ledstrip.NormalizeHex(hex)
	if err != nil {
		return false, err
	}
	return m.edit(address, "add_color", func(d *ledstrip.Device) bool {
		if len(d.FavoriteColors) >= m.capacity {
			return false
		}
		d.FavoriteColors = append(d.FavoriteColors, norm)
		return true
	})
}

// RemoveColor deletes the favorite color at index.
func (m *Manager) RemoveColor(address string, index int) (bool, error) {
	return m.edit(address, "remove_color", func(d *ledstrip.Device) bool {
		if index < 0 || index >= len(d.FavoriteColors) {
			return false
		}
		d.FavoriteColors = slices.Delete(d.FavoriteColors, index, index+1)
		return true
	})
}

// ReplaceColor overwrites the favorite color at index.
func (m *Manager) ReplaceColor(address string, index int, hex string) (bool, error) {
	norm, err := ledstrip.NormalizeHex(hex)
	if err != nil {
		return false, err
	}
	return m.edit(address, "replace_color", func(d *ledstrip.Device) bool {
		if index < 0 || index >= len(d.FavoriteColors) {
			return false
		}
		d.FavoriteColors[index] = norm
		return true
	})
}

// AddEffect appends a saved custom effect.
func (m *Manager) AddEffect(address string, fav ledstrip.FavoriteEffect) (bool, error) {
	if err := ledstrip.CustomEffectCommand(fav.CustomEffect).Validate(); err != nil {
		return false, err
	}
	saved := ledstrip.FavoriteEffect{Name: fav.Name, CustomEffect: *fav.CustomEffect.Clone()}
	return m.edit(address, "add_effect", func(d *ledstrip.Device) bool {
		if len(d.FavoriteEffects) >= m.capacity {
			return false
		}
		d.FavoriteEffects = append(d.FavoriteEffects, saved)
		return true
	})
}

// RemoveEffect deletes the saved effect at index.
func (m *Manager) RemoveEffect(address string, index int) (bool, error) {
	return m.edit(address, "remove_effect", func(d *ledstrip.Device) bool {
		if index < 0 || index >= len(d.FavoriteEffects) {
			return false
		}
		d.FavoriteEffects = slices.Delete(d.FavoriteEffects, index, index+1)
		return true
	})
}

// ApplyEffect starts the saved effect at index on the device (and, in sync
// mode, on every device). An index that does not exist does nothing.
func (m *Manager) ApplyEffect(ctx context.Context, address string, index int) (bool, error) {
	dev, err := m.store.GetDevice(address)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(dev.FavoriteEffects) {
		return false, nil
	}
	fav := dev.FavoriteEffects[index]
	m.logger.Info("applying favorite effect", "address", dev.Address, "index", index, "name", fav.Name)
	return true, m.store.SetCustomEffect(ctx, dev.Address, fav.CustomEffect)
}

// Colors returns the device's favorite colors.
func (m *Manager) Colors(address string) ([]string, error) {
	dev, err := m.store.GetDevice(address)
	if err != nil {
		return nil, err
	}
	return dev.FavoriteColors, nil
}

// Effects returns the device's saved effects.
func (m *Manager) Effects(address string) ([]ledstrip.FavoriteEffect, error) {
	dev, err := m.store.GetDevice(address)
	if err != nil {
		return nil, err
	}
	return dev.FavoriteEffects, nil
}

// Capacity is the maximum length of each list.
func (m *Manager) Capacity() int { return m.capacity }

package ledstrip

import (
	"context"

	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/errors"
)

// Execute validates cmd and applies it to every target of address: the
// device itself, or all registered devices in sync mode. Targets run
// concurrently. A target that accepts the mutation is reconciled from a fresh
// status fetch and its remembered state is updated; a target that fails is
// logged and left as it was. The joined per-target failures are returned.
func (m *Manager) Execute(ctx context.Context, address string, cmd Command) error {
	return m.execute(ctx, address, cmd, true)
}

// ExecuteDevice is Execute for address alone, whatever the sync mode.
// Scenes use it so each device gets its own stored state.
func (m *Manager) ExecuteDevice(ctx context.Context, address string, cmd Command) error {
	return m.execute(ctx, address, cmd, false)
}

func (m *Manager) execute(ctx context.Context, address string, cmd Command, followSync bool) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	origin, err := m.GetDevice(address)
	if err != nil {
		return err
	}

	// Colors and effects are invisible at zero brightness.
	if cmd.Kind() != CommandBrightness && origin.Brightness == 0 {
		if err := m.execute(ctx, address, BrightnessCommand(config.MaxBrightness), followSync); err != nil {
			m.logger.Warn("failed to raise brightness before command",
				"address", origin.Address, "command", cmd.Kind(), "error", err)
		}
	}

	targets := []string{origin.Address}
	if followSync {
		if targets, err = m.targets(address); err != nil {
			return err
		}
	}
	m.logger.Debug("dispatching command",
		"address", origin.Address, "command", cmd.Kind(), "targets", len(targets), "sync", m.SyncMode())

	err = m.fanOut(ctx, targets, func(ctx context.Context, addr string) error {
		return m.executeOne(ctx, addr, cmd)
	})
	if err != nil {
		return errors.LogWarnAndReturn(m.logger, err, "command failed on some devices",
			"address", origin.Address, "command", cmd.Kind())
	}
	return nil
}

func (m *Manager) executeOne(ctx context.Context, address string, cmd Command) error {
	client, err := m.client(address)
	if err != nil {
		return err
	}

	var undo func(*Device)
	if t, ok := cmd.(tentativeCommand); ok {
		_, _ = m.UpdateDevice(address, func(d *Device) { undo = t.tentative(d) })
	}

	if err := cmd.send(ctx, client); err != nil {
		if undo != nil {
			_, _ = m.UpdateDevice(address, undo)
		}
		return err
	}

	m.FetchDeviceStatus(ctx, address)
	_, _ = m.UpdateDevice(address, func(d *Device) {
		if ls := cmd.recall(d); ls != nil && ls.Mode != ModeOff {
			d.LastState = ls
		}
	})
	return nil
}

// SetColor switches the target devices to a solid color.
func (m *Manager) SetColor(ctx context.Context, address string, color HSV) error {
	return m.Execute(ctx, address, ColorCommand(color))
}

// SetBrightness sets brightness on the 0-100 scale.
func (m *Manager) SetBrightness(ctx context.Context, address string, brightness int) error {
	return m.Execute(ctx, address, BrightnessCommand(brightness))
}

// SetEffect starts a built-in effect.
func (m *Manager) SetEffect(ctx context.Context, address string, functionNumber int) error {
	return m.Execute(ctx, address, EffectCommand(functionNumber))
}

// SetCustomEffect starts a built-in effect with parameter overrides.
func (m *Manager) SetCustomEffect(ctx context.Context, address string, effect CustomEffect) error {
	return m.Execute(ctx, address, CustomEffectCommand(*effect.Clone()))
}

// CycleEffect advances to the next built-in effect.
func (m *Manager) CycleEffect(ctx context.Context, address string) error {
	return m.Execute(ctx, address, CycleEffectCommand{})
}

// ToggleOnOff switches a device off, remembering what it was showing, or
// back on, replaying what it remembered.
//
// Switching off sends the raw toggle to every target. Switching on replays
// the originating device's own memory through the dispatcher, which fans it
// out in sync mode.
func (m *Manager) ToggleOnOff(ctx context.Context, address string) error {
	origin, err := m.GetDevice(address)
	if err != nil {
		return err
	}
	if origin.Mode.IsOn() {
		return m.powerOff(ctx, origin)
	}
	return m.powerOn(ctx, origin)
}

func (m *Manager) powerOff(ctx context.Context, origin Device) error {
	snapshot := &LastState{
		SelectedColor: origin.SelectedColor,
		EffectNumber:  origin.EffectNumber,
		EffectName:    origin.EffectName,
		Mode:          origin.Mode,
		Brightness:    origin.Brightness,
	}
	if origin.Mode != ModeSolidColor && origin.LastState != nil {
		snapshot.CustomEffect = origin.LastState.CustomEffect.Clone()
	}
	if _, err := m.UpdateDevice(origin.Address, func(d *Device) { d.LastState = snapshot }); err != nil {
		return err
	}

	targets, err := m.targets(origin.Address)
	if err != nil {
		return err
	}
	m.logger.Info("switching off", "address", origin.Address, "targets", len(targets))

	return m.fanOut(ctx, targets, func(ctx context.Context, addr string) error {
		client, err := m.client(addr)
		if err != nil {
			return err
		}
		if err := client.TogglePower(ctx); err != nil {
			return errors.LogWarnAndReturn(m.logger, err, "failed to switch off", "address", addr)
		}
		m.FetchDeviceStatus(ctx, addr)
		return nil
	})
}

func (m *Manager) powerOn(ctx context.Context, origin Device) error {
	ls := origin.LastState
	white := MustHexToHSV(White)
	m.logger.Info("switching on", "address", origin.Address, "remembered", ls != nil)

	var err error
	switch {
	case ls == nil:
		err = m.SetColor(ctx, origin.Address, white)
	case ls.CustomEffect != nil:
		err = m.SetCustomEffect(ctx, origin.Address, *ls.CustomEffect)
	case ls.Mode == ModeSolidColor && ls.SelectedColor != "":
		color, perr := HexToHSV(ls.SelectedColor)
		if perr != nil {
			color = white
		}
		err = m.SetColor(ctx, origin.Address, color)
	case ls.Mode != ModeSolidColor && ls.Mode != ModeOff && (ls.Mode == ModeEffect || ls.EffectNumber != 0):
		err = m.SetEffect(ctx, origin.Address, ls.EffectNumber)
	default:
		err = m.SetColor(ctx, origin.Address, white)
	}

	if ls != nil && ls.Brightness > 0 {
		if cur, gerr := m.GetDevice(origin.Address); gerr == nil && cur.Brightness != ls.Brightness {
			err = errors.Join(err, m.SetBrightness(ctx, origin.Address, ls.Brightness))
		}
	}
	return err
}

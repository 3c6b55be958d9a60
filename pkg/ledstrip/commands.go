package ledstrip

import (
	"context"
	"math"

	"github.com/jmylchreest/ledsyncd/internal/errors"
)

// CommandKind names a device mutation.
type CommandKind string

const (
	CommandColor        CommandKind = "color"
	CommandBrightness   CommandKind = "brightness"
	CommandEffect       CommandKind = "effect"
	CommandCustomEffect CommandKind = "custom_effect"
	CommandCycleEffect  CommandKind = "cycle_effect"
)

// Command is one mutation the dispatcher can fan out to devices.
type Command interface {
	// Kind identifies the command in logs.
	Kind() CommandKind

	// Validate rejects malformed values before any request is sent.
	Validate() error

	// send performs the mutation against a single controller.
	send(ctx context.Context, c *Client) error

	// recall derives the state to remember for power-on replay from the
	// reconciled device. nil leaves the remembered state alone.
	recall(d *Device) *LastState
}

// tentativeCommand is implemented by commands that write a value ahead of
// device confirmation. The returned func undoes the write.
type tentativeCommand interface {
	tentative(d *Device) (undo func(*Device))
}

// ColorCommand switches a device to a solid color.
type ColorCommand HSV

func (v ColorCommand) Kind() CommandKind { return CommandColor }

func (v ColorCommand) Validate() error {
	for _, ch := range []float64{v.H, v.S, v.V} {
		if math.IsNaN(ch) || ch < 0 || ch > 255 {
			return errors.InvalidInputf("color channels must be between 0 and 255, got h=%v s=%v v=%v", v.H, v.S, v.V)
		}
	}
	return nil
}

func (v ColorCommand) send(ctx context.Context, c *Client) error {
	return c.SetColor(ctx, HSV(v))
}

func (v ColorCommand) tentative(d *Device) func(*Device) {
	prev := d.SelectedColor
	d.SelectedColor = HSVToHex(HSV(v))
	return func(d *Device) { d.SelectedColor = prev }
}

func (v ColorCommand) recall(d *Device) *LastState {
	return &LastState{
		SelectedColor: HSVToHex(HSV(v)),
		EffectNumber:  d.EffectCount,
		EffectName:    EffectNameSolidColor,
		Mode:          ModeSolidColor,
		Brightness:    d.Brightness,
	}
}

// BrightnessCommand sets brightness on the 0-100 scale. Out-of-range values are clamped.
type BrightnessCommand int

func (v BrightnessCommand) Kind() CommandKind { return CommandBrightness }

func (v BrightnessCommand) Validate() error { return nil }

func (v BrightnessCommand) send(ctx context.Context, c *Client) error {
	return c.SetBrightness(ctx, LocalToWire(int(v)))
}

func (v BrightnessCommand) recall(*Device) *LastState { return nil }

// EffectCommand starts a built-in effect with its default parameters.
type EffectCommand int

func (v EffectCommand) Kind() CommandKind { return CommandEffect }

func (v EffectCommand) Validate() error {
	if v < 0 {
		return errors.InvalidInputf("effect number must not be negative, got %d", int(v))
	}
	return nil
}

func (v EffectCommand) send(ctx context.Context, c *Client) error {
	return c.SetEffect(ctx, int(v))
}

func (v EffectCommand) recall(d *Device) *LastState {
	return &LastState{
		SelectedColor: d.SelectedColor,
		EffectNumber:  int(v),
		EffectName:    effectName(d, int(v)),
		Mode:          ModeEffect,
		Brightness:    d.Brightness,
	}
}

// CustomEffectCommand starts a built-in effect with parameter overrides.
type CustomEffectCommand CustomEffect

func (v CustomEffectCommand) Kind() CommandKind { return CommandCustomEffect }

func (v CustomEffectCommand) Validate() error {
	if v.FunctionNumber < 0 {
		return errors.InvalidInputf("effect number must not be negative, got %d", v.FunctionNumber)
	}
	if v.Speed != nil && *v.Speed < 0 {
		return errors.InvalidInputf("speed must not be negative, got %d", *v.Speed)
	}
	for _, c := range v.Colors {
		if err := ColorCommand(c).Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (v CustomEffectCommand) send(ctx context.Context, c *Client) error {
	return c.SetCustomEffect(ctx, CustomEffect(v))
}

func (v CustomEffectCommand) recall(d *Device) *LastState {
	effect := CustomEffect(v)
	return &LastState{
		SelectedColor: d.SelectedColor,
		EffectNumber:  v.FunctionNumber,
		EffectName:    effectName(d, v.FunctionNumber),
		Mode:          ModeEffect,
		Brightness:    d.Brightness,
		CustomEffect:  effect.Clone(),
	}
}

// CycleEffectCommand advances to the controller's next built-in effect.
type CycleEffectCommand struct{}

func (CycleEffectCommand) Kind() CommandKind { return CommandCycleEffect }

func (CycleEffectCommand) Validate() error { return nil }

func (CycleEffectCommand) send(ctx context.Context, c *Client) error {
	return c.CycleEffect(ctx)
}

func (CycleEffectCommand) recall(d *Device) *LastState {
	if d.Mode != ModeEffect && d.Mode != ModeSolidColor {
		return nil
	}
	return &LastState{
		SelectedColor: d.SelectedColor,
		EffectNumber:  d.EffectNumber,
		EffectName:    d.EffectName,
		Mode:          d.Mode,
		Brightness:    d.Brightness,
	}
}

// effectName prefers the capability list, then the reconciled status.
func effectName(d *Device, fn int) string {
	if e, ok := d.EffectByNumber(fn); ok && e.Name != "" {
		return e.Name
	}
	return d.EffectName
}

package ledstrip

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Effect names the firmware and this package use as state markers.
const (
	EffectNameOff         = "LEDs Off"
	EffectNameUnavailable = "Unavailable"
	EffectNameUnknown     = "Unknown"
	EffectNameSolidColor  = "Solid Color"
)

// Placeholder values for a device that has not answered yet.
const (
	StatusLoading     = "Loading..."
	StatusOnline      = "Online"
	StatusUnavailable = "Unavailable"
	ColorUnknown      = "Unknown"
	NameUnknown       = "Unknown"
	NameUnavailable   = "Unavailable"
	White             = "#ffffff"
)

// Mode is the power-and-mode state of a device, derived from the effect name
// the firmware reports.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeOff
	ModeUnavailable
	ModeSolidColor
	ModeEffect
)

// ModeFromEffectName classifies a firmware effect name.
func ModeFromEffectName(name string) Mode {
	switch name {
	case EffectNameOff:
		return ModeOff
	case EffectNameUnavailable:
		return ModeUnavailable
	case EffectNameSolidColor:
		return ModeSolidColor
	case EffectNameUnknown, "":
		return ModeUnknown
	default:
		return ModeEffect
	}
}

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeUnavailable:
		return "unavailable"
	case ModeSolidColor:
		return "solid"
	case ModeEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// IsOn reports whether a device in this mode counts as powered on for the
// on/off toggle. Only ModeOff counts as off.
func (m Mode) IsOn() bool {
	return m != ModeOff
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "off":
		*m = ModeOff
	case "unavailable":
		*m = ModeUnavailable
	case "solid":
		*m = ModeSolidColor
	case "effect":
		*m = ModeEffect
	default:
		*m = ModeUnknown
	}
	return nil
}

// EffectNumber is a firmware function number. Controllers report it either as
// a JSON number or as a numeric string.
type EffectNumber int

func (n *EffectNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Non-numeric strings are treated as "no effect number".
		*n = 0
		return nil
	}
	*n = EffectNumber(int(f))
	return nil
}

// HSV is a device-native color. Every channel uses the 0-255 scale.
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// Effect describes one built-in pattern a controller can run.
type Effect struct {
	Name           string   `json:"name"`
	FunctionNumber int      `json:"functionNumber"`
	SpeedParams    int      `json:"speedParams"`
	ColorParams    int      `json:"colorParams"`
	Description    string   `json:"description,omitempty"`
	SampleGradient []string `json:"sampleGradient,omitempty"`
	Moving         bool     `json:"moving,omitempty"`
	Reverse        bool     `json:"reverse,omitempty"`
	Blend          bool     `json:"blend,omitempty"`
}

// CustomEffect is a built-in effect with parameter overrides. It doubles as
// the /setCustomEffect wire body and the cached shape replayed on power-on.
type CustomEffect struct {
	FunctionNumber int   `json:"functionNumber"`
	Speed          *int  `json:"speed,omitempty"`
	Colors         []HSV `json:"colors,omitempty"`
	Moving         bool  `json:"moving,omitempty"`
	Reverse        bool  `json:"reverse,omitempty"`
	Blend          bool  `json:"blend,omitempty"`
}

// Clone returns a deep copy.
func (c *CustomEffect) Clone() *CustomEffect {
	if c == nil {
		return nil
	}
	out := *c
	if c.Speed != nil {
		speed := *c.Speed
		out.Speed = &speed
	}
	out.Colors = slices.Clone(c.Colors)
	return &out
}

// LastState is the snapshot taken when a device is switched off and replayed
// when it is switched back on.
type LastState struct {
	SelectedColor string        `json:"selected_color"`
	EffectNumber  int           `json:"effect_number"`
	EffectName    string        `json:"effect_name"`
	Mode          Mode          `json:"mode"`
	Brightness    int           `json:"brightness"`
	CustomEffect  *CustomEffect `json:"custom_effect,omitempty"`
}

// Clone returns a deep copy.
func (l *LastState) Clone() *LastState {
	if l == nil {
		return nil
	}
	out := *l
	out.CustomEffect = l.CustomEffect.Clone()
	return &out
}

// FavoriteEffect is a named custom effect saved on a device.
type FavoriteEffect struct {
	Name string `json:"name"`
	CustomEffect
}

// Device is one registered LED controller.
type Device struct {
	Address         string           `json:"address"`
	Status          string           `json:"status"`
	SelectedColor   string           `json:"selected_color"`
	Color           string           `json:"color"`
	EffectNumber    int              `json:"effect_number"`
	EffectName      string           `json:"effect_name"`
	Mode            Mode             `json:"mode"`
	Brightness      int              `json:"brightness"`
	DeviceName      string           `json:"device_name"`
	RoomName        string           `json:"room_name"`
	EffectCount     int              `json:"effect_count"`
	Effects         []Effect         `json:"effects"`
	LastState       *LastState       `json:"last_state,omitempty"`
	FavoriteColors  []string         `json:"favorite_colors"`
	FavoriteEffects []FavoriteEffect `json:"favorite_effects"`
	LastSeen        time.Time        `json:"last_seen"`
}

// Clone returns a deep copy so callers can read a device without holding the registry lock.
func (d *Device) Clone() Device {
	out := *d
	out.Effects = slices.Clone(d.Effects)
	out.LastState = d.LastState.Clone()
	out.FavoriteColors = slices.Clone(d.FavoriteColors)
	out.FavoriteEffects = make([]FavoriteEffect, len(d.FavoriteEffects))
	for i, f := range d.FavoriteEffects {
		out.FavoriteEffects[i] = FavoriteEffect{Name: f.Name, CustomEffect: *f.CustomEffect.Clone()}
	}
	return out
}

// setEffectName keeps EffectName and Mode in step.
func (d *Device) setEffectName(name string) {
	d.EffectName = name
	d.Mode = ModeFromEffectName(name)
}

// EffectByNumber looks up a built-in effect in the device's capability list.
func (d *Device) EffectByNumber(fn int) (Effect, bool) {
	for _, e := range d.Effects {
		if e.FunctionNumber == fn {
			return e, true
		}
	}
	return Effect{}, false
}

func newPlaceholder(address string) *Device {
	return &Device{
		Address:         address,
		Status:          StatusLoading,
		SelectedColor:   White,
		Color:           ColorUnknown,
		EffectName:      EffectNameUnknown,
		Mode:            ModeUnknown,
		DeviceName:      NameUnknown,
		RoomName:        NameUnknown,
		Effects:         []Effect{},
		FavoriteColors:  []string{White},
		FavoriteEffects: []FavoriteEffect{},
	}
}

// snapshotJSON is used in debug logs.
func (d *Device) snapshotJSON() string {
	b, _ := json.Marshal(d)
	return string(b)
}

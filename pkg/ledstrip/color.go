package ledstrip

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/ledsyncd/internal/errors"
)

// HSVToHex renders a device-native color as a lowercase "#rrggbb" string.
//
// Channels are first normalised to H in [0,360), S and V in [0,1], then run
// through the six-sector HSV to RGB conversion. A sector outside 0..5 (only
// reachable with NaN input) renders as white.
func HSVToHex(c HSV) string {
	h := c.H / 255 * 360
	s := c.S / 255
	v := c.V / 255

	i := int(math.Floor(h/60)) % 6
	if i < 0 {
		i += 6
	}
	f := h/60 - math.Floor(h/60)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	default:
		r, g, b = 1, 1, 1
	}
	if math.IsNaN(r + g + b) {
		return White
	}
	return colorful.Color{R: r, G: g, B: b}.Clamped().Hex()
}

// HexToHSV parses "#rrggbb" or "#rgb" (any case) into device-native HSV. The
// result is not rounded, so HSVToHex(HexToHSV(x)) reproduces x exactly.
func HexToHSV(hex string) (HSV, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return HSV{}, errors.InvalidInputf("invalid hex color %q", hex)
	}
	h, s, v := c.Hsv()
	return HSV{H: h / 360 * 255, S: s * 255, V: v * 255}, nil
}

// MustHexToHSV is HexToHSV for known-good constants.
func MustHexToHSV(hex string) HSV {
	c, err := HexToHSV(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// NormalizeHex validates hex and returns its lowercase six-digit form.
func NormalizeHex(hex string) (string, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "", errors.InvalidInputf("invalid hex color %q", hex)
	}
	return c.Hex(), nil
}

// wireHSV is the integer form the firmware accepts.
type wireHSV struct {
	H int `json:"h"`
	S int `json:"s"`
	V int `json:"v"`
}

func toWireChannel(x float64) int {
	if math.IsNaN(x) {
		return 0
	}
	return max(0, min(255, int(math.Round(x))))
}

func (c HSV) wire() wireHSV {
	return wireHSV{H: toWireChannel(c.H), S: toWireChannel(c.S), V: toWireChannel(c.V)}
}

func (w wireHSV) local() HSV {
	return HSV{H: float64(w.H), S: float64(w.S), V: float64(w.V)}
}

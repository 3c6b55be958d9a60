package ledstrip

import (
	"math"
	"net/url"
	"strings"

	"github.com/jmylchreest/ledsyncd/internal/config"
)

// LocalToWire clamps a 0-100 brightness and scales it to the firmware's 0-255 range.
func LocalToWire(b int) int {
	b = config.ClampBrightness(b)
	return int(math.Round(float64(b) * config.MaxWireValue / config.MaxBrightness))
}

// WireToLocal scales a firmware 0-255 brightness to 0-100.
func WireToLocal(w int) int {
	w = max(0, min(config.MaxWireValue, w))
	return int(math.Round(float64(w) * config.MaxBrightness / config.MaxWireValue))
}

// NormalizeAddress strips a scheme and trailing slash so "http://10.0.0.4/"
// and "10.0.0.4" name the same device.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if u, err := url.Parse(address); err == nil && u.Host != "" {
		address = u.Host
	}
	return strings.TrimSuffix(address, "/")
}

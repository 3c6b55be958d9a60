// Package devicetest runs an in-memory LED controller behind httptest so the
// engine can be exercised end to end without hardware.
package devicetest

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const (
	effectOff   = "LEDs Off"
	effectSolid = "Solid Color"
)

// Effect is one built-in pattern the fake advertises.
type Effect struct {
	Name           string `json:"name"`
	FunctionNumber int    `json:"functionNumber"`
	SpeedParams    int    `json:"speedParams"`
	ColorParams    int    `json:"colorParams"`
}

// HSV is the firmware's integer color.
type HSV struct {
	H int `json:"h"`
	S int `json:"s"`
	V int `json:"v"`
}

// CustomEffect is the last /setCustomEffect body received.
type CustomEffect struct {
	FunctionNumber int   `json:"functionNumber"`
	Speed          *int  `json:"speed,omitempty"`
	Colors         []HSV `json:"colors,omitempty"`
	Moving         bool  `json:"moving,omitempty"`
	Reverse        bool  `json:"reverse,omitempty"`
	Blend          bool  `json:"blend,omitempty"`
}

// State is what the fake controller is currently showing. Brightness and
// color channels are on the firmware's 0-255 scale.
type State struct {
	Color        HSV
	Brightness   int
	EffectName   string
	EffectNumber int
	DeviceName   string
	RoomName     string
	Effects      []Effect
	LastCustom   *CustomEffect
}

// DefaultEffects is the capability list a new fake advertises.
var DefaultEffects = []Effect{
	{Name: "Rainbow", FunctionNumber: 0, SpeedParams: 1},
	{Name: "Fire", FunctionNumber: 1, SpeedParams: 1, ColorParams: 1},
	{Name: "Twinkle", FunctionNumber: 2, SpeedParams: 1, ColorParams: 2},
}

// Device is a fake controller.
type Device struct {
	server *httptest.Server

	mu       sync.Mutex
	state    State
	prevName string
	prevNum  int
	calls    map[string]int
	failing  map[string]bool
	failAll  bool
}

// Option customises a new fake.
type Option func(*State)

// WithState overrides the initial state.
func WithState(fn func(*State)) Option {
	return func(s *State) { fn(s) }
}

// New starts a fake controller showing solid white at full brightness. It is
// closed when the test ends.
func New(t testing.TB, opts ...Option) *Device {
	t.Helper()
	d := &Device{
		state: State{
			Color:        HSV{H: 0, S: 0, V: 255},
			Brightness:   255,
			EffectName:   effectSolid,
			EffectNumber: len(DefaultEffects),
			DeviceName:   "Strip",
			RoomName:     "Lounge",
			Effects:      slices.Clone(DefaultEffects),
		},
		calls:   make(map[string]int),
		failing: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(&d.state)
	}
	d.server = httptest.NewServer(d.router())
	t.Cleanup(d.server.Close)
	return d
}

// Address is the controller's "host:port".
func (d *Device) Address() string {
	return strings.TrimPrefix(d.server.URL, "http://")
}

// URL is the controller's base URL.
func (d *Device) URL() string { return d.server.URL }

// State returns a copy of the current state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.state
	s.Effects = slices.Clone(d.state.Effects)
	return s
}

// Update mutates the state in place, as if changed from the device's own buttons.
func (d *Device) Update(fn func(*State)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.state)
}

// Calls returns how many requests hit path, e.g. "/setBrightness".
func (d *Device) Calls(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[path]
}

// Fail makes every request answer 503 until called with false.
func (d *Device) Fail(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failAll = enabled
}

// FailPath makes requests to one path answer 503 until called with false.
func (d *Device) FailPath(path string, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failing[path] = enabled
}

// Unreachable returns an address nothing listens on.
func Unreachable(t testing.TB) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func (d *Device) router() http.Handler {
	r := chi.NewRouter()
	r.Use(d.count)
	r.Get("/ledData", d.handleLedData)
	r.Get("/status", d.handleStatus)
	r.Post("/setColor", d.handleSetColor)
	r.Post("/setBrightness", d.handleSetBrightness)
	r.Post("/setEffect", d.handleSetEffect)
	r.Post("/setCustomEffect", d.handleSetCustomEffect)
	r.Post("/onOff", d.handleOnOff)
	r.Post("/cycleEffect", d.handleCycleEffect)
	return r
}

func (d *Device) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		d.calls[r.URL.Path]++
		fail := d.failAll || d.failing[r.URL.Path]
		d.mu.Unlock()
		if fail {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (d *Device) handleLedData(w http.ResponseWriter, _ *http.Request) {
	d.mu.Lock()
	body := map[string]any{
		"effects":       d.state.Effects,
		"deviceName":    d.state.DeviceName,
		"roomName":      d.state.RoomName,
		"functionCount": len(d.state.Effects),
	}
	d.mu.Unlock()
	writeJSON(w, body)
}

func (d *Device) handleStatus(w http.ResponseWriter, _ *http.Request) {
	d.mu.Lock()
	body := map[string]any{
		"color":        d.state.Color,
		"brightness":   d.state.Brightness,
		"effectName":   d.state.EffectName,
		"effectNumber": d.state.EffectNumber,
	}
	d.mu.Unlock()
	writeJSON(w, body)
}

func (d *Device) handleSetColor(w http.ResponseWriter, r *http.Request) {
	var c HSV
	if !decode(w, r, &c) {
		return
	}
	d.mu.Lock()
	d.state.Color = c
	d.state.EffectName = effectSolid
	d.state.EffectNumber = len(d.state.Effects)
	d.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (d *Device) handleSetBrightness(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Brightness int `json:"brightness"`
	}
	if !decode(w, r, &body) {
		return
	}
	d.mu.Lock()
	d.state.Brightness = body.Brightness
	d.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

// effectNameLocked requires d.mu.
func (d *Device) effectNameLocked(fn int) string {
	for _, e := range d.state.Effects {
		if e.FunctionNumber == fn {
			return e.Name
		}
	}
	return fmt.Sprintf("Effect %d", fn)
}

func (d *Device) handleSetEffect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FunctionNumber int `json:"functionNumber"`
	}
	if !decode(w, r, &body) {
		return
	}
	d.mu.Lock()
	d.state.EffectNumber = body.FunctionNumber
	d.state.EffectName = d.effectNameLocked(body.FunctionNumber)
	d.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (d *Device) handleSetCustomEffect(w http.ResponseWriter, r *http.Request) {
	var body CustomEffect
	if !decode(w, r, &body) {
		return
	}
	d.mu.Lock()
	d.state.EffectNumber = body.FunctionNumber
	d.state.EffectName = d.effectNameLocked(body.FunctionNumber)
	d.state.LastCustom = &body
	if len(body.Colors) > 0 {
		d.state.Color = body.Colors[0]
	}
	d.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (d *Device) handleOnOff(w http.ResponseWriter, _ *http.Request) {
	d.mu.Lock()
	if d.state.EffectName == effectOff {
		d.state.EffectName = d.prevName
		d.state.EffectNumber = d.prevNum
	} else {
		d.prevName = d.state.EffectName
		d.prevNum = d.state.EffectNumber
		d.state.EffectName = effectOff
	}
	d.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (d *Device) handleCycleEffect(w http.ResponseWriter, _ *http.Request) {
	d.mu.Lock()
	if n := len(d.state.Effects); n > 0 {
		next := 0
		if d.state.EffectName != effectSolid && d.state.EffectName != effectOff {
			next = (d.state.EffectNumber + 1) % n
		}
		d.state.EffectNumber = d.state.Effects[next].FunctionNumber
		d.state.EffectName = d.state.Effects[next].Name
	}
	d.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

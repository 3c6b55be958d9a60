package ledstrip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/errors"
)

// LedData is the /ledData capability response.
type LedData struct {
	Effects       []Effect `json:"effects"`
	DeviceName    string   `json:"deviceName,omitempty"`
	RoomName      string   `json:"roomName,omitempty"`
	FunctionCount int      `json:"functionCount,omitempty"`
}

// Status is the /status response. Color and brightness are on the 0-255 scale.
type Status struct {
	Color        *wireHSV      `json:"color"`
	Brightness   int           `json:"brightness"`
	EffectName   string        `json:"effectName"`
	EffectNumber *EffectNumber `json:"effectNumber,omitempty"`
}

// ColorHSV returns the reported color, or false when the firmware omitted it.
func (s *Status) ColorHSV() (HSV, bool) {
	if s.Color == nil {
		return HSV{}, false
	}
	return s.Color.local(), true
}

// Client talks to one controller. It is the only code in the daemon that
// touches the network on a device's behalf.
type Client struct {
	address       string
	baseURL       string
	httpClient    *http.Client
	toggleTimeout time.Duration
	logger        *slog.Logger
}

// NewClient creates a client for the controller at address ("host" or
// "host:port"). httpClient may be nil; the default has a 5s timeout.
func NewClient(address string, logger *slog.Logger, httpClient *http.Client) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.DefaultRequestTimeout}
	}
	address = NormalizeAddress(address)
	return &Client{
		address:       address,
		baseURL:       "http://" + address,
		httpClient:    httpClient,
		toggleTimeout: config.DefaultToggleTimeout,
		logger:        logger.With("device", address),
	}
}

// Address returns the normalised device address.
func (c *Client) Address() string { return c.address }

// GetLedData queries the capability endpoint.
func (c *Client) GetLedData(ctx context.Context) (*LedData, error) {
	var data LedData
	if err := c.do(ctx, http.MethodGet, "/ledData", nil, &data); err != nil {
		return nil, err
	}
	if data.Effects == nil {
		data.Effects = []Effect{}
	}
	return &data, nil
}

// GetStatus queries the status endpoint.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.do(ctx, http.MethodGet, "/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetColor switches the controller to a solid color.
func (c *Client) SetColor(ctx context.Context, color HSV) error {
	return c.do(ctx, http.MethodPost, "/setColor", color.wire(), nil)
}

// SetBrightness sends a brightness already converted to the 0-255 scale.
func (c *Client) SetBrightness(ctx context.Context, wire int) error {
	return c.do(ctx, http.MethodPost, "/setBrightness", map[string]int{"brightness": wire}, nil)
}

// SetEffect starts a built-in effect with its default parameters.
func (c *Client) SetEffect(ctx context.Context, functionNumber int) error {
	return c.do(ctx, http.MethodPost, "/setEffect", map[string]int{"functionNumber": functionNumber}, nil)
}

// customEffectBody is CustomEffect with integer wire colors.
type customEffectBody struct {
	FunctionNumber int       `json:"functionNumber"`
	Speed          *int      `json:"speed,omitempty"`
	Colors         []wireHSV `json:"colors,omitempty"`
	Moving         bool      `json:"moving,omitempty"`
	Reverse        bool      `json:"reverse,omitempty"`
	Blend          bool      `json:"blend,omitempty"`
}

// SetCustomEffect starts a built-in effect with parameter overrides.
func (c *Client) SetCustomEffect(ctx context.Context, effect CustomEffect) error {
	body := customEffectBody{
		FunctionNumber: effect.FunctionNumber,
		Speed:          effect.Speed,
		Moving:         effect.Moving,
		Reverse:        effect.Reverse,
		Blend:          effect.Blend,
	}
	for _, col := range effect.Colors {
		body.Colors = append(body.Colors, col.wire())
	}
	ctx, cancel := context.WithTimeout(ctx, c.toggleTimeout)
	defer cancel()
	return c.do(ctx, http.MethodPost, "/setCustomEffect", body, nil)
}

// TogglePower flips the controller's power state.
func (c *Client) TogglePower(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.toggleTimeout)
	defer cancel()
	return c.do(ctx, http.MethodPost, "/onOff", struct{}{}, nil)
}

// CycleEffect advances the controller to its next built-in effect.
func (c *Client) CycleEffect(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/cycleEffect", nil, nil)
}

// do sends one request. Every failure is wrapped with ErrDeviceUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.InvalidInputf("failed to marshal %s body: %v", path, err)
		}
		reader = bytes.NewReader(payload)
		c.logger.Debug("device request", "method", method, "url", url, "payload", string(payload))
	} else {
		c.logger.Debug("device request", "method", method, "url", url)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.DeviceUnavailablef("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.DeviceUnavailablef("%s %s: unexpected status code %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.DeviceUnavailablef("%s %s: failed to decode response: %w", method, path, err)
	}
	c.logger.Debug("device response", "method", method, "url", url, "response", out)
	return nil
}

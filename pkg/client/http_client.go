package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPClient represents an HTTP connection to ledsyncd.
type HTTPClient struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
}

// NewHTTP creates a new HTTP client. timeout bounds each request; commands
// that fan out to many devices can take several seconds.
func NewHTTP(logger *slog.Logger, baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx answer from the daemon.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Detail)
}

// request performs an HTTP request and decodes the JSON response.
func (c *HTTPClient) request(method, path string, body any, resp any) error {
	u := c.baseURL + path
	c.logger.Debug("HTTP request", "method", method, "url", u)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("HTTP request failed", "error", err)
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		c.logger.Debug("HTTP error response", "status", httpResp.StatusCode, "body", string(respBody))
		return &APIError{StatusCode: httpResp.StatusCode, Detail: problemDetail(respBody)}
	}

	if resp != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		c.logger.Debug("Received response", "status", httpResp.StatusCode)
	}
	return nil
}

// problemDetail extracts the message from an RFC 9457 problem body, falling
// back to the raw text.
func problemDetail(body []byte) string {
	var p struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Errors []struct {
			Message  string `json:"message"`
			Location string `json:"location"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &p); err != nil || (p.Detail == "" && p.Title == "") {
		return strings.TrimSpace(string(body))
	}
	msg := p.Detail
	if msg == "" {
		msg = p.Title
	}
	for _, e := range p.Errors {
		if e.Location != "" {
			msg += fmt.Sprintf("; %s: %s", e.Location, e.Message)
		} else {
			msg += "; " + e.Message
		}
	}
	return msg
}

func devicePath(address string, suffix ...string) string {
	p := "/api/v1/devices/" + url.PathEscape(address)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

func (c *HTTPClient) getMap(method, path string, body any) (map[string]any, error) {
	var resp map[string]any
	if err := c.request(method, path, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetVersion returns the running daemon's version information.
func (c *HTTPClient) GetVersion() (map[string]any, error) {
	return c.getMap(http.MethodGet, "/api/v1/version", nil)
}

// GetDevices returns all registered devices keyed by address.
func (c *HTTPClient) GetDevices() (map[string]any, error) {
	resp, err := c.getMap(http.MethodGet, "/api/v1/devices", nil)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return map[string]any{}, nil
	}
	return resp, nil
}

// GetDevice returns one device.
func (c *HTTPClient) GetDevice(address string) (map[string]any, error) {
	return c.getMap(http.MethodGet, devicePath(address), nil)
}

// AddDevice registers a controller. An unreachable one is still added.
func (c *HTTPClient) AddDevice(address string) (map[string]any, error) {
	return c.getMap(http.MethodPost, "/api/v1/devices", map[string]any{"address": address})
}

// RemoveDevice forgets a controller.
func (c *HTTPClient) RemoveDevice(address string) error {
	return c.request(http.MethodDelete, devicePath(address), nil, nil)
}

// SetDeviceName renames a device, its room, or both. Nil leaves a name unchanged.
func (c *HTTPClient) SetDeviceName(address string, deviceName, roomName *string) (map[string]any, error) {
	body := map[string]any{}
	if deviceName != nil {
		body["device_name"] = *deviceName
	}
	if roomName != nil {
		body["room_name"] = *roomName
	}
	return c.getMap(http.MethodPut, devicePath(address, "name"), body)
}

// SetSelectedColor records the user's chosen color without sending it.
func (c *HTTPClient) SetSelectedColor(address, hex string) (map[string]any, error) {
	return c.getMap(http.MethodPut, devicePath(address, "selected-color"), map[string]any{"color": hex})
}

// SetColor shows a solid color.
func (c *HTTPClient) SetColor(address, hex string) (map[string]any, error) {
	return c.getMap(http.MethodPost, devicePath(address, "color"), map[string]any{"hex": hex})
}

// SetBrightness sets brightness on the 0-100 scale.
func (c *HTTPClient) SetBrightness(address string, brightness int) (map[string]any, error) {
	return c.getMap(http.MethodPost, devicePath(address, "brightness"), map[string]any{"brightness": brightness})
}

// SetEffect starts a built-in effect.
func (c *HTTPClient) SetEffect(address string, functionNumber int) (map[string]any, error) {
	return c.getMap(http.MethodPost, devicePath(address, "effect"), map[string]any{"function_number": functionNumber})
}

// SetCustomEffect starts an effect with parameter overrides.
func (c *HTTPClient) SetCustomEffect(address string, effect map[string]any) (map[string]any, error) {
	return c.getMap(http.MethodPost, devicePath(address, "custom-effect"), effect)
}

// CycleEffect advances to the next built-in effect.
func (c *HTTPClient) CycleEffect(address string) (map[string]any, error) {
	return c.getMap(http.MethodPost, devicePath(address, "cycle"), nil)
}

// Toggle switches a device off, or back on to its last state.
func (c *HTTPClient) Toggle(address string) (map[string]any, error) {
	return c.getMap(http.MethodPost, devicePath(address, "toggle"), nil)
}

// GetFavorites returns a device's saved colors and effects.
func (c *HTTPClient) GetFavorites(address string) (map[string]any, error) {
	return c.getMap(http.MethodGet, devicePath(address, "favorites"), nil)
}

// AddFavoriteColor saves a color.
func (c *HTTPClient) AddFavoriteColor(address, hex string) (map[string]any, error) {
	return c.getMap(http.MethodPost, devicePath(address, "favorites", "colors"), map[string]any{"color": hex})
}

// ReplaceFavoriteColor overwrites the saved color at index.
func (c *HTTPClient) ReplaceFavoriteColor(address string, index int, hex string) (map[string]any, error) {
	return c.getMap(http.MethodPut, devicePath(address, "favorites", "colors", strconv.Itoa(index)), map[string]any{"color": hex})
}

// RemoveFavoriteColor deletes the saved color at index.
func (c *HTTPClient) RemoveFavoriteColor(address string, index int) (map[string]any, error) {
	return c.getMap(http.MethodDelete, devicePath(address, "favorites", "colors", strconv.Itoa(index)), nil)
}

// AddFavoriteEffect saves a named custom effect.
func (c *HTTPClient) AddFavoriteEffect(address string, effect map[string]any) (map[string]any, error) {
	return c.getMap(http.MethodPost, devicePath(address, "favorites", "effects"), effect)
}

// RemoveFavoriteEffect deletes the saved effect at index.
func (c *HTTPClient) RemoveFavoriteEffect(address string, index int) (map[string]any, error) {
	return c.getMap(http.MethodDelete, devicePath(address, "favorites", "effects", strconv.Itoa(index)), nil)
}

// ApplyFavoriteEffect runs the saved effect at index on the device.
func (c *HTTPClient) ApplyFavoriteEffect(address string, index int) (map[string]any, error) {
	return c.getMap(http.MethodPost, devicePath(address, "favorites", "effects", strconv.Itoa(index), "apply"), nil)
}

// GetScenes returns scenes in list order.
func (c *HTTPClient) GetScenes() ([]map[string]any, error) {
	var resp []map[string]any
	if err := c.request(http.MethodGet, "/api/v1/scenes", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return []map[string]any{}, nil
	}
	return resp, nil
}

// GetScene returns the scene at index.
func (c *HTTPClient) GetScene(index int) (map[string]any, error) {
	return c.getMap(http.MethodGet, "/api/v1/scenes/"+strconv.Itoa(index), nil)
}

// CreateScene captures a new scene from the given devices.
func (c *HTTPClient) CreateScene(name string, devices []SceneDevice) (map[string]any, error) {
	return c.getMap(http.MethodPost, "/api/v1/scenes", map[string]any{"name": name, "devices": devices})
}

// UpdateScene replaces the scene at index. An empty name keeps the current one.
func (c *HTTPClient) UpdateScene(index int, name string, devices []SceneDevice) (map[string]any, error) {
	body := map[string]any{"devices": devices}
	if name != "" {
		body["name"] = name
	}
	return c.getMap(http.MethodPut, "/api/v1/scenes/"+strconv.Itoa(index), body)
}

// DeleteScene removes the scene at index. It reports false when there was no
// scene at that index.
func (c *HTTPClient) DeleteScene(index int) (bool, error) {
	var resp struct {
		Changed bool `json:"changed"`
	}
	if err := c.request(http.MethodDelete, "/api/v1/scenes/"+strconv.Itoa(index), nil, &resp); err != nil {
		return false, err
	}
	return resp.Changed, nil
}

// ApplyScene pushes a scene to its devices. A partial failure is not an
// error; check the returned "status" and "errors".
func (c *HTTPClient) ApplyScene(index int) (map[string]any, error) {
	return c.getMap(http.MethodPost, "/api/v1/scenes/"+strconv.Itoa(index)+"/apply", nil)
}

type syncBody struct {
	Enabled bool `json:"enabled"`
}

// GetSync reports whether sync mode is on.
func (c *HTTPClient) GetSync() (bool, error) {
	var resp syncBody
	err := c.request(http.MethodGet, "/api/v1/sync", nil, &resp)
	return resp.Enabled, err
}

// SetSync turns sync mode on or off.
func (c *HTTPClient) SetSync(enabled bool) (bool, error) {
	var resp syncBody
	err := c.request(http.MethodPut, "/api/v1/sync", syncBody{Enabled: enabled}, &resp)
	return resp.Enabled, err
}

// ToggleSync flips sync mode and returns the new value.
func (c *HTTPClient) ToggleSync() (bool, error) {
	var resp syncBody
	err := c.request(http.MethodPost, "/api/v1/sync/toggle", nil, &resp)
	return resp.Enabled, err
}

// Refresh asks the daemon to re-read every device's status.
func (c *HTTPClient) Refresh() (map[string]any, error) {
	return c.getMap(http.MethodPost, "/api/v1/refresh", nil)
}

type levelBody struct {
	Level string `json:"level"`
}

// GetLogLevel returns the daemon's log level.
func (c *HTTPClient) GetLogLevel() (string, error) {
	var resp levelBody
	err := c.request(http.MethodGet, "/api/v1/logging/level", nil, &resp)
	return resp.Level, err
}

// SetLogLevel changes the daemon's log level.
func (c *HTTPClient) SetLogLevel(level string) (string, error) {
	var resp levelBody
	err := c.request(http.MethodPut, "/api/v1/logging/level", levelBody{Level: level}, &resp)
	return resp.Level, err
}

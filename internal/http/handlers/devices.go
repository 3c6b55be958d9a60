package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/ledsyncd/internal/errors"
	"github.com/jmylchreest/ledsyncd/pkg/ledstrip"
)

// DeviceManager is the registry and dispatcher surface the device handlers use.
type DeviceManager interface {
	GetDevices() map[string]ledstrip.Device
	GetDevice(address string) (ledstrip.Device, error)
	AddDevice(ctx context.Context, address string) (ledstrip.Device, error)
	RemoveDevice(address string) error
	SetDeviceName(address, name string) error
	SetRoomName(address, name string) error
	SetSelectedColor(address, hex string) error
	SyncMode() bool
	Execute(ctx context.Context, address string, cmd ledstrip.Command) error
	ToggleOnOff(ctx context.Context, address string) error
}

// --- List Devices ---

// ListDevicesInput is the input for listing all devices.
type ListDevicesInput struct{}

// ListDevicesOutput returns devices as a map keyed by address.
type ListDevicesOutput struct {
	Body map[string]DeviceResponse
}

// --- Get Device ---

// DeviceAddressInput addresses a single device.
type DeviceAddressInput struct {
	Address string `path:"address" doc:"Device address (host or host:port)"`
}

// DeviceOutput returns one device.
type DeviceOutput struct {
	Body DeviceResponse
}

// --- Add Device ---

// AddDeviceInput is the input for registering a device.
type AddDeviceInput struct {
	Body struct {
		Address string `json:"address" doc:"Device address (host or host:port)" minLength:"1"`
	}
}

// --- Remove Device ---

// RemoveDeviceOutput is empty; the route answers 204.
type RemoveDeviceOutput struct{}

// --- Names ---

// SetDeviceNameInput renames a device or its room.
type SetDeviceNameInput struct {
	Address string `path:"address" doc:"Device address"`
	Body    struct {
		DeviceName *string `json:"device_name,omitempty" doc:"New device name"`
		RoomName   *string `json:"room_name,omitempty" doc:"New room name"`
	}
}

// --- Selected color ---

// SetSelectedColorInput updates the remembered color without touching the hardware.
type SetSelectedColorInput struct {
	Address string `path:"address" doc:"Device address"`
	Body    struct {
		Color string `json:"color" doc:"Color as #rrggbb" example:"#ff8800"`
	}
}

// --- Commands ---

// SetColorInput sets a solid color. Either hex or h/s/v must be given.
type SetColorInput struct {
	Address string `path:"address" doc:"Device address"`
	Body    struct {
		Hex string        `json:"hex,omitempty" doc:"Color as #rrggbb" example:"#ff8800"`
		HSV *ledstrip.HSV `json:"hsv,omitempty" doc:"Color as device HSV, every channel 0-255"`
	}
}

// SetBrightnessInput sets brightness on the local 0-100 scale.
type SetBrightnessInput struct {
	Address string `path:"address" doc:"Device address"`
	Body    struct {
		Brightness int `json:"brightness" doc:"Brightness level (0-100)" minimum:"0" maximum:"100"`
	}
}

// SetEffectInput starts a built-in effect.
type SetEffectInput struct {
	Address string `path:"address" doc:"Device address"`
	Body    struct {
		FunctionNumber int `json:"function_number" doc:"Built-in effect function number" minimum:"0"`
	}
}

// SetCustomEffectInput starts a built-in effect with parameter overrides.
type SetCustomEffectInput struct {
	Address string `path:"address" doc:"Device address"`
	Body    ledstrip.CustomEffect
}

// CommandOutput carries the command result. Status is 207 when the command
// fanned out and only some devices failed.
type CommandOutput struct {
	Status int
	Body   CommandResponse
}

// DeviceHandler implements device registry and command HTTP handlers.
type DeviceHandler struct {
	Devices DeviceManager
}

// ListDevices returns all registered devices keyed by address.
func (h *DeviceHandler) ListDevices(_ context.Context, _ *ListDevicesInput) (*ListDevicesOutput, error) {
	return &ListDevicesOutput{Body: DevicesMapFromLedstrip(h.Devices.GetDevices())}, nil
}

// GetDevice returns a single device.
func (h *DeviceHandler) GetDevice(_ context.Context, input *DeviceAddressInput) (*DeviceOutput, error) {
	d, err := h.Devices.GetDevice(input.Address)
	if err != nil {
		return nil, apiError(err, "Device not found")
	}
	return &DeviceOutput{Body: DeviceFromLedstrip(d)}, nil
}

// AddDevice registers a device and performs the initial fetch. An unreachable
// device is still registered and reported as Unavailable.
func (h *DeviceHandler) AddDevice(ctx context.Context, input *AddDeviceInput) (*DeviceOutput, error) {
	d, err := h.Devices.AddDevice(ctx, input.Body.Address)
	if err != nil && !errors.IsDeviceUnavailable(err) {
		return nil, apiError(err, "Error adding device")
	}
	return &DeviceOutput{Body: DeviceFromLedstrip(d)}, nil
}

// RemoveDevice unregisters a device.
func (h *DeviceHandler) RemoveDevice(_ context.Context, input *DeviceAddressInput) (*RemoveDeviceOutput, error) {
	if err := h.Devices.RemoveDevice(input.Address); err != nil {
		return nil, apiError(err, "Error removing device")
	}
	return &RemoveDeviceOutput{}, nil
}

// SetDeviceName updates the display and room names.
func (h *DeviceHandler) SetDeviceName(_ context.Context, input *SetDeviceNameInput) (*DeviceOutput, error) {
	if input.Body.DeviceName == nil && input.Body.RoomName == nil {
		return nil, huma.Error400BadRequest("device_name or room_name is required")
	}
	if input.Body.DeviceName != nil {
		if err := h.Devices.SetDeviceName(input.Address, *input.Body.DeviceName); err != nil {
			return nil, apiError(err, "Error setting device name")
		}
	}
	if input.Body.RoomName != nil {
		if err := h.Devices.SetRoomName(input.Address, *input.Body.RoomName); err != nil {
			return nil, apiError(err, "Error setting room name")
		}
	}
	return h.GetDevice(context.Background(), &DeviceAddressInput{Address: input.Address})
}

// SetSelectedColor records a color choice locally (all devices in sync mode).
func (h *DeviceHandler) SetSelectedColor(_ context.Context, input *SetSelectedColorInput) (*DeviceOutput, error) {
	if err := h.Devices.SetSelectedColor(input.Address, input.Body.Color); err != nil {
		return nil, apiError(err, "Error setting selected color")
	}
	return h.GetDevice(context.Background(), &DeviceAddressInput{Address: input.Address})
}

// SetColor sets a solid color.
func (h *DeviceHandler) SetColor(ctx context.Context, input *SetColorInput) (*CommandOutput, error) {
	var color ledstrip.HSV
	switch {
	case input.Body.HSV != nil:
		color = *input.Body.HSV
	case input.Body.Hex != "":
		c, err := ledstrip.HexToHSV(input.Body.Hex)
		if err != nil {
			return nil, apiError(err, "Invalid color")
		}
		color = c
	default:
		return nil, huma.Error400BadRequest("hex or hsv is required")
	}
	return h.execute(ctx, input.Address, ledstrip.ColorCommand(color))
}

// SetBrightness sets brightness.
func (h *DeviceHandler) SetBrightness(ctx context.Context, input *SetBrightnessInput) (*CommandOutput, error) {
	return h.execute(ctx, input.Address, ledstrip.BrightnessCommand(input.Body.Brightness))
}

// SetEffect starts a built-in effect.
func (h *DeviceHandler) SetEffect(ctx context.Context, input *SetEffectInput) (*CommandOutput, error) {
	return h.execute(ctx, input.Address, ledstrip.EffectCommand(input.Body.FunctionNumber))
}

// SetCustomEffect starts a custom effect.
func (h *DeviceHandler) SetCustomEffect(ctx context.Context, input *SetCustomEffectInput) (*CommandOutput, error) {
	return h.execute(ctx, input.Address, ledstrip.CustomEffectCommand(*input.Body.Clone()))
}

// CycleEffect advances to the controller's next effect.
func (h *DeviceHandler) CycleEffect(ctx context.Context, input *DeviceAddressInput) (*CommandOutput, error) {
	return h.execute(ctx, input.Address, ledstrip.CycleEffectCommand{})
}

// ToggleOnOff switches the device off, or back on with its remembered state.
func (h *DeviceHandler) ToggleOnOff(ctx context.Context, input *DeviceAddressInput) (*CommandOutput, error) {
	return h.respond(input.Address, h.Devices.ToggleOnOff(ctx, input.Address))
}

func (h *DeviceHandler) execute(ctx context.Context, address string, cmd ledstrip.Command) (*CommandOutput, error) {
	return h.respond(address, h.Devices.Execute(ctx, address, cmd))
}

// respond builds the command result. A fan-out where fewer devices failed
// than were addressed is reported as 207 rather than an error.
func (h *DeviceHandler) respond(address string, err error) (*CommandOutput, error) {
	syncAll := h.Devices.SyncMode()
	out := &CommandOutput{Status: http.StatusOK, Body: CommandResponse{Status: "ok", SyncAll: syncAll}}
	if err != nil {
		failures := errorList(err)
		total := 1
		if syncAll {
			total = len(h.Devices.GetDevices())
		}
		if !errors.IsDeviceUnavailable(err) || len(failures) >= total {
			return nil, apiError(err, "Error executing command")
		}
		out.Status = http.StatusMultiStatus
		out.Body.Status = "partial"
		out.Body.Errors = failures
	}

	d, derr := h.Devices.GetDevice(address)
	if derr != nil {
		return nil, apiError(derr, "Device not found")
	}
	out.Body.Device = DeviceFromLedstrip(d)
	return out, nil
}

// Ensure DeviceHandler implements the interface at compile time.
var _ DeviceHandlers = (*DeviceHandler)(nil)

// DeviceHandlers defines the interface for device operations.
type DeviceHandlers interface {
	ListDevices(ctx context.Context, input *ListDevicesInput) (*ListDevicesOutput, error)
	GetDevice(ctx context.Context, input *DeviceAddressInput) (*DeviceOutput, error)
	AddDevice(ctx context.Context, input *AddDeviceInput) (*DeviceOutput, error)
	RemoveDevice(ctx context.Context, input *DeviceAddressInput) (*RemoveDeviceOutput, error)
	SetDeviceName(ctx context.Context, input *SetDeviceNameInput) (*DeviceOutput, error)
	SetSelectedColor(ctx context.Context, input *SetSelectedColorInput) (*DeviceOutput, error)
	SetColor(ctx context.Context, input *SetColorInput) (*CommandOutput, error)
	SetBrightness(ctx context.Context, input *SetBrightnessInput) (*CommandOutput, error)
	SetEffect(ctx context.Context, input *SetEffectInput) (*CommandOutput, error)
	SetCustomEffect(ctx context.Context, input *SetCustomEffectInput) (*CommandOutput, error)
	CycleEffect(ctx context.Context, input *DeviceAddressInput) (*CommandOutput, error)
	ToggleOnOff(ctx context.Context, input *DeviceAddressInput) (*CommandOutput, error)
}

// Package handlers provides typed Huma request/response structs and handler
// implementations for the ledsyncd HTTP API.
package handlers

import (
	"time"

	"github.com/jmylchreest/ledsyncd/internal/scene"
	"github.com/jmylchreest/ledsyncd/pkg/ledstrip"
)

// --- Device types ---

// DeviceResponse is the API representation of a registered controller.
type DeviceResponse struct {
	Address         string                    `json:"address" doc:"Network address (host or host:port)"`
	Status          string                    `json:"status" doc:"Loading..., Online or Unavailable"`
	DeviceName      string                    `json:"device_name" doc:"Display name reported by the controller or set by a user"`
	RoomName        string                    `json:"room_name" doc:"Room the controller is in"`
	Mode            string                    `json:"mode" doc:"off, solid, effect, unavailable or unknown"`
	SelectedColor   string                    `json:"selected_color" doc:"Color the user picked, as #rrggbb"`
	Color           string                    `json:"color" doc:"Color the controller last reported, as #rrggbb"`
	Brightness      int                       `json:"brightness" doc:"Brightness level (0-100)"`
	EffectNumber    int                       `json:"effect_number" doc:"Function number of the running effect"`
	EffectName      string                    `json:"effect_name" doc:"Name of the running effect"`
	EffectCount     int                       `json:"effect_count" doc:"Number of built-in effects"`
	Effects         []ledstrip.Effect         `json:"effects" doc:"Built-in effects the controller offers"`
	LastState       *ledstrip.LastState       `json:"last_state,omitempty" doc:"State restored when the device is next switched on"`
	FavoriteColors  []string                  `json:"favorite_colors" doc:"Saved colors"`
	FavoriteEffects []ledstrip.FavoriteEffect `json:"favorite_effects" doc:"Saved custom effects"`
	LastSeen        time.Time                 `json:"last_seen" doc:"Last successful status read"`
}

// DeviceFromLedstrip converts a ledstrip.Device to a DeviceResponse.
func DeviceFromLedstrip(d ledstrip.Device) DeviceResponse {
	resp := DeviceResponse{
		Address:         d.Address,
		Status:          d.Status,
		DeviceName:      d.DeviceName,
		RoomName:        d.RoomName,
		Mode:            d.Mode.String(),
		SelectedColor:   d.SelectedColor,
		Color:           d.Color,
		Brightness:      d.Brightness,
		EffectNumber:    d.EffectNumber,
		EffectName:      d.EffectName,
		EffectCount:     d.EffectCount,
		Effects:         d.Effects,
		LastState:       d.LastState,
		FavoriteColors:  d.FavoriteColors,
		FavoriteEffects: d.FavoriteEffects,
		LastSeen:        d.LastSeen,
	}
	if resp.Effects == nil {
		resp.Effects = []ledstrip.Effect{}
	}
	if resp.FavoriteColors == nil {
		resp.FavoriteColors = []string{}
	}
	if resp.FavoriteEffects == nil {
		resp.FavoriteEffects = []ledstrip.FavoriteEffect{}
	}
	return resp
}

// DevicesMapFromLedstrip converts the registry snapshot to a map keyed by address.
func DevicesMapFromLedstrip(devices map[string]ledstrip.Device) map[string]DeviceResponse {
	result := make(map[string]DeviceResponse, len(devices))
	for addr, d := range devices {
		result[addr] = DeviceFromLedstrip(d)
	}
	return result
}

// --- Favorites types ---

// FavoritesResponse is the API representation of a device's saved lists.
type FavoritesResponse struct {
	Address  string                    `json:"address" doc:"Device address"`
	Changed  bool                      `json:"changed" doc:"Whether the request modified a list"`
	Capacity int                       `json:"capacity" doc:"Maximum entries per list"`
	Colors   []string                  `json:"colors" doc:"Saved colors"`
	Effects  []ledstrip.FavoriteEffect `json:"effects" doc:"Saved custom effects"`
}

// --- Scene types ---

// SceneResponse is the API representation of a scene.
type SceneResponse struct {
	Index     int                          `json:"index" doc:"Position in the scene list; used to address the scene"`
	ID        string                       `json:"id" doc:"Stable scene identifier (UUID)"`
	Name      string                       `json:"name" doc:"Display name"`
	Devices   map[string]scene.DeviceState `json:"devices" doc:"Target state per device address"`
	CreatedAt time.Time                    `json:"created_at" doc:"When the scene was created"`
	UpdatedAt time.Time                    `json:"updated_at" doc:"When the scene was last updated"`
}

// SceneFromInternal converts a scene.Scene at index to a SceneResponse.
func SceneFromInternal(index int, s scene.Scene) SceneResponse {
	devices := s.Devices
	if devices == nil {
		devices = map[string]scene.DeviceState{}
	}
	return SceneResponse{
		Index:     index,
		ID:        s.ID,
		Name:      s.Name,
		Devices:   devices,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ScenesFromInternal converts the ordered scene list.
func ScenesFromInternal(scenes []scene.Scene) []SceneResponse {
	result := make([]SceneResponse, len(scenes))
	for i, s := range scenes {
		result[i] = SceneFromInternal(i, s)
	}
	return result
}

// SceneDeviceInput is one device entry in a scene create or update request.
type SceneDeviceInput struct {
	Address string             `json:"address" doc:"Device address" minLength:"1"`
	State   scene.PartialState `json:"state,omitempty" doc:"Explicit target fields; omitted fields are captured from the live device" required:"false"`
}

func sceneConfigs(in []SceneDeviceInput) []scene.DeviceConfig {
	out := make([]scene.DeviceConfig, len(in))
	for i, d := range in {
		out[i] = scene.DeviceConfig{Address: d.Address, State: d.State}
	}
	return out
}

// --- Common response types ---

// StatusResponse is a simple status response.
type StatusResponse struct {
	Status string `json:"status" doc:"Operation status"`
}

// CommandResponse reports the outcome of a device command. Status is "ok" or
// "partial"; on partial failure Errors names each device that failed.
type CommandResponse struct {
	Status  string         `json:"status" doc:"ok or partial"`
	Errors  []string       `json:"errors,omitempty" doc:"Per-device failures when the command fanned out"`
	SyncAll bool           `json:"sync_all" doc:"Whether the command fanned out to every device"`
	Device  DeviceResponse `json:"device" doc:"Addressed device after the command"`
}

// Package client talks to a running ledsyncd over its HTTP API.
package client

// ClientInterface defines the methods for interacting with ledsyncd.
// Used for testability and mocking in the CLI.
type ClientInterface interface {
	GetVersion() (map[string]any, error)

	GetDevices() (map[string]any, error)
	GetDevice(address string) (map[string]any, error)
	AddDevice(address string) (map[string]any, error)
	RemoveDevice(address string) error
	SetDeviceName(address string, deviceName, roomName *string) (map[string]any, error)
	SetSelectedColor(address, hex string) (map[string]any, error)

	SetColor(address, hex string) (map[string]any, error)
	SetBrightness(address string, brightness int) (map[string]any, error)
	SetEffect(address string, functionNumber int) (map[string]any, error)
	SetCustomEffect(address string, effect map[string]any) (map[string]any, error)
	CycleEffect(address string) (map[string]any, error)
	Toggle(address string) (map[string]any, error)

	GetFavorites(address string) (map[string]any, error)
	AddFavoriteColor(address, hex string) (map[string]any, error)
	ReplaceFavoriteColor(address string, index int, hex string) (map[string]any, error)
	RemoveFavoriteColor(address string, index int) (map[string]any, error)
	AddFavoriteEffect(address string, effect map[string]any) (map[string]any, error)
	RemoveFavoriteEffect(address string, index int) (map[string]any, error)
	ApplyFavoriteEffect(address string, index int) (map[string]any, error)

	GetScenes() ([]map[string]any, error)
	GetScene(index int) (map[string]any, error)
	CreateScene(name string, devices []SceneDevice) (map[string]any, error)
	UpdateScene(index int, name string, devices []SceneDevice) (map[string]any, error)
	DeleteScene(index int) (bool, error)
	ApplyScene(index int) (map[string]any, error)

	GetSync() (bool, error)
	SetSync(enabled bool) (bool, error)
	ToggleSync() (bool, error)
	Refresh() (map[string]any, error)

	GetLogLevel() (string, error)
	SetLogLevel(level string) (string, error)
}

// SceneDevice is one device entry when creating or updating a scene. A nil
// State captures everything from the live device.
type SceneDevice struct {
	Address string         `json:"address"`
	State   map[string]any `json:"state,omitempty"`
}

var _ ClientInterface = (*HTTPClient)(nil)

package routes

import (
	"context"

	"github.com/jmylchreest/ledsyncd/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses; they are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		Version:   handlers.VersionInfo{Version: "dev"},
		Device:    &stubDeviceHandlers{},
		Favorites: &stubFavoritesHandlers{},
		Scene:     &stubSceneHandlers{},
		Sync:      &stubSyncHandlers{},
		Logging:   &stubLoggingHandlers{},
	}
}

// --- Device stubs ---

type stubDeviceHandlers struct{}

func (s *stubDeviceHandlers) ListDevices(_ context.Context, _ *handlers.ListDevicesInput) (*handlers.ListDevicesOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) GetDevice(_ context.Context, _ *handlers.DeviceAddressInput) (*handlers.DeviceOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) AddDevice(_ context.Context, _ *handlers.AddDeviceInput) (*handlers.DeviceOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) RemoveDevice(_ context.Context, _ *handlers.DeviceAddressInput) (*handlers.RemoveDeviceOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) SetDeviceName(_ context.Context, _ *handlers.SetDeviceNameInput) (*handlers.DeviceOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) SetSelectedColor(_ context.Context, _ *handlers.SetSelectedColorInput) (*handlers.DeviceOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) SetColor(_ context.Context, _ *handlers.SetColorInput) (*handlers.CommandOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) SetBrightness(_ context.Context, _ *handlers.SetBrightnessInput) (*handlers.CommandOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) SetEffect(_ context.Context, _ *handlers.SetEffectInput) (*handlers.CommandOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) SetCustomEffect(_ context.Context, _ *handlers.SetCustomEffectInput) (*handlers.CommandOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) CycleEffect(_ context.Context, _ *handlers.DeviceAddressInput) (*handlers.CommandOutput, error) {
	return nil, nil
}

func (s *stubDeviceHandlers) ToggleOnOff(_ context.Context, _ *handlers.DeviceAddressInput) (*handlers.CommandOutput, error) {
	return nil, nil
}

// --- Favorites stubs ---

type stubFavoritesHandlers struct{}

func (s *stubFavoritesHandlers) GetFavorites(_ context.Context, _ *handlers.DeviceAddressInput) (*handlers.FavoritesOutput, error) {
	return nil, nil
}

func (s *stubFavoritesHandlers) AddColor(_ context.Context, _ *handlers.AddFavoriteColorInput) (*handlers.FavoritesOutput, error) {
	return nil, nil
}

func (s *stubFavoritesHandlers) ReplaceColor(_ context.Context, _ *handlers.ReplaceFavoriteColorInput) (*handlers.FavoritesOutput, error) {
	return nil, nil
}

func (s *stubFavoritesHandlers) RemoveColor(_ context.Context, _ *handlers.FavoriteIndexInput) (*handlers.FavoritesOutput, error) {
	return nil, nil
}

func (s *stubFavoritesHandlers) AddEffect(_ context.Context, _ *handlers.AddFavoriteEffectInput) (*handlers.FavoritesOutput, error) {
	return nil, nil
}

func (s *stubFavoritesHandlers) RemoveEffect(_ context.Context, _ *handlers.FavoriteIndexInput) (*handlers.FavoritesOutput, error) {
	return nil, nil
}

func (s *stubFavoritesHandlers) ApplyEffect(_ context.Context, _ *handlers.FavoriteIndexInput) (*handlers.FavoritesOutput, error) {
	return nil, nil
}

// --- Scene stubs ---

type stubSceneHandlers struct{}

func (s *stubSceneHandlers) ListScenes(_ context.Context, _ *handlers.ListScenesInput) (*handlers.ListScenesOutput, error) {
	return nil, nil
}

func (s *stubSceneHandlers) GetScene(_ context.Context, _ *handlers.SceneIndexInput) (*handlers.SceneOutput, error) {
	return nil, nil
}

func (s *stubSceneHandlers) CreateScene(_ context.Context, _ *handlers.CreateSceneInput) (*handlers.SceneOutput, error) {
	return nil, nil
}

func (s *stubSceneHandlers) UpdateScene(_ context.Context, _ *handlers.UpdateSceneInput) (*handlers.SceneChangeOutput, error) {
	return nil, nil
}

func (s *stubSceneHandlers) DeleteScene(_ context.Context, _ *handlers.SceneIndexInput) (*handlers.SceneChangeOutput, error) {
	return nil, nil
}

func (s *stubSceneHandlers) ApplyScene(_ context.Context, _ *handlers.SceneIndexInput) (*handlers.ApplySceneOutput, error) {
	return nil, nil
}

// --- Sync stubs ---

type stubSyncHandlers struct{}

func (s *stubSyncHandlers) GetSync(_ context.Context, _ *handlers.SyncInput) (*handlers.SyncOutput, error) {
	return nil, nil
}

func (s *stubSyncHandlers) SetSync(_ context.Context, _ *handlers.SetSyncInput) (*handlers.SyncOutput, error) {
	return nil, nil
}

func (s *stubSyncHandlers) ToggleSync(_ context.Context, _ *handlers.SyncInput) (*handlers.SyncOutput, error) {
	return nil, nil
}

func (s *stubSyncHandlers) RequestRefresh(_ context.Context, _ *handlers.RefreshInput) (*handlers.RefreshOutput, error) {
	return nil, nil
}

func (s *stubSyncHandlers) LastRefresh(_ context.Context, _ *handlers.RefreshInput) (*handlers.RefreshOutput, error) {
	return nil, nil
}

// --- Logging stubs ---

type stubLoggingHandlers struct{}

func (s *stubLoggingHandlers) GetLevel(_ context.Context, _ *handlers.GetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}

func (s *stubLoggingHandlers) SetLevel(_ context.Context, _ *handlers.SetLevelInput) (*handlers.LevelOutput, error) {
	return nil, nil
}

var (
	_ handlers.DeviceHandlers    = (*stubDeviceHandlers)(nil)
	_ handlers.FavoritesHandlers = (*stubFavoritesHandlers)(nil)
	_ handlers.SceneHandlers     = (*stubSceneHandlers)(nil)
	_ handlers.SyncHandlers      = (*stubSyncHandlers)(nil)
	_ handlers.LoggingHandlers   = (*stubLoggingHandlers)(nil)
)

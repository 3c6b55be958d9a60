package routes

import (
	"github.com/jmylchreest/ledsyncd/internal/http/handlers"
)

// Handlers aggregates all handler interfaces for route registration.
// For the main server, pass real handler implementations.
// For OpenAPI generation, pass stub implementations.
type Handlers struct {
	Version   handlers.VersionInfo
	Device    handlers.DeviceHandlers
	Favorites handlers.FavoritesHandlers
	Scene     handlers.SceneHandlers
	Sync      handlers.SyncHandlers
	Logging   handlers.LoggingHandlers
}

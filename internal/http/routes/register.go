package routes

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/ledsyncd/internal/http/handlers"
	"github.com/jmylchreest/ledsyncd/internal/http/mw"
)

const fanOutDescription = "In sync mode the command is sent to every registered device. Returns 207 when only some devices failed."

// Register registers all API routes with the given Huma API instance.
// Pass real handler implementations for the main server, or stub implementations
// for OpenAPI generation.
func Register(api huma.API, h *Handlers) {
	// --- Health ---
	mw.Get(api, "/api/v1/health", handlers.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithOperationID("healthCheck"))

	mw.HiddenGet(api, "/healthz", handlers.HealthCheck)

	// --- Version ---
	mw.Get(api, "/api/v1/version", handlers.VersionCheck(h.Version),
		mw.WithTags("Version"),
		mw.WithSummary("Daemon version"),
		mw.WithDescription("Returns the running daemon's version, commit, and build date."),
		mw.WithOperationID("getVersion"))

	registerDevices(api, h.Device)
	registerFavorites(api, h.Favorites)
	registerScenes(api, h.Scene)
	registerSync(api, h.Sync)

	// --- Logging ---
	mw.Get(api, "/api/v1/logging/level", h.Logging.GetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Get global log level"),
		mw.WithOperationID("getLogLevel"))

	mw.Put(api, "/api/v1/logging/level", h.Logging.SetLevel,
		mw.WithTags("Logging"),
		mw.WithSummary("Set global log level"),
		mw.WithDescription("Changes the global log level at runtime. Valid values: debug, info, warn, error."),
		mw.WithOperationID("setLogLevel"))
}

func registerDevices(api huma.API, d handlers.DeviceHandlers) {
	mw.Get(api, "/api/v1/devices", d.ListDevices,
		mw.WithTags("Devices"),
		mw.WithSummary("List all devices"),
		mw.WithDescription("Returns every registered device as a map keyed by address."),
		mw.WithOperationID("listDevices"))

	mw.Post(api, "/api/v1/devices", d.AddDevice,
		mw.WithTags("Devices"),
		mw.WithSummary("Add a device"),
		mw.WithDescription("Registers a controller and reads its capabilities and status. An unreachable controller is still registered and reported as Unavailable."),
		mw.WithOperationID("addDevice"),
		mw.WithDefaultStatus(http.StatusCreated))

	mw.Get(api, "/api/v1/devices/{address}", d.GetDevice,
		mw.WithTags("Devices"),
		mw.WithSummary("Get a device"),
		mw.WithOperationID("getDevice"))

	mw.Delete(api, "/api/v1/devices/{address}", d.RemoveDevice,
		mw.WithTags("Devices"),
		mw.WithSummary("Remove a device"),
		mw.WithOperationID("removeDevice"),
		mw.WithDefaultStatus(http.StatusNoContent))

	mw.Put(api, "/api/v1/devices/{address}/name", d.SetDeviceName,
		mw.WithTags("Devices"),
		mw.WithSummary("Rename a device or its room"),
		mw.WithOperationID("setDeviceName"))

	mw.Put(api, "/api/v1/devices/{address}/selected-color", d.SetSelectedColor,
		mw.WithTags("Devices"),
		mw.WithSummary("Set the selected color"),
		mw.WithDescription("Records a color choice without sending it to the controller. Applies to every device in sync mode."),
		mw.WithOperationID("setSelectedColor"))

	mw.Post(api, "/api/v1/devices/{address}/color", d.SetColor,
		mw.WithTags("Devices"),
		mw.WithSummary("Set a solid color"),
		mw.WithDescription(fanOutDescription),
		mw.WithOperationID("setColor"))

	mw.Post(api, "/api/v1/devices/{address}/brightness", d.SetBrightness,
		mw.WithTags("Devices"),
		mw.WithSummary("Set brightness"),
		mw.WithDescription(fanOutDescription),
		mw.WithOperationID("setBrightness"))

	mw.Post(api, "/api/v1/devices/{address}/effect", d.SetEffect,
		mw.WithTags("Devices"),
		mw.WithSummary("Start a built-in effect"),
		mw.WithDescription(fanOutDescription),
		mw.WithOperationID("setEffect"))

	mw.Post(api, "/api/v1/devices/{address}/custom-effect", d.SetCustomEffect,
		mw.WithTags("Devices"),
		mw.WithSummary("Start a custom effect"),
		mw.WithDescription(fanOutDescription),
		mw.WithOperationID("setCustomEffect"))

	mw.Post(api, "/api/v1/devices/{address}/cycle", d.CycleEffect,
		mw.WithTags("Devices"),
		mw.WithSummary("Cycle to the next effect"),
		mw.WithDescription(fanOutDescription),
		mw.WithOperationID("cycleEffect"))

	mw.Post(api, "/api/v1/devices/{address}/toggle", d.ToggleOnOff,
		mw.WithTags("Devices"),
		mw.WithSummary("Toggle power"),
		mw.WithDescription("Switches the device off, or on again with its remembered color or effect. In sync mode every device receives a raw toggle."),
		mw.WithOperationID("toggleOnOff"))
}

func registerFavorites(api huma.API, f handlers.FavoritesHandlers) {
	mw.Get(api, "/api/v1/devices/{address}/favorites", f.GetFavorites,
		mw.WithTags("Favorites"),
		mw.WithSummary("List favorites"),
		mw.WithOperationID("getFavorites"))

	mw.Post(api, "/api/v1/devices/{address}/favorites/colors", f.AddColor,
		mw.WithTags("Favorites"),
		mw.WithSummary("Add a favorite color"),
		mw.WithDescription("Appends a color. A full list is left unchanged and the response reports changed=false."),
		mw.WithOperationID("addFavoriteColor"))

	mw.Put(api, "/api/v1/devices/{address}/favorites/colors/{index}", f.ReplaceColor,
		mw.WithTags("Favorites"),
		mw.WithSummary("Replace a favorite color"),
		mw.WithOperationID("replaceFavoriteColor"))

	mw.Delete(api, "/api/v1/devices/{address}/favorites/colors/{index}", f.RemoveColor,
		mw.WithTags("Favorites"),
		mw.WithSummary("Remove a favorite color"),
		mw.WithOperationID("removeFavoriteColor"))

	mw.Post(api, "/api/v1/devices/{address}/favorites/effects", f.AddEffect,
		mw.WithTags("Favorites"),
		mw.WithSummary("Save a custom effect"),
		mw.WithOperationID("addFavoriteEffect"))

	mw.Delete(api, "/api/v1/devices/{address}/favorites/effects/{index}", f.RemoveEffect,
		mw.WithTags("Favorites"),
		mw.WithSummary("Remove a saved effect"),
		mw.WithOperationID("removeFavoriteEffect"))

	mw.Post(api, "/api/v1/devices/{address}/favorites/effects/{index}/apply", f.ApplyEffect,
		mw.WithTags("Favorites"),
		mw.WithSummary("Apply a saved effect"),
		mw.WithOperationID("applyFavoriteEffect"))
}

func registerScenes(api huma.API, s handlers.SceneHandlers) {
	mw.Get(api, "/api/v1/scenes", s.ListScenes,
		mw.WithTags("Scenes"),
		mw.WithSummary("List scenes"),
		mw.WithOperationID("listScenes"))

	mw.Post(api, "/api/v1/scenes", s.CreateScene,
		mw.WithTags("Scenes"),
		mw.WithSummary("Create a scene"),
		mw.WithDescription("Captures a scene. Fields omitted for a device are taken from its live state."),
		mw.WithOperationID("createScene"),
		mw.WithDefaultStatus(http.StatusCreated))

	mw.Get(api, "/api/v1/scenes/{index}", s.GetScene,
		mw.WithTags("Scenes"),
		mw.WithSummary("Get a scene"),
		mw.WithOperationID("getScene"))

	mw.Put(api, "/api/v1/scenes/{index}", s.UpdateScene,
		mw.WithTags("Scenes"),
		mw.WithSummary("Update a scene"),
		mw.WithDescription("Re-captures the scene at index. An index with no scene changes nothing and reports changed=false."),
		mw.WithOperationID("updateScene"))

	mw.Delete(api, "/api/v1/scenes/{index}", s.DeleteScene,
		mw.WithTags("Scenes"),
		mw.WithSummary("Delete a scene"),
		mw.WithDescription("Removes the scene at index. An index with no scene reports changed=false."),
		mw.WithOperationID("deleteScene"))

	mw.Post(api, "/api/v1/scenes/{index}/apply", s.ApplyScene,
		mw.WithTags("Scenes"),
		mw.WithSummary("Apply a scene"),
		mw.WithDescription("Drives every device in the scene concurrently. Returns 207 when some devices failed and applied=false when the index named no scene."),
		mw.WithOperationID("applyScene"))
}

func registerSync(api huma.API, s handlers.SyncHandlers) {
	mw.Get(api, "/api/v1/sync", s.GetSync,
		mw.WithTags("Sync"),
		mw.WithSummary("Get sync mode"),
		mw.WithOperationID("getSyncMode"))

	mw.Put(api, "/api/v1/sync", s.SetSync,
		mw.WithTags("Sync"),
		mw.WithSummary("Set sync mode"),
		mw.WithOperationID("setSyncMode"))

	mw.Post(api, "/api/v1/sync/toggle", s.ToggleSync,
		mw.WithTags("Sync"),
		mw.WithSummary("Toggle sync mode"),
		mw.WithOperationID("toggleSyncMode"))

	mw.Post(api, "/api/v1/refresh", s.RequestRefresh,
		mw.WithTags("Sync"),
		mw.WithSummary("Refresh device status"),
		mw.WithDescription("Re-reads every device's status. Requests inside the debounce window are coalesced."),
		mw.WithOperationID("refreshDevices"))

	mw.Get(api, "/api/v1/refresh", s.LastRefresh,
		mw.WithTags("Sync"),
		mw.WithSummary("Last refresh result"),
		mw.WithOperationID("getLastRefresh"))
}

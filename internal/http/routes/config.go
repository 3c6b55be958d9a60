// Package routes is the single list of ledsyncd API operations. The daemon
// and ledsync-openapi both register through it.
package routes

import (
	"github.com/danielgtaylor/huma/v2"
)

const apiDescription = "Control and synchronise networked LED strip controllers through the ledsyncd daemon. " +
	"Commands addressed to one device fan out to every registered device while sync mode is on."

var apiTags = []*huma.Tag{
	{Name: "Health", Description: "Liveness"},
	{Name: "Version", Description: "Build information"},
	{Name: "Devices", Description: "Device registry and commands"},
	{Name: "Favorites", Description: "Per-device saved colors and effects"},
	{Name: "Scenes", Description: "Multi-device scenes"},
	{Name: "Sync", Description: "Sync mode and status refresh"},
	{Name: "Logging", Description: "Runtime log level"},
}

// NewHumaConfig returns the Huma config for the API. baseURL, when set, is
// published as the only server entry.
func NewHumaConfig(version, baseURL string) huma.Config {
	cfg := huma.DefaultConfig("ledsyncd API", version)
	cfg.Info.Description = apiDescription
	cfg.Tags = apiTags

	// No $schema links in response bodies.
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{{URL: baseURL}}
	}
	return cfg
}

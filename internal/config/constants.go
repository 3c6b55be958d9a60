package config

import "time"

const (
	// ConfigDirName is the directory name used below XDG_CONFIG_HOME.
	ConfigDirName = "ledsync"

	// DaemonConfigFilename is the daemon config file name.
	DaemonConfigFilename = "ledsyncd.yaml"

	// ClientConfigFilename is the CLI config file name.
	ClientConfigFilename = "ledsyncctl.yaml"

	// EnvPrefix prefixes every environment override, e.g. LEDSYNC_POLLING_INTERVAL.
	EnvPrefix = "LEDSYNC"

	// DefaultAPIListenAddress is the default HTTP API listen address.
	DefaultAPIListenAddress = ":9124"

	// DefaultAPIURL is what the CLI talks to when nothing else is configured.
	DefaultAPIURL = "http://127.0.0.1:9124"
)

// Device I/O timings.
const (
	// DefaultRequestTimeout bounds every controller request.
	DefaultRequestTimeout = 5 * time.Second

	// DefaultToggleTimeout bounds /onOff and /setCustomEffect, which firmware answers slowly.
	DefaultToggleTimeout = 2 * time.Second

	// DefaultFetchRetries is the number of /ledData attempts before a device is marked unavailable.
	DefaultFetchRetries = 3

	// DefaultRetryDelay is the fixed pause between /ledData attempts.
	DefaultRetryDelay = 1 * time.Second
)

// Polling timings.
const (
	// DefaultPollInterval is how often every registered device is re-read.
	DefaultPollInterval = 5 * time.Second

	// DefaultRefreshTimeout bounds one device's status fetch inside a refresh batch.
	DefaultRefreshTimeout = 5 * time.Second

	// DefaultRefreshDebounce collapses refresh bursts into one batch.
	DefaultRefreshDebounce = 1 * time.Second

	// MinPollInterval is the smallest interval accepted from config.
	MinPollInterval = 1 * time.Second
)

// Device value ranges.
const (
	// MinBrightness and MaxBrightness bound the local brightness scale.
	MinBrightness = 0
	MaxBrightness = 100

	// MaxWireValue is the top of every device-native channel (brightness, h, s, v).
	MaxWireValue = 255

	// MaxFavorites caps each per-device favorites list.
	MaxFavorites = 10
)

// Logging constants.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

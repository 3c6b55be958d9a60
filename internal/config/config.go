package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the daemon configuration. It bootstraps the device registry but is
// never written back: scenes and favorites live only for the process lifetime.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Devices DevicesConfig `mapstructure:"devices"`
	Polling PollingConfig `mapstructure:"polling"`
	Logging LoggingConfig `mapstructure:"logging"`

	v        *viper.Viper
	fileUsed string
	mu       sync.Mutex
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	ListenAddress     string `mapstructure:"listen_address"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// DevicesConfig lists controllers added at startup and their I/O timings.
type DevicesConfig struct {
	Addresses      []string      `mapstructure:"addresses"`
	SyncMode       bool          `mapstructure:"sync_mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ToggleTimeout  time.Duration `mapstructure:"toggle_timeout"`
	FetchRetries   int           `mapstructure:"fetch_retries"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
}

// PollingConfig configures the status poller.
type PollingConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`
	Debounce       time.Duration `mapstructure:"debounce"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_address", DefaultAPIListenAddress)
	v.SetDefault("server.requests_per_minute", 600)
	v.SetDefault("devices.addresses", []string{})
	v.SetDefault("devices.sync_mode", false)
	v.SetDefault("devices.request_timeout", DefaultRequestTimeout)
	v.SetDefault("devices.toggle_timeout", DefaultToggleTimeout)
	v.SetDefault("devices.fetch_retries", DefaultFetchRetries)
	v.SetDefault("devices.retry_delay", DefaultRetryDelay)
	v.SetDefault("polling.interval", DefaultPollInterval)
	v.SetDefault("polling.refresh_timeout", DefaultRefreshTimeout)
	v.SetDefault("polling.debounce", DefaultRefreshDebounce)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)
}

// New returns a Config holding only defaults, bound to v.
func New(v *viper.Viper) *Config {
	setDefaults(v)
	cfg := &Config{v: v}
	_ = cfg.decode()
	return cfg
}

// Load reads configFile (or the default daemon path when empty), applies
// LEDSYNC_* environment overrides and returns the result. A missing file is
// not an error; a malformed one is.
func Load(configFile string) (*Config, error) {
	return LoadWith(viper.New(), configFile)
}

// LoadWith is Load on a caller-supplied viper instance, so flags bound with
// BindPFlag take precedence over the file.
func LoadWith(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = GetDaemonConfigPath()
	}
	v.SetConfigFile(configFile)

	cfg := &Config{v: v}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		cfg.fileUsed = v.ConfigFileUsed()
	}

	if err := cfg.decode(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.v.Unmarshal(c); err != nil {
		return fmt.Errorf("error decoding config: %w", err)
	}
	c.Polling.Interval = ValidatePollInterval(c.Polling.Interval)
	if c.Devices.FetchRetries < 1 {
		c.Devices.FetchRetries = 1
	}
	return nil
}

// FileUsed returns the path of the file that was read, or "" when running on defaults.
func (c *Config) FileUsed() string {
	return c.fileUsed
}

// Watch re-reads the config file whenever it changes on disk and calls
// onChange with the refreshed Config. It is a no-op when no file was read.
func (c *Config) Watch(logger *slog.Logger, onChange func(*Config)) {
	if c.fileUsed == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := c.decode(); err != nil {
			logger.Error("config reload failed", "path", e.Name, "error", err)
			return
		}
		logger.Info("config reloaded", "path", e.Name)
		onChange(c)
	})
	c.v.WatchConfig()
}

package config

import (
	"os"
	"path/filepath"
	"time"
)

// GetConfigBaseDir returns the directory holding ledsync config files.
// A system service sets XDG_CONFIG_HOME=/etc/ledsyncd and gets it verbatim.
func GetConfigBaseDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		if dir == "/etc/ledsyncd" {
			return dir
		}
		return filepath.Join(dir, ConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", ConfigDirName)
}

// GetConfigPath returns the full path to a file in the config directory.
func GetConfigPath(filename string) string {
	return filepath.Join(GetConfigBaseDir(), filename)
}

// GetDaemonConfigPath returns the default daemon config path.
func GetDaemonConfigPath() string {
	return GetConfigPath(DaemonConfigFilename)
}

// GetClientConfigPath returns the default CLI config path.
func GetClientConfigPath() string {
	return GetConfigPath(ClientConfigFilename)
}

// ValidatePollInterval clamps d to MinPollInterval. Zero falls back to the default.
func ValidatePollInterval(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultPollInterval
	}
	if d < MinPollInterval {
		return MinPollInterval
	}
	return d
}

// ClampBrightness bounds b to [MinBrightness, MaxBrightness].
func ClampBrightness(b int) int {
	return max(MinBrightness, min(MaxBrightness, b))
}

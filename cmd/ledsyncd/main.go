package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/http/handlers"
	"github.com/jmylchreest/ledsyncd/internal/logging"
	"github.com/jmylchreest/ledsyncd/internal/server"
	"github.com/jmylchreest/ledsyncd/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		logger := utils.SetupErrorLogger()
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, levelVar := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	utils.SetAsDefaultLogger(logger)

	logger.Info("Starting ledsyncd",
		"version", version,
		"commit", commit,
		"buildDate", buildDate,
		"config", cfg.FileUsed(),
	)

	srv := server.New(logger, cfg, logging.NewController(logger, levelVar), handlers.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    buildDate,
	})
	if err := srv.Start(); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutting down...", "signal", sig.String())
	srv.Stop()
}

// newFlagSet declares the daemon's command line. Flags override the config
// file and LEDSYNC_* environment variables.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ledsyncd", pflag.ContinueOnError)
	fs.String("config", "", "Path to config file")
	fs.String("log-level", config.LogLevelInfo, "Log level (debug, info, warn, error)")
	fs.String("log-format", config.LogFormatText, "Log format (text, json)")
	fs.String("listen", config.DefaultAPIListenAddress, "HTTP API listen address")
	fs.StringSlice("device", nil, "Device address to register at startup (repeatable)")
	fs.Bool("sync", false, "Start with sync mode enabled")
	fs.Duration("poll-interval", config.DefaultPollInterval, "Status poll interval")
	return fs
}

// flagBindings maps config keys to the flags that override them.
var flagBindings = map[string]string{
	"logging.level":         "log-level",
	"logging.format":        "log-format",
	"server.listen_address": "listen",
	"devices.addresses":     "device",
	"devices.sync_mode":     "sync",
	"polling.interval":      "poll-interval",
}

func loadConfig(args []string) (*config.Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, flag := range flagBindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	configFile, _ := fs.GetString("config")
	return config.LoadWith(v, configFile)
}

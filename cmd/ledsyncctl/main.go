package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/ledsyncd/cmd/ledsyncctl/commands"
	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/utils"
	"github.com/jmylchreest/ledsyncd/pkg/client"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// clientSettings is the CLI's own config file, ledsyncctl.yaml.
type clientSettings struct {
	APIURL    string        `mapstructure:"api_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
}

// loadSettings reads ledsyncctl.yaml and LEDSYNC_* overrides, then applies
// any root flags the user passed.
func loadSettings(flags *pflag.FlagSet) (clientSettings, error) {
	v := viper.New()
	v.SetDefault("api_url", config.DefaultAPIURL)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("log_level", config.LogLevelWarn)
	v.SetDefault("log_format", config.LogFormatText)
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetConfigFile(config.GetClientConfigPath())
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return clientSettings{}, err
		}
	}

	for key, flag := range map[string]string{
		"api_url":    "api-url",
		"timeout":    "timeout",
		"log_level":  "log-level",
		"log_format": "log-format",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}

	var s clientSettings
	if err := v.Unmarshal(&s); err != nil {
		return clientSettings{}, err
	}
	return s, nil
}

func main() {
	rootCmd := commands.NewRootCommand(nil, version, commit, buildDate)

	// Root persistent flags are needed before the subcommand runs, so parse
	// them up front and ignore everything else.
	flags := rootCmd.PersistentFlags()
	flags.ParseErrorsAllowlist.UnknownFlags = true
	_ = flags.Parse(os.Args[1:])

	settings, err := loadSettings(flags)
	if err != nil {
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, _ := utils.SetupLogger(settings.LogLevel, settings.LogFormat)
	utils.SetAsDefaultLogger(logger)

	apiClient := client.NewHTTP(logger, settings.APIURL, settings.Timeout)

	rootCmd = commands.NewRootCommand(logger, version, commit, buildDate)
	ctx := rootCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, commands.ClientContextKey, apiClient)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

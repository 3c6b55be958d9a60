package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/ledsyncd/internal/config"
)

// NewRootCommand builds the ledsyncctl command tree. logger may be nil.
func NewRootCommand(logger *slog.Logger, version, commit, buildDate string) *cobra.Command {
	root := &cobra.Command{
		Use:          "ledsyncctl",
		Short:        "Control LED strips through ledsyncd",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("api-url", "", fmt.Sprintf("ledsyncd API URL (default %s)", config.DefaultAPIURL))
	pf.Duration("timeout", 30*time.Second, "Request timeout")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-format", "", "Log format (text, json)")

	root.AddCommand(
		NewDeviceCommand(),
		NewFavoritesCommand(),
		NewSceneCommand(),
		NewSyncCommand(),
		newRefreshCommand(),
		NewLogCommand(),
		newVersionCommand(version, commit, buildDate),
	)

	if logger != nil {
		root.SetContext(context.WithValue(context.Background(), loggerContextKey{}, logger))
	}
	return root
}

func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and daemon versions",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ledsyncctl %s (commit %s, built %s)\n", version, commit, buildDate)

			c, err := clientFromCmd(cmd)
			if err != nil {
				return
			}
			info, err := c.GetVersion()
			if err != nil {
				loggerFromCmd(cmd).Debug("daemon version query failed", "error", err)
				fmt.Println("ledsyncd   not reachable")
				return
			}
			fmt.Printf("ledsyncd   %v (commit %v, built %v)\n", info["version"], info["commit"], info["date"])
		},
	}
}

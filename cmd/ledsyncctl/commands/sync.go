package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "sync [on|off|toggle]",
		Short:     "Show or change sync mode (commands fan out to every device)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}

			var enabled bool
			switch {
			case len(args) == 0:
				enabled, err = c.GetSync()
			case args[0] == "on":
				enabled, err = c.SetSync(true)
			case args[0] == "off":
				enabled, err = c.SetSync(false)
			case args[0] == "toggle":
				enabled, err = c.ToggleSync()
			default:
				return fmt.Errorf("invalid argument %q: must be on, off or toggle", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to update sync mode: %w", err)
			}

			if enabled {
				pterm.Info.Println("Sync mode: on")
			} else {
				pterm.Info.Println("Sync mode: off")
			}
			return nil
		},
	}
	return cmd
}

func newRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-read every device's status now",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			res, err := c.Refresh()
			if err != nil {
				return fmt.Errorf("failed to refresh: %w", err)
			}
			if coalesced, _ := res["coalesced"].(bool); coalesced {
				pterm.Info.Println("A refresh is already under way")
				return nil
			}
			msg := fmt.Sprintf("Refreshed %v of %v devices", res["succeeded"], res["total"])
			if failed, _ := res["failed"].(float64); failed > 0 {
				pterm.Warning.Println(msg)
				return nil
			}
			pterm.Success.Println(msg)
			return nil
		},
	}
}

// NewLogCommand creates the log command
func NewLogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect or change the daemon's logging",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "level [debug|info|warn|error]",
		Short: "Show or set the daemon's log level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			var level string
			if len(args) == 0 {
				level, err = c.GetLogLevel()
			} else {
				level, err = c.SetLogLevel(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to access log level: %w", err)
			}
			fmt.Println(level)
			return nil
		},
	})
	return cmd
}

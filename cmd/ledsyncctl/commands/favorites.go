package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewFavoritesCommand creates the favorites command
func NewFavoritesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage a device's saved colors and effects",
	}

	cmd.AddCommand(
		newFavoritesListCommand(),
		newFavoritesAddColorCommand(),
		newFavoritesReplaceColorCommand(),
		newFavoritesRemoveColorCommand(),
		newFavoritesAddEffectCommand(),
		newFavoritesRemoveEffectCommand(),
		newFavoritesApplyCommand(),
	)
	return cmd
}

func parseIndex(raw string) (int, error) {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q", raw)
	}
	return i, nil
}

// reportFavorites prints the outcome of a list mutation. An unchanged list
// means the request was a no-op (duplicate, full list or bad index).
func reportFavorites(resp map[string]any, what string) {
	if changed, _ := resp["changed"].(bool); !changed {
		pterm.Warning.Printf("Favorites unchanged (%s)\n", what)
		return
	}
	pterm.Success.Printf("Favorites updated (%s)\n", what)
}

func newFavoritesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [address]",
		Short: "Show saved colors and effects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			addr, err := selectDevice(c, args)
			if err != nil {
				return err
			}
			favs, err := c.GetFavorites(addr)
			if err != nil {
				return fmt.Errorf("failed to get favorites: %w", err)
			}

			colors, _ := favs["colors"].([]any)
			effects, _ := favs["effects"].([]any)
			pterm.DefaultSection.Printf("Colors (%d/%v)", len(colors), favs["capacity"])
			if len(colors) == 0 {
				pterm.Info.Println("No favorite colors")
			} else {
				table := pterm.TableData{{"#", "Color"}}
				for i, col := range colors {
					table = append(table, []string{strconv.Itoa(i), fmt.Sprint(col)})
				}
				_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()
			}

			pterm.DefaultSection.Printf("Effects (%d/%v)", len(effects), favs["capacity"])
			if len(effects) == 0 {
				pterm.Info.Println("No favorite effects")
				return nil
			}
			table := pterm.TableData{{"#", "Name", "Function", "Speed"}}
			for i, e := range effects {
				em, _ := e.(map[string]any)
				speed := "-"
				if s, ok := em["speed"]; ok {
					speed = fmt.Sprint(s)
				}
				table = append(table, []string{strconv.Itoa(i), fmt.Sprint(em["name"]), fmt.Sprint(em["functionNumber"]), speed})
			}
			_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()
			return nil
		},
	}
}

func newFavoritesAddColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-color <address> <#rrggbb>",
		Short: "Save a color",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := c.AddFavoriteColor(args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to add favorite color: %w", err)
			}
			reportFavorites(resp, "add "+args[1])
			return nil
		},
	}
}

func newFavoritesReplaceColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replace-color <address> <index> <#rrggbb>",
		Short: "Overwrite a saved color",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			resp, err := c.ReplaceFavoriteColor(args[0], idx, args[2])
			if err != nil {
				return fmt.Errorf("failed to replace favorite color: %w", err)
			}
			reportFavorites(resp, fmt.Sprintf("replace #%d", idx))
			return nil
		},
	}
}

func newFavoritesRemoveColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-color <address> <index>",
		Short: "Delete a saved color",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			resp, err := c.RemoveFavoriteColor(args[0], idx)
			if err != nil {
				return fmt.Errorf("failed to remove favorite color: %w", err)
			}
			reportFavorites(resp, fmt.Sprintf("remove color #%d", idx))
			return nil
		},
	}
}

func newFavoritesAddEffectCommand() *cobra.Command {
	var (
		speed                  int
		colors                 []string
		moving, reverse, blend bool
	)
	cmd := &cobra.Command{
		Use:   "add-effect <address> <name> <function-number>",
		Short: "Save a named custom effect",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			fn, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid function number: %w", err)
			}
			body, err := customEffectBody(fn, speed, cmd.Flags().Changed("speed"), colors, moving, reverse, blend)
			if err != nil {
				return err
			}
			body["name"] = args[1]
			resp, err := c.AddFavoriteEffect(args[0], body)
			if err != nil {
				return fmt.Errorf("failed to add favorite effect: %w", err)
			}
			reportFavorites(resp, "add "+args[1])
			return nil
		},
	}
	cmd.Flags().IntVar(&speed, "speed", 0, "Effect speed")
	cmd.Flags().StringSliceVar(&colors, "color", nil, "Effect color as #rrggbb (repeatable)")
	cmd.Flags().BoolVar(&moving, "moving", false, "Animate the pattern along the strip")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Reverse direction")
	cmd.Flags().BoolVar(&blend, "blend", false, "Blend between colors")
	return cmd
}

func newFavoritesRemoveEffectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-effect <address> <index>",
		Short: "Delete a saved effect",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			resp, err := c.RemoveFavoriteEffect(args[0], idx)
			if err != nil {
				return fmt.Errorf("failed to remove favorite effect: %w", err)
			}
			reportFavorites(resp, fmt.Sprintf("remove effect #%d", idx))
			return nil
		},
	}
}

func newFavoritesApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <address> <index>",
		Short: "Run a saved effect",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			if _, err := c.ApplyFavoriteEffect(args[0], idx); err != nil {
				return fmt.Errorf("failed to apply favorite effect: %w", err)
			}
			pterm.Success.Printf("Applied favorite effect #%d\n", idx)
			return nil
		},
	}
}

package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/ledsyncd/pkg/client"
	"github.com/jmylchreest/ledsyncd/pkg/ledstrip"
)

// NewSceneCommand creates the scene command
func NewSceneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scene",
		Aliases: []string{"scenes"},
		Short:   "Capture and apply multi-device scenes",
	}

	cmd.AddCommand(
		newSceneListCommand(),
		newSceneGetCommand(),
		newSceneCreateCommand(),
		newSceneUpdateCommand(),
		newSceneDeleteCommand(),
		newSceneApplyCommand(),
	)
	return cmd
}

// sceneStateFlags are explicit target fields shared by every device given
// on the command line. Unset flags are captured from the live device.
// --color switches the device to a solid color and --effect to a built-in
// effect, so the two cannot be combined.
type sceneStateFlags struct {
	color      string
	brightness int
	effect     int
}

func (f *sceneStateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.color, "color", "", "Target solid color as #rrggbb")
	cmd.Flags().IntVar(&f.brightness, "brightness", 0, "Target brightness (0-100)")
	cmd.Flags().IntVar(&f.effect, "effect", 0, "Target built-in effect function number")
	cmd.MarkFlagsMutuallyExclusive("color", "effect")
}

func (f *sceneStateFlags) devices(cmd *cobra.Command, addrs []string) []client.SceneDevice {
	state := map[string]any{}
	if cmd.Flags().Changed("color") {
		state["selected_color"] = f.color
		state["effect_name"] = ledstrip.EffectNameSolidColor
		state["custom"] = false
	}
	if cmd.Flags().Changed("brightness") {
		state["brightness"] = f.brightness
	}
	if cmd.Flags().Changed("effect") {
		// The daemon names the effect from the device's capability list.
		state["effect_number"] = f.effect
		state["custom"] = false
	}
	if len(state) == 0 {
		state = nil
	}
	out := make([]client.SceneDevice, len(addrs))
	for i, a := range addrs {
		out[i] = client.SceneDevice{Address: a, State: state}
	}
	return out
}

func renderScene(scene map[string]any) {
	pterm.DefaultSection.Printf("%v: %v", scene["index"], scene["name"])
	devices, _ := scene["devices"].(map[string]any)
	table := pterm.TableData{{"Device", "Color", "Brightness", "Effect"}}
	for _, addr := range sortedKeys(devices) {
		st, _ := devices[addr].(map[string]any)
		effect := fmt.Sprint(st["effect_name"])
		if custom, _ := st["custom"].(bool); custom {
			effect += " (custom)"
		}
		table = append(table, []string{addr, fmt.Sprint(st["selected_color"]), fmt.Sprint(st["brightness"]), effect})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()
}

func newSceneListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			scenes, err := c.GetScenes()
			if err != nil {
				return fmt.Errorf("failed to get scenes: %w", err)
			}
			if len(scenes) == 0 {
				if !parseable {
					pterm.Info.Println("No scenes")
				}
				return nil
			}
			if parseable {
				for _, s := range scenes {
					fmt.Println(SceneParseable(s))
				}
				return nil
			}
			table := pterm.TableData{{"#", "Name", "Devices", "ID"}}
			for _, s := range scenes {
				devices, _ := s["devices"].(map[string]any)
				table = append(table, []string{
					fmt.Sprint(s["index"]),
					fmt.Sprint(s["name"]),
					strings.Join(sortedKeys(devices), ", "),
					fmt.Sprint(s["id"]),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newSceneGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <index>",
		Short: "Show one scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			scene, err := c.GetScene(idx)
			if err != nil {
				return fmt.Errorf("failed to get scene: %w", err)
			}
			renderScene(scene)
			return nil
		},
	}
}

func newSceneCreateCommand() *cobra.Command {
	var state sceneStateFlags
	cmd := &cobra.Command{
		Use:   "create <name> [address...]",
		Short: "Capture a scene from devices' current state",
		Long: "Capture a scene. With no addresses the scene is empty. " +
			"--color, --brightness and --effect override the captured values for every listed device.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			scene, err := c.CreateScene(args[0], state.devices(cmd, args[1:]))
			if err != nil {
				return fmt.Errorf("failed to create scene: %w", err)
			}
			pterm.Success.Printf("Scene %q created at index %v\n", args[0], scene["index"])
			return nil
		},
	}
	state.register(cmd)
	return cmd
}

func newSceneUpdateCommand() *cobra.Command {
	var (
		state sceneStateFlags
		name  string
	)
	cmd := &cobra.Command{
		Use:   "update <index> [address...]",
		Short: "Re-capture a scene, replacing its devices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			resp, err := c.UpdateScene(idx, name, state.devices(cmd, args[1:]))
			if err != nil {
				return fmt.Errorf("failed to update scene: %w", err)
			}
			if changed, _ := resp["changed"].(bool); !changed {
				pterm.Warning.Printf("No scene at index %d; nothing updated\n", idx)
				return nil
			}
			pterm.Success.Printf("Scene %d updated\n", idx)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New scene name")
	state.register(cmd)
	return cmd
}

func newSceneDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <index>",
		Aliases: []string{"rm"},
		Short:   "Delete a scene",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			deleted, err := c.DeleteScene(idx)
			if err != nil {
				return fmt.Errorf("failed to delete scene: %w", err)
			}
			if !deleted {
				pterm.Warning.Printf("No scene at index %d; nothing deleted\n", idx)
				return nil
			}
			pterm.Success.Printf("Scene %d deleted\n", idx)
			return nil
		},
	}
}

func newSceneApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <index>",
		Short: "Push a scene to its devices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			resp, err := c.ApplyScene(idx)
			if err != nil {
				return fmt.Errorf("failed to apply scene: %w", err)
			}
			if applied, _ := resp["applied"].(bool); !applied {
				pterm.Warning.Printf("No scene at index %d; nothing applied\n", idx)
				return nil
			}
			printResult(resp, fmt.Sprintf("Scene %d applied", idx))
			return nil
		},
	}
}

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

// NewDeviceCommand creates the device command
func NewDeviceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "device",
		Aliases: []string{"devices", "dev"},
		Short:   "Manage and control LED controllers",
	}

	cmd.AddCommand(
		newDeviceListCommand(),
		newDeviceGetCommand(),
		newDeviceAddCommand(),
		newDeviceRemoveCommand(),
		newDeviceRenameCommand(),
		newDeviceSelectColorCommand(),
		newDeviceColorCommand(),
		newDeviceBrightnessCommand(),
		newDeviceEffectCommand(),
		newDeviceCustomEffectCommand(),
		newDeviceCycleCommand(),
		newDeviceToggleCommand(),
	)

	return cmd
}

// selectDevice returns args[0], or prompts for one of the registered devices.
func selectDevice(c client.ClientInterface, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	devices, err := c.GetDevices()
	if err != nil {
		return "", fmt.Errorf("failed to get devices: %w", err)
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no devices registered")
	}

	addrs := sortedKeys(devices)
	options := make([]string, len(addrs))
	for i, addr := range addrs {
		dev, _ := devices[addr].(map[string]any)
		options[i] = fmt.Sprintf("%s (%v)", addr, dev["device_name"])
	}
	selected, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show("Select a device")
	if err != nil {
		return "", fmt.Errorf("failed to select device: %w", err)
	}
	return strings.Split(selected, " (")[0], nil
}

func newDeviceListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			devices, err := c.GetDevices()
			if err != nil {
				return fmt.Errorf("failed to get devices: %w", err)
			}

			if len(devices) == 0 {
				if !parseable {
					pterm.Info.Println("No devices registered")
				}
				return nil
			}

			for _, addr := range sortedKeys(devices) {
				dev, _ := devices[addr].(map[string]any)
				if parseable {
					fmt.Println(DeviceParseable(addr, dev))
					continue
				}
				_ = pterm.DefaultTable.WithData(DeviceTableData(addr, dev)).Render()
				pterm.Println()
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newDeviceGetCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "get [address] [property]",
		Short: "Show one device",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			addr, err := selectDevice(c, args)
			if err != nil {
				return err
			}
			dev, err := c.GetDevice(addr)
			if err != nil {
				return fmt.Errorf("failed to get device: %w", err)
			}

			if len(args) > 1 {
				property := strings.ToLower(args[1])
				value, ok := dev[property]
				if !ok {
					return fmt.Errorf("invalid property: %s", property)
				}
				if parseable {
					fmt.Printf("%s=%v\n", property, value)
				} else {
					fmt.Println(value)
				}
				return nil
			}

			if parseable {
				fmt.Println(DeviceParseable(addr, dev))
				return nil
			}
			_ = pterm.DefaultTable.WithData(DeviceTableData(addr, dev)).Render()
			if effects, ok := dev["effects"].([]any); ok && len(effects) > 0 {
				table := pterm.TableData{{"#", "Effect"}}
				for _, e := range effects {
					em, _ := e.(map[string]any)
					table = append(table, []string{fmt.Sprintf("%v", em["functionNumber"]), fmt.Sprintf("%v", em["name"])})
				}
				pterm.Println()
				_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

func newDeviceAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <address>",
		Short: "Register a controller by address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			dev, err := c.AddDevice(args[0])
			if err != nil {
				return fmt.Errorf("failed to add device: %w", err)
			}
			if dev["status"] == ledstrip.StatusUnavailable {
				pterm.Warning.Printf("Device %s added but not reachable\n", dev["address"])
				return nil
			}
			pterm.Success.Printf("Device %s added (%v)\n", dev["address"], dev["device_name"])
			return nil
		},
	}
}

func newDeviceRemoveCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove [address]",
		Aliases: []string{"rm", "delete"},
		Short:   "Forget a device",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			addr, err := selectDevice(c, args)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := pterm.DefaultInteractiveConfirm.Show("Remove device " + addr + "?")
				if err != nil || !ok {
					pterm.Info.Println("Cancelled")
					return nil
				}
			}
			if err := c.RemoveDevice(addr); err != nil {
				return fmt.Errorf("failed to remove device: %w", err)
			}
			pterm.Success.Printf("Device %s removed\n", addr)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newDeviceRenameCommand() *cobra.Command {
	var name, room string
	cmd := &cobra.Command{
		Use:   "rename [address]",
		Short: "Set a device's display name and/or room",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			var namePtr, roomPtr *string
			if cmd.Flags().Changed("name") {
				namePtr = &name
			}
			if cmd.Flags().Changed("room") {
				roomPtr = &room
			}
			if namePtr == nil && roomPtr == nil {
				return fmt.Errorf("at least one of --name or --room is required")
			}
			addr, err := selectDevice(c, args)
			if err != nil {
				return err
			}
			dev, err := c.SetDeviceName(addr, namePtr, roomPtr)
			if err != nil {
				return fmt.Errorf("failed to rename device: %w", err)
			}
			pterm.Success.Printf("Device %s is now %v in %v\n", addr, dev["device_name"], dev["room_name"])
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New device name")
	cmd.Flags().StringVar(&room, "room", "", "New room name")
	return cmd
}

func newDeviceSelectColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select-color <address> <#rrggbb>",
		Short: "Record a picked color without sending it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := c.SetSelectedColor(args[0], args[1]); err != nil {
				return fmt.Errorf("failed to set selected color: %w", err)
			}
			pterm.Success.Println("Selected color updated")
			return nil
		},
	}
}

func newDeviceColorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "color [address] [#rrggbb]",
		Short: "Show a solid color",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			addr, err := selectDevice(c, args)
			if err != nil {
				return err
			}
			var hex string
			if len(args) > 1 {
				hex = args[1]
			} else {
				hex, err = pterm.DefaultInteractiveTextInput.Show("Enter color (#rrggbb)")
				if err != nil {
					return fmt.Errorf("failed to get color: %w", err)
				}
			}
			if _, err := ledstrip.NormalizeHex(hex); err != nil {
				return fmt.Errorf("invalid color %q: %w", hex, err)
			}
			resp, err := c.SetColor(addr, hex)
			if err != nil {
				return fmt.Errorf("failed to set color: %w", err)
			}
			printResult(resp, "Color updated")
			return nil
		},
	}
}

func newDeviceBrightnessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "brightness [address] [0-100]",
		Short: "Set brightness",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			addr, err := selectDevice(c, args)
			if err != nil {
				return err
			}
			var raw string
			if len(args) > 1 {
				raw = args[1]
			} else {
				raw, err = pterm.DefaultInteractiveTextInput.Show("Enter brightness (0-100)")
				if err != nil {
					return fmt.Errorf("failed to get brightness value: %w", err)
				}
			}
			brightness, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("invalid brightness value: %w", err)
			}
			if brightness < 0 || brightness > 100 {
				return fmt.Errorf("brightness must be between 0 and 100")
			}
			resp, err := c.SetBrightness(addr, brightness)
			if err != nil {
				return fmt.Errorf("failed to set brightness: %w", err)
			}
			printResult(resp, "Brightness updated")
			return nil
		},
	}
}

func newDeviceEffectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "effect [address] [function-number]",
		Short: "Start a built-in effect",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			addr, err := selectDevice(c, args)
			if err != nil {
				return err
			}

			var fn int
			if len(args) > 1 {
				if fn, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid function number: %w", err)
				}
			} else if fn, err = selectEffect(c, addr); err != nil {
				return err
			}

			resp, err := c.SetEffect(addr, fn)
			if err != nil {
				return fmt.Errorf("failed to set effect: %w", err)
			}
			printResult(resp, "Effect started")
			return nil
		},
	}
}

// selectEffect prompts for one of the device's built-in effects.
func selectEffect(c client.ClientInterface, addr string) (int, error) {
	dev, err := c.GetDevice(addr)
	if err != nil {
		return 0, fmt.Errorf("failed to get device: %w", err)
	}
	effects, _ := dev["effects"].([]any)
	if len(effects) == 0 {
		return 0, fmt.Errorf("device %s reports no effects", addr)
	}
	options := make([]string, len(effects))
	for i, e := range effects {
		em, _ := e.(map[string]any)
		options[i] = fmt.Sprintf("%v: %v", em["functionNumber"], em["name"])
	}
	selected, err := pterm.DefaultInteractiveSelect.WithOptions(options).Show("Select an effect")
	if err != nil {
		return 0, fmt.Errorf("failed to select effect: %w", err)
	}
	return strconv.Atoi(strings.SplitN(selected, ":", 2)[0])
}

// customEffectBody builds a custom-effect request from flags.
func customEffectBody(fn int, speed int, speedSet bool, colors []string, moving, reverse, blend bool) (map[string]any, error) {
	body := map[string]any{"functionNumber": fn}
	if speedSet {
		body["speed"] = speed
	}
	if len(colors) > 0 {
		hsv := make([]ledstrip.HSV, 0, len(colors))
		for _, hex := range colors {
			c, err := ledstrip.HexToHSV(hex)
			if err != nil {
				return nil, fmt.Errorf("invalid color %q: %w", hex, err)
			}
			hsv = append(hsv, c)
		}
		body["colors"] = hsv
	}
	if moving {
		body["moving"] = true
	}
	if reverse {
		body["reverse"] = true
	}
	if blend {
		body["blend"] = true
	}
	return body, nil
}

func newDeviceCustomEffectCommand() *cobra.Command {
	var (
		speed                  int
		colors                 []string
		moving, reverse, blend bool
	)
	cmd := &cobra.Command{
		Use:   "custom-effect <address> <function-number>",
		Short: "Start an effect with custom speed, colors or direction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			fn, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid function number: %w", err)
			}
			body, err := customEffectBody(fn, speed, cmd.Flags().Changed("speed"), colors, moving, reverse, blend)
			if err != nil {
				return err
			}
			resp, err := c.SetCustomEffect(args[0], body)
			if err != nil {
				return fmt.Errorf("failed to set custom effect: %w", err)
			}
			printResult(resp, "Custom effect started")
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

func newDeviceCycleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle [address]",
		Short: "Advance to the next built-in effect",
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
			resp, err := c.CycleEffect(addr)
			if err != nil {
				return fmt.Errorf("failed to cycle effect: %w", err)
			}
			name := ""
			if dev, ok := resp["device"].(map[string]any); ok {
				name = fmt.Sprintf("%v", dev["effect_name"])
			}
			printResult(resp, "Now showing "+name)
			return nil
		},
	}
}

func newDeviceToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [address]",
		Short: "Switch off, or back on to the last state",
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
			resp, err := c.Toggle(addr)
			if err != nil {
				return fmt.Errorf("failed to toggle device: %w", err)
			}
			msg := "Toggled"
			if dev, ok := resp["device"].(map[string]any); ok {
				if dev["mode"] == "off" {
					msg = "Switched off"
				} else {
					msg = "Switched on"
				}
			}
			printResult(resp, msg)
			return nil
		},
	}
}

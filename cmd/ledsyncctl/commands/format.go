package commands

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// deviceProperties defines the order of properties in parseable output
var deviceProperties = []string{
	"address",
	"status",
	"device_name",
	"room_name",
	"mode",
	"selected_color",
	"color",
	"brightness",
	"effect_number",
	"effect_name",
	"effect_count",
}

// DeviceTableData returns the table data for a device, with bold address
func DeviceTableData(address string, device map[string]any) pterm.TableData {
	return pterm.TableData{
		[]string{pterm.Bold.Sprint("Address"), pterm.Bold.Sprint(address)},
		[]string{"Name", fmt.Sprintf("%v", device["device_name"])},
		[]string{"Room", fmt.Sprintf("%v", device["room_name"])},
		[]string{"Status", fmt.Sprintf("%v", device["status"])},
		[]string{"Mode", fmt.Sprintf("%v", device["mode"])},
		[]string{"Color", fmt.Sprintf("%v (selected %v)", device["color"], device["selected_color"])},
		[]string{"Brightness", fmt.Sprintf("%v", device["brightness"])},
		[]string{"Effect", fmt.Sprintf("%v (#%v of %v)", device["effect_name"], device["effect_number"], device["effect_count"])},
		[]string{"Last Seen", formatLastSeen(device["last_seen"])},
	}
}

// formatLastSeen formats an RFC 3339 timestamp for display
func formatLastSeen(lastSeen any) string {
	s, _ := lastSeen.(string)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil || t.IsZero() {
		return "N/A"
	}
	return t.Format(time.RFC1123Z)
}

func lastSeenUnix(lastSeen any) string {
	s, _ := lastSeen.(string)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil || t.IsZero() {
		return "0"
	}
	return fmt.Sprintf("%d", t.Unix())
}

// DeviceParseable returns the parseable key=value string for a device
func DeviceParseable(address string, device map[string]any) string {
	parts := []string{fmt.Sprintf("address=%q", address)}
	for _, prop := range deviceProperties[1:] {
		val, ok := device[prop]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s=%q", prop, v))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", prop, v))
		}
	}
	parts = append(parts, "last_seen="+lastSeenUnix(device["last_seen"]))
	return strings.Join(parts, " ")
}

// SceneParseable returns the parseable string for a scene (devices as comma-separated)
func SceneParseable(scene map[string]any) string {
	devices, _ := scene["devices"].(map[string]any)
	addrs := make([]string, 0, len(devices))
	for addr := range devices {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return fmt.Sprintf("index=%v id=%q name=%q devices=%q",
		scene["index"], scene["id"], scene["name"], strings.Join(addrs, ","))
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// printResult reports a command or apply response. A partial result is a
// warning listing each failed device, not an error.
func printResult(resp map[string]any, success string) {
	if status, _ := resp["status"].(string); status == "partial" {
		pterm.Warning.Println("Some devices did not respond:")
		if errs, ok := resp["errors"].([]any); ok {
			for _, e := range errs {
				pterm.Println("  " + fmt.Sprint(e))
			}
		}
		return
	}
	pterm.Success.Println(success)
}

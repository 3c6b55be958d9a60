package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"regexp"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/ledsyncd/pkg/client"
)

// captureStdout captures stdout during the execution of f, disables pterm color, and strips ANSI codes from the output.
func captureStdout(f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	oldPrintColor := pterm.PrintColor
	oldOutput := pterm.Output
	oldDefaultTableWriter := pterm.DefaultTable.Writer

	pterm.PrintColor = false
	pterm.Output = true
	pterm.DefaultTable.Writer = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	f()

	w.Close()
	os.Stdout = oldStdout

	pterm.PrintColor = oldPrintColor
	pterm.Output = oldOutput
	pterm.DefaultTable.Writer = oldDefaultTableWriter

	out := <-outC

	ansiRegex := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansiRegex.ReplaceAllString(out, "")
}

// runCmd executes cmd with args against c and returns its stdout.
func runCmd(cmd *cobra.Command, c client.ClientInterface, args ...string) (string, error) {
	var err error
	out := captureStdout(func() {
		cmd.SetContext(context.WithValue(context.Background(), ClientContextKey, c))
		cmd.SetArgs(args)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		err = cmd.Execute()
	})
	return out, err
}

// mockClient implements client.ClientInterface for CLI tests. It records the
// last call and returns canned data.
type mockClient struct {
	calls     []string
	lastBody  map[string]any
	lastDevs  []client.SceneDevice
	lastName  string
	sync      bool
	level     string
	partial   bool
	unchanged bool
	err       error
}

var _ client.ClientInterface = (*mockClient)(nil)

func (m *mockClient) record(call string) { m.calls = append(m.calls, call) }

func (m *mockClient) device(addr string) map[string]any {
	return map[string]any{
		"address":        addr,
		"status":         "Online",
		"device_name":    "Strip " + addr,
		"room_name":      "Lounge",
		"mode":           "solid",
		"selected_color": "#ff8800",
		"color":          "#ff8800",
		"brightness":     float64(50),
		"effect_number":  float64(0),
		"effect_name":    "Solid Color",
		"effect_count":   float64(2),
		"effects": []any{
			map[string]any{"name": "Rainbow", "functionNumber": float64(0)},
			map[string]any{"name": "Fire", "functionNumber": float64(1)},
		},
		"last_seen": "2023-10-26T10:00:00Z",
	}
}

func (m *mockClient) command(call, addr string) (map[string]any, error) {
	m.record(call + " " + addr)
	if m.err != nil {
		return nil, m.err
	}
	if m.partial {
		return map[string]any{"status": "partial", "errors": []any{"10.0.0.3: unreachable"}}, nil
	}
	dev := m.device(addr)
	if call == "toggle" {
		dev["mode"] = "off"
	}
	if call == "cycle" {
		dev["effect_name"] = "Fire"
	}
	return map[string]any{"status": "ok", "device": dev}, nil
}

func (m *mockClient) favorites(call, addr string) (map[string]any, error) {
	m.record(call + " " + addr)
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{
		"address":  addr,
		"changed":  !m.unchanged,
		"capacity": float64(10),
		"colors":   []any{"#ff0000", "#00ff00"},
		"effects":  []any{map[string]any{"name": "Warm", "functionNumber": float64(1), "speed": float64(3)}},
	}, nil
}

func (m *mockClient) GetVersion() (map[string]any, error) {
	return map[string]any{"version": "9.9.9", "commit": "deadbeef", "date": "today"}, nil
}

func (m *mockClient) GetDevices() (map[string]any, error) {
	m.record("list")
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{
		"10.0.0.2": m.device("10.0.0.2"),
		"10.0.0.3": m.device("10.0.0.3"),
	}, nil
}

func (m *mockClient) GetDevice(address string) (map[string]any, error) {
	m.record("get " + address)
	if m.err != nil {
		return nil, m.err
	}
	return m.device(address), nil
}

func (m *mockClient) AddDevice(address string) (map[string]any, error) {
	m.record("add " + address)
	dev := m.device(address)
	if m.partial {
		dev["status"] = "Unavailable"
	}
	return dev, m.err
}

func (m *mockClient) RemoveDevice(address string) error {
	m.record("remove " + address)
	return m.err
}

func (m *mockClient) SetDeviceName(address string, deviceName, roomName *string) (map[string]any, error) {
	m.record("rename " + address)
	m.lastBody = map[string]any{}
	dev := m.device(address)
	if deviceName != nil {
		m.lastBody["device_name"] = *deviceName
		dev["device_name"] = *deviceName
	}
	if roomName != nil {
		m.lastBody["room_name"] = *roomName
		dev["room_name"] = *roomName
	}
	return dev, m.err
}

func (m *mockClient) SetSelectedColor(address, hex string) (map[string]any, error) {
	m.lastBody = map[string]any{"color": hex}
	return m.command("select-color", address)
}

func (m *mockClient) SetColor(address, hex string) (map[string]any, error) {
	m.lastBody = map[string]any{"hex": hex}
	return m.command("color", address)
}

func (m *mockClient) SetBrightness(address string, brightness int) (map[string]any, error) {
	m.lastBody = map[string]any{"brightness": brightness}
	return m.command("brightness", address)
}

func (m *mockClient) SetEffect(address string, functionNumber int) (map[string]any, error) {
	m.lastBody = map[string]any{"function_number": functionNumber}
	return m.command("effect", address)
}

func (m *mockClient) SetCustomEffect(address string, effect map[string]any) (map[string]any, error) {
	m.lastBody = effect
	return m.command("custom-effect", address)
}

func (m *mockClient) CycleEffect(address string) (map[string]any, error) {
	return m.command("cycle", address)
}

func (m *mockClient) Toggle(address string) (map[string]any, error) {
	return m.command("toggle", address)
}

func (m *mockClient) GetFavorites(address string) (map[string]any, error) {
	return m.favorites("favorites", address)
}

func (m *mockClient) AddFavoriteColor(address, hex string) (map[string]any, error) {
	m.lastBody = map[string]any{"color": hex}
	return m.favorites("add-color", address)
}

func (m *mockClient) ReplaceFavoriteColor(address string, index int, hex string) (map[string]any, error) {
	m.lastBody = map[string]any{"index": index, "color": hex}
	return m.favorites("replace-color", address)
}

func (m *mockClient) RemoveFavoriteColor(address string, index int) (map[string]any, error) {
	m.lastBody = map[string]any{"index": index}
	return m.favorites("remove-color", address)
}

func (m *mockClient) AddFavoriteEffect(address string, effect map[string]any) (map[string]any, error) {
	m.lastBody = effect
	return m.favorites("add-effect", address)
}

func (m *mockClient) RemoveFavoriteEffect(address string, index int) (map[string]any, error) {
	m.lastBody = map[string]any{"index": index}
	return m.favorites("remove-effect", address)
}

func (m *mockClient) ApplyFavoriteEffect(address string, index int) (map[string]any, error) {
	m.lastBody = map[string]any{"index": index}
	return m.favorites("apply-effect", address)
}

func (m *mockClient) scene(index int) map[string]any {
	return map[string]any{
		"index": float64(index),
		"id":    "5f0c3d0e-0000-4000-8000-000000000000",
		"name":  "Evening",
		"devices": map[string]any{
			"10.0.0.3": map[string]any{"selected_color": "#ff0000", "brightness": float64(30), "effect_name": "Solid Color"},
			"10.0.0.2": map[string]any{"selected_color": "#00ff00", "brightness": float64(80), "effect_name": "Fire", "custom": true},
		},
	}
}

func (m *mockClient) GetScenes() ([]map[string]any, error) {
	m.record("scenes")
	if m.err != nil {
		return nil, m.err
	}
	return []map[string]any{m.scene(0)}, nil
}

func (m *mockClient) GetScene(index int) (map[string]any, error) {
	m.record("scene")
	return m.scene(index), m.err
}

func (m *mockClient) CreateScene(name string, devices []client.SceneDevice) (map[string]any, error) {
	m.record("create-scene")
	m.lastName, m.lastDevs = name, devices
	return map[string]any{"index": float64(1), "name": name}, m.err
}

func (m *mockClient) UpdateScene(index int, name string, devices []client.SceneDevice) (map[string]any, error) {
	m.record("update-scene")
	m.lastName, m.lastDevs = name, devices
	if m.unchanged {
		return map[string]any{"changed": false}, m.err
	}
	return map[string]any{"changed": true, "scene": m.scene(index)}, m.err
}

func (m *mockClient) DeleteScene(index int) (bool, error) {
	m.record("delete-scene")
	return !m.unchanged, m.err
}

func (m *mockClient) ApplyScene(index int) (map[string]any, error) {
	m.record("apply-scene")
	if m.partial {
		return map[string]any{"status": "partial", "applied": true, "errors": []any{"10.0.0.3: unreachable"}}, nil
	}
	return map[string]any{"status": "ok", "applied": !m.unchanged}, m.err
}

func (m *mockClient) GetSync() (bool, error) { return m.sync, m.err }

func (m *mockClient) SetSync(enabled bool) (bool, error) {
	m.sync = enabled
	return m.sync, m.err
}

func (m *mockClient) ToggleSync() (bool, error) {
	m.sync = !m.sync
	return m.sync, m.err
}

func (m *mockClient) Refresh() (map[string]any, error) {
	m.record("refresh")
	return map[string]any{"total": float64(2), "succeeded": float64(1), "failed": float64(1)}, m.err
}

func (m *mockClient) GetLogLevel() (string, error) {
	if m.level == "" {
		return "info", m.err
	}
	return m.level, m.err
}

func (m *mockClient) SetLogLevel(level string) (string, error) {
	m.level = level
	return level, m.err
}

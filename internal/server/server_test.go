package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/devicetest"
	"github.com/jmylchreest/ledsyncd/internal/http/handlers"
	"github.com/jmylchreest/ledsyncd/internal/logging"
	"github.com/jmylchreest/ledsyncd/pkg/ledstrip"
)

func testConfig(addresses ...string) *config.Config {
	cfg := config.New(viper.New())
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.RequestsPerMinute = 0
	cfg.Devices.Addresses = addresses
	cfg.Devices.RequestTimeout = time.Second
	cfg.Devices.ToggleTimeout = time.Second
	cfg.Devices.FetchRetries = 1
	cfg.Devices.RetryDelay = 0
	cfg.Polling.Interval = time.Hour
	cfg.Polling.Debounce = 0
	return cfg
}

func startServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := New(logger, cfg, nil, handlers.VersionInfo{Version: "test"})
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)
	return s
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_StartStop(t *testing.T) {
	s := startServer(t, testConfig())
	require.NotEmpty(t, s.Addr())

	resp := doJSON(t, http.MethodGet, "http://"+s.Addr()+"/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, "http://"+s.Addr()+"/api/v1/version", nil)
	var info handlers.VersionInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "test", info.Version)
}

func TestServer_ListenError(t *testing.T) {
	first := startServer(t, testConfig())

	cfg := testConfig()
	cfg.Server.ListenAddress = first.Addr()
	s := New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, nil, handlers.VersionInfo{})
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestServer_BootstrapsConfiguredDevices(t *testing.T) {
	fake := devicetest.New(t)
	dead := devicetest.Unreachable(t)
	s := startServer(t, testConfig(fake.Address(), dead))

	statusOf := func(addr string) string {
		dev, err := s.Devices().GetDevice(addr)
		if err != nil {
			return ""
		}
		return dev.Status
	}
	require.Eventually(t, func() bool {
		return statusOf(fake.Address()) == ledstrip.StatusOnline &&
			statusOf(dead) == ledstrip.StatusUnavailable
	}, 5*time.Second, 10*time.Millisecond)

	dev, err := s.Devices().GetDevice(fake.Address())
	require.NoError(t, err)
	assert.Equal(t, "Strip", dev.DeviceName)
}

func TestServer_CommandOverHTTP(t *testing.T) {
	fake := devicetest.New(t)
	s := startServer(t, testConfig())
	base := "http://" + s.Addr() + "/api/v1"

	resp := doJSON(t, http.MethodPost, base+"/devices", map[string]string{"address": fake.Address()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, base+"/devices/"+fake.Address()+"/brightness", map[string]int{"brightness": 40})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 102, fake.State().Brightness)

	resp = doJSON(t, http.MethodGet, base+"/devices/"+fake.Address(), nil)
	var dev handlers.DeviceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dev))
	assert.Equal(t, 40, dev.Brightness)
}

func TestServer_RefreshEndpoint(t *testing.T) {
	fake := devicetest.New(t)
	s := startServer(t, testConfig(fake.Address()))
	require.Eventually(t, func() bool {
		dev, err := s.Devices().GetDevice(fake.Address())
		return err == nil && dev.Status == ledstrip.StatusOnline
	}, 5*time.Second, 10*time.Millisecond)

	fake.Update(func(st *devicetest.State) { st.Brightness = 51 })

	resp := doJSON(t, http.MethodPost, "http://"+s.Addr()+"/api/v1/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dev, err := s.Devices().GetDevice(fake.Address())
	require.NoError(t, err)
	assert.Equal(t, 20, dev.Brightness)
}

func TestServer_ApplyConfigSetsLevel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	levels := logging.NewController(logger, nil)
	s := New(logger, testConfig(), levels, handlers.VersionInfo{})

	cfg := testConfig()
	cfg.Logging.Level = "debug"
	s.applyConfig(cfg)
	assert.Equal(t, "debug", levels.Level())

	cfg.Logging.Level = "loud"
	s.applyConfig(cfg)
	assert.Equal(t, "debug", levels.Level(), "invalid level is ignored")
}

// Package server wires the device engine to its HTTP API, WebSocket feed and
// status poller, and owns their lifetimes.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/errors"
	"github.com/jmylchreest/ledsyncd/internal/events"
	"github.com/jmylchreest/ledsyncd/internal/favorites"
	"github.com/jmylchreest/ledsyncd/internal/http/handlers"
	"github.com/jmylchreest/ledsyncd/internal/http/mw"
	"github.com/jmylchreest/ledsyncd/internal/http/routes"
	"github.com/jmylchreest/ledsyncd/internal/logging"
	"github.com/jmylchreest/ledsyncd/internal/poller"
	"github.com/jmylchreest/ledsyncd/internal/scene"
	"github.com/jmylchreest/ledsyncd/internal/ws"
	"github.com/jmylchreest/ledsyncd/pkg/ledstrip"
)

// Server manages the ledsyncd daemon: the device registry, scenes, favorites,
// the poller and the HTTP API.
type Server struct {
	logger  *slog.Logger
	cfg     *config.Config
	levels  *logging.Controller
	version handlers.VersionInfo

	eventBus  *events.Bus
	devices   *ledstrip.Manager
	scenes    *scene.Manager
	favorites *favorites.Manager
	poller    *poller.Poller

	rootCtx    context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup

	listener   net.Listener
	httpServer *http.Server
}

// New builds every component from cfg. Nothing runs until Start.
func New(logger *slog.Logger, cfg *config.Config, levels *logging.Controller, version handlers.VersionInfo) *Server {
	if levels == nil {
		levels = logging.NewController(logger, nil)
	}
	eventBus := events.NewBus()

	devices := ledstrip.NewManager(logger,
		ledstrip.WithRequestTimeout(cfg.Devices.RequestTimeout),
		ledstrip.WithToggleTimeout(cfg.Devices.ToggleTimeout),
		ledstrip.WithRetryPolicy(cfg.Devices.FetchRetries, cfg.Devices.RetryDelay),
		ledstrip.WithSyncMode(cfg.Devices.SyncMode),
		ledstrip.WithEventBus(eventBus),
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())

	return &Server{
		logger:    logger,
		cfg:       cfg,
		levels:    levels,
		version:   version,
		eventBus:  eventBus,
		devices:   devices,
		scenes:    scene.NewManager(logger, devices, eventBus),
		favorites: favorites.NewManager(logger, devices, eventBus),
		poller: poller.New(devices, logger,
			poller.WithInterval(cfg.Polling.Interval),
			poller.WithTimeout(cfg.Polling.RefreshTimeout),
			poller.WithDebounce(cfg.Polling.Debounce),
			poller.WithEventBus(eventBus),
		),
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
	}
}

// Devices exposes the registry, mainly for tests and embedding.
func (s *Server) Devices() *ledstrip.Manager { return s.devices }

// Start registers the configured devices, starts the poller and serves the API.
func (s *Server) Start() error {
	s.logger.Info("Starting ledsyncd server",
		"version", s.version.Version,
		"devices", len(s.cfg.Devices.Addresses),
		"sync_mode", s.devices.SyncMode())

	listener, err := net.Listen("tcp", s.cfg.Server.ListenAddress)
	if err != nil {
		return errors.LogErrorAndReturn(s.logger,
			fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.ListenAddress, err),
			"HTTP API could not start")
	}
	s.listener = listener

	wsHub := ws.NewHub(s.logger, s.eventBus, func() any {
		return handlers.DevicesMapFromLedstrip(s.devices.GetDevices())
	})
	s.goSafe("WebSocket hub", func() { wsHub.Run(s.rootCtx) })

	s.httpServer = &http.Server{
		Handler:      s.router(wsHub),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.goSafe("HTTP server", func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
	})
	s.logger.Info("HTTP API listening", "address", listener.Addr().String())

	// Devices are fetched before the first poll so the poller never races the
	// initial capability read.
	s.goSafe("device bootstrap", func() {
		s.bootstrapDevices(s.rootCtx)
		s.poller.Run(s.rootCtx)
	})

	s.cfg.Watch(s.logger, s.applyConfig)
	return nil
}

// Addr is the address the API is listening on, once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down ledsyncd server")
	s.rootCancel()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown failed", "error", err)
		}
	}

	s.logger.Info("Waiting for services to stop...")
	s.wg.Wait()
	s.logger.Info("ledsyncd server shut down gracefully")
}

func (s *Server) router(wsHub *ws.Hub) http.Handler {
	router := chi.NewRouter()
	router.Use(mw.RequestLogging(s.logger))
	router.Use(mw.RateLimitByIP(s.cfg.Server.RequestsPerMinute))

	api := humachi.New(router, routes.NewHumaConfig(s.version.Version, ""))
	routes.Register(api, &routes.Handlers{
		Version:   s.version,
		Device:    &handlers.DeviceHandler{Devices: s.devices},
		Favorites: &handlers.FavoritesHandler{Favorites: s.favorites},
		Scene:     &handlers.SceneHandler{Scenes: s.scenes},
		Sync:      &handlers.SyncHandler{Sync: s.devices, Refresh: s.poller},
		Logging:   &handlers.LoggingHandler{Levels: s.levels},
	})

	// The upgrade is not a JSON operation, so it bypasses Huma.
	router.Get("/api/v1/ws", ws.Handler(s.rootCtx, wsHub, s.logger))
	return router
}

// bootstrapDevices adds every configured address concurrently. Unreachable
// devices stay registered as Unavailable and are picked up by later polls.
func (s *Server) bootstrapDevices(ctx context.Context) {
	var wg sync.WaitGroup
	for _, addr := range s.cfg.Devices.Addresses {
		wg.Go(func() {
			if _, err := s.devices.AddDevice(ctx, addr); err != nil {
				s.logger.Warn("failed to add configured device", "address", addr, "error", err)
			}
		})
	}
	wg.Wait()
	s.logger.Info("configured devices registered", "count", len(s.devices.Addresses()))
}

// applyConfig hot-applies settings that can change while running.
func (s *Server) applyConfig(c *config.Config) {
	if _, err := s.levels.SetLevel(c.Logging.Level); err != nil {
		s.logger.Warn("ignoring invalid log level from config", "level", c.Logging.Level, "error", err)
	}
}

func (s *Server) goSafe(name string, fn func()) {
	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in "+name, "recover", r)
			}
		}()
		fn()
	})
}

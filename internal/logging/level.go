// Package logging lets the HTTP API and the config watcher change the
// daemon's log level while it runs.
package logging

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jmylchreest/ledsyncd/internal/config"
)

// Controller owns the slog.LevelVar shared by every handler of the daemon logger.
type Controller struct {
	mu     sync.Mutex
	level  *slog.LevelVar
	logger *slog.Logger
}

// NewController wraps lv. A nil lv gets a fresh LevelVar at info.
func NewController(logger *slog.Logger, lv *slog.LevelVar) *Controller {
	if lv == nil {
		lv = new(slog.LevelVar)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{level: lv, logger: logger}
}

// Level returns the current level name.
func (c *Controller) Level() string {
	return LevelToString(c.level.Level())
}

// SetLevel parses name and applies it. "warning" is accepted as "warn".
func (c *Controller) SetLevel(name string) (string, error) {
	lvl, err := ParseLevel(name)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	prev := c.level.Level()
	c.level.Set(lvl)
	c.mu.Unlock()

	if prev != lvl {
		c.logger.Info("log level changed", "from", LevelToString(prev), "to", LevelToString(lvl))
	}
	return LevelToString(lvl), nil
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.LogLevelDebug:
		return slog.LevelDebug, nil
	case config.LogLevelInfo:
		return slog.LevelInfo, nil
	case config.LogLevelWarn, "warning":
		return slog.LevelWarn, nil
	case config.LogLevelError:
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q; must be debug, info, warn, or error", name)
}

// LevelToString converts a slog.Level to its name.
func LevelToString(level slog.Level) string {
	switch {
	case level <= slog.LevelDebug:
		return config.LogLevelDebug
	case level <= slog.LevelInfo:
		return config.LogLevelInfo
	case level <= slog.LevelWarn:
		return config.LogLevelWarn
	default:
		return config.LogLevelError
	}
}

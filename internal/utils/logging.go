// Package utils builds the process loggers shared by ledsyncd and ledsyncctl.
package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jmylchreest/ledsyncd/internal/config"
	"github.com/jmylchreest/ledsyncd/internal/logging"
)

// LevelOrDefault parses level and falls back to info for anything unknown.
func LevelOrDefault(level string) slog.Level {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// FormatOrDefault returns format when it is text or json, and text otherwise.
func FormatOrDefault(format string) string {
	if f := strings.ToLower(format); f == config.LogFormatJSON {
		return f
	}
	return config.LogFormatText
}

// SetupLogger builds the stderr logger. The returned LevelVar is what the
// config watcher and the logging endpoint adjust at runtime.
func SetupLogger(level, format string) (*slog.Logger, *slog.LevelVar) {
	return SetupLoggerTo(os.Stderr, level, format)
}

// SetupLoggerTo is SetupLogger writing to w. Colour is only used when w is a
// terminal.
func SetupLoggerTo(w io.Writer, level, format string) (*slog.Logger, *slog.LevelVar) {
	lv := new(slog.LevelVar)
	lv.Set(LevelOrDefault(level))

	if FormatOrDefault(format) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv, AddSource: true})), lv
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lv,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	})), lv
}

// SetupErrorLogger is used before configuration has been read.
func SetupErrorLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
}

func SetAsDefaultLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

// LevelController reads and changes the daemon's log level.
type LevelController interface {
	Level() string
	SetLevel(name string) (string, error)
}

// --- Get Level ---

// GetLevelInput is the input for reading the log level.
type GetLevelInput struct{}

// --- Set Level ---

// SetLevelInput is the input for changing the global log level.
type SetLevelInput struct {
	Body struct {
		Level string `json:"level" doc:"New log level (debug, info, warn, error)" minLength:"1"`
	}
}

// LevelOutput reports the global log level.
type LevelOutput struct {
	Body struct {
		Level string `json:"level" doc:"Current global log level"`
	}
}

// LoggingHandler implements logging management HTTP handlers.
type LoggingHandler struct {
	Levels LevelController
}

// GetLevel returns the current log level.
func (h *LoggingHandler) GetLevel(_ context.Context, _ *GetLevelInput) (*LevelOutput, error) {
	out := &LevelOutput{}
	out.Body.Level = h.Levels.Level()
	return out, nil
}

// SetLevel validates and changes the global log level at runtime.
func (h *LoggingHandler) SetLevel(_ context.Context, input *SetLevelInput) (*LevelOutput, error) {
	level, err := h.Levels.SetLevel(input.Body.Level)
	if err != nil {
		return nil, huma.Error400BadRequest(fmt.Sprintf("Invalid log level: %s", err))
	}
	out := &LevelOutput{}
	out.Body.Level = level
	return out, nil
}

// Ensure LoggingHandler implements the interface at compile time.
var _ LoggingHandlers = (*LoggingHandler)(nil)

// LoggingHandlers defines the interface for logging management operations.
type LoggingHandlers interface {
	GetLevel(ctx context.Context, input *GetLevelInput) (*LevelOutput, error)
	SetLevel(ctx context.Context, input *SetLevelInput) (*LevelOutput, error)
}

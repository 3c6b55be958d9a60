// Package errors holds the sentinel errors shared by the engine and the
// HTTP layer, plus small helpers for wrapping and logging them.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNotFound means the addressed device, scene or favorite does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means a caller supplied a malformed value (bad hex color, empty address).
	ErrInvalidInput = errors.New("invalid input")

	// ErrDeviceUnavailable means a controller did not answer or answered with a non-2xx status.
	ErrDeviceUnavailable = errors.New("device unavailable")
)

// LogErrorAndReturn logs err at error level with the supplied attributes and
// returns it unchanged. A nil err is passed through without logging.
func LogErrorAndReturn(logger *slog.Logger, err error, message string, args ...any) error {
	if err == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(message, append([]any{"error", err}, args...)...)
	return err
}

// LogWarnAndReturn is LogErrorAndReturn at warn level. Used for expected
// best-effort failures such as one device dropping out of a fan-out.
func LogWarnAndReturn(logger *slog.Logger, err error, message string, args ...any) error {
	if err == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(message, append([]any{"error", err}, args...)...)
	return err
}

// WrapErrorf wraps err with a formatted prefix.
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func IsNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsInvalidInput(err error) bool      { return errors.Is(err, ErrInvalidInput) }
func IsDeviceUnavailable(err error) bool { return errors.Is(err, ErrDeviceUnavailable) }

// NotFoundf returns a formatted error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidInputf returns a formatted error wrapping ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// DeviceUnavailablef returns a formatted error wrapping ErrDeviceUnavailable.
// A %w verb in format is honoured, so the transport cause stays inspectable.
func DeviceUnavailablef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDeviceUnavailable)...)
}

// Join is errors.Join, re-exported so callers that import this package under
// the name "errors" do not also need the standard library package.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Is is errors.Is, re-exported for the same reason as Join.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

package handlers

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/ledsyncd/internal/errors"
)

// apiError maps an engine error onto the matching HTTP status.
func apiError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.IsNotFound(err):
		return huma.Error404NotFound(fmt.Sprintf("%s: %s", msg, err))
	case errors.IsInvalidInput(err):
		return huma.Error400BadRequest(fmt.Sprintf("%s: %s", msg, err))
	case errors.IsDeviceUnavailable(err):
		return huma.Error502BadGateway(fmt.Sprintf("%s: %s", msg, err))
	default:
		return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", msg, err))
	}
}

// errorList flattens a joined error into one message per failure.
func errorList(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, errorList(e)...)
		}
		return out
	}
	return strings.Split(err.Error(), "\n")
}

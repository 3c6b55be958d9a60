// Package mw holds the chi middleware and the Huma registration helpers used by
// the ledsyncd API.
package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// OperationOption adjusts an operation before it is registered.
type OperationOption func(*huma.Operation)

// Handler is the signature Huma expects for a typed operation.
type Handler[I, O any] func(ctx context.Context, input *I) (*O, error)

func WithTags(tags ...string) OperationOption {
	return func(op *huma.Operation) { op.Tags = append(op.Tags, tags...) }
}

func WithSummary(summary string) OperationOption {
	return func(op *huma.Operation) { op.Summary = summary }
}

func WithDescription(desc string) OperationOption {
	return func(op *huma.Operation) { op.Description = desc }
}

func WithOperationID(id string) OperationOption {
	return func(op *huma.Operation) { op.OperationID = id }
}

// WithHidden leaves the operation out of the OpenAPI document.
func WithHidden() OperationOption {
	return func(op *huma.Operation) { op.Hidden = true }
}

// WithDefaultStatus overrides the success status, e.g. 201 for creates.
func WithDefaultStatus(status int) OperationOption {
	return func(op *huma.Operation) { op.DefaultStatus = status }
}

// Route registers handler for method and path. Operations registered without
// a tag are tagged with the first path segment after /api/v1.
func Route[I, O any](api huma.API, method, path string, handler Handler[I, O], opts ...OperationOption) {
	op := huma.Operation{Method: method, Path: path}
	for _, opt := range opts {
		opt(&op)
	}
	if len(op.Tags) == 0 && !op.Hidden {
		if tag := pathTag(path); tag != "" {
			op.Tags = []string{tag}
		}
	}
	huma.Register(api, op, handler)
}

func pathTag(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return ""
	}
	tag, _, _ := strings.Cut(rest, "/")
	return tag
}

func Get[I, O any](api huma.API, path string, handler Handler[I, O], opts ...OperationOption) {
	Route(api, http.MethodGet, path, handler, opts...)
}

func Post[I, O any](api huma.API, path string, handler Handler[I, O], opts ...OperationOption) {
	Route(api, http.MethodPost, path, handler, opts...)
}

func Put[I, O any](api huma.API, path string, handler Handler[I, O], opts ...OperationOption) {
	Route(api, http.MethodPut, path, handler, opts...)
}

func Delete[I, O any](api huma.API, path string, handler Handler[I, O], opts ...OperationOption) {
	Route(api, http.MethodDelete, path, handler, opts...)
}

// HiddenGet registers a GET that stays out of the OpenAPI document, such as
// the bare /healthz liveness check.
func HiddenGet[I, O any](api huma.API, path string, handler Handler[I, O]) {
	Get(api, path, handler, WithHidden())
}

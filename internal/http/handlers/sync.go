package handlers

import (
	"context"

	"github.com/jmylchreest/ledsyncd/internal/poller"
)

// SyncController toggles whether commands fan out to every device.
type SyncController interface {
	SyncMode() bool
	SetSyncMode(enabled bool)
	ToggleSyncMode() bool
}

// Refresher triggers and reports device status refreshes.
type Refresher interface {
	RequestRefresh(ctx context.Context) poller.Result
	LastResult() poller.Result
}

// SyncInput is the input for reading or toggling sync mode.
type SyncInput struct{}

// SyncOutput reports the sync mode.
type SyncOutput struct {
	Body struct {
		Enabled bool `json:"enabled" doc:"Whether commands fan out to every registered device"`
	}
}

// SetSyncInput sets sync mode explicitly.
type SetSyncInput struct {
	Body struct {
		Enabled bool `json:"enabled" doc:"New sync mode"`
	}
}

// RefreshInput is the input for the refresh endpoints.
type RefreshInput struct{}

// RefreshOutput reports a refresh batch.
type RefreshOutput struct {
	Body poller.Result
}

// SyncHandler implements sync mode and refresh HTTP handlers.
type SyncHandler struct {
	Sync    SyncController
	Refresh Refresher
}

// GetSync returns the current sync mode.
func (h *SyncHandler) GetSync(_ context.Context, _ *SyncInput) (*SyncOutput, error) {
	return syncOutput(h.Sync.SyncMode()), nil
}

// SetSync sets the sync mode.
func (h *SyncHandler) SetSync(_ context.Context, input *SetSyncInput) (*SyncOutput, error) {
	h.Sync.SetSyncMode(input.Body.Enabled)
	return syncOutput(h.Sync.SyncMode()), nil
}

// ToggleSync flips the sync mode.
func (h *SyncHandler) ToggleSync(_ context.Context, _ *SyncInput) (*SyncOutput, error) {
	return syncOutput(h.Sync.ToggleSyncMode()), nil
}

// RequestRefresh re-reads every device's status. Calls arriving within the
// debounce window of the previous one are coalesced and do nothing.
func (h *SyncHandler) RequestRefresh(ctx context.Context, _ *RefreshInput) (*RefreshOutput, error) {
	return &RefreshOutput{Body: h.Refresh.RequestRefresh(ctx)}, nil
}

// LastRefresh returns the most recent completed batch.
func (h *SyncHandler) LastRefresh(_ context.Context, _ *RefreshInput) (*RefreshOutput, error) {
	return &RefreshOutput{Body: h.Refresh.LastResult()}, nil
}

func syncOutput(enabled bool) *SyncOutput {
	out := &SyncOutput{}
	out.Body.Enabled = enabled
	return out
}

// Ensure SyncHandler implements the interface at compile time.
var _ SyncHandlers = (*SyncHandler)(nil)

// SyncHandlers defines the interface for sync and refresh operations.
type SyncHandlers interface {
	GetSync(ctx context.Context, input *SyncInput) (*SyncOutput, error)
	SetSync(ctx context.Context, input *SetSyncInput) (*SyncOutput, error)
	ToggleSync(ctx context.Context, input *SyncInput) (*SyncOutput, error)
	RequestRefresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)
	LastRefresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)
}

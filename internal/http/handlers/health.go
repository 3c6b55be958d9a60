package handlers

import (
	"context"
	"time"
)

type HealthInput struct{}

type HealthOutput struct {
	Body struct {
		Status string    `json:"status" example:"ok" doc:"Always ok while the daemon is serving"`
		Time   time.Time `json:"time" doc:"Server time"`
	}
}

// HealthCheck answers as long as the HTTP server is up. It does not touch
// any device.
func HealthCheck(_ context.Context, _ *HealthInput) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "ok"
	out.Body.Time = time.Now().UTC()
	return out, nil
}

type VersionInput struct{}

type VersionOutput struct {
	Body VersionInfo
}

// VersionInfo is the daemon's build metadata.
type VersionInfo struct {
	Version string `json:"version" doc:"Release version"`
	Commit  string `json:"commit" doc:"Git commit"`
	Date    string `json:"date" doc:"Build date"`
}

// VersionCheck returns a handler that always reports info.
func VersionCheck(info VersionInfo) func(context.Context, *VersionInput) (*VersionOutput, error) {
	return func(_ context.Context, _ *VersionInput) (*VersionOutput, error) {
		return &VersionOutput{Body: info}, nil
	}
}

package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/ledsyncd/internal/scene"
)

// SceneManager is the scene surface the handlers use.
type SceneManager interface {
	AddScene(name string, configs []scene.DeviceConfig) (scene.Scene, error)
	UpdateScene(index int, name string, configs []scene.DeviceConfig) (scene.Scene, bool, error)
	RemoveScene(index int) bool
	GetScene(index int) (scene.Scene, bool)
	GetScenes() []scene.Scene
	ApplyScene(ctx context.Context, index int) (bool, error)
}

// ListScenesInput is the input for listing scenes.
type ListScenesInput struct{}

// ListScenesOutput returns scenes in list order.
type ListScenesOutput struct {
	Body []SceneResponse
}

// SceneIndexInput addresses one scene by position.
type SceneIndexInput struct {
	Index int `path:"index" doc:"Zero-based scene position"`
}

// SceneOutput returns one scene.
type SceneOutput struct {
	Body SceneResponse
}

// CreateSceneInput captures a new scene.
type CreateSceneInput struct {
	Body struct {
		Name    string             `json:"name" doc:"Scene name" minLength:"1"`
		Devices []SceneDeviceInput `json:"devices,omitempty" doc:"Devices in the scene"`
	}
}

// UpdateSceneInput replaces the scene at index.
type UpdateSceneInput struct {
	Index int `path:"index" doc:"Zero-based scene position"`
	Body  struct {
		Name    string             `json:"name,omitempty" doc:"New name; empty keeps the current one"`
		Devices []SceneDeviceInput `json:"devices,omitempty" doc:"Devices in the scene"`
	}
}

// SceneChangeOutput reports an update or delete by index. An index with no
// scene answers 200 with changed=false.
type SceneChangeOutput struct {
	Body SceneChangeResponse
}

type SceneChangeResponse struct {
	Changed bool           `json:"changed" doc:"False when the index named no scene"`
	Scene   *SceneResponse `json:"scene,omitempty" doc:"The scene after the update"`
}

// ApplySceneOutput reports the apply result. Status is 207 when some devices failed.
type ApplySceneOutput struct {
	Status int
	Body   ApplySceneResponse
}

type ApplySceneResponse struct {
	Status  string   `json:"status" doc:"ok or partial"`
	Applied bool     `json:"applied" doc:"False when the index named no scene and nothing was sent"`
	Errors  []string `json:"errors,omitempty" doc:"Per-device failures"`
}

// SceneHandler implements scene HTTP handlers.
type SceneHandler struct {
	Scenes SceneManager
}

// ListScenes returns every scene.
func (h *SceneHandler) ListScenes(_ context.Context, _ *ListScenesInput) (*ListScenesOutput, error) {
	return &ListScenesOutput{Body: ScenesFromInternal(h.Scenes.GetScenes())}, nil
}

// GetScene returns the scene at index.
func (h *SceneHandler) GetScene(_ context.Context, input *SceneIndexInput) (*SceneOutput, error) {
	s, ok := h.Scenes.GetScene(input.Index)
	if !ok {
		return nil, huma.Error404NotFound(fmt.Sprintf("Scene %d not found", input.Index))
	}
	return &SceneOutput{Body: SceneFromInternal(input.Index, s)}, nil
}

// CreateScene captures a scene and appends it.
func (h *SceneHandler) CreateScene(_ context.Context, input *CreateSceneInput) (*SceneOutput, error) {
	s, err := h.Scenes.AddScene(input.Body.Name, sceneConfigs(input.Body.Devices))
	if err != nil {
		return nil, apiError(err, "Error creating scene")
	}
	return &SceneOutput{Body: SceneFromInternal(len(h.Scenes.GetScenes())-1, s)}, nil
}

// UpdateScene replaces a scene's name and devices.
func (h *SceneHandler) UpdateScene(_ context.Context, input *UpdateSceneInput) (*SceneChangeOutput, error) {
	s, changed, err := h.Scenes.UpdateScene(input.Index, input.Body.Name, sceneConfigs(input.Body.Devices))
	if err != nil {
		return nil, apiError(err, "Error updating scene")
	}
	out := &SceneChangeOutput{Body: SceneChangeResponse{Changed: changed}}
	if changed {
		resp := SceneFromInternal(input.Index, s)
		out.Body.Scene = &resp
	}
	return out, nil
}

// DeleteScene removes a scene. Later scenes move down one position.
func (h *SceneHandler) DeleteScene(_ context.Context, input *SceneIndexInput) (*SceneChangeOutput, error) {
	return &SceneChangeOutput{Body: SceneChangeResponse{Changed: h.Scenes.RemoveScene(input.Index)}}, nil
}

// ApplyScene drives every device in the scene to its stored state.
func (h *SceneHandler) ApplyScene(ctx context.Context, input *SceneIndexInput) (*ApplySceneOutput, error) {
	applied, err := h.Scenes.ApplyScene(ctx, input.Index)
	if err != nil {
		return &ApplySceneOutput{
			Status: http.StatusMultiStatus,
			Body:   ApplySceneResponse{Status: "partial", Applied: applied, Errors: errorList(err)},
		}, nil
	}
	return &ApplySceneOutput{Status: http.StatusOK, Body: ApplySceneResponse{Status: "ok", Applied: applied}}, nil
}

// Ensure SceneHandler implements the interface at compile time.
var _ SceneHandlers = (*SceneHandler)(nil)

// SceneHandlers defines the interface for scene operations.
type SceneHandlers interface {
	ListScenes(ctx context.Context, input *ListScenesInput) (*ListScenesOutput, error)
	GetScene(ctx context.Context, input *SceneIndexInput) (*SceneOutput, error)
	CreateScene(ctx context.Context, input *CreateSceneInput) (*SceneOutput, error)
	UpdateScene(ctx context.Context, input *UpdateSceneInput) (*SceneChangeOutput, error)
	DeleteScene(ctx context.Context, input *SceneIndexInput) (*SceneChangeOutput, error)
	ApplyScene(ctx context.Context, input *SceneIndexInput) (*ApplySceneOutput, error)
}

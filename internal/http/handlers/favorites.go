package handlers

import (
	"context"

	"github.com/jmylchreest/ledsyncd/pkg/ledstrip"
)

// FavoritesManager is the favorites surface the handlers use.
type FavoritesManager interface {
	AddColor(address, hex string) (bool, error)
	RemoveColor(address string, index int) (bool, error)
	ReplaceColor(address string, index int, hex string) (bool, error)
	AddEffect(address string, fav ledstrip.FavoriteEffect) (bool, error)
	RemoveEffect(address string, index int) (bool, error)
	ApplyEffect(ctx context.Context, address string, index int) (bool, error)
	Colors(address string) ([]string, error)
	Effects(address string) ([]ledstrip.FavoriteEffect, error)
	Capacity() int
}

// FavoritesOutput returns both lists after a read or an edit.
type FavoritesOutput struct {
	Body FavoritesResponse
}

// FavoriteIndexInput addresses one entry of a favorites list.
type FavoriteIndexInput struct {
	Address string `path:"address" doc:"Device address"`
	Index   int    `path:"index" doc:"Zero-based position in the list"`
}

// AddFavoriteColorInput appends a color.
type AddFavoriteColorInput struct {
	Address string `path:"address" doc:"Device address"`
	Body    struct {
		Color string `json:"color" doc:"Color as #rrggbb" example:"#ff8800"`
	}
}

// ReplaceFavoriteColorInput overwrites the color at index.
type ReplaceFavoriteColorInput struct {
	Address string `path:"address" doc:"Device address"`
	Index   int    `path:"index" doc:"Zero-based position in the list"`
	Body    struct {
		Color string `json:"color" doc:"Color as #rrggbb" example:"#ff8800"`
	}
}

// AddFavoriteEffectInput appends a saved custom effect.
type AddFavoriteEffectInput struct {
	Address string `path:"address" doc:"Device address"`
	Body    ledstrip.FavoriteEffect
}

// FavoritesHandler implements favorites HTTP handlers. Adding to a full list
// or touching a missing index answers 200 with changed=false.
type FavoritesHandler struct {
	Favorites FavoritesManager
}

// GetFavorites returns the device's saved colors and effects.
func (h *FavoritesHandler) GetFavorites(_ context.Context, input *DeviceAddressInput) (*FavoritesOutput, error) {
	return h.result(input.Address, false)
}

// AddColor appends a favorite color.
func (h *FavoritesHandler) AddColor(_ context.Context, input *AddFavoriteColorInput) (*FavoritesOutput, error) {
	changed, err := h.Favorites.AddColor(input.Address, input.Body.Color)
	if err != nil {
		return nil, apiError(err, "Error adding favorite color")
	}
	return h.result(input.Address, changed)
}

// ReplaceColor overwrites a favorite color.
func (h *FavoritesHandler) ReplaceColor(_ context.Context, input *ReplaceFavoriteColorInput) (*FavoritesOutput, error) {
	changed, err := h.Favorites.ReplaceColor(input.Address, input.Index, input.Body.Color)
	if err != nil {
		return nil, apiError(err, "Error replacing favorite color")
	}
	return h.result(input.Address, changed)
}

// RemoveColor deletes a favorite color.
func (h *FavoritesHandler) RemoveColor(_ context.Context, input *FavoriteIndexInput) (*FavoritesOutput, error) {
	changed, err := h.Favorites.RemoveColor(input.Address, input.Index)
	if err != nil {
		return nil, apiError(err, "Error removing favorite color")
	}
	return h.result(input.Address, changed)
}

// AddEffect saves a custom effect.
func (h *FavoritesHandler) AddEffect(_ context.Context, input *AddFavoriteEffectInput) (*FavoritesOutput, error) {
	changed, err := h.Favorites.AddEffect(input.Address, input.Body)
	if err != nil {
		return nil, apiError(err, "Error adding favorite effect")
	}
	return h.result(input.Address, changed)
}

// RemoveEffect deletes a saved effect.
func (h *FavoritesHandler) RemoveEffect(_ context.Context, input *FavoriteIndexInput) (*FavoritesOutput, error) {
	changed, err := h.Favorites.RemoveEffect(input.Address, input.Index)
	if err != nil {
		return nil, apiError(err, "Error removing favorite effect")
	}
	return h.result(input.Address, changed)
}

// ApplyEffect runs a saved effect. changed reports whether the index existed.
func (h *FavoritesHandler) ApplyEffect(ctx context.Context, input *FavoriteIndexInput) (*FavoritesOutput, error) {
	applied, err := h.Favorites.ApplyEffect(ctx, input.Address, input.Index)
	if err != nil {
		return nil, apiError(err, "Error applying favorite effect")
	}
	return h.result(input.Address, applied)
}

func (h *FavoritesHandler) result(address string, changed bool) (*FavoritesOutput, error) {
	colors, err := h.Favorites.Colors(address)
	if err != nil {
		return nil, apiError(err, "Device not found")
	}
	effects, err := h.Favorites.Effects(address)
	if err != nil {
		return nil, apiError(err, "Device not found")
	}
	if colors == nil {
		colors = []string{}
	}
	if effects == nil {
		effects = []ledstrip.FavoriteEffect{}
	}
	return &FavoritesOutput{Body: FavoritesResponse{
		Address:  ledstrip.NormalizeAddress(address),
		Changed:  changed,
		Capacity: h.Favorites.Capacity(),
		Colors:   colors,
		Effects:  effects,
	}}, nil
}

// Ensure FavoritesHandler implements the interface at compile time.
var _ FavoritesHandlers = (*FavoritesHandler)(nil)

// FavoritesHandlers defines the interface for favorites operations.
type FavoritesHandlers interface {
	GetFavorites(ctx context.Context, input *DeviceAddressInput) (*FavoritesOutput, error)
	AddColor(ctx context.Context, input *AddFavoriteColorInput) (*FavoritesOutput, error)
	ReplaceColor(ctx context.Context, input *ReplaceFavoriteColorInput) (*FavoritesOutput, error)
	RemoveColor(ctx context.Context, input *FavoriteIndexInput) (*FavoritesOutput, error)
	AddEffect(ctx context.Context, input *AddFavoriteEffectInput) (*FavoritesOutput, error)
	RemoveEffect(ctx context.Context, input *FavoriteIndexInput) (*FavoritesOutput, error)
	ApplyEffect(ctx context.Context, input *FavoriteIndexInput) (*FavoritesOutput, error)
}

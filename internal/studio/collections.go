package studio

import (
	"context"
	"errors"
	"fmt"

	"postcraft/internal/presets"
	"postcraft/internal/state"
)

// ErrNotFound is returned for unknown image and preset ids.
var ErrNotFound = errors.New("not found")

// DeleteImage removes one gallery image.
func (s *Studio) DeleteImage(ctx context.Context, id string) error {
	ok, err := s.Gallery.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("image %q: %w", id, ErrNotFound)
	}
	s.sink(ctx).Success("Image deleted")
	return nil
}

// ClearGallery removes every gallery image.
func (s *Studio) ClearGallery(ctx context.Context) error {
	if err := s.Gallery.Clear(ctx); err != nil {
		return err
	}
	s.sink(ctx).Success("🗑️ Gallery cleared")
	return nil
}

// SavePreset stores the current form under name.
func (s *Studio) SavePreset(ctx context.Context, app state.App, name string) (presets.Preset, error) {
	p, err := s.Presets.Save(ctx, app.Draft(name))
	if err != nil {
		return presets.Preset{}, err
	}
	s.sink(ctx).Success(fmt.Sprintf("Saved %q", p.Name))
	return p, nil
}

// DeletePreset removes a preset.
func (s *Studio) DeletePreset(ctx context.Context, id string) error {
	ok, err := s.Presets.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("preset %q: %w", id, ErrNotFound)
	}
	s.sink(ctx).Success("Preset deleted")
	return nil
}

// ApplyPreset loads a preset into app.
func (s *Studio) ApplyPreset(ctx context.Context, app state.App, id string) (state.App, error) {
	p, ok := s.Presets.Get(id)
	if !ok {
		return app, fmt.Errorf("preset %q: %w", id, ErrNotFound)
	}
	s.sink(ctx).Success(fmt.Sprintf("Loaded %q", p.Name))
	return state.Reduce(app, state.LoadPreset{Preset: p}), nil
}

// SetKey installs an API key supplied by the operator and optionally
// persists it.
func (s *Studio) SetKey(key, persistPath string) error {
	if err := s.Credentials.Set(key, persistPath); err != nil {
		return err
	}
	s.mu.Lock()
	s.gen, s.genKey = nil, ""
	s.mu.Unlock()
	return nil
}

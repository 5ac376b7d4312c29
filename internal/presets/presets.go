// Package presets stores reusable form settings.
package presets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"postcraft/internal/faults"
	"postcraft/internal/logging"
	"postcraft/internal/prompt"
	"postcraft/internal/store"

	"github.com/google/uuid"
)

// Preset is a named snapshot of a form.
type Preset struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	CreatedAt   time.Time           `json:"createdAt"`
	TemplateID  *string             `json:"templateId"`
	FormValues  map[string]string   `json:"formValues"`
	AspectRatio prompt.AspectRatio  `json:"aspectRatio"`
	BgTheme     prompt.Theme        `json:"bgTheme"`
	BgOpacity   int                 `json:"bgOpacity"`
	BrandColors *prompt.BrandColors `json:"brandColors,omitempty"`
	LogoSize    *int                `json:"logoSize,omitempty"`
}

// Draft is a preset before it is saved.
type Draft struct {
	Name        string              `json:"name"`
	TemplateID  *string             `json:"templateId"`
	FormValues  map[string]string   `json:"formValues"`
	AspectRatio prompt.AspectRatio  `json:"aspectRatio"`
	BgTheme     prompt.Theme        `json:"bgTheme"`
	BgOpacity   int                 `json:"bgOpacity"`
	BrandColors *prompt.BrandColors `json:"brandColors,omitempty"`
	LogoSize    *int                `json:"logoSize,omitempty"`
}

// Store is the preset collection, in save order.
type Store struct {
	mu      sync.Mutex
	kv      store.KV
	presets []Preset

	now   func() time.Time
	newID func() string
}

// New returns an empty preset store backed by kv.
func New(kv store.KV) *Store {
	return &Store{
		kv:    kv,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Load reads the stored presets. A missing collection is empty.
func (s *Store) Load(ctx context.Context) error {
	var presets []Preset
	if _, err := s.kv.Get(ctx, store.KeyPresets, &presets); err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}
	s.mu.Lock()
	s.presets = presets
	s.mu.Unlock()
	logging.StoreDebug("loaded %d presets", len(presets))
	return nil
}

// Save assigns an id and creation time to d and appends it.
func (s *Store) Save(ctx context.Context, d Draft) (Preset, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Preset{}, faults.Invalidf("preset name is missing")
	}
	values := make(map[string]string, len(d.FormValues))
	for k, v := range d.FormValues {
		values[k] = v
	}
	p := Preset{
		ID:          s.newID(),
		Name:        name,
		CreatedAt:   s.now(),
		TemplateID:  d.TemplateID,
		FormValues:  values,
		AspectRatio: d.AspectRatio,
		BgTheme:     d.BgTheme,
		BgOpacity:   d.BgOpacity,
		BrandColors: d.BrandColors,
		LogoSize:    d.LogoSize,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets = append(s.presets, p)
	if err := s.kv.Put(ctx, store.KeyPresets, s.presets); err != nil {
		return p, fmt.Errorf("failed to save presets: %w", err)
	}
	logging.Store("saved preset %q (%s)", p.Name, p.ID)
	return p, nil
}

// Delete removes the preset with id. It reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		if p.ID != id {
			next = append(next, p)
		}
	}
	if len(next) == len(s.presets) {
		return false, nil
	}
	s.presets = next
	if err := s.kv.Put(ctx, store.KeyPresets, s.presets); err != nil {
		return true, fmt.Errorf("failed to save presets: %w", err)
	}
	return true, nil
}

// Get returns the preset with id.
func (s *Store) Get(id string) (Preset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// List returns a copy of all presets in save order.
func (s *Store) List() []Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Preset(nil), s.presets...)
}

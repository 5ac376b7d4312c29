// Package gallery keeps the generated images, newest first.
package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"postcraft/internal/imaging"
	"postcraft/internal/logging"
	"postcraft/internal/store"

	"github.com/google/uuid"
)

// Image is one saved generation result.
type Image struct {
	ID         string    `json:"id"`
	Data       string    `json:"data"` // data:image/png;base64,...
	TemplateID string    `json:"templateId"`
	Timestamp  time.Time `json:"timestamp"`
}

// Gallery is the saved-image collection. The whole collection is rewritten
// on every change; mutations are serialized.
type Gallery struct {
	mu     sync.Mutex
	kv     store.KV
	images []Image

	now   func() time.Time
	newID func() string
}

// New returns an empty gallery backed by kv. Call Load to read what is
// already stored.
func New(kv store.KV) *Gallery {
	return &Gallery{
		kv:    kv,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Load reads the stored collection. A missing collection is empty.
func (g *Gallery) Load(ctx context.Context) error {
	var images []Image
	if _, err := g.kv.Get(ctx, store.KeySavedImages, &images); err != nil {
		return fmt.Errorf("failed to load gallery: %w", err)
	}
	g.mu.Lock()
	g.images = images
	g.mu.Unlock()
	logging.Store("gallery loaded with %d images", len(images))
	return nil
}

// AddBatch saves one batch of generated images ahead of the existing ones,
// keeping the batch order. The in-memory list is updated before the write.
func (g *Gallery) AddBatch(ctx context.Context, templateID string, dataURIs []string) ([]Image, error) {
	if len(dataURIs) == 0 {
		return nil, nil
	}
	ts := g.now()
	added := make([]Image, len(dataURIs))
	for i, d := range dataURIs {
		added[i] = Image{ID: g.newID(), Data: d, TemplateID: templateID, Timestamp: ts}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	next := make([]Image, 0, len(added)+len(g.images))
	next = append(next, added...)
	next = append(next, g.images...)
	g.images = next

	if err := g.kv.Put(ctx, store.KeySavedImages, g.images); err != nil {
		return added, fmt.Errorf("failed to save gallery: %w", err)
	}
	logging.Store("gallery: added %d images for %s (%d total)", len(added), templateID, len(g.images))
	return added, nil
}

// Delete removes the image with id. It reports whether the image existed.
func (g *Gallery) Delete(ctx context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := make([]Image, 0, len(g.images))
	for _, img := range g.images {
		if img.ID != id {
			next = append(next, img)
		}
	}
	if len(next) == len(g.images) {
		return false, nil
	}
	g.images = next
	if err := g.kv.Put(ctx, store.KeySavedImages, g.images); err != nil {
		return true, fmt.Errorf("failed to save gallery: %w", err)
	}
	return true, nil
}

// Clear removes every image.
func (g *Gallery) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.images = []Image{}
	if err := g.kv.Put(ctx, store.KeySavedImages, g.images); err != nil {
		return fmt.Errorf("failed to save gallery: %w", err)
	}
	logging.Store("gallery cleared")
	return nil
}

// List returns a copy of the collection, newest first.
func (g *Gallery) List() []Image {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Image(nil), g.images...)
}

// Len returns the number of saved images.
func (g *Gallery) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.images)
}

// Get returns the image with id.
func (g *Gallery) Get(id string) (Image, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, img := range g.images {
		if img.ID == id {
			return img, true
		}
	}
	return Image{}, false
}

// FileName is the download name of an image.
func FileName(prefix, id string) string {
	if prefix == "" {
		return id + ".png"
	}
	return prefix + "-" + id + ".png"
}

// Export writes every image to dir as <prefix>-<id>.png and returns the
// written paths.
func (g *Gallery) Export(dir, prefix string) ([]string, error) {
	images := g.List()
	paths := make([]string, 0, len(images))
	for _, img := range images {
		p, err := WriteImage(dir, prefix, img)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// WriteImage decodes img and writes it under dir, creating dir if needed.
func WriteImage(dir, prefix string, img Image) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	in, err := imaging.ParseDataURI(img.Data)
	if err != nil {
		return "", fmt.Errorf("image %s: %w", img.ID, err)
	}
	p := filepath.Join(dir, FileName(prefix, img.ID))
	if err := os.WriteFile(p, in.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", p, err)
	}
	return p, nil
}

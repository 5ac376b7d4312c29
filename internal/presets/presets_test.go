package presets

import (
	"context"
	"fmt"
	"testing"
	"time"

	"postcraft/internal/faults"
	"postcraft/internal/prompt"
	"postcraft/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(kv store.KV) *Store {
	s := New(kv)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
	s.now = func() time.Time { return time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestPresetLifecycle(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := newTestStore(kv)
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.List())

	tmpl := "events"
	size := 120
	p, err := s.Save(ctx, Draft{
		Name:        "  Lucky Draw  ",
		TemplateID:  &tmpl,
		FormValues:  map[string]string{"title": "LUCKY DRAW"},
		AspectRatio: prompt.Feed,
		BgTheme:     prompt.ThemeVibrant,
		BgOpacity:   40,
		LogoSize:    &size,
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Lucky Draw", p.Name)
	assert.Equal(t, 2025, p.CreatedAt.Year())

	_, err = s.Save(ctx, Draft{Name: "Blank"})
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].ID, "presets keep save order")

	got, ok := s.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "events", *got.TemplateID)
	assert.Equal(t, 120, *got.LogoSize)

	// A second store over the same backend sees the same data.
	reloaded := newTestStore(kv)
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.List(), 2)

	existed, err := s.Delete(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, existed)
	_, ok = s.Get("p1")
	assert.False(t, ok)

	existed, err = s.Delete(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, existed)

	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.List(), 1)
}

func TestSaveRequiresName(t *testing.T) {
	s := newTestStore(store.NewMemory())
	_, err := s.Save(context.Background(), Draft{Name: "   "})
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindInvalidInput))
	assert.Empty(t, s.List())
}

func TestSaveCopiesFormValues(t *testing.T) {
	s := newTestStore(store.NewMemory())
	values := map[string]string{"title": "A"}
	_, err := s.Save(context.Background(), Draft{Name: "x", FormValues: values})
	require.NoError(t, err)
	values["title"] = "B"

	got, _ := s.Get("p1")
	assert.Equal(t, "A", got.FormValues["title"])
}

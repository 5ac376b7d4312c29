package usage

import (
	"context"
	"testing"
	"time"

	"postcraft/internal/store"
)

func TestTracker_TrackAggregatesAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	tracker := NewTracker(ctx, kv)

	// Avoid background autosave during the test (debounce uses AfterFunc).
	tracker.dirty = true

	tracker.Track(Event{Operation: OpImage, Model: "gemini-3-pro-image-preview", TemplateID: "events", Requested: 3, Succeeded: 2})
	tracker.Track(Event{Operation: OpImage, Model: "gemini-3-pro-image-preview", TemplateID: "calendar", Requested: 1, Succeeded: 1})
	tracker.Track(Event{Operation: OpCaption, Model: "gemini-3-flash-preview", Requested: 1, Succeeded: 1})
	tracker.AddTokens("gemini-3-pro-image-preview", 100, 50)
	tracker.AddTokens("gemini-3-flash-preview", 10, 30)

	stats := tracker.Stats()
	if stats.Total.Calls != 3 || stats.Total.Requested != 5 || stats.Total.Succeeded != 4 || stats.Total.Failed != 1 {
		t.Fatalf("Total=%+v, want calls=3 requested=5 succeeded=4 failed=1", stats.Total)
	}
	if stats.Total.InputTokens != 110 || stats.Total.OutputTokens != 80 {
		t.Fatalf("Total tokens=%+v, want input=110 output=80", stats.Total)
	}
	if got := stats.ByTemplate["events"]; got.Failed != 1 {
		t.Fatalf("ByTemplate[events]=%+v, want failed=1", got)
	}
	if got := stats.ByTemplate["none"]; got.Calls != 1 {
		t.Fatalf("ByTemplate[none]=%+v, want calls=1", got)
	}
	if got := stats.ByModel["gemini-3-flash-preview"]; got.OutputTokens != 30 || got.Calls != 1 {
		t.Fatalf("ByModel[text]=%+v, want output_tokens=30 calls=1", got)
	}
	if got := stats.ByModel["gemini-3-pro-image-preview"]; got.Succeeded != 3 {
		t.Fatalf("ByModel[image]=%+v, want succeeded=3", got)
	}
	if got := stats.ByOperation["caption"]; got.Calls != 1 {
		t.Fatalf("ByOperation[caption]=%+v, want calls=1", got)
	}

	if err := tracker.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := NewTracker(ctx, kv)
	if got := reloaded.Stats().Total.Succeeded; got != 4 {
		t.Fatalf("persisted succeeded=%d, want 4", got)
	}
}

func TestTracker_StatsIsACopy(t *testing.T) {
	tracker := NewTracker(context.Background(), store.NewMemory())
	tracker.dirty = true
	tracker.Track(Event{Operation: OpImage, Model: "m", TemplateID: "guide", Requested: 1, Succeeded: 1})

	stats := tracker.Stats()
	stats.ByTemplate["guide"] = Counts{}

	if got := tracker.Stats().ByTemplate["guide"]; got.Calls != 1 {
		t.Fatalf("mutating returned stats changed tracker: %+v", got)
	}
}

func TestTracker_AutoSave(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	tracker := NewTracker(ctx, kv)
	tracker.saveDelay = 10 * time.Millisecond

	tracker.Track(Event{Operation: OpImage, Model: "m", Requested: 2, Succeeded: 2})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var d Data
		if ok, _ := kv.Get(ctx, store.KeyUsage, &d); ok && d.Aggregate.Total.Succeeded == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("usage was not auto-saved")
}

func TestTracker_CloseFlushes(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	tracker := NewTracker(ctx, kv)
	tracker.saveDelay = time.Hour

	tracker.Track(Event{Operation: OpCaption, Model: "m", Requested: 1, Succeeded: 0})
	if err := tracker.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var d Data
	ok, err := kv.Get(ctx, store.KeyUsage, &d)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if d.Aggregate.Total.Failed != 1 {
		t.Fatalf("persisted failed=%d, want 1", d.Aggregate.Total.Failed)
	}
}

func TestTracker_ContextHelpers(t *testing.T) {
	tracker := NewTracker(context.Background(), store.NewMemory())

	ctx := NewContext(context.Background(), tracker)
	if got := FromContext(ctx); got == nil {
		t.Fatalf("FromContext returned nil")
	}
	if got := FromContext(ctx); got != tracker {
		t.Fatalf("FromContext mismatch")
	}
	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("FromContext on empty context = %v, want nil", got)
	}
}

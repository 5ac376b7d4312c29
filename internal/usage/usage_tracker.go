// Package usage counts generation calls per template, model and operation.
package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"postcraft/internal/logging"
	"postcraft/internal/store"
)

const dataVersion = "1.0"

type contextKey struct{}

// Tracker records usage events and persists the aggregate.
type Tracker struct {
	mu        sync.Mutex
	kv        store.KV
	data      Data
	dirty     bool
	saveDelay time.Duration
	saveTimer *time.Timer
}

// NewTracker creates a tracker persisting to kv and loads what is stored.
// An unreadable record is logged and replaced.
func NewTracker(ctx context.Context, kv store.KV) *Tracker {
	t := &Tracker{
		kv:        kv,
		saveDelay: 5 * time.Second,
		data:      emptyData(),
	}
	if err := t.Load(ctx); err != nil {
		logging.Get(logging.CategoryUsage).Warn("starting with empty usage stats: %v", err)
	}
	return t
}

func emptyData() Data {
	return Data{
		Version: dataVersion,
		Aggregate: AggregatedStats{
			ByTemplate:  make(map[string]Counts),
			ByModel:     make(map[string]Counts),
			ByOperation: make(map[string]Counts),
		},
	}
}

// Load reads the stored stats.
func (t *Tracker) Load(ctx context.Context) error {
	var d Data
	ok, err := t.kv.Get(ctx, store.KeyUsage, &d)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !ok {
		t.data = emptyData()
		return nil
	}
	if d.Aggregate.ByTemplate == nil {
		d.Aggregate.ByTemplate = make(map[string]Counts)
	}
	if d.Aggregate.ByModel == nil {
		d.Aggregate.ByModel = make(map[string]Counts)
	}
	if d.Aggregate.ByOperation == nil {
		d.Aggregate.ByOperation = make(map[string]Counts)
	}
	t.data = d
	return nil
}

// Save writes the stats now.
func (t *Tracker) Save(ctx context.Context) error {
	t.mu.Lock()
	snapshot := copyData(t.data)
	t.dirty = false
	if t.saveTimer != nil {
		t.saveTimer.Stop()
		t.saveTimer = nil
	}
	t.mu.Unlock()

	if err := t.kv.Put(ctx, store.KeyUsage, snapshot); err != nil {
		return fmt.Errorf("failed to save usage: %w", err)
	}
	return nil
}

// Track records one event and schedules a save.
func (t *Tracker) Track(e Event) {
	if e.TemplateID == "" {
		e.TemplateID = "none"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.Aggregate.Total.Add(e)
	addToMap(t.data.Aggregate.ByTemplate, e.TemplateID, e)
	addToMap(t.data.Aggregate.ByModel, e.Model, e)
	addToMap(t.data.Aggregate.ByOperation, string(e.Operation), e)

	logging.Usage("%s via %s for %s: %d/%d ok", e.Operation, e.Model, e.TemplateID, e.Succeeded, e.Requested)
	t.scheduleSaveLocked()
}

// AddTokens records token counts for model. It satisfies gemini.TokenRecorder.
func (t *Tracker) AddTokens(model string, input, output int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.Aggregate.Total.AddTokens(input, output)
	entry := t.data.Aggregate.ByModel[model]
	entry.AddTokens(input, output)
	t.data.Aggregate.ByModel[model] = entry
	t.scheduleSaveLocked()
}

// scheduleSaveLocked arms the debounced auto-save. Caller holds t.mu.
func (t *Tracker) scheduleSaveLocked() {
	if !t.dirty {
		t.dirty = true
		t.saveTimer = time.AfterFunc(t.saveDelay, func() {
			if err := t.Save(context.Background()); err != nil {
				logging.Get(logging.CategoryUsage).Warn("usage auto-save failed: %v", err)
			}
		})
	}
}

// Close flushes pending changes.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	dirty := t.dirty
	t.mu.Unlock()
	if !dirty {
		return nil
	}
	return t.Save(ctx)
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyData(t.data).Aggregate
}

func copyData(d Data) Data {
	d.Aggregate.ByTemplate = copyCountsMap(d.Aggregate.ByTemplate)
	d.Aggregate.ByModel = copyCountsMap(d.Aggregate.ByModel)
	d.Aggregate.ByOperation = copyCountsMap(d.Aggregate.ByOperation)
	return d
}

func copyCountsMap(src map[string]Counts) map[string]Counts {
	if src == nil {
		return nil
	}
	dst := make(map[string]Counts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]Counts, key string, e Event) {
	entry := m[key]
	entry.Add(e)
	m[key] = entry
}

// Context Helpers

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tracker from the context.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(contextKey{}).(*Tracker)
	return t
}

package templates

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"postcraft/internal/logging"

	"gopkg.in/yaml.v3"
)

// overrideFile is the YAML layout of a template override file.
type overrideFile struct {
	Templates []Template `yaml:"templates"`
}

// Registry is the live template table. It starts with the built-ins; an
// override file can add templates or replace built-ins by id. Safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]Template
	order []string
}

// NewRegistry returns a registry holding the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{}
	r.reset(Builtin(), nil)
	return r
}

// Get returns the template with id.
func (r *Registry) Get(id string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	return t, ok
}

// List returns all templates: built-ins first in table order, then added
// templates in file order.
func (r *Registry) List() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// IDs returns the sorted template ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := append([]string(nil), r.order...)
	sort.Strings(ids)
	return ids
}

// LoadOverrides rebuilds the table from the built-ins plus the templates in
// path. A missing file leaves only the built-ins. On error the current table
// is kept.
func (r *Registry) LoadOverrides(path string) error {
	if path == "" {
		r.reset(Builtin(), nil)
		return nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logging.Templates("no template overrides at %s", path)
		r.reset(Builtin(), nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read template overrides: %w", err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse template overrides: %w", err)
	}
	for i := range file.Templates {
		if err := normalize(&file.Templates[i]); err != nil {
			return fmt.Errorf("template override %d: %w", i, err)
		}
	}

	r.reset(Builtin(), file.Templates)
	logging.Templates("loaded %d template overrides from %s", len(file.Templates), path)
	return nil
}

func (r *Registry) reset(base, overrides []Template) {
	byID := make(map[string]Template, len(base)+len(overrides))
	order := make([]string, 0, len(base)+len(overrides))
	for _, t := range base {
		byID[t.ID] = t
		order = append(order, t.ID)
	}
	for _, t := range overrides {
		if _, exists := byID[t.ID]; !exists {
			order = append(order, t.ID)
		}
		byID[t.ID] = t
	}

	r.mu.Lock()
	r.byID = byID
	r.order = order
	r.mu.Unlock()
}

func normalize(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("%s: title is required", t.ID)
	}
	seen := make(map[string]bool, len(t.Fields))
	for i := range t.Fields {
		f := &t.Fields[i]
		if f.ID == "" {
			return fmt.Errorf("%s: field %d has no id", t.ID, i)
		}
		if seen[f.ID] {
			return fmt.Errorf("%s: duplicate field %s", t.ID, f.ID)
		}
		seen[f.ID] = true
		switch f.Kind {
		case "":
			f.Kind = FieldText
		case FieldText, FieldTextarea, FieldDate:
		default:
			return fmt.Errorf("%s: field %s has unknown kind %q", t.ID, f.ID, f.Kind)
		}
		if f.Label == "" {
			f.Label = f.ID
		}
	}
	return nil
}

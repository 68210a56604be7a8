package extract

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds registered extractor specs. Specs are registered
// explicitly from the composition root, never by import side effect.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a spec. IDs must be unique; module, category, and at
// least one extraction function are required.
func (r *Registry) Register(spec Spec) error {
	if spec.ID == "" {
		return fmt.Errorf("extractor id must not be empty")
	}
	if spec.Module == "" {
		return fmt.Errorf("extractor %s: module must not be empty", spec.ID)
	}
	if !validCategories[spec.Category] {
		return fmt.Errorf("extractor %s: unknown category %q", spec.ID, spec.Category)
	}
	if spec.Live == nil && spec.Mock == nil {
		return fmt.Errorf("extractor %s: needs a live or mock implementation", spec.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.ID]; exists {
		return fmt.Errorf("extractor %s already registered", spec.ID)
	}
	r.specs[spec.ID] = spec
	return nil
}

// Get returns the spec with the given id.
func (r *Registry) Get(id string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[id]
	return s, ok
}

// Has reports whether an id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// GetAll returns every registered spec, sorted by id.
func (r *Registry) GetAll() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// GetByModule returns specs for one module, sorted by id.
func (r *Registry) GetByModule(module string) []Spec {
	return r.filter(func(s Spec) bool { return s.Module == module })
}

// GetByCategory returns specs for one category, sorted by id.
func (r *Registry) GetByCategory(category string) []Spec {
	return r.filter(func(s Spec) bool { return s.Category == category })
}

func (r *Registry) filter(keep func(Spec) bool) []Spec {
	var out []Spec
	for _, s := range r.GetAll() {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// Clear removes every registered spec.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = make(map[string]Spec)
}

package migrate

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds registered migration object specs, keyed by object id.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a spec after validating its mapping list.
func (r *Registry) Register(spec Spec) error {
	if spec.ObjectID == "" {
		return fmt.Errorf("object id must not be empty")
	}
	if spec.TargetSystem == "" {
		return fmt.Errorf("object %s: target system must not be empty", spec.ObjectID)
	}
	if spec.ExtractLive == nil && spec.ExtractMock == nil {
		return fmt.Errorf("object %s: needs a live or mock extraction", spec.ObjectID)
	}
	if err := ValidateMappings(spec.ObjectID, spec.Mappings); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.ObjectID]; exists {
		return fmt.Errorf("object %s already registered", spec.ObjectID)
	}
	r.specs[spec.ObjectID] = spec
	return nil
}

// Get returns the spec for one object id.
func (r *Registry) Get(objectID string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[objectID]
	return s, ok
}

// Has reports whether an object id is registered.
func (r *Registry) Has(objectID string) bool {
	_, ok := r.Get(objectID)
	return ok
}

// GetAll returns every spec, sorted by object id.
func (r *Registry) GetAll() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ObjectID < all[j].ObjectID })
	return all
}

// GetBySourceSystem returns specs whose source system matches, sorted.
func (r *Registry) GetBySourceSystem(system string) []Spec {
	var out []Spec
	for _, s := range r.GetAll() {
		if s.SourceSystem == system {
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

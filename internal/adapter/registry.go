package adapter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/s4bridge/s4bridge/internal/config"
)

// Registry maps source-system names to adapter factories. Lookups are
// case-insensitive. NewRegistry pre-populates SAP, INFOR_M3 and INFOR_LN;
// the composition root registers the rest explicitly.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	names     map[string]string // canonical spelling by folded key
}

// NewRegistry returns a registry with the built-in ERP adapters registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		names:     make(map[string]string),
	}
	r.Register(config.SystemSAP, NewSAP)
	r.Register(config.SystemInforM3, NewInforM3)
	r.Register(config.SystemInforLN, NewInforLN)
	return r
}

// Register adds a factory under the given name. Empty names and nil
// factories are rejected.
func (r *Registry) Register(name string, factory Factory) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("adapter name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("adapter %q: factory must not be nil", name)
	}
	key := fold(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = factory
	r.names[key] = name
	return nil
}

// Get returns the factory registered under name, or an error.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[fold(name)]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for system %q", name)
	}
	return f, nil
}

// Has reports whether a factory is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[fold(name)]
	return ok
}

// Create instantiates an unconnected adapter for the profile's source
// system (or, when name is non-empty, for that system).
func (r *Registry) Create(name string, profile config.Profile) (Connection, error) {
	if name == "" {
		name = profile.SourceSystem
	}
	f, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return f(profile)
}

// ListSystems returns the canonical registered names, sorted.
func (r *Registry) ListSystems() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Unregister removes the factory registered under name, if any.
func (r *Registry) Unregister(name string) {
	key := fold(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, key)
	delete(r.names, key)
}

// Clear removes every registration, including the built-ins.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = make(map[string]Factory)
	r.names = make(map[string]string)
}

func fold(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

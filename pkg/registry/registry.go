package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/typomata"
)

// Factory builds a machine with the given options.
type Factory func(opts ...typomata.Option) (*typomata.Machine, error)

// Registry manages the available machines by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a machine factory to the registry.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Build looks up a factory by name and builds the machine.
// Returns an error if the machine is not found.
func (r *Registry) Build(name string, opts ...typomata.Option) (*typomata.Machine, error) {
	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("machine not found: %s (available: %v)", name, r.Names())
	}

	return fn(opts...)
}

// Names returns the registered machine names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/stageware/propstore/pkg/types"
)

// Factory builds the Store for a namespace. The application root decides how
// a namespace maps to persistence (typically a per-namespace data directory).
type Factory func(namespace string) (*Store, error)

// Registry hands out one Store per namespace, creating stores lazily through
// the injected factory. It is an explicit object owned by the application
// root so store lifetime and test isolation stay visible; independent
// registries never share state.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	stores  map[string]*Store
}

// NewRegistry creates a Registry. A nil factory yields plain in-memory
// stores.
func NewRegistry(factory Factory) *Registry {
	if factory == nil {
		factory = func(string) (*Store, error) {
			return New(Options{})
		}
	}
	return &Registry{
		factory: factory,
		stores:  make(map[string]*Store),
	}
}

// Get returns the store for the namespace, creating it on first use.
// Returns ErrNamespaceEmpty for an empty namespace.
func (r *Registry) Get(namespace string) (*Store, error) {
	if namespace == "" {
		return nil, types.ErrNamespaceEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[namespace]; ok {
		return s, nil
	}
	s, err := r.factory(namespace)
	if err != nil {
		return nil, fmt.Errorf("creating store for namespace %q: %w", namespace, err)
	}
	r.stores[namespace] = s
	return s, nil
}

// Namespaces returns the namespaces with instantiated stores, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove closes and forgets the store for the namespace. A subsequent Get
// re-runs the factory. Removing an unknown namespace is a no-op.
func (r *Registry) Remove(namespace string) error {
	r.mu.Lock()
	s, ok := r.stores[namespace]
	delete(r.stores, namespace)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return s.Close()
}

// Close closes every instantiated store and empties the registry. The first
// close error is returned; remaining stores are still closed.
func (r *Registry) Close() error {
	r.mu.Lock()
	stores := r.stores
	r.stores = make(map[string]*Store)
	r.mu.Unlock()

	var firstErr error
	for _, s := range stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

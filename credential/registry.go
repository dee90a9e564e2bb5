package credential

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// StoreFactory creates a Store from configuration.
type StoreFactory func(cfg map[string]any) (Store, error)

// Registry manages store factories by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]StoreFactory
}

// NewRegistry creates an empty store registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]StoreFactory)}
}

// Register adds a store factory.
func (r *Registry) Register(name string, factory StoreFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %q", ErrStoreRegistered, name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates a store by name.
func (r *Registry) Create(name string, cfg map[string]any) (Store, error) {
	name = strings.TrimSpace(name)

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStoreNotRegistered, name)
	}

	return factory(cfg)
}

// List returns registered store names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in "memory" and "postgres" stores.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("memory", func(map[string]any) (Store, error) {
		return NewMemoryStore(), nil
	})
	_ = r.Register("postgres", func(cfg map[string]any) (Store, error) {
		dsn, _ := cfg["dsn"].(string)
		table, _ := cfg["table"].(string)
		return OpenPostgres(dsn, table)
	})
	return r
}

package credential

import (
	"maps"
	"sync"

	"github.com/jonwraymond/credwatch/health"
)

// Aliases normalizes service identifiers: trim, lowercase, then one lookup in
// an alias table. It is total and deterministic, and safe for concurrent use.
type Aliases struct {
	mu    sync.RWMutex
	table map[string]string
}

// NewAliases creates a normalizer from alias to canonical identifier.
func NewAliases(table map[string]string) *Aliases {
	a := &Aliases{}
	a.Replace(table)
	return a
}

// Normalize returns the canonical identifier for service.
func (a *Aliases) Normalize(service string) string {
	name := health.CanonicalName(service)

	a.mu.RLock()
	defer a.mu.RUnlock()
	if canonical, ok := a.table[name]; ok {
		return canonical
	}
	return name
}

// Replace swaps the alias table atomically.
func (a *Aliases) Replace(table map[string]string) {
	normalized := make(map[string]string, len(table))
	for alias, canonical := range table {
		alias, canonical = health.CanonicalName(alias), health.CanonicalName(canonical)
		if alias == "" || canonical == "" || alias == canonical {
			continue
		}
		normalized[alias] = canonical
	}

	a.mu.Lock()
	a.table = normalized
	a.mu.Unlock()
}

// Table returns a copy of the normalized alias table.
func (a *Aliases) Table() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.table)
}

// Ensure Aliases implements health.Normalizer
var _ health.Normalizer = (*Aliases)(nil)

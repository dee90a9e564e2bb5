package credential

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store, used for tests and static deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates a store holding records.
func NewMemoryStore(records ...Record) *MemoryStore {
	s := &MemoryStore{records: make(map[string]Record, len(records))}
	s.Put(records...)
	return s
}

// Put inserts or replaces records by service.
func (s *MemoryStore) Put(records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.Service] = r
	}
}

// Delete removes the record for service. Idempotent.
func (s *MemoryStore) Delete(service string) {
	s.mu.Lock()
	delete(s.records, service)
	s.mu.Unlock()
}

// Records returns the stored records for services, or all records when
// services is empty, sorted by service.
func (s *MemoryStore) Records(ctx context.Context, services []string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	if len(services) == 0 {
		out = slices.Collect(maps.Values(s.records))
	} else {
		seen := make(map[string]bool, len(services))
		for _, svc := range services {
			if seen[svc] {
				continue
			}
			seen[svc] = true
			if r, ok := s.records[svc]; ok {
				out = append(out, r)
			}
		}
	}

	slices.SortFunc(out, func(a, b Record) int { return strings.Compare(a.Service, b.Service) })
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

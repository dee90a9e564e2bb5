package cache

import (
	"sync"
	"time"
)

// Config configures a MemoryCache.
type Config struct {
	// TTL is how long an entry counts as a hit after insertion.
	// Default: 5 minutes
	TTL time.Duration

	// MaxEntries bounds the number of keys held at once.
	// Default: 50
	MaxEntries int

	// Now is the clock used for insertion and expiry.
	// Default: time.Now
	Now func() time.Time
}

// DefaultConfig returns the default cache configuration.
// TTL: 5 minutes, MaxEntries: 50
func DefaultConfig() Config {
	return Config{
		TTL:        5 * time.Minute,
		MaxEntries: 50,
		Now:        time.Now,
	}
}

// MemoryCache is a bounded in-memory TTL cache.
//
// Entries expire lazily on read. When a new key arrives at capacity the entry
// with the oldest insertion time is evicted first. Every operation, including
// the capacity check, eviction and insert, runs under a single lock.
type MemoryCache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	seq     uint64
	config  Config
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
	// seq orders entries stamped with the same clock reading.
	seq uint64
}

// NewMemoryCache creates a new in-memory cache with the given configuration.
func NewMemoryCache[V any](config Config) *MemoryCache[V] {
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = 50
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &MemoryCache[V]{
		entries: make(map[string]entry[V], config.MaxEntries),
		config:  config,
	}
}

// Get retrieves a value. Returns (zero, false) on miss or expiry.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	if c.config.Now().Sub(e.insertedAt) >= c.config.TTL {
		delete(c.entries, key)
		return zero, false
	}

	return e.value, true
}

// Set stores value under key, stamping it with the current time.
//
// Replacing an existing key never evicts. Inserting a new key at capacity
// evicts exactly one entry, the one inserted earliest.
func (c *MemoryCache[V]) Set(key string, value V) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.config.MaxEntries {
		c.evictOldestLocked()
	}

	c.seq++
	c.entries[key] = entry[V]{
		value:      value,
		insertedAt: c.config.Now(),
		seq:        c.seq,
	}

	if len(c.entries) > c.config.MaxEntries {
		panic(&CacheStateError{Size: len(c.entries), Capacity: c.config.MaxEntries})
	}
	return nil
}

func (c *MemoryCache[V]) evictOldestLocked() {
	var (
		oldestKey string
		oldest    entry[V]
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.insertedAt.Before(oldest.insertedAt) ||
			(e.insertedAt.Equal(oldest.insertedAt) && e.seq < oldest.seq) {
			oldestKey, oldest, found = k, e, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *MemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *MemoryCache[V]) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including ones that have expired
// but not yet been read.
func (c *MemoryCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Config returns the effective configuration.
func (c *MemoryCache[V]) Config() Config {
	return c.config
}

// Ensure MemoryCache implements Cache
var _ Cache[int] = (*MemoryCache[int])(nil)

package cache

import (
	"errors"
	"fmt"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache is a keyed store of last-known values with time-bounded validity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Expiry: Get never returns an entry older than the configured TTL.
// - Errors: Get never errors; it returns (zero, false) on miss.
type Cache[V any] interface {
	// Get retrieves a live value. Returns (zero, false) on miss or expiry.
	Get(key string) (V, bool)
	// Set stores a value, evicting the oldest entry if a new key would
	// exceed capacity.
	Set(key string, value V) error
	// Delete removes a value. Idempotent - no error on miss.
	Delete(key string)
	// Clear removes every value.
	Clear()
}

// CacheStateError reports a broken internal invariant, such as the entry
// count exceeding capacity. It indicates a programming defect and is never
// returned to callers; the cache panics with it.
type CacheStateError struct {
	Size     int
	Capacity int
}

func (e *CacheStateError) Error() string {
	return fmt.Sprintf("cache: invariant violated: %d entries exceed capacity %d", e.Size, e.Capacity)
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

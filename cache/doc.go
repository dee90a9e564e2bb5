// Package cache provides the bounded TTL cache that holds last-known
// credential health results.
//
// MemoryCache keeps at most MaxEntries keys, expires entries lazily on read
// once they are TTL old, and evicts the earliest-inserted entry when a new key
// arrives at capacity. The clock is injected so expiry and eviction are
// testable without sleeping.
package cache

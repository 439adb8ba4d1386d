// Package cache memoizes catalog listing results keyed by a fingerprint of
// the canonicalized query parameters.
//
// Consistency model: a cached listing must never be served after a catalog
// mutation. Every mutating operation calls InvalidateAll synchronously on
// success, which drops the whole listing namespace: a mutated record can
// enter or leave any result page depending on filters and sort, so per-entry
// invalidation is not sound. TTL expiry is the only other eviction path.
//
// Concurrent misses for the same fingerprint may race and compute
// independently; the last write wins. The computation is a read-only query
// and every computed value is equally fresh.
package cache

import (
	"time"
)

// listingNamespace prefixes every listing entry so invalidation can target
// listings without flushing unrelated keys sharing the store.
const listingNamespace = "books:listing:"

// Store is the shared key/value store behind the query cache. Stores that
// cannot delete by prefix may implement DeletePrefix as a full Flush; the
// cache only ever requires that invalidation removes at least the listing
// namespace.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	DeletePrefix(prefix string)
	Flush()
}

// QueryCache memoizes serialized listing results with a fixed TTL.
type QueryCache struct {
	store Store
	ttl   time.Duration
}

func NewQueryCache(store Store, ttl time.Duration) *QueryCache {
	return &QueryCache{store: store, ttl: ttl}
}

// GetOrCompute returns the cached result for the canonicalized params, or
// invokes compute, stores its result under a fresh TTL, and returns it.
// Nothing is stored when compute fails, so a cancelled or failed request
// leaves no partial state behind.
func (c *QueryCache) GetOrCompute(params map[string]string, compute func() ([]byte, error)) ([]byte, error) {
	key := Fingerprint(listingNamespace, params)

	if value, ok := c.store.Get(key); ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	c.store.Set(key, value, c.ttl)
	return value, nil
}

// InvalidateAll drops every cached listing. Called by catalog mutations.
func (c *QueryCache) InvalidateAll() {
	c.store.DeletePrefix(listingNamespace)
}

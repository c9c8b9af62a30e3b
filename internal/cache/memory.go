package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryProvider is an in-process Provider. Explanations are node-local by
// nature (sampling-based attributions differ across replicas), so there is
// no shared cache tier.
type MemoryProvider struct {
	store *gocache.Cache
}

// NewMemoryProvider builds a provider whose entries expire after
// defaultTTL. Expired entries are purged every 2*defaultTTL.
func NewMemoryProvider(defaultTTL time.Duration) *MemoryProvider {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &MemoryProvider{store: gocache.New(defaultTTL, 2*defaultTTL)}
}

// Get returns the cached value or ErrCacheMiss.
func (m *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// Set stores value under key for ttl (or the default when ttl <= 0).
func (m *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.store.Set(key, value, ttl)
	return nil
}

// Del removes a key.
func (m *MemoryProvider) Del(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// Close flushes all entries.
func (m *MemoryProvider) Close() error {
	m.store.Flush()
	return nil
}

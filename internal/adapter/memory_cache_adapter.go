package adapter

import (
	"context"
	"time"

	"ezquiz/internal/domain"

	"github.com/maypok86/otter"
)

// noExpiry stands in for "cache indefinitely"; otter requires a positive TTL.
const noExpiry = 365 * 24 * time.Hour

// MemoryCacheAdapter implements domain.Cache in process memory. It is used
// when no Redis address is configured and does not survive restarts.
type MemoryCacheAdapter struct {
	cache otter.CacheWithVariableTTL[string, string]
}

// NewMemoryCacheAdapter creates a cache bounded to capacity entries.
func NewMemoryCacheAdapter(capacity int) (*MemoryCacheAdapter, error) {
	c, err := otter.MustBuilder[string, string](capacity).
		WithVariableTTL().
		Build()
	if err != nil {
		return nil, err
	}
	return &MemoryCacheAdapter{cache: c}, nil
}

func (m *MemoryCacheAdapter) Get(_ context.Context, key string) (string, error) {
	val, ok := m.cache.Get(key)
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return val, nil
}

func (m *MemoryCacheAdapter) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = noExpiry
	}
	m.cache.Set(key, value, expiration)
	return nil
}

func (m *MemoryCacheAdapter) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.cache.Delete(key)
	}
	return nil
}

func (m *MemoryCacheAdapter) Ping(context.Context) error {
	return nil
}

// Close stops the cache's background goroutines.
func (m *MemoryCacheAdapter) Close() {
	m.cache.Close()
}

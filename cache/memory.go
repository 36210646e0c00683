package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore is an in-process Store. When MaxEntries is reached the least
// recently used entry is evicted.
type MemoryStore struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryStore returns a store holding at most maxEntries entries, unbounded when maxEntries <= 0.
func NewMemoryStore(maxEntries int) *MemoryStore {
	opts := []ttlcache.Option[string, []byte]{
		// a read must not extend the TTL of an entry.
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if maxEntries > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](uint64(maxEntries)))
	}
	return &MemoryStore{cache: ttlcache.New(opts...)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := s.cache.Get(key)
	if item == nil {
		return nil, false, nil
	}
	return clone(item.Value()), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.cache.Set(key, clone(value), ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.cache.DeleteExpired()
	return s.cache.Len()
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

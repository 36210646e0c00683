// Package cache holds the explicit cache collaborators injected into the
// engines. Every entry carries a TTL, and the memory store bounds its size.
package cache

import (
	"context"
	"time"
)

// Store is a byte cache with per-entry expiry. A ttl <= 0 never expires.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

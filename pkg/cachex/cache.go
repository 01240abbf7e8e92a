// Package cachex is a small byte-oriented key/value cache with per-entry
// TTLs, backed either by process memory or Redis.
package cachex

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cachex: closed")

// Cache stores opaque values under string keys. Entries expire after their
// TTL; there is no other eviction. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

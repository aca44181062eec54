package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheProvider.Get when the key is absent or
// its entry has expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for the persistent expiring key-value
// cache. Expiry is enforced by the store itself.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Package client fetches liquidation pages from the HTTP API with a
// pluggable response cache.
package client

import (
	"context"
	"time"
)

// Cache stores serialized API pages keyed by query parameters.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

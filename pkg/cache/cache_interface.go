package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract the repositories cache through.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found is false on a miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)

	// Set stores value as JSON with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error
}

// Package cache stores serialized layout results.
//
// The CLI uses [FileCache] under the user cache directory; "cola serve"
// can share results across instances through [RedisCache]. Keys come from
// a [Keyer] so that callers agree on their shape.
//
// Every backend satisfies [Cache]. Wrap one with [Instrument] to report
// hits and misses to the observability hooks.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/cola/pkg/observability"
)

// TTLs for cached entries.
const (
	// TTLLayout is how long a layout result stays cached.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered artifact stays cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// instrumented reports cache traffic to observability.Cache.
type instrumented struct {
	Cache
	keyType string
}

// Instrument wraps c so that every Get and Set is reported under keyType.
func Instrument(c Cache, keyType string) Cache {
	return &instrumented{Cache: c, keyType: keyType}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	return nil
}

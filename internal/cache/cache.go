// Package cache provides the read-through view cache for public listings.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes. Every cached view lives under one of them so a mutation can
// drop a whole family at once.
const (
	PrefixHospitals       = "hospitals:"
	PrefixSpecializations = "specializations:"
)

// Cache stores JSON encoded views.
//
// Readers build keys with VersionedKey from a generation read before loading
// from the store. InvalidatePrefix bumps the generation, so a fill that raced
// a mutation lands under a retired generation and is never served.
type Cache interface {
	// Get decodes the value under key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Generation returns the current generation of prefix.
	Generation(ctx context.Context, prefix string) (int64, error)
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// VersionedKey places key under generation gen of prefix.
func VersionedKey(prefix string, gen int64, key string) string {
	return fmt.Sprintf("%sv%d:%s", prefix, gen, key)
}

// RedisCache implements Cache over go-redis.
type RedisCache struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// NewRedisCache builds a cache whose keys are namespaced with namespace+":".
func NewRedisCache(client redis.UniversalClient, namespace string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCache{client: client, namespace: namespace + ":", ttl: ttl}
}

func (c *RedisCache) key(k string) string {
	return c.namespace + k
}

func (c *RedisCache) generationKey(prefix string) string {
	return c.namespace + "gen:" + prefix
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, c.key(key), raw, c.ttl).Err()
}

func (c *RedisCache) Generation(ctx context.Context, prefix string) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(prefix)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// InvalidatePrefix retires the current generation of prefix, then deletes
// every key under prefix using SCAN so large keyspaces never block the server.
func (c *RedisCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if err := c.client.Incr(ctx, c.generationKey(prefix)).Err(); err != nil {
		return fmt.Errorf("bump generation of %s: %w", prefix, err)
	}
	iter := c.client.Scan(ctx, 0, c.key(prefix)+"*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Noop is used when no Redis address is configured. Every read misses.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)    { return false, nil }
func (Noop) Set(context.Context, string, any) error            { return nil }
func (Noop) Generation(context.Context, string) (int64, error) { return 0, nil }
func (Noop) InvalidatePrefix(context.Context, string) error    { return nil }

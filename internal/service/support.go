package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/hospital-directory/internal/cache"
	"github.com/spec-kit/hospital-directory/internal/events"
	"github.com/spec-kit/hospital-directory/internal/observability"
)

// readThrough serves key of the prefix family from the cache or loads and
// stores it. The generation is read before load so a value loaded before a
// concurrent invalidation is stored under the retired generation. Cache
// failures are logged and never fail the read.
func readThrough[T any](ctx context.Context, c cache.Cache, metrics *observability.Metrics, logger *zap.Logger, prefix, name string, load func() (T, error)) (T, error) {
	gen, err := c.Generation(ctx, prefix)
	if err != nil {
		logger.Warn("cache generation read failed", zap.String("prefix", prefix), zap.Error(err))
		metrics.RecordCache(false)
		return load()
	}
	key := cache.VersionedKey(prefix, gen, name)

	var cached T
	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		metrics.RecordCache(true)
		return cached, nil
	}
	metrics.RecordCache(false)

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := c.Set(ctx, key, value); err != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// publishEvent dispatches event. Subscriber failures are logged; the
// mutation that raised the event has already been committed.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("resource_id", event.ResourceID),
			zap.Error(err))
	}
}

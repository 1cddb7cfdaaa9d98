package cache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Remember is a read-through lookup: a hit is returned as is, a miss runs
// load and stores its result in the background for ttl seconds. Cache
// failures only cost a trip to load.
func Remember[T any](ctx context.Context, cache RedisCache, key string, ttl int, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if err := cache.Get(ctx, key, &cached); err == nil {
		log.Debug().Str("cacheKey", key).Msg("cache hit")

		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	go func(ctx context.Context) {
		if err := cache.Save(ctx, key, value, ttl); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save cache")
		}
	}(context.WithoutCancel(ctx))

	return value, nil
}

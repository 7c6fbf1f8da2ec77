package stations

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/trenovivo/trenovivo/pkg/redis_client"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

const cacheExpiration = 90 * time.Minute

// Negative cache sentinel for ids/prefixes the upstream reported as unknown,
// matching the read-through style used for the station entries themselves.
const cacheNegativeEntry = "N/A"

func newDirectoryCache() *cache.Cache[string] {
	if redis_client.Client == nil {
		return nil
	}

	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(cacheExpiration))

	return cache.New[string](redisStore)
}

// lookupCached is the read-through path for directory lookups. Concurrent
// lookups for the same key share one in-flight upstream fetch, and a fetch
// started for a since-cancelled caller still completes and populates the
// cache. The cancelled caller itself returns immediately.
func lookupCached[T any](d *Directory, ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	var empty T

	if d.cache != nil {
		if value, err := d.cache.Get(ctx, key); err == nil {
			if value == cacheNegativeEntry {
				if d.client.Metrics != nil {
					d.client.Metrics.CacheHits.Inc()
				}

				return empty, viaggiatreno.ErrNotFound
			}

			var cached T
			if json.Unmarshal([]byte(value), &cached) == nil {
				if d.client.Metrics != nil {
					d.client.Metrics.CacheHits.Inc()
				}

				return cached, nil
			}
		}

		// An undecodable entry counts as a miss, not a hit
		if d.client.Metrics != nil {
			d.client.Metrics.CacheMisses.Inc()
		}
	}

	resultChannel := d.group.DoChan(key, func() (any, error) {
		result, err := fetch(context.WithoutCancel(ctx))

		if d.cache != nil {
			if errors.Is(err, viaggiatreno.ErrNotFound) {
				d.cache.Set(context.Background(), key, cacheNegativeEntry)
			} else if err == nil {
				if encoded, marshalErr := json.Marshal(result); marshalErr == nil {
					d.cache.Set(context.Background(), key, string(encoded))
				}
			}
		}

		return result, err
	})

	select {
	case <-ctx.Done():
		return empty, ctx.Err()
	case result := <-resultChannel:
		if result.Err != nil {
			return empty, result.Err
		}

		return result.Val.(T), nil
	}
}

package recommend

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// EmbeddingCache fronts the embedding provider with a best-effort Redis
// cache. Reads are synchronous; writes are fire-and-forget. A nil Redis
// client makes the cache a pure pass-through.
type EmbeddingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEmbeddingCache(client *redis.Client, ttl time.Duration) *EmbeddingCache {
	return &EmbeddingCache{client: client, ttl: ttl}
}

// GetOrCompute returns the cached vector for key, or invokes compute
// and caches its result. Cache failures never fail the call; only
// compute errors propagate.
func (c *EmbeddingCache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) ([]float64, error)) ([]float64, error) {
	if c.client != nil {
		data, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var vector []float64
			if err := json.Unmarshal(data, &vector); err == nil && len(vector) > 0 {
				embeddingCacheHits.Inc()
				return vector, nil
			}
		} else if err != redis.Nil {
			log.Printf("embedding cache read failed for %s: %v", key, err)
		}
		embeddingCacheMisses.Inc()
	} else {
		embeddingCacheBypass.Inc()
	}

	vector, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		go c.store(key, vector)
	}
	return vector, nil
}

func (c *EmbeddingCache) store(key string, vector []float64) {
	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("embedding cache write failed for %s: %v", key, err)
	}
}

package recommend

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheNilClientPassesThrough(t *testing.T) {
	cache := NewEmbeddingCache(nil, 24*time.Hour)

	calls := 0
	vector, err := cache.GetOrCompute(context.Background(), "embedding:book:1", func(ctx context.Context) ([]float64, error) {
		calls++
		return []float64{0.1, 0.2}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, vector)
	assert.Equal(t, 1, calls)

	// No cache means every call recomputes.
	_, err = cache.GetOrCompute(context.Background(), "embedding:book:1", func(ctx context.Context) ([]float64, error) {
		calls++
		return []float64{0.1, 0.2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachePropagatesComputeError(t *testing.T) {
	cache := NewEmbeddingCache(nil, 24*time.Hour)

	wantErr := &ProviderError{Provider: "test", Err: fmt.Errorf("timeout")}
	_, err := cache.GetOrCompute(context.Background(), "embedding:book:2", func(ctx context.Context) ([]float64, error) {
		return nil, wantErr
	})

	assert.ErrorIs(t, err, wantErr)
}

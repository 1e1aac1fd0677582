package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProviderPostsToVersionedEndpoint(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float64{0.1, 0.2}}},
		})
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("sk-test", srv.URL+"/v1", "text-embedding-3-small", time.Second)

	vector, err := provider.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, vector)
	assert.Equal(t, "/v1/embeddings", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestOpenAIProviderWrapsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("sk-test", srv.URL+"/v1", "text-embedding-3-small", time.Second)

	_, err := provider.Embed(context.Background(), "hello")
	require.Error(t, err)

	var provErr *ProviderError
	assert.True(t, errors.As(err, &provErr))
}

func TestOpenAIProviderRejectsEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("sk-test", srv.URL+"/v1", "text-embedding-3-small", time.Second)

	_, err := provider.Embed(context.Background(), "hello")

	var provErr *ProviderError
	assert.True(t, errors.As(err, &provErr))
}

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultEmbeddingEndpointIsVersioned(t *testing.T) {
	// The provider appends "/embeddings" to this base, so the default
	// must already carry the API version segment.
	os.Unsetenv("OPENAI_BASE_URL")
	cfg := Load()
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
}

package recommend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm-app/bookworm-backend/internal/books"
)

func postRecommendations(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), "userID", int64(1)))
	rr := httptest.NewRecorder()
	handler.GetRecommendations(rr, req)
	return rr
}

func TestRecommendationsOmittedTypeDefaultsToTopRated(t *testing.T) {
	catalog := &fakeCatalog{candidates: []*books.Book{
		book(1, "a", 4.5, 100, "Mystery"),
	}}
	handler := NewHandler(newTestService(catalog, &fakeInteractions{}, nil))

	rr := postRecommendations(t, handler, `{}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var result RecommendationResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, TypeTopRated, result.RecommendationType)
	assert.False(t, result.IsFallback)
	require.Len(t, result.Recommendations, 1)
}

func TestRecommendationsFieldNameMatchesContract(t *testing.T) {
	catalog := &fakeCatalog{candidates: []*books.Book{
		book(1, "a", 4.5, 100, "Mystery"),
	}}
	interactions := &fakeInteractions{
		favorites: []books.Book{{ID: 10, Genres: []string{"Mystery"}}},
	}
	handler := NewHandler(newTestService(catalog, interactions, nil))

	rr := postRecommendations(t, handler, `{"recommendation_type":"similar"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var payload struct {
		RecommendationType RecommendationType       `json:"recommendation_type"`
		Recommendations    []map[string]interface{} `json:"recommendations"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&payload))
	assert.Equal(t, TypeSimilar, payload.RecommendationType)
	require.Len(t, payload.Recommendations, 1)
	assert.Contains(t, payload.Recommendations[0], "rating_count")
	assert.Contains(t, payload.Recommendations[0], "relevance_score")
	assert.Contains(t, payload.Recommendations[0], "recommendation_reason")
}

func TestRecommendationsRejectsBadLimit(t *testing.T) {
	handler := NewHandler(newTestService(&fakeCatalog{}, &fakeInteractions{}, nil))

	rr := postRecommendations(t, handler, `{"limit":99}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

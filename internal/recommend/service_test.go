package recommend

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm-app/bookworm-backend/internal/books"
	"github.com/bookworm-app/bookworm-backend/internal/reviews"
)

type fakeCatalog struct {
	candidates []*books.Book
	popular    []*books.Book
	candErr    error
}

func (c *fakeCatalog) ListCandidates(ctx context.Context, excludeIDs []int64, genre string) ([]*books.Book, error) {
	if c.candErr != nil {
		return nil, c.candErr
	}
	excluded := make(map[int64]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []*books.Book
	for _, b := range c.candidates {
		if excluded[b.ID] {
			continue
		}
		if genre != "" && !b.HasGenre(genre) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *fakeCatalog) ListPopular(ctx context.Context, excludeIDs []int64, limit int) ([]*books.Book, error) {
	if len(c.popular) > limit {
		return c.popular[:limit], nil
	}
	return c.popular, nil
}

type fakeInteractions struct {
	excluded  []int64
	favorites []books.Book
	reviewed  []reviews.RatedBook
}

func (i *fakeInteractions) ExcludedBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	return i.excluded, nil
}

func (i *fakeInteractions) FavoriteBooks(ctx context.Context, userID int64) ([]books.Book, error) {
	return i.favorites, nil
}

func (i *fakeInteractions) ReviewedBooks(ctx context.Context, userID int64) ([]reviews.RatedBook, error) {
	return i.reviewed, nil
}

func newTestService(catalog Catalog, interactions Interactions, provider EmbeddingProvider) Service {
	return NewService(catalog, interactions, provider, passthroughCache(), 4, time.Second)
}

func TestRecommendExcludesInteractedBooks(t *testing.T) {
	catalog := &fakeCatalog{candidates: []*books.Book{
		book(1, "read already", 5.0, 100, "Mystery"),
		book(2, "fresh", 4.0, 50, "Mystery"),
	}}
	interactions := &fakeInteractions{excluded: []int64{1}}
	svc := newTestService(catalog, interactions, nil)

	result := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeTopRated})

	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, int64(2), result.Recommendations[0].ID)
	assert.False(t, result.IsFallback)
	assert.Equal(t, TypeTopRated, result.RecommendationType)
}

func TestRecommendHonorsLimit(t *testing.T) {
	catalog := &fakeCatalog{}
	for i := 1; i <= 30; i++ {
		catalog.candidates = append(catalog.candidates, book(int64(i), fmt.Sprintf("b%d", i), 4.0, 10, "SF"))
	}
	svc := newTestService(catalog, &fakeInteractions{}, nil)

	result := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeTopRated, Limit: 3})
	assert.Len(t, result.Recommendations, 3)

	result = svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeTopRated})
	assert.Len(t, result.Recommendations, 10)
}

func TestRecommendNewUserGetsTopRatedFallback(t *testing.T) {
	catalog := &fakeCatalog{candidates: []*books.Book{
		book(1, "a", 4.8, 300, "Mystery"),
		book(2, "b", 4.2, 80, "SF"),
	}}
	svc := newTestService(catalog, &fakeInteractions{}, nil)

	result := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeSimilar})

	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, TypeTopRated, result.RecommendationType)
	assert.True(t, result.IsFallback)
	require.NotNil(t, result.FallbackReason)
	assert.Equal(t, "No similar books found", *result.FallbackReason)
	assert.False(t, result.IsAIPowered)
}

func TestRecommendAIFallsBackToGenre(t *testing.T) {
	catalog := &fakeCatalog{candidates: []*books.Book{
		book(1, "match", 4.5, 100, "Mystery"),
		book(2, "miss", 4.9, 500, "Romance"),
	}}
	interactions := &fakeInteractions{
		favorites: []books.Book{{ID: 10, Title: "anchor", Genres: []string{"Mystery"}}},
	}
	provider := &fakeProvider{err: &ProviderError{Provider: "test", Err: fmt.Errorf("unreachable")}}
	svc := newTestService(catalog, interactions, provider)

	result := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeAI})

	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, int64(1), result.Recommendations[0].ID)
	assert.Contains(t, result.Recommendations[0].Reason, "Matches your interest in")
	assert.Equal(t, TypeSimilar, result.RecommendationType)
	assert.True(t, result.IsFallback)
	require.NotNil(t, result.FallbackReason)
	assert.Equal(t, "AI recommendations unavailable", *result.FallbackReason)
	assert.False(t, result.IsAIPowered)
}

func TestRecommendAISuccess(t *testing.T) {
	catalog := &fakeCatalog{candidates: []*books.Book{
		book(1, "close", 4.0, 10, "SF"),
		book(2, "far", 4.0, 10, "SF"),
	}}
	interactions := &fakeInteractions{
		favorites: []books.Book{{ID: 10, Title: "anchor", Genres: []string{"SF"}}},
	}
	provider := &fakeProvider{vectors: map[string][]float64{
		"Favorite book": {1, 0, 0},
		"close":         {0.9, 0.1, 0},
		"far":           {0, 1, 0},
	}}
	svc := newTestService(catalog, interactions, provider)

	result := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeAI})

	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, int64(1), result.Recommendations[0].ID)
	assert.Equal(t, TypeAI, result.RecommendationType)
	assert.True(t, result.IsAIPowered)
	assert.False(t, result.IsFallback)
	assert.Nil(t, result.FallbackReason)
}

// stalledProvider never answers before its context expires.
type stalledProvider struct{}

func (stalledProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	select {
	case <-ctx.Done():
		return nil, &ProviderError{Provider: "test", Err: ctx.Err()}
	case <-time.After(time.Minute):
		return []float64{1}, nil
	}
}

func TestRecommendSlowProviderFallsBackToGenre(t *testing.T) {
	catalog := &fakeCatalog{candidates: []*books.Book{
		book(1, "match", 4.5, 100, "Mystery"),
	}}
	interactions := &fakeInteractions{
		favorites: []books.Book{{ID: 10, Title: "anchor", Genres: []string{"Mystery"}}},
	}
	svc := NewService(catalog, interactions, stalledProvider{}, passthroughCache(), 4, 20*time.Millisecond)

	result := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeAI})

	require.Len(t, result.Recommendations, 1)
	assert.Contains(t, result.Recommendations[0].Reason, "Matches your interest in")
	assert.True(t, result.IsFallback)
	assert.False(t, result.IsAIPowered)
}

func TestRecommendSimilarWithoutProviderUsesGenres(t *testing.T) {
	catalog := &fakeCatalog{candidates: []*books.Book{
		book(1, "match", 4.0, 10, "Fantasy"),
	}}
	interactions := &fakeInteractions{
		favorites: []books.Book{{ID: 10, Genres: []string{"Fantasy"}}},
	}
	svc := newTestService(catalog, interactions, nil)

	result := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeSimilar})

	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, TypeSimilar, result.RecommendationType)
	assert.False(t, result.IsAIPowered)
	assert.False(t, result.IsFallback)
}

func TestRecommendEmptyCandidatesFallsBackToPopular(t *testing.T) {
	catalog := &fakeCatalog{
		popular: []*books.Book{book(9, "crowd pleaser", 4.6, 900, "SF")},
	}
	svc := newTestService(catalog, &fakeInteractions{}, nil)

	result := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeTopRated, Genre: "Mystery"})

	require.Len(t, result.Recommendations, 1)
	assert.True(t, result.IsFallback)
	require.NotNil(t, result.FallbackReason)
	assert.Equal(t, "No Mystery books found", *result.FallbackReason)
	assert.Equal(t, "Popular among readers", result.Recommendations[0].Reason)
}

func TestRecommendCatalogFailureStillAnswers(t *testing.T) {
	catalog := &fakeCatalog{candErr: fmt.Errorf("connection refused")}
	svc := newTestService(catalog, &fakeInteractions{}, nil)

	result := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeSimilar})

	require.NotNil(t, result)
	assert.True(t, result.IsFallback)
	assert.Empty(t, result.Recommendations)
}

func TestBuildResultDeduplicatesByID(t *testing.T) {
	scored := []ScoredCandidate{
		{Book: book(1, "a", 4.0, 10, "SF"), Score: 3},
		{Book: book(1, "a", 4.0, 10, "SF"), Score: 2},
		{Book: book(2, "b", 4.0, 10, "SF"), Score: 1},
	}

	result := buildResult(scored, 10, TypeTopRated, false, false, nil)

	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, int64(1), result.Recommendations[0].ID)
	assert.Equal(t, int64(2), result.Recommendations[1].ID)
}

func TestRecommendIsIdempotent(t *testing.T) {
	catalog := &fakeCatalog{candidates: []*books.Book{
		book(5, "a", 4.0, 10, "SF"),
		book(2, "b", 4.0, 10, "SF"),
		book(8, "c", 4.0, 10, "SF"),
	}}
	svc := newTestService(catalog, &fakeInteractions{}, nil)

	first := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeTopRated})
	for i := 0; i < 5; i++ {
		again := svc.Recommend(context.Background(), 1, &RecommendationRequest{Type: TypeTopRated})
		assert.Equal(t, first, again)
	}
}

package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bookworm-app/bookworm-backend/internal/books"
	"github.com/bookworm-app/bookworm-backend/internal/reviews"
)

// Catalog is the slice of the book store the engine reads from.
type Catalog interface {
	ListCandidates(ctx context.Context, excludeIDs []int64, genre string) ([]*books.Book, error)
	ListPopular(ctx context.Context, excludeIDs []int64, limit int) ([]*books.Book, error)
}

// Interactions exposes a user's reading history.
type Interactions interface {
	ExcludedBookIDs(ctx context.Context, userID int64) ([]int64, error)
	FavoriteBooks(ctx context.Context, userID int64) ([]books.Book, error)
	ReviewedBooks(ctx context.Context, userID int64) ([]reviews.RatedBook, error)
}

// Service produces recommendations. It never returns an error: every
// failure mode inside the engine degrades to a fallback result.
type Service interface {
	Recommend(ctx context.Context, userID int64, req *RecommendationRequest) *RecommendationResult
}

type service struct {
	catalog      Catalog
	interactions Interactions
	embedding    Strategy
	genre        Strategy
	topRated     Strategy
	embedBudget  time.Duration
}

func NewService(catalog Catalog, interactions Interactions, provider EmbeddingProvider, cache *EmbeddingCache, workers int, embedBudget time.Duration) Service {
	if embedBudget <= 0 {
		embedBudget = 30 * time.Second
	}
	return &service{
		catalog:      catalog,
		interactions: interactions,
		embedding:    NewEmbeddingStrategy(provider, cache, workers),
		genre:        NewGenreStrategy(),
		topRated:     NewTopRatedStrategy(),
		embedBudget:  embedBudget,
	}
}

func (s *service) Recommend(ctx context.Context, userID int64, req *RecommendationRequest) (result *RecommendationResult) {
	if req.Type == "" {
		req.Type = TypeTopRated
	}

	start := time.Now()
	defer func() {
		recommendationDuration.Observe(time.Since(start).Seconds())
		if result != nil {
			recommendationRequests.WithLabelValues(string(req.Type), string(result.RecommendationType)).Inc()
			if result.IsFallback {
				recommendationFallbacks.Inc()
			}
		}
	}()

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	// The engine must always answer with a result, even if something
	// inside a strategy panics.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recommendation engine panic for user %d: %v", userID, r)
			result = s.popularFallback(ctx, userID, nil, limit, "Error processing recommendations")
		}
	}()

	excludeIDs, err := s.interactions.ExcludedBookIDs(ctx, userID)
	if err != nil {
		log.Printf("failed to load excluded books for user %d: %v", userID, err)
		excludeIDs = nil
	}

	candidates, err := s.catalog.ListCandidates(ctx, excludeIDs, req.Genre)
	if err != nil {
		log.Printf("failed to load candidates for user %d: %v", userID, err)
		candidates = nil
	}
	if len(candidates) == 0 {
		return s.popularFallback(ctx, userID, excludeIDs, limit, noBooksReason(req.Genre))
	}

	input := &StrategyInput{
		UserID:     userID,
		Genre:      req.Genre,
		Candidates: candidates,
	}

	if req.Type != TypeTopRated {
		favorites, err := s.interactions.FavoriteBooks(ctx, userID)
		if err != nil {
			log.Printf("failed to load favorites for user %d: %v", userID, err)
		}
		reviewed, err := s.interactions.ReviewedBooks(ctx, userID)
		if err != nil {
			log.Printf("failed to load reviewed books for user %d: %v", userID, err)
		}
		input.Favorites = favorites
		input.Reviewed = reviewed
		input.Profile = BuildProfile(favorites)
	}

	switch req.Type {
	case TypeTopRated:
		scored, _ := s.topRated.Score(ctx, input)
		return buildResult(scored, limit, TypeTopRated, false, false, nil)
	default:
		return s.personalized(ctx, input, req.Type, limit)
	}
}

// personalized runs the SIMILAR/AI chain: embedding similarity first,
// then genre similarity, then top-rated.
func (s *service) personalized(ctx context.Context, input *StrategyInput, requested RecommendationType, limit int) *RecommendationResult {
	// The whole embedding pass runs under one deadline; blowing it is
	// treated the same as a provider failure.
	embedCtx, cancel := context.WithTimeout(ctx, s.embedBudget)
	scored, err := s.embedding.Score(embedCtx, input)
	cancel()
	if err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			embeddingProviderErrors.Inc()
		}
		log.Printf("embedding strategy failed for user %d: %v", input.UserID, err)
	}
	if err == nil && len(scored) > 0 {
		return buildResult(scored, limit, requested, true, false, nil)
	}
	aiFailed := err != nil

	scored, _ = s.genre.Score(ctx, input)
	if len(scored) > 0 {
		if requested == TypeAI {
			reason := "AI recommendations unavailable"
			return buildResult(scored, limit, TypeSimilar, false, true, &reason)
		}
		// Genre overlap is still a similarity result, not a fallback,
		// unless the caller explicitly asked for AI.
		if aiFailed {
			log.Printf("serving genre similarity after embedding failure for user %d", input.UserID)
		}
		return buildResult(scored, limit, TypeSimilar, false, false, nil)
	}

	scored, _ = s.topRated.Score(ctx, input)
	reason := "No similar books found"
	if requested == TypeAI {
		reason = "AI recommendations unavailable"
	}
	return buildResult(scored, limit, TypeTopRated, false, true, &reason)
}

// popularFallback is the terminal answer when no candidates exist or
// the engine itself failed. It ignores any genre filter and never
// errors; an empty catalog yields an empty fallback result.
func (s *service) popularFallback(ctx context.Context, userID int64, excludeIDs []int64, limit int, reason string) *RecommendationResult {
	popular, err := s.catalog.ListPopular(ctx, excludeIDs, limit)
	if err != nil {
		log.Printf("popular fallback query failed for user %d: %v", userID, err)
		popular = nil
	}

	recommendations := make([]BookRecommendation, 0, len(popular))
	for _, book := range popular {
		recommendations = append(recommendations, toRecommendation(ScoredCandidate{
			Book:   book,
			Score:  book.AverageRating,
			Reason: "Popular among readers",
		}))
	}

	return &RecommendationResult{
		Recommendations:    recommendations,
		RecommendationType: TypeTopRated,
		IsAIPowered:        false,
		IsFallback:         true,
		FallbackReason:     &reason,
	}
}

func buildResult(scored []ScoredCandidate, limit int, served RecommendationType, aiPowered, fallback bool, reason *string) *RecommendationResult {
	recommendations := make([]BookRecommendation, 0, limit)
	seen := make(map[int64]bool, limit)
	for _, c := range scored {
		if seen[c.Book.ID] {
			continue
		}
		seen[c.Book.ID] = true
		recommendations = append(recommendations, toRecommendation(c))
		if len(recommendations) == limit {
			break
		}
	}
	return &RecommendationResult{
		Recommendations:    recommendations,
		RecommendationType: served,
		IsAIPowered:        aiPowered,
		IsFallback:         fallback,
		FallbackReason:     reason,
	}
}

func noBooksReason(genre string) string {
	if genre != "" {
		return fmt.Sprintf("No %s books found", genre)
	}
	return "No books found"
}

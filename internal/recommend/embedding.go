package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bookworm-app/bookworm-backend/internal/books"
)

// embeddingStrategy scores candidates by cosine similarity between an
// embedding of the user's reading history and embeddings of each
// candidate. Any provider failure aborts the whole strategy so the
// orchestrator can fall back; there is no per-candidate degradation.
type embeddingStrategy struct {
	provider EmbeddingProvider
	cache    *EmbeddingCache
	workers  int
}

func NewEmbeddingStrategy(provider EmbeddingProvider, cache *EmbeddingCache, workers int) Strategy {
	if workers <= 0 {
		workers = 8
	}
	return &embeddingStrategy{provider: provider, cache: cache, workers: workers}
}

func (s *embeddingStrategy) Name() string { return "embedding" }

func (s *embeddingStrategy) Score(ctx context.Context, input *StrategyInput) ([]ScoredCandidate, error) {
	if s.provider == nil {
		return nil, nil
	}

	userText := userSummary(input)
	if userText == "" {
		// No favorites and no reviews: nothing to personalize on.
		return nil, nil
	}

	userKey := fmt.Sprintf("embedding:user:%d", input.UserID)
	userVector, err := s.cache.GetOrCompute(ctx, userKey, func(ctx context.Context) ([]float64, error) {
		return s.provider.Embed(ctx, userText)
	})
	if err != nil {
		return nil, err
	}

	// Fan out candidate embeddings with a bounded worker count. Each
	// goroutine writes to its own index so candidate-to-vector mapping
	// survives out-of-order completion.
	vectors := make([][]float64, len(input.Candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, book := range input.Candidates {
		i, book := i, book
		g.Go(func() error {
			key := fmt.Sprintf("embedding:book:%d", book.ID)
			text := bookSummary(book)
			vector, err := s.cache.GetOrCompute(gctx, key, func(ctx context.Context) ([]float64, error) {
				return s.provider.Embed(ctx, text)
			})
			if err != nil {
				return err
			}
			vectors[i] = vector
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scored := make([]ScoredCandidate, 0, len(input.Candidates))
	for i, book := range input.Candidates {
		score := cosineSimilarity(userVector, vectors[i])

		reason := "Recommended by AI based on your reading history"
		if input.Genre != "" && book.HasGenre(input.Genre) {
			score *= 1.2
			reason = fmt.Sprintf("Recommended by AI for %s fans", input.Genre)
		}

		scored = append(scored, ScoredCandidate{Book: book, Score: score, Reason: reason})
	}

	sortCandidates(scored)
	return scored, nil
}

// userSummary builds the text the user's interest vector is computed
// from. Reviews contribute a sentiment tag based on their rating.
func userSummary(input *StrategyInput) string {
	var parts []string
	for i := range input.Favorites {
		b := &input.Favorites[i]
		parts = append(parts, fmt.Sprintf("Favorite book: %s by %s (%s)", b.Title, b.Author, strings.Join(b.Genres, ", ")))
	}
	for i := range input.Reviewed {
		r := &input.Reviewed[i]
		parts = append(parts, fmt.Sprintf("User %s %s by %s (%s)", sentiment(r.Rating), r.Book.Title, r.Book.Author, strings.Join(r.Book.Genres, ", ")))
	}
	return strings.Join(parts, ". ")
}

func sentiment(rating int) string {
	switch {
	case rating >= 4:
		return "likes"
	case rating == 3:
		return "is neutral about"
	default:
		return "dislikes"
	}
}

func bookSummary(b *books.Book) string {
	summary := fmt.Sprintf("%s by %s. Genres: %s.", b.Title, b.Author, strings.Join(b.Genres, ", "))
	if b.Description != nil && *b.Description != "" {
		summary += " " + *b.Description
	}
	return summary
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

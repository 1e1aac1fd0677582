package recommend

import (
	"context"
	"sort"

	"github.com/bookworm-app/bookworm-backend/internal/books"
	"github.com/bookworm-app/bookworm-backend/internal/reviews"
)

// StrategyInput carries everything a strategy needs to score candidates.
// Candidates are already filtered to exclude books the user has reviewed
// or favorited.
type StrategyInput struct {
	UserID     int64
	Genre      string
	Candidates []*books.Book
	Profile    PreferenceProfile
	Favorites  []books.Book
	Reviewed   []reviews.RatedBook
}

// Strategy scores and ranks candidates. A strategy returning an empty
// slice with a nil error signals it has nothing to offer and the next
// strategy in the chain should run.
type Strategy interface {
	Name() string
	Score(ctx context.Context, input *StrategyInput) ([]ScoredCandidate, error)
}

// sortCandidates orders scored candidates deterministically: score
// descending, then average rating descending, then book ID ascending.
func sortCandidates(scored []ScoredCandidate) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Book.AverageRating != scored[j].Book.AverageRating {
			return scored[i].Book.AverageRating > scored[j].Book.AverageRating
		}
		return scored[i].Book.ID < scored[j].Book.ID
	})
}

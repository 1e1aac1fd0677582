package recommend

import (
	"context"
	"fmt"
)

// topRatedStrategy ranks candidates by average rating with a small,
// capped review-count tiebreak. It is the terminal strategy: it never
// fails and never returns empty given non-empty candidates.
type topRatedStrategy struct{}

func NewTopRatedStrategy() Strategy {
	return &topRatedStrategy{}
}

func (s *topRatedStrategy) Name() string { return "top_rated" }

func (s *topRatedStrategy) Score(ctx context.Context, input *StrategyInput) ([]ScoredCandidate, error) {
	scored := make([]ScoredCandidate, 0, len(input.Candidates))
	for _, book := range input.Candidates {
		// Review-count term caps at 0.1 so it can only break ties
		// within a rating tier, never reorder across tiers.
		bump := float64(book.TotalReviews) / 1000
		if bump > 0.1 {
			bump = 0.1
		}

		reason := fmt.Sprintf("Highly rated: %.1f stars from %d reviews", book.AverageRating, book.TotalReviews)
		if input.Genre != "" {
			reason = fmt.Sprintf("Top rated in %s", input.Genre)
		}

		scored = append(scored, ScoredCandidate{
			Book:   book,
			Score:  book.AverageRating + bump,
			Reason: reason,
		})
	}

	sortCandidates(scored)
	return scored, nil
}

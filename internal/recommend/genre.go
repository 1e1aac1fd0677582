package recommend

import (
	"context"
	"strings"
)

// genreStrategy scores candidates by overlap between their genres and
// the user's preference profile. Genre match dominates the score;
// rating only breaks near-ties. Returns empty when the profile is
// empty or no candidate overlaps it.
type genreStrategy struct{}

func NewGenreStrategy() Strategy {
	return &genreStrategy{}
}

func (s *genreStrategy) Name() string { return "genre" }

func (s *genreStrategy) Score(ctx context.Context, input *StrategyInput) ([]ScoredCandidate, error) {
	if len(input.Profile) == 0 {
		return nil, nil
	}

	favoriteSets := make([]map[string]bool, 0, len(input.Favorites))
	for i := range input.Favorites {
		favoriteSets = append(favoriteSets, genreSet(input.Favorites[i].Genres))
	}

	scored := make([]ScoredCandidate, 0, len(input.Candidates))
	for _, book := range input.Candidates {
		var matching []string
		preference := 0.0
		for _, genre := range book.Genres {
			weight, ok := input.Profile[genre]
			if !ok {
				continue
			}
			matching = append(matching, genre)
			preference += weight
		}
		if len(matching) == 0 {
			continue
		}

		score := preference * 100
		if len(book.Genres) > 0 {
			score += float64(len(matching)) / float64(len(book.Genres)) * 10
		}
		if matchesAnyFavoriteSet(genreSet(book.Genres), favoriteSets) {
			score += 50
		}
		score += (book.AverageRating - 3.0) / 1000

		scored = append(scored, ScoredCandidate{
			Book:   book,
			Score:  score,
			Reason: "Matches your interest in " + strings.Join(matching, ", "),
		})
	}

	sortCandidates(scored)
	return scored, nil
}

func genreSet(genres []string) map[string]bool {
	set := make(map[string]bool, len(genres))
	for _, g := range genres {
		set[g] = true
	}
	return set
}

func matchesAnyFavoriteSet(candidate map[string]bool, favorites []map[string]bool) bool {
	for _, fav := range favorites {
		if len(fav) != len(candidate) {
			continue
		}
		equal := true
		for g := range candidate {
			if !fav[g] {
				equal = false
				break
			}
		}
		if equal {
			return true
		}
	}
	return false
}

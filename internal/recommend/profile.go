package recommend

import (
	"github.com/bookworm-app/bookworm-backend/internal/books"
)

// BuildProfile derives a user's genre preference weights from their
// favorited books. Each genre is counted once per book that carries it,
// then counts are normalized by the total so weights sum to 1.0. A user
// with no favorites gets an empty profile.
func BuildProfile(favorites []books.Book) PreferenceProfile {
	counts := make(map[string]int)
	total := 0

	for i := range favorites {
		seen := make(map[string]bool)
		for _, genre := range favorites[i].Genres {
			if seen[genre] {
				continue
			}
			seen[genre] = true
			counts[genre]++
			total++
		}
	}

	profile := make(PreferenceProfile, len(counts))
	if total == 0 {
		return profile
	}
	for genre, count := range counts {
		profile[genre] = float64(count) / float64(total)
	}
	return profile
}

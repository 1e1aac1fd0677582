package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm-app/bookworm-backend/internal/books"
)

func book(id int64, title string, rating float64, totalReviews int, genres ...string) *books.Book {
	return &books.Book{
		ID:            id,
		Title:         title,
		AverageRating: rating,
		TotalReviews:  totalReviews,
		Genres:        genres,
	}
}

func TestTopRatedReviewBumpIsCapped(t *testing.T) {
	strategy := NewTopRatedStrategy()

	// Same rating, wildly different review counts: the bump must stay
	// within 0.1 so a higher-rated book always wins.
	input := &StrategyInput{Candidates: []*books.Book{
		book(1, "modest", 4.0, 10),
		book(2, "popular", 4.0, 100000),
		book(3, "better", 4.1, 5),
	}}

	scored, err := strategy.Score(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, int64(3), scored[0].Book.ID)
	assert.Equal(t, int64(2), scored[1].Book.ID)
	assert.Equal(t, int64(1), scored[2].Book.ID)
	assert.LessOrEqual(t, scored[1].Score-scored[2].Score, 0.1)
}

func TestTopRatedGenreReason(t *testing.T) {
	strategy := NewTopRatedStrategy()

	input := &StrategyInput{
		Genre:      "Mystery",
		Candidates: []*books.Book{book(1, "whodunit", 4.5, 230, "Mystery")},
	}

	scored, err := strategy.Score(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, "Top rated in Mystery", scored[0].Reason)
}

func TestGenreStrategyEmptyProfile(t *testing.T) {
	strategy := NewGenreStrategy()

	input := &StrategyInput{Candidates: []*books.Book{book(1, "a", 4.0, 10, "Mystery")}}

	scored, err := strategy.Score(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestGenreStrategyExcludesNonOverlapping(t *testing.T) {
	strategy := NewGenreStrategy()

	input := &StrategyInput{
		Profile: PreferenceProfile{"Mystery": 0.5, "Thriller": 0.5},
		Candidates: []*books.Book{
			book(1, "both", 4.0, 10, "Mystery", "Thriller"),
			book(2, "one", 4.0, 10, "Mystery", "Romance"),
			book(3, "none", 5.0, 500, "Romance"),
		},
	}

	scored, err := strategy.Score(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, scored, 2)

	assert.Equal(t, int64(1), scored[0].Book.ID)
	assert.Equal(t, int64(2), scored[1].Book.ID)
	assert.Greater(t, scored[0].Score, scored[1].Score)
	assert.Equal(t, "Matches your interest in Mystery, Thriller", scored[0].Reason)
}

func TestGenreStrategyExactSetBonus(t *testing.T) {
	strategy := NewGenreStrategy()

	input := &StrategyInput{
		Profile: PreferenceProfile{"Mystery": 0.5, "Thriller": 0.5},
		Favorites: []books.Book{
			{ID: 10, Genres: []string{"Mystery", "Thriller"}},
		},
		Candidates: []*books.Book{
			book(1, "exact", 4.0, 10, "Mystery", "Thriller"),
			book(2, "subset", 4.0, 10, "Mystery", "Thriller", "Noir"),
		},
	}

	scored, err := strategy.Score(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, scored, 2)

	assert.Equal(t, int64(1), scored[0].Book.ID)
	// Bonus plus full-match percentage separates them by well over 50.
	assert.Greater(t, scored[0].Score-scored[1].Score, 50.0)
}

func TestGenreStrategyDeterministicTieBreak(t *testing.T) {
	strategy := NewGenreStrategy()

	input := &StrategyInput{
		Profile: PreferenceProfile{"Fantasy": 1.0},
		Candidates: []*books.Book{
			book(7, "b", 4.0, 10, "Fantasy"),
			book(3, "a", 4.0, 10, "Fantasy"),
		},
	}

	for i := 0; i < 5; i++ {
		scored, err := strategy.Score(context.Background(), input)
		require.NoError(t, err)
		require.Len(t, scored, 2)
		assert.Equal(t, int64(3), scored[0].Book.ID)
		assert.Equal(t, int64(7), scored[1].Book.ID)
	}
}

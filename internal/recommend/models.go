package recommend

import (
	"github.com/bookworm-app/bookworm-backend/internal/books"
)

// RecommendationType labels which strategy produced a result set.
type RecommendationType string

const (
	TypeTopRated RecommendationType = "top_rated"
	TypeSimilar  RecommendationType = "similar"
	TypeAI       RecommendationType = "ai"
)

// PreferenceProfile maps genre names to normalized weights. Weights
// always sum to 1.0 for a user with at least one favorited book.
type PreferenceProfile map[string]float64

// ScoredCandidate pairs a catalog book with the score a strategy
// assigned to it and a human-readable reason.
type ScoredCandidate struct {
	Book   *books.Book
	Score  float64
	Reason string
}

// RecommendationRequest is the POST body for the recommendations
// endpoint. An omitted type means top_rated.
type RecommendationRequest struct {
	Type  RecommendationType `json:"recommendation_type" validate:"omitempty,oneof=top_rated similar ai"`
	Genre string             `json:"genre,omitempty"`
	Limit int                `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// BookRecommendation is a single entry in a recommendation response.
type BookRecommendation struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	Genres          []string `json:"genres"`
	AverageRating   float64  `json:"average_rating"`
	RatingCount     int      `json:"rating_count"`
	PublicationYear *int     `json:"publication_year,omitempty"`
	Score           float64  `json:"relevance_score"`
	Reason          string   `json:"recommendation_reason"`
}

// RecommendationResult is the full response for a recommendation request.
type RecommendationResult struct {
	Recommendations    []BookRecommendation `json:"recommendations"`
	RecommendationType RecommendationType   `json:"recommendation_type"`
	IsAIPowered        bool                 `json:"is_ai_powered"`
	IsFallback         bool                 `json:"is_fallback"`
	FallbackReason     *string              `json:"fallback_reason,omitempty"`
}

const (
	defaultLimit = 10
	maxLimit     = 50
)

func toRecommendation(c ScoredCandidate) BookRecommendation {
	return BookRecommendation{
		ID:              c.Book.ID,
		Title:           c.Book.Title,
		Author:          c.Book.Author,
		Genres:          []string(c.Book.Genres),
		AverageRating:   c.Book.AverageRating,
		RatingCount:     c.Book.TotalReviews,
		PublicationYear: c.Book.PublicationYear(),
		Score:           c.Score,
		Reason:          c.Reason,
	}
}

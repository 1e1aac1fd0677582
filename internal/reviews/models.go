package reviews

import (
	"time"

	"github.com/bookworm-app/bookworm-backend/internal/books"
)

type Review struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	BookID         int64      `json:"book_id" db:"book_id"`
	Content        string     `json:"content" db:"content"`
	Rating         int        `json:"rating" db:"rating"`
	HelpfulVotes   int        `json:"helpful_votes" db:"helpful_votes"`
	UnhelpfulVotes int        `json:"unhelpful_votes" db:"unhelpful_votes"`
	IsDeleted      bool       `json:"-" db:"is_deleted"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// RatedBook pairs a book with the rating the user gave it. It feeds the
// recommendation engine's interest modeling.
type RatedBook struct {
	Book   books.Book
	Rating int
}

// DTOs for API requests/responses

type CreateReviewDTO struct {
	BookID  int64  `json:"book_id" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=5000"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

type UpdateReviewDTO struct {
	Content *string `json:"content,omitempty" validate:"omitempty,min=1,max=5000"`
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

type VoteReviewDTO struct {
	IsHelpful bool `json:"is_helpful"`
}

package books

import (
	"time"

	"github.com/lib/pq"
)

// Book is a catalog entry. Genres map to a Postgres text array.
type Book struct {
	ID              int64          `json:"id" db:"id"`
	Title           string         `json:"title" db:"title"`
	Author          string         `json:"author" db:"author"`
	ISBN            string         `json:"isbn" db:"isbn"`
	Genres          pq.StringArray `json:"genres" db:"genres"`
	Description     *string        `json:"description,omitempty" db:"description"`
	PublicationDate *time.Time     `json:"publication_date,omitempty" db:"publication_date"`
	AverageRating   float64        `json:"average_rating" db:"average_rating"`
	TotalReviews    int            `json:"total_reviews" db:"total_reviews"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// PublicationYear returns the year of publication, or nil when unknown.
func (b *Book) PublicationYear() *int {
	if b.PublicationDate == nil {
		return nil
	}
	year := b.PublicationDate.Year()
	return &year
}

// HasGenre reports whether the book lists the given genre (case-sensitive).
func (b *Book) HasGenre(genre string) bool {
	for _, g := range b.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// DTOs for API requests/responses

type CreateBookDTO struct {
	Title           string   `json:"title" validate:"required,max=255"`
	Author          string   `json:"author" validate:"required,max=255"`
	ISBN            string   `json:"isbn" validate:"required,min=10,max=13"`
	Genres          []string `json:"genres,omitempty" validate:"omitempty,dive,max=50"`
	Description     string   `json:"description,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
}

type UpdateBookDTO struct {
	Title           *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	Author          *string  `json:"author,omitempty" validate:"omitempty,max=255"`
	Genres          []string `json:"genres,omitempty" validate:"omitempty,dive,max=50"`
	Description     *string  `json:"description,omitempty"`
	PublicationDate *string  `json:"publication_date,omitempty"`
}

// SearchParams controls catalog listing.
type SearchParams struct {
	Search    string
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

// BookListResponse is the paginated catalog listing payload.
type BookListResponse struct {
	Books        []*Book `json:"books"`
	Total        int     `json:"total"`
	Page         int     `json:"page"`
	ItemsPerPage int     `json:"items_per_page"`
	TotalPages   int     `json:"total_pages"`
}

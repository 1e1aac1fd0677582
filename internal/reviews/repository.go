package reviews

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/bookworm-app/bookworm-backend/internal/books"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("book already reviewed by this user")
	ErrAlreadyVoted    = errors.New("review already voted on by this user")
	ErrNotFavorited    = errors.New("book is not in favorites")
)

type Repository interface {
	// Reviews
	CreateReview(ctx context.Context, review *Review) error
	GetReview(ctx context.Context, id int64) (*Review, error)
	UpdateReview(ctx context.Context, review *Review) error
	DeleteReview(ctx context.Context, id int64) error
	ListBookReviews(ctx context.Context, bookID int64) ([]*Review, error)
	HasReviewed(ctx context.Context, userID, bookID int64) (bool, error)
	VoteReview(ctx context.Context, reviewID, userID int64, helpful bool) error

	// Favorites
	AddFavorite(ctx context.Context, userID, bookID int64) error
	RemoveFavorite(ctx context.Context, userID, bookID int64) error

	// Interaction queries for the recommendation engine
	ExcludedBookIDs(ctx context.Context, userID int64) ([]int64, error)
	FavoriteBooks(ctx context.Context, userID int64) ([]books.Book, error)
	ReviewedBooks(ctx context.Context, userID int64) ([]RatedBook, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Review methods

func (r *postgresRepository) CreateReview(ctx context.Context, review *Review) error {
	exists, err := r.HasReviewed(ctx, review.UserID, review.BookID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyReviewed
	}

	query := `
		INSERT INTO reviews (user_id, book_id, content, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return r.db.QueryRowxContext(
		ctx, query,
		review.UserID, review.BookID, review.Content, review.Rating,
	).Scan(&review.ID, &review.CreatedAt)
}

func (r *postgresRepository) GetReview(ctx context.Context, id int64) (*Review, error) {
	var review Review
	query := `SELECT * FROM reviews WHERE id = $1 AND is_deleted = FALSE`

	err := r.db.GetContext(ctx, &review, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}

	return &review, nil
}

func (r *postgresRepository) UpdateReview(ctx context.Context, review *Review) error {
	query := `
		UPDATE reviews
		SET content = $2, rating = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND is_deleted = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, review.ID, review.Content, review.Rating)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *postgresRepository) DeleteReview(ctx context.Context, id int64) error {
	// Soft delete keeps the rating history intact
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *postgresRepository) ListBookReviews(ctx context.Context, bookID int64) ([]*Review, error) {
	var result []*Review
	query := `
		SELECT * FROM reviews
		WHERE book_id = $1 AND is_deleted = FALSE
		ORDER BY helpful_votes DESC, created_at DESC
	`

	if err := r.db.SelectContext(ctx, &result, query, bookID); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *postgresRepository) HasReviewed(ctx context.Context, userID, bookID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reviews
			WHERE user_id = $1 AND book_id = $2 AND is_deleted = FALSE
		)
	`

	err := r.db.GetContext(ctx, &exists, query, userID, bookID)
	return exists, err
}

func (r *postgresRepository) VoteReview(ctx context.Context, reviewID, userID int64, helpful bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO review_votes (user_id, review_id, is_helpful)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, review_id) DO NOTHING
	`, userID, reviewID, helpful)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadyVoted
	}

	column := "unhelpful_votes"
	if helpful {
		column = "helpful_votes"
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE reviews SET `+column+` = `+column+` + 1 WHERE id = $1`, reviewID); err != nil {
		return err
	}

	return tx.Commit()
}

// Favorite methods

func (r *postgresRepository) AddFavorite(ctx context.Context, userID, bookID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_favorites (user_id, book_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, book_id) DO NOTHING
	`, userID, bookID)

	return err
}

func (r *postgresRepository) RemoveFavorite(ctx context.Context, userID, bookID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_favorites WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFavorited
	}

	return nil
}

// Interaction queries

// ExcludedBookIDs returns every book the user has reviewed or favorited.
// These are never recommended back to the user.
func (r *postgresRepository) ExcludedBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	query := `
		SELECT book_id FROM reviews WHERE user_id = $1 AND is_deleted = FALSE
		UNION
		SELECT book_id FROM user_favorites WHERE user_id = $1
	`

	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *postgresRepository) FavoriteBooks(ctx context.Context, userID int64) ([]books.Book, error) {
	var result []books.Book
	query := `
		SELECT b.* FROM books b
		JOIN user_favorites uf ON uf.book_id = b.id
		WHERE uf.user_id = $1
		ORDER BY uf.created_at DESC
	`

	if err := r.db.SelectContext(ctx, &result, query, userID); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *postgresRepository) ReviewedBooks(ctx context.Context, userID int64) ([]RatedBook, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT b.*, r.rating AS review_rating
		FROM books b
		JOIN reviews r ON r.book_id = b.id
		WHERE r.user_id = $1 AND r.is_deleted = FALSE
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RatedBook
	for rows.Next() {
		var row struct {
			books.Book
			ReviewRating int `db:"review_rating"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		result = append(result, RatedBook{Book: row.Book, Rating: row.ReviewRating})
	}

	return result, rows.Err()
}

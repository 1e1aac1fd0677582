package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrBookNotFound = errors.New("book not found")

type Repository interface {
	// CRUD
	CreateBook(ctx context.Context, book *Book) error
	GetBook(ctx context.Context, id int64) (*Book, error)
	UpdateBook(ctx context.Context, book *Book) error
	DeleteBook(ctx context.Context, id int64) error
	ListBooks(ctx context.Context, params *SearchParams) ([]*Book, int, error)

	// Recommendation queries
	ListCandidates(ctx context.Context, excludeIDs []int64, genre string) ([]*Book, error)
	ListPopular(ctx context.Context, excludeIDs []int64, limit int) ([]*Book, error)

	// Rating rollup
	RecalculateRating(ctx context.Context, bookID int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateBook(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (title, author, isbn, genres, description, publication_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, average_rating, total_reviews, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		book.Title, book.Author, book.ISBN,
		pq.Array([]string(book.Genres)), book.Description, book.PublicationDate,
	).Scan(&book.ID, &book.AverageRating, &book.TotalReviews, &book.CreatedAt)

	return err
}

func (r *postgresRepository) GetBook(ctx context.Context, id int64) (*Book, error) {
	var book Book
	query := `SELECT * FROM books WHERE id = $1`

	err := r.db.GetContext(ctx, &book, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	return &book, nil
}

func (r *postgresRepository) UpdateBook(ctx context.Context, book *Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, genres = $4, description = $5, publication_date = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx, query,
		book.ID, book.Title, book.Author,
		pq.Array([]string(book.Genres)), book.Description, book.PublicationDate,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookNotFound
	}

	return nil
}

func (r *postgresRepository) DeleteBook(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookNotFound
	}

	return nil
}

// sortColumns maps API sort fields to database columns.
var sortColumns = map[string]string{
	"title":            "title",
	"author":           "author",
	"rating":           "average_rating",
	"average_rating":   "average_rating",
	"total_reviews":    "total_reviews",
	"date":             "publication_date",
	"publication_date": "publication_date",
}

func (r *postgresRepository) ListBooks(ctx context.Context, params *SearchParams) ([]*Book, int, error) {
	where := ""
	args := []interface{}{}

	if params.Search != "" {
		where = `WHERE title ILIKE $1 OR author ILIKE $1`
		args = append(args, "%"+params.Search+"%")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM books %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	orderBy := "id ASC"
	if col, ok := sortColumns[params.SortBy]; ok {
		direction := "ASC"
		if strings.EqualFold(params.SortOrder, "desc") {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s, id ASC", col, direction)
	}

	query := fmt.Sprintf(
		`SELECT * FROM books %s ORDER BY %s OFFSET %d LIMIT %d`,
		where, orderBy, params.Offset, params.Limit,
	)

	var result []*Book
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

// ListCandidates returns catalog books not in excludeIDs, optionally
// restricted to an exact genre match. No ordering is guaranteed.
func (r *postgresRepository) ListCandidates(ctx context.Context, excludeIDs []int64, genre string) ([]*Book, error) {
	query := `
		SELECT * FROM books
		WHERE NOT (id = ANY($1))
		  AND ($2 = '' OR $2 = ANY(genres))
	`

	var result []*Book
	err := r.db.SelectContext(ctx, &result, query, excludeArg(excludeIDs), genre)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListPopular returns well-reviewed books ordered by review volume then
// rating. It is the terminal recommendation fallback query.
func (r *postgresRepository) ListPopular(ctx context.Context, excludeIDs []int64, limit int) ([]*Book, error) {
	query := `
		SELECT * FROM books
		WHERE NOT (id = ANY($1))
		  AND average_rating >= 3.5
		  AND total_reviews > 0
		ORDER BY total_reviews DESC, average_rating DESC, id ASC
		LIMIT $2
	`

	var result []*Book
	err := r.db.SelectContext(ctx, &result, query, excludeArg(excludeIDs), limit)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// excludeArg turns an exclusion list into a SQL array parameter. A nil
// slice must become an empty array, not NULL: `id = ANY(NULL)` is NULL
// in Postgres and would empty the whole result set.
func excludeArg(ids []int64) interface{} {
	if ids == nil {
		ids = []int64{}
	}
	return pq.Array(ids)
}

// RecalculateRating recomputes the book's average rating and review
// count from its live reviews. Folding new ratings into the stored
// rounded average would compound rounding error over time, so the
// rollup always reads the source rows.
func (r *postgresRepository) RecalculateRating(ctx context.Context, bookID int64) error {
	query := `
		UPDATE books
		SET average_rating = COALESCE((
			SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews
			WHERE book_id = $1 AND is_deleted = FALSE
		), 0),
		    total_reviews = (
			SELECT COUNT(*) FROM reviews
			WHERE book_id = $1 AND is_deleted = FALSE
		)
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, bookID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookNotFound
	}

	return nil
}

package books

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	Repository
	created *Book
	listed  *SearchParams
	books   []*Book
	total   int
}

func (f *fakeRepository) CreateBook(ctx context.Context, book *Book) error {
	f.created = book
	book.ID = 1
	return nil
}

func (f *fakeRepository) ListBooks(ctx context.Context, params *SearchParams) ([]*Book, int, error) {
	f.listed = params
	return f.books, f.total, nil
}

func TestCreateBookParsesPublicationDate(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo)

	book, err := svc.CreateBook(context.Background(), &CreateBookDTO{
		Title:           "Dune",
		Author:          "Frank Herbert",
		ISBN:            "9780441013593",
		Genres:          []string{"Science Fiction"},
		PublicationDate: "1965-08-01",
	})

	require.NoError(t, err)
	require.NotNil(t, book.PublicationDate)
	year := book.PublicationYear()
	require.NotNil(t, year)
	assert.Equal(t, 1965, *year)
}

func TestCreateBookRejectsBadDate(t *testing.T) {
	svc := NewService(&fakeRepository{})

	_, err := svc.CreateBook(context.Background(), &CreateBookDTO{
		Title:           "Dune",
		Author:          "Frank Herbert",
		ISBN:            "9780441013593",
		PublicationDate: "August 1965",
	})

	assert.Error(t, err)
}

func TestListBooksClampsPagination(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo)

	_, err := svc.ListBooks(context.Background(), &SearchParams{Limit: 500, Offset: -3})
	require.NoError(t, err)

	require.NotNil(t, repo.listed)
	assert.Equal(t, 100, repo.listed.Limit)
	assert.Equal(t, 0, repo.listed.Offset)
}

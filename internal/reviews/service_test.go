package reviews

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm-app/bookworm-backend/internal/books"
)

type fakeBookRepo struct {
	books.Repository
	recalculated []int64
}

func (f *fakeBookRepo) GetBook(ctx context.Context, id int64) (*books.Book, error) {
	return &books.Book{ID: id}, nil
}

func (f *fakeBookRepo) RecalculateRating(ctx context.Context, bookID int64) error {
	f.recalculated = append(f.recalculated, bookID)
	return nil
}

type fakeReviewRepo struct {
	Repository
	stored *Review
}

func (f *fakeReviewRepo) CreateReview(ctx context.Context, review *Review) error {
	review.ID = 1
	f.stored = review
	return nil
}

func (f *fakeReviewRepo) GetReview(ctx context.Context, id int64) (*Review, error) {
	if f.stored == nil || f.stored.ID != id {
		return nil, ErrReviewNotFound
	}
	found := *f.stored
	return &found, nil
}

func (f *fakeReviewRepo) UpdateReview(ctx context.Context, review *Review) error {
	f.stored = review
	return nil
}

func (f *fakeReviewRepo) DeleteReview(ctx context.Context, id int64) error {
	f.stored = nil
	return nil
}

func TestCreateReviewTriggersRatingRollup(t *testing.T) {
	bookRepo := &fakeBookRepo{}
	svc := NewService(&fakeReviewRepo{}, bookRepo)

	_, err := svc.CreateReview(context.Background(), 7, &CreateReviewDTO{
		BookID:  42,
		Content: "gripping",
		Rating:  5,
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{42}, bookRepo.recalculated)
}

func TestUpdateReviewRollsUpOnlyOnRatingChange(t *testing.T) {
	bookRepo := &fakeBookRepo{}
	repo := &fakeReviewRepo{}
	svc := NewService(repo, bookRepo)

	review, err := svc.CreateReview(context.Background(), 7, &CreateReviewDTO{
		BookID:  42,
		Content: "gripping",
		Rating:  5,
	})
	require.NoError(t, err)
	require.Len(t, bookRepo.recalculated, 1)

	// Content-only edit leaves the rollup alone.
	content := "still gripping"
	_, err = svc.UpdateReview(context.Background(), review.ID, 7, &UpdateReviewDTO{Content: &content})
	require.NoError(t, err)
	assert.Len(t, bookRepo.recalculated, 1)

	rating := 3
	_, err = svc.UpdateReview(context.Background(), review.ID, 7, &UpdateReviewDTO{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, []int64{42, 42}, bookRepo.recalculated)
}

func TestDeleteReviewTriggersRatingRollup(t *testing.T) {
	bookRepo := &fakeBookRepo{}
	repo := &fakeReviewRepo{}
	svc := NewService(repo, bookRepo)

	review, err := svc.CreateReview(context.Background(), 7, &CreateReviewDTO{
		BookID:  42,
		Content: "gripping",
		Rating:  5,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReview(context.Background(), review.ID, 7))
	assert.Equal(t, []int64{42, 42}, bookRepo.recalculated)
}

func TestDeleteReviewRejectsNonOwner(t *testing.T) {
	repo := &fakeReviewRepo{}
	svc := NewService(repo, &fakeBookRepo{})

	review, err := svc.CreateReview(context.Background(), 7, &CreateReviewDTO{
		BookID:  42,
		Content: "gripping",
		Rating:  4,
	})
	require.NoError(t, err)

	err = svc.DeleteReview(context.Background(), review.ID, 8)
	assert.ErrorIs(t, err, ErrNotReviewOwner)
}

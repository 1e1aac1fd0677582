package reviews

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bookworm-app/bookworm-backend/internal/books"
)

var ErrNotReviewOwner = errors.New("not the review owner")

type Service interface {
	CreateReview(ctx context.Context, userID int64, dto *CreateReviewDTO) (*Review, error)
	UpdateReview(ctx context.Context, reviewID, userID int64, dto *UpdateReviewDTO) (*Review, error)
	DeleteReview(ctx context.Context, reviewID, userID int64) error
	ListBookReviews(ctx context.Context, bookID int64) ([]*Review, error)
	VoteReview(ctx context.Context, reviewID, userID int64, helpful bool) error

	AddFavorite(ctx context.Context, userID, bookID int64) error
	RemoveFavorite(ctx context.Context, userID, bookID int64) error
	ListFavorites(ctx context.Context, userID int64) ([]books.Book, error)
}

type service struct {
	repo     Repository
	bookRepo books.Repository
}

func NewService(repo Repository, bookRepo books.Repository) Service {
	return &service{repo: repo, bookRepo: bookRepo}
}

func (s *service) CreateReview(ctx context.Context, userID int64, dto *CreateReviewDTO) (*Review, error) {
	// Reject reviews for books that do not exist
	if _, err := s.bookRepo.GetBook(ctx, dto.BookID); err != nil {
		return nil, err
	}

	review := &Review{
		UserID:  userID,
		BookID:  dto.BookID,
		Content: dto.Content,
		Rating:  dto.Rating,
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	// The review itself is already committed; a rollup failure is
	// logged, not surfaced.
	s.recalculateRating(ctx, dto.BookID)

	return review, nil
}

func (s *service) UpdateReview(ctx context.Context, reviewID, userID int64, dto *UpdateReviewDTO) (*Review, error) {
	review, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.UserID != userID {
		return nil, ErrNotReviewOwner
	}

	ratingChanged := false
	if dto.Content != nil {
		review.Content = *dto.Content
	}
	if dto.Rating != nil && *dto.Rating != review.Rating {
		review.Rating = *dto.Rating
		ratingChanged = true
	}

	if err := s.repo.UpdateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if ratingChanged {
		s.recalculateRating(ctx, review.BookID)
	}

	return review, nil
}

func (s *service) DeleteReview(ctx context.Context, reviewID, userID int64) error {
	review, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}

	if review.UserID != userID {
		return ErrNotReviewOwner
	}

	if err := s.repo.DeleteReview(ctx, reviewID); err != nil {
		return err
	}

	s.recalculateRating(ctx, review.BookID)
	return nil
}

func (s *service) recalculateRating(ctx context.Context, bookID int64) {
	if err := s.bookRepo.RecalculateRating(ctx, bookID); err != nil {
		log.Printf("Failed to update rating for book %d: %v", bookID, err)
	}
}

func (s *service) ListBookReviews(ctx context.Context, bookID int64) ([]*Review, error) {
	return s.repo.ListBookReviews(ctx, bookID)
}

func (s *service) VoteReview(ctx context.Context, reviewID, userID int64, helpful bool) error {
	if _, err := s.repo.GetReview(ctx, reviewID); err != nil {
		return err
	}

	return s.repo.VoteReview(ctx, reviewID, userID, helpful)
}

func (s *service) AddFavorite(ctx context.Context, userID, bookID int64) error {
	if _, err := s.bookRepo.GetBook(ctx, bookID); err != nil {
		return err
	}

	return s.repo.AddFavorite(ctx, userID, bookID)
}

func (s *service) RemoveFavorite(ctx context.Context, userID, bookID int64) error {
	return s.repo.RemoveFavorite(ctx, userID, bookID)
}

func (s *service) ListFavorites(ctx context.Context, userID int64) ([]books.Book, error) {
	return s.repo.FavoriteBooks(ctx, userID)
}

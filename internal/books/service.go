package books

import (
	"context"
	"fmt"
	"time"
)

type Service interface {
	CreateBook(ctx context.Context, dto *CreateBookDTO) (*Book, error)
	GetBook(ctx context.Context, id int64) (*Book, error)
	UpdateBook(ctx context.Context, id int64, dto *UpdateBookDTO) (*Book, error)
	DeleteBook(ctx context.Context, id int64) error
	ListBooks(ctx context.Context, params *SearchParams) (*BookListResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateBook(ctx context.Context, dto *CreateBookDTO) (*Book, error) {
	book := &Book{
		Title:  dto.Title,
		Author: dto.Author,
		ISBN:   dto.ISBN,
		Genres: dto.Genres,
	}

	if dto.Description != "" {
		book.Description = &dto.Description
	}

	if dto.PublicationDate != "" {
		date, err := time.Parse("2006-01-02", dto.PublicationDate)
		if err != nil {
			return nil, fmt.Errorf("invalid publication date: %w", err)
		}
		book.PublicationDate = &date
	}

	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return book, nil
}

func (s *service) GetBook(ctx context.Context, id int64) (*Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *service) UpdateBook(ctx context.Context, id int64, dto *UpdateBookDTO) (*Book, error) {
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		book.Title = *dto.Title
	}
	if dto.Author != nil {
		book.Author = *dto.Author
	}
	if dto.Genres != nil {
		book.Genres = dto.Genres
	}
	if dto.Description != nil {
		book.Description = dto.Description
	}
	if dto.PublicationDate != nil {
		date, err := time.Parse("2006-01-02", *dto.PublicationDate)
		if err != nil {
			return nil, fmt.Errorf("invalid publication date: %w", err)
		}
		book.PublicationDate = &date
	}

	if err := s.repo.UpdateBook(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

func (s *service) DeleteBook(ctx context.Context, id int64) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *service) ListBooks(ctx context.Context, params *SearchParams) (*BookListResponse, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	result, total, err := s.repo.ListBooks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	totalPages := (total + params.Limit - 1) / params.Limit

	return &BookListResponse{
		Books:        result,
		Total:        total,
		Page:         (params.Offset / params.Limit) + 1,
		ItemsPerPage: params.Limit,
		TotalPages:   totalPages,
	}, nil
}

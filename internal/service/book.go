package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/id"
	"github.com/familes/familes-server/internal/store"
)

// BookService manages a profile's bookshelf. Page progress goes through
// ReadingService; this service only handles shelf metadata.
type BookService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, logger *slog.Logger) *BookService {
	return &BookService{store: store, logger: logger}
}

// AddBookRequest contains new book data. TotalPages zero means unknown.
type AddBookRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=256"`
	Author     string `json:"author" validate:"max=256"`
	TotalPages int    `json:"total_pages" validate:"min=0,max=100000"`
	CoverURL   string `json:"cover_url" validate:"omitempty,url,max=2048"`
}

// UpdateBookRequest contains editable book metadata. Nil fields are left
// unchanged.
type UpdateBookRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,min=1,max=256"`
	Author     *string `json:"author,omitempty" validate:"omitempty,max=256"`
	TotalPages *int    `json:"total_pages,omitempty" validate:"omitempty,min=0,max=100000"`
	CoverURL   *string `json:"cover_url,omitempty" validate:"omitempty,url,max=2048"`
}

// AddBook puts a new book on a profile's shelf.
func (s *BookService) AddBook(ctx context.Context, profileID string, req AddBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := domain.NewBook(bookID, profileID, req.Title, req.Author, req.TotalPages, req.CoverURL)

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book added", "book_id", bookID, "profile_id", profileID, "title", req.Title)
	}
	return book, nil
}

// GetBook retrieves one book from a profile's shelf.
func (s *BookService) GetBook(ctx context.Context, profileID, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, profileID, bookID)
}

// ListBooks returns a profile's shelf.
func (s *BookService) ListBooks(ctx context.Context, profileID string) ([]*domain.Book, error) {
	return s.store.ListProfileBooks(ctx, profileID)
}

// UpdateBook edits book metadata. Shrinking total pages below the
// current bookmark clamps the bookmark; already-earned XP stays earned.
func (s *BookService) UpdateBook(ctx context.Context, profileID, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, profileID, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.CoverURL != nil {
		book.CoverURL = *req.CoverURL
	}
	if req.TotalPages != nil {
		if *req.TotalPages < 0 {
			return nil, domainerrors.Validation("total_pages cannot be negative")
		}
		book.TotalPages = *req.TotalPages
		book.PagesRead = book.ClampPages(book.PagesRead)
	}

	book.Touch()
	if err := s.store.SaveBook(ctx, book); err != nil {
		return nil, fmt.Errorf("save book: %w", err)
	}
	return book, nil
}

// DeleteBook removes a book from the shelf. History entries referencing
// it are kept; the reading record is immutable.
func (s *BookService) DeleteBook(ctx context.Context, profileID, bookID string) error {
	if err := s.store.DeleteBook(ctx, profileID, bookID); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "book_id", bookID, "profile_id", profileID)
	}
	return nil
}

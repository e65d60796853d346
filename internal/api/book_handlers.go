package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/books",
		Summary:     "Add book",
		Description: "Adds a book to a profile's shelf at page zero",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/books",
		Summary:     "List books",
		Description: "Returns all books on a profile's shelf",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/books/{bookID}",
		Summary:     "Get book",
		Description: "Returns a single book with its reading position",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profiles/{profileID}/books/{bookID}",
		Summary:     "Update book",
		Description: "Updates book metadata; the bookmark is clamped if the page count shrinks",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profiles/{profileID}/books/{bookID}",
		Summary:     "Delete book",
		Description: "Removes a book from the shelf; earned XP and history are kept",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "commitPageUpdate",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/books/{bookID}/pages",
		Summary:     "Commit page update",
		Description: "Moves the bookmark and awards XP for newly read pages",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCommitPageUpdate)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReadingHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/history",
		Summary:     "List reading history",
		Description: "Returns the profile's reading log, newest first",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListHistory)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID         string     `json:"id" doc:"Book ID"`
	Title      string     `json:"title" doc:"Title"`
	Author     string     `json:"author,omitempty" doc:"Author"`
	TotalPages int        `json:"total_pages" doc:"Page count, 0 when unknown"`
	PagesRead  int        `json:"pages_read" doc:"Current bookmark position"`
	CoverURL   string     `json:"cover_url,omitempty" doc:"Cover image URL"`
	StartedAt  time.Time  `json:"started_at" doc:"When the book was added"`
	FinishedAt *time.Time `json:"finished_at,omitempty" doc:"When the last page was reached"`
	CreatedAt  time.Time  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt  time.Time  `json:"updated_at" doc:"Last update timestamp"`
}

// AddBookInput wraps the book creation request for Huma.
type AddBookInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	Body          struct {
		Title      string `json:"title" validate:"required,min=1,max=256" doc:"Title"`
		Author     string `json:"author,omitempty" validate:"omitempty,max=256" doc:"Author"`
		TotalPages int    `json:"total_pages,omitempty" validate:"omitempty,min=0,max=100000" doc:"Page count, 0 when unknown"`
		CoverURL   string `json:"cover_url,omitempty" validate:"omitempty,url" doc:"Cover image URL"`
	}
}

// BookIDInput carries profile and book ID path parameters.
type BookIDInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
}

// UpdateBookInput wraps the book update request for Huma. Absent fields
// are left unchanged.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
	Body          struct {
		Title      *string `json:"title,omitempty" validate:"omitempty,min=1,max=256" doc:"New title"`
		Author     *string `json:"author,omitempty" validate:"omitempty,max=256" doc:"New author"`
		TotalPages *int    `json:"total_pages,omitempty" validate:"omitempty,min=0,max=100000" doc:"New page count"`
		CoverURL   *string `json:"cover_url,omitempty" validate:"omitempty,url" doc:"New cover URL"`
	}
}

// CommitPagesInput wraps the page commit request for Huma.
type CommitPagesInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
	Body          struct {
		PagesRead int `json:"pages_read" validate:"min=0,max=100000" doc:"New absolute bookmark position"`
	}
}

// CommitResponse contains the outcome of a page commit.
type CommitResponse struct {
	Book       BookResponse    `json:"book" doc:"Book with the updated bookmark"`
	Profile    ProfileResponse `json:"profile" doc:"Profile after XP and streak updates"`
	PagesAdded int             `json:"pages_added" doc:"Newly read pages, 0 for backwards moves"`
	XPEarned   int             `json:"xp_earned" doc:"XP awarded by this commit"`
	LeveledUp  bool            `json:"leveled_up" doc:"Whether the commit crossed a level boundary"`
}

// CommitOutput wraps the commit response for Huma.
type CommitOutput struct {
	Body CommitResponse
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookListOutput wraps a book list for Huma.
type BookListOutput struct {
	Body struct {
		Books []BookResponse `json:"books" doc:"Books on the shelf"`
	}
}

// HistoryEntryResponse describes one reading log entry.
type HistoryEntryResponse struct {
	ID            string    `json:"id" doc:"Entry ID"`
	BookID        string    `json:"book_id" doc:"Book the pages were read in"`
	BookTitle     string    `json:"book_title" doc:"Book title at write time"`
	BookAuthor    string    `json:"book_author,omitempty" doc:"Book author at write time"`
	Timestamp     time.Time `json:"timestamp" doc:"When the commit happened"`
	PreviousPages int       `json:"previous_pages" doc:"Bookmark before the commit"`
	NewPages      int       `json:"new_pages" doc:"Bookmark after the commit"`
	PagesAdded    int       `json:"pages_added" doc:"Newly read pages"`
	XPEarned      int       `json:"xp_earned" doc:"XP awarded"`
	Level         int       `json:"level" doc:"Profile level after the commit"`
}

// HistoryOutput wraps the reading log for Huma.
type HistoryOutput struct {
	Body struct {
		Entries []HistoryEntryResponse `json:"entries" doc:"Reading log, newest first"`
	}
}

// === Handlers ===

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileOwner(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	book, err := s.services.Book.AddBook(ctx, input.ProfileID, service.AddBookRequest{
		Title:      input.Body.Title,
		Author:     input.Body.Author,
		TotalPages: input.Body.TotalPages,
		CoverURL:   input.Body.CoverURL,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ProfileIDInput) (*BookListOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileOwner(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooks(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}

	out := &BookListOutput{}
	out.Body.Books = make([]BookResponse, len(books))
	for i, b := range books {
		out.Body.Books[i] = mapBookResponse(b)
	}
	return out, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileOwner(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, input.ProfileID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileOwner(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ProfileID, input.BookID, service.UpdateBookRequest{
		Title:      input.Body.Title,
		Author:     input.Body.Author,
		TotalPages: input.Body.TotalPages,
		CoverURL:   input.Body.CoverURL,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileOwner(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ProfileID, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleCommitPageUpdate(ctx context.Context, input *CommitPagesInput) (*CommitOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Reading.CommitPageUpdate(ctx, userID, input.ProfileID, input.BookID, service.CommitPageUpdateRequest{
		PagesRead: input.Body.PagesRead,
	})
	if err != nil {
		return nil, err
	}

	return &CommitOutput{Body: CommitResponse{
		Book:       mapBookResponse(result.Book),
		Profile:    s.mapProfile(result.Profile),
		PagesAdded: result.PagesAdded,
		XPEarned:   result.XPEarned,
		LeveledUp:  result.LeveledUp,
	}}, nil
}

func (s *Server) handleListHistory(ctx context.Context, input *ProfileIDInput) (*HistoryOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Reading.ListHistory(ctx, userID, input.ProfileID)
	if err != nil {
		return nil, err
	}

	out := &HistoryOutput{}
	out.Body.Entries = make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out.Body.Entries[i] = HistoryEntryResponse{
			ID:            e.ID,
			BookID:        e.BookID,
			BookTitle:     e.BookTitle,
			BookAuthor:    e.BookAuthor,
			Timestamp:     e.Timestamp,
			PreviousPages: e.PreviousPages,
			NewPages:      e.NewPages,
			PagesAdded:    e.PagesAdded,
			XPEarned:      e.XPEarned,
			Level:         e.Level,
		}
	}
	return out, nil
}

// === Helpers ===

func mapBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		TotalPages: b.TotalPages,
		PagesRead:  b.PagesRead,
		CoverURL:   b.CoverURL,
		StartedAt:  b.StartedAt,
		FinishedAt: b.FinishedAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

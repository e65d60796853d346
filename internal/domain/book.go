package domain

import "time"

// Book is an item in a profile's reading list. Owned exclusively by one
// profile; deleting the book does not touch the profile's accumulated XP
// or history.
type Book struct {
	Syncable
	ProfileID string `json:"profile_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`

	// TotalPages of 0 means unknown or unbounded; progress is unclamped.
	TotalPages int `json:"total_pages"`
	PagesRead  int `json:"pages_read"`

	CoverURL   string     `json:"cover_url,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewBook creates a book at page zero.
func NewBook(id, profileID, title, author string, totalPages int, coverURL string) *Book {
	if totalPages < 0 {
		totalPages = 0
	}
	b := &Book{
		ProfileID:  profileID,
		Title:      title,
		Author:     author,
		TotalPages: totalPages,
		CoverURL:   coverURL,
		StartedAt:  time.Now(),
	}
	b.ID = id
	b.InitTimestamps()
	return b
}

// ClampPages bounds a requested page position to the book: never negative,
// and never past the end when the total is known.
func (b *Book) ClampPages(pages int) int {
	if pages < 0 {
		return 0
	}
	if b.TotalPages > 0 && pages > b.TotalPages {
		return b.TotalPages
	}
	return pages
}

// SetPagesRead moves the bookmark to newPages (clamped) and returns the
// positive delta, or 0 if the position did not advance. Backwards moves
// update the bookmark but earn nothing.
func (b *Book) SetPagesRead(newPages int) int {
	newPages = b.ClampPages(newPages)
	delta := newPages - b.PagesRead
	b.PagesRead = newPages

	if b.IsFinished() && b.FinishedAt == nil {
		now := time.Now()
		b.FinishedAt = &now
	}
	b.Touch()

	if delta < 0 {
		return 0
	}
	return delta
}

// IsFinished reports whether the bookmark has reached a known end.
func (b *Book) IsFinished() bool {
	return b.TotalPages > 0 && b.PagesRead >= b.TotalPages
}

// ProgressFraction returns reading progress in [0,1], or 0 when the total
// page count is unknown.
func (b *Book) ProgressFraction() float64 {
	if b.TotalPages <= 0 {
		return 0
	}
	return float64(b.PagesRead) / float64(b.TotalPages)
}

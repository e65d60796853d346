package domain

import "time"

// ReadingHistoryEntry is an immutable, append-only log record written each
// time a profile's page count increases. Never mutated or deleted once
// written; monthly rollups are reconstructed from these.
type ReadingHistoryEntry struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	BookID    string    `json:"book_id"`
	Timestamp time.Time `json:"timestamp"`

	// Snapshots taken at write time, so the log stays meaningful after
	// the book or profile is renamed or deleted.
	BookTitle   string `json:"book_title"`
	BookAuthor  string `json:"book_author"`
	ProfileName string `json:"profile_name"`
	Level       int    `json:"level"`

	PreviousPages int `json:"previous_pages"`
	NewPages      int `json:"new_pages"`
	PagesAdded    int `json:"pages_added"`
	XPEarned      int `json:"xp_earned"`
}

// XPContribution returns the entry's XP for rollup purposes. Entries from
// before the XP migration have no XP field; their page delta stands in.
// Non-positive contributions count as zero, the write path never logs them.
func (e *ReadingHistoryEntry) XPContribution() int {
	if e.XPEarned > 0 {
		return e.XPEarned
	}
	if e.PagesAdded > 0 {
		return e.PagesAdded
	}
	return 0
}

// InMonth reports whether the entry's timestamp falls in the given
// year-month.
func (e *ReadingHistoryEntry) InMonth(month string) bool {
	return FormatMonth(e.Timestamp) == month
}

// MonthlyXP sums the XP contributions of the entries falling in the given
// month. Order of entries is irrelevant; history is immutable, so the
// result for a past month never changes.
func MonthlyXP(entries []ReadingHistoryEntry, month string) int {
	total := 0
	for i := range entries {
		if entries[i].InMonth(month) {
			total += entries[i].XPContribution()
		}
	}
	return total
}

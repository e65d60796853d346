package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/id"
	"github.com/familes/familes-server/internal/sse"
	"github.com/familes/familes-server/internal/store"
)

// ReadingService owns the page-commit pipeline. Every XP, level, streak
// and leaderboard change in the system originates here; nothing else
// grants XP.
type ReadingService struct {
	store    *store.Store
	profiles *ProfileService
	curve    domain.Curve
	goal     int
	logger   *slog.Logger
}

// NewReadingService creates a new reading service.
func NewReadingService(store *store.Store, profiles *ProfileService, curve domain.Curve, dailyGoal int, logger *slog.Logger) *ReadingService {
	return &ReadingService{
		store:    store,
		profiles: profiles,
		curve:    curve,
		goal:     dailyGoal,
		logger:   logger,
	}
}

// CommitPageUpdateRequest moves a book's bookmark to an absolute page
// position. The server derives the earned delta; clients never submit XP.
type CommitPageUpdateRequest struct {
	PagesRead int `json:"pages_read" validate:"min=0,max=100000"`
}

// CommitResult reports the outcome of a page commit.
type CommitResult struct {
	Book       *domain.Book               `json:"book"`
	Profile    *domain.Profile            `json:"profile"`
	Snapshot   domain.LeaderboardSnapshot `json:"snapshot"`
	PagesAdded int                        `json:"pages_added"`
	XPEarned   int                        `json:"xp_earned"`
	LeveledUp  bool                       `json:"leveled_up"`
}

// CommitPageUpdate records a bookmark move and runs the full pipeline:
// clamp the position, derive the page delta, advance streak and XP,
// append the history record, republish the profile's leaderboard rows
// and notify connected clients. Backwards moves update the bookmark only.
func (s *ReadingService) CommitPageUpdate(ctx context.Context, userID, profileID, bookID string, req CommitPageUpdateRequest) (*CommitResult, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID != userID {
		return nil, domainerrors.Forbidden("profile does not belong to this account")
	}

	book, err := s.store.GetBook(ctx, profileID, bookID)
	if err != nil {
		return nil, err
	}

	today := domain.Today()
	previousPages := book.PagesRead
	delta := book.SetPagesRead(req.PagesRead)

	if err := s.store.SaveBook(ctx, book); err != nil {
		return nil, fmt.Errorf("save book: %w", err)
	}

	if delta == 0 {
		// Bookmark moved backwards or stayed put. Nothing was earned and
		// nothing is logged.
		return &CommitResult{
			Book:     book,
			Profile:  profile,
			Snapshot: profile.Snapshot(today),
		}, nil
	}

	var xpEarned int
	var leveledUp bool
	updated, err := s.store.UpdateProfile(ctx, profileID, func(p *domain.Profile) error {
		before := p.Level
		xpEarned = p.ApplyReading(delta, today, s.curve, s.goal)
		leveledUp = p.Level > before
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("apply reading: %w", err)
	}

	s.appendHistory(ctx, updated, book, previousPages, delta, xpEarned)

	if err := s.profiles.publishSnapshots(ctx, updated); err != nil {
		return nil, fmt.Errorf("publish snapshots: %w", err)
	}

	snapshot := updated.Snapshot(today)
	s.store.Emit(sse.NewProfileUpdatedEvent(snapshot, xpEarned, leveledUp))

	if s.logger != nil {
		s.logger.Info("pages committed",
			"profile_id", profileID,
			"book_id", bookID,
			"pages_added", delta,
			"xp_earned", xpEarned,
			"level", updated.Level,
			"leveled_up", leveledUp)
	}

	return &CommitResult{
		Book:       book,
		Profile:    updated,
		Snapshot:   snapshot,
		PagesAdded: delta,
		XPEarned:   xpEarned,
		LeveledUp:  leveledUp,
	}, nil
}

// ListHistory returns a profile's reading log, newest first.
func (s *ReadingService) ListHistory(ctx context.Context, userID, profileID string) ([]domain.ReadingHistoryEntry, error) {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID != userID {
		return nil, domainerrors.Forbidden("profile does not belong to this account")
	}
	return s.store.ListProfileHistory(ctx, profileID)
}

// appendHistory writes the immutable log record for a commit. The profile
// write already succeeded, so a failure here is logged rather than undoing
// earned XP.
func (s *ReadingService) appendHistory(ctx context.Context, profile *domain.Profile, book *domain.Book, previousPages, delta, xpEarned int) {
	entryID, err := id.Generate("hist")
	if err != nil {
		s.logger.Error("generate history ID", "error", err, "profile_id", profile.ID)
		return
	}

	entry := domain.ReadingHistoryEntry{
		ID:            entryID,
		ProfileID:     profile.ID,
		BookID:        book.ID,
		Timestamp:     time.Now().UTC(),
		BookTitle:     book.Title,
		BookAuthor:    book.Author,
		ProfileName:   profile.Name,
		Level:         profile.Level,
		PreviousPages: previousPages,
		NewPages:      book.PagesRead,
		PagesAdded:    delta,
		XPEarned:      xpEarned,
	}

	if err := s.store.AppendHistory(ctx, &entry); err != nil {
		s.logger.Error("append history entry", "error", err, "profile_id", profile.ID, "book_id", book.ID)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/id"
	"github.com/familes/familes-server/internal/store"
)

// ProfileService manages reader profiles. A profile is the unit of all
// game state; accounts are just the login wrapper around them.
type ProfileService struct {
	store  *store.Store
	curve  domain.Curve
	goal   int
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store *store.Store, curve domain.Curve, dailyGoal int, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		curve:  curve,
		goal:   dailyGoal,
		logger: logger,
	}
}

// Curve returns the XP curve the service levels profiles against.
func (s *ProfileService) Curve() domain.Curve {
	return s.curve
}

// CreateProfileRequest contains new profile data.
type CreateProfileRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=64"`
	Primary bool   `json:"-"` // Only set internally during signup
}

// CreateProfile adds a reader profile to an account and publishes its
// initial snapshot to the global leaderboard directory.
func (s *ProfileService) CreateProfile(ctx context.Context, userID string, req CreateProfileRequest) (*domain.Profile, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	profileID, err := id.Generate("prof")
	if err != nil {
		return nil, fmt.Errorf("generate profile ID: %w", err)
	}

	profile := domain.NewProfile(profileID, userID, req.Name, req.Primary)

	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	today := domain.Today()
	if err := s.store.SaveSnapshot(ctx, profile.Snapshot(today)); err != nil {
		return nil, fmt.Errorf("publish snapshot: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("profile created", "profile_id", profileID, "user_id", userID, "name", req.Name)
	}
	return profile, nil
}

// GetProfile loads a profile owned by userID, applying the schema
// upgrade and the streak reconciliation. Both corrections persist, so
// every later read sees consistent state; this is the one place streak
// decay is written back.
func (s *ProfileService) GetProfile(ctx context.Context, userID, profileID string) (*domain.Profile, error) {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.UserID != userID {
		return nil, domainerrors.Forbidden("profile belongs to another account")
	}

	return s.reconcileAndPersist(ctx, profile)
}

// GetProfilePublic loads a profile without an ownership check. Used for
// leaderboards, friend lookups and chat, which cross account boundaries.
func (s *ProfileService) GetProfilePublic(ctx context.Context, profileID string) (*domain.Profile, error) {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.reconcileAndPersist(ctx, profile)
}

// ListProfiles returns an account's profiles, reconciled.
func (s *ProfileService) ListProfiles(ctx context.Context, userID string) ([]*domain.Profile, error) {
	profiles, err := s.store.ListUserProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i, profile := range profiles {
		reconciled, err := s.reconcileAndPersist(ctx, profile)
		if err != nil {
			return nil, err
		}
		profiles[i] = reconciled
	}
	return profiles, nil
}

// RenameProfile updates a profile's display name.
func (s *ProfileService) RenameProfile(ctx context.Context, userID, profileID, name string) (*domain.Profile, error) {
	if err := validate.Validate(CreateProfileRequest{Name: name}); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}

	profile.Name = name
	profile.Touch()
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	// Propagate the new name to the leaderboard copies.
	if err := s.publishSnapshots(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteProfile removes a profile and everything hanging off it: books,
// history, league memberships with their board entries, friendship edges
// on both sides, conversations, the global snapshot and the search entry.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID, profileID string) error {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return err
	}
	if profile.UserID != userID {
		return domainerrors.Forbidden("profile belongs to another account")
	}

	// Leave every league first so member lists stay accurate.
	for _, leagueID := range profile.Leagues {
		if _, _, err := s.store.LeaveLeagueTx(ctx, leagueID, profileID); err != nil {
			if errors.Is(err, store.ErrLeagueNotFound) {
				continue
			}
			return fmt.Errorf("leave league %s: %w", leagueID, err)
		}
	}

	// Detach friendship edges on the other side, then drop our document
	// and any conversations.
	friendship, err := s.store.GetFriendship(ctx, profileID)
	if err != nil {
		return fmt.Errorf("get friendship: %w", err)
	}
	for _, otherID := range friendship.RelatedIDs() {
		_, _, err := s.store.UpdateFriendshipPair(ctx, otherID, profileID,
			func(theirs, _ *domain.Friendship) error {
				theirs.Forget(profileID)
				return nil
			})
		if err != nil {
			return fmt.Errorf("detach friendship %s: %w", otherID, err)
		}
		if err := s.store.DeleteConversation(ctx, domain.ConversationID(profileID, otherID)); err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
	}
	if err := s.store.DeleteFriendship(ctx, profileID); err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}

	if err := s.store.DeleteProfileBooks(ctx, profileID); err != nil {
		return fmt.Errorf("delete books: %w", err)
	}
	if err := s.store.DeleteProfileHistory(ctx, profileID); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}

	if err := s.store.DeleteProfile(ctx, profile); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("profile deleted", "profile_id", profileID, "user_id", userID)
	}
	return nil
}

// reconcileAndPersist applies the versioned schema upgrade and the
// read-time streak correction, writing back only when something changed.
func (s *ProfileService) reconcileAndPersist(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	today := domain.Today()

	upgraded := profile.Upgrade(s.curve)

	reconciled := profile.Streak.Reconcile(today)
	streakChanged := reconciled != profile.Streak
	profile.Streak = reconciled

	if !upgraded && !streakChanged {
		return profile, nil
	}

	profile.Touch()
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("persist reconciled profile: %w", err)
	}
	if err := s.publishSnapshots(ctx, profile); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Debug("profile reconciled",
			"profile_id", profile.ID,
			"schema_upgraded", upgraded,
			"streak_changed", streakChanged)
	}
	return profile, nil
}

// publishSnapshots pushes a profile's denormalized record to the global
// directory and every league board it belongs to.
func (s *ProfileService) publishSnapshots(ctx context.Context, profile *domain.Profile) error {
	today := domain.Today()
	snapshot := profile.Snapshot(today)

	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("save global snapshot: %w", err)
	}

	for _, leagueID := range profile.Leagues {
		entry := domain.LeagueLeaderboardEntry{
			LeaderboardSnapshot: snapshot,
			LeagueID:            leagueID,
			UpdatedAt:           profile.UpdatedAt,
		}
		if err := s.store.SaveLeagueBoardEntry(ctx, entry); err != nil {
			return fmt.Errorf("save league board entry %s: %w", leagueID, err)
		}
	}
	return nil
}

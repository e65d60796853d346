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

// LeagueService manages competitive groups and their memberships. The
// league document and each member's profile record the membership
// redundantly; both sides are written in one transaction by the store.
type LeagueService struct {
	store    *store.Store
	profiles *ProfileService
	logger   *slog.Logger
}

// NewLeagueService creates a new league service.
func NewLeagueService(store *store.Store, profiles *ProfileService, logger *slog.Logger) *LeagueService {
	return &LeagueService{store: store, profiles: profiles, logger: logger}
}

// CreateLeagueRequest contains new league data.
type CreateLeagueRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

// JoinLeagueRequest carries the invite code to redeem.
type JoinLeagueRequest struct {
	JoinCode string `json:"join_code" validate:"required,joincode"`
}

// CreateLeague creates a league with the acting profile as creator and
// first member, under a freshly generated unique join code.
func (s *LeagueService) CreateLeague(ctx context.Context, userID, profileID string, req CreateLeagueRequest) (*domain.League, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}

	code, err := s.uniqueJoinCode(ctx)
	if err != nil {
		return nil, err
	}

	leagueID, err := id.Generate("league")
	if err != nil {
		return nil, fmt.Errorf("generate league ID: %w", err)
	}

	league := domain.NewLeague(leagueID, req.Name, code, profileID)
	if err := s.store.CreateLeague(ctx, league); err != nil {
		return nil, fmt.Errorf("create league: %w", err)
	}

	// Record the membership on the creator's profile and seed the board.
	// JoinLeagueTx is idempotent over the already-listed creator.
	league, updated, err := s.store.JoinLeagueTx(ctx, leagueID, profileID)
	if err != nil {
		return nil, fmt.Errorf("record creator membership: %w", err)
	}
	if err := s.saveBoardEntry(ctx, leagueID, updated); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("league created", "league_id", leagueID, "creator_id", profileID, "name", req.Name)
	}
	return league, nil
}

// GetLeague returns a league visible to the acting profile. Join codes
// are only revealed to members.
func (s *LeagueService) GetLeague(ctx context.Context, profileID, leagueID string) (*domain.League, error) {
	league, err := s.store.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if !league.HasMember(profileID) {
		return nil, domainerrors.Forbidden("profile is not a member of this league")
	}
	return league, nil
}

// ListLeagues returns every league the profile belongs to.
func (s *LeagueService) ListLeagues(ctx context.Context, userID, profileID string) ([]*domain.League, error) {
	profile, err := s.profiles.GetProfile(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}

	leagues := make([]*domain.League, 0, len(profile.Leagues))
	for _, leagueID := range profile.Leagues {
		league, err := s.store.GetLeague(ctx, leagueID)
		if err != nil {
			if errors.Is(err, store.ErrLeagueNotFound) {
				// Membership list can briefly outlive a deleted league.
				continue
			}
			return nil, err
		}
		leagues = append(leagues, league)
	}
	return leagues, nil
}

// JoinLeague redeems an invite code for the acting profile and publishes
// the member's first board entry.
func (s *LeagueService) JoinLeague(ctx context.Context, userID, profileID string, req JoinLeagueRequest) (*domain.League, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}

	league, err := s.store.GetLeagueByCode(ctx, req.JoinCode)
	if err != nil {
		return nil, err
	}

	league, updated, err := s.store.JoinLeagueTx(ctx, league.ID, profileID)
	if err != nil {
		return nil, err
	}
	if err := s.saveBoardEntry(ctx, league.ID, updated); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("league joined", "league_id", league.ID, "profile_id", profileID)
	}
	return league, nil
}

// LeaveLeague removes the acting profile from a league. A league whose
// last member leaves is deleted along with its board and join code.
func (s *LeagueService) LeaveLeague(ctx context.Context, userID, profileID, leagueID string) error {
	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return err
	}

	league, _, err := s.store.LeaveLeagueTx(ctx, leagueID, profileID)
	if err != nil {
		return err
	}

	if len(league.MemberIDs) == 0 {
		if err := s.store.DeleteLeague(ctx, leagueID); err != nil {
			return fmt.Errorf("delete empty league: %w", err)
		}
		if s.logger != nil {
			s.logger.Info("empty league deleted", "league_id", leagueID)
		}
	}

	if s.logger != nil {
		s.logger.Info("league left", "league_id", leagueID, "profile_id", profileID)
	}
	return nil
}

// ListMembers returns the member profiles of a league the acting profile
// belongs to. Profiles deleted since the member list was written are
// skipped.
func (s *LeagueService) ListMembers(ctx context.Context, profileID, leagueID string) ([]*domain.Profile, error) {
	league, err := s.GetLeague(ctx, profileID, leagueID)
	if err != nil {
		return nil, err
	}

	members := make([]*domain.Profile, 0, len(league.MemberIDs))
	for _, memberID := range league.MemberIDs {
		member, err := s.profiles.GetProfilePublic(ctx, memberID)
		if err != nil {
			if errors.Is(err, store.ErrProfileNotFound) {
				continue
			}
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

// uniqueJoinCode draws random codes until one is free, giving up after a
// bounded number of collisions.
func (s *LeagueService) uniqueJoinCode(ctx context.Context) (string, error) {
	for range domain.MaxJoinCodeAttempts {
		code, err := domain.GenerateJoinCode()
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		exists, err := s.store.JoinCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check join code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", domainerrors.CodeGeneration("could not find a free join code")
}

// saveBoardEntry publishes a member's snapshot onto a league board.
func (s *LeagueService) saveBoardEntry(ctx context.Context, leagueID string, profile *domain.Profile) error {
	entry := domain.LeagueLeaderboardEntry{
		LeaderboardSnapshot: profile.Snapshot(domain.Today()),
		LeagueID:            leagueID,
		UpdatedAt:           profile.UpdatedAt,
	}
	if err := s.store.SaveLeagueBoardEntry(ctx, entry); err != nil {
		return fmt.Errorf("save league board entry: %w", err)
	}
	return nil
}

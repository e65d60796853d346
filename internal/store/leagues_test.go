package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/store"
)

func createTestLeague(t *testing.T, s *store.Store, id, code, creatorID string) *domain.League {
	t.Helper()
	league := domain.NewLeague(id, "Bokormene", code, creatorID)
	require.NoError(t, s.CreateLeague(context.Background(), league))
	return league
}

func TestLeague_CreateAndCodeLookup(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestLeague(t, s, "league_1", "ABC234", "prof_1")

	got, err := s.GetLeagueByCode(ctx, "ABC234")
	require.NoError(t, err)
	require.Equal(t, "league_1", got.ID)
	require.Equal(t, []string{"prof_1"}, got.MemberIDs)

	exists, err := s.JoinCodeExists(ctx, "ABC234")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.JoinCodeExists(ctx, "ZZZ999")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = s.GetLeagueByCode(ctx, "ZZZ999")
	require.ErrorIs(t, err, store.ErrLeagueNotFound)
}

func TestLeague_DuplicateJoinCodeRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestLeague(t, s, "league_1", "ABC234", "prof_1")

	dup := domain.NewLeague("league_2", "Other", "ABC234", "prof_2")
	err := s.CreateLeague(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestJoinLeagueTx_UpdatesBothDocuments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestLeague(t, s, "league_1", "ABC234", "prof_1")
	require.NoError(t, s.CreateProfile(ctx, newTestProfile("prof_2", "user_1", "Finn")))

	league, profile, err := s.JoinLeagueTx(ctx, "league_1", "prof_2")
	require.NoError(t, err)
	require.Contains(t, league.MemberIDs, "prof_2")
	require.Contains(t, profile.Leagues, "league_1")

	// Idempotent: joining again changes nothing.
	league, profile, err = s.JoinLeagueTx(ctx, "league_1", "prof_2")
	require.NoError(t, err)
	require.Len(t, league.MemberIDs, 2)
	require.Len(t, profile.Leagues, 1)

	// Both stored documents agree.
	storedLeague, err := s.GetLeague(ctx, "league_1")
	require.NoError(t, err)
	require.Contains(t, storedLeague.MemberIDs, "prof_2")

	storedProfile, err := s.GetProfile(ctx, "prof_2")
	require.NoError(t, err)
	require.Contains(t, storedProfile.Leagues, "league_1")
}

func TestLeaveLeagueTx_RemovesMembershipAndBoardEntry(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestLeague(t, s, "league_1", "ABC234", "prof_1")
	profile := newTestProfile("prof_2", "user_1", "Finn")
	require.NoError(t, s.CreateProfile(ctx, profile))

	_, _, err := s.JoinLeagueTx(ctx, "league_1", "prof_2")
	require.NoError(t, err)

	require.NoError(t, s.SaveLeagueBoardEntry(ctx, domain.LeagueLeaderboardEntry{
		LeaderboardSnapshot: profile.Snapshot(domain.Today()),
		LeagueID:            "league_1",
		UpdatedAt:           time.Now(),
	}))

	league, prof, err := s.LeaveLeagueTx(ctx, "league_1", "prof_2")
	require.NoError(t, err)
	require.NotContains(t, league.MemberIDs, "prof_2")
	require.NotContains(t, prof.Leagues, "league_1")

	board, err := s.ListLeagueBoard(ctx, "league_1")
	require.NoError(t, err)
	require.Empty(t, board)
}

func TestJoinLeagueTx_MissingEitherSide(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestLeague(t, s, "league_1", "ABC234", "prof_1")
	require.NoError(t, s.CreateProfile(ctx, newTestProfile("prof_2", "user_1", "Finn")))

	_, _, err := s.JoinLeagueTx(ctx, "league_nope", "prof_2")
	require.ErrorIs(t, err, store.ErrLeagueNotFound)

	_, _, err = s.JoinLeagueTx(ctx, "league_1", "prof_nope")
	require.ErrorIs(t, err, store.ErrProfileNotFound)
}

func TestLeagueBoard_SaveListDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"prof_a", "prof_b"} {
		p := newTestProfile(id, "user_1", id)
		require.NoError(t, s.SaveLeagueBoardEntry(ctx, domain.LeagueLeaderboardEntry{
			LeaderboardSnapshot: p.Snapshot(domain.Today()),
			LeagueID:            "league_1",
			UpdatedAt:           time.Now(),
		}))
	}

	board, err := s.ListLeagueBoard(ctx, "league_1")
	require.NoError(t, err)
	require.Len(t, board, 2)

	// Overwriting the same profile's entry does not grow the board.
	p := newTestProfile("prof_a", "user_1", "prof_a")
	require.NoError(t, s.SaveLeagueBoardEntry(ctx, domain.LeagueLeaderboardEntry{
		LeaderboardSnapshot: p.Snapshot(domain.Today()),
		LeagueID:            "league_1",
		UpdatedAt:           time.Now(),
	}))

	board, err = s.ListLeagueBoard(ctx, "league_1")
	require.NoError(t, err)
	require.Len(t, board, 2)

	require.NoError(t, s.DeleteLeagueBoardEntry(ctx, "league_1", "prof_a"))
	board, err = s.ListLeagueBoard(ctx, "league_1")
	require.NoError(t, err)
	require.Len(t, board, 1)
	require.Equal(t, "prof_b", board[0].ProfileID)
}

func TestDeleteLeague_DropsBoard(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestLeague(t, s, "league_1", "ABC234", "prof_1")
	p := newTestProfile("prof_1", "user_1", "Mia")
	require.NoError(t, s.SaveLeagueBoardEntry(ctx, domain.LeagueLeaderboardEntry{
		LeaderboardSnapshot: p.Snapshot(domain.Today()),
		LeagueID:            "league_1",
		UpdatedAt:           time.Now(),
	}))

	require.NoError(t, s.DeleteLeague(ctx, "league_1"))

	_, err := s.GetLeague(ctx, "league_1")
	require.ErrorIs(t, err, store.ErrLeagueNotFound)

	// The join code is freed for reuse.
	exists, err := s.JoinCodeExists(ctx, "ABC234")
	require.NoError(t, err)
	require.False(t, exists)

	board, err := s.ListLeagueBoard(ctx, "league_1")
	require.NoError(t, err)
	require.Empty(t, board)
}

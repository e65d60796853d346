package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/service"
)

func TestCreateLeague(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.signup(t, "creator@example.com", "Alex")

	league, err := env.leagues.CreateLeague(ctx, acct.User.ID, acct.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)

	assert.Equal(t, "Book Club", league.Name)
	assert.True(t, domain.ValidJoinCode(league.JoinCode))
	assert.Equal(t, acct.Profile.ID, league.CreatorID)
	assert.Equal(t, []string{acct.Profile.ID}, league.MemberIDs)

	// Membership is recorded on the creator's profile too.
	profile, err := env.profiles.GetProfilePublic(ctx, acct.Profile.ID)
	require.NoError(t, err)
	assert.Contains(t, profile.Leagues, league.ID)

	// And the board already has the creator's row.
	entries, err := env.store.ListLeagueBoard(ctx, league.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, acct.Profile.ID, entries[0].ProfileID)
}

func TestJoinLeagueByCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.signup(t, "creator@example.com", "Alex")
	joiner := env.signup(t, "joiner@example.com", "Sam")

	league, err := env.leagues.CreateLeague(ctx, creator.User.ID, creator.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)

	joined, err := env.leagues.JoinLeague(ctx, joiner.User.ID, joiner.Profile.ID,
		service.JoinLeagueRequest{JoinCode: league.JoinCode})
	require.NoError(t, err)
	assert.Equal(t, league.ID, joined.ID)

	stored, err := env.store.GetLeague(ctx, league.ID)
	require.NoError(t, err)
	assert.Len(t, stored.MemberIDs, 2)

	profile, err := env.profiles.GetProfilePublic(ctx, joiner.Profile.ID)
	require.NoError(t, err)
	assert.Contains(t, profile.Leagues, league.ID)

	entries, err := env.store.ListLeagueBoard(ctx, league.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestJoinLeagueUnknownCode(t *testing.T) {
	env := newTestEnv(t)
	acct := env.signup(t, "joiner@example.com", "Sam")

	_, err := env.leagues.JoinLeague(context.Background(), acct.User.ID, acct.Profile.ID,
		service.JoinLeagueRequest{JoinCode: "ZZZZZZ"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestJoinLeagueIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.signup(t, "creator@example.com", "Alex")

	league, err := env.leagues.CreateLeague(ctx, acct.User.ID, acct.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)

	_, err = env.leagues.JoinLeague(ctx, acct.User.ID, acct.Profile.ID,
		service.JoinLeagueRequest{JoinCode: league.JoinCode})
	require.NoError(t, err)

	stored, err := env.store.GetLeague(ctx, league.ID)
	require.NoError(t, err)
	assert.Len(t, stored.MemberIDs, 1, "re-joining does not duplicate the membership")
}

func TestLeaveLeague(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.signup(t, "creator@example.com", "Alex")
	joiner := env.signup(t, "joiner@example.com", "Sam")

	league, err := env.leagues.CreateLeague(ctx, creator.User.ID, creator.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)
	_, err = env.leagues.JoinLeague(ctx, joiner.User.ID, joiner.Profile.ID,
		service.JoinLeagueRequest{JoinCode: league.JoinCode})
	require.NoError(t, err)

	require.NoError(t, env.leagues.LeaveLeague(ctx, joiner.User.ID, joiner.Profile.ID, league.ID))

	stored, err := env.store.GetLeague(ctx, league.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{creator.Profile.ID}, stored.MemberIDs)

	entries, err := env.store.ListLeagueBoard(ctx, league.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "leaver's board row is gone")
	assert.Equal(t, creator.Profile.ID, entries[0].ProfileID)
}

func TestLastMemberLeavingDeletesLeague(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.signup(t, "creator@example.com", "Alex")

	league, err := env.leagues.CreateLeague(ctx, acct.User.ID, acct.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)
	code := league.JoinCode

	require.NoError(t, env.leagues.LeaveLeague(ctx, acct.User.ID, acct.Profile.ID, league.ID))

	_, err = env.store.GetLeague(ctx, league.ID)
	require.Error(t, err)

	// The join code is free for reuse.
	exists, err := env.store.JoinCodeExists(ctx, code)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetLeagueNonMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.signup(t, "creator@example.com", "Alex")
	outsider := env.signup(t, "outsider@example.com", "Sam")

	league, err := env.leagues.CreateLeague(ctx, creator.User.ID, creator.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)

	_, err = env.leagues.GetLeague(ctx, outsider.Profile.ID, league.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestListLeagueMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.signup(t, "creator@example.com", "Alex")
	joiner := env.signup(t, "joiner@example.com", "Sam")

	league, err := env.leagues.CreateLeague(ctx, creator.User.ID, creator.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)
	_, err = env.leagues.JoinLeague(ctx, joiner.User.ID, joiner.Profile.ID,
		service.JoinLeagueRequest{JoinCode: league.JoinCode})
	require.NoError(t, err)

	members, err := env.leagues.ListMembers(ctx, creator.Profile.ID, league.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestListLeaguesForProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.signup(t, "creator@example.com", "Alex")

	_, err := env.leagues.CreateLeague(ctx, acct.User.ID, acct.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)
	_, err = env.leagues.CreateLeague(ctx, acct.User.ID, acct.Profile.ID,
		service.CreateLeagueRequest{Name: "Night Readers"})
	require.NoError(t, err)

	leagues, err := env.leagues.ListLeagues(ctx, acct.User.ID, acct.Profile.ID)
	require.NoError(t, err)
	assert.Len(t, leagues, 2)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/service"
)

func TestGlobalBoardLiveTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	heavy := env.signup(t, "heavy@example.com", "Alex")
	light := env.signup(t, "light@example.com", "Sam")

	bookA := env.addBook(t, heavy.Profile.ID, "Long Book", 1000)
	bookB := env.addBook(t, light.Profile.ID, "Short Book", 100)
	env.commit(t, heavy.User.ID, heavy.Profile.ID, bookA.ID, 200)
	env.commit(t, light.User.ID, light.Profile.ID, bookB.ID, 30)

	board, err := env.boards.GlobalBoard(ctx, domain.LeaderboardModeLiveTotal, 0)
	require.NoError(t, err)
	require.Len(t, board, 2)

	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, heavy.Profile.ID, board[0].ProfileID)
	assert.Equal(t, 200, board[0].Value)
	assert.Equal(t, 2, board[1].Rank)
	assert.Equal(t, light.Profile.ID, board[1].ProfileID)
}

func TestGlobalBoardLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		env.signup(t, email, "Reader")
	}

	board, err := env.boards.GlobalBoard(ctx, domain.LeaderboardModeLiveTotal, 2)
	require.NoError(t, err)
	assert.Len(t, board, 2)
}

func TestGlobalBoardRejectsHistoricalMode(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.boards.GlobalBoard(context.Background(), domain.LeaderboardModeHistoricalMonthly, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLeagueBoardLiveModes(t *testing.T) {
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

	book := env.addBook(t, joiner.Profile.ID, "The Hobbit", 300)
	env.commit(t, joiner.User.ID, joiner.Profile.ID, book.ID, 120)

	board, err := env.boards.LeagueBoard(ctx, creator.Profile.ID, league.ID,
		domain.LeaderboardModeLiveTotal, "", 0)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, joiner.Profile.ID, board[0].ProfileID)

	monthly, err := env.boards.LeagueBoard(ctx, creator.Profile.ID, league.ID,
		domain.LeaderboardModeLiveMonthly, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 120, monthly[0].Value)
	assert.Equal(t, 0, monthly[1].Value)
}

func TestGlobalBoardReconcilesStaleStreaks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.signup(t, "idle@example.com", "Alex")

	// A profile that stopped reading keeps whatever streak its last
	// published snapshot carried.
	stale := domain.LeaderboardSnapshot{
		ProfileID:     acct.Profile.ID,
		Name:          acct.Profile.Name,
		TotalXP:       40,
		CurrentStreak: 4,
		LongestStreak: 4,
		LastReadDate:  "2020-01-05",
	}
	require.NoError(t, env.store.SaveSnapshot(ctx, stale))

	board, err := env.boards.GlobalBoard(ctx, domain.LeaderboardModeLiveTotal, 0)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 0, board[0].CurrentStreak, "idle streak shown as broken")
	assert.Equal(t, 4, board[0].LongestStreak)
	assert.Equal(t, 40, board[0].Value, "XP ranking unaffected")
}

func TestLeagueBoardCurrentMonthServedLive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.signup(t, "creator@example.com", "Alex")

	league, err := env.leagues.CreateLeague(ctx, acct.User.ID, acct.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)

	// Live counters carry this month's XP with no matching history
	// entries, so the two sources disagree on purpose.
	entry := domain.LeagueLeaderboardEntry{
		LeaderboardSnapshot: domain.LeaderboardSnapshot{
			ProfileID:    acct.Profile.ID,
			Name:         acct.Profile.Name,
			MonthlyXP:    55,
			CurrentMonth: domain.CurrentMonth(),
		},
		LeagueID:  league.ID,
		UpdatedAt: time.Now(),
	}
	require.NoError(t, env.store.SaveLeagueBoardEntry(ctx, entry))

	board, err := env.boards.LeagueBoard(ctx, acct.Profile.ID, league.ID,
		domain.LeaderboardModeHistoricalMonthly, domain.CurrentMonth(), 0)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 55, board[0].Value, "open month comes from live counters")
}

func TestLeagueBoardNonMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.signup(t, "creator@example.com", "Alex")
	outsider := env.signup(t, "outsider@example.com", "Sam")

	league, err := env.leagues.CreateLeague(ctx, creator.User.ID, creator.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)

	_, err = env.boards.LeagueBoard(ctx, outsider.Profile.ID, league.ID,
		domain.LeaderboardModeLiveTotal, "", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestHistoricalLeagueBoard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.signup(t, "creator@example.com", "Alex")

	league, err := env.leagues.CreateLeague(ctx, acct.User.ID, acct.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)

	// Back-date a history entry into last month; live counters know
	// nothing about it.
	lastMonth := time.Now().AddDate(0, -1, 0)
	entry := domain.ReadingHistoryEntry{
		ID:         "hist_backdated",
		ProfileID:  acct.Profile.ID,
		BookID:     "book_old",
		Timestamp:  lastMonth,
		PagesAdded: 77,
		XPEarned:   77,
	}
	require.NoError(t, env.store.AppendHistory(ctx, &entry))

	month := domain.FormatMonth(lastMonth)
	board, err := env.boards.LeagueBoard(ctx, acct.Profile.ID, league.ID,
		domain.LeaderboardModeHistoricalMonthly, month, 0)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 77, board[0].Value, "past month reconstructed from the history log")

	// A month nobody read in ranks everyone at zero.
	empty, err := env.boards.LeagueBoard(ctx, acct.Profile.ID, league.ID,
		domain.LeaderboardModeHistoricalMonthly, "2019-01", 0)
	require.NoError(t, err)
	require.Len(t, empty, 1)
	assert.Equal(t, 0, empty[0].Value)
}

func TestHistoricalLeagueBoardBadMonth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acct := env.signup(t, "creator@example.com", "Alex")

	league, err := env.leagues.CreateLeague(ctx, acct.User.ID, acct.Profile.ID,
		service.CreateLeagueRequest{Name: "Book Club"})
	require.NoError(t, err)

	_, err = env.boards.LeagueBoard(ctx, acct.Profile.ID, league.ID,
		domain.LeaderboardModeHistoricalMonthly, "January 2025", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestProfileRank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.signup(t, "first@example.com", "Alex")
	second := env.signup(t, "second@example.com", "Sam")

	book := env.addBook(t, second.Profile.ID, "The Hobbit", 300)
	env.commit(t, second.User.ID, second.Profile.ID, book.ID, 99)

	rank, err := env.boards.ProfileRank(ctx, second.Profile.ID, domain.LeaderboardModeLiveTotal)
	require.NoError(t, err)
	assert.Equal(t, 1, rank.Rank)

	rank, err = env.boards.ProfileRank(ctx, first.Profile.ID, domain.LeaderboardModeLiveTotal)
	require.NoError(t, err)
	assert.Equal(t, 2, rank.Rank)
}

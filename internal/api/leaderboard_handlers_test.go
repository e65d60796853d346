package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readPages commits a bookmark position for a profile's book.
func readPages(t *testing.T, ts *testServer, auth AuthResponse, bookID string, pages int) {
	t.Helper()

	resp := ts.api.Post(
		"/api/v1/profiles/"+auth.Profile.ID+"/books/"+bookID+"/pages",
		bearer(auth.AccessToken),
		map[string]any{"pages_read": pages},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

type boardBody struct {
	Mode    string                `json:"mode"`
	Month   string                `json:"month"`
	Entries []RankedEntryResponse `json:"entries"`
}

func TestGlobalLeaderboard(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	sam := ts.signup(t, "sam@example.com", "Sam")

	alexBook := shelveBook(t, ts, alex, "The Hobbit", 300)
	samBook := shelveBook(t, ts, sam, "Dune", 600)
	readPages(t, ts, alex, alexBook.ID, 40)
	readPages(t, ts, sam, samBook.ID, 120)

	resp := ts.api.Get("/api/v1/leaderboard", bearer(alex.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	board := decodeEnvelope[boardBody](t, resp)
	assert.Equal(t, "live_total", board.Mode)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, sam.Profile.ID, board.Entries[0].ProfileID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, 120, board.Entries[0].Value)
	assert.Equal(t, alex.Profile.ID, board.Entries[1].ProfileID)
	assert.Equal(t, 2, board.Entries[1].Rank)
}

func TestGlobalLeaderboard_Limit(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	ts.signup(t, "sam@example.com", "Sam")

	resp := ts.api.Get("/api/v1/leaderboard?limit=1", bearer(alex.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	board := decodeEnvelope[boardBody](t, resp)
	assert.Len(t, board.Entries, 1)
}

func TestGlobalLeaderboard_RejectsHistoricalMode(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")

	resp := ts.api.Get("/api/v1/leaderboard?mode=historical_monthly", bearer(alex.AccessToken))
	// The enum on the query parameter rejects it before the service runs.
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestLeagueLeaderboard_LiveMonthly(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	sam := ts.signup(t, "sam@example.com", "Sam")
	league := createLeague(t, ts, alex, "Book Worms")

	resp := ts.api.Post("/api/v1/profiles/"+sam.Profile.ID+"/leagues/join", bearer(sam.AccessToken), map[string]any{
		"join_code": league.JoinCode,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	samBook := shelveBook(t, ts, sam, "Dune", 600)
	readPages(t, ts, sam, samBook.ID, 120)

	resp = ts.api.Get(
		"/api/v1/profiles/"+alex.Profile.ID+"/leagues/"+league.ID+"/leaderboard?mode=live_monthly",
		bearer(alex.AccessToken),
	)
	require.Equal(t, http.StatusOK, resp.Code)

	board := decodeEnvelope[boardBody](t, resp)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, sam.Profile.ID, board.Entries[0].ProfileID)
	assert.Equal(t, 120, board.Entries[0].Value)
	assert.Zero(t, board.Entries[1].Value)
}

func TestLeagueLeaderboard_NonMemberForbidden(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	sam := ts.signup(t, "sam@example.com", "Sam")
	league := createLeague(t, ts, alex, "Book Worms")

	resp := ts.api.Get(
		"/api/v1/profiles/"+sam.Profile.ID+"/leagues/"+league.ID+"/leaderboard",
		bearer(sam.AccessToken),
	)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestLeagueLeaderboard_HistoricalEmptyMonth(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	league := createLeague(t, ts, alex, "Book Worms")

	resp := ts.api.Get(
		"/api/v1/profiles/"+alex.Profile.ID+"/leagues/"+league.ID+"/leaderboard?mode=historical_monthly&month=2019-01",
		bearer(alex.AccessToken),
	)
	require.Equal(t, http.StatusOK, resp.Code)

	board := decodeEnvelope[boardBody](t, resp)
	assert.Equal(t, "2019-01", board.Month)
	require.Len(t, board.Entries, 1)
	assert.Zero(t, board.Entries[0].Value, "a month with no history reads as zero")
}

func TestLeagueLeaderboard_BadMonth(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	league := createLeague(t, ts, alex, "Book Worms")

	resp := ts.api.Get(
		"/api/v1/profiles/"+alex.Profile.ID+"/leagues/"+league.ID+"/leaderboard?mode=historical_monthly&month=January",
		bearer(alex.AccessToken),
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProfileRank(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	sam := ts.signup(t, "sam@example.com", "Sam")

	samBook := shelveBook(t, ts, sam, "Dune", 600)
	readPages(t, ts, sam, samBook.ID, 80)

	resp := ts.api.Get("/api/v1/profiles/"+alex.Profile.ID+"/rank", bearer(alex.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	rank := decodeEnvelope[RankedEntryResponse](t, resp)
	assert.Equal(t, 2, rank.Rank)
	assert.Equal(t, alex.Profile.ID, rank.ProfileID)
}

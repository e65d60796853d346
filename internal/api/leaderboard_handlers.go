package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/familes/familes-server/internal/domain"
)

func (s *Server) registerLeaderboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "globalLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard",
		Summary:     "Global leaderboard",
		Description: "Ranks every reader profile on the server by total or monthly XP",
		Tags:        []string{"Leaderboards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGlobalLeaderboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "leagueLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/leagues/{leagueID}/leaderboard",
		Summary:     "League leaderboard",
		Description: "Ranks league members live, or reconstructs a past month from reading history",
		Tags:        []string{"Leaderboards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLeagueLeaderboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "profileRank",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/rank",
		Summary:     "Profile rank",
		Description: "Returns the profile's position on the global leaderboard",
		Tags:        []string{"Leaderboards"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleProfileRank)
}

// === DTOs ===

// RankedEntryResponse describes one leaderboard row.
type RankedEntryResponse struct {
	Rank          int    `json:"rank" doc:"1-based position"`
	ProfileID     string `json:"profile_id" doc:"Profile ID"`
	Name          string `json:"name" doc:"Display name"`
	Level         int    `json:"level" doc:"Level at snapshot time"`
	TotalXP       int    `json:"total_xp" doc:"Lifetime XP at snapshot time"`
	CurrentStreak int    `json:"current_streak" doc:"Streak at snapshot time"`
	Value         int    `json:"value" doc:"The metric the board is ranked by"`
}

// GlobalLeaderboardInput carries global leaderboard query parameters.
type GlobalLeaderboardInput struct {
	Authorization string `header:"Authorization"`
	Mode          string `query:"mode" enum:"live_total,live_monthly" default:"live_total" doc:"Ranking mode"`
	Limit         int    `query:"limit" minimum:"0" maximum:"500" doc:"Maximum rows to return, 0 for all"`
}

// LeagueLeaderboardInput carries league leaderboard parameters.
type LeagueLeaderboardInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	LeagueID      string `path:"leagueID" doc:"League ID"`
	Mode          string `query:"mode" enum:"live_total,live_monthly,historical_monthly" default:"live_total" doc:"Ranking mode"`
	Month         string `query:"month" doc:"Month (YYYY-MM), required for historical_monthly"`
	Limit         int    `query:"limit" minimum:"0" maximum:"500" doc:"Maximum rows to return, 0 for all"`
}

// ProfileRankInput carries profile rank parameters.
type ProfileRankInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	Mode          string `query:"mode" enum:"live_total,live_monthly" default:"live_total" doc:"Ranking mode"`
}

// LeaderboardOutput wraps a ranked board for Huma.
type LeaderboardOutput struct {
	Body struct {
		Mode    string                `json:"mode" doc:"Ranking mode used"`
		Month   string                `json:"month,omitempty" doc:"Month the board covers, for historical views"`
		Entries []RankedEntryResponse `json:"entries" doc:"Ranked rows, best first"`
	}
}

// RankOutput wraps a single ranked row for Huma.
type RankOutput struct {
	Body RankedEntryResponse
}

// === Handlers ===

func (s *Server) handleGlobalLeaderboard(ctx context.Context, input *GlobalLeaderboardInput) (*LeaderboardOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	board, err := s.services.Leaderboard.GlobalBoard(ctx, domain.LeaderboardMode(input.Mode), input.Limit)
	if err != nil {
		return nil, err
	}

	out := &LeaderboardOutput{}
	out.Body.Mode = input.Mode
	out.Body.Entries = mapRankedEntries(board)
	return out, nil
}

func (s *Server) handleLeagueLeaderboard(ctx context.Context, input *LeagueLeaderboardInput) (*LeaderboardOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileOwner(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	mode := domain.LeaderboardMode(input.Mode)
	board, err := s.services.Leaderboard.LeagueBoard(ctx, input.ProfileID, input.LeagueID, mode, input.Month, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &LeaderboardOutput{}
	out.Body.Mode = input.Mode
	if mode == domain.LeaderboardModeHistoricalMonthly {
		out.Body.Month = input.Month
	}
	out.Body.Entries = mapRankedEntries(board)
	return out, nil
}

func (s *Server) handleProfileRank(ctx context.Context, input *ProfileRankInput) (*RankOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileOwner(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	entry, err := s.services.Leaderboard.ProfileRank(ctx, input.ProfileID, domain.LeaderboardMode(input.Mode))
	if err != nil {
		return nil, err
	}

	return &RankOutput{Body: mapRankedEntry(*entry)}, nil
}

// === Helpers ===

func mapRankedEntries(board []domain.RankedEntry) []RankedEntryResponse {
	entries := make([]RankedEntryResponse, len(board))
	for i, e := range board {
		entries[i] = mapRankedEntry(e)
	}
	return entries
}

func mapRankedEntry(e domain.RankedEntry) RankedEntryResponse {
	return RankedEntryResponse{
		Rank:          e.Rank,
		ProfileID:     e.ProfileID,
		Name:          e.Name,
		Level:         e.Level,
		TotalXP:       e.TotalXP,
		CurrentStreak: e.CurrentStreak,
		Value:         e.Value,
	}
}

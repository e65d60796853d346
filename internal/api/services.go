package api

import (
	"github.com/familes/familes-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth        *service.AuthService
	Session     *service.SessionService
	Profile     *service.ProfileService
	Book        *service.BookService
	Reading     *service.ReadingService
	League      *service.LeagueService
	Leaderboard *service.LeaderboardService
	Friend      *service.FriendService
	Chat        *service.ChatService
	Search      *service.SearchService
}

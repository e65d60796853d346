package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/service"
)

func (s *Server) registerLeagueRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createLeague",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/leagues",
		Summary:     "Create league",
		Description: "Creates a private league with the profile as its first member",
		Tags:        []string{"Leagues"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateLeague)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLeagues",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/leagues",
		Summary:     "List leagues",
		Description: "Returns the leagues the profile belongs to",
		Tags:        []string{"Leagues"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLeagues)

	huma.Register(s.api, huma.Operation{
		OperationID: "joinLeague",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/leagues/join",
		Summary:     "Join league",
		Description: "Joins a league by its six-character join code",
		Tags:        []string{"Leagues"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleJoinLeague)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLeague",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/leagues/{leagueID}",
		Summary:     "Get league",
		Description: "Returns league details; the join code is only visible to members",
		Tags:        []string{"Leagues"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLeague)

	huma.Register(s.api, huma.Operation{
		OperationID: "leaveLeague",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profiles/{profileID}/leagues/{leagueID}",
		Summary:     "Leave league",
		Description: "Leaves a league; an emptied league is deleted and its join code freed",
		Tags:        []string{"Leagues"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLeaveLeague)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLeagueMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/leagues/{leagueID}/members",
		Summary:     "List league members",
		Description: "Returns the public profiles of all league members",
		Tags:        []string{"Leagues"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLeagueMembers)
}

// === DTOs ===

// LeagueResponse contains league data in API responses.
type LeagueResponse struct {
	ID          string    `json:"id" doc:"League ID"`
	Name        string    `json:"name" doc:"League name"`
	JoinCode    string    `json:"join_code,omitempty" doc:"Join code, only present for members"`
	CreatorID   string    `json:"creator_id" doc:"Profile that created the league"`
	MemberCount int       `json:"member_count" doc:"Number of member profiles"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
}

// CreateLeagueInput wraps the league creation request for Huma.
type CreateLeagueInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	Body          struct {
		Name string `json:"name" validate:"required,min=1,max=64" doc:"League name"`
	}
}

// JoinLeagueInput wraps the join-by-code request for Huma.
type JoinLeagueInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	Body          struct {
		JoinCode string `json:"join_code" validate:"required,len=6" doc:"Six-character join code"`
	}
}

// LeagueIDInput carries profile and league ID path parameters.
type LeagueIDInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	LeagueID      string `path:"leagueID" doc:"League ID"`
}

// LeagueOutput wraps a single league for Huma.
type LeagueOutput struct {
	Body LeagueResponse
}

// LeagueListOutput wraps a league list for Huma.
type LeagueListOutput struct {
	Body struct {
		Leagues []LeagueResponse `json:"leagues" doc:"Leagues the profile belongs to"`
	}
}

// LeagueMembersOutput wraps the member list for Huma.
type LeagueMembersOutput struct {
	Body struct {
		Members []PublicProfileResponse `json:"members" doc:"Public profiles of league members"`
	}
}

// === Handlers ===

func (s *Server) handleCreateLeague(ctx context.Context, input *CreateLeagueInput) (*LeagueOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	league, err := s.services.League.CreateLeague(ctx, userID, input.ProfileID, service.CreateLeagueRequest{
		Name: input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &LeagueOutput{Body: mapLeagueResponse(league)}, nil
}

func (s *Server) handleListLeagues(ctx context.Context, input *ProfileIDInput) (*LeagueListOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	leagues, err := s.services.League.ListLeagues(ctx, userID, input.ProfileID)
	if err != nil {
		return nil, err
	}

	out := &LeagueListOutput{}
	out.Body.Leagues = make([]LeagueResponse, len(leagues))
	for i, l := range leagues {
		out.Body.Leagues[i] = mapLeagueResponse(l)
	}
	return out, nil
}

func (s *Server) handleJoinLeague(ctx context.Context, input *JoinLeagueInput) (*LeagueOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	league, err := s.services.League.JoinLeague(ctx, userID, input.ProfileID, service.JoinLeagueRequest{
		JoinCode: input.Body.JoinCode,
	})
	if err != nil {
		return nil, err
	}

	return &LeagueOutput{Body: mapLeagueResponse(league)}, nil
}

func (s *Server) handleGetLeague(ctx context.Context, input *LeagueIDInput) (*LeagueOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileOwner(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	league, err := s.services.League.GetLeague(ctx, input.ProfileID, input.LeagueID)
	if err != nil {
		return nil, err
	}

	return &LeagueOutput{Body: mapLeagueResponse(league)}, nil
}

func (s *Server) handleLeaveLeague(ctx context.Context, input *LeagueIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.League.LeaveLeague(ctx, userID, input.ProfileID, input.LeagueID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Left league"}}, nil
}

func (s *Server) handleListLeagueMembers(ctx context.Context, input *LeagueIDInput) (*LeagueMembersOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.requireProfileOwner(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	members, err := s.services.League.ListMembers(ctx, input.ProfileID, input.LeagueID)
	if err != nil {
		return nil, err
	}

	out := &LeagueMembersOutput{}
	out.Body.Members = make([]PublicProfileResponse, len(members))
	for i, m := range members {
		out.Body.Members[i] = PublicProfileResponse{
			ID:            m.ID,
			Name:          m.Name,
			Level:         m.Level,
			TotalXP:       m.TotalXP,
			CurrentStreak: m.Streak.CurrentStreak,
		}
	}
	return out, nil
}

// === Helpers ===

func mapLeagueResponse(l *domain.League) LeagueResponse {
	return LeagueResponse{
		ID:          l.ID,
		Name:        l.Name,
		JoinCode:    l.JoinCode,
		CreatorID:   l.CreatorID,
		MemberCount: len(l.MemberIDs),
		CreatedAt:   l.CreatedAt,
	}
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createProfile",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles",
		Summary:     "Create profile",
		Description: "Adds a reader profile to the authenticated account",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "listProfiles",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles",
		Summary:     "List profiles",
		Description: "Returns all reader profiles of the authenticated account",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListProfiles)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}",
		Summary:     "Get profile",
		Description: "Returns a profile owned by the authenticated account",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/public",
		Summary:     "Get public profile",
		Description: "Returns the public view of any reader profile",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPublicProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profiles/{profileID}",
		Summary:     "Rename profile",
		Description: "Renames a profile and republishes its leaderboard snapshots",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRenameProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProfile",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profiles/{profileID}",
		Summary:     "Delete profile",
		Description: "Deletes a profile and all its books, history, friendships and leaderboard rows",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteProfile)
}

// === DTOs ===

// StreakResponse contains reading streak state in API responses.
type StreakResponse struct {
	CurrentStreak  int    `json:"current_streak" doc:"Consecutive days the daily goal was met"`
	LongestStreak  int    `json:"longest_streak" doc:"Longest streak ever held"`
	LastReadDate   string `json:"last_read_date,omitempty" doc:"Last day with reading activity (YYYY-MM-DD)"`
	PagesReadToday int    `json:"pages_read_today" doc:"Pages read today"`
	XPEarnedToday  int    `json:"xp_earned_today" doc:"XP earned today"`
}

// ProfileResponse contains reader profile data in API responses.
type ProfileResponse struct {
	ID           string         `json:"id" doc:"Profile ID"`
	Name         string         `json:"name" doc:"Display name"`
	IsPrimary    bool           `json:"is_primary" doc:"Whether this is the account's primary profile"`
	TotalXP      int            `json:"total_xp" doc:"Lifetime XP"`
	Level        int            `json:"level" doc:"Current level"`
	Progress     float64        `json:"progress" doc:"Fraction of the way to the next level (0..1)"`
	TotalPages   int            `json:"total_pages" doc:"Lifetime pages read"`
	MonthlyXP    int            `json:"monthly_xp" doc:"XP earned in the current month"`
	CurrentMonth string         `json:"current_month,omitempty" doc:"Month the monthly counter belongs to (YYYY-MM)"`
	Streak       StreakResponse `json:"streak" doc:"Reading streak state"`
	Leagues      []string       `json:"leagues,omitempty" doc:"League IDs this profile belongs to"`
	CreatedAt    time.Time      `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt    time.Time      `json:"updated_at" doc:"Last update timestamp"`
}

// PublicProfileResponse is the directory view of a profile, visible to
// any authenticated reader.
type PublicProfileResponse struct {
	ID            string `json:"id" doc:"Profile ID"`
	Name          string `json:"name" doc:"Display name"`
	Level         int    `json:"level" doc:"Current level"`
	TotalXP       int    `json:"total_xp" doc:"Lifetime XP"`
	CurrentStreak int    `json:"current_streak" doc:"Current reading streak in days"`
}

// CreateProfileInput wraps the profile creation request for Huma.
type CreateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Name string `json:"name" validate:"required,min=1,max=64" doc:"Profile display name"`
	}
}

// ProfileIDInput carries a profile ID path parameter.
type ProfileIDInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
}

// RenameProfileInput wraps the rename request for Huma.
type RenameProfileInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Profile ID"`
	Body          struct {
		Name string `json:"name" validate:"required,min=1,max=64" doc:"New display name"`
	}
}

// ProfileOutput wraps a single profile for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// ProfileListOutput wraps a profile list for Huma.
type ProfileListOutput struct {
	Body struct {
		Profiles []ProfileResponse `json:"profiles" doc:"Reader profiles"`
	}
}

// PublicProfileOutput wraps a public profile for Huma.
type PublicProfileOutput struct {
	Body PublicProfileResponse
}

// === Handlers ===

func (s *Server) handleCreateProfile(ctx context.Context, input *CreateProfileInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.CreateProfile(ctx, userID, service.CreateProfileRequest{
		Name: input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: s.mapProfile(profile)}, nil
}

func (s *Server) handleListProfiles(ctx context.Context, input *AuthorizedInput) (*ProfileListOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	profiles, err := s.services.Profile.ListProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ProfileListOutput{}
	out.Body.Profiles = make([]ProfileResponse, len(profiles))
	for i, p := range profiles {
		out.Body.Profiles[i] = s.mapProfile(p)
	}
	return out, nil
}

func (s *Server) handleGetProfile(ctx context.Context, input *ProfileIDInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetProfile(ctx, userID, input.ProfileID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: s.mapProfile(profile)}, nil
}

func (s *Server) handleGetPublicProfile(ctx context.Context, input *ProfileIDInput) (*PublicProfileOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetProfilePublic(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}

	return &PublicProfileOutput{Body: PublicProfileResponse{
		ID:            profile.ID,
		Name:          profile.Name,
		Level:         profile.Level,
		TotalXP:       profile.TotalXP,
		CurrentStreak: profile.Streak.CurrentStreak,
	}}, nil
}

func (s *Server) handleRenameProfile(ctx context.Context, input *RenameProfileInput) (*ProfileOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.RenameProfile(ctx, userID, input.ProfileID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: s.mapProfile(profile)}, nil
}

func (s *Server) handleDeleteProfile(ctx context.Context, input *ProfileIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Profile.DeleteProfile(ctx, userID, input.ProfileID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Profile deleted"}}, nil
}

// === Helpers ===

func (s *Server) mapProfile(p *domain.Profile) ProfileResponse {
	resp := mapProfileResponse(p)
	resp.Progress = s.services.Profile.Curve().ProgressFraction(p.TotalXP)
	return resp
}

func mapProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:           p.ID,
		Name:         p.Name,
		IsPrimary:    p.IsPrimary,
		TotalXP:      p.TotalXP,
		Level:        p.Level,
		TotalPages:   p.TotalPages,
		MonthlyXP:    p.MonthlyXP,
		CurrentMonth: p.CurrentMonth,
		Streak: StreakResponse{
			CurrentStreak:  p.Streak.CurrentStreak,
			LongestStreak:  p.Streak.LongestStreak,
			LastReadDate:   p.Streak.LastReadDate,
			PagesReadToday: p.Streak.PagesReadToday,
			XPEarnedToday:  p.Streak.XPEarnedToday,
		},
		Leagues:   p.Leagues,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

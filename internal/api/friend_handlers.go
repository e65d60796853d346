package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/familes/familes-server/internal/service"
)

func (s *Server) registerFriendRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "friendOverview",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/friends",
		Summary:     "Friend overview",
		Description: "Returns friends, pending requests in both directions, and fresh acceptances",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFriendOverview)

	huma.Register(s.api, huma.Operation{
		OperationID: "sendFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/friends/requests",
		Summary:     "Send friend request",
		Description: "Sends a friend request; crossing requests become an instant friendship",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSendFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "acceptFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/friends/requests/{requesterID}/accept",
		Summary:     "Accept friend request",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAcceptFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "declineFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/friends/requests/{requesterID}/decline",
		Summary:     "Decline friend request",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeclineFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelFriendRequest",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profiles/{profileID}/friends/requests/{targetID}",
		Summary:     "Cancel friend request",
		Description: "Withdraws a request this profile sent earlier",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCancelFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFriend",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profiles/{profileID}/friends/{friendID}",
		Summary:     "Remove friend",
		Description: "Ends a friendship on both sides and deletes the conversation",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFriend)

	huma.Register(s.api, huma.Operation{
		OperationID: "dismissAcceptedNotice",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/friends/{friendID}/dismiss",
		Summary:     "Dismiss acceptance notice",
		Description: "Clears the one-shot notification that a sent request was accepted",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDismissAccepted)
}

// === DTOs ===

// FriendEntryResponse is one row in a friend list.
type FriendEntryResponse struct {
	Profile PublicProfileResponse `json:"profile" doc:"Public profile"`
	Since   time.Time             `json:"since" doc:"When this relation was established"`
}

// FriendOverviewOutput wraps the social overview for Huma.
type FriendOverviewOutput struct {
	Body struct {
		Friends  []FriendEntryResponse `json:"friends" doc:"Established friendships"`
		Incoming []FriendEntryResponse `json:"incoming" doc:"Requests awaiting this profile's answer"`
		Outgoing []FriendEntryResponse `json:"outgoing" doc:"Requests this profile sent"`
		Accepted []FriendEntryResponse `json:"accepted" doc:"Fresh acceptances not yet dismissed"`
	}
}

// SendFriendRequestInput wraps the friend request for Huma.
type SendFriendRequestInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Acting profile ID"`
	Body          struct {
		TargetID string `json:"target_id" validate:"required" doc:"Profile to befriend"`
	}
}

// FriendRequestActionInput carries the requester path parameter.
type FriendRequestActionInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Acting profile ID"`
	RequesterID   string `path:"requesterID" doc:"Profile that sent the request"`
}

// FriendTargetInput carries the target path parameter.
type FriendTargetInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Acting profile ID"`
	TargetID      string `path:"targetID" doc:"Profile the request was sent to"`
}

// FriendIDInput carries the friend path parameter.
type FriendIDInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Acting profile ID"`
	FriendID      string `path:"friendID" doc:"Friend profile ID"`
}

// === Handlers ===

func (s *Server) handleFriendOverview(ctx context.Context, input *ProfileIDInput) (*FriendOverviewOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	overview, err := s.services.Friend.Overview(ctx, userID, input.ProfileID)
	if err != nil {
		return nil, err
	}

	out := &FriendOverviewOutput{}
	out.Body.Friends = mapFriendEntries(overview.Friends)
	out.Body.Incoming = mapFriendEntries(overview.Incoming)
	out.Body.Outgoing = mapFriendEntries(overview.Outgoing)
	out.Body.Accepted = mapFriendEntries(overview.Accepted)
	return out, nil
}

func (s *Server) handleSendFriendRequest(ctx context.Context, input *SendFriendRequestInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Friend.SendRequest(ctx, userID, input.ProfileID, input.Body.TargetID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend request sent"}}, nil
}

func (s *Server) handleAcceptFriendRequest(ctx context.Context, input *FriendRequestActionInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Friend.AcceptRequest(ctx, userID, input.ProfileID, input.RequesterID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend request accepted"}}, nil
}

func (s *Server) handleDeclineFriendRequest(ctx context.Context, input *FriendRequestActionInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Friend.DeclineRequest(ctx, userID, input.ProfileID, input.RequesterID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend request declined"}}, nil
}

func (s *Server) handleCancelFriendRequest(ctx context.Context, input *FriendTargetInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Friend.CancelRequest(ctx, userID, input.ProfileID, input.TargetID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend request cancelled"}}, nil
}

func (s *Server) handleRemoveFriend(ctx context.Context, input *FriendIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Friend.RemoveFriend(ctx, userID, input.ProfileID, input.FriendID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend removed"}}, nil
}

func (s *Server) handleDismissAccepted(ctx context.Context, input *FriendIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Friend.DismissAccepted(ctx, userID, input.ProfileID, input.FriendID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Notification dismissed"}}, nil
}

// === Helpers ===

func mapFriendEntries(entries []service.FriendEntry) []FriendEntryResponse {
	out := make([]FriendEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = FriendEntryResponse{
			Profile: PublicProfileResponse{
				ID:            e.Profile.ID,
				Name:          e.Profile.Name,
				Level:         e.Profile.Level,
				TotalXP:       e.Profile.TotalXP,
				CurrentStreak: e.Profile.Streak.CurrentStreak,
			},
			Since: e.Since,
		}
	}
	return out
}

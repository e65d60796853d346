package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/service"
)

func (s *Server) registerChatRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "sendChatMessage",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/chats/{friendID}/messages",
		Summary:     "Send chat message",
		Description: "Delivers a direct message to a friend",
		Tags:        []string{"Chat"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSendChatMessage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getConversation",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/chats/{friendID}",
		Summary:     "Get conversation",
		Description: "Returns the message history with a friend, oldest first",
		Tags:        []string{"Chat"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetConversation)

	huma.Register(s.api, huma.Operation{
		OperationID: "markConversationRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/{profileID}/chats/{friendID}/read",
		Summary:     "Mark conversation read",
		Description: "Marks all messages from the friend as read",
		Tags:        []string{"Chat"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkConversationRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "unreadCounts",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{profileID}/chats/unread",
		Summary:     "Unread counts",
		Description: "Returns per-friend unread message counts, omitting zeroes",
		Tags:        []string{"Chat"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnreadCounts)
}

// === DTOs ===

// ChatMessageResponse contains one chat message.
type ChatMessageResponse struct {
	ID          string     `json:"id" doc:"Message ID"`
	SenderID    string     `json:"sender_id" doc:"Sending profile"`
	RecipientID string     `json:"recipient_id" doc:"Receiving profile"`
	Body        string     `json:"body" doc:"Message text"`
	SentAt      time.Time  `json:"sent_at" doc:"Delivery timestamp"`
	ReadAt      *time.Time `json:"read_at,omitempty" doc:"When the recipient read it"`
}

// SendChatMessageInput wraps the message request for Huma.
type SendChatMessageInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Sending profile ID"`
	FriendID      string `path:"friendID" doc:"Receiving profile ID"`
	Body          struct {
		Body string `json:"body" validate:"required,max=2000" doc:"Message text"`
	}
}

// ConversationInput carries conversation path and query parameters.
type ConversationInput struct {
	Authorization string `header:"Authorization"`
	ProfileID     string `path:"profileID" doc:"Acting profile ID"`
	FriendID      string `path:"friendID" doc:"Friend profile ID"`
	Limit         int    `query:"limit" minimum:"0" maximum:"500" doc:"Maximum messages to return, 0 for the default window"`
}

// ChatMessageOutput wraps a single message for Huma.
type ChatMessageOutput struct {
	Body ChatMessageResponse
}

// ConversationOutput wraps a conversation for Huma.
type ConversationOutput struct {
	Body struct {
		Messages []ChatMessageResponse `json:"messages" doc:"Messages, oldest first"`
		Unread   int                   `json:"unread" doc:"Messages from the friend not yet read"`
	}
}

// MarkReadOutput wraps the mark-read result for Huma.
type MarkReadOutput struct {
	Body struct {
		Marked int `json:"marked" doc:"Messages marked read by this call"`
	}
}

// UnreadCountsOutput wraps per-friend unread counts for Huma.
type UnreadCountsOutput struct {
	Body struct {
		Counts map[string]int `json:"counts" doc:"Unread count per friend profile ID, zeroes omitted"`
	}
}

// === Handlers ===

func (s *Server) handleSendChatMessage(ctx context.Context, input *SendChatMessageInput) (*ChatMessageOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	msg, err := s.services.Chat.SendMessage(ctx, userID, input.ProfileID, input.FriendID, service.SendMessageRequest{
		Body: input.Body.Body,
	})
	if err != nil {
		return nil, err
	}

	return &ChatMessageOutput{Body: mapChatMessage(msg)}, nil
}

func (s *Server) handleGetConversation(ctx context.Context, input *ConversationInput) (*ConversationOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	conv, err := s.services.Chat.GetConversation(ctx, userID, input.ProfileID, input.FriendID, input.Limit)
	if err != nil {
		return nil, err
	}

	out := &ConversationOutput{}
	out.Body.Messages = make([]ChatMessageResponse, len(conv.Messages))
	for i, m := range conv.Messages {
		out.Body.Messages[i] = mapChatMessage(m)
	}
	out.Body.Unread = conv.Unread
	return out, nil
}

func (s *Server) handleMarkConversationRead(ctx context.Context, input *ConversationInput) (*MarkReadOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	marked, err := s.services.Chat.MarkRead(ctx, userID, input.ProfileID, input.FriendID)
	if err != nil {
		return nil, err
	}

	out := &MarkReadOutput{}
	out.Body.Marked = marked
	return out, nil
}

func (s *Server) handleUnreadCounts(ctx context.Context, input *ProfileIDInput) (*UnreadCountsOutput, error) {
	userID, err := s.authenticateRequest(input.Authorization)
	if err != nil {
		return nil, err
	}

	counts, err := s.services.Chat.UnreadCounts(ctx, userID, input.ProfileID)
	if err != nil {
		return nil, err
	}

	out := &UnreadCountsOutput{}
	out.Body.Counts = counts
	return out, nil
}

// === Helpers ===

func mapChatMessage(m *domain.Message) ChatMessageResponse {
	return ChatMessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		SentAt:      m.CreatedAt,
		ReadAt:      m.ReadAt,
	}
}

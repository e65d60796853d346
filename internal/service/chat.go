package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/id"
	"github.com/familes/familes-server/internal/sse"
	"github.com/familes/familes-server/internal/store"
)

// defaultConversationLimit bounds how many messages a conversation read
// returns when the caller does not ask for a limit.
const defaultConversationLimit = 100

// ChatService handles one-to-one messaging between friends. Messaging a
// non-friend is rejected; unfriending deletes the conversation.
type ChatService struct {
	store    *store.Store
	profiles *ProfileService
	logger   *slog.Logger
}

// NewChatService creates a new chat service.
func NewChatService(store *store.Store, profiles *ProfileService, logger *slog.Logger) *ChatService {
	return &ChatService{store: store, profiles: profiles, logger: logger}
}

// SendMessageRequest carries a chat message body.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// Conversation is a page of messages plus the reader's unread count.
type Conversation struct {
	Messages []*domain.Message `json:"messages"`
	Unread   int               `json:"unread"`
}

// SendMessage delivers a message from the acting profile to a friend.
func (s *ChatService) SendMessage(ctx context.Context, userID, profileID, friendID string, req SendMessageRequest) (*domain.Message, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, domainerrors.Validation("message body cannot be blank")
	}

	if err := s.requireFriendship(ctx, userID, profileID, friendID); err != nil {
		return nil, err
	}

	msgID, err := id.Generate("msg")
	if err != nil {
		return nil, fmt.Errorf("generate message ID: %w", err)
	}

	msg := domain.NewMessage(msgID, profileID, friendID, body)
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	s.store.Emit(sse.NewChatMessageEvent(msg))

	if s.logger != nil {
		s.logger.Debug("chat message sent",
			"conversation_id", msg.ConversationID, "from", profileID, "to", friendID)
	}
	return msg, nil
}

// GetConversation returns the acting profile's conversation with a
// friend, oldest first, with the profile's unread count.
func (s *ChatService) GetConversation(ctx context.Context, userID, profileID, friendID string, limit int) (*Conversation, error) {
	if err := s.requireFriendship(ctx, userID, profileID, friendID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultConversationLimit
	}

	convID := domain.ConversationID(profileID, friendID)
	messages, err := s.store.ListConversation(ctx, convID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.CountUnread(ctx, convID, profileID)
	if err != nil {
		return nil, err
	}
	return &Conversation{Messages: messages, Unread: unread}, nil
}

// MarkRead stamps every unread message addressed to the acting profile in
// the conversation and returns how many were stamped.
func (s *ChatService) MarkRead(ctx context.Context, userID, profileID, friendID string) (int, error) {
	if err := s.requireFriendship(ctx, userID, profileID, friendID); err != nil {
		return 0, err
	}
	return s.store.MarkConversationRead(ctx, domain.ConversationID(profileID, friendID), profileID)
}

// UnreadCounts returns the acting profile's unread tally per friend,
// keyed by friend profile id. Friends with no unread messages are
// omitted.
func (s *ChatService) UnreadCounts(ctx context.Context, userID, profileID string) (map[string]int, error) {
	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}

	friendship, err := s.store.GetFriendship(ctx, profileID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, friendID := range friendship.FriendIDs() {
		unread, err := s.store.CountUnread(ctx, domain.ConversationID(profileID, friendID), profileID)
		if err != nil {
			return nil, err
		}
		if unread > 0 {
			counts[friendID] = unread
		}
	}
	return counts, nil
}

// requireFriendship checks ownership of the acting profile and that the
// two profiles are accepted friends.
func (s *ChatService) requireFriendship(ctx context.Context, userID, profileID, friendID string) error {
	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return err
	}

	friendship, err := s.store.GetFriendship(ctx, profileID)
	if err != nil {
		return err
	}
	if !friendship.IsFriend(friendID) {
		return domainerrors.Forbidden("can only chat with friends")
	}
	return nil
}

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/store"
)

func appendTestMessage(t *testing.T, s *store.Store, id, sender, recipient, body string, at time.Time) *domain.Message {
	t.Helper()
	msg := domain.NewMessage(id, sender, recipient, body)
	msg.CreatedAt = at
	msg.UpdatedAt = at
	require.NoError(t, s.AppendMessage(context.Background(), msg))
	return msg
}

func TestListConversation_OrderedOldestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	appendTestMessage(t, s, "msg_2", "prof_b", "prof_a", "hei!", base.Add(time.Minute))
	appendTestMessage(t, s, "msg_1", "prof_a", "prof_b", "hei", base)
	appendTestMessage(t, s, "msg_3", "prof_a", "prof_b", "leser du?", base.Add(2*time.Minute))

	convID := domain.ConversationID("prof_a", "prof_b")
	messages, err := s.ListConversation(ctx, convID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, "msg_1", messages[0].ID)
	require.Equal(t, "msg_3", messages[2].ID)

	// Both participants resolve the same conversation.
	same, err := s.ListConversation(ctx, domain.ConversationID("prof_b", "prof_a"), 0)
	require.NoError(t, err)
	require.Len(t, same, 3)

	// A limit keeps the newest messages.
	tail, err := s.ListConversation(ctx, convID, 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	require.Equal(t, "msg_2", tail[0].ID)
	require.Equal(t, "msg_3", tail[1].ID)
}

func TestMarkConversationRead_OnlyRecipientSide(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now()
	appendTestMessage(t, s, "msg_1", "prof_a", "prof_b", "hei", base)
	appendTestMessage(t, s, "msg_2", "prof_a", "prof_b", "hallo", base.Add(time.Second))
	appendTestMessage(t, s, "msg_3", "prof_b", "prof_a", "hei selv", base.Add(2*time.Second))

	convID := domain.ConversationID("prof_a", "prof_b")

	unread, err := s.CountUnread(ctx, convID, "prof_b")
	require.NoError(t, err)
	require.Equal(t, 2, unread)

	updated, err := s.MarkConversationRead(ctx, convID, "prof_b")
	require.NoError(t, err)
	require.Equal(t, 2, updated)

	unread, err = s.CountUnread(ctx, convID, "prof_b")
	require.NoError(t, err)
	require.Equal(t, 0, unread)

	// prof_a's incoming message is still unread.
	unread, err = s.CountUnread(ctx, convID, "prof_a")
	require.NoError(t, err)
	require.Equal(t, 1, unread)

	// Marking again is a no-op.
	updated, err = s.MarkConversationRead(ctx, convID, "prof_b")
	require.NoError(t, err)
	require.Equal(t, 0, updated)

	messages, err := s.ListConversation(ctx, convID, 0)
	require.NoError(t, err)
	for _, msg := range messages {
		if msg.RecipientID == "prof_b" {
			require.NotNil(t, msg.ReadAt, "message %s should be read", msg.ID)
		}
	}
}

func TestDeleteConversation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i := range 5 {
		appendTestMessage(t, s, fmt.Sprintf("msg_%d", i), "prof_a", "prof_b", "hei", base.Add(time.Duration(i)*time.Second))
	}
	appendTestMessage(t, s, "msg_other", "prof_a", "prof_c", "hei", base)

	require.NoError(t, s.DeleteConversation(ctx, domain.ConversationID("prof_a", "prof_b")))

	messages, err := s.ListConversation(ctx, domain.ConversationID("prof_a", "prof_b"), 0)
	require.NoError(t, err)
	require.Empty(t, messages)

	// Other conversations survive.
	other, err := s.ListConversation(ctx, domain.ConversationID("prof_a", "prof_c"), 0)
	require.NoError(t, err)
	require.Len(t, other, 1)
}

package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/service"
)

func TestFriendRequestAndAccept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alex := env.signup(t, "alex@example.com", "Alex")
	sam := env.signup(t, "sam@example.com", "Sam")

	require.NoError(t, env.friends.SendRequest(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID))

	samView, err := env.friends.Overview(ctx, sam.User.ID, sam.Profile.ID)
	require.NoError(t, err)
	require.Len(t, samView.Incoming, 1)
	assert.Equal(t, alex.Profile.ID, samView.Incoming[0].Profile.ID)

	alexView, err := env.friends.Overview(ctx, alex.User.ID, alex.Profile.ID)
	require.NoError(t, err)
	require.Len(t, alexView.Outgoing, 1)

	require.NoError(t, env.friends.AcceptRequest(ctx, sam.User.ID, sam.Profile.ID, alex.Profile.ID))

	samView, err = env.friends.Overview(ctx, sam.User.ID, sam.Profile.ID)
	require.NoError(t, err)
	assert.Empty(t, samView.Incoming)
	require.Len(t, samView.Friends, 1)

	alexView, err = env.friends.Overview(ctx, alex.User.ID, alex.Profile.ID)
	require.NoError(t, err)
	assert.Empty(t, alexView.Outgoing)
	require.Len(t, alexView.Friends, 1)
	require.Len(t, alexView.Accepted, 1, "sender gets the acceptance notification")
}

func TestFriendRequestSelf(t *testing.T) {
	env := newTestEnv(t)
	alex := env.signup(t, "alex@example.com", "Alex")

	err := env.friends.SendRequest(context.Background(), alex.User.ID, alex.Profile.ID, alex.Profile.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestFriendRequestAlreadyFriends(t *testing.T) {
	env := newTestEnv(t)
	alex := env.signup(t, "alex@example.com", "Alex")
	sam := env.signup(t, "sam@example.com", "Sam")
	env.befriend(t, alex, sam)

	err := env.friends.SendRequest(context.Background(), alex.User.ID, alex.Profile.ID, sam.Profile.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestFriendRequestRepeatSendIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alex := env.signup(t, "alex@example.com", "Alex")
	sam := env.signup(t, "sam@example.com", "Sam")

	require.NoError(t, env.friends.SendRequest(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID))
	require.NoError(t, env.friends.SendRequest(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID))

	samView, err := env.friends.Overview(ctx, sam.User.ID, sam.Profile.ID)
	require.NoError(t, err)
	assert.Len(t, samView.Incoming, 1)
}

func TestCrossingRequestsBecomeFriendship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alex := env.signup(t, "alex@example.com", "Alex")
	sam := env.signup(t, "sam@example.com", "Sam")

	require.NoError(t, env.friends.SendRequest(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID))
	require.NoError(t, env.friends.SendRequest(ctx, sam.User.ID, sam.Profile.ID, alex.Profile.ID))

	samView, err := env.friends.Overview(ctx, sam.User.ID, sam.Profile.ID)
	require.NoError(t, err)
	assert.Empty(t, samView.Incoming)
	assert.Empty(t, samView.Outgoing)
	assert.Len(t, samView.Friends, 1)

	alexView, err := env.friends.Overview(ctx, alex.User.ID, alex.Profile.ID)
	require.NoError(t, err)
	assert.Len(t, alexView.Friends, 1)
	assert.Len(t, alexView.Accepted, 1, "the earlier sender is told their request landed")
}

func TestDeclineRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alex := env.signup(t, "alex@example.com", "Alex")
	sam := env.signup(t, "sam@example.com", "Sam")

	require.NoError(t, env.friends.SendRequest(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID))
	require.NoError(t, env.friends.DeclineRequest(ctx, sam.User.ID, sam.Profile.ID, alex.Profile.ID))

	samView, err := env.friends.Overview(ctx, sam.User.ID, sam.Profile.ID)
	require.NoError(t, err)
	assert.Empty(t, samView.Incoming)
	assert.Empty(t, samView.Friends)

	alexView, err := env.friends.Overview(ctx, alex.User.ID, alex.Profile.ID)
	require.NoError(t, err)
	assert.Empty(t, alexView.Outgoing, "decline clears the sender's pending request too")
}

func TestCancelRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alex := env.signup(t, "alex@example.com", "Alex")
	sam := env.signup(t, "sam@example.com", "Sam")

	require.NoError(t, env.friends.SendRequest(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID))
	require.NoError(t, env.friends.CancelRequest(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID))

	samView, err := env.friends.Overview(ctx, sam.User.ID, sam.Profile.ID)
	require.NoError(t, err)
	assert.Empty(t, samView.Incoming)
}

func TestRemoveFriendDeletesConversation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alex := env.signup(t, "alex@example.com", "Alex")
	sam := env.signup(t, "sam@example.com", "Sam")
	env.befriend(t, alex, sam)

	_, err := env.chat.SendMessage(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID,
		service.SendMessageRequest{Body: "hi!"})
	require.NoError(t, err)

	require.NoError(t, env.friends.RemoveFriend(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID))

	samView, err := env.friends.Overview(ctx, sam.User.ID, sam.Profile.ID)
	require.NoError(t, err)
	assert.Empty(t, samView.Friends, "removal applies to both sides")

	// Re-friending starts with a clean slate.
	env.befriend(t, alex, sam)
	conv, err := env.chat.GetConversation(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, conv.Messages)
}

func TestDismissAccepted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alex := env.signup(t, "alex@example.com", "Alex")
	sam := env.signup(t, "sam@example.com", "Sam")
	env.befriend(t, alex, sam)

	require.NoError(t, env.friends.DismissAccepted(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID))

	alexView, err := env.friends.Overview(ctx, alex.User.ID, alex.Profile.ID)
	require.NoError(t, err)
	assert.Empty(t, alexView.Accepted)
	assert.Len(t, alexView.Friends, 1, "dismissing the notification keeps the friendship")

	err = env.friends.DismissAccepted(ctx, alex.User.ID, alex.Profile.ID, sam.Profile.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAcceptNonexistentRequest(t *testing.T) {
	env := newTestEnv(t)
	alex := env.signup(t, "alex@example.com", "Alex")
	sam := env.signup(t, "sam@example.com", "Sam")

	err := env.friends.AcceptRequest(context.Background(), sam.User.ID, sam.Profile.ID, alex.Profile.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

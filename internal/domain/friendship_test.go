package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendship_RequestFlow(t *testing.T) {
	now := time.Now()
	alice := NewFriendship("prof-alice")
	bob := NewFriendship("prof-bob")

	// Alice sends, Bob receives.
	alice.RecordOutgoing("prof-bob", now)
	bob.RecordIncoming("prof-alice", now)

	require.True(t, alice.HasOutgoing("prof-bob"))
	require.True(t, bob.HasIncoming("prof-alice"))

	// Bob accepts; both sides flip in the same transaction.
	at := now.Add(time.Minute)
	require.True(t, bob.AcceptIncoming("prof-alice", at))
	require.True(t, alice.ConfirmOutgoing("prof-bob", at))

	assert.True(t, alice.IsFriend("prof-bob"))
	assert.True(t, bob.IsFriend("prof-alice"))
	assert.False(t, alice.HasOutgoing("prof-bob"))
	assert.False(t, bob.HasIncoming("prof-alice"))

	// Alice gets the acceptance notification, Bob does not.
	assert.Contains(t, alice.Accepted, "prof-bob")
	assert.NotContains(t, bob.Accepted, "prof-alice")

	assert.True(t, alice.DismissAccepted("prof-bob"))
	assert.False(t, alice.DismissAccepted("prof-bob"))
}

func TestFriendship_Decline(t *testing.T) {
	now := time.Now()
	bob := NewFriendship("prof-bob")
	bob.RecordIncoming("prof-alice", now)

	assert.True(t, bob.DeclineIncoming("prof-alice"))
	assert.False(t, bob.HasIncoming("prof-alice"))
	assert.False(t, bob.IsFriend("prof-alice"))

	// Accepting a request that no longer exists fails.
	assert.False(t, bob.AcceptIncoming("prof-alice", now))
}

func TestFriendship_Cancel(t *testing.T) {
	now := time.Now()
	alice := NewFriendship("prof-alice")
	alice.RecordOutgoing("prof-bob", now)

	assert.True(t, alice.CancelOutgoing("prof-bob"))
	assert.False(t, alice.CancelOutgoing("prof-bob"))
}

func TestFriendship_RemoveFriend(t *testing.T) {
	now := time.Now()
	alice := NewFriendship("prof-alice")
	alice.Friends = map[string]time.Time{"prof-bob": now}

	assert.True(t, alice.RemoveFriend("prof-bob"))
	assert.False(t, alice.RemoveFriend("prof-bob"))
	assert.Empty(t, alice.FriendIDs())
}

func TestFriendship_FriendIDs(t *testing.T) {
	now := time.Now()
	f := NewFriendship("prof-1")
	f.Friends = map[string]time.Time{"prof-2": now, "prof-3": now}

	ids := f.FriendIDs()
	assert.ElementsMatch(t, []string{"prof-2", "prof-3"}, ids)
}

func TestConversationID_Canonical(t *testing.T) {
	assert.Equal(t, ConversationID("prof-a", "prof-b"), ConversationID("prof-b", "prof-a"))
	assert.Equal(t, "prof-a:prof-b", ConversationID("prof-b", "prof-a"))
}

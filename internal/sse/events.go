// Package sse implements Server-Sent Events for pushing reading progress,
// leaderboard changes and social notifications to connected clients.
package sse

import (
	"time"

	"github.com/familes/familes-server/internal/domain"
)

// All realtime traffic is server-to-client; the app itself follows a
// request/response pattern, so SSE is enough and WebSockets stay out.

// EventType represents the type of SSE event.
type EventType string

const (
	// EventProfileUpdated fires after a page commit changes a profile's
	// pages, XP, level or streak.
	EventProfileUpdated EventType = "profile.updated"

	// EventLeaderboardUpdated fires when a league board changes.
	// An empty league ID means the global board.
	EventLeaderboardUpdated EventType = "league.leaderboard_updated"

	// EventFriendRequest notifies a profile of a new incoming request.
	EventFriendRequest EventType = "friend.request"
	// EventFriendAccepted notifies the original sender their request
	// was accepted.
	EventFriendAccepted EventType = "friend.accepted"

	// EventChatMessage delivers a chat message to its recipient.
	EventChatMessage EventType = "chat.message"

	// EventHeartbeat is a connection keepalive.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Filtering fields. When set, the event is only delivered to
	// clients matching them; empty means broadcast to all.
	UserID    string `json:"-"` // deliver to one account's connections
	ProfileID string `json:"-"` // deliver to connections watching this profile
}

// ProfileUpdatedData is the payload for profile.updated events. It carries
// the full snapshot so clients re-render without a follow-up fetch.
type ProfileUpdatedData struct {
	Snapshot  domain.LeaderboardSnapshot `json:"snapshot"`
	XPEarned  int                        `json:"xp_earned"`
	LeveledUp bool                       `json:"leveled_up"`
}

// LeaderboardUpdatedData is the payload for league.leaderboard_updated
// events. Clients refetch the board; the payload only says which one.
type LeaderboardUpdatedData struct {
	LeagueID  string `json:"league_id,omitempty"`
	ProfileID string `json:"profile_id"`
}

// FriendEventData is the payload for friend.request and friend.accepted.
type FriendEventData struct {
	FromProfileID string `json:"from_profile_id"`
	FromName      string `json:"from_name"`
}

// ChatMessageData is the payload for chat.message events.
type ChatMessageData struct {
	Message *domain.Message `json:"message"`
}

// HeartbeatData is the payload for heartbeat events.
type HeartbeatData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Timestamp: now,
		Data:      HeartbeatData{ServerTime: now},
	}
}

// NewProfileUpdatedEvent creates a profile.updated event. Progress is
// visible family-wide, so it broadcasts to everyone.
func NewProfileUpdatedEvent(snapshot domain.LeaderboardSnapshot, xpEarned int, leveledUp bool) Event {
	return Event{
		Type:      EventProfileUpdated,
		Timestamp: time.Now(),
		Data: ProfileUpdatedData{
			Snapshot:  snapshot,
			XPEarned:  xpEarned,
			LeveledUp: leveledUp,
		},
	}
}

// NewLeaderboardUpdatedEvent creates a league.leaderboard_updated event.
func NewLeaderboardUpdatedEvent(leagueID, profileID string) Event {
	return Event{
		Type:      EventLeaderboardUpdated,
		Timestamp: time.Now(),
		Data: LeaderboardUpdatedData{
			LeagueID:  leagueID,
			ProfileID: profileID,
		},
	}
}

// NewFriendRequestEvent creates a friend.request event targeted at the
// recipient profile.
func NewFriendRequestEvent(toProfileID, fromProfileID, fromName string) Event {
	return Event{
		Type:      EventFriendRequest,
		Timestamp: time.Now(),
		ProfileID: toProfileID,
		Data: FriendEventData{
			FromProfileID: fromProfileID,
			FromName:      fromName,
		},
	}
}

// NewFriendAcceptedEvent creates a friend.accepted event targeted at the
// original sender.
func NewFriendAcceptedEvent(toProfileID, fromProfileID, fromName string) Event {
	return Event{
		Type:      EventFriendAccepted,
		Timestamp: time.Now(),
		ProfileID: toProfileID,
		Data: FriendEventData{
			FromProfileID: fromProfileID,
			FromName:      fromName,
		},
	}
}

// NewChatMessageEvent creates a chat.message event targeted at the
// recipient profile.
func NewChatMessageEvent(msg *domain.Message) Event {
	return Event{
		Type:      EventChatMessage,
		Timestamp: time.Now(),
		ProfileID: msg.RecipientID,
		Data:      ChatMessageData{Message: msg},
	}
}

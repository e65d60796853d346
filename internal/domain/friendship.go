package domain

import "time"

// Friendship is one profile's side of the friend graph: accepted friends
// with "since" timestamps, pending requests in both directions, and
// ephemeral "your request was accepted" notifications. Symmetric
// operations (accept, remove) write both profiles' documents in a single
// store transaction; the methods here only mutate one side.
type Friendship struct {
	Syncable
	ProfileID string `json:"profile_id"`

	Friends  map[string]time.Time `json:"friends,omitempty"`
	Incoming map[string]time.Time `json:"incoming,omitempty"`
	Outgoing map[string]time.Time `json:"outgoing,omitempty"`

	// Accepted holds dismissable notifications for requests this profile
	// sent that the other side accepted.
	Accepted map[string]time.Time `json:"accepted,omitempty"`
}

// NewFriendship creates an empty friend graph for a profile. The document
// id is the profile id; there is exactly one per profile.
func NewFriendship(profileID string) *Friendship {
	f := &Friendship{ProfileID: profileID}
	f.ID = profileID
	f.InitTimestamps()
	return f
}

// IsFriend reports whether the other profile is an accepted friend.
func (f *Friendship) IsFriend(profileID string) bool {
	_, ok := f.Friends[profileID]
	return ok
}

// HasIncoming reports a pending request from the other profile.
func (f *Friendship) HasIncoming(profileID string) bool {
	_, ok := f.Incoming[profileID]
	return ok
}

// HasOutgoing reports a pending request to the other profile.
func (f *Friendship) HasOutgoing(profileID string) bool {
	_, ok := f.Outgoing[profileID]
	return ok
}

// RecordOutgoing marks a request sent to the other profile.
func (f *Friendship) RecordOutgoing(profileID string, at time.Time) {
	if f.Outgoing == nil {
		f.Outgoing = make(map[string]time.Time)
	}
	f.Outgoing[profileID] = at
	f.Touch()
}

// RecordIncoming marks a request received from the other profile.
func (f *Friendship) RecordIncoming(profileID string, at time.Time) {
	if f.Incoming == nil {
		f.Incoming = make(map[string]time.Time)
	}
	f.Incoming[profileID] = at
	f.Touch()
}

// AcceptIncoming converts a pending incoming request into a friendship.
// Returns false if no such request exists.
func (f *Friendship) AcceptIncoming(profileID string, at time.Time) bool {
	if !f.HasIncoming(profileID) {
		return false
	}
	delete(f.Incoming, profileID)
	if f.Friends == nil {
		f.Friends = make(map[string]time.Time)
	}
	f.Friends[profileID] = at
	f.Touch()
	return true
}

// ConfirmOutgoing converts a pending outgoing request into a friendship
// and queues the acceptance notification. Applied to the sender's side
// when the recipient accepts.
func (f *Friendship) ConfirmOutgoing(profileID string, at time.Time) bool {
	if !f.HasOutgoing(profileID) {
		return false
	}
	delete(f.Outgoing, profileID)
	if f.Friends == nil {
		f.Friends = make(map[string]time.Time)
	}
	f.Friends[profileID] = at
	if f.Accepted == nil {
		f.Accepted = make(map[string]time.Time)
	}
	f.Accepted[profileID] = at
	f.Touch()
	return true
}

// DeclineIncoming drops a pending incoming request.
func (f *Friendship) DeclineIncoming(profileID string) bool {
	if !f.HasIncoming(profileID) {
		return false
	}
	delete(f.Incoming, profileID)
	f.Touch()
	return true
}

// CancelOutgoing drops a pending outgoing request.
func (f *Friendship) CancelOutgoing(profileID string) bool {
	if !f.HasOutgoing(profileID) {
		return false
	}
	delete(f.Outgoing, profileID)
	f.Touch()
	return true
}

// RemoveFriend drops an accepted friendship from this side.
func (f *Friendship) RemoveFriend(profileID string) bool {
	if !f.IsFriend(profileID) {
		return false
	}
	delete(f.Friends, profileID)
	f.Touch()
	return true
}

// DismissAccepted clears an acceptance notification.
func (f *Friendship) DismissAccepted(profileID string) bool {
	if _, ok := f.Accepted[profileID]; !ok {
		return false
	}
	delete(f.Accepted, profileID)
	f.Touch()
	return true
}

// Forget removes every reference to the other profile: friendship,
// pending requests in either direction and acceptance notifications.
// Used when the other profile is deleted.
func (f *Friendship) Forget(profileID string) {
	delete(f.Friends, profileID)
	delete(f.Incoming, profileID)
	delete(f.Outgoing, profileID)
	delete(f.Accepted, profileID)
	f.Touch()
}

// RelatedIDs returns every profile this document references: accepted
// friends and pending requests in both directions.
func (f *Friendship) RelatedIDs() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(f.Friends)+len(f.Incoming)+len(f.Outgoing))
	for _, m := range []map[string]time.Time{f.Friends, f.Incoming, f.Outgoing, f.Accepted} {
		for id := range m {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// FriendIDs returns the accepted friend ids in no particular order.
func (f *Friendship) FriendIDs() []string {
	out := make([]string, 0, len(f.Friends))
	for id := range f.Friends {
		out = append(out, id)
	}
	return out
}

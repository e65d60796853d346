package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/sse"
	"github.com/familes/familes-server/internal/store"
)

// FriendService manages the friend graph. Every graph change touches
// both profiles' friendship documents in one store transaction, so the
// two sides can never disagree.
type FriendService struct {
	store    *store.Store
	profiles *ProfileService
	logger   *slog.Logger
}

// NewFriendService creates a new friend service.
func NewFriendService(store *store.Store, profiles *ProfileService, logger *slog.Logger) *FriendService {
	return &FriendService{store: store, profiles: profiles, logger: logger}
}

// FriendEntry is one resolved row of a friend or request list.
type FriendEntry struct {
	Profile *domain.Profile `json:"profile"`
	Since   time.Time       `json:"since"`
}

// FriendshipOverview is a profile's full social state with the referenced
// profiles resolved.
type FriendshipOverview struct {
	Friends  []FriendEntry `json:"friends"`
	Incoming []FriendEntry `json:"incoming"`
	Outgoing []FriendEntry `json:"outgoing"`
	Accepted []FriendEntry `json:"accepted"`
}

// Overview returns the acting profile's friends, pending requests in both
// directions, and undismissed acceptance notifications.
func (s *FriendService) Overview(ctx context.Context, userID, profileID string) (*FriendshipOverview, error) {
	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}

	friendship, err := s.store.GetFriendship(ctx, profileID)
	if err != nil {
		return nil, err
	}

	overview := &FriendshipOverview{}
	if overview.Friends, err = s.resolve(ctx, friendship.Friends); err != nil {
		return nil, err
	}
	if overview.Incoming, err = s.resolve(ctx, friendship.Incoming); err != nil {
		return nil, err
	}
	if overview.Outgoing, err = s.resolve(ctx, friendship.Outgoing); err != nil {
		return nil, err
	}
	if overview.Accepted, err = s.resolve(ctx, friendship.Accepted); err != nil {
		return nil, err
	}
	return overview, nil
}

// SendRequest sends a friend request from the acting profile. If the
// target already has a request pending towards the sender, the two are
// matched up and the friendship forms immediately.
func (s *FriendService) SendRequest(ctx context.Context, userID, profileID, targetID string) error {
	if profileID == targetID {
		return domainerrors.Validation("cannot friend yourself")
	}

	profile, err := s.profiles.GetProfile(ctx, userID, profileID)
	if err != nil {
		return err
	}
	target, err := s.profiles.GetProfilePublic(ctx, targetID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var matched bool
	_, _, err = s.store.UpdateFriendshipPair(ctx, profileID, targetID, func(mine, theirs *domain.Friendship) error {
		matched = false
		switch {
		case mine.IsFriend(targetID):
			return domainerrors.Conflict("already friends")
		case mine.HasOutgoing(targetID):
			// Repeat send is a no-op, not an error.
			return nil
		case mine.HasIncoming(targetID):
			// Both sides asked; that is an acceptance.
			mine.AcceptIncoming(targetID, now)
			theirs.ConfirmOutgoing(profileID, now)
			matched = true
			return nil
		default:
			mine.RecordOutgoing(targetID, now)
			theirs.RecordIncoming(profileID, now)
			return nil
		}
	})
	if err != nil {
		return err
	}

	if matched {
		s.store.Emit(sse.NewFriendAcceptedEvent(targetID, profileID, profile.Name))
	} else {
		s.store.Emit(sse.NewFriendRequestEvent(targetID, profileID, profile.Name))
	}

	if s.logger != nil {
		s.logger.Info("friend request sent",
			"from", profileID, "to", targetID, "matched", matched, "target_name", target.Name)
	}
	return nil
}

// AcceptRequest accepts a pending request from requesterID.
func (s *FriendService) AcceptRequest(ctx context.Context, userID, profileID, requesterID string) error {
	profile, err := s.profiles.GetProfile(ctx, userID, profileID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, _, err = s.store.UpdateFriendshipPair(ctx, profileID, requesterID, func(mine, theirs *domain.Friendship) error {
		if !mine.AcceptIncoming(requesterID, now) {
			return domainerrors.NotFound("no pending request from this profile")
		}
		theirs.ConfirmOutgoing(profileID, now)
		return nil
	})
	if err != nil {
		return err
	}

	s.store.Emit(sse.NewFriendAcceptedEvent(requesterID, profileID, profile.Name))

	if s.logger != nil {
		s.logger.Info("friend request accepted", "by", profileID, "from", requesterID)
	}
	return nil
}

// DeclineRequest drops a pending request from requesterID. The requester
// is not notified.
func (s *FriendService) DeclineRequest(ctx context.Context, userID, profileID, requesterID string) error {
	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return err
	}

	_, _, err := s.store.UpdateFriendshipPair(ctx, profileID, requesterID, func(mine, theirs *domain.Friendship) error {
		if !mine.DeclineIncoming(requesterID) {
			return domainerrors.NotFound("no pending request from this profile")
		}
		theirs.CancelOutgoing(profileID)
		return nil
	})
	return err
}

// CancelRequest withdraws a request the acting profile sent earlier.
func (s *FriendService) CancelRequest(ctx context.Context, userID, profileID, targetID string) error {
	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return err
	}

	_, _, err := s.store.UpdateFriendshipPair(ctx, profileID, targetID, func(mine, theirs *domain.Friendship) error {
		if !mine.CancelOutgoing(targetID) {
			return domainerrors.NotFound("no pending request to this profile")
		}
		theirs.DeclineIncoming(profileID)
		return nil
	})
	return err
}

// RemoveFriend ends a friendship on both sides and deletes the shared
// conversation.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, profileID, friendID string) error {
	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return err
	}

	_, _, err := s.store.UpdateFriendshipPair(ctx, profileID, friendID, func(mine, theirs *domain.Friendship) error {
		if !mine.RemoveFriend(friendID) {
			return domainerrors.NotFound("not friends with this profile")
		}
		theirs.RemoveFriend(profileID)
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.store.DeleteConversation(ctx, domain.ConversationID(profileID, friendID)); err != nil {
		s.logger.Error("delete conversation after unfriend", "error", err,
			"profile_id", profileID, "friend_id", friendID)
	}

	if s.logger != nil {
		s.logger.Info("friend removed", "profile_id", profileID, "friend_id", friendID)
	}
	return nil
}

// DismissAccepted clears an acceptance notification. Single-sided; the
// other profile's document is untouched.
func (s *FriendService) DismissAccepted(ctx context.Context, userID, profileID, friendID string) error {
	if _, err := s.profiles.GetProfile(ctx, userID, profileID); err != nil {
		return err
	}

	friendship, err := s.store.GetFriendship(ctx, profileID)
	if err != nil {
		return err
	}
	if !friendship.DismissAccepted(friendID) {
		return domainerrors.NotFound("no acceptance notification from this profile")
	}
	return s.store.SaveFriendship(ctx, friendship)
}

// resolve turns a profile-id map into entries with loaded profiles,
// skipping ids whose profile has been deleted since.
func (s *FriendService) resolve(ctx context.Context, ids map[string]time.Time) ([]FriendEntry, error) {
	entries := make([]FriendEntry, 0, len(ids))
	for id, since := range ids {
		profile, err := s.profiles.GetProfilePublic(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrProfileNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, FriendEntry{Profile: profile, Since: since})
	}
	return entries, nil
}

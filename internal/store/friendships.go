package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/familes/familes-server/internal/domain"
)

// One friendship document per profile, keyed friend:<profileID>. Every
// social operation touches exactly two documents; SaveFriendshipPair
// commits both sides together so the graph stays symmetric.
const friendPrefix = "friend:"

func friendKey(profileID string) []byte {
	return []byte(friendPrefix + profileID)
}

// GetFriendship returns a profile's friendship document, creating an
// empty one in memory if none is stored yet. Profiles start with no
// document; it materializes on the first social interaction.
func (s *Store) GetFriendship(ctx context.Context, profileID string) (*domain.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var friendship domain.Friendship
	if err := s.get(friendKey(profileID), &friendship); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.NewFriendship(profileID), nil
		}
		return nil, fmt.Errorf("get friendship: %w", err)
	}
	return &friendship, nil
}

// SaveFriendship persists one side's friendship document.
func (s *Store) SaveFriendship(ctx context.Context, friendship *domain.Friendship) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	friendship.Touch()
	return s.set(friendKey(friendship.ID), friendship)
}

// UpdateFriendshipPair reads both profiles' friendship documents, applies
// mutate and commits both in one transaction. Retried on conflict, so
// mutate must be idempotent (the domain operations are).
func (s *Store) UpdateFriendshipPair(ctx context.Context, profileID, otherID string, mutate func(mine, theirs *domain.Friendship) error) (*domain.Friendship, *domain.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	mineKey := friendKey(profileID)
	theirsKey := friendKey(otherID)

	var mine, theirs *domain.Friendship

	for attempt := 0; attempt < txnRetries; attempt++ {
		err := s.db.Update(func(txn *badger.Txn) error {
			var err error
			mine, err = getFriendshipTxn(txn, profileID)
			if err != nil {
				return err
			}
			theirs, err = getFriendshipTxn(txn, otherID)
			if err != nil {
				return err
			}

			if err := mutate(mine, theirs); err != nil {
				return err
			}

			mine.Touch()
			theirs.Touch()

			if err := txnSet(txn, mineKey, mine); err != nil {
				return err
			}
			return txnSet(txn, theirsKey, theirs)
		})

		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return mine, theirs, nil
	}

	return nil, nil, fmt.Errorf("friendship update %s/%s: %w", profileID, otherID, badger.ErrConflict)
}

// DeleteFriendship removes a profile's friendship document. Part of the
// profile-deletion cascade; the service layer detaches the other sides
// first.
func (s *Store) DeleteFriendship(ctx context.Context, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete(friendKey(profileID))
}

func getFriendshipTxn(txn *badger.Txn, profileID string) (*domain.Friendship, error) {
	var friendship domain.Friendship
	if err := txnGet(txn, friendKey(profileID), &friendship); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.NewFriendship(profileID), nil
		}
		return nil, err
	}
	return &friendship, nil
}

package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/sse"
)

const (
	profilePrefix       = "profile:"
	profileByUserPrefix = "idx:profiles:user:" // <userID>:<profileID> -> empty
	snapshotPrefix      = "snapshot:"          // global leaderboard directory
)

// txnRetries bounds optimistic-concurrency retries on read-modify-write
// transactions. Badger aborts the loser of a conflicting pair; the merge
// functions applied here are idempotent, so re-running is safe.
const txnRetries = 5

// CreateProfile creates a new profile and its user-index entry.
func (s *Store) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(profilePrefix + profile.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check profile exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	indexKey := []byte(profileByUserPrefix + profile.UserID + ":" + profile.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(indexKey, []byte{})
	})
	if err != nil {
		return err
	}

	s.indexProfile(ctx, profile)
	return nil
}

// GetProfile retrieves a profile by ID.
// Returns ErrProfileNotFound if no profile exists.
func (s *Store) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var profile domain.Profile
	if err := s.get([]byte(profilePrefix+id), &profile); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if profile.IsDeleted() {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

// SaveProfile overwrites an existing profile.
func (s *Store) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.set([]byte(profilePrefix+profile.ID), profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	s.indexProfile(ctx, profile)
	return nil
}

// UpdateProfile applies mutate to the stored profile inside a transaction
// and writes the result back. Retried on commit conflict, so mutate must
// be idempotent and side-effect free (the leagues-array append is).
func (s *Store) UpdateProfile(ctx context.Context, id string, mutate func(*domain.Profile) error) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(profilePrefix + id)
	var updated *domain.Profile

	for attempt := 0; attempt < txnRetries; attempt++ {
		err := s.db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrProfileNotFound
			}
			if err != nil {
				return fmt.Errorf("get profile: %w", err)
			}

			var profile domain.Profile
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &profile)
			}); err != nil {
				return fmt.Errorf("unmarshal profile: %w", err)
			}

			if profile.IsDeleted() {
				return ErrProfileNotFound
			}

			if err := mutate(&profile); err != nil {
				return err
			}

			data, err := json.Marshal(&profile)
			if err != nil {
				return fmt.Errorf("marshal profile: %w", err)
			}
			if err := txn.Set(key, data); err != nil {
				return err
			}

			updated = &profile
			return nil
		})

		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.indexProfile(ctx, updated)
		return updated, nil
	}

	return nil, fmt.Errorf("update profile %s: %w", id, badger.ErrConflict)
}

// ListUserProfiles returns all profiles owned by an account.
func (s *Store) ListUserProfiles(ctx context.Context, userID string) ([]*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(profileByUserPrefix + userID + ":")
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, key[len(prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user profiles: %w", err)
	}

	profiles := make([]*domain.Profile, 0, len(ids))
	for _, id := range ids {
		profile, err := s.GetProfile(ctx, id)
		if errors.Is(err, ErrProfileNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// ListAllProfiles scans the whole profile keyspace. Used by the startup
// search reindex; request paths go through the user index instead.
func (s *Store) ListAllProfiles(ctx context.Context) ([]*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(profilePrefix)
	var profiles []*domain.Profile

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var profile domain.Profile
				if unmarshalErr := json.Unmarshal(val, &profile); unmarshalErr != nil {
					return nil //nolint:nilerr // skip malformed profiles
				}
				if profile.IsDeleted() {
					return nil
				}
				profiles = append(profiles, &profile)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all profiles: %w", err)
	}

	return profiles, nil
}

// DeleteProfile removes a profile, its user-index entry, its global
// snapshot and its search index entry. Books, history, friendships and
// league membership cascade at the service layer, which knows the fan-out.
func (s *Store) DeleteProfile(ctx context.Context, profile *domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(profilePrefix + profile.ID)); err != nil {
			return err
		}
		if err := txn.Delete([]byte(profileByUserPrefix + profile.UserID + ":" + profile.ID)); err != nil {
			return err
		}
		return txn.Delete([]byte(snapshotPrefix + profile.ID))
	})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	if s.profileIndexer != nil {
		if err := s.profileIndexer.DeleteProfile(ctx, profile.ID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove profile from search index", "profile_id", profile.ID, "error", err)
		}
	}
	return nil
}

// SaveSnapshot pushes a profile's denormalized record into the global
// leaderboard directory.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot domain.LeaderboardSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.set([]byte(snapshotPrefix+snapshot.ProfileID), snapshot); err != nil {
		return err
	}

	if s.eventEmitter != nil {
		s.eventEmitter.Emit(sse.NewLeaderboardUpdatedEvent("", snapshot.ProfileID))
	}
	return nil
}

// GetSnapshot reads one profile's global snapshot.
func (s *Store) GetSnapshot(ctx context.Context, profileID string) (*domain.LeaderboardSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snapshot domain.LeaderboardSnapshot
	if err := s.get([]byte(snapshotPrefix+profileID), &snapshot); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snapshot, nil
}

// ListSnapshots returns the whole global leaderboard directory.
func (s *Store) ListSnapshots(ctx context.Context) ([]domain.LeaderboardSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(snapshotPrefix)
	var snapshots []domain.LeaderboardSnapshot

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var snapshot domain.LeaderboardSnapshot
				if unmarshalErr := json.Unmarshal(val, &snapshot); unmarshalErr != nil {
					// Skip malformed snapshots
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				snapshots = append(snapshots, snapshot)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return snapshots, nil
}

// indexProfile mirrors a profile write into the search index. Index
// failures are logged, not fatal; search lags rather than blocking writes.
func (s *Store) indexProfile(ctx context.Context, profile *domain.Profile) {
	if s.profileIndexer == nil {
		return
	}
	if err := s.profileIndexer.IndexProfile(ctx, profile); err != nil && s.logger != nil {
		s.logger.Warn("failed to index profile", "profile_id", profile.ID, "error", err)
	}
}

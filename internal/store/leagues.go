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

// Per-league leaderboard entries live under lboard:<leagueID>:<profileID>
// so one prefix scan yields a league's board.
const leagueBoardPrefix = "lboard:"

const leaguePrefix = "league:"

func leagueBoardKey(leagueID, profileID string) []byte {
	return []byte(leagueBoardPrefix + leagueID + ":" + profileID)
}

// CreateLeague persists a new league. The join-code index enforces code
// uniqueness; the service layer retries generation on collision.
func (s *Store) CreateLeague(ctx context.Context, league *domain.League) error {
	if err := s.Leagues.Create(ctx, league.ID, league); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("create league: %w", err)
	}
	return nil
}

// GetLeague retrieves a league by ID.
func (s *Store) GetLeague(ctx context.Context, id string) (*domain.League, error) {
	league, err := s.Leagues.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("get league: %w", err)
	}
	return league, nil
}

// GetLeagueByCode resolves a join code to its league.
func (s *Store) GetLeagueByCode(ctx context.Context, code string) (*domain.League, error) {
	league, err := s.Leagues.GetByIndex(ctx, "code", code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("get league by code: %w", err)
	}
	return league, nil
}

// JoinCodeExists reports whether a join code is already taken.
func (s *Store) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	return s.Leagues.ExistsByIndex(ctx, "code", code)
}

// SaveLeague writes back an existing league.
func (s *Store) SaveLeague(ctx context.Context, league *domain.League) error {
	if err := s.Leagues.Update(ctx, league.ID, league); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrLeagueNotFound
		}
		return fmt.Errorf("save league: %w", err)
	}
	return nil
}

// DeleteLeague removes a league, its code index and its leaderboard
// entries. Member profiles are detached by the service layer, which has
// the member list.
func (s *Store) DeleteLeague(ctx context.Context, id string) error {
	if err := s.Leagues.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete league: %w", err)
	}
	return s.deletePrefix([]byte(leagueBoardPrefix + id + ":"))
}

// JoinLeagueTx adds a profile to a league, updating both the league's
// member list and the profile's league list in one transaction so the
// two documents cannot diverge. Idempotent. Retried on commit conflict.
func (s *Store) JoinLeagueTx(ctx context.Context, leagueID, profileID string) (*domain.League, *domain.Profile, error) {
	return s.membershipTx(ctx, leagueID, profileID, func(league *domain.League, profile *domain.Profile) {
		league.AddMember(profileID)
		profile.JoinLeague(leagueID)
	})
}

// LeaveLeagueTx removes a profile from a league, updating both documents
// in one transaction. Idempotent.
func (s *Store) LeaveLeagueTx(ctx context.Context, leagueID, profileID string) (*domain.League, *domain.Profile, error) {
	league, profile, err := s.membershipTx(ctx, leagueID, profileID, func(league *domain.League, profile *domain.Profile) {
		league.RemoveMember(profileID)
		profile.LeaveLeague(leagueID)
	})
	if err != nil {
		return nil, nil, err
	}

	if delErr := s.delete(leagueBoardKey(leagueID, profileID)); delErr != nil {
		return nil, nil, fmt.Errorf("delete leaderboard entry: %w", delErr)
	}
	return league, profile, nil
}

// membershipTx applies a symmetric mutation to a league and a profile
// atomically. The mutation must be idempotent; badger may abort and the
// loop re-runs it on a fresh read.
func (s *Store) membershipTx(ctx context.Context, leagueID, profileID string, mutate func(*domain.League, *domain.Profile)) (*domain.League, *domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	leagueKey := []byte(leaguePrefix + leagueID)
	profileKey := []byte(profilePrefix + profileID)

	var league domain.League
	var profile domain.Profile

	for attempt := 0; attempt < txnRetries; attempt++ {
		err := s.db.Update(func(txn *badger.Txn) error {
			if err := txnGet(txn, leagueKey, &league); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return ErrLeagueNotFound
				}
				return err
			}
			if err := txnGet(txn, profileKey, &profile); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return ErrProfileNotFound
				}
				return err
			}
			if league.IsDeleted() {
				return ErrLeagueNotFound
			}
			if profile.IsDeleted() {
				return ErrProfileNotFound
			}

			mutate(&league, &profile)
			league.Touch()
			profile.Touch()

			if err := txnSet(txn, leagueKey, &league); err != nil {
				return err
			}
			return txnSet(txn, profileKey, &profile)
		})

		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		s.indexProfile(ctx, &profile)
		return &league, &profile, nil
	}

	return nil, nil, fmt.Errorf("league membership %s/%s: %w", leagueID, profileID, badger.ErrConflict)
}

// SaveLeagueBoardEntry writes one profile's denormalized record onto a
// league board.
func (s *Store) SaveLeagueBoardEntry(ctx context.Context, entry domain.LeagueLeaderboardEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.set(leagueBoardKey(entry.LeagueID, entry.ProfileID), entry); err != nil {
		return err
	}

	if s.eventEmitter != nil {
		s.eventEmitter.Emit(sse.NewLeaderboardUpdatedEvent(entry.LeagueID, entry.ProfileID))
	}
	return nil
}

// ListLeagueBoard returns a league's leaderboard entries, unranked.
func (s *Store) ListLeagueBoard(ctx context.Context, leagueID string) ([]domain.LeagueLeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(leagueBoardPrefix + leagueID + ":")
	var entries []domain.LeagueLeaderboardEntry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry domain.LeagueLeaderboardEntry
				if unmarshalErr := json.Unmarshal(val, &entry); unmarshalErr != nil {
					return nil //nolint:nilerr // skip malformed entries
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list league board: %w", err)
	}

	return entries, nil
}

// DeleteLeagueBoardEntry removes one profile's record from a league
// board. Used by the profile-deletion cascade.
func (s *Store) DeleteLeagueBoardEntry(ctx context.Context, leagueID, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete(leagueBoardKey(leagueID, profileID))
}

// txnGet reads and unmarshals a key inside an open transaction.
func txnGet(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// txnSet marshals and writes a key inside an open transaction.
func txnSet(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return txn.Set(key, data)
}

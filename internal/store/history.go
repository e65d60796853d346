package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/familes/familes-server/internal/domain"
)

// History entries are append-only. Keys are hist:<profileID>:<entryID>;
// entry IDs are random, so chronological order comes from Timestamp, not
// key order.
const historyPrefix = "hist:"

func historyKey(profileID, entryID string) []byte {
	return []byte(historyPrefix + profileID + ":" + entryID)
}

// AppendHistory records an immutable reading event. Entries are never
// updated or individually deleted; corrections append new entries.
func (s *Store) AppendHistory(ctx context.Context, entry *domain.ReadingHistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(historyKey(entry.ProfileID, entry.ID), entry)
}

// ListProfileHistory returns a profile's reading history, newest first.
func (s *Store) ListProfileHistory(ctx context.Context, profileID string) ([]domain.ReadingHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(historyPrefix + profileID + ":")
	var entries []domain.ReadingHistoryEntry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry domain.ReadingHistoryEntry
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
		return nil, fmt.Errorf("list profile history: %w", err)
	}

	slices.SortFunc(entries, func(a, b domain.ReadingHistoryEntry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return entries, nil
}

// DeleteProfileHistory drops a profile's entire history. Only the
// profile-deletion cascade calls this; normal operation never removes
// history.
func (s *Store) DeleteProfileHistory(ctx context.Context, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.deletePrefix([]byte(historyPrefix + profileID + ":"))
}

package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/normalize"
)

// EventEmitter is the interface for emitting SSE events.
// Store uses this to broadcast changes without depending on SSE implementation details.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// ProfileIndexer keeps the profile search index in sync with the store.
// Friend search queries it by folded display name.
type ProfileIndexer interface {
	IndexProfile(ctx context.Context, profile *domain.Profile) error
	DeleteProfile(ctx context.Context, profileID string) error
}

// NoopProfileIndexer is a no-op implementation for testing.
type NoopProfileIndexer struct{}

// IndexProfile is a no-op.
func (NoopProfileIndexer) IndexProfile(context.Context, *domain.Profile) error { return nil }

// DeleteProfile is a no-op.
func (NoopProfileIndexer) DeleteProfile(context.Context, string) error { return nil }

// NewNoopProfileIndexer creates a new no-op profile indexer for testing.
func NewNoopProfileIndexer() ProfileIndexer {
	return NoopProfileIndexer{}
}

// Store wraps a Badger database instance. All FamiLes documents live in
// one keyspace, namespaced by prefix (user:, profile:, book:, hist:,
// league:, lboard:, snapshot:, friend:, msg:, session:).
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// SSE event emitter for broadcasting changes.
	eventEmitter EventEmitter

	// Search indexer for keeping profile search in sync with store changes.
	// Set via SetProfileIndexer after store creation to avoid circular dependencies.
	profileIndexer ProfileIndexer

	// Generic entities
	Users   *Entity[domain.User]
	Leagues *Entity[domain.League]
}

// New creates a new Store instance with the given database path and event emitter.
// The emitter is required and used to broadcast store changes via SSE.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:           db,
		logger:       logger,
		eventEmitter: emitter,
	}

	store.initUsers()
	store.initLeagues()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Emit broadcasts an event through the store's emitter. Services use
// this for events that need context the store does not have (XP earned,
// level-ups, friend names).
func (s *Store) Emit(event any) {
	if s.eventEmitter != nil {
		s.eventEmitter.Emit(event)
	}
}

// SetProfileIndexer sets the search indexer for keeping profile search in
// sync. Set after store creation to avoid circular dependencies (store
// needs to exist before the search service can be created).
func (s *Store) SetProfileIndexer(indexer ProfileIndexer) {
	s.profileIndexer = indexer
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// deletePrefix removes every key under a prefix. Used by cascade deletes.
func (s *Store) deletePrefix(prefix []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// initUsers initializes the Users entity on the store.
// Uses case-insensitive email indexing via normalize.Email transformation.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalize.Email(u.Email)}
			},
			normalize.Email, // Transform lookups to be case-insensitive
		)
}

// initLeagues initializes the Leagues entity on the store.
// The join-code index doubles as the uniqueness check code generation
// retries against.
func (s *Store) initLeagues() {
	s.Leagues = NewEntity[domain.League](s, "league:").
		WithIndex("code", func(l *domain.League) []string {
			return []string{l.JoinCode}
		})
}

package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/familes/familes-server/internal/domain"
)

// Book keys are compound (book:<profileID>:<bookID>) so one prefix scan
// yields a profile's whole shelf and a prefix delete cascades it.
const bookPrefix = "book:"

func bookKey(profileID, bookID string) []byte {
	return []byte(bookPrefix + profileID + ":" + bookID)
}

// CreateBook adds a book to a profile's shelf.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := bookKey(book.ProfileID, book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	return s.set(key, book)
}

// GetBook retrieves one book from a profile's shelf.
func (s *Store) GetBook(ctx context.Context, profileID, bookID string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var book domain.Book
	if err := s.get(bookKey(profileID, bookID), &book); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	if book.IsDeleted() {
		return nil, ErrBookNotFound
	}
	return &book, nil
}

// SaveBook writes back an existing book.
func (s *Store) SaveBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(bookKey(book.ProfileID, book.ID), book)
}

// DeleteBook removes a book from a profile's shelf. History entries that
// reference it stay; the reading record is immutable.
func (s *Store) DeleteBook(ctx context.Context, profileID, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := bookKey(profileID, bookID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if !exists {
		return ErrBookNotFound
	}

	if err := s.delete(key); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// ListProfileBooks returns a profile's shelf, skipping tombstones and
// malformed records.
func (s *Store) ListProfileBooks(ctx context.Context, profileID string) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(bookPrefix + profileID + ":")
	var books []*domain.Book

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if unmarshalErr := json.Unmarshal(val, &book); unmarshalErr != nil {
					return nil //nolint:nilerr // skip malformed books
				}
				if book.IsDeleted() {
					return nil
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profile books: %w", err)
	}

	return books, nil
}

// DeleteProfileBooks drops a profile's entire shelf. Part of the
// profile-deletion cascade.
func (s *Store) DeleteProfileBooks(ctx context.Context, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.deletePrefix([]byte(bookPrefix + profileID + ":"))
}

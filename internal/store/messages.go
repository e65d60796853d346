package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/familes/familes-server/internal/domain"
)

// Messages are keyed msg:<conversationID>:<messageID>. The conversation
// ID is canonical (smaller profile ID first) so both participants scan
// the same prefix.
const messagePrefix = "msg:"

func messageKey(conversationID, messageID string) []byte {
	return []byte(messagePrefix + conversationID + ":" + messageID)
}

// AppendMessage persists a chat message.
func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(messageKey(msg.ConversationID, msg.ID), msg)
}

// ListConversation returns a conversation's messages, oldest first.
// limit <= 0 returns everything.
func (s *Store) ListConversation(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(messagePrefix + conversationID + ":")
	var messages []*domain.Message

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg domain.Message
				if unmarshalErr := json.Unmarshal(val, &msg); unmarshalErr != nil {
					return nil //nolint:nilerr // skip malformed messages
				}
				messages = append(messages, &msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}

	slices.SortFunc(messages, func(a, b *domain.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// MarkConversationRead marks every message addressed to readerID in the
// conversation as read. Returns the number of messages updated.
func (s *Store) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(messagePrefix + conversationID + ":")
	updated := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)

		var pending []*domain.Message
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg domain.Message
				if unmarshalErr := json.Unmarshal(val, &msg); unmarshalErr != nil {
					return nil //nolint:nilerr // skip malformed messages
				}
				if msg.RecipientID == readerID && msg.ReadAt == nil {
					pending = append(pending, &msg)
				}
				return nil
			})
			if err != nil {
				it.Close()
				return err
			}
		}
		it.Close()

		now := time.Now().UTC()
		for _, msg := range pending {
			msg.MarkRead(now)
			if err := txnSet(txn, messageKey(msg.ConversationID, msg.ID), msg); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("mark conversation read: %w", err)
	}

	return updated, nil
}

// CountUnread returns how many messages addressed to readerID in the
// conversation are still unread. Drives the badge on the chat list.
func (s *Store) CountUnread(ctx context.Context, conversationID, readerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	prefix := []byte(messagePrefix + conversationID + ":")
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg domain.Message
				if unmarshalErr := json.Unmarshal(val, &msg); unmarshalErr != nil {
					return nil //nolint:nilerr // skip malformed messages
				}
				if msg.RecipientID == readerID && msg.ReadAt == nil {
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}

	return count, nil
}

// DeleteConversation drops a whole conversation. Part of the
// profile-deletion cascade.
func (s *Store) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.deletePrefix([]byte(messagePrefix + conversationID + ":"))
}

package domain

import "time"

// Message is one chat message in a one-to-one conversation between
// friends.
type Message struct {
	Syncable
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	RecipientID    string `json:"recipient_id"`
	Body           string `json:"body"`

	ReadAt *time.Time `json:"read_at,omitempty"`
}

// NewMessage creates an unread message in the conversation between sender
// and recipient.
func NewMessage(id, senderID, recipientID, body string) *Message {
	m := &Message{
		ConversationID: ConversationID(senderID, recipientID),
		SenderID:       senderID,
		RecipientID:    recipientID,
		Body:           body,
	}
	m.ID = id
	m.InitTimestamps()
	return m
}

// MarkRead stamps the message as read. Returns false if already read.
func (m *Message) MarkRead(at time.Time) bool {
	if m.ReadAt != nil {
		return false
	}
	m.ReadAt = &at
	m.Touch()
	return true
}

// ConversationID derives the canonical conversation key for a pair of
// profiles. The smaller id goes first, so both participants compute the
// same key.
func ConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

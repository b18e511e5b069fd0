package domain

import (
	"context"
	"strings"
	"time"
)

const TempIDPrefix = "temp-"

type Message struct {
	ID             string    `json:"id"             db:"id"`
	ConversationID string    `json:"conversationID" db:"conversation_id"`
	SenderID       string    `json:"senderID"       db:"sender_id"`
	Content        string    `json:"content"        db:"content"`
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
	Read           bool      `json:"read"           db:"read"`
	// display name of the sender, only populated client side
	From string `json:"from" db:"-"`
	// true while the message is an optimistic placeholder awaiting the remote write
	Pending bool `json:"-" db:"-"`
}

func (m *Message) IsPlaceholder() bool {
	return m.Pending || strings.HasPrefix(m.ID, TempIDPrefix)
}

// ConfirmedID is the ID the message is stored under once the send commits
func (m *Message) ConfirmedID() string {
	return strings.TrimPrefix(m.ID, TempIDPrefix)
}

type MessageRepository interface {
	// ListMessages returns the conversation's messages ordered by created_at ascending
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)
	// InsertMessage stores msg under its client generated ID & sets CreatedAt
	InsertMessage(ctx context.Context, msg *Message) error
	// BulkMarkRead marks unread messages in the conversation not sent by excludingSender as read
	BulkMarkRead(ctx context.Context, conversationID, excludingSender string) (int64, error)
}

const MaxMessageBytes = 5120

func ValidateMessageContent(content string, ev *ErrValidation) {
	ev.Evaluate(strings.TrimSpace(content) != "", "content", "must be provided")
	ev.Evaluate(len(content) <= MaxMessageBytes, "content", "must be a max of 5120 bytes (5KB) long")
}

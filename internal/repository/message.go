package repository

import (
	"context"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var _ domain.MessageRepository = (*MessageRepository)(nil)

type MessageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db}
}

func (r *MessageRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, created_at, read
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, id
		`
	msgs := make([]*domain.Message, 0)
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &msgs, query, conversationID); err != nil {
		return nil, translateErr(err)
	}
	return msgs, nil
}

func (r *MessageRepository) InsertMessage(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, created_at, read)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		`
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now().UTC()
	msg.Read = false
	args := []any{msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.CreatedAt}
	if _, err := r.db.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return translateErr(err)
	}
	return nil
}

func (r *MessageRepository) BulkMarkRead(ctx context.Context, conversationID, excludingSender string) (int64, error) {
	query := `
		UPDATE messages
		SET read = TRUE
		WHERE conversation_id = $1 AND read = FALSE AND sender_id <> $2
		`
	res, err := r.db.ext(ctx).ExecContext(ctx, query, conversationID, excludingSender)
	if err != nil {
		return 0, translateErr(err)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

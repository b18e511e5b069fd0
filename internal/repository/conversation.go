package repository

import (
	"context"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var _ domain.ConversationRepository = (*ConversationRepository)(nil)

type ConversationRepository struct {
	db *DB
}

func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) ListConversations(ctx context.Context, usrID string) ([]*domain.ConversationRow, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at, updated_at
		FROM conversations
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY updated_at DESC
		`
	convos := make([]*domain.ConversationRow, 0)
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &convos, query, usrID); err != nil {
		return nil, translateErr(err)
	}
	return convos, nil
}

func (r *ConversationRepository) FindConversation(ctx context.Context, userA, userB string) (*domain.ConversationRow, error) {
	// pair_key covers both orderings, the explicit predicates keep rows created before pair_key honest
	query := `
		SELECT id, user1_id, user2_id, created_at, updated_at
		FROM conversations
		WHERE pair_key = $1
		   OR (user1_id = $2 AND user2_id = $3)
		   OR (user1_id = $3 AND user2_id = $2)
		ORDER BY created_at
		LIMIT 1
		`
	var c domain.ConversationRow
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &c, query, domain.PairKey(userA, userB), userA, userB); err != nil {
		return nil, translateErr(err)
	}
	return &c, nil
}

func (r *ConversationRepository) InsertConversation(ctx context.Context, userA, userB string) (*domain.ConversationRow, error) {
	query := `
		INSERT INTO conversations (id, user1_id, user2_id, pair_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (pair_key) DO NOTHING
		`
	now := time.Now().UTC()
	if _, err := r.db.ext(ctx).ExecContext(ctx, query, uuid.NewString(), userA, userB, domain.PairKey(userA, userB), now); err != nil {
		return nil, translateErr(err)
	}
	// either ours or the one a concurrent writer got in first with
	return r.FindConversation(ctx, userA, userB)
}

func (r *ConversationRepository) TouchConversation(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE conversations
		SET updated_at = $1
		WHERE id = $2
		`
	res, err := r.db.ext(ctx).ExecContext(ctx, query, now.UTC(), id)
	if err != nil {
		return translateErr(err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

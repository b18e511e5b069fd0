package repository

import (
	"context"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var _ domain.PostRepository = (*PostRepository)(nil)

type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) ListPosts(ctx context.Context, f domain.Filter) ([]*domain.Post, error) {
	query := `
		SELECT id, user_id, content, category, catalog_number, created_at
		FROM posts
		WHERE ($1 = '' OR category = $1)
		ORDER BY created_at DESC
		LIMIT $2
		OFFSET $3
		`
	var category string
	if f.Filtered() {
		category = string(f.Category)
	}
	posts := make([]*domain.Post, 0)
	if err := sqlx.SelectContext(ctx, r.db.ext(ctx), &posts, query, category, f.Limit(), f.Offset()); err != nil {
		return nil, translateErr(err)
	}
	return posts, nil
}

func (r *PostRepository) InsertPost(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (id, user_id, content, category, catalog_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		`
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	args := []any{p.ID, p.UserID, p.Content, string(p.Category), p.CatalogNumber, p.CreatedAt.UTC()}
	_, err := r.db.ext(ctx).ExecContext(ctx, query, args...)
	return translateErr(err)
}

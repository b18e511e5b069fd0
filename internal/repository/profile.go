package repository

import (
	"context"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.ProfileRepository = (*ProfileRepository)(nil)

type ProfileRepository struct {
	db *DB
}

func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) LookupUsername(ctx context.Context, userID string) (string, error) {
	query := `
		SELECT username FROM profiles WHERE user_id = $1
		`
	var username string
	if err := r.db.ext(ctx).QueryRowxContext(ctx, query, userID).Scan(&username); err != nil {
		return "", translateErr(err)
	}
	return username, nil
}

func (r *ProfileRepository) LookupUsernames(ctx context.Context, userIDs ...string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	query, args, err := sqlx.In(`SELECT user_id, username FROM profiles WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	ext := r.db.ext(ctx)
	rows, err := ext.QueryxContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, username string
		if err = rows.Scan(&id, &username); err != nil {
			return nil, err
		}
		names[id] = username
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *ProfileRepository) GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	query := `
		SELECT user_id, username, email, created_at
		FROM profiles
		WHERE username = $1
		`
	var p domain.Profile
	if err := sqlx.GetContext(ctx, r.db.ext(ctx), &p, query, username); err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

func (r *ProfileRepository) InsertProfile(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, username, email, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		`
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ext(ctx).ExecContext(ctx, query, p.UserID, p.Username, p.Email, p.CreatedAt.UTC())
	return translateErr(err)
}

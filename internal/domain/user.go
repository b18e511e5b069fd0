package domain

import (
	"context"
	"time"
)

const (
	// SelfDisplayName is shown as the sender of messages the current user wrote
	SelfDisplayName    = "You"
	UnknownDisplayName = "Unknown"
)

// User is the opaque identity issued by the hosted auth provider
type User struct {
	ID       string `json:"id"       db:"user_id"`
	Username string `json:"username" db:"username"`
}

type Profile struct {
	UserID    string    `json:"userID"    db:"user_id"`
	Username  string    `json:"username"  db:"username"`
	Email     string    `json:"email"     db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// IdentityProvider returns the signed-in user, or nil with a nil error when nobody is signed in
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*User, error)
}

type ProfileRepository interface {
	LookupUsername(ctx context.Context, userID string) (string, error)
	LookupUsernames(ctx context.Context, userIDs ...string) (map[string]string, error)
	GetProfileByUsername(ctx context.Context, username string) (*Profile, error)
	InsertProfile(ctx context.Context, p *Profile) error
}

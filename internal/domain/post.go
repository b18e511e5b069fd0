package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

type Category string

const (
	CategorySeeking Category = "seeking"
	CategoryMissed  Category = "missed"
	CategoryInquiry Category = "inquiry"
	// CategoryAll is only valid as a filter
	CategoryAll Category = "all"

	AnonymousAuthor = "Anonymous Patron"
)

var Categories = []Category{CategorySeeking, CategoryMissed, CategoryInquiry}

func (c Category) Label() string {
	switch c {
	case CategorySeeking:
		return "Seeking"
	case CategoryMissed:
		return "Missed Connexion"
	case CategoryInquiry:
		return "General Inquiry"
	default:
		return "All"
	}
}

type Post struct {
	ID            string    `json:"id"            db:"id"`
	UserID        string    `json:"userID"        db:"user_id"`
	Content       string    `json:"content"       db:"content"`
	Category      Category  `json:"category"      db:"category"`
	CatalogNumber string    `json:"catalogNumber" db:"catalog_number"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
	// resolved client side
	Author    string `json:"author"    db:"-"`
	Responses int    `json:"responses" db:"-"`
}

type PostRepository interface {
	// ListPosts returns the posts newest first, CategoryAll or "" disables the category filter
	ListPosts(ctx context.Context, f Filter) ([]*Post, error)
	InsertPost(ctx context.Context, p *Post) error
}

// CatalogNumber builds the reference a post is catalogued under, e.g. REF-2026-4821
func CatalogNumber(now time.Time) string {
	ms := fmt.Sprint(now.UnixMilli())
	return fmt.Sprintf("REF-%d-%s", now.Year(), ms[len(ms)-4:])
}

func ValidateCategory(c Category, ev *ErrValidation) {
	ev.Evaluate(slices.Contains(Categories, c), "category", "must be one of seeking, missed or inquiry")
}

func ValidatePostContent(content string, ev *ErrValidation) {
	ev.Evaluate(strings.TrimSpace(content) != "", "content", "must be provided")
	ev.Evaluate(len(content) <= MaxMessageBytes, "content", "must be a max of 5120 bytes (5KB) long")
}

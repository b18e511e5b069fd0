package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	gosync "sync"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/M0hammadUsman/campusboard/internal/sync"
)

const boardPageSize = 50

type BoardStore interface {
	domain.PostRepository
	domain.ProfileRepository
}

// TXRunner runs fn in a single transaction, store calls made with the ctx passed to fn join it
type TXRunner interface {
	RunInTX(ctx context.Context, fn func(ctx context.Context) error) error
}

type PostsBroadcaster = sync.Broadcaster[[]*domain.Post]

// Board mirrors the public posts listing for the selected category
type Board struct {
	store    BoardStore
	tx       TXRunner
	identity domain.IdentityProvider
	Posts    *PostsBroadcaster

	mu       gosync.Mutex
	category domain.Category
	err      error
}

func NewBoard(store BoardStore, tx TXRunner, identity domain.IdentityProvider) *Board {
	return &Board{
		store:    store,
		tx:       tx,
		identity: identity,
		Posts:    sync.NewBroadcaster[[]*domain.Post](),
		category: domain.CategoryAll,
	}
}

// Refresh lists the newest posts of category & publishes them, CategoryAll lists every category.
// A failed read is kept in Err & the previous listing stays.
func (b *Board) Refresh(ctx context.Context, category domain.Category) {
	b.mu.Lock()
	b.category = category
	b.mu.Unlock()

	posts, err := b.fetch(ctx, category)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.category != category { // selection moved on while fetching
		return
	}
	b.err = err
	if err != nil {
		slog.Error("refreshing posts", "category", category, "err", err)
		return
	}
	b.Posts.Write(posts)
}

// Err returns the failure of the latest refresh, nil after a successful one
func (b *Board) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Board) Category() domain.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.category
}

func (b *Board) fetch(ctx context.Context, category domain.Category) ([]*domain.Post, error) {
	f := domain.Filter{Category: category, Page: 1, PageSize: boardPageSize}
	ev := domain.NewErrValidation()
	if domain.ValidateFilters(ev, &f); ev.HasErrors() {
		return nil, ev
	}
	posts, err := b.store.ListPosts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: listing posts: %w", domain.ErrRemoteRead, err)
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.UserID)
	}
	names, err := b.store.LookupUsernames(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("%w: looking up authors: %w", domain.ErrRemoteRead, err)
	}
	for _, p := range posts {
		p.Author = domain.AnonymousAuthor
		if name := names[p.UserID]; name != "" {
			p.Author = name
		}
	}
	return posts, nil
}

// CreatePost publishes content under category as the current user & refreshes the listing
func (b *Board) CreatePost(ctx context.Context, content string, category domain.Category) (*domain.Post, error) {
	usr, err := b.identity.CurrentUser(ctx)
	if err != nil || usr == nil {
		return nil, domain.ErrNotAuthenticated
	}
	content = strings.TrimSpace(content)
	ev := domain.NewErrValidation()
	domain.ValidateCategory(category, ev)
	if domain.ValidatePostContent(content, ev); ev.HasErrors() {
		return nil, ev
	}

	now := time.Now().UTC()
	p := &domain.Post{
		UserID:        usr.ID,
		Content:       content,
		Category:      category,
		CatalogNumber: domain.CatalogNumber(now),
		CreatedAt:     now,
	}
	err = b.tx.RunInTX(ctx, func(ctx context.Context) error {
		// author names resolve through profiles
		if err := b.store.InsertProfile(ctx, &domain.Profile{UserID: usr.ID, Username: usr.Username}); err != nil {
			return err
		}
		return b.store.InsertPost(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteWrite, err)
	}
	slog.Info("post created", "catalogNumber", p.CatalogNumber)
	p.Author = usr.Username
	b.Refresh(ctx, b.Category())
	return p, nil
}

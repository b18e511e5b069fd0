package client

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardRefreshResolvesAuthors(t *testing.T) {
	ctx := context.Background()
	store := setup(t)
	store.posts = []*domain.Post{
		{ID: "p1", UserID: "a", Content: "lost umbrella", Category: domain.CategorySeeking},
		{ID: "p2", UserID: "ghost", Content: "you smiled at me", Category: domain.CategoryMissed},
	}
	b := NewBoard(store, store, as("a", "alice"))

	b.Refresh(ctx, domain.CategoryAll)
	require.NoError(t, b.Err())
	posts := b.Posts.Get()
	require.Len(t, posts, 2)
	assert.Equal(t, "p2", posts[0].ID)
	assert.Equal(t, domain.AnonymousAuthor, posts[0].Author)
	assert.Equal(t, "alice", posts[1].Author)

	b.Refresh(ctx, domain.CategorySeeking)
	posts = b.Posts.Get()
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, domain.CategorySeeking, b.Category())
}

func TestBoardRefreshFailureKeepsListing(t *testing.T) {
	ctx := context.Background()
	store := setup(t)
	store.posts = []*domain.Post{{ID: "p1", UserID: "a", Category: domain.CategoryInquiry}}
	b := NewBoard(store, store, as("a", "alice"))
	b.Refresh(ctx, domain.CategoryAll)

	store.errList = errors.New("offline")
	b.Refresh(ctx, domain.CategoryAll)
	assert.ErrorIs(t, b.Err(), domain.ErrRemoteRead)
	assert.Len(t, b.Posts.Get(), 1)

	b.Refresh(ctx, domain.Category("bogus"))
	var ev *domain.ErrValidation
	assert.ErrorAs(t, b.Err(), &ev)
}

func TestBoardCreatePost(t *testing.T) {
	ctx := context.Background()
	store := setup(t)
	b := NewBoard(store, store, as("e", "erin"))

	p, err := b.CreatePost(ctx, "  who left a scarf in room 101? ", domain.CategoryInquiry)
	require.NoError(t, err)
	assert.Equal(t, "who left a scarf in room 101?", p.Content)
	assert.True(t, strings.HasPrefix(p.CatalogNumber, "REF-"))
	assert.Len(t, p.CatalogNumber, len("REF-2026-1234"))
	assert.Equal(t, "erin", p.Author)

	// the author got a profile so the listing resolves the name
	profile, err := store.GetProfileByUsername(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, "e", profile.UserID)
	posts := b.Posts.Get()
	require.Len(t, posts, 1)
	assert.Equal(t, "erin", posts[0].Author)
}

func TestBoardCreatePostErrors(t *testing.T) {
	ctx := context.Background()
	store := setup(t)

	_, err := NewBoard(store, store, &identity{}).CreatePost(ctx, "hello", domain.CategorySeeking)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	b := NewBoard(store, store, as("a", "alice"))
	_, err = b.CreatePost(ctx, "   ", domain.CategoryAll)
	var ev *domain.ErrValidation
	require.ErrorAs(t, err, &ev)
	assert.Contains(t, ev.Errors, "content")
	assert.Contains(t, ev.Errors, "category")

	store.errInsertPost = errors.New("insert failed")
	_, err = b.CreatePost(ctx, "hello", domain.CategorySeeking)
	assert.ErrorIs(t, err, domain.ErrRemoteWrite)
}

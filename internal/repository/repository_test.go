package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bootstrap(t *testing.T) *Repository {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "campusboard.db") + "?_foreign_keys=on"
	db, err := OpenDB(Options{Driver: DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.RunMigrations(context.Background()))
	return New(db)
}

func TestOpenDBUnsupportedDriver(t *testing.T) {
	_, err := OpenDB(Options{Driver: "mysql"})
	require.Error(t, err)
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	r := bootstrap(t)
	require.NoError(t, r.RunMigrations(context.Background()))
}

func TestInstallChangeNotifyNeedsPostgres(t *testing.T) {
	r := bootstrap(t)
	require.Error(t, r.InstallChangeNotify(context.Background(), "messages_changes"))
}

func TestInsertConversationIsIdempotentPerPair(t *testing.T) {
	r := bootstrap(t)
	ctx := context.Background()

	_, err := r.FindConversation(ctx, "alice", "bob")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)

	c1, err := r.InsertConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	// reversed ordering converges on the same row
	c2, err := r.InsertConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)

	found, err := r.FindConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, c1.ID, found.ID)
	assert.Equal(t, "alice", found.User1ID)
}

func TestInsertConversationConcurrent(t *testing.T) {
	r := bootstrap(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := r.InsertConversation(ctx, "alice", "bob")
			if assert.NoError(t, err) {
				ids[i] = c.ID
			}
		}()
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	convos, err := r.ListConversations(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, convos, 1)
}

func TestListConversationsOrderedByUpdatedAt(t *testing.T) {
	r := bootstrap(t)
	ctx := context.Background()

	older, err := r.InsertConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	newer, err := r.InsertConversation(ctx, "carol", "alice")
	require.NoError(t, err)
	_, err = r.InsertConversation(ctx, "carol", "bob")
	require.NoError(t, err)

	require.NoError(t, r.TouchConversation(ctx, older.ID, time.Now().Add(time.Hour)))

	convos, err := r.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, convos, 2)
	assert.Equal(t, older.ID, convos[0].ID)
	assert.Equal(t, newer.ID, convos[1].ID)

	require.ErrorIs(t, r.TouchConversation(ctx, "missing", time.Now()), domain.ErrRecordNotFound)
}

func TestMessagesOrderAndBulkMarkRead(t *testing.T) {
	r := bootstrap(t)
	ctx := context.Background()

	c, err := r.InsertConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	for _, m := range []struct{ sender, body string }{{"alice", "one"}, {"bob", "two"}, {"bob", "three"}} {
		err = r.InsertMessage(ctx, &domain.Message{ConversationID: c.ID, SenderID: m.sender, Content: m.body})
		require.NoError(t, err)
	}

	msgs, err := r.ListMessages(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content})
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
	}

	n, err := r.BulkMarkRead(ctx, c.ID, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	msgs, err = r.ListMessages(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, msgs[0].Read, "own messages are never marked read")
	assert.True(t, msgs[1].Read)
	assert.True(t, msgs[2].Read)

	n, err = r.BulkMarkRead(ctx, c.ID, "alice")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertMessageUnknownConversation(t *testing.T) {
	r := bootstrap(t)
	err := r.InsertMessage(context.Background(), &domain.Message{ConversationID: "missing", SenderID: "alice", Content: "hello"})
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestInsertMessageKeepsClientID(t *testing.T) {
	r := bootstrap(t)
	ctx := context.Background()
	c, err := r.InsertConversation(ctx, "alice", "bob")
	require.NoError(t, err)

	id := uuid.NewString()
	msg := &domain.Message{ID: id, ConversationID: c.ID, SenderID: "alice", Content: "hello"}
	require.NoError(t, r.InsertMessage(ctx, msg))
	assert.False(t, msg.CreatedAt.IsZero())

	msgs, err := r.ListMessages(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)

	// the same id twice is a conflict, not a second row
	err = r.InsertMessage(ctx, &domain.Message{ID: id, ConversationID: c.ID, SenderID: "alice", Content: "again"})
	require.ErrorIs(t, err, domain.ErrDuplicateRecord)
}

func TestProfilesLookup(t *testing.T) {
	r := bootstrap(t)
	ctx := context.Background()

	require.NoError(t, r.InsertProfile(ctx, &domain.Profile{UserID: "u1", Username: "owl"}))
	require.NoError(t, r.InsertProfile(ctx, &domain.Profile{UserID: "u2", Username: "fox"}))
	// duplicates are ignored
	require.NoError(t, r.InsertProfile(ctx, &domain.Profile{UserID: "u1", Username: "owl"}))

	name, err := r.LookupUsername(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "owl", name)

	_, err = r.LookupUsername(ctx, "nobody")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)

	names, err := r.LookupUsernames(ctx, "u1", "u2", "nobody")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "owl", "u2": "fox"}, names)

	names, err = r.LookupUsernames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	p, err := r.GetProfileByUsername(ctx, "fox")
	require.NoError(t, err)
	assert.Equal(t, "u2", p.UserID)
}

func TestPostsListing(t *testing.T) {
	r := bootstrap(t)
	ctx := context.Background()
	base := time.Now().UTC()

	posts := []*domain.Post{
		{UserID: "u1", Content: "lost a scarf", Category: domain.CategorySeeking, CatalogNumber: "REF-1", CreatedAt: base},
		{UserID: "u2", Content: "you in the red coat", Category: domain.CategoryMissed, CatalogNumber: "REF-2", CreatedAt: base.Add(time.Second)},
		{UserID: "u1", Content: "quiet floor hours?", Category: domain.CategoryInquiry, CatalogNumber: "REF-3", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, p := range posts {
		require.NoError(t, r.InsertPost(ctx, p))
		assert.NotEmpty(t, p.ID)
	}

	all, err := r.ListPosts(ctx, domain.Filter{Category: domain.CategoryAll, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "REF-3", all[0].CatalogNumber, "newest first")

	missed, err := r.ListPosts(ctx, domain.Filter{Category: domain.CategoryMissed, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, missed, 1)
	assert.Equal(t, domain.CategoryMissed, missed[0].Category)
}

func TestRunInTXRollsBack(t *testing.T) {
	r := bootstrap(t)
	ctx := context.Background()

	err := r.RunInTX(ctx, func(ctx context.Context) error {
		if err := r.InsertProfile(ctx, &domain.Profile{UserID: "u1", Username: "owl"}); err != nil {
			return err
		}
		return domain.ErrRemoteWrite
	})
	require.ErrorIs(t, err, domain.ErrRemoteWrite)

	_, err = r.LookupUsername(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
}

package client

import (
	"context"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/M0hammadUsman/campusboard/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientNotifiesAndMarksReadOnOpen(t *testing.T) {
	ctx := context.Background()
	store := setup(t)
	id := store.seedMessage("a", "b", "hi bob")

	c := New(store, store, keyring.NewArrayKeyring(nil), WithReadConfirmDelay(10*time.Millisecond))
	trig := make(chanTrigger)
	c.Start(trig)
	t.Cleanup(c.Close)

	_, err := c.SignIn(ctx, "bob")
	require.NoError(t, err)

	var n notify.Notification
	select {
	case n = <-c.Deriver.Events():
	case <-time.After(time.Second):
		t.Fatal("no notification for the unread conversation")
	}
	assert.Equal(t, id, n.ConversationID)
	assert.Equal(t, "alice", n.Sender)
	assert.True(t, c.Deriver.HasUnread())

	require.NoError(t, c.Deriver.SetView(ctx, notify.ViewMessages))
	assert.False(t, c.Sync.Snapshot().Get(id).Unread)
	require.Eventually(t, func() bool { return !c.Deriver.HasUnread() }, time.Second, 5*time.Millisecond)
}

func TestClientSignOutClearsInbox(t *testing.T) {
	ctx := context.Background()
	store := setup(t)
	store.seedMessage("a", "b", "hi bob")

	c := New(store, store, keyring.NewArrayKeyring(nil))
	c.Start(make(chanTrigger))
	t.Cleanup(c.Close)

	_, err := c.SignIn(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, c.Sync.Snapshot().Conversations, 1)

	require.NoError(t, c.SignOut(ctx))
	assert.Empty(t, c.Sync.Snapshot().Conversations)
	require.Eventually(t, func() bool { return !c.Deriver.HasUnread() }, time.Second, 5*time.Millisecond)
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKeyIsUnordered(t *testing.T) {
	assert.Equal(t, PairKey("a", "b"), PairKey("b", "a"))
	assert.Equal(t, "a:b", PairKey("b", "a"))
}

func TestConversationDerive(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := &Conversation{ConversationRow: ConversationRow{ID: "c1", User1ID: "me", User2ID: "them", CreatedAt: created}}

	c.Derive("me")
	assert.False(t, c.Unread)
	assert.Equal(t, "", c.LastMessage)
	assert.Equal(t, created, c.Timestamp)

	later := created.Add(time.Minute)
	c.Messages = []*Message{
		{ID: "m1", SenderID: "me", Content: "hi", CreatedAt: created},
		{ID: "m2", SenderID: "them", Content: "hey", CreatedAt: later},
	}
	c.Derive("me")
	assert.True(t, c.Unread)
	assert.Equal(t, "hey", c.LastMessage)
	assert.Equal(t, later, c.Timestamp)

	// unread messages the current user sent never count
	c.Messages[1].Read = true
	c.Derive("me")
	assert.False(t, c.Unread)
}

func TestInboxDiffers(t *testing.T) {
	ts := time.Now()
	mk := func(unread bool, n int) *Inbox {
		c := &Conversation{ConversationRow: ConversationRow{ID: "c1"}, Unread: unread, Timestamp: ts}
		for range n {
			c.Messages = append(c.Messages, &Message{})
		}
		return &Inbox{UserID: "me", Conversations: []*Conversation{c}}
	}
	assert.False(t, mk(true, 2).Differs(mk(true, 2)))
	assert.True(t, mk(true, 2).Differs(mk(false, 2)))
	assert.True(t, mk(true, 2).Differs(mk(true, 3)))
	assert.True(t, mk(true, 2).Differs(&Inbox{UserID: "me"}))
	assert.True(t, (*Inbox)(nil).Differs(mk(true, 1)))
	assert.False(t, (*Inbox)(nil).Differs(nil))
}

func TestCatalogNumber(t *testing.T) {
	now := time.UnixMilli(1760000001234)
	assert.Equal(t, "REF-"+now.Format("2006")+"-1234", CatalogNumber(now))
}

func TestValidation(t *testing.T) {
	ev := NewErrValidation()
	ValidateCategory("nope", ev)
	ValidatePostContent("   ", ev)
	require.True(t, ev.HasErrors())
	assert.Contains(t, ev.Errors, "category")
	assert.Contains(t, ev.Errors, "content")

	ev = NewErrValidation()
	ValidateCategory(CategoryMissed, ev)
	ValidateMessageContent("hello", ev)
	assert.False(t, ev.HasErrors())
}

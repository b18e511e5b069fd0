package domain

import (
	"context"
	"time"
)

// ConversationRow is a conversation as the relational store holds it
type ConversationRow struct {
	ID        string    `json:"id"        db:"id"`
	User1ID   string    `json:"user1ID"   db:"user1_id"`
	User2ID   string    `json:"user2ID"   db:"user2_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OtherParticipant returns whichever participant is not usrID
func (c *ConversationRow) OtherParticipant(usrID string) string {
	if c.User1ID == usrID {
		return c.User2ID
	}
	return c.User1ID
}

// Conversation is a ConversationRow enriched with the fields the views render
type Conversation struct {
	ConversationRow
	Participant   string     `json:"participant"`
	ParticipantID string     `json:"participantID"`
	LastMessage   string     `json:"lastMessage"`
	Timestamp     time.Time  `json:"timestamp"`
	Unread        bool       `json:"unread"`
	Messages      []*Message `json:"messages"`
}

// HasUnreadFor reports whether any message not sent by usrID is still unread
func (c *Conversation) HasUnreadFor(usrID string) bool {
	for _, m := range c.Messages {
		if !m.Read && m.SenderID != usrID {
			return true
		}
	}
	return false
}

// Derive recomputes the last message preview, timestamp & unread flag from Messages
func (c *Conversation) Derive(usrID string) {
	c.Unread = c.HasUnreadFor(usrID)
	if n := len(c.Messages); n > 0 {
		last := c.Messages[n-1]
		c.LastMessage = last.Content
		c.Timestamp = last.CreatedAt
		return
	}
	c.LastMessage = ""
	c.Timestamp = c.CreatedAt
}

// Clone copies the conversation and its message slice, messages are copied as well
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Messages = make([]*Message, len(c.Messages))
	for i, m := range c.Messages {
		mc := *m
		cp.Messages[i] = &mc
	}
	return &cp
}

// PairKey canonicalizes an unordered pair of participants
func PairKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

type ConversationRepository interface {
	ListConversations(ctx context.Context, usrID string) ([]*ConversationRow, error)
	// FindConversation checks both participant orderings, ErrRecordNotFound if none
	FindConversation(ctx context.Context, userA, userB string) (*ConversationRow, error)
	// InsertConversation returns the existing row when the pair already has one
	InsertConversation(ctx context.Context, userA, userB string) (*ConversationRow, error)
	TouchConversation(ctx context.Context, id string, now time.Time) error
}

package domain

// Inbox is an immutable snapshot of the current user's conversations, newest activity first.
// Holders must never mutate it, the synchronizer replaces the whole snapshot instead.
type Inbox struct {
	UserID        string
	Conversations []*Conversation
}

func (in *Inbox) Get(conversationID string) *Conversation {
	if in == nil {
		return nil
	}
	for _, c := range in.Conversations {
		if c.ID == conversationID {
			return c
		}
	}
	return nil
}

// FindByParticipant looks a conversation up by the other participant's username
func (in *Inbox) FindByParticipant(username string) *Conversation {
	if in == nil {
		return nil
	}
	for _, c := range in.Conversations {
		if c.Participant == username {
			return c
		}
	}
	return nil
}

func (in *Inbox) UnreadConversations() []*Conversation {
	if in == nil {
		return nil
	}
	unread := make([]*Conversation, 0)
	for _, c := range in.Conversations {
		if c.Unread {
			unread = append(unread, c)
		}
	}
	return unread
}

func (in *Inbox) HasUnread() bool {
	if in == nil {
		return false
	}
	for _, c := range in.Conversations {
		if c.Unread {
			return true
		}
	}
	return false
}

// Differs reports whether o would render differently from in: conversation membership,
// message count, unread flag or last message timestamp
func (in *Inbox) Differs(o *Inbox) bool {
	if in == nil || o == nil {
		return in != o
	}
	if in.UserID != o.UserID || len(in.Conversations) != len(o.Conversations) {
		return true
	}
	for i, c := range in.Conversations {
		oc := o.Conversations[i]
		if c.ID != oc.ID ||
			len(c.Messages) != len(oc.Messages) ||
			c.Unread != oc.Unread ||
			!c.Timestamp.Equal(oc.Timestamp) {
			return true
		}
	}
	return false
}

// Store groups every relational store operation the client consumes
type Store interface {
	ConversationRepository
	MessageRepository
	ProfileRepository
	PostRepository
}

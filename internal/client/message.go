package client

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/google/uuid"
)

// SendMessage appends a message from the current user. A placeholder is shown right away and either
// confirmed or removed once the remote write resolves, failed sends are not retried.
func (s *Synchronizer) SendMessage(ctx context.Context, conversationID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}
	ev := domain.NewErrValidation()
	if domain.ValidateMessageContent(content, ev); ev.HasErrors() {
		return nil, ev
	}
	usr, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	// the placeholder & the stored row share the uuid, so a refresh landing mid-send can tell them apart
	id := uuid.NewString()
	placeholder := &domain.Message{
		ID:             domain.TempIDPrefix + id,
		ConversationID: conversationID,
		SenderID:       usr.ID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
		From:           domain.SelfDisplayName,
		Pending:        true,
	}
	s.mutateConversation(conversationID, func(c *domain.Conversation) bool {
		c.Messages = append(c.Messages, placeholder)
		return true
	})

	msg := &domain.Message{ID: id, ConversationID: conversationID, SenderID: usr.ID, Content: content}
	if err = s.store.InsertMessage(ctx, msg); err != nil {
		s.mutateConversation(conversationID, func(c *domain.Conversation) bool {
			return removeMessage(c, placeholder.ID)
		})
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteWrite, err)
	}
	msg.From = domain.SelfDisplayName
	s.mutateConversation(conversationID, func(c *domain.Conversation) bool {
		if slices.ContainsFunc(c.Messages, func(m *domain.Message) bool { return m.ID == msg.ID }) {
			// a refresh already brought the confirmed row in
			return removeMessage(c, placeholder.ID)
		}
		for i, m := range c.Messages {
			if m.ID == placeholder.ID {
				confirmed := *msg
				c.Messages[i] = &confirmed
				return true
			}
		}
		return false
	})

	// not atomic with the insert, a failed touch only delays the conversation moving to the top
	if err = s.store.TouchConversation(ctx, conversationID, time.Now().UTC()); err != nil {
		slog.Error("touching conversation after send", "conversationID", conversationID, "err", err)
	}
	s.Refresh(ctx, false)
	return msg, nil
}

// MarkConversationAsRead marks every unread message the other participant sent as read. The snapshot
// is updated first, then the store; a failed remote update reverts & forces a refresh, a successful
// one is confirmed by a refresh after the read-confirm delay so a lagging read can't resurrect the
// unread indicator. A conversation without unread messages is a no-op.
func (s *Synchronizer) MarkConversationAsRead(ctx context.Context, conversationID string) error {
	usr, err := s.currentUser(ctx)
	if err != nil {
		return err
	}
	prev, optimistic := s.mutateConversation(conversationID, func(c *domain.Conversation) bool {
		changed := false
		for _, m := range c.Messages {
			if !m.Read && m.SenderID != usr.ID && !m.IsPlaceholder() {
				m.Read = true
				changed = true
			}
		}
		return changed
	})
	if optimistic == nil {
		return nil
	}

	if _, err = s.store.BulkMarkRead(ctx, conversationID, usr.ID); err != nil {
		slog.Error("marking conversation as read", "conversationID", conversationID, "err", err)
		s.revertConversation(prev, optimistic)
		s.Refresh(ctx, false)
		return fmt.Errorf("%w: %w", domain.ErrRemoteWrite, err)
	}
	s.scheduleRefresh(s.readConfirmDelay)
	return nil
}

func removeMessage(c *domain.Conversation, id string) bool {
	n := len(c.Messages)
	c.Messages = slices.DeleteFunc(c.Messages, func(m *domain.Message) bool { return m.ID == id })
	return len(c.Messages) != n
}

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"golang.org/x/sync/errgroup"
)

// conversations whose messages are fetched at once during a refresh
const refreshConcurrency = 4

// Refresh re-fetches every conversation of the current user & reconciles the snapshot.
// An initial refresh marks the synchronizer as loading & replaces the snapshot unconditionally,
// a background one only replaces it when a conversation differs. Read failures are logged and
// leave the snapshot untouched.
func (s *Synchronizer) Refresh(ctx context.Context, initial bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen, ticket := s.gen, s.ticket()
	if initial {
		s.loading++
	}
	s.mu.Unlock()
	if initial {
		defer func() {
			s.mu.Lock()
			s.loading--
			s.mu.Unlock()
		}()
	}

	candidate, err := s.fetchInbox(ctx)
	if err != nil {
		slog.Error("refreshing conversations", "err", err)
		return
	}
	if s.apply(gen, ticket, candidate, initial) {
		slog.Debug("inbox updated", "conversations", len(candidate.Conversations))
	}
}

func (s *Synchronizer) fetchInbox(ctx context.Context) (*domain.Inbox, error) {
	usr, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteRead, err)
	}
	if usr == nil { // signed out, nothing to mirror
		return &domain.Inbox{}, nil
	}
	rows, err := s.store.ListConversations(ctx, usr.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing conversations: %w", domain.ErrRemoteRead, err)
	}

	msgs := make([][]*domain.Message, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for i, row := range rows {
		g.Go(func() error {
			m, err := s.store.ListMessages(gctx, row.ID)
			if err != nil {
				return fmt.Errorf("listing messages of %s: %w", row.ID, err)
			}
			msgs[i] = m
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteRead, err)
	}

	// resolve every participant & sender in one lookup
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(rows))
	addID := func(id string) {
		if _, ok := seen[id]; !ok && id != usr.ID {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for i, row := range rows {
		addID(row.OtherParticipant(usr.ID))
		for _, m := range msgs[i] {
			addID(m.SenderID)
		}
	}
	names, err := s.store.LookupUsernames(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("%w: looking up usernames: %w", domain.ErrRemoteRead, err)
	}
	displayName := func(id string) string {
		if id == usr.ID {
			return domain.SelfDisplayName
		}
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return domain.UnknownDisplayName
	}

	in := &domain.Inbox{UserID: usr.ID, Conversations: make([]*domain.Conversation, len(rows))}
	for i, row := range rows {
		other := row.OtherParticipant(usr.ID)
		c := &domain.Conversation{
			ConversationRow: *row,
			ParticipantID:   other,
			Participant:     displayName(other),
			Messages:        msgs[i],
		}
		for _, m := range c.Messages {
			m.From = displayName(m.SenderID)
		}
		c.Derive(usr.ID)
		in.Conversations[i] = c
	}
	return in, nil
}

// GetOrCreateConversation returns the id of the conversation between the current user & otherUserID,
// creating it when there is none. Concurrent calls for the same pair share one lookup, the store's
// unique pair key covers writers in other processes.
func (s *Synchronizer) GetOrCreateConversation(ctx context.Context, otherUserID string) (string, error) {
	usr, err := s.currentUser(ctx)
	if err != nil {
		return "", err
	}
	if otherUserID == usr.ID {
		return "", domain.ErrSelfConversation
	}
	id, err, _ := s.creating.Do(domain.PairKey(usr.ID, otherUserID), func() (any, error) {
		existing, err := s.store.FindConversation(ctx, usr.ID, otherUserID)
		if err == nil {
			return existing.ID, nil
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %w", domain.ErrRemoteRead, err)
		}
		created, err := s.store.InsertConversation(ctx, usr.ID, otherUserID)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrRemoteWrite, err)
		}
		slog.Info("conversation created", "conversationID", created.ID)
		return created.ID, nil
	})
	if err != nil {
		return "", err
	}
	return id.(string), nil
}

// OpenConversationWith resolves username to a conversation id, creating the conversation when needed
// & refreshing so the snapshot contains it
func (s *Synchronizer) OpenConversationWith(ctx context.Context, username string) (string, error) {
	if c := s.Snapshot().FindByParticipant(username); c != nil {
		return c.ID, nil
	}
	usr, err := s.currentUser(ctx)
	if err != nil {
		return "", err
	}
	if username == usr.Username {
		return "", domain.ErrSelfConversation
	}
	p, err := s.store.GetProfileByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrRemoteRead, err)
	}
	id, err := s.GetOrCreateConversation(ctx, p.UserID)
	if err != nil {
		return "", err
	}
	s.Refresh(ctx, false)
	return id, nil
}

func (s *Synchronizer) currentUser(ctx context.Context) (*domain.User, error) {
	usr, err := s.identity.CurrentUser(ctx)
	if err != nil {
		slog.Error("getting current user", "err", err)
		return nil, domain.ErrNotAuthenticated
	}
	if usr == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return usr, nil
}

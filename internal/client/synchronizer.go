package client

import (
	"context"
	"log/slog"
	"slices"
	gosync "sync"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/common"
	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/M0hammadUsman/campusboard/internal/sync"
	"golang.org/x/sync/singleflight"
)

const DefaultReadConfirmDelay = 500 * time.Millisecond

// Store is the part of the relational store the synchronizer reads & writes
type Store interface {
	domain.ConversationRepository
	domain.MessageRepository
	domain.ProfileRepository
}

// Trigger signals that the inbox may have changed remotely, a ticker or a push channel
type Trigger interface {
	C() <-chan struct{}
}

type InboxBroadcaster = sync.Broadcaster[*domain.Inbox]

// Synchronizer owns the local mirror of the current user's conversations for one session.
// It is the only writer of the snapshot, readers get immutable *domain.Inbox values.
type Synchronizer struct {
	store            Store
	identity         domain.IdentityProvider
	readConfirmDelay time.Duration
	bt               *common.BackgroundTask
	creating         singleflight.Group
	Inboxes          *InboxBroadcaster

	mu      gosync.Mutex
	inbox   *domain.Inbox
	gen     uint64 // bumped by Reset, refreshes of an older session never write
	seq     uint64 // tickets handed to refreshes & local writes in start order
	applied uint64 // ticket of the write the current snapshot came from
	loading int
	closed  bool
}

type SynchronizerOption func(*Synchronizer)

// WithReadConfirmDelay sets how long after a successful mark as read the confirming refresh runs
func WithReadConfirmDelay(d time.Duration) SynchronizerOption {
	return func(s *Synchronizer) { s.readConfirmDelay = d }
}

func NewSynchronizer(store Store, identity domain.IdentityProvider, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{
		store:            store,
		identity:         identity,
		readConfirmDelay: DefaultReadConfirmDelay,
		bt:               common.NewBackgroundTask(),
		Inboxes:          sync.NewBroadcaster[*domain.Inbox](),
		inbox:            &domain.Inbox{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current inbox, the pointer only changes when the visible state does
func (s *Synchronizer) Snapshot() *domain.Inbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inbox
}

// Loading reports whether an initial load is in progress
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Reset discards the session's state, called on sign-in & sign-out. In-flight refreshes of the
// previous session are dropped when they resolve.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	s.seq++
	s.applied = s.seq
	s.inbox = &domain.Inbox{}
	s.Inboxes.Write(s.inbox)
}

// Close stops every further state write & waits for scheduled refreshes to return
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.bt.Shutdown(5 * time.Second)
	s.Inboxes.Close()
}

// Run loads the inbox, then refreshes it every time trig fires until ctx is done
func (s *Synchronizer) Run(ctx context.Context, trig Trigger) {
	s.Refresh(ctx, true)
	for {
		select {
		case <-trig.C():
			s.Refresh(ctx, false)
		case <-ctx.Done():
			return
		}
	}
}

// ticket reserves the next position in the write order, caller holds mu
func (s *Synchronizer) ticket() uint64 {
	s.seq++
	return s.seq
}

// apply installs candidate if it is still relevant, reports whether subscribers were notified
func (s *Synchronizer) apply(gen, ticket uint64, candidate *domain.Inbox, unconditional bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		slog.Debug("dropping refresh of a closed session")
		return false
	}
	if ticket < s.applied {
		slog.Debug("dropping refresh older than the current state", "ticket", ticket, "applied", s.applied)
		return false
	}
	s.applied = ticket
	candidate = carryPending(s.inbox, candidate)
	if !unconditional && !s.inbox.Differs(candidate) {
		return false
	}
	s.inbox = candidate
	s.Inboxes.Write(candidate)
	return true
}

// mutateConversation applies fn to a copy of the conversation & publishes the result as a local write.
// fn reports whether it changed anything, the previous conversation is returned so callers may revert.
func (s *Synchronizer) mutateConversation(id string, fn func(c *domain.Conversation) bool) (prev, next *domain.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil
	}
	idx := -1
	for i, c := range s.inbox.Conversations {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	prev = s.inbox.Conversations[idx]
	next = prev.Clone()
	if !fn(next) {
		return prev, nil
	}
	next.Derive(s.inbox.UserID)
	s.replaceConversation(idx, next)
	return prev, next
}

// revertConversation puts prev back, only when nothing replaced the optimistic conversation meanwhile
func (s *Synchronizer) revertConversation(prev, optimistic *domain.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for i, c := range s.inbox.Conversations {
		if c == optimistic {
			s.replaceConversation(i, prev)
			return
		}
	}
}

// caller holds mu
func (s *Synchronizer) replaceConversation(idx int, c *domain.Conversation) {
	convos := make([]*domain.Conversation, len(s.inbox.Conversations))
	copy(convos, s.inbox.Conversations)
	convos[idx] = c
	s.inbox = &domain.Inbox{UserID: s.inbox.UserID, Conversations: convos}
	s.applied = s.ticket()
	s.Inboxes.Write(s.inbox)
}

// scheduleRefresh runs a background refresh after d unless the synchronizer closes first
func (s *Synchronizer) scheduleRefresh(d time.Duration) {
	s.bt.Run(func(shtdwnCtx context.Context) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			s.Refresh(shtdwnCtx, false)
		case <-shtdwnCtx.Done():
		}
	})
}

// carryPending keeps optimistic placeholders of cur visible in candidate until the send resolves,
// a placeholder whose row candidate already holds is dropped
func carryPending(cur, candidate *domain.Inbox) *domain.Inbox {
	if cur == nil || candidate == nil || cur.UserID != candidate.UserID {
		return candidate
	}
	var out *domain.Inbox
	for _, c := range cur.Conversations {
		if !slices.ContainsFunc(c.Messages, func(m *domain.Message) bool { return m.Pending }) {
			continue
		}
		for i, cc := range candidate.Conversations {
			if cc.ID != c.ID {
				continue
			}
			var pending []*domain.Message
			for _, m := range c.Messages {
				confirmed := func(stored *domain.Message) bool { return stored.ID == m.ConfirmedID() }
				if m.Pending && !slices.ContainsFunc(cc.Messages, confirmed) {
					pending = append(pending, m)
				}
			}
			if len(pending) == 0 {
				continue
			}
			if out == nil {
				out = &domain.Inbox{UserID: candidate.UserID, Conversations: make([]*domain.Conversation, len(candidate.Conversations))}
				copy(out.Conversations, candidate.Conversations)
			}
			merged := cc.Clone()
			merged.Messages = append(merged.Messages, pending...)
			merged.Derive(candidate.UserID)
			out.Conversations[i] = merged
		}
	}
	if out == nil {
		return candidate
	}
	return out
}

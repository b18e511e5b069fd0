// Package notify derives the unread indicator & the new message toast from inbox snapshots.
package notify

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
)

type View int

const (
	ViewFeed View = iota
	ViewMessages
)

func (v View) String() string {
	if v == ViewMessages {
		return "messages"
	}
	return "feed"
}

type State int

const (
	StateIdle State = iota
	StateNotifying
)

type Notification struct {
	ConversationID string
	Sender         string
	Timestamp      time.Time
}

// Marker marks the notified conversation read once the user opens the messages view
type Marker interface {
	MarkConversationAsRead(ctx context.Context, conversationID string) error
}

// Deriver turns inbox snapshots into the aggregate unread flag & at most one notification per
// increase of the unread conversation count. Several conversations turning unread at once surface
// a single notification for the newest of them.
type Deriver struct {
	marker Marker
	events chan Notification

	mu        gosync.Mutex
	prevCount int
	hasUnread bool
	view      View
	state     State
	current   Notification
}

func NewDeriver(marker Marker) *Deriver {
	return &Deriver{
		marker: marker,
		events: make(chan Notification, 1),
	}
}

// Observe recomputes the unread state from in, reports the notification it raised if any
func (d *Deriver) Observe(in *domain.Inbox) (Notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if in == nil || in.UserID == "" { // signed out
		d.hasUnread = false
		d.prevCount = 0
		return Notification{}, false
	}
	unread := in.UnreadConversations()
	count := len(unread)
	d.hasUnread = count > 0
	defer func() { d.prevCount = count }()
	if count <= d.prevCount || d.view == ViewMessages {
		return Notification{}, false
	}
	newest := unread[0]
	for _, c := range unread[1:] {
		if c.Timestamp.After(newest.Timestamp) {
			newest = c
		}
	}
	n := Notification{ConversationID: newest.ID, Sender: newest.Participant, Timestamp: newest.Timestamp}
	d.state = StateNotifying
	d.current = n
	d.publish(n)
	slog.Debug("new message notification", "conversationID", n.ConversationID)
	return n, true
}

// publish replaces an undelivered notification, caller holds mu
func (d *Deriver) publish(n Notification) {
	select {
	case <-d.events:
	default:
	}
	d.events <- n
}

// SetView records the active view. Opening the messages view while notifying settles the
// notification & marks its conversation read.
func (d *Deriver) SetView(ctx context.Context, v View) error {
	d.mu.Lock()
	d.view = v
	if v != ViewMessages || d.state != StateNotifying {
		d.mu.Unlock()
		return nil
	}
	n := d.settle()
	d.mu.Unlock()
	if d.marker == nil {
		return nil
	}
	return d.marker.MarkConversationAsRead(ctx, n.ConversationID)
}

// Dismiss settles the current notification without opening it
func (d *Deriver) Dismiss() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settle()
}

// settle moves back to idle & drops the undelivered event, caller holds mu
func (d *Deriver) settle() Notification {
	n := d.current
	d.state = StateIdle
	d.current = Notification{}
	select {
	case <-d.events:
	default:
	}
	return n
}

// Reset forgets the previous count, called on sign-in & sign-out
func (d *Deriver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prevCount = 0
	d.hasUnread = false
	d.settle()
}

func (d *Deriver) HasUnread() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasUnread
}

func (d *Deriver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Current returns the notification being shown, ok is false while idle
func (d *Deriver) Current() (Notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, d.state == StateNotifying
}

func (d *Deriver) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Events delivers the latest notification not yet received, older ones are replaced
func (d *Deriver) Events() <-chan Notification {
	return d.events
}

// Watch observes every snapshot of inboxes until ctx is done or inboxes is closed
func (d *Deriver) Watch(ctx context.Context, inboxes <-chan *domain.Inbox) {
	for {
		select {
		case in, ok := <-inboxes:
			if !ok {
				return
			}
			d.Observe(in)
		case <-ctx.Done():
			return
		}
	}
}

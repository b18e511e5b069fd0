package tui

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/M0hammadUsman/campusboard/internal/notify"
	tea "github.com/charmbracelet/bubbletea"
)

const ioTimeout = 10 * time.Second

type errMsg struct {
	err string
}

func (e errMsg) String() string {
	return e.err
}

type (
	inboxMsg        struct{ in *domain.Inbox }
	postsMsg        []*domain.Post
	loginStateMsg   struct{ usr *domain.User }
	notificationMsg notify.Notification
	// the conversation to show in the chat, opened from the list, a post or a notification
	openConversationMsg struct {
		id   string
		post *domain.Post
	}
	respondToPostMsg struct{ post *domain.Post }
	postCreatedMsg   struct{ post *domain.Post }
	statusMsg        string
)

// listen waits for the next value on ch, nil once ch is closed
func listen[T any](ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

func ioCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ioTimeout)
}

// newErrMsg turns err into something worth showing, validation errors list every field
func newErrMsg(action string, err error) *errMsg {
	var ev *domain.ErrValidation
	switch {
	case errors.As(err, &ev):
		fields := slices.Sorted(maps.Keys(ev.Errors))
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s %s", f, ev.Errors[f]))
		}
		return &errMsg{err: fmt.Sprintf("%s: %s", action, strings.Join(parts, ", "))}
	case errors.Is(err, domain.ErrNotAuthenticated):
		return &errMsg{err: "Sign in first"}
	case errors.Is(err, domain.ErrSelfConversation):
		return &errMsg{err: "You can't message yourself"}
	case errors.Is(err, domain.ErrRecordNotFound):
		return &errMsg{err: fmt.Sprintf("%s: no such user", action)}
	case errors.Is(err, domain.ErrEmptyMessage):
		return &errMsg{err: "Type a message first"}
	default:
		return &errMsg{err: fmt.Sprintf("%s, try again in a moment", action)}
	}
}

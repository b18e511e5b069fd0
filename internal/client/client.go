package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/99designs/keyring"
	"github.com/M0hammadUsman/campusboard/internal/common"
	"github.com/M0hammadUsman/campusboard/internal/domain"
	"github.com/M0hammadUsman/campusboard/internal/notify"
)

// Client wires the session, the conversation synchronizer, the board & the unread deriver together
type Client struct {
	Session *Session
	Sync    *Synchronizer
	Board   *Board
	Deriver *notify.Deriver
	bt      *common.BackgroundTask
}

func New(store domain.Store, tx TXRunner, kr keyring.Keyring, opts ...SynchronizerOption) *Client {
	session := NewSession(kr, store)
	synchronizer := NewSynchronizer(store, session, opts...)
	return &Client{
		Session: session,
		Sync:    synchronizer,
		Board:   NewBoard(store, tx, session),
		Deriver: notify.NewDeriver(synchronizer),
		bt:      common.NewBackgroundTask(),
	}
}

// Start restores the remembered session, then keeps the inbox & the deriver in step with trig
func (c *Client) Start(trig Trigger) {
	if _, err := c.Session.Restore(); err != nil {
		slog.Error("restoring session", "err", err)
	}
	token, inboxes := c.Sync.Inboxes.Subscribe()
	c.bt.Run(func(shtdwnCtx context.Context) {
		defer c.Sync.Inboxes.Unsubscribe(token)
		c.Deriver.Watch(shtdwnCtx, inboxes)
	})
	c.bt.Run(func(shtdwnCtx context.Context) {
		c.Sync.Run(shtdwnCtx, trig)
	})
	c.bt.Run(func(shtdwnCtx context.Context) {
		c.Board.Refresh(shtdwnCtx, domain.CategoryAll)
	})
}

func (c *Client) SignIn(ctx context.Context, username string) (*domain.User, error) {
	usr, err := c.Session.SignIn(ctx, username)
	if err != nil {
		return nil, err
	}
	c.resetSession(ctx)
	return usr, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	if err := c.Session.SignOut(); err != nil {
		return err
	}
	c.resetSession(ctx)
	return nil
}

func (c *Client) resetSession(ctx context.Context) {
	c.Sync.Reset()
	c.Deriver.Reset()
	c.Sync.Refresh(ctx, true)
}

// Close stops the background loops & the synchronizer
func (c *Client) Close() {
	c.bt.Shutdown(5 * time.Second)
	c.Sync.Close()
	c.Board.Posts.Close()
	c.Session.LoginState.Close()
}

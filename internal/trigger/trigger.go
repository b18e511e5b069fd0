// Package trigger tells the synchronizer when to refresh, on a fixed interval or when a change
// feed reports a remote write.
package trigger

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type Trigger interface {
	C() <-chan struct{}
	Close() error
}

// Ticker fires every interval
type Ticker struct {
	t *time.Ticker
	c chan struct{}

	done chan struct{}
}

func NewTicker(interval time.Duration) *Ticker {
	t := &Ticker{
		t:    time.NewTicker(interval),
		c:    make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.t.C:
				signal(t.c)
			case <-t.done:
				return
			}
		}
	}()
	return t
}

func (t *Ticker) C() <-chan struct{} { return t.c }

func (t *Ticker) Close() error {
	t.t.Stop()
	close(t.done)
	return nil
}

// feed coalesces change events of a push source, at most one signal per interval reaches C
type feed struct {
	raw     chan struct{}
	c       chan struct{}
	limiter *rate.Limiter
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func newFeed(ctx context.Context, interval time.Duration) *feed {
	ctx, cancel := context.WithCancel(ctx)
	f := &feed{
		raw:     make(chan struct{}, 1),
		c:       make(chan struct{}, 1),
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go f.emit()
	return f
}

func (f *feed) emit() {
	for {
		select {
		case <-f.raw:
			if err := f.limiter.Wait(f.ctx); err != nil {
				return
			}
			signal(f.c)
		case <-f.ctx.Done():
			return
		}
	}
}

// changed records an event, events arriving while one is pending collapse into it
func (f *feed) changed() { signal(f.raw) }

func (f *feed) C() <-chan struct{} { return f.c }

// stop ends the feed & waits for its source loop
func (f *feed) stop() {
	f.cancel()
	<-f.done
}

func signal(c chan struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

// sleep waits d, reports false when ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

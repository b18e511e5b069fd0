package sync

import (
	"log/slog"
	"reflect"
	"sync"
)

// Broadcaster fans one written value out to many subscribers. Subscribe returns a token and a receive-only chan,
// Unsubscribe must be called with the token to release the subscription.
// Each subscriber chan holds at most one pending value, a newer Write replaces a value the subscriber has not
// read yet, so a slow reader only ever misses intermediate states & Write never blocks on a reader.
type Broadcaster[T any] struct {
	mu     sync.RWMutex
	out    map[int]chan T
	v      T
	next   int
	closed bool
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		out: make(map[int]chan T),
	}
}

// Get returns the last written value
func (b *Broadcaster[T]) Get() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.v
}

func (b *Broadcaster[T]) Subscribe() (int, <-chan T) {
	c := make(chan T, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	token := b.next
	b.next++
	if b.closed {
		close(c)
		return token, c
	}
	b.out[token] = c
	return token, c
}

func (b *Broadcaster[T]) Unsubscribe(token int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.out[token]; ok {
		close(ch)
		delete(b.out, token)
	} else if !b.closed {
		slog.Error("channel not found while unsubscribing", "type", reflect.TypeOf(b), "token", token)
	}
}

func (b *Broadcaster[T]) Write(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.v = v
	for _, ch := range b.out {
		select {
		case ch <- v:
		default:
			// drop the stale pending value, the chan is only written under mu so this can't block
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// Close closes every subscriber chan, later writes are ignored
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for token, ch := range b.out {
		close(ch)
		delete(b.out, token)
	}
}

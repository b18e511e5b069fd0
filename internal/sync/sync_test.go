package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster[int]()
	t1, c1 := b.Subscribe()
	t2, c2 := b.Subscribe()
	defer b.Unsubscribe(t1)
	defer b.Unsubscribe(t2)

	b.Write(7)
	assert.Equal(t, 7, <-c1)
	assert.Equal(t, 7, <-c2)
	assert.Equal(t, 7, b.Get())
}

func TestBroadcasterKeepsLatestForSlowReaders(t *testing.T) {
	b := NewBroadcaster[int]()
	token, c := b.Subscribe()
	defer b.Unsubscribe(token)

	for i := 1; i <= 5; i++ {
		b.Write(i)
	}
	assert.Equal(t, 5, <-c)
	select {
	case v := <-c:
		t.Fatalf("unexpected pending value %d", v)
	default:
	}
}

func TestBroadcasterUnsubscribeAndClose(t *testing.T) {
	b := NewBroadcaster[string]()
	token, c := b.Subscribe()
	b.Unsubscribe(token)
	_, ok := <-c
	require.False(t, ok)

	_, c = b.Subscribe()
	b.Close()
	_, ok = <-c
	require.False(t, ok)

	b.Write("ignored")
	assert.Equal(t, "", b.Get())

	_, c = b.Subscribe()
	_, ok = <-c
	assert.False(t, ok, "subscribing after close yields a closed chan")
}

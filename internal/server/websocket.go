package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

type changeEvent struct {
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}

type subscriber struct {
	events    chan changeEvent
	closeSlow func()
}

func (s *Server) ChangesHandler(w http.ResponseWriter, r *http.Request) {
	sub, conn, err := s.subscribe(w, r)
	if err != nil {
		slog.Error("accepting change feed subscriber", "err", err)
		return
	}
	defer conn.CloseNow()
	defer s.removeSubscriber(sub)

	// subscribers never send, CloseRead handles control frames & cancels ctx once the peer leaves
	ctx := conn.CloseRead(r.Context())
	errChan := make(chan error, 1)
	s.BackgroundTask.Run(func(shtdwnCtx context.Context) {
		errChan <- s.writeEvents(shtdwnCtx, ctx, conn, sub)
	})
	if err = <-errChan; err != nil {
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
			websocket.CloseStatus(err) == websocket.StatusGoingAway ||
			errors.Is(err, io.EOF) ||
			errors.Is(err, context.Canceled) {
			return
		}
		slog.Error("writing change feed", "err", err)
	}
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) (*subscriber, *websocket.Conn, error) {
	var mu sync.Mutex
	var conn *websocket.Conn
	sub := &subscriber{
		events: make(chan changeEvent, s.subscriberMessageBuffer),
		closeSlow: func() {
			mu.Lock()
			defer mu.Unlock()
			if conn != nil {
				conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with changes")
			}
		},
	}
	c, err := websocket.Accept(w, r, s.wsAcceptOpts)
	if err != nil {
		return nil, nil, err
	}
	mu.Lock()
	conn = c
	mu.Unlock()
	s.addSubscriber(sub)
	return sub, conn, nil
}

func (*Server) writeEvents(shutdownCtx, reqCtx context.Context, conn *websocket.Conn, sub *subscriber) error {
	for {
		select {
		case ev := <-sub.events:
			if err := writeWithTimeout(conn, 5*time.Second, ev); err != nil {
				return err
			}
		case <-reqCtx.Done():
			return reqCtx.Err()
		case <-shutdownCtx.Done():
			conn.Close(websocket.StatusGoingAway, "change feed shutting down")
			return nil
		}
	}
}

// Publish queues ev for every subscriber, a subscriber whose buffer is full gets disconnected
func (s *Server) Publish(ev changeEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for sub := range s.subscribers {
		select {
		case sub.events <- ev:
		default:
			go sub.closeSlow()
		}
	}
}

// Subscribers reports the number of connected subscribers
func (s *Server) Subscribers() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subscribers)
}

func (s *Server) addSubscriber(sub *subscriber) {
	s.subsMu.Lock()
	s.subscribers[sub] = struct{}{}
	s.subsMu.Unlock()
}

func (s *Server) removeSubscriber(sub *subscriber) {
	s.subsMu.Lock()
	delete(s.subscribers, sub)
	s.subsMu.Unlock()
}

func writeWithTimeout(conn *websocket.Conn, t time.Duration, msg any) error {
	ctx, cancel := context.WithTimeout(context.Background(), t)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/common"
	"github.com/coder/websocket"
)

// Source signals that the store changed, a trigger.Trigger satisfies it
type Source interface {
	C() <-chan struct{}
}

// Server relays store change signals to websocket subscribers, clients dial it with -trigger=ws
type Server struct {
	BackgroundTask          *common.BackgroundTask
	wsAcceptOpts            *websocket.AcceptOptions
	subscriberMessageBuffer int

	subsMu      sync.Mutex
	subscribers map[*subscriber]struct{}
}

func NewServer(bt *common.BackgroundTask) *Server {
	return &Server{
		BackgroundTask: bt,
		wsAcceptOpts: &websocket.AcceptOptions{
			CompressionMode:    websocket.CompressionContextTakeover,
			InsecureSkipVerify: true,
		},
		subscriberMessageBuffer: 16,
		subscribers:             make(map[*subscriber]struct{}),
	}
}

// Serve listens on addr until ctx is done, then drains in-flight requests
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Routes(),
		ReadTimeout: 3 * time.Second,
		IdleTimeout: time.Minute,
	}
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shtdwnCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(shtdwnCtx)
	}()
	slog.Info("starting change feed", "addr", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}

// Relay publishes a change event for every signal of src until ctx is done
func (s *Server) Relay(ctx context.Context, src Source) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-src.C():
			s.Publish(changeEvent{Event: "changed", At: time.Now()})
		}
	}
}

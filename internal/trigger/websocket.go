package trigger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const redialDelay = 2 * time.Second

// Websocket refreshes whenever the change feed at url sends a frame, the frame's payload is ignored
type Websocket struct {
	*feed
	url  string
	opts *websocket.DialOptions
}

// DialWebsocket connects to url & keeps reconnecting until Close, the first dial must succeed
func DialWebsocket(ctx context.Context, url string, interval time.Duration) (*Websocket, error) {
	w := &Websocket{
		url:  url,
		opts: &websocket.DialOptions{CompressionMode: websocket.CompressionContextTakeover},
	}
	conn, err := w.dial(ctx)
	if err != nil {
		return nil, err
	}
	w.feed = newFeed(ctx, interval)
	go w.run(conn)
	return w, nil
}

func (w *Websocket) dial(ctx context.Context) (*websocket.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, resp, err := websocket.Dial(ctx, w.url, w.opts)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, nil
}

func (w *Websocket) run(conn *websocket.Conn) {
	defer close(w.done)
	for {
		err := w.read(conn)
		if w.ctx.Err() != nil {
			conn.Close(websocket.StatusNormalClosure, "client exited campusboard")
			return
		}
		conn.CloseNow()
		slog.Error("change feed disconnected", "url", w.url, "err", err)
		if conn = w.redial(); conn == nil {
			return
		}
		// changes made while disconnected were missed
		w.changed()
	}
}

// redial retries every redialDelay until it connects, nil once the feed is closed
func (w *Websocket) redial() *websocket.Conn {
	for sleep(w.ctx, redialDelay) {
		conn, err := w.dial(w.ctx)
		if err == nil {
			return conn
		}
		slog.Error("redialing change feed", "url", w.url, "err", err)
	}
	return nil
}

func (w *Websocket) read(conn *websocket.Conn) error {
	for {
		if _, _, err := conn.Read(w.ctx); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return errors.New("closed by server")
			}
			return err
		}
		w.changed()
	}
}

func (w *Websocket) Close() error {
	w.stop()
	return nil
}

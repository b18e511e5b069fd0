package trigger

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// Postgres refreshes on every NOTIFY sent to its channel
type Postgres struct {
	*feed
	conn    *pgx.Conn
	channel string
}

func ListenPostgres(ctx context.Context, dsn, channel string, interval time.Duration) (*Postgres, error) {
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := pgx.Connect(connCtx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err = conn.Exec(connCtx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		conn.Close(context.Background())
		return nil, err
	}
	p := &Postgres{conn: conn, channel: channel, feed: newFeed(ctx, interval)}
	go p.run()
	return p, nil
}

func (p *Postgres) run() {
	defer close(p.done)
	defer p.conn.Close(context.Background())
	for {
		n, err := p.conn.WaitForNotification(p.ctx)
		if err != nil {
			if p.ctx.Err() == nil {
				slog.Error("waiting for change notification", "channel", p.channel, "err", err)
			}
			return
		}
		slog.Debug("change notification", "channel", n.Channel, "payload", n.Payload)
		p.changed()
	}
}

func (p *Postgres) Close() error {
	p.stop()
	return nil
}

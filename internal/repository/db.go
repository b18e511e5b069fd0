package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// the schema is shared by both drivers, keep it to the common subset of postgres & sqlite
const (
	createProfilesTable = `
		CREATE TABLE IF NOT EXISTS profiles (
            user_id TEXT PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP NOT NULL
		);
	`
	createConversationsTable = `
		CREATE TABLE IF NOT EXISTS conversations (
            id TEXT PRIMARY KEY,
            user1_id TEXT NOT NULL,
            user2_id TEXT NOT NULL,
            -- canonical unordered pair, enforces one conversation per pair of users
            pair_key TEXT NOT NULL UNIQUE,
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_conversations_user1_id ON conversations(user1_id);
		CREATE INDEX IF NOT EXISTS idx_conversations_user2_id ON conversations(user2_id);
	`
	createMessagesTable = `
		CREATE TABLE IF NOT EXISTS messages (
            id TEXT PRIMARY KEY,
            conversation_id TEXT NOT NULL REFERENCES conversations(id),
            sender_id TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL,
            read BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_messages_conversation_id_created_at ON messages(conversation_id, created_at);
	`
	createPostsTable = `
		CREATE TABLE IF NOT EXISTS posts (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            content TEXT NOT NULL,
            category TEXT NOT NULL,
            catalog_number TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
	`
)

// change notifications for the postgres LISTEN trigger, %[1]s is the quoted channel name
const createChangeNotifyTrigger = `
		CREATE OR REPLACE FUNCTION campusboard_notify_change() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify(%[1]s, TG_TABLE_NAME);
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql;
		DROP TRIGGER IF EXISTS messages_notify_change ON messages;
		CREATE TRIGGER messages_notify_change AFTER INSERT OR UPDATE ON messages
			FOR EACH STATEMENT EXECUTE FUNCTION campusboard_notify_change();
		DROP TRIGGER IF EXISTS conversations_notify_change ON conversations;
		CREATE TRIGGER conversations_notify_change AFTER INSERT OR UPDATE ON conversations
			FOR EACH STATEMENT EXECUTE FUNCTION campusboard_notify_change();
	`

type ctxKey string

const txCtxKey = ctxKey("TX")

func contextGetTX(ctx context.Context) *TX {
	tx, ok := ctx.Value(txCtxKey).(*TX)
	if !ok {
		return nil
	}
	return tx
}

type DB struct {
	*sqlx.DB
}

type Options struct {
	Driver          string
	DSN             string
	MaxOpenConn     int
	MaxIdleConn     int
	MaxIdleConnTime time.Duration
}

func OpenDB(opts Options) (*DB, error) {
	if opts.Driver != DriverPostgres && opts.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := sqlx.ConnectContext(ctx, opts.Driver, opts.DSN)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}
	if opts.Driver == DriverSQLite {
		// sqlite serializes writers anyway, a single conn avoids SQLITE_BUSY & keeps :memory: dbs shared
		opts.MaxOpenConn, opts.MaxIdleConn = 1, 1
	}
	if opts.MaxOpenConn > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConn)
	}
	if opts.MaxIdleConn > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConn)
	}
	if opts.MaxIdleConnTime > 0 {
		db.SetConnMaxIdleTime(opts.MaxIdleConnTime)
	}
	return &DB{db}, nil
}

func (db *DB) RunMigrations(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, stmt := range []string{createProfilesTable, createConversationsTable, createMessagesTable, createPostsTable} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// InstallChangeNotify makes postgres announce every message & conversation write on channel
func (db *DB) InstallChangeNotify(ctx context.Context, channel string) error {
	if db.DriverName() != DriverPostgres {
		return fmt.Errorf("change notifications need the %s driver, got %s", DriverPostgres, db.DriverName())
	}
	literal := "'" + strings.ReplaceAll(channel, "'", "''") + "'"
	_, err := db.ExecContext(ctx, fmt.Sprintf(createChangeNotifyTrigger, literal))
	return err
}

type TX struct {
	*sqlx.Tx
}

func (db *DB) BeginTx(ctx context.Context) (*TX, error) {
	txx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &TX{txx}, err
}

// RunInTX runs fn in a transaction, repositories called with the ctx passed to fn pick it up
func (db *DB) RunInTX(ctx context.Context, fn func(ctx context.Context) error) error {
	if contextGetTX(ctx) != nil { // already inside one
		return fn(ctx)
	}
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	ctx = context.WithValue(ctx, txCtxKey, tx)
	if err = fn(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

// ext returns the transaction carried by ctx, if any, otherwise the pool
func (db *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx := contextGetTX(ctx); tx != nil {
		return tx
	}
	return db.DB
}

package common

import (
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

const (
	TriggerPoll      = "poll"
	TriggerWebsocket = "ws"
	TriggerPostgres  = "pg"
)

type Config struct {
	ENV string
	DB  struct {
		Driver          string
		DSN             string
		MaxOpenConn     int
		MaxIdleConn     int
		MaxIdleConnTime time.Duration
		Migrate         bool
	}
	Sync struct {
		Trigger          string
		PollInterval     time.Duration
		ReadConfirmDelay time.Duration
		WebsocketURL     string
		NotifyChannel    string
	}
	Username string
	LogFile  string
}

// ParseFlags parses args, every flag defaults to its CAMPUSBOARD_* environment variable when set,
// variables may come from a .env file in the working directory
func ParseFlags(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	var cfg Config
	fs := flag.NewFlagSet("campusboard", flag.ContinueOnError)
	fs.StringVar(&cfg.ENV, "env", envStr("ENV", "dev"), "Environment (dev|stag|prod)")
	// DB Flags
	fs.StringVar(&cfg.DB.Driver, "db-driver", envStr("DB_DRIVER", "sqlite3"), "Store driver (pgx|sqlite3)")
	fs.StringVar(&cfg.DB.DSN, "db-dsn", envStr("DB_DSN", "campusboard.db?_foreign_keys=on"), "Store DSN")
	fs.IntVar(&cfg.DB.MaxOpenConn, "db-max-open-conn", envInt("DB_MAX_OPEN_CONN", 5), "Store max open connections")
	fs.IntVar(&cfg.DB.MaxIdleConn, "db-max-idle-conn", envInt("DB_MAX_IDLE_CONN", 5), "Store max idle connections")
	fs.DurationVar(&cfg.DB.MaxIdleConnTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "Store max idle connection time")
	fs.BoolVar(&cfg.DB.Migrate, "db-migrate", envBool("DB_MIGRATE", true), "Create the tables when missing")
	// Sync Flags
	fs.StringVar(&cfg.Sync.Trigger, "trigger", envStr("TRIGGER", TriggerPoll), "Refresh trigger (poll|ws|pg)")
	fs.DurationVar(&cfg.Sync.PollInterval, "poll-interval", envDuration("POLL_INTERVAL", 3*time.Second), "Inbox poll interval, also the push coalescing window")
	fs.DurationVar(&cfg.Sync.ReadConfirmDelay, "read-confirm-delay", envDuration("READ_CONFIRM_DELAY", 500*time.Millisecond), "Delay before the refresh confirming a mark as read")
	fs.StringVar(&cfg.Sync.WebsocketURL, "ws-url", envStr("WS_URL", ""), "Change feed websocket URL, used with -trigger=ws")
	fs.StringVar(&cfg.Sync.NotifyChannel, "notify-channel", envStr("NOTIFY_CHANNEL", "messages_changes"), "Postgres NOTIFY channel, used with -trigger=pg")
	// Session
	fs.StringVar(&cfg.Username, "user", envStr("USER_NAME", ""), "Sign in as this username")
	fs.StringVar(&cfg.LogFile, "log-file", envStr("LOG_FILE", "campusboard.log"), "Log file, the terminal is owned by the TUI")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FeedConfig configures the change feed relay (cmd/campusboard-feed)
type FeedConfig struct {
	ENV           string
	Addr          string
	DSN           string
	NotifyChannel string
	Coalesce      time.Duration
	LogFile       string
}

// ParseFeedFlags parses the relay's args, defaults come from the same CAMPUSBOARD_* variables
func ParseFeedFlags(args []string) (*FeedConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	var cfg FeedConfig
	fs := flag.NewFlagSet("campusboard-feed", flag.ContinueOnError)
	fs.StringVar(&cfg.ENV, "env", envStr("ENV", "dev"), "Environment (dev|stag|prod)")
	fs.StringVar(&cfg.Addr, "addr", envStr("FEED_ADDR", ":8080"), "Listen address")
	fs.StringVar(&cfg.DSN, "db-dsn", envStr("DB_DSN", ""), "Postgres DSN to LISTEN on")
	fs.StringVar(&cfg.NotifyChannel, "notify-channel", envStr("NOTIFY_CHANNEL", "messages_changes"), "Postgres NOTIFY channel")
	fs.DurationVar(&cfg.Coalesce, "coalesce", envDuration("FEED_COALESCE", 250*time.Millisecond), "Minimum gap between relayed changes")
	fs.StringVar(&cfg.LogFile, "log-file", envStr("FEED_LOG_FILE", ""), "Log file, stderr when empty")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, errors.New("-db-dsn must be provided")
	}
	if cfg.Coalesce <= 0 {
		return nil, errors.New("-coalesce must be positive")
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Sync.Trigger {
	case TriggerPoll, TriggerPostgres:
	case TriggerWebsocket:
		if cfg.Sync.WebsocketURL == "" {
			return errors.New("-ws-url must be provided with -trigger=ws")
		}
	default:
		return errors.New("-trigger must be one of poll, ws or pg")
	}
	if cfg.Sync.Trigger == TriggerPostgres && cfg.DB.Driver != "pgx" {
		return errors.New("-trigger=pg requires -db-driver=pgx")
	}
	if cfg.Sync.PollInterval <= 0 {
		return errors.New("-poll-interval must be positive")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v, ok := os.LookupEnv("CAMPUSBOARD_" + key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(envStr(key, "")); err == nil {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(envStr(key, "")); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(envStr(key, "")); err == nil {
		return v
	}
	return fallback
}

// ConfigureSlog so that it easy to locate the source file & line as the Goland IDE picks up the relative file path.
func ConfigureSlog(writeTo io.Writer) {
	wd, err := os.Getwd()
	var tintHandler slog.Handler
	if err != nil {
		slog.Error("Unable to find working dir, falling back to default slog Config")
		tintHandler = tint.NewHandler(writeTo, &tint.Options{AddSource: true})
	} else {
		unixPath := filepath.ToSlash(wd)
		tintHandler = tint.NewHandler(writeTo, &tint.Options{
			AddSource: true,
			NoColor:   writeTo != os.Stderr && writeTo != os.Stdout,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == slog.SourceKey {
					source, ok := attr.Value.Any().(*slog.Source)
					if !ok {
						return attr
					}
					var sb strings.Builder
					sb.WriteString("." + strings.TrimPrefix(filepath.ToSlash(source.File), unixPath))
					sb.WriteString(":")
					sb.WriteString(strconv.Itoa(source.Line))
					return slog.String(attr.Key, sb.String())
				}
				return attr
			},
		})
	}
	slog.SetDefault(slog.New(tintHandler))
}

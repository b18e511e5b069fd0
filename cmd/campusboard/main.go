package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/99designs/keyring"
	"github.com/M0hammadUsman/campusboard/internal/client"
	"github.com/M0hammadUsman/campusboard/internal/common"
	"github.com/M0hammadUsman/campusboard/internal/repository"
	"github.com/M0hammadUsman/campusboard/internal/trigger"
	"github.com/M0hammadUsman/campusboard/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := common.ParseFlags(os.Args[1:])
	if err != nil {
		return err
	}
	// the terminal belongs to the TUI, everything is logged to the file
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	common.ConfigureSlog(f)
	slog.Info("starting campusboard", "env", cfg.ENV, "driver", cfg.DB.Driver, "trigger", cfg.Sync.Trigger)

	db, err := repository.OpenDB(repository.Options{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxOpenConn:     cfg.DB.MaxOpenConn,
		MaxIdleConn:     cfg.DB.MaxIdleConn,
		MaxIdleConnTime: cfg.DB.MaxIdleConnTime,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()
	ctx := context.Background()
	if cfg.DB.Migrate {
		if err = db.RunMigrations(ctx); err != nil {
			return fmt.Errorf("migrating store: %w", err)
		}
	}

	trig, err := openTrigger(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("opening refresh trigger: %w", err)
	}
	defer trig.Close()

	kr, err := client.OpenKeyring()
	if err != nil {
		slog.Warn("no OS keyring, the session lasts until exit", "err", err)
		kr = keyring.NewArrayKeyring(nil)
	}
	repo := repository.New(db)
	c := client.New(repo, db, kr, client.WithReadConfirmDelay(cfg.Sync.ReadConfirmDelay))
	defer c.Close()

	if cfg.Username != "" {
		if _, err = c.SignIn(ctx, cfg.Username); err != nil {
			return err
		}
	}

	zone.NewGlobal()
	// subscribe before the first refresh so the initial inbox reaches the views
	m := tui.InitialTabContainerModel(c)
	c.Start(trig)
	if _, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		slog.Error("running tui", "err", err)
		return err
	}
	slog.Info("campusboard exited")
	return nil
}

func openTrigger(ctx context.Context, cfg *common.Config, db *repository.DB) (trigger.Trigger, error) {
	switch cfg.Sync.Trigger {
	case common.TriggerWebsocket:
		return trigger.DialWebsocket(ctx, cfg.Sync.WebsocketURL, cfg.Sync.PollInterval)
	case common.TriggerPostgres:
		if err := db.InstallChangeNotify(ctx, cfg.Sync.NotifyChannel); err != nil {
			return nil, err
		}
		return trigger.ListenPostgres(ctx, cfg.DB.DSN, cfg.Sync.NotifyChannel, cfg.Sync.PollInterval)
	default:
		return trigger.NewTicker(cfg.Sync.PollInterval), nil
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/M0hammadUsman/campusboard/internal/common"
	"github.com/M0hammadUsman/campusboard/internal/repository"
	"github.com/M0hammadUsman/campusboard/internal/server"
	"github.com/M0hammadUsman/campusboard/internal/trigger"
)

func main() {
	common.ConfigureSlog(os.Stderr)
	cfg, err := common.ParseFeedFlags(os.Args[1:])
	if err != nil {
		slog.Error("parsing flags", "err", err)
		os.Exit(1)
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			slog.Error("opening log file", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		common.ConfigureSlog(f)
	}
	if err = run(cfg); err != nil {
		slog.Error("change feed stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *common.FeedConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.OpenDB(repository.Options{
		Driver:          repository.DriverPostgres,
		DSN:             cfg.DSN,
		MaxOpenConn:     2,
		MaxIdleConn:     1,
		MaxIdleConnTime: time.Minute,
	})
	if err != nil {
		return err
	}
	err = db.InstallChangeNotify(ctx, cfg.NotifyChannel)
	db.Close()
	if err != nil {
		return err
	}

	src, err := trigger.ListenPostgres(ctx, cfg.DSN, cfg.NotifyChannel, cfg.Coalesce)
	if err != nil {
		return err
	}
	defer src.Close()

	bt := common.NewBackgroundTask()
	defer bt.Shutdown(5 * time.Second)
	s := server.NewServer(bt)
	bt.Run(func(shtdwnCtx context.Context) { s.Relay(shtdwnCtx, src) })
	slog.Info("relaying store changes", "env", cfg.ENV, "channel", cfg.NotifyChannel)
	return s.Serve(ctx, cfg.Addr)
}

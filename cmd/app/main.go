package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-pg/pg/v10"
	"github.com/namsral/flag"

	"github.com/webportal/cms-backend/config"
	"github.com/webportal/cms-backend/internal/app"
)

var (
	flConfig = flag.String("config", "config.toml", "path to TOML configuration file")
	flDebug  = flag.Bool("debug", false, "enable debug mode")
	cfg      config.Config
	lg       *slog.Logger
)

func main() {
	flag.Parse()

	lg = newLogger(*flDebug)

	_, err := toml.DecodeFile(*flConfig, &cfg)
	if err != nil {
		exitOnError(err)
	}

	ctx := context.Background()

	pgDB := pg.Connect(&cfg.Database)
	if err := pgDB.Ping(ctx); err != nil {
		pgDB.Close()
		exitOnError(err)
	}

	service, err := app.New(ctx, cfg, pgDB, lg)
	if err != nil {
		pgDB.Close()
		exitOnError(err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		err := service.Run()
		if err != nil {
			lg.Error("service run failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	lg.Info("service stopping")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := service.GracefulShutdown(shutdownCtx); err != nil {
		lg.Error("service graceful shutdown failed", "error", err)
	}

	if err := pgDB.Close(); err != nil {
		lg.Error("database close failed", "error", err)
	}
}

func newLogger(debug bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func exitOnError(err error) {
	if err != nil {
		lg.Error("app init failed", "error", err)
		os.Exit(1)
	}
}

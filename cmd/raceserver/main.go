package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/selvatuple/thumb-race-rally/internal/config"
	"github.com/selvatuple/thumb-race-rally/internal/server"
	"github.com/selvatuple/thumb-race-rally/internal/shared/logger"
	"github.com/selvatuple/thumb-race-rally/internal/telemetry"
)

func main() {
	path := flag.String("config", os.Getenv("RACE_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	log, err := logger.NewWithLevel("raceserver", cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid log level:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	srv, err := server.New(cfg, cfg.NewRace(), telemetry.NewStore(telemetry.DefaultCapacity), log)
	if err != nil {
		log.Fatalw("server setup failed", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalw("server failed", "err", err)
	}
	log.Infow("race host stopped")
}

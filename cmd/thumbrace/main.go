package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/selvatuple/thumb-race-rally/internal/config"
	"github.com/selvatuple/thumb-race-rally/internal/shared/logger"
	"github.com/selvatuple/thumb-race-rally/internal/terminal"
)

func main() {
	path := flag.String("config", os.Getenv("RACE_CONFIG"), "path to a YAML config file")
	logPath := flag.String("log", "", "write logs to this file; the screen is not used for logs")
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

	log := logger.Nop()
	if *logPath != "" {
		log, err = logger.NewWithLevel("thumbrace", cfg.Log.Level, *logPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open log:", err)
			os.Exit(1)
		}
	}
	defer func() { _ = log.Sync() }()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.HideCursor()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	log.Infow("local race starting", "finish_line", cfg.Race.FinishLine, "tick_rate", cfg.Race.TickRate)
	terminal.NewGame(screen, cfg.NewRace(), cfg.Terminal.FrameInterval, log).Run(ctx)
}

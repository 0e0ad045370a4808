package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-news-sender/internal/app"
	"github.com/samvad-hq/samvad-news-sender/internal/config"
	"github.com/samvad-hq/samvad-news-sender/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sender start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("sender starting", "config", cfg.Sanitized())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, err := app.NewSender(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize sender", "error", err)
		return err
	}

	if err := sender.Run(ctx); err != nil {
		return fmt.Errorf("sender run: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"budgetbot/internal/config"
	"budgetbot/internal/ledger"
	"budgetbot/internal/log"
	"budgetbot/internal/storage"
	"budgetbot/internal/telegram"
)

func main() {
	cfg := config.Load()
	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), Component: "budgetbot"})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	bot, err := telegram.NewBot(cfg.BotToken, cfg.PollTimeout, logger.WithComponent("telegram"))
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	svc := ledger.New(store, telegram.Admins{Bot: bot}, nil)
	telegram.NewHandler(bot, svc, logger.WithComponent("telegram")).Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("bot started", "db", cfg.SQLiteDBPath)
		bot.Start()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		bot.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("bot stopped gracefully")
}

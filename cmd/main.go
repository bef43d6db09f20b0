package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"anonbot/config"
	"anonbot/pkg/bot"
	"anonbot/pkg/logger"
	"anonbot/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stg, err := postgres.New(ctx, cfg, lg)
	if err != nil {
		lg.Error("storage init", logger.Error(err))
		return
	}
	defer stg.Close()

	b, err := bot.New(cfg, stg, lg)
	if err != nil {
		lg.Error("bot init", logger.Error(err))
		return
	}

	go b.Start()

	<-ctx.Done()
	lg.Info("shutting down")
	b.Stop()
}

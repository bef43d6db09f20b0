package main

import (
	"context"
	"log"

	"anonbot/config"
	"anonbot/pkg/logger"
	"anonbot/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	pg, err := postgres.New(context.Background(), cfg, lg)
	if err != nil {
		panic(err)
	}
	defer pg.Close()

	// CASCADE wipes the mute ledger, message log, links and chats that
	// reference users.
	_, err = pg.GetPool().Exec(context.Background(),
		"TRUNCATE TABLE users, muted_users, message_log, message_links, chat_queue, chat_connections, admin_logs CASCADE")
	if err != nil {
		lg.Error("truncate tables", logger.Error(err))
		return
	}
	lg.Info("all tables truncated")
}

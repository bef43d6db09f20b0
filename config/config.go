package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	BotToken     string
	DatabaseURL  string
	LogChannelID int64
	AdminURL     string

	PollTimeout time.Duration

	BroadcastBatchSize int
	BroadcastDelay     time.Duration
}

// Load reads configuration from the environment (and .env if present).
// BOT_TOKEN, DATABASE_URL, LOG_CHANNEL_ID and ADMIN_URL are required;
// missing any of them is a startup error.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "anonbot"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.BotToken = os.Getenv("BOT_TOKEN")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.LogChannelID = cast.ToInt64(os.Getenv("LOG_CHANNEL_ID"))
	cfg.AdminURL = os.Getenv("ADMIN_URL")

	cfg.PollTimeout = cast.ToDuration(getOrReturnDefault("POLL_TIMEOUT", "10s"))
	cfg.BroadcastBatchSize = cast.ToInt(getOrReturnDefault("BROADCAST_BATCH_SIZE", 30))
	cfg.BroadcastDelay = cast.ToDuration(getOrReturnDefault("BROADCAST_DELAY", "1s"))

	if cfg.BotToken == "" {
		return cfg, fmt.Errorf("BOT_TOKEN is not set")
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.LogChannelID == 0 {
		return cfg, fmt.Errorf("LOG_CHANNEL_ID is not set")
	}
	if cfg.AdminURL == "" {
		return cfg, fmt.Errorf("ADMIN_URL is not set")
	}

	return cfg, nil
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

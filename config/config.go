package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Owner string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	TelegramBotToken string
	TelegramChatID   int64

	PriceRefreshInterval time.Duration
}

func Load() *Config {
	_ = godotenv.Load(".env") // load .env, if exists

	cfg := &Config{
		Owner:      os.Getenv("PORTFOLIO_OWNER"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASS"),
		DBName:     os.Getenv("DB_NAME"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		PriceRefreshInterval: 60 * time.Second,
	}

	if cfg.Owner == "" {
		cfg.Owner = "local"
	}
	if chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.TelegramChatID = chatID
	}
	if secs, err := strconv.Atoi(os.Getenv("PRICE_REFRESH_SECONDS")); err == nil && secs > 0 {
		cfg.PriceRefreshInterval = time.Duration(secs) * time.Second
	}

	return cfg
}

// HasDatabase reports whether a Postgres cache backend is configured;
// without one the cache falls back to memory.
func (c *Config) HasDatabase() bool {
	return c.DBHost != ""
}

// HasTelegram reports whether event notifications are configured.
func (c *Config) HasTelegram() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

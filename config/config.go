package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken    string
	MongoURI    string
	MongoDB     string
	HTTPAddr    string
	JWTSecret   string
	// Bcrypt hash of the admin dashboard password. Empty disables dashboard
	// auth (local development only).
	AdminPasswordHash string
	// External payment bot advertised in upgrade prompts.
	PremiumURL   string
	LogRetention time.Duration
	SessionTTL   time.Duration
	Debug        bool
}

// Load reads environment variables into Config with sane defaults for local dev.
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:          os.Getenv("TELEGRAM_BOT_TOKEN"),
		MongoURI:          getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:           getEnv("MONGODB_DB", "lemon16"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		PremiumURL:        getEnv("PREMIUM_URL", "https://t.me/lemon16pay_bot"),
		Debug:             getEnv("DEBUG", "") != "",
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN must be set")
	}
	if cfg.AdminPasswordHash != "" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set when ADMIN_PASSWORD_HASH is set")
	}

	days, err := strconv.Atoi(getEnv("LOG_RETENTION_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_RETENTION_DAYS: %w", err)
	}
	cfg.LogRetention = time.Duration(days) * 24 * time.Hour

	hours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

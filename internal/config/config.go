package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken   string
	QueueChannelID string

	// Database
	DatabasePath string

	// Update cycle
	UpdateInterval time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		QueueChannelID: os.Getenv("QUEUE_CHANNEL_ID"),
		DatabasePath:   getEnvOrDefault("DATABASE_PATH", "./data/bot.db"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Parse update interval
	intervalStr := getEnvOrDefault("UPDATE_INTERVAL_MINUTES", "10")
	minutes, err := strconv.Atoi(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UPDATE_INTERVAL_MINUTES: %w", err)
	}
	if minutes <= 0 {
		return nil, fmt.Errorf("UPDATE_INTERVAL_MINUTES must be positive, got %d", minutes)
	}
	cfg.UpdateInterval = time.Duration(minutes) * time.Minute

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.QueueChannelID == "" {
		return nil, fmt.Errorf("QUEUE_CHANNEL_ID is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Telegram
	BotToken    string
	PollTimeout time.Duration

	// Database
	SQLiteDBPath string

	// Logging
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BotToken:     getEnv("BOT_TOKEN", ""),
		PollTimeout:  getEnvDuration("POLL_TIMEOUT", 10*time.Second),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budgetbot.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.BotToken == "" {
		errors = append(errors, "BOT_TOKEN is required")
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.PollTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid poll timeout %v: must be at least 1 second", c.PollTimeout))
	} else if c.PollTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid poll timeout %v: must be at most 1 minute", c.PollTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

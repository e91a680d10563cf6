// Package config loads server configuration from the environment.
//
// A .env file in the working directory is read first when present, so
// local development needs no exported variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server's runtime settings.
type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Reminder scheduler
	ReminderInterval time.Duration
	ReminderEnabled  bool
}

// Load reads configuration from .env (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./data/payfriendly.db"),
		ReminderInterval: getEnvDuration("REMINDER_INTERVAL", 1*time.Hour),
		ReminderEnabled:  getEnvBool("REMINDER_ENABLED", true),
	}
}

// Validate returns an error describing the first invalid setting.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	if c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLITE_DB_PATH must not be empty")
	}
	if c.ReminderInterval < time.Minute {
		return fmt.Errorf("invalid REMINDER_INTERVAL %v: must be at least one minute", c.ReminderInterval)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

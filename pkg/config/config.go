package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the application settings.
type Config struct {
	DBPath     string
	ListenAddr string
	SessionTTL time.Duration
}

// Load reads configuration from a .env file and the environment,
// falling back to defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using environment")
	}

	ttl, err := time.ParseDuration(os.Getenv("SESSION_TTL"))
	if err != nil {
		ttl = 7 * 24 * time.Hour
	}

	return &Config{
		DBPath:     getEnv("DB_PATH", "villagebank.db"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		SessionTTL: ttl,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

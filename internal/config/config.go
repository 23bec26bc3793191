package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	RedisURL string

	BadgeCatalogPath string

	// SnapshotCron fires the nightly leaderboard snapshot job. Shortly
	// after midnight so "today" has rolled over at the day boundary.
	SnapshotCron string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		RedisURL: os.Getenv("REDIS_URL"),

		BadgeCatalogPath: getEnv("BADGE_CATALOG_PATH", "catalog/badges.json"),
		SnapshotCron:     getEnv("SNAPSHOT_CRON", "5 0 * * *"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

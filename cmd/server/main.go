package main

import (
	"log"

	"github.com/redis/go-redis/v9"

	"lentera.id/elearning/internal/bootstrap"
	"lentera.id/elearning/internal/config"
	"lentera.id/elearning/internal/repository"
	"lentera.id/elearning/internal/server"
	"lentera.id/elearning/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	badgeRepo := repository.NewBadgeRepository(db)
	if err := bootstrap.SeedBadgeCatalog(badgeRepo, cfg.BadgeCatalogPath); err != nil {
		log.Fatalf("failed to seed badge catalog: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("⚠️ REDIS_URL not set, leaderboard caching disabled")
	}

	srv := server.NewServer(cfg, db, redisClient)
	defer srv.Shutdown()

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

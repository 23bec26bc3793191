package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"lentera.id/elearning/internal/config"
	"lentera.id/elearning/internal/handler"
	"lentera.id/elearning/internal/middleware"
	"lentera.id/elearning/internal/repository"
	"lentera.id/elearning/internal/scheduler"
	"lentera.id/elearning/internal/service"
)

type Server struct {
	engine    *gin.Engine
	db        *gorm.DB
	scheduler *scheduler.Scheduler
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	progressRepo := repository.NewProgressRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	progressSvc := service.NewProgressService(progressRepo)
	badgeSvc := service.NewBadgeService(badgeRepo, progressRepo, progressSvc)
	streakSvc := service.NewStreakService(streakRepo, progressSvc, badgeSvc)
	completionSvc := service.NewCompletionService(completionRepo, progressSvc, badgeSvc)
	leaderboardSvc := service.NewLeaderboardService(progressRepo, completionRepo, snapshotRepo, redisClient)
	snapshotSvc := service.NewSnapshotService(progressRepo, completionRepo, snapshotRepo)

	sched := scheduler.NewScheduler()
	sched.RegisterJob(scheduler.NewSnapshotJob(snapshotSvc, cfg.SnapshotCron))
	sched.Start()

	gamificationHandler := handler.NewGamificationHandler(streakSvc, badgeSvc, progressSvc, completionSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	adminHandler := handler.NewAdminHandler(sched)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware()

	api := router.Group("/api")

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/leaderboard/snapshots", adminHandler.TriggerSnapshots)
		}

		// Gamification routes
		protected.POST("/gamification/checkin", gamificationHandler.Checkin)
		protected.POST("/gamification/badges/check", gamificationHandler.CheckBadges)
		protected.GET("/gamification/badges", gamificationHandler.GetEarnedBadges)
		protected.GET("/gamification/progress", gamificationHandler.GetMyProgress)
		protected.POST("/gamification/completions", gamificationHandler.RecordCompletion)

		// Leaderboard routes
		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	}

	return &Server{
		engine:    router,
		db:        db,
		scheduler: sched,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) Shutdown() {
	s.scheduler.Stop()
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

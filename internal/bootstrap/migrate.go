package bootstrap

import (
	"gorm.io/gorm"
	"lentera.id/elearning/internal/model"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.UserProgress{},
		&model.StreakLog{},
		&model.LessonCompletion{},
		&model.Badge{},
		&model.UserBadge{},
		&model.LeaderboardSnapshot{},
	)
}

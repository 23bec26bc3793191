package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lentera.id/elearning/internal/model"
)

type StreakRepository interface {
	// CreateLog inserts the check-in row for (user, day). Returns false
	// when the row already exists -- the unique index decides the
	// same-day race, losers must treat it as "already checked in".
	CreateLog(log *model.StreakLog) (bool, error)
	GetLog(userID uuid.UUID, date time.Time) (*model.StreakLog, error)
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) CreateLog(log *model.StreakLog) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "checkin_date"}},
		DoNothing: true,
	}).Create(log)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *streakRepository) GetLog(userID uuid.UUID, date time.Time) (*model.StreakLog, error) {
	var log model.StreakLog
	err := r.db.Where("user_id = ? AND checkin_date = ?", userID, date).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

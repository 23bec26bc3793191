package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lentera.id/elearning/internal/model"
)

type ProgressRepository interface {
	GetByUserID(userID uuid.UUID) (*model.UserProgress, error)
	GetOrCreate(userID uuid.UUID) (*model.UserProgress, error)
	IncrementCounters(userID uuid.UUID, xpDelta, lessonsDelta int) error
	SetStreak(userID uuid.UUID, current, longest int) error
	TouchLastActive(userID uuid.UUID, at time.Time) error
	// UpdateLevelIfXPUnchanged writes the derived level/title only if
	// total_xp still equals expectedXP. Returns false when a concurrent
	// XP award changed the total in between (caller should re-read and
	// retry).
	UpdateLevelIfXPUnchanged(userID uuid.UUID, expectedXP, level int, title string) (bool, error)
	ListTopByXP(limit, offset int) ([]model.UserProgress, error)
	ListAllByXP() ([]model.UserProgress, error)
	ListByUserIDs(userIDs []uuid.UUID) ([]model.UserProgress, error)
	CountAll() (int64, error)
	CountWithXPGreaterThan(xp int) (int64, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetByUserID(userID uuid.UUID) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.db.Where("user_id = ?", userID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

func (r *progressRepository) GetOrCreate(userID uuid.UUID) (*model.UserProgress, error) {
	// Insert an all-zero row if the user has no progress yet; a concurrent
	// first touch simply loses the insert and reads the existing row.
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&model.UserProgress{
		UserID:     userID,
		Level:      1,
		LevelTitle: "Pemula",
	}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(userID)
}

func (r *progressRepository) IncrementCounters(userID uuid.UUID, xpDelta, lessonsDelta int) error {
	// Single-statement atomic adds, same pattern as the point upsert the
	// forum's stats table used: no read-modify-write on the counters.
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_xp":          gorm.Expr("user_progresses.total_xp + ?", xpDelta),
			"lessons_completed": gorm.Expr("user_progresses.lessons_completed + ?", lessonsDelta),
			"updated_at":        gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&model.UserProgress{
		UserID:           userID,
		TotalXP:          xpDelta,
		Level:            1,
		LevelTitle:       "Pemula",
		LessonsCompleted: lessonsDelta,
	}).Error
}

func (r *progressRepository) SetStreak(userID uuid.UUID, current, longest int) error {
	return r.db.Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"current_streak": current,
			"longest_streak": longest,
		}).Error
}

func (r *progressRepository) TouchLastActive(userID uuid.UUID, at time.Time) error {
	return r.db.Model(&model.UserProgress{}).
		Where("user_id = ?", userID).
		Update("last_active_at", at).Error
}

func (r *progressRepository) UpdateLevelIfXPUnchanged(userID uuid.UUID, expectedXP, level int, title string) (bool, error) {
	result := r.db.Model(&model.UserProgress{}).
		Where("user_id = ? AND total_xp = ?", userID, expectedXP).
		Updates(map[string]interface{}{
			"level":       level,
			"level_title": title,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *progressRepository) ListTopByXP(limit, offset int) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	// user_id as secondary order keeps pagination deterministic for
	// equal-XP users; they still get distinct sequential ranks.
	err := r.db.Order("total_xp DESC, user_id ASC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (r *progressRepository) ListAllByXP() ([]model.UserProgress, error) {
	var rows []model.UserProgress
	err := r.db.Order("total_xp DESC, user_id ASC").Find(&rows).Error
	return rows, err
}

func (r *progressRepository) ListByUserIDs(userIDs []uuid.UUID) ([]model.UserProgress, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []model.UserProgress
	err := r.db.Where("user_id IN ?", userIDs).Find(&rows).Error
	return rows, err
}

func (r *progressRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.UserProgress{}).Count(&count).Error
	return count, err
}

func (r *progressRepository) CountWithXPGreaterThan(xp int) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserProgress{}).
		Where("total_xp > ?", xp).
		Count(&count).Error
	return count, err
}

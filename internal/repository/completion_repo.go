package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"lentera.id/elearning/internal/model"
)

// UserXPSum is one row of a group-by-user XP aggregation.
type UserXPSum struct {
	UserID uuid.UUID
	XP     int
}

type CompletionRepository interface {
	Create(completion *model.LessonCompletion) error
	SumXPSince(userID uuid.UUID, since time.Time) (int, error)
	HasCompletionSince(userID uuid.UUID, since time.Time) (bool, error)
	// ListXPSumsSince returns per-user XP totals for completions at or
	// after since, ordered by XP descending. limit <= 0 means no limit.
	ListXPSumsSince(since time.Time, limit, offset int) ([]UserXPSum, error)
	CountUsersSince(since time.Time) (int64, error)
	// CountUsersRankedAboveSince counts the users sorted strictly before
	// (xp, userID) in the weekly ordering (xp DESC, user_id ASC). Tied XP
	// is broken by user_id, the same way the paginated list sorts, so an
	// off-page rank always equals the user's position in the full list.
	CountUsersRankedAboveSince(since time.Time, xp int, userID uuid.UUID) (int64, error)
}

type completionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) CompletionRepository {
	return &completionRepository{db: db}
}

func (r *completionRepository) Create(completion *model.LessonCompletion) error {
	return r.db.Create(completion).Error
}

func (r *completionRepository) SumXPSince(userID uuid.UUID, since time.Time) (int, error) {
	var sum int
	err := r.db.Model(&model.LessonCompletion{}).
		Select("COALESCE(SUM(xp_earned), 0)").
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Scan(&sum).Error
	return sum, err
}

func (r *completionRepository) HasCompletionSince(userID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.LessonCompletion{}).
		Where("user_id = ? AND completed_at >= ?", userID, since).
		Count(&count).Error
	return count > 0, err
}

func (r *completionRepository) ListXPSumsSince(since time.Time, limit, offset int) ([]UserXPSum, error) {
	var sums []UserXPSum
	query := r.db.Model(&model.LessonCompletion{}).
		Select("user_id, SUM(xp_earned) as xp").
		Where("completed_at >= ?", since).
		Group("user_id").
		Order("xp DESC, user_id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	err := query.Scan(&sums).Error
	return sums, err
}

func (r *completionRepository) CountUsersSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.LessonCompletion{}).
		Where("completed_at >= ?", since).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

func (r *completionRepository) CountUsersRankedAboveSince(since time.Time, xp int, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.LessonCompletion{}).
		Select("user_id").
		Where("completed_at >= ?", since).
		Group("user_id").
		Having("SUM(xp_earned) > ? OR (SUM(xp_earned) = ? AND user_id < ?)", xp, xp, userID).
		Count(&count).Error
	return count, err
}

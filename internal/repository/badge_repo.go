package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lentera.id/elearning/internal/model"
)

type BadgeRepository interface {
	UpsertBySlug(badge *model.Badge) error
	ListAll() ([]model.Badge, error)
	ListEarned(userID uuid.UUID) ([]model.UserBadge, error)
	ListEarnedIDs(userID uuid.UUID) ([]uint, error)
	// CreateAwardWithXP inserts the award row and, when the badge carries
	// an XP reward, applies the increment in the same transaction so the
	// award and its bonus commit as one step. Returns false if the user
	// already holds the badge (nothing written).
	CreateAwardWithXP(award *model.UserBadge, xpReward int) (bool, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) UpsertBySlug(badge *model.Badge) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "icon", "category",
			"requirement_type", "threshold", "xp_reward", "is_secret",
		}),
	}).Create(badge).Error
}

func (r *badgeRepository) ListAll() ([]model.Badge, error) {
	var badges []model.Badge
	err := r.db.Order("id ASC").Find(&badges).Error
	return badges, err
}

func (r *badgeRepository) ListEarned(userID uuid.UUID) ([]model.UserBadge, error) {
	var earned []model.UserBadge
	err := r.db.Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&earned).Error
	return earned, err
}

func (r *badgeRepository) ListEarnedIDs(userID uuid.UUID) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	return ids, err
}

func (r *badgeRepository) CreateAwardWithXP(award *model.UserBadge, xpReward int) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).Create(award)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already earned, leave XP untouched.
			return nil
		}
		created = true

		if xpReward > 0 {
			return tx.Model(&model.UserProgress{}).
				Where("user_id = ?", award.UserID).
				Update("total_xp", gorm.Expr("total_xp + ?", xpReward)).Error
		}
		return nil
	})
	return created, err
}

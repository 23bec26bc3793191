package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"lentera.id/elearning/internal/model"
	"lentera.id/elearning/internal/repository"
	"lentera.id/elearning/pkg/apperror"
)

type BadgeService interface {
	// CheckAndAwardBadges scans the catalog against the user's current
	// progress and awards every newly satisfied badge. Idempotent: a
	// second immediate run awards nothing.
	CheckAndAwardBadges(userID uuid.UUID) ([]model.Badge, error)
	ListEarned(userID uuid.UUID) ([]model.UserBadge, error)
}

type badgeService struct {
	badgeRepo       repository.BadgeRepository
	progressRepo    repository.ProgressRepository
	progressService ProgressService
	now             func() time.Time
}

func NewBadgeService(
	badgeRepo repository.BadgeRepository,
	progressRepo repository.ProgressRepository,
	progressService ProgressService,
) BadgeService {
	return &badgeService{
		badgeRepo:       badgeRepo,
		progressRepo:    progressRepo,
		progressService: progressService,
		now:             time.Now,
	}
}

func (s *badgeService) CheckAndAwardBadges(userID uuid.UUID) ([]model.Badge, error) {
	catalog, err := s.badgeRepo.ListAll()
	if err != nil {
		return nil, err
	}

	earnedIDs, err := s.badgeRepo.ListEarnedIDs(userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[uint]bool, len(earnedIDs))
	for _, id := range earnedIDs {
		earned[id] = true
	}

	// One progress read for the whole pass, not one per badge.
	progress, err := s.progressRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, fmt.Errorf("progress for user %s: %w", userID, apperror.ErrNotFound)
	}

	var awarded []model.Badge
	for _, badge := range catalog {
		if earned[badge.ID] {
			continue
		}
		if !meetsRequirement(badge, progress) {
			continue
		}

		created, err := s.badgeRepo.CreateAwardWithXP(&model.UserBadge{
			UserID:   userID,
			BadgeID:  badge.ID,
			EarnedAt: s.now(),
		}, badge.XPReward)
		if err != nil {
			return awarded, err
		}
		if !created {
			// A concurrent evaluation got there first; not an error.
			continue
		}

		if badge.XPReward > 0 {
			// The increment committed with the award; keep the cached
			// level/title in step with the new total.
			if err := s.progressService.RecomputeLevel(userID); err != nil {
				return awarded, err
			}
		}
		awarded = append(awarded, badge)
	}

	return awarded, nil
}

func (s *badgeService) ListEarned(userID uuid.UUID) ([]model.UserBadge, error) {
	return s.badgeRepo.ListEarned(userID)
}

// meetsRequirement dispatches the badge's tagged predicate against the
// progress snapshot. Each badge has exactly one trigger field.
func meetsRequirement(badge model.Badge, progress *model.UserProgress) bool {
	switch badge.RequirementType {
	case model.RequirementLessonsCompleted:
		return progress.LessonsCompleted >= badge.Threshold
	case model.RequirementStreakDays:
		// Longest streak, so a badge earned mid-streak is not blocked by
		// evaluation timing after a reset.
		return progress.LongestStreak >= badge.Threshold
	case model.RequirementLevel:
		return progress.Level >= badge.Threshold
	case model.RequirementTotalXP:
		return progress.TotalXP >= badge.Threshold
	default:
		// special badges only ever come from an explicit grant.
		return false
	}
}

package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"lentera.id/elearning/internal/model"
	"lentera.id/elearning/internal/repository"
)

// levelRecomputeAttempts bounds the optimistic retry loop when concurrent
// XP awards keep moving the total under us.
const levelRecomputeAttempts = 5

// ProgressService is the single funnel for XP mutations. Counters are
// incremented atomically at the storage layer; the derived level/title pair
// is then recomputed with an optimistic conditional write so two concurrent
// awards cannot commit a level computed from a stale total.
type ProgressService interface {
	GetOrCreate(userID uuid.UUID) (*model.UserProgress, error)
	Get(userID uuid.UUID) (*model.UserProgress, error)
	AwardXP(userID uuid.UUID, xpDelta, lessonsDelta int) error
	RecomputeLevel(userID uuid.UUID) error
	SetStreak(userID uuid.UUID, current, longest int) error
	TouchLastActive(userID uuid.UUID, at time.Time) error
}

type progressService struct {
	repo repository.ProgressRepository
}

func NewProgressService(repo repository.ProgressRepository) ProgressService {
	return &progressService{repo: repo}
}

func (s *progressService) GetOrCreate(userID uuid.UUID) (*model.UserProgress, error) {
	return s.repo.GetOrCreate(userID)
}

func (s *progressService) Get(userID uuid.UUID) (*model.UserProgress, error) {
	return s.repo.GetByUserID(userID)
}

func (s *progressService) AwardXP(userID uuid.UUID, xpDelta, lessonsDelta int) error {
	if xpDelta < 0 {
		return fmt.Errorf("xp delta must be non-negative, got %d", xpDelta)
	}
	if err := s.repo.IncrementCounters(userID, xpDelta, lessonsDelta); err != nil {
		return fmt.Errorf("failed to increment counters for user %s: %w", userID, err)
	}
	return s.RecomputeLevel(userID)
}

func (s *progressService) RecomputeLevel(userID uuid.UUID) error {
	for attempt := 0; attempt < levelRecomputeAttempts; attempt++ {
		progress, err := s.repo.GetByUserID(userID)
		if err != nil {
			return err
		}
		if progress == nil {
			return fmt.Errorf("progress for user %s not found", userID)
		}

		level := CalculateLevel(progress.TotalXP)
		title := LevelTitle(level)
		if progress.Level == level && progress.LevelTitle == title {
			return nil
		}

		ok, err := s.repo.UpdateLevelIfXPUnchanged(userID, progress.TotalXP, level, title)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		// Lost the race against a concurrent award; re-read and retry.
	}
	return fmt.Errorf("level recompute for user %s kept conflicting, giving up", userID)
}

func (s *progressService) SetStreak(userID uuid.UUID, current, longest int) error {
	return s.repo.SetStreak(userID, current, longest)
}

func (s *progressService) TouchLastActive(userID uuid.UUID, at time.Time) error {
	return s.repo.TouchLastActive(userID, at)
}

package service

import (
	"log"
	"time"

	"github.com/google/uuid"
	"lentera.id/elearning/internal/dto"
	"lentera.id/elearning/internal/model"
	"lentera.id/elearning/internal/repository"
)

// CompletionResult reports everything a completed lesson earned, with the
// bonus breakdown kept separate so the client can show where the XP came
// from.
type CompletionResult struct {
	Breakdown  XPBreakdown   `json:"breakdown"`
	Daily      DailyXP       `json:"daily"`
	XPAwarded  int           `json:"xp_awarded"`
	TotalXP    int           `json:"total_xp"`
	Level      int           `json:"level"`
	LevelTitle string        `json:"level_title"`
	NewBadges  []model.Badge `json:"new_badges"`
}

// CompletionService is the engine-side endpoint of the lesson completion
// flow. The lesson service owns the content and supplies base XP and the
// time estimate; everything gamification-related happens here.
type CompletionService interface {
	RecordCompletion(userID uuid.UUID, req dto.RecordCompletionRequest) (*CompletionResult, error)
}

type completionService struct {
	completionRepo  repository.CompletionRepository
	progressService ProgressService
	badgeService    BadgeService
	now             func() time.Time
}

func NewCompletionService(
	completionRepo repository.CompletionRepository,
	progressService ProgressService,
	badgeService BadgeService,
) CompletionService {
	return &completionService{
		completionRepo:  completionRepo,
		progressService: progressService,
		badgeService:    badgeService,
		now:             time.Now,
	}
}

func (s *completionService) RecordCompletion(userID uuid.UUID, req dto.RecordCompletionRequest) (*CompletionResult, error) {
	now := s.now()
	today := StartOfDay(now)

	progress, err := s.progressService.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	isFirstToday, err := s.completionRepo.HasCompletionSince(userID, today)
	if err != nil {
		return nil, err
	}
	isFirstToday = !isFirstToday

	breakdown := LessonCompletionXP(req.BaseXP, req.TimeSpentSeconds, req.EstimatedMinutes, req.QuizScore)
	daily := ApplyDailyMultipliers(breakdown.Total, progress.CurrentStreak, isFirstToday)

	if err := s.completionRepo.Create(&model.LessonCompletion{
		UserID:      userID,
		LessonID:    req.LessonID,
		XPEarned:    daily.Total,
		CompletedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := s.progressService.AwardXP(userID, daily.Total, 1); err != nil {
		return nil, err
	}
	if err := s.progressService.TouchLastActive(userID, now); err != nil {
		return nil, err
	}

	newBadges, err := s.badgeService.CheckAndAwardBadges(userID)
	if err != nil {
		// The completion and its XP are committed; the evaluator runs
		// again on the next progress event.
		log.Printf("badge evaluation after completion failed for user %s: %v", userID, err)
	}

	updated, err := s.progressService.Get(userID)
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{
		Breakdown: breakdown,
		Daily:     daily,
		XPAwarded: daily.Total,
		NewBadges: newBadges,
	}
	if updated != nil {
		result.TotalXP = updated.TotalXP
		result.Level = updated.Level
		result.LevelTitle = updated.LevelTitle
	}
	return result, nil
}

package service

import (
	"log"
	"time"

	"github.com/google/uuid"
	"lentera.id/elearning/internal/model"
	"lentera.id/elearning/internal/repository"
)

// CheckinResult reports the outcome of a daily check-in. A repeated call on
// the same calendar day is not an error: AlreadyCheckedIn is set, BonusXP
// is zero and the streak is untouched.
type CheckinResult struct {
	CurrentStreak    int           `json:"current_streak"`
	LongestStreak    int           `json:"longest_streak"`
	BonusXP          int           `json:"bonus_xp"`
	AlreadyCheckedIn bool          `json:"already_checked_in"`
	NewBadges        []model.Badge `json:"new_badges"`
}

type StreakService interface {
	Checkin(userID uuid.UUID) (*CheckinResult, error)
}

type streakService struct {
	streakRepo      repository.StreakRepository
	progressService ProgressService
	badgeService    BadgeService
	now             func() time.Time
}

func NewStreakService(
	streakRepo repository.StreakRepository,
	progressService ProgressService,
	badgeService BadgeService,
) StreakService {
	return &streakService{
		streakRepo:      streakRepo,
		progressService: progressService,
		badgeService:    badgeService,
		now:             time.Now,
	}
}

func (s *streakService) Checkin(userID uuid.UUID) (*CheckinResult, error) {
	now := s.now()
	today := StartOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	progress, err := s.progressService.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.streakRepo.GetLog(userID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CheckinResult{
			CurrentStreak:    progress.CurrentStreak,
			LongestStreak:    progress.LongestStreak,
			AlreadyCheckedIn: true,
		}, nil
	}

	// A missing yesterday row means the chain broke; any gap longer than
	// one day restarts the streak at 1.
	newStreak := 1
	yesterdayLog, err := s.streakRepo.GetLog(userID, yesterday)
	if err != nil {
		return nil, err
	}
	if yesterdayLog != nil {
		newStreak = progress.CurrentStreak + 1
	}

	bonus := StreakBonus(newStreak)

	created, err := s.streakRepo.CreateLog(&model.StreakLog{
		UserID:      userID,
		CheckinDate: today,
		CheckedIn:   true,
		BonusXP:     bonus,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the same-day insert race: the other request checked us in.
		return &CheckinResult{
			CurrentStreak:    progress.CurrentStreak,
			LongestStreak:    progress.LongestStreak,
			AlreadyCheckedIn: true,
		}, nil
	}

	longest := progress.LongestStreak
	if newStreak > longest {
		longest = newStreak
	}

	if err := s.progressService.AwardXP(userID, bonus, 0); err != nil {
		return nil, err
	}
	if err := s.progressService.SetStreak(userID, newStreak, longest); err != nil {
		return nil, err
	}
	if err := s.progressService.TouchLastActive(userID, now); err != nil {
		return nil, err
	}

	newBadges, err := s.badgeService.CheckAndAwardBadges(userID)
	if err != nil {
		// The check-in itself committed; badge evaluation can be re-run
		// on the next progress event.
		log.Printf("badge evaluation after checkin failed for user %s: %v", userID, err)
	}

	return &CheckinResult{
		CurrentStreak: newStreak,
		LongestStreak: longest,
		BonusXP:       bonus,
		NewBadges:     newBadges,
	}, nil
}

package service

import (
	"log"
	"time"

	"lentera.id/elearning/internal/model"
	"lentera.id/elearning/internal/repository"
)

// SnapshotService materializes the complete (unpaginated) GLOBAL and WEEKLY
// rankings into one snapshot row per user per day. Tomorrow's rank-change
// arrows are diffed against these rows.
type SnapshotService interface {
	CreateDailySnapshots() error
}

type snapshotService struct {
	progressRepo   repository.ProgressRepository
	completionRepo repository.CompletionRepository
	snapshotRepo   repository.SnapshotRepository
	now            func() time.Time
}

func NewSnapshotService(
	progressRepo repository.ProgressRepository,
	completionRepo repository.CompletionRepository,
	snapshotRepo repository.SnapshotRepository,
) SnapshotService {
	return &snapshotService{
		progressRepo:   progressRepo,
		completionRepo: completionRepo,
		snapshotRepo:   snapshotRepo,
		now:            time.Now,
	}
}

func (s *snapshotService) CreateDailySnapshots() error {
	today := StartOfDay(s.now())

	if err := s.snapshotGlobal(today); err != nil {
		return err
	}
	return s.snapshotWeekly(today)
}

func (s *snapshotService) snapshotGlobal(today time.Time) error {
	rows, err := s.progressRepo.ListAllByXP()
	if err != nil {
		return err
	}

	snapshots := make([]model.LeaderboardSnapshot, 0, len(rows))
	for i, progress := range rows {
		snapshots = append(snapshots, model.LeaderboardSnapshot{
			UserID:       progress.UserID,
			SnapshotDate: today,
			BoardType:    model.BoardTypeGlobal,
			Rank:         i + 1,
			XP:           progress.TotalXP,
		})
	}

	if err := s.snapshotRepo.CreateSkipDuplicates(snapshots); err != nil {
		return err
	}
	log.Printf("📸 Global leaderboard snapshot written: %d users", len(snapshots))
	return nil
}

func (s *snapshotService) snapshotWeekly(today time.Time) error {
	weekStart := StartOfWeek(s.now())
	sums, err := s.completionRepo.ListXPSumsSince(weekStart, 0, 0)
	if err != nil {
		return err
	}

	snapshots := make([]model.LeaderboardSnapshot, 0, len(sums))
	for i, sum := range sums {
		snapshots = append(snapshots, model.LeaderboardSnapshot{
			UserID:       sum.UserID,
			SnapshotDate: today,
			BoardType:    model.BoardTypeWeekly,
			Rank:         i + 1,
			XP:           sum.XP,
		})
	}

	if err := s.snapshotRepo.CreateSkipDuplicates(snapshots); err != nil {
		return err
	}
	log.Printf("📸 Weekly leaderboard snapshot written: %d users", len(snapshots))
	return nil
}

package service

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"lentera.id/elearning/internal/model"
	"lentera.id/elearning/internal/repository"
)

// In-memory fakes for the storage interfaces. They reproduce the two
// behaviors the services lean on: atomic counter adds and unique-key
// inserts that report whether a row was actually written.

type fakeProgressRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.UserProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{byID: make(map[uuid.UUID]*model.UserProgress)}
}

func (r *fakeProgressRepo) GetByUserID(userID uuid.UUID) (*model.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	progress, ok := r.byID[userID]
	if !ok {
		return nil, nil
	}
	clone := *progress
	return &clone, nil
}

func (r *fakeProgressRepo) GetOrCreate(userID uuid.UUID) (*model.UserProgress, error) {
	r.mu.Lock()
	if _, ok := r.byID[userID]; !ok {
		r.byID[userID] = &model.UserProgress{
			UserID:     userID,
			Level:      1,
			LevelTitle: "Pemula",
		}
	}
	r.mu.Unlock()
	return r.GetByUserID(userID)
}

func (r *fakeProgressRepo) IncrementCounters(userID uuid.UUID, xpDelta, lessonsDelta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	progress, ok := r.byID[userID]
	if !ok {
		progress = &model.UserProgress{UserID: userID, Level: 1, LevelTitle: "Pemula"}
		r.byID[userID] = progress
	}
	progress.TotalXP += xpDelta
	progress.LessonsCompleted += lessonsDelta
	return nil
}

func (r *fakeProgressRepo) SetStreak(userID uuid.UUID, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if progress, ok := r.byID[userID]; ok {
		progress.CurrentStreak = current
		progress.LongestStreak = longest
	}
	return nil
}

func (r *fakeProgressRepo) TouchLastActive(userID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if progress, ok := r.byID[userID]; ok {
		progress.LastActiveAt = &at
	}
	return nil
}

func (r *fakeProgressRepo) UpdateLevelIfXPUnchanged(userID uuid.UUID, expectedXP, level int, title string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	progress, ok := r.byID[userID]
	if !ok || progress.TotalXP != expectedXP {
		return false, nil
	}
	progress.Level = level
	progress.LevelTitle = title
	return true, nil
}

func (r *fakeProgressRepo) sortedByXP() []model.UserProgress {
	rows := make([]model.UserProgress, 0, len(r.byID))
	for _, progress := range r.byID {
		rows = append(rows, *progress)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalXP != rows[j].TotalXP {
			return rows[i].TotalXP > rows[j].TotalXP
		}
		return rows[i].UserID.String() < rows[j].UserID.String()
	})
	return rows
}

func (r *fakeProgressRepo) ListTopByXP(limit, offset int) ([]model.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.sortedByXP()
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeProgressRepo) ListAllByXP() ([]model.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedByXP(), nil
}

func (r *fakeProgressRepo) ListByUserIDs(userIDs []uuid.UUID) ([]model.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []model.UserProgress
	for _, id := range userIDs {
		if progress, ok := r.byID[id]; ok {
			rows = append(rows, *progress)
		}
	}
	return rows, nil
}

func (r *fakeProgressRepo) CountAll() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *fakeProgressRepo) CountWithXPGreaterThan(xp int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, progress := range r.byID {
		if progress.TotalXP > xp {
			count++
		}
	}
	return count, nil
}

type streakKey struct {
	userID uuid.UUID
	date   string
}

type fakeStreakRepo struct {
	mu   sync.Mutex
	logs map[streakKey]*model.StreakLog
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{logs: make(map[streakKey]*model.StreakLog)}
}

func (r *fakeStreakRepo) key(userID uuid.UUID, date time.Time) streakKey {
	return streakKey{userID: userID, date: date.Format("2006-01-02")}
}

func (r *fakeStreakRepo) CreateLog(log *model.StreakLog) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(log.UserID, log.CheckinDate)
	if _, exists := r.logs[k]; exists {
		return false, nil
	}
	clone := *log
	r.logs[k] = &clone
	return true, nil
}

func (r *fakeStreakRepo) GetLog(userID uuid.UUID, date time.Time) (*model.StreakLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[r.key(userID, date)]
	if !ok {
		return nil, nil
	}
	clone := *log
	return &clone, nil
}

type fakeCompletionRepo struct {
	mu          sync.Mutex
	completions []model.LessonCompletion
}

func newFakeCompletionRepo() *fakeCompletionRepo {
	return &fakeCompletionRepo{}
}

func (r *fakeCompletionRepo) Create(completion *model.LessonCompletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, *completion)
	return nil
}

func (r *fakeCompletionRepo) SumXPSince(userID uuid.UUID, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := 0
	for _, c := range r.completions {
		if c.UserID == userID && !c.CompletedAt.Before(since) {
			sum += c.XPEarned
		}
	}
	return sum, nil
}

func (r *fakeCompletionRepo) HasCompletionSince(userID uuid.UUID, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.completions {
		if c.UserID == userID && !c.CompletedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCompletionRepo) xpSumsSince(since time.Time) []repository.UserXPSum {
	totals := make(map[uuid.UUID]int)
	for _, c := range r.completions {
		if !c.CompletedAt.Before(since) {
			totals[c.UserID] += c.XPEarned
		}
	}
	sums := make([]repository.UserXPSum, 0, len(totals))
	for userID, xp := range totals {
		sums = append(sums, repository.UserXPSum{UserID: userID, XP: xp})
	}
	sort.Slice(sums, func(i, j int) bool {
		if sums[i].XP != sums[j].XP {
			return sums[i].XP > sums[j].XP
		}
		return sums[i].UserID.String() < sums[j].UserID.String()
	})
	return sums
}

func (r *fakeCompletionRepo) ListXPSumsSince(since time.Time, limit, offset int) ([]repository.UserXPSum, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := r.xpSumsSince(since)
	if limit <= 0 {
		return sums, nil
	}
	if offset >= len(sums) {
		return nil, nil
	}
	sums = sums[offset:]
	if limit < len(sums) {
		sums = sums[:limit]
	}
	return sums, nil
}

func (r *fakeCompletionRepo) CountUsersSince(since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.xpSumsSince(since))), nil
}

func (r *fakeCompletionRepo) CountUsersRankedAboveSince(since time.Time, xp int, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, sum := range r.xpSumsSince(since) {
		if sum.XP > xp || (sum.XP == xp && sum.UserID.String() < userID.String()) {
			count++
		}
	}
	return count, nil
}

type fakeBadgeRepo struct {
	mu       sync.Mutex
	catalog  []model.Badge
	awards   map[uuid.UUID]map[uint]model.UserBadge
	progress *fakeProgressRepo
}

func newFakeBadgeRepo(progress *fakeProgressRepo) *fakeBadgeRepo {
	return &fakeBadgeRepo{
		awards:   make(map[uuid.UUID]map[uint]model.UserBadge),
		progress: progress,
	}
}

func (r *fakeBadgeRepo) UpsertBySlug(badge *model.Badge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.catalog {
		if existing.Slug == badge.Slug {
			badge.ID = existing.ID
			r.catalog[i] = *badge
			return nil
		}
	}
	badge.ID = uint(len(r.catalog) + 1)
	r.catalog = append(r.catalog, *badge)
	return nil
}

func (r *fakeBadgeRepo) ListAll() ([]model.Badge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Badge(nil), r.catalog...), nil
}

func (r *fakeBadgeRepo) ListEarned(userID uuid.UUID) ([]model.UserBadge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var earned []model.UserBadge
	for _, award := range r.awards[userID] {
		earned = append(earned, award)
	}
	return earned, nil
}

func (r *fakeBadgeRepo) ListEarnedIDs(userID uuid.UUID) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for id := range r.awards[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeBadgeRepo) CreateAwardWithXP(award *model.UserBadge, xpReward int) (bool, error) {
	r.mu.Lock()
	if r.awards[award.UserID] == nil {
		r.awards[award.UserID] = make(map[uint]model.UserBadge)
	}
	if _, exists := r.awards[award.UserID][award.BadgeID]; exists {
		r.mu.Unlock()
		return false, nil
	}
	r.awards[award.UserID][award.BadgeID] = *award
	r.mu.Unlock()

	if xpReward > 0 {
		if err := r.progress.IncrementCounters(award.UserID, xpReward, 0); err != nil {
			return true, err
		}
	}
	return true, nil
}

type snapshotKey struct {
	userID    uuid.UUID
	date      string
	boardType model.BoardType
}

type fakeSnapshotRepo struct {
	mu   sync.Mutex
	rows map[snapshotKey]model.LeaderboardSnapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{rows: make(map[snapshotKey]model.LeaderboardSnapshot)}
}

func (r *fakeSnapshotRepo) key(userID uuid.UUID, date time.Time, boardType model.BoardType) snapshotKey {
	return snapshotKey{userID: userID, date: date.Format("2006-01-02"), boardType: boardType}
}

func (r *fakeSnapshotRepo) CreateSkipDuplicates(snapshots []model.LeaderboardSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, snapshot := range snapshots {
		k := r.key(snapshot.UserID, snapshot.SnapshotDate, snapshot.BoardType)
		if _, exists := r.rows[k]; exists {
			continue
		}
		r.rows[k] = snapshot
	}
	return nil
}

func (r *fakeSnapshotRepo) Get(userID uuid.UUID, date time.Time, boardType model.BoardType) (*model.LeaderboardSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot, ok := r.rows[r.key(userID, date, boardType)]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lentera.id/elearning/internal/model"
)

type snapshotFixture struct {
	svc            *snapshotService
	progressRepo   *fakeProgressRepo
	completionRepo *fakeCompletionRepo
	snapshotRepo   *fakeSnapshotRepo
	now            time.Time
}

func newSnapshotFixture(t *testing.T) *snapshotFixture {
	t.Helper()
	progressRepo := newFakeProgressRepo()
	completionRepo := newFakeCompletionRepo()
	snapshotRepo := newFakeSnapshotRepo()

	svc := NewSnapshotService(progressRepo, completionRepo, snapshotRepo).(*snapshotService)
	f := &snapshotFixture{
		svc:            svc,
		progressRepo:   progressRepo,
		completionRepo: completionRepo,
		snapshotRepo:   snapshotRepo,
		now:            time.Date(2025, 3, 12, 0, 5, 0, 0, time.Local),
	}
	svc.now = func() time.Time { return f.now }
	return f
}

func (f *snapshotFixture) seedUser(t *testing.T, totalXP int) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	_, err := f.progressRepo.GetOrCreate(userID)
	require.NoError(t, err)
	require.NoError(t, f.progressRepo.IncrementCounters(userID, totalXP, 0))
	return userID
}

func TestCreateDailySnapshotsGlobalRanks(t *testing.T) {
	f := newSnapshotFixture(t)
	gold := f.seedUser(t, 3000)
	silver := f.seedUser(t, 2000)
	bronze := f.seedUser(t, 1000)

	require.NoError(t, f.svc.CreateDailySnapshots())

	today := time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local)
	for i, userID := range []uuid.UUID{gold, silver, bronze} {
		snapshot, err := f.snapshotRepo.Get(userID, today, model.BoardTypeGlobal)
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, i+1, snapshot.Rank)
	}

	first, err := f.snapshotRepo.Get(gold, today, model.BoardTypeGlobal)
	require.NoError(t, err)
	assert.Equal(t, 3000, first.XP)
}

func TestCreateDailySnapshotsWeeklyOnlyActiveUsers(t *testing.T) {
	f := newSnapshotFixture(t)
	active := f.seedUser(t, 500)
	idle := f.seedUser(t, 9000)

	weekStart := time.Date(2025, 3, 9, 0, 0, 0, 0, time.Local)
	_ = f.completionRepo.Create(&model.LessonCompletion{
		UserID:      active,
		LessonID:    uuid.New(),
		XPEarned:    120,
		CompletedAt: weekStart.Add(24 * time.Hour),
	})
	// High lifetime XP but no completion this week.
	_ = f.completionRepo.Create(&model.LessonCompletion{
		UserID:      idle,
		LessonID:    uuid.New(),
		XPEarned:    700,
		CompletedAt: weekStart.Add(-48 * time.Hour),
	})

	require.NoError(t, f.svc.CreateDailySnapshots())

	today := time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local)
	snapshot, err := f.snapshotRepo.Get(active, today, model.BoardTypeWeekly)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, 1, snapshot.Rank)
	assert.Equal(t, 120, snapshot.XP)

	absent, err := f.snapshotRepo.Get(idle, today, model.BoardTypeWeekly)
	require.NoError(t, err)
	assert.Nil(t, absent, "users without completions this week get no weekly row")

	// The idle user is still on the global board.
	global, err := f.snapshotRepo.Get(idle, today, model.BoardTypeGlobal)
	require.NoError(t, err)
	require.NotNil(t, global)
	assert.Equal(t, 1, global.Rank)
}

func TestCreateDailySnapshotsRerunIsIdempotent(t *testing.T) {
	f := newSnapshotFixture(t)
	userID := f.seedUser(t, 1000)

	require.NoError(t, f.svc.CreateDailySnapshots())

	// XP moves between the first run and a retry of the same night.
	require.NoError(t, f.progressRepo.IncrementCounters(userID, 500, 0))
	require.NoError(t, f.svc.CreateDailySnapshots())

	today := time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local)
	snapshot, err := f.snapshotRepo.Get(userID, today, model.BoardTypeGlobal)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, 1000, snapshot.XP, "the first write of the day wins")
}

func TestCreateDailySnapshotsOnConsecutiveDays(t *testing.T) {
	f := newSnapshotFixture(t)
	userID := f.seedUser(t, 1000)

	require.NoError(t, f.svc.CreateDailySnapshots())

	f.now = f.now.AddDate(0, 0, 1)
	require.NoError(t, f.progressRepo.IncrementCounters(userID, 250, 0))
	require.NoError(t, f.svc.CreateDailySnapshots())

	first, err := f.snapshotRepo.Get(userID, time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local), model.BoardTypeGlobal)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1000, first.XP)

	second, err := f.snapshotRepo.Get(userID, time.Date(2025, 3, 13, 0, 0, 0, 0, time.Local), model.BoardTypeGlobal)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 1250, second.XP)
}

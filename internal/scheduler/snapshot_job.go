package scheduler

import (
	"context"

	"lentera.id/elearning/internal/service"
)

const SnapshotJobName = "leaderboard-snapshot"

// SnapshotJob writes the nightly leaderboard snapshots. One fire per day;
// the skip-on-duplicate insert makes a same-day re-run harmless.
type SnapshotJob struct {
	snapshotService service.SnapshotService
	cronSpec        string
}

func NewSnapshotJob(snapshotService service.SnapshotService, cronSpec string) *SnapshotJob {
	return &SnapshotJob{
		snapshotService: snapshotService,
		cronSpec:        cronSpec,
	}
}

func (j *SnapshotJob) Name() string {
	return SnapshotJobName
}

func (j *SnapshotJob) Schedule() string {
	return j.cronSpec
}

func (j *SnapshotJob) Run(_ context.Context) error {
	return j.snapshotService.CreateDailySnapshots()
}

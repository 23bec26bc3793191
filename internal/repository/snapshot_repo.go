package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lentera.id/elearning/internal/model"
)

type SnapshotRepository interface {
	// CreateSkipDuplicates bulk-inserts snapshot rows, silently skipping
	// any (user, date, type) key that already exists. Re-running the
	// nightly job the same day is therefore a no-op.
	CreateSkipDuplicates(snapshots []model.LeaderboardSnapshot) error
	Get(userID uuid.UUID, date time.Time, boardType model.BoardType) (*model.LeaderboardSnapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) CreateSkipDuplicates(snapshots []model.LeaderboardSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "snapshot_date"}, {Name: "board_type"},
		},
		DoNothing: true,
	}).CreateInBatches(snapshots, 500).Error
}

func (r *snapshotRepository) Get(userID uuid.UUID, date time.Time, boardType model.BoardType) (*model.LeaderboardSnapshot, error) {
	var snapshot model.LeaderboardSnapshot
	err := r.db.Where(
		"user_id = ? AND snapshot_date = ? AND board_type = ?",
		userID, date, boardType,
	).First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

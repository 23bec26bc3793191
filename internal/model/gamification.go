package model

import (
	"time"

	"github.com/google/uuid"
)

// UserProgress holds the denormalized gamification counters for one user.
// Level and LevelTitle are caches derived from TotalXP; every mutation of
// TotalXP must go through the progress service so they never drift.
type UserProgress struct {
	UserID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	TotalXP          int        `gorm:"not null;default:0" json:"total_xp"`
	Level            int        `gorm:"not null;default:1" json:"level"`
	LevelTitle       string     `gorm:"size:50;not null;default:'Pemula'" json:"level_title"`
	CurrentStreak    int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"not null;default:0" json:"longest_streak"`
	LessonsCompleted int        `gorm:"not null;default:0" json:"lessons_completed"`
	LastActiveAt     *time.Time `json:"last_active_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// StreakLog records one successful daily check-in. The unique index on
// (user_id, checkin_date) is the concurrency guard: the losing writer of a
// same-day race sees zero rows affected and treats the day as already
// checked in. Rows are append-only.
type StreakLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_checkin_date,priority:1;not null" json:"user_id"`
	CheckinDate time.Time `gorm:"type:date;uniqueIndex:idx_user_checkin_date,priority:2;not null" json:"checkin_date"`
	CheckedIn   bool      `gorm:"not null;default:true" json:"checked_in"`
	BonusXP     int       `gorm:"not null;default:0" json:"bonus_xp"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// LessonCompletion is the append-only completion log. Weekly leaderboard
// aggregation and first-completion-of-the-day detection both read from it.
type LessonCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index:idx_completion_user_date,priority:1;not null" json:"user_id"`
	LessonID    uuid.UUID `gorm:"type:uuid;not null" json:"lesson_id"`
	XPEarned    int       `gorm:"not null" json:"xp_earned"`
	CompletedAt time.Time `gorm:"index:idx_completion_user_date,priority:2;index:idx_completion_date;not null" json:"completed_at"`
}

type BadgeCategory string

const (
	BadgeCategoryMilestone BadgeCategory = "MILESTONE"
	BadgeCategoryStreak    BadgeCategory = "STREAK"
	BadgeCategoryMastery   BadgeCategory = "MASTERY"
	BadgeCategorySpecial   BadgeCategory = "SPECIAL"
)

// RequirementType is the tagged predicate of a badge: exactly one progress
// field is compared against Threshold.
type RequirementType string

const (
	RequirementLessonsCompleted RequirementType = "lessons_completed"
	RequirementStreakDays       RequirementType = "streak_days"
	RequirementLevel            RequirementType = "level"
	RequirementTotalXP          RequirementType = "total_xp"
	// RequirementSpecial badges are never auto-awarded by the evaluator;
	// they are granted through an explicit administrative path.
	RequirementSpecial RequirementType = "special"
)

// Badge is a catalog entry, upserted by slug from the external feed.
type Badge struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Slug            string          `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	Icon            string          `gorm:"size:100" json:"icon"`
	Category        BadgeCategory   `gorm:"size:20;not null" json:"category"`
	RequirementType RequirementType `gorm:"size:30;not null" json:"requirement_type"`
	Threshold       int             `gorm:"not null;default:0" json:"threshold"`
	XPReward        int             `gorm:"not null;default:0" json:"xp_reward"`
	IsSecret        bool            `gorm:"not null;default:false" json:"is_secret"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge is an award record. The composite primary key makes the award a
// set: a badge can be earned by a user at most once, ever.
type UserBadge struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	BadgeID  uint      `gorm:"primaryKey" json:"badge_id"`
	Badge    Badge     `gorm:"foreignKey:BadgeID" json:"badge"`
	EarnedAt time.Time `gorm:"not null" json:"earned_at"`
}

type BoardType string

const (
	BoardTypeGlobal BoardType = "GLOBAL"
	BoardTypeWeekly BoardType = "WEEKLY"
)

// IsValid reports whether bt is a known leaderboard type.
func (bt BoardType) IsValid() bool {
	return bt == BoardTypeGlobal || bt == BoardTypeWeekly
}

// LeaderboardSnapshot freezes one user's rank and XP for one day and board
// type. Written once per night by the snapshot job (skip on duplicate, so a
// re-run the same day is a no-op) and never updated afterward.
type LeaderboardSnapshot struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_snapshot_key,priority:1;not null" json:"user_id"`
	SnapshotDate time.Time `gorm:"type:date;uniqueIndex:idx_snapshot_key,priority:2;not null" json:"snapshot_date"`
	BoardType    BoardType `gorm:"size:10;uniqueIndex:idx_snapshot_key,priority:3;not null" json:"board_type"`
	Rank         int       `gorm:"not null" json:"rank"`
	XP           int       `gorm:"not null" json:"xp"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

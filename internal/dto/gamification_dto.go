package dto

import (
	"github.com/google/uuid"
)

// RecordCompletionRequest carries the lesson metadata the content service
// knows about; this engine only sees the numbers it needs to score the
// completion.
type RecordCompletionRequest struct {
	LessonID         uuid.UUID `json:"lesson_id" binding:"required"`
	BaseXP           int       `json:"base_xp" binding:"required,min=1,max=1000"`
	EstimatedMinutes int       `json:"estimated_minutes" binding:"required,min=1"`
	TimeSpentSeconds int       `json:"time_spent_seconds" binding:"required,min=1"`
	QuizScore        *int      `json:"quiz_score" binding:"omitempty,min=0,max=100"`
}

// BadgeResponse is the public shape of a catalog badge. Secret badges keep
// their description hidden until earned.
type BadgeResponse struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	XPReward    int    `json:"xp_reward"`
	IsSecret    bool   `json:"is_secret"`
}

// EarnedBadgeResponse is a badge the user holds, with the award timestamp.
type EarnedBadgeResponse struct {
	BadgeResponse
	EarnedAt string `json:"earned_at"`
}

// RankChange annotates an entry with movement since yesterday's snapshot.
// Direction is one of "new", "up", "down", "same".
type RankChange struct {
	Direction string `json:"direction"`
	Delta     int    `json:"delta"`
}

// LeaderboardEntry is one row of a leaderboard page. Rank is 1-based and
// strictly sequential within the page (offset + index + 1).
type LeaderboardEntry struct {
	Rank          int        `json:"rank"`
	UserID        uuid.UUID  `json:"user_id"`
	XP            int        `json:"xp"`
	Level         int        `json:"level"`
	LevelTitle    string     `json:"level_title"`
	RankChange    RankChange `json:"rank_change"`
	IsCurrentUser bool       `json:"is_current_user"`
}

// LeaderboardResponse is a page of the ranking plus the requesting user's
// own position, resolved even when they fall outside the page. A weekly
// requester with no XP this week has CurrentUserRank 0 and no entry.
type LeaderboardResponse struct {
	Type             string             `json:"type"`
	Entries          []LeaderboardEntry `json:"entries"`
	CurrentUserRank  int                `json:"current_user_rank"`
	CurrentUserEntry *LeaderboardEntry  `json:"current_user_entry,omitempty"`
	Total            int64              `json:"total"`
	Offset           int                `json:"offset"`
}

package service

import "fmt"

// XPPerLevel is the fixed XP bucket per level: level = totalXP/500 + 1.
const XPPerLevel = 500

// FirstCompletionBonus is the flat XP added for the first lesson completed
// on a calendar day. It is added after the streak multiplier, never
// multiplied by it.
const FirstCompletionBonus = 25

// levelTitles maps a minimum level to its display title, checked from the
// highest threshold down. Every level at or past the top threshold keeps
// the terminal title.
var levelTitles = []struct {
	MinLevel int
	Title    string
}{
	{50, "Legenda"},
	{35, "Master"},
	{20, "Ahli"},
	{10, "Cendekia"},
	{5, "Pelajar"},
	{1, "Pemula"},
}

// CalculateLevel maps a total XP to a level. Pure step function,
// non-decreasing, CalculateLevel(0) == 1.
func CalculateLevel(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return totalXP/XPPerLevel + 1
}

// LevelTitle returns the display title for a level.
func LevelTitle(level int) string {
	for _, t := range levelTitles {
		if level >= t.MinLevel {
			return t.Title
		}
	}
	return levelTitles[len(levelTitles)-1].Title
}

// XPBreakdown itemizes the XP of a single lesson completion so bonuses stay
// auditable; callers get the parts, not just the sum.
type XPBreakdown struct {
	Base       int `json:"base"`
	SpeedBonus int `json:"speed_bonus"`
	QuizBonus  int `json:"quiz_bonus"`
	Total      int `json:"total"`
}

// LessonCompletionXP computes the XP for completing a lesson. The speed
// bonus steps up the faster the actual time is relative to the estimate
// (capped at the half-time tier); the quiz bonus applies only when a score
// was submitted.
func LessonCompletionXP(baseXP, timeSpentSeconds, estimatedMinutes int, quizScore *int) XPBreakdown {
	breakdown := XPBreakdown{Base: baseXP}

	if timeSpentSeconds > 0 && estimatedMinutes > 0 {
		ratio := float64(timeSpentSeconds) / float64(estimatedMinutes*60)
		switch {
		case ratio <= 0.5:
			breakdown.SpeedBonus = 50
		case ratio <= 0.75:
			breakdown.SpeedBonus = 25
		case ratio < 1.0:
			breakdown.SpeedBonus = 10
		}
	}

	if quizScore != nil {
		switch {
		case *quizScore >= 100:
			breakdown.QuizBonus = 50
		case *quizScore >= 90:
			breakdown.QuizBonus = 30
		case *quizScore >= 75:
			breakdown.QuizBonus = 15
		case *quizScore >= 50:
			breakdown.QuizBonus = 5
		}
	}

	breakdown.Total = breakdown.Base + breakdown.SpeedBonus + breakdown.QuizBonus
	return breakdown
}

// DailyXP is the result of applying the per-day multipliers to a completion
// subtotal.
type DailyXP struct {
	Total          int      `json:"total"`
	Multiplier     float64  `json:"multiplier"`
	AppliedBonuses []string `json:"applied_bonuses"`
}

// ApplyDailyMultipliers scales the subtotal by the streak tier, then adds
// the flat first-completion-of-the-day bonus. The order is part of the
// contract: multiply first, add second.
func ApplyDailyMultipliers(subtotal, currentStreak int, isFirstCompletionToday bool) DailyXP {
	result := DailyXP{Multiplier: 1.0}

	switch {
	case currentStreak >= 30:
		result.Multiplier = 1.5
	case currentStreak >= 7:
		result.Multiplier = 1.25
	}

	result.Total = int(float64(subtotal) * result.Multiplier)
	if result.Multiplier > 1.0 {
		result.AppliedBonuses = append(result.AppliedBonuses,
			fmt.Sprintf("streak_multiplier_x%.2f", result.Multiplier))
	}

	if isFirstCompletionToday {
		result.Total += FirstCompletionBonus
		result.AppliedBonuses = append(result.AppliedBonuses, "first_completion_of_day")
	}

	return result
}

// StreakBonus returns the check-in bonus XP for reaching the given streak
// length. Tiers are monotonically increasing in streak length.
func StreakBonus(streak int) int {
	switch {
	case streak >= 30:
		return 100
	case streak >= 7:
		return 50
	case streak >= 3:
		return 20
	default:
		return 10
	}
}

package service

import "time"

// StartOfDay truncates t to its local midnight. Every calendar-day boundary
// in the engine (check-ins, snapshots, first-completion detection) uses
// this one rule.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the most recent Sunday 00:00 at or before t. This is
// the lower bound of the weekly leaderboard window.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

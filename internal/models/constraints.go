package models

import (
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
)

// UserConstraints is the learner's time budget.
type UserConstraints struct {
	StartDate          string  `json:"start_date"` // YYYY-MM-DD
	WeekdayHours       float64 `json:"weekday_hours"`
	WeekendHours       float64 `json:"weekend_hours"`
	BufferDays         int     `json:"buffer_days"`
	ChunkHours         float64 `json:"chunk_hours"`
	ReviewIntervalDays int     `json:"review_interval_days"`
}

// DefaultConstraints returns the stock time budget starting on today.
func DefaultConstraints(today time.Time) UserConstraints {
	return UserConstraints{
		StartDate:          today.Format(constants.DateFormat),
		WeekdayHours:       constants.DefaultWeekdayHours,
		WeekendHours:       constants.DefaultWeekendHours,
		BufferDays:         constants.DefaultBufferDays,
		ChunkHours:         constants.DefaultChunkHours,
		ReviewIntervalDays: constants.DefaultReviewIntervalDays,
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

package constants

const (
	// Default user constraints
	DefaultWeekdayHours       = 3.0
	DefaultWeekendHours       = 6.0
	DefaultBufferDays         = 1
	DefaultChunkHours         = 1.0
	DefaultReviewIntervalDays = 3

	// DefaultExamHorizonDays is used for a course that has no exam date.
	DefaultExamHorizonDays = 14

	// MaxDailyHours caps any single day's capacity, including mitigation searches.
	MaxDailyHours = 24.0

	// Profile score ranges
	MinScore        = 1
	MaxScore        = 5
	NeutralScore    = 3
	MinCoverage     = 0.0
	MaxCoverage     = 100.0
	DefaultPriority = 1.0
)

package scheduler

import (
	"fmt"

	"github.com/julianstephens/studyplan/internal/constants"
)

// Config tunes the scheduler. Zero values produce the defaults noted on
// each field; negative values are rejected by New.
type Config struct {
	ReviewHours         float64 // zero → 0.5, capped at the chunk size
	ReviewUrgencyWeight float64 // zero → 0.25
	RankBonusStart      float64 // zero → 0.35
	RankBonusStep       float64 // zero → 0.10
	FamiliarityBoost    float64 // zero → 0.08
	WeaknessBoost       float64 // zero → 0.12
	CoveragePenaltyMax  float64 // zero → 0.40
	CourseWeightBlend   float64 // zero → 0.40, share of the course's own weight in a profile-derived weight
	MinPriorityWeight   float64 // zero → 0.55
	MaxPriorityWeight   float64 // zero → 1.9
	MaxDailyHours       float64 // zero → 24
	MaxStartShiftDays   int     // zero → 365
	ExamHorizonDays     int     // zero → 14, used when a course has no exam date
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{
		ReviewHours:         0.5,
		ReviewUrgencyWeight: 0.25,
		RankBonusStart:      0.35,
		RankBonusStep:       0.10,
		FamiliarityBoost:    0.08,
		WeaknessBoost:       0.12,
		CoveragePenaltyMax:  0.40,
		CourseWeightBlend:   0.40,
		MinPriorityWeight:   0.55,
		MaxPriorityWeight:   1.9,
		MaxDailyHours:       constants.MaxDailyHours,
		MaxStartShiftDays:   365,
		ExamHorizonDays:     constants.DefaultExamHorizonDays,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReviewHours == 0 {
		c.ReviewHours = d.ReviewHours
	}
	if c.ReviewUrgencyWeight == 0 {
		c.ReviewUrgencyWeight = d.ReviewUrgencyWeight
	}
	if c.RankBonusStart == 0 {
		c.RankBonusStart = d.RankBonusStart
	}
	if c.RankBonusStep == 0 {
		c.RankBonusStep = d.RankBonusStep
	}
	if c.FamiliarityBoost == 0 {
		c.FamiliarityBoost = d.FamiliarityBoost
	}
	if c.WeaknessBoost == 0 {
		c.WeaknessBoost = d.WeaknessBoost
	}
	if c.CoveragePenaltyMax == 0 {
		c.CoveragePenaltyMax = d.CoveragePenaltyMax
	}
	if c.CourseWeightBlend == 0 {
		c.CourseWeightBlend = d.CourseWeightBlend
	}
	if c.MinPriorityWeight == 0 {
		c.MinPriorityWeight = d.MinPriorityWeight
	}
	if c.MaxPriorityWeight == 0 {
		c.MaxPriorityWeight = d.MaxPriorityWeight
	}
	if c.MaxDailyHours == 0 {
		c.MaxDailyHours = d.MaxDailyHours
	}
	if c.MaxStartShiftDays == 0 {
		c.MaxStartShiftDays = d.MaxStartShiftDays
	}
	if c.ExamHorizonDays == 0 {
		c.ExamHorizonDays = d.ExamHorizonDays
	}
	return c
}

func (c Config) validate() error {
	floats := []struct {
		name string
		v    float64
	}{
		{"review hours", c.ReviewHours},
		{"review urgency weight", c.ReviewUrgencyWeight},
		{"rank bonus start", c.RankBonusStart},
		{"rank bonus step", c.RankBonusStep},
		{"familiarity boost", c.FamiliarityBoost},
		{"weakness boost", c.WeaknessBoost},
		{"coverage penalty", c.CoveragePenaltyMax},
		{"min priority weight", c.MinPriorityWeight},
		{"max priority weight", c.MaxPriorityWeight},
		{"max daily hours", c.MaxDailyHours},
	}
	for _, f := range floats {
		if f.v < 0 {
			return fmt.Errorf("%w: %s %g must not be negative", ErrInvalidConfig, f.name, f.v)
		}
	}
	if c.CourseWeightBlend < 0 || c.CourseWeightBlend > 1 {
		return fmt.Errorf("%w: course weight blend %g out of range [0, 1]", ErrInvalidConfig, c.CourseWeightBlend)
	}
	if c.MinPriorityWeight > c.MaxPriorityWeight {
		return fmt.Errorf("%w: min priority weight %g exceeds max %g", ErrInvalidConfig, c.MinPriorityWeight, c.MaxPriorityWeight)
	}
	if c.MaxStartShiftDays < 0 || c.ExamHorizonDays < 0 {
		return fmt.Errorf("%w: day counts must not be negative", ErrInvalidConfig)
	}
	return nil
}

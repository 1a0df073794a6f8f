package models

// CapacityOverride replaces the constraint capacities for a whole plan.
type CapacityOverride struct {
	WeekdayHours float64 `json:"hours_weekday"`
	WeekendHours float64 `json:"hours_weekend"`
}

// Profile is the learner's self-assessment. A new submission replaces the
// previous profile entirely.
type Profile struct {
	RankedCourses       []string           `json:"ranked_courses"`
	FamiliarityByCourse map[string]int     `json:"familiarity_by_course,omitempty"` // 1 = least familiar
	CoverageByCourse    map[string]float64 `json:"coverage_by_course,omitempty"`    // percent already mastered
	WeaknessByCourse    map[string]int     `json:"weakness_by_course,omitempty"`    // 5 = weakest
	Capacity            *CapacityOverride  `json:"hours,omitempty"`
}

// RankOf returns the zero-based rank position of courseID, or -1.
func (p *Profile) RankOf(courseID string) int {
	if p == nil {
		return -1
	}
	for i, id := range p.RankedCourses {
		if id == courseID {
			return i
		}
	}
	return -1
}

package scheduler

import (
	"math"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/estimator"
	"github.com/julianstephens/studyplan/internal/models"
)

// PriorityWeight resolves a course's weight. An explicit override wins,
// then a weight derived from the profile, then the course's own weight.
func (s *Scheduler) PriorityWeight(course models.CourseSpec, profile *models.Profile, overrides map[string]float64) float64 {
	if w, ok := overrides[course.CourseID]; ok {
		return w
	}
	if profile != nil {
		return s.ProfileWeight(profile, course.CourseID, course.Weight())
	}
	return course.Weight()
}

// ProfileWeight derives a weight from rank position, familiarity, weakness
// and coverage, blended with the course's base weight and clamped to the
// configured range.
func (s *Scheduler) ProfileWeight(profile *models.Profile, courseID string, base float64) float64 {
	cfg := s.cfg
	derived := 1.0
	if rank := profile.RankOf(courseID); rank >= 0 {
		derived += math.Max(0, cfg.RankBonusStart-float64(rank)*cfg.RankBonusStep)
	}

	familiarity := float64(constants.NeutralScore)
	if v, ok := profile.FamiliarityByCourse[courseID]; ok {
		familiarity = clampScore(v)
	}
	weakness := float64(constants.NeutralScore)
	if v, ok := profile.WeaknessByCourse[courseID]; ok {
		weakness = clampScore(v)
	}
	coverage := estimator.ClampCoverage(profile.CoverageByCourse[courseID]) / 100.0

	derived += math.Max(0, 3-familiarity) * cfg.FamiliarityBoost
	derived += math.Max(0, weakness-3) * cfg.WeaknessBoost
	derived -= math.Min(cfg.CoveragePenaltyMax, coverage*cfg.CoveragePenaltyMax)

	blended := cfg.CourseWeightBlend*base + (1-cfg.CourseWeightBlend)*derived
	blended = math.Min(cfg.MaxPriorityWeight, math.Max(cfg.MinPriorityWeight, blended))
	return math.Round(blended*100) / 100
}

// Urgency is weight × remaining hours / max(days to exam, 1).
func Urgency(weight, remainingHours float64, daysToExam int) float64 {
	if daysToExam < 1 {
		daysToExam = 1
	}
	return weight * remainingHours / float64(daysToExam)
}

func clampScore(v int) float64 {
	if v < constants.MinScore {
		v = constants.MinScore
	}
	if v > constants.MaxScore {
		v = constants.MaxScore
	}
	return float64(v)
}

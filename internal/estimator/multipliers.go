package estimator

import (
	"math"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

// DifficultyMultiplier scales base hours by topic difficulty. The second
// return value is false when the tag was not recognized and the medium
// multiplier was used instead.
func DifficultyMultiplier(d models.Difficulty) (float64, bool) {
	switch d {
	case models.DifficultyEasy:
		return 0.8, true
	case models.DifficultyMedium:
		return 1.0, true
	case models.DifficultyHard:
		return 1.35, true
	}
	return 1.0, false
}

// TaskMixMultiplier scales base hours by the amount of practice work. An
// unrecognized tag falls back to the middle tier (read+practice).
func TaskMixMultiplier(m models.TaskMix) (float64, bool) {
	switch m {
	case models.TaskMixReadOnly:
		return 1.0, true
	case models.TaskMixReadPractice:
		return 1.2, true
	case models.TaskMixProblemSetHeavy:
		return 1.5, true
	}
	return 1.2, false
}

// FamiliarityMultiplier is above 1 for unfamiliar material (score < 3) and
// never drops below 0.75.
func FamiliarityMultiplier(score int) float64 {
	s := float64(clampScore(score))
	return math.Max(0.75, 1.0+(3.0-s)*0.10)
}

// WeaknessMultiplier is above 1 for weak courses (score > 3) and never drops
// below 0.70.
func WeaknessMultiplier(score int) float64 {
	s := float64(clampScore(score))
	return math.Max(0.70, 1.0+(s-3.0)*0.12)
}

// CoverageRemainingFraction is the share of the material not yet mastered.
func CoverageRemainingFraction(percent float64) float64 {
	return 1.0 - ClampCoverage(percent)/100.0
}

// ClampCoverage limits a coverage percentage to [0, 100].
func ClampCoverage(percent float64) float64 {
	if math.IsNaN(percent) {
		return constants.MinCoverage
	}
	return math.Min(constants.MaxCoverage, math.Max(constants.MinCoverage, percent))
}

func clampScore(score int) int {
	if score < constants.MinScore {
		return constants.MinScore
	}
	if score > constants.MaxScore {
		return constants.MaxScore
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/julianstephens/studyplan/internal/constants"
	apperrors "github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
)

// Hours is the optional capacity update in an answer set. A nil field
// keeps the current value.
type Hours struct {
	Weekday *float64 `json:"hours_weekday,omitempty"`
	Weekend *float64 `json:"hours_weekend,omitempty"`
}

// Answers is the raw answer set for the intake questions.
type Answers struct {
	RankedCourses []string           `json:"ranked_courses"`
	Familiarity   map[string]float64 `json:"familiarity_by_course"`
	Coverage      map[string]float64 `json:"coverage_by_course"`
	Weakness      map[string]float64 `json:"weakness_by_course"`
	Hours         *Hours             `json:"hours,omitempty"`
}

// ParseAnswers decodes a JSON answer set.
func ParseAnswers(data []byte) (Answers, error) {
	var a Answers
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&a); err != nil {
		return Answers{}, fmt.Errorf("failed to parse profile answers: %w", err)
	}
	return a, nil
}

// Build turns answers into a normalized profile for the given courses.
// Course ids match case-insensitively; unknown ids and duplicates are
// dropped and scores are clamped into range, each with a note. current
// supplies any capacity value the answers leave out.
func Build(a Answers, courseIDs []string, current models.UserConstraints) (models.Profile, []string, error) {
	canonical := make(map[string]string, len(courseIDs))
	for _, id := range courseIDs {
		canonical[strings.ToLower(id)] = id
	}
	var notes []string

	p := models.Profile{
		FamiliarityByCourse: map[string]int{},
		CoverageByCourse:    map[string]float64{},
		WeaknessByCourse:    map[string]int{},
	}

	seen := make(map[string]bool)
	for _, raw := range a.RankedCourses {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			continue
		}
		id, ok := canonical[key]
		if !ok {
			notes = append(notes, fmt.Sprintf("Ignored unknown course %q in ranking.", raw))
			continue
		}
		if seen[id] {
			notes = append(notes, fmt.Sprintf("Ignored duplicate course %q in ranking.", id))
			continue
		}
		seen[id] = true
		p.RankedCourses = append(p.RankedCourses, id)
	}

	for _, raw := range sortedKeys(a.Familiarity) {
		if id, ok := resolve(canonical, raw, "familiarity", &notes); ok {
			p.FamiliarityByCourse[id] = clampScore(a.Familiarity[raw], id, "familiarity", &notes)
		}
	}
	for _, raw := range sortedKeys(a.Weakness) {
		if id, ok := resolve(canonical, raw, "weakness", &notes); ok {
			p.WeaknessByCourse[id] = clampScore(a.Weakness[raw], id, "weakness", &notes)
		}
	}
	for _, raw := range sortedKeys(a.Coverage) {
		id, ok := resolve(canonical, raw, "coverage", &notes)
		if !ok {
			continue
		}
		v := a.Coverage[raw]
		clamped := math.Min(constants.MaxCoverage, math.Max(constants.MinCoverage, v))
		if clamped != v {
			notes = append(notes, fmt.Sprintf("Clamped coverage for %s from %g to %g.", id, v, clamped))
		}
		p.CoverageByCourse[id] = clamped
	}

	if a.Hours != nil {
		weekday, weekend := current.WeekdayHours, current.WeekendHours
		if a.Hours.Weekday != nil {
			weekday = *a.Hours.Weekday
		}
		if a.Hours.Weekend != nil {
			weekend = *a.Hours.Weekend
		}
		if weekday <= 0 || weekend <= 0 {
			return models.Profile{}, nil, apperrors.NewConfigError("hours", "study hours must be positive, got weekday=%g weekend=%g", weekday, weekend)
		}
		p.Capacity = &models.CapacityOverride{WeekdayHours: weekday, WeekendHours: weekend}
		notes = append(notes, fmt.Sprintf("Updated study time to weekday=%.1f, weekend=%.1f.", weekday, weekend))
	}

	notes = append(notes, "Applied profile (ranking, familiarity, coverage, weakness) to course priorities.")
	return p, notes, nil
}

func resolve(canonical map[string]string, raw, field string, notes *[]string) (string, bool) {
	id, ok := canonical[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		*notes = append(*notes, fmt.Sprintf("Ignored %s score for unknown course %q.", field, raw))
	}
	return id, ok
}

func clampScore(v float64, id, field string, notes *[]string) int {
	score := int(math.Round(v))
	if score < constants.MinScore {
		score = constants.MinScore
	}
	if score > constants.MaxScore {
		score = constants.MaxScore
	}
	if float64(score) != v {
		*notes = append(*notes, fmt.Sprintf("Adjusted %s for %s from %g to %d.", field, id, v, score))
	}
	return score
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package estimator

import (
	"fmt"
	"sort"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

const (
	// PagesPerHour is the reading-rate baseline.
	PagesPerHour = 10.0

	// DefaultTopicPages is assumed for a topic with no usable page count.
	DefaultTopicPages = 18.0
)

// DefaultTopicHours is the base estimate for a topic without a page count.
const DefaultTopicHours = DefaultTopicPages / PagesPerHour

// Result is the output of an estimation pass.
type Result struct {
	Estimates []models.TopicEstimate
	Warnings  []string
}

type profileFactors struct {
	familiarity float64
	weakness    float64
	remaining   float64
	// partial is set when the profile has no familiarity, weakness or
	// coverage answer for the course and a neutral value stood in.
	partial bool
}

// Estimate produces exactly one estimate per topic. Courses are visited in
// course id order and topics in syllabus order, so identical inputs always
// give identical output. Bad tags or page counts degrade into warnings.
func Estimate(courses []models.CourseSpec, profile *models.Profile) Result {
	ordered := append([]models.CourseSpec(nil), courses...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CourseID < ordered[j].CourseID
	})

	var res Result
	known := make(map[string]bool, len(ordered))
	for _, course := range ordered {
		known[course.CourseID] = true
		if len(course.Topics) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("course %q has no topics", course.CourseID))
			continue
		}

		factors := courseFactors(profile, course.CourseID)
		seen := make(map[string]bool, len(course.Topics))
		for _, topic := range course.Topics {
			if seen[topic.TopicID] {
				res.Warnings = append(res.Warnings, fmt.Sprintf("course %q: duplicate topic id %q", course.CourseID, topic.TopicID))
			}
			seen[topic.TopicID] = true

			est, warnings := estimateTopic(course.CourseID, topic, factors)
			res.Estimates = append(res.Estimates, est)
			res.Warnings = append(res.Warnings, warnings...)
		}
	}

	if profile != nil {
		res.Warnings = append(res.Warnings, unknownProfileCourses(profile, known)...)
	}
	return res
}

func estimateTopic(courseID string, topic models.TopicSpec, factors *profileFactors) (models.TopicEstimate, []string) {
	var warnings []string
	where := fmt.Sprintf("course %q topic %q", courseID, topic.TopicID)

	pagesKnown := topic.PageCount != nil && *topic.PageCount > 0
	base := DefaultTopicHours
	if pagesKnown {
		base = float64(*topic.PageCount) / PagesPerHour
	} else if topic.PageCount == nil {
		warnings = append(warnings, fmt.Sprintf("%s: missing page count, using default topic estimate of %.2fh", where, DefaultTopicHours))
	} else {
		warnings = append(warnings, fmt.Sprintf("%s: invalid page count %d, using default topic estimate of %.2fh", where, *topic.PageCount, DefaultTopicHours))
	}

	diff, diffOK := DifficultyMultiplier(topic.Difficulty)
	if !diffOK && topic.Difficulty != "" {
		warnings = append(warnings, fmt.Sprintf("%s: unknown difficulty %q, using medium", where, topic.Difficulty))
	}
	mix, mixOK := TaskMixMultiplier(topic.TaskMix)
	if !mixOK && topic.TaskMix != "" {
		warnings = append(warnings, fmt.Sprintf("%s: unknown task mix %q, using %s", where, topic.TaskMix, models.TaskMixReadPractice))
	}

	hours := base * diff * mix
	if factors != nil {
		hours *= factors.familiarity * factors.weakness * factors.remaining
	}

	basis := basisFor(pagesKnown, factors != nil, diffOK && mixOK)
	return models.TopicEstimate{
		CourseID:       courseID,
		TopicID:        topic.TopicID,
		EstimatedHours: round2(hours),
		Confidence:     confidence(basis, factors),
		Basis:          basis,
	}, warnings
}

func courseFactors(profile *models.Profile, courseID string) *profileFactors {
	if profile == nil {
		return nil
	}
	partial := false
	familiarity := constants.NeutralScore
	if v, ok := profile.FamiliarityByCourse[courseID]; ok {
		familiarity = v
	} else {
		partial = true
	}
	weakness := constants.NeutralScore
	if v, ok := profile.WeaknessByCourse[courseID]; ok {
		weakness = v
	} else {
		partial = true
	}
	coverage, ok := profile.CoverageByCourse[courseID]
	if !ok {
		partial = true
	}
	return &profileFactors{
		familiarity: FamiliarityMultiplier(familiarity),
		weakness:    WeaknessMultiplier(weakness),
		remaining:   CoverageRemainingFraction(coverage),
		partial:     partial,
	}
}

func basisFor(pagesKnown, withProfile, tagsKnown bool) models.Basis {
	switch {
	case pagesKnown && !withProfile && tagsKnown:
		return models.BasisNoProfileDefault
	case pagesKnown && !withProfile:
		return models.BasisNoProfileFallback
	case pagesKnown && tagsKnown:
		return models.BasisProfileDefault
	case pagesKnown:
		return models.BasisProfileFallback
	case !withProfile && tagsKnown:
		return models.BasisDefaultTopicNoProfileDefault
	case !withProfile:
		return models.BasisDefaultTopicNoProfileFallback
	case tagsKnown:
		return models.BasisDefaultTopicProfileDefault
	default:
		return models.BasisDefaultTopicProfileFallback
	}
}

// ConfidenceFor derives an estimate's confidence from its basis. Only a
// known page count with both tags recognized is high; a defaulted page count
// or a fallback multiplier is low.
func ConfidenceFor(b models.Basis) models.Confidence {
	switch b {
	case models.BasisNoProfileDefault, models.BasisProfileDefault:
		return models.ConfidenceHigh
	}
	return models.ConfidenceLow
}

// confidence lowers an otherwise high estimate to medium when the profile
// had to fill in neutral scores for the course.
func confidence(b models.Basis, factors *profileFactors) models.Confidence {
	c := ConfidenceFor(b)
	if c == models.ConfidenceHigh && factors != nil && factors.partial {
		return models.ConfidenceMedium
	}
	return c
}

func unknownProfileCourses(profile *models.Profile, known map[string]bool) []string {
	ids := make(map[string]bool)
	for _, id := range profile.RankedCourses {
		ids[id] = true
	}
	for id := range profile.FamiliarityByCourse {
		ids[id] = true
	}
	for id := range profile.CoverageByCourse {
		ids[id] = true
	}
	for id := range profile.WeaknessByCourse {
		ids[id] = true
	}

	var unknown []string
	for id := range ids {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)

	warnings := make([]string, 0, len(unknown))
	for _, id := range unknown {
		warnings = append(warnings, fmt.Sprintf("profile references unknown course %q", id))
	}
	return warnings
}

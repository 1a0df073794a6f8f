package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/studyplan/internal/models"
)

// Question is one intake prompt with the answer key it fills.
type Question struct {
	Key     string
	Prompt  string
	Example string
}

// IntakeQuestions returns the five intake prompts for the given courses.
func IntakeQuestions(courseIDs []string) []Question {
	ids := append([]string(nil), courseIDs...)
	sort.Strings(ids)
	list := strings.Join(ids, ", ")

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}

	object := func(values ...int) string {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("%q:%d", id, values[i%len(values)])
		}
		return "{" + strings.Join(parts, ",") + "}"
	}

	return []Question{
		{
			Key:     "ranked_courses",
			Prompt:  fmt.Sprintf("Rank exam priority from highest to lowest using course ids [%s].", list),
			Example: "[" + strings.Join(quoted, ",") + "]",
		},
		{
			Key:     "familiarity_by_course",
			Prompt:  "Familiarity per course (1-5, where 1 = not comfortable, 5 = very comfortable).",
			Example: object(2, 3, 4),
		},
		{
			Key:     "coverage_by_course",
			Prompt:  "Coverage already completed per course, as a percentage (0-100).",
			Example: object(25, 50, 60),
		},
		{
			Key:     "weakness_by_course",
			Prompt:  "Weakness level per course (1-5, where 5 = weakest).",
			Example: object(5, 3, 2),
		},
		{
			Key:     "hours",
			Prompt:  "Optional study time update in hours per day.",
			Example: `{"hours_weekday":4,"hours_weekend":7}`,
		},
	}
}

// ReviewCourses returns confirmation prompts for course data that looks
// incomplete. Courses are checked in id order.
func ReviewCourses(courses []models.CourseSpec) []string {
	ordered := append([]models.CourseSpec(nil), courses...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CourseID < ordered[j].CourseID
	})

	var prompts []string
	for _, c := range ordered {
		if c.ExamDate == "" {
			prompts = append(prompts, fmt.Sprintf("%s: exam date missing; please confirm the date before planning.", c.CourseID))
		}
		if len(c.Topics) == 0 {
			prompts = append(prompts, fmt.Sprintf("%s: topics missing; please confirm the course scope.", c.CourseID))
			continue
		}
		missing := 0
		for _, t := range c.Topics {
			if t.PageCount == nil || *t.PageCount <= 0 {
				missing++
			}
		}
		if missing > 0 {
			prompts = append(prompts, fmt.Sprintf("%s: %d of %d topics have no page count; estimates will use defaults.", c.CourseID, missing, len(c.Topics)))
		}
	}
	return prompts
}

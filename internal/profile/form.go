package profile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studyplan/internal/constants"
)

// CourseFormModel holds one course's answers while the form is open.
type CourseFormModel struct {
	CourseID    string
	Familiarity int
	Weakness    int
	Coverage    string
}

// FormModel backs the interactive intake form.
type FormModel struct {
	Ranking      string
	Courses      []*CourseFormModel
	WeekdayHours string
	WeekendHours string
}

// NewFormModel seeds the form with neutral scores and the current capacity.
func NewFormModel(courseIDs []string, weekday, weekend float64) *FormModel {
	fm := &FormModel{
		Ranking:      strings.Join(courseIDs, ", "),
		WeekdayHours: strconv.FormatFloat(weekday, 'f', -1, 64),
		WeekendHours: strconv.FormatFloat(weekend, 'f', -1, 64),
	}
	for _, id := range courseIDs {
		fm.Courses = append(fm.Courses, &CourseFormModel{
			CourseID:    id,
			Familiarity: constants.NeutralScore,
			Weakness:    constants.NeutralScore,
			Coverage:    "0",
		})
	}
	return fm
}

// NewForm builds the intake form: a ranking page, one page per course and a
// capacity page.
func NewForm(fm *FormModel) *huh.Form {
	scores := huh.NewOptions(1, 2, 3, 4, 5)

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Exam priority").
				Description("Course ids from highest to lowest priority, comma separated").
				Value(&fm.Ranking),
		),
	}

	for _, c := range fm.Courses {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[int]().
				Title(fmt.Sprintf("%s familiarity", c.CourseID)).
				Description("1 = not comfortable, 5 = very comfortable").
				Options(scores...).
				Value(&c.Familiarity),
			huh.NewInput().
				Title(fmt.Sprintf("%s coverage (%%)", c.CourseID)).
				Description("Share of the material already mastered, 0-100").
				Value(&c.Coverage).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil {
						return fmt.Errorf("must be a number")
					}
					if v < constants.MinCoverage || v > constants.MaxCoverage {
						return fmt.Errorf("must be between 0 and 100")
					}
					return nil
				}),
			huh.NewSelect[int]().
				Title(fmt.Sprintf("%s weakness", c.CourseID)).
				Description("1 = strongest, 5 = weakest").
				Options(scores...).
				Value(&c.Weakness),
		))
	}

	positive := func(s string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if v <= 0 || v > constants.MaxDailyHours {
			return fmt.Errorf("must be between 0 and %g", constants.MaxDailyHours)
		}
		return nil
	}
	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Weekday study hours").
			Value(&fm.WeekdayHours).
			Validate(positive),
		huh.NewInput().
			Title("Weekend study hours").
			Value(&fm.WeekendHours).
			Validate(positive),
	))

	return huh.NewForm(groups...)
}

// Answers converts the completed form into an answer set.
func (fm *FormModel) Answers() (Answers, error) {
	a := Answers{
		Familiarity: map[string]float64{},
		Coverage:    map[string]float64{},
		Weakness:    map[string]float64{},
	}
	for _, part := range strings.Split(fm.Ranking, ",") {
		if id := strings.TrimSpace(part); id != "" {
			a.RankedCourses = append(a.RankedCourses, id)
		}
	}
	for _, c := range fm.Courses {
		cov, err := strconv.ParseFloat(strings.TrimSpace(c.Coverage), 64)
		if err != nil {
			return Answers{}, fmt.Errorf("invalid coverage for %s: %w", c.CourseID, err)
		}
		a.Familiarity[c.CourseID] = float64(c.Familiarity)
		a.Weakness[c.CourseID] = float64(c.Weakness)
		a.Coverage[c.CourseID] = cov
	}

	weekday, err := strconv.ParseFloat(strings.TrimSpace(fm.WeekdayHours), 64)
	if err != nil {
		return Answers{}, fmt.Errorf("invalid weekday hours: %w", err)
	}
	weekend, err := strconv.ParseFloat(strings.TrimSpace(fm.WeekendHours), 64)
	if err != nil {
		return Answers{}, fmt.Errorf("invalid weekend hours: %w", err)
	}
	a.Hours = &Hours{Weekday: &weekday, Weekend: &weekend}
	return a, nil
}

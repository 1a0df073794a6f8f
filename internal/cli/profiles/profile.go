package profiles

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/profile"
	"github.com/julianstephens/studyplan/internal/session"
)

type QuestionsCmd struct{}

func (c *QuestionsCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if len(sess.Courses) == 0 {
		return errors.New("no courses yet, run 'studyplan course import <file>' first")
	}

	for i, q := range profile.IntakeQuestions(sess.CourseIDs()) {
		ctx.Printf("%d. %s\n   key: %s\n   e.g. %s\n", i+1, q.Prompt, q.Key, q.Example)
	}
	if prompts := profile.ReviewCourses(sess.Courses); len(prompts) > 0 {
		ctx.Println("\nBefore planning, please confirm:")
		for _, p := range prompts {
			ctx.Printf("  • %s\n", p)
		}
	}
	ctx.Println("\nAnswer with 'studyplan profile apply <answers.json>' or 'studyplan profile intake'.")
	return nil
}

type ApplyCmd struct {
	File string `arg:"" help:"JSON answer file, or - for stdin."`
}

func (c *ApplyCmd) Run(ctx *cli.Context) error {
	var data []byte
	var err error
	if c.File == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(c.File)
	}
	if err != nil {
		return fmt.Errorf("failed to read answers: %w", err)
	}

	answers, err := profile.ParseAnswers(data)
	if err != nil {
		return err
	}
	return apply(ctx, answers)
}

func apply(ctx *cli.Context, answers profile.Answers) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	p, notes, err := profile.Build(answers, sess.CourseIDs(), sess.Constraints)
	if err != nil {
		return err
	}

	if err := ctx.SaveSession(session.ApplyProfile(sess, p, notes)); err != nil {
		return err
	}
	for _, n := range notes {
		ctx.Printf("  %s\n", n)
	}
	ctx.Println("✓ Profile applied. Run 'studyplan plan' to regenerate the schedule.")
	return nil
}

// IntakeCmd asks the intake questions interactively.
type IntakeCmd struct{}

func (c *IntakeCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if len(sess.Courses) == 0 {
		return errors.New("no courses yet, run 'studyplan course import <file>' first")
	}

	weekday, weekend := sess.Constraints.WeekdayHours, sess.Constraints.WeekendHours
	if sess.Profile != nil && sess.Profile.Capacity != nil {
		weekday, weekend = sess.Profile.Capacity.WeekdayHours, sess.Profile.Capacity.WeekendHours
	}

	fm := profile.NewFormModel(sess.CourseIDs(), weekday, weekend)
	if err := profile.NewForm(fm).Run(); err != nil {
		return fmt.Errorf("intake cancelled: %w", err)
	}

	answers, err := fm.Answers()
	if err != nil {
		return err
	}
	return apply(ctx, answers)
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if sess.Profile == nil {
		ctx.Println("No profile. Planning uses course weights and default multipliers.")
		return nil
	}
	printProfile(ctx, *sess.Profile)
	return nil
}

func printProfile(ctx *cli.Context, p models.Profile) {
	ctx.Println("Ranking:")
	for i, id := range p.RankedCourses {
		ctx.Printf("  %d. %s\n", i+1, id)
	}

	ids := make(map[string]bool)
	for id := range p.FamiliarityByCourse {
		ids[id] = true
	}
	for id := range p.CoverageByCourse {
		ids[id] = true
	}
	for id := range p.WeaknessByCourse {
		ids[id] = true
	}
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	if len(sorted) > 0 {
		ctx.Println("\nCourse        familiarity  coverage  weakness")
	}
	for _, id := range sorted {
		ctx.Printf("  %-12s %-12s %-9s %s\n", id,
			score(p.FamiliarityByCourse, id), coverage(p.CoverageByCourse, id), score(p.WeaknessByCourse, id))
	}

	if p.Capacity != nil {
		ctx.Printf("\nHours: %.2f weekday / %.2f weekend\n", p.Capacity.WeekdayHours, p.Capacity.WeekendHours)
	}
}

func score(m map[string]int, id string) string {
	if v, ok := m[id]; ok {
		return fmt.Sprintf("%d/5", v)
	}
	return "-"
}

func coverage(m map[string]float64, id string) string {
	if v, ok := m[id]; ok {
		return fmt.Sprintf("%.0f%%", v)
	}
	return "-"
}

type ClearCmd struct{}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if sess.Profile == nil {
		ctx.Println("No profile to clear.")
		return nil
	}
	if err := ctx.SaveSession(session.ClearProfile(sess)); err != nil {
		return err
	}
	ctx.Println("✓ Profile cleared")
	return nil
}

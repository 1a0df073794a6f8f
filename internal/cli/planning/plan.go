package planning

import (
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/estimator"
	"github.com/julianstephens/studyplan/internal/export"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/session"
	"github.com/julianstephens/studyplan/internal/validation"
)

type EstimateCmd struct{}

func (c *EstimateCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if len(sess.Courses) == 0 {
		return errors.New("no courses to estimate, run 'studyplan course import <file>' first")
	}

	res := estimator.Estimate(sess.Courses, sess.Profile)
	total := 0.0
	for _, e := range res.Estimates {
		ctx.Printf("%-10s %-16s %6.2fh  %-6s %s\n", e.CourseID, e.TopicID, e.EstimatedHours, e.Confidence, e.Basis)
		total += e.EstimatedHours
	}
	ctx.Printf("\nTotal: %.2fh across %d topic(s)\n", total, len(res.Estimates))
	printWarnings(ctx, res.Warnings)
	return nil
}

type PlanCmd struct {
	Weight map[string]float64 `help:"Override a course's priority weight for this run (course=weight)." mapsep:","`
	Note   string             `help:"Note to record in the session history."`
}

func (c *PlanCmd) Validate() error {
	return validation.ValidateOverrides(c.Weight)
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if len(sess.Courses) == 0 {
		return errors.New("no courses to plan, run 'studyplan course import <file>' first")
	}

	ctx.PerformAutomaticBackup()

	next, err := session.Regenerate(sess, ctx.Scheduler, session.RegenerateRequest{
		Overrides: c.Weight,
		Note:      c.Note,
	})
	if err != nil {
		return err
	}
	if err := ctx.SaveSession(next); err != nil {
		return err
	}

	PrintSummary(ctx, *next.Summary)
	ctx.Printf("\n%d plan row(s). See 'studyplan plan show' or 'studyplan export'.\n", len(next.Rows))
	return nil
}

// ShowCmd prints the stored day-by-day plan.
type ShowCmd struct {
	From string `help:"Only show rows on or after this date (YYYY-MM-DD)."`
	To   string `help:"Only show rows on or before this date (YYYY-MM-DD)."`
}

func (c *ShowCmd) Validate() error {
	for field, v := range map[string]string{"from": c.From, "to": c.To} {
		if v == "" {
			continue
		}
		if _, err := validation.ParseDate(field, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if sess.Summary == nil {
		return errors.New("no plan yet, run 'studyplan plan' first")
	}

	lastDate := ""
	shown := 0
	for _, r := range sess.Rows {
		if (c.From != "" && r.Date < c.From) || (c.To != "" && r.Date > c.To) {
			continue
		}
		if r.Date != lastDate {
			ctx.Printf("\n%s\n", r.Date)
			lastDate = r.Date
		}
		ctx.Printf("  %-10s %-16s %-14s %5.2fh  %3.0f%%\n", r.CourseID, r.TopicID, r.TaskType, r.Hours, r.Progress*100)
		shown++
	}
	if shown == 0 {
		ctx.Println("No plan rows in range.")
	}
	return nil
}

type ExportCmd struct {
	Dir string `arg:"" optional:"" default:"." type:"path" help:"Directory to write study_plan.csv and study_plan.md into."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	paths, err := export.Plan(c.Dir, sess)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Wrote %s\n✓ Wrote %s\n", paths.CSV, paths.Markdown)
	return nil
}

// ValidateCmd re-checks the stored plan against the scheduling rules.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if sess.Summary == nil {
		return errors.New("no plan yet, run 'studyplan plan' first")
	}

	result := validation.New().ValidatePlan(sess.Rows, *sess.Summary, sess.Constraints, sess.Profile)
	ctx.Println(result.FormatReport())
	if result.HasConflicts() {
		return fmt.Errorf("plan has %d conflict(s)", len(result.Conflicts))
	}
	return nil
}

// PrintSummary writes the feasibility report for a plan.
func PrintSummary(ctx *cli.Context, s models.PlanSummary) {
	if s.Feasible {
		ctx.Println("✓ Plan is feasible")
	} else {
		ctx.Printf("❌ Plan is short by %.2fh\n", s.ShortfallHours)
	}
	ctx.Printf("  Required:  %.2fh\n", s.TotalRequiredHours)
	ctx.Printf("  Available: %.2fh\n", s.TotalAvailableHours)
	ctx.Printf("  Planned:   %.2fh\n", s.TotalAllocatedHours)

	courses := append([]models.CourseTotals(nil), s.Courses...)
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].CourseID < courses[j].CourseID })
	if len(courses) > 0 {
		ctx.Println()
	}
	for _, c := range courses {
		status := "✓"
		if !c.Feasible {
			status = fmt.Sprintf("short %.2fh", c.ShortfallHours)
		}
		ctx.Printf("  %-10s exam %s  weight %.2f  study %.2fh  review %.2fh  final %.2fh  %s\n",
			c.CourseID, c.ExamDate, c.PriorityWeight, c.StudyHours, c.ReviewHours, c.FinalReviewHours, status)
	}

	printWarnings(ctx, s.Warnings)

	if len(s.Mitigations) > 0 {
		ctx.Println("\nOptions:")
		for i, m := range s.Mitigations {
			ctx.Printf("  %d. %s\n", i+1, m.Description)
		}
	}
}

func printWarnings(ctx *cli.Context, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	ctx.Println("\nWarnings:")
	for _, w := range warnings {
		ctx.Printf("  ⚠ %s\n", w)
	}
}

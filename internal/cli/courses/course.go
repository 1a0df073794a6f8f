package courses

import (
	"fmt"
	"sort"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/ingest"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/profile"
	"github.com/julianstephens/studyplan/internal/session"
)

type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML or JSON file with one course or a list of courses."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	specs, warnings, err := ingest.LoadCourses(c.File)
	if err != nil {
		return err
	}

	for _, spec := range specs {
		sess = session.ReplaceCourse(sess, spec)
		ctx.Printf("✓ Imported %s (%d topic(s))\n", spec.CourseID, len(spec.Topics))
	}
	for _, w := range warnings {
		ctx.Printf("⚠ %s\n", w)
		sess = session.AddNote(sess, models.HistoryWarning, w)
	}

	prompts := profile.ReviewCourses(specs)
	if len(prompts) > 0 {
		ctx.Println("\nPlease confirm:")
	}
	for _, p := range prompts {
		ctx.Printf("  • %s\n", p)
		sess = session.AddNote(sess, models.HistoryPrompt, p)
	}

	return ctx.SaveSession(sess)
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if len(sess.Courses) == 0 {
		ctx.Println("No courses. Import some with 'studyplan course import <file>'.")
		return nil
	}

	courses := append([]models.CourseSpec(nil), sess.Courses...)
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].CourseID < courses[j].CourseID })

	for _, course := range courses {
		exam := course.ExamDate
		if exam == "" {
			exam = "(none)"
		}
		ctx.Printf("%s  %s  exam %s  weight %.2f\n", course.CourseID, course.Name, exam, course.Weight())
		for _, t := range course.Topics {
			pages := "?"
			if t.PageCount != nil {
				pages = fmt.Sprintf("%d", *t.PageCount)
			}
			ctx.Printf("    %-16s %-32s %4s pages  %-6s %s\n", t.TopicID, t.Title, pages, t.Difficulty, t.TaskMix)
		}
	}
	return nil
}

type RemoveCmd struct {
	CourseID string `arg:"" help:"Course id to remove."`
}

func (c *RemoveCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	next, ok := session.RemoveCourse(sess, c.CourseID)
	if !ok {
		return fmt.Errorf("course %q is not in session %s", c.CourseID, sess.Name)
	}
	if err := ctx.SaveSession(next); err != nil {
		return err
	}
	ctx.Printf("✓ Removed %s. Run 'studyplan plan' to refresh the schedule.\n", c.CourseID)
	return nil
}

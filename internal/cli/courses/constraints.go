package courses

import (
	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/session"
	"github.com/julianstephens/studyplan/internal/validation"
)

// ConstraintsSetCmd updates only the flags that are given.
type ConstraintsSetCmd struct {
	Start    *string  `help:"First study day (YYYY-MM-DD)."`
	Weekday  *float64 `help:"Study hours per weekday."`
	Weekend  *float64 `help:"Study hours per weekend day."`
	Buffer   *int     `help:"Days before each exam reserved for final review."`
	Chunk    *float64 `help:"Allocation granularity in hours."`
	Interval *int     `help:"Days between finishing a topic and its spaced review."`
}

func (c *ConstraintsSetCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	next := sess.Constraints
	if c.Start != nil {
		next.StartDate = *c.Start
	}
	if c.Weekday != nil {
		next.WeekdayHours = *c.Weekday
	}
	if c.Weekend != nil {
		next.WeekendHours = *c.Weekend
	}
	if c.Buffer != nil {
		next.BufferDays = *c.Buffer
	}
	if c.Chunk != nil {
		next.ChunkHours = *c.Chunk
	}
	if c.Interval != nil {
		next.ReviewIntervalDays = *c.Interval
	}

	if err := validation.ValidateConstraints(next, nil); err != nil {
		return err
	}
	if err := ctx.SaveSession(session.SetConstraints(sess, next)); err != nil {
		return err
	}
	ctx.Println("✓ Constraints updated")
	return (&ConstraintsShowCmd{}).Run(ctx)
}

type ConstraintsShowCmd struct{}

func (c *ConstraintsShowCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	cons := sess.Constraints
	ctx.Printf("Start date:       %s\n", cons.StartDate)
	ctx.Printf("Weekday hours:    %.2f\n", cons.WeekdayHours)
	ctx.Printf("Weekend hours:    %.2f\n", cons.WeekendHours)
	ctx.Printf("Buffer days:      %d\n", cons.BufferDays)
	ctx.Printf("Chunk hours:      %.2f\n", cons.ChunkHours)
	ctx.Printf("Review interval:  %d day(s)\n", cons.ReviewIntervalDays)
	if sess.Profile != nil && sess.Profile.Capacity != nil {
		ctx.Printf("Profile override: %.2fh weekday / %.2fh weekend\n",
			sess.Profile.Capacity.WeekdayHours, sess.Profile.Capacity.WeekendHours)
	}
	return nil
}

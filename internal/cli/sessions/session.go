package sessions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/session"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/validation"
)

type NewCmd struct {
	Name       string `arg:"" help:"Session name."`
	Start      string `help:"First study day (YYYY-MM-DD). Defaults to today."`
	NoActivate bool   `help:"Do not make the new session active."`
}

func (c *NewCmd) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("session name cannot be empty")
	}
	if c.Start != "" {
		if _, err := validation.ParseDate("start", c.Start); err != nil {
			return err
		}
	}
	return nil
}

func (c *NewCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Store.GetSessionByName(c.Name); err == nil {
		return fmt.Errorf("a session named %q already exists", c.Name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	constraints := models.DefaultConstraints(session.Now())
	if c.Start != "" {
		constraints.StartDate = c.Start
	}

	sess := session.New(c.Name, constraints)
	if err := ctx.SaveSession(sess); err != nil {
		return err
	}
	ctx.Printf("✓ Created session %q starting %s\n", sess.Name, constraints.StartDate)

	if !c.NoActivate {
		if err := ctx.Activate(sess.ID); err != nil {
			return fmt.Errorf("failed to activate session: %w", err)
		}
		ctx.Println("  Now active. Next: studyplan course import <file>")
	}
	return nil
}

type ListCmd struct {
	All bool `help:"Include deleted sessions."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	infos, err := ctx.Store.ListSessions(c.All)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(infos) == 0 {
		ctx.Println("No sessions found. Create one with 'studyplan session new <name>'.")
		return nil
	}

	active, _ := ctx.Store.GetSetting(storage.SettingActiveSession)
	for _, info := range infos {
		marker := " "
		if info.ID == active {
			marker = "*"
		}
		status := "no plan"
		if info.HasPlan {
			status = "planned"
		}
		if info.Deleted {
			status = "deleted"
		}
		ctx.Printf("%s %-20s %2d course(s)  %-8s updated %s  [%s]\n",
			marker, info.Name, info.CourseCount, status,
			info.UpdatedAt.Local().Format("2006-01-02 15:04"), info.ID)
	}
	return nil
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	ctx.Printf("Session: %s [%s]\n", sess.Name, sess.ID)
	ctx.Printf("Created: %s\n", sess.CreatedAt.Local().Format(time.RFC1123))
	ctx.Printf("Updated: %s\n", sess.UpdatedAt.Local().Format(time.RFC1123))
	ctx.Printf("Start:   %s\n", sess.Constraints.StartDate)
	ctx.Println()

	if len(sess.Courses) == 0 {
		ctx.Println("No courses yet.")
	}
	for _, course := range sess.Courses {
		exam := course.ExamDate
		if exam == "" {
			exam = "no exam date"
		}
		ctx.Printf("  %s  %-24s %2d topic(s)  exam %s\n", course.CourseID, course.Name, len(course.Topics), exam)
	}

	if sess.Profile != nil {
		ctx.Printf("\nProfile: %d ranked course(s)\n", len(sess.Profile.RankedCourses))
	}
	if sess.Summary != nil {
		feasible := "feasible"
		if !sess.Summary.Feasible {
			feasible = fmt.Sprintf("short %.2fh", sess.Summary.ShortfallHours)
		}
		ctx.Printf("Plan:    %d row(s), %.2fh required, %s\n", len(sess.Rows), sess.Summary.TotalRequiredHours, feasible)
	}
	return nil
}

type UseCmd struct {
	Name string `arg:"" help:"Session to make active."`
}

func (c *UseCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Store.GetSessionByName(c.Name)
	if err != nil {
		return fmt.Errorf("failed to find session %q: %w", c.Name, err)
	}
	if err := ctx.Activate(sess.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Active session is now %q\n", sess.Name)
	return nil
}

type DeleteCmd struct {
	Name string `arg:"" help:"Session to delete."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Store.GetSessionByName(c.Name)
	if err != nil {
		return fmt.Errorf("failed to find session %q: %w", c.Name, err)
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteSession(sess.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted session %q (restore with 'studyplan session restore %s')\n", sess.Name, sess.ID)
	return nil
}

type RestoreCmd struct {
	ID string `arg:"" help:"Id of the deleted session."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.RestoreSession(c.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Restored session %s\n", c.ID)
	return nil
}

// HistoryCmd prints the session's recent profile submissions and notes.
type HistoryCmd struct{}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if len(sess.History) == 0 {
		ctx.Println("No history yet.")
		return nil
	}
	ctx.Printf("Last %d entries (keeping %d):\n", len(sess.History), constants.HistoryMax)
	for _, h := range sess.History {
		ctx.Printf("  %s  %-8s %s\n", h.CreatedAt.Local().Format("2006-01-02 15:04"), h.Kind, h.Text)
	}
	return nil
}

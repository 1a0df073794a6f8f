package system

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/studyplan/internal/backup"
	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Active session", needsDB: true, warnOnly: true, run: checkActiveSession},
	{name: "Plan validation", needsDB: true, run: checkPlans},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Println("✓ Database reachable: OK")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED\n", c.name)
		case err != nil && c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		case err != nil:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
		default:
			ctx.Printf("✓ %s: OK\n", c.name)
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

var errSkipped = errors.New("skipped")

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.ListSessions(true); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		// Backups cover SQLite files only.
		return errSkipped
	}
	backups, err := backup.NewManager(path).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with 'studyplan backup create'")
	}
	return nil
}

func checkActiveSession(ctx *cli.Context) error {
	id, err := ctx.Store.GetSetting(storage.SettingActiveSession)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no active session, run 'studyplan session new <name>'")
	}
	if err != nil {
		return err
	}
	if _, err := ctx.Store.GetSession(id); err != nil {
		return fmt.Errorf("active session %s cannot be loaded: %w", id, err)
	}
	return nil
}

func checkPlans(ctx *cli.Context) error {
	infos, err := ctx.Store.ListSessions(false)
	if err != nil {
		return err
	}
	v := validation.New()
	broken := 0
	for _, info := range infos {
		if !info.HasPlan {
			continue
		}
		sess, err := ctx.Store.GetSession(info.ID)
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", info.Name, err)
		}
		if sess.Summary == nil {
			continue
		}
		result := v.ValidatePlan(sess.Rows, *sess.Summary, sess.Constraints, sess.Profile)
		if result.HasConflicts() {
			broken++
			ctx.Printf("   %s: %d conflict(s)\n", sess.Name, len(result.Conflicts))
		}
	}
	if broken > 0 {
		return fmt.Errorf("%d session plan(s) have conflicts, run 'studyplan plan' to regenerate", broken)
	}
	return nil
}

func checkClockTimezone(*cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

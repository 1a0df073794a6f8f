package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/cli/backups"
	"github.com/julianstephens/studyplan/internal/cli/courses"
	"github.com/julianstephens/studyplan/internal/cli/planning"
	"github.com/julianstephens/studyplan/internal/cli/profiles"
	"github.com/julianstephens/studyplan/internal/cli/sessions"
	"github.com/julianstephens/studyplan/internal/cli/system"
	"github.com/julianstephens/studyplan/internal/constants"
	apperrors "github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/keyring"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/scheduler"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/storage/postgres"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use the keyring, ${env} or .pgpass instead." type:"string" default:"${config}"`
	Session string `short:"s" help:"Session name to act on instead of the active one."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init   system.InitCmd   `cmd:"" help:"Initialize studyplan storage."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Tui    system.TuiCmd    `cmd:"" help:"Browse the active session interactively."`

	Session_ struct {
		New     sessions.NewCmd     `cmd:"" help:"Create a session and make it active."`
		List    sessions.ListCmd    `cmd:"" help:"List sessions." default:"1"`
		Show    sessions.ShowCmd    `cmd:"" help:"Show the current session."`
		Use     sessions.UseCmd     `cmd:"" help:"Make a session active."`
		Delete  sessions.DeleteCmd  `cmd:"" help:"Delete a session."`
		Restore sessions.RestoreCmd `cmd:"" help:"Restore a deleted session."`
		History sessions.HistoryCmd `cmd:"" help:"Show the session history."`
	} `cmd:"" name:"session" help:"Manage study sessions."`

	Course struct {
		Import courses.ImportCmd `cmd:"" help:"Import or replace courses from a YAML or JSON file."`
		List   courses.ListCmd   `cmd:"" help:"List courses." default:"1"`
		Remove courses.RemoveCmd `cmd:"" help:"Remove a course."`
	} `cmd:"" help:"Manage courses."`

	Constraints struct {
		Set  courses.ConstraintsSetCmd  `cmd:"" help:"Update the time budget."`
		Show courses.ConstraintsShowCmd `cmd:"" help:"Show the time budget." default:"1"`
	} `cmd:"" help:"Manage the study time budget."`

	Profile struct {
		Questions profiles.QuestionsCmd `cmd:"" help:"Print the intake questions." default:"1"`
		Intake    profiles.IntakeCmd    `cmd:"" help:"Answer the intake questions interactively."`
		Apply     profiles.ApplyCmd     `cmd:"" help:"Apply answers from a JSON file."`
		Show      profiles.ShowCmd      `cmd:"" help:"Show the current profile."`
		Clear     profiles.ClearCmd     `cmd:"" help:"Remove the profile."`
	} `cmd:"" help:"Manage the learner profile."`

	Estimate planning.EstimateCmd `cmd:"" help:"Estimate study hours per topic."`
	Plan     struct {
		Run      planning.PlanCmd     `cmd:"" help:"Generate the study plan." default:"withargs"`
		Show     planning.ShowCmd     `cmd:"" help:"Show the current plan."`
		Validate planning.ValidateCmd `cmd:"" help:"Check the current plan for conflicts."`
	} `cmd:"" help:"Generate and inspect the study plan."`
	Export planning.ExportCmd `cmd:"" help:"Write the plan as CSV and Markdown."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Exam study planner: estimate hours, check feasibility, schedule topics."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"config":  constants.DefaultConfigPath,
			"env":     constants.ConnectionEnvVar,
		},
	)

	config, err := resolveConfig(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	logDir := filepath.Dir(kong.ExpandPath(constants.DefaultConfigPath))
	if !cli.IsPostgres(config) {
		logDir = filepath.Dir(config)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	var store storage.Provider
	if cli.IsPostgres(config) {
		store = postgres.New(config)
	} else {
		store = sqlite.NewStore(config)
	}

	appCtx := &cli.Context{
		Store:     store,
		Scheduler: scheduler.New(),
		Session:   CLI.Session,
		Out:       os.Stdout,
	}

	command := ctx.Command()
	if !strings.HasPrefix(command, "init") && !strings.HasPrefix(command, "keyring") && !strings.HasPrefix(command, "doctor") {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}
	defer store.Close()

	logger.Debug("Running command", "command", command, "store", store.GetConfigPath())
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

// resolveConfig picks the database location. An explicit --config wins,
// then the environment, then the keyring, then the default file path.
// Connection strings from the flag or environment must not embed passwords.
func resolveConfig(flag string) (string, error) {
	config := flag
	fromKeyring := false
	if flag == constants.DefaultConfigPath {
		if env := os.Getenv(constants.ConnectionEnvVar); env != "" {
			config = env
		} else if stored, err := keyring.GetConnectionString(""); err == nil {
			config = stored
			fromKeyring = true
		} else if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("Keyring lookup failed", "error", err)
		}
	}

	if !cli.IsPostgres(config) {
		return kong.ExpandPath(config), nil
	}
	if fromKeyring {
		return config, nil
	}
	if _, err := postgres.ValidateConnString(config); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return "", fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; store it with 'studyplan keyring set' or use .pgpass")
		}
		return "", err
	}
	return config, nil
}

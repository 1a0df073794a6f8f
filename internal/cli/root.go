package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/studyplan/internal/backup"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/scheduler"
	"github.com/julianstephens/studyplan/internal/session"
	"github.com/julianstephens/studyplan/internal/storage"
)

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	// Session names the session to act on; empty means the active one.
	Session string
	Out     io.Writer
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// PerformAutomaticBackup snapshots a SQLite database before a destructive
// change. Failures are logged, not returned.
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		return
	}
	if _, err := backup.NewManager(path).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// CurrentSession loads the session named by --session, or the active one.
func (c *Context) CurrentSession() (models.Session, error) {
	if c.Session != "" {
		sess, err := c.Store.GetSessionByName(c.Session)
		if errors.Is(err, storage.ErrNotFound) {
			return models.Session{}, fmt.Errorf("no session named %q, see 'studyplan session list'", c.Session)
		}
		return sess, err
	}

	id, err := c.Store.GetSetting(storage.SettingActiveSession)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Session{}, errors.New("no active session, run 'studyplan session new <name>' first")
	}
	if err != nil {
		return models.Session{}, err
	}

	sess, err := c.Store.GetSession(id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Session{}, errors.New("the active session was deleted, run 'studyplan session use <name>'")
	}
	return sess, err
}

// SaveSession stamps and persists a session.
func (c *Context) SaveSession(sess models.Session) error {
	sess.UpdatedAt = session.Now().UTC()
	if err := c.Store.SaveSession(sess); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.Name, err)
	}
	return nil
}

// Activate makes id the default session for later commands.
func (c *Context) Activate(id string) error {
	return c.Store.SetSetting(storage.SettingActiveSession, id)
}

// IsPostgres reports whether a config value is a PostgreSQL connection string.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") ||
		strings.HasPrefix(config, "postgresql://") ||
		strings.Contains(config, "host=")
}

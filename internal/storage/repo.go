package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/studyplan/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNotLoaded = errors.New("storage not loaded")
)

// SettingActiveSession stores the id of the session commands act on by
// default.
const SettingActiveSession = "active_session"

// Dialect selects placeholder syntax.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Rebind rewrites ? placeholders into $n for postgres.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Repo implements the session and settings queries shared by the SQL
// backends. The backends own the connection and set DB once it is open.
type Repo struct {
	DB      *sql.DB
	Dialect Dialect
}

func (r *Repo) exec(q sqlExecer, query string, args ...any) error {
	_, err := q.Exec(r.Dialect.Rebind(query), args...)
	return err
}

type sqlExecer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullJSON(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	s, err := encodeJSON(v)
	return sql.NullString{String: s, Valid: err == nil}, err
}

// SaveSession inserts or replaces a session together with its plan rows and
// history in one transaction.
func (r *Repo) SaveSession(sess models.Session) error {
	if r.DB == nil {
		return ErrNotLoaded
	}
	if sess.ID == "" {
		return fmt.Errorf("session id is required")
	}

	courses, err := encodeJSON(sess.Courses)
	if err != nil {
		return fmt.Errorf("encoding courses: %w", err)
	}
	constraints, err := encodeJSON(sess.Constraints)
	if err != nil {
		return fmt.Errorf("encoding constraints: %w", err)
	}
	estimates, err := encodeJSON(sess.Estimates)
	if err != nil {
		return fmt.Errorf("encoding estimates: %w", err)
	}
	profile, err := nullJSON(sess.Profile, sess.Profile != nil)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	summary, err := nullJSON(sess.Summary, sess.Summary != nil)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = r.exec(tx, `
		INSERT INTO sessions (id, name, created_at, updated_at, courses, constraints, profile, estimates, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at,
			courses = excluded.courses,
			constraints = excluded.constraints,
			profile = excluded.profile,
			estimates = excluded.estimates,
			summary = excluded.summary`,
		sess.ID, sess.Name, formatTime(sess.CreatedAt), formatTime(sess.UpdatedAt),
		courses, constraints, profile, estimates, summary)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if err := r.exec(tx, "DELETE FROM plan_rows WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to clear plan rows: %w", err)
	}
	for i, row := range sess.Rows {
		err := r.exec(tx, `
			INSERT INTO plan_rows (session_id, seq, date, course_id, topic_id, hours, task_type, progress)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, i, row.Date, row.CourseID, row.TopicID, row.Hours, string(row.TaskType), row.Progress)
		if err != nil {
			return fmt.Errorf("failed to save plan row %d: %w", i, err)
		}
	}

	if err := r.exec(tx, "DELETE FROM history WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	for i, h := range sess.History {
		err := r.exec(tx, `
			INSERT INTO history (id, session_id, seq, created_at, kind, text)
			VALUES (?, ?, ?, ?, ?, ?)`,
			h.ID, sess.ID, i, formatTime(h.CreatedAt), string(h.Kind), h.Text)
		if err != nil {
			return fmt.Errorf("failed to save history entry %d: %w", i, err)
		}
	}

	return tx.Commit()
}

const sessionColumns = `id, name, created_at, updated_at, courses, constraints, profile, estimates, summary`

func (r *Repo) GetSession(id string) (models.Session, error) {
	return r.getSession("id = ?", id)
}

func (r *Repo) GetSessionByName(name string) (models.Session, error) {
	return r.getSession("name = ?", name)
}

func (r *Repo) getSession(where string, arg string) (models.Session, error) {
	if r.DB == nil {
		return models.Session{}, ErrNotLoaded
	}

	row := r.DB.QueryRow(r.Dialect.Rebind(
		"SELECT "+sessionColumns+" FROM sessions WHERE "+where+" AND deleted_at IS NULL"), arg)

	var sess models.Session
	var createdAt, updatedAt, courses, constraints, estimates string
	var profile, summary sql.NullString
	err := row.Scan(&sess.ID, &sess.Name, &createdAt, &updatedAt, &courses, &constraints, &profile, &estimates, &summary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, fmt.Errorf("session %q: %w", arg, ErrNotFound)
		}
		return models.Session{}, err
	}

	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Session{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if sess.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Session{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(courses), &sess.Courses); err != nil {
		return models.Session{}, fmt.Errorf("decoding courses: %w", err)
	}
	if err := json.Unmarshal([]byte(constraints), &sess.Constraints); err != nil {
		return models.Session{}, fmt.Errorf("decoding constraints: %w", err)
	}
	if err := json.Unmarshal([]byte(estimates), &sess.Estimates); err != nil {
		return models.Session{}, fmt.Errorf("decoding estimates: %w", err)
	}
	if profile.Valid {
		sess.Profile = &models.Profile{}
		if err := json.Unmarshal([]byte(profile.String), sess.Profile); err != nil {
			return models.Session{}, fmt.Errorf("decoding profile: %w", err)
		}
	}
	if summary.Valid {
		sess.Summary = &models.PlanSummary{}
		if err := json.Unmarshal([]byte(summary.String), sess.Summary); err != nil {
			return models.Session{}, fmt.Errorf("decoding summary: %w", err)
		}
	}

	if sess.Rows, err = r.planRows(sess.ID); err != nil {
		return models.Session{}, err
	}
	if sess.History, err = r.history(sess.ID); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func (r *Repo) planRows(sessionID string) ([]models.PlanRow, error) {
	rows, err := r.DB.Query(r.Dialect.Rebind(`
		SELECT date, course_id, topic_id, hours, task_type, progress
		FROM plan_rows WHERE session_id = ? ORDER BY seq`), sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PlanRow
	for rows.Next() {
		var row models.PlanRow
		var taskType string
		if err := rows.Scan(&row.Date, &row.CourseID, &row.TopicID, &row.Hours, &taskType, &row.Progress); err != nil {
			return nil, err
		}
		row.TaskType = models.TaskType(taskType)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repo) history(sessionID string) ([]models.HistoryEntry, error) {
	rows, err := r.DB.Query(r.Dialect.Rebind(`
		SELECT id, created_at, kind, text
		FROM history WHERE session_id = ? ORDER BY seq`), sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var h models.HistoryEntry
		var createdAt, kind string
		if err := rows.Scan(&h.ID, &createdAt, &kind, &h.Text); err != nil {
			return nil, err
		}
		if h.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing history created_at: %w", err)
		}
		h.Kind = models.HistoryKind(kind)
		out = append(out, h)
	}
	return out, rows.Err()
}

// ListSessions returns sessions ordered by most recently updated.
func (r *Repo) ListSessions(includeDeleted bool) ([]SessionInfo, error) {
	if r.DB == nil {
		return nil, ErrNotLoaded
	}

	query := `
		SELECT s.id, s.name, s.created_at, s.updated_at, s.courses, s.summary IS NOT NULL, s.deleted_at IS NOT NULL
		FROM sessions s`
	if !includeDeleted {
		query += " WHERE s.deleted_at IS NULL"
	}
	query += " ORDER BY s.updated_at DESC, s.name"

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var createdAt, updatedAt, courses string
		if err := rows.Scan(&info.ID, &info.Name, &createdAt, &updatedAt, &courses, &info.HasPlan, &info.Deleted); err != nil {
			return nil, err
		}
		if info.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if info.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		var specs []models.CourseSpec
		if err := json.Unmarshal([]byte(courses), &specs); err != nil {
			return nil, fmt.Errorf("decoding courses: %w", err)
		}
		info.CourseCount = len(specs)
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteSession soft deletes a session.
func (r *Repo) DeleteSession(id string) error {
	deleted, err := r.deletedState(id)
	if err != nil {
		return err
	}
	if deleted {
		return fmt.Errorf("session with id %s is already deleted", id)
	}
	return r.exec(r.DB, "UPDATE sessions SET deleted_at = ? WHERE id = ?", formatTime(time.Now()), id)
}

func (r *Repo) RestoreSession(id string) error {
	deleted, err := r.deletedState(id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("cannot restore a session that is not deleted: %s", id)
	}
	return r.exec(r.DB, "UPDATE sessions SET deleted_at = NULL WHERE id = ?", id)
}

func (r *Repo) deletedState(id string) (bool, error) {
	if r.DB == nil {
		return false, ErrNotLoaded
	}
	var deletedAt sql.NullString
	err := r.DB.QueryRow(r.Dialect.Rebind("SELECT deleted_at FROM sessions WHERE id = ?"), id).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("session with id %s: %w", id, ErrNotFound)
		}
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return deletedAt.Valid, nil
}

func (r *Repo) GetSetting(key string) (string, error) {
	if r.DB == nil {
		return "", ErrNotLoaded
	}
	var value string
	err := r.DB.QueryRow(r.Dialect.Rebind("SELECT value FROM settings WHERE key = ?"), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	return value, err
}

func (r *Repo) SetSetting(key, value string) error {
	if r.DB == nil {
		return ErrNotLoaded
	}
	return r.exec(r.DB, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
}

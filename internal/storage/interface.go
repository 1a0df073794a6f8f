package storage

import (
	"time"

	"github.com/julianstephens/studyplan/internal/models"
)

// SessionInfo is the listing view of a stored session.
type SessionInfo struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CourseCount int
	HasPlan     bool
	Deleted     bool
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Sessions
	SaveSession(models.Session) error
	GetSession(id string) (models.Session, error)
	GetSessionByName(name string) (models.Session, error)
	ListSessions(includeDeleted bool) ([]SessionInfo, error)
	DeleteSession(id string) error
	RestoreSession(id string) error

	// Settings
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error

	// Utils
	GetConfigPath() string
	SchemaVersion() (current, latest int, err error)
}

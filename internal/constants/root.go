package constants

// SessionState represents the active tab of the TUI
type SessionState int

const (
	AppName            = "studyplan"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/studyplan/studyplan.db"
	ConnectionEnvVar   = "STUDYPLAN_DB_CONNECTION"
	Version            = "v0.1.0"

	// DateFormat is the date layout used for every stored and printed date (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Log rotation
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "studyplan-"
	BackupFileSuffix = ".db"

	// Export file names
	ExportCSVName      = "study_plan.csv"
	ExportMarkdownName = "study_plan.md"

	// HistoryMax is the number of history entries kept per session.
	HistoryMax = 10
)

// TUI tabs
const (
	StatePlan SessionState = iota
	StateSummary
	StateEstimates
	StateHistory
)

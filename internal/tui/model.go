package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/scheduler"
	"github.com/julianstephens/studyplan/internal/session"
	"github.com/julianstephens/studyplan/internal/storage"
	"github.com/julianstephens/studyplan/internal/tui/components/plan"
	"github.com/julianstephens/studyplan/internal/validation"
)

var tabTitles = []string{"Plan", "Summary", "Estimates", "History"}

type Model struct {
	store             storage.Provider
	scheduler         *scheduler.Scheduler
	session           models.Session
	state             constants.SessionState
	keys              KeyMap
	help              help.Model
	planModel         plan.Model
	status            string
	validationWarning string
	quitting          bool
	width             int
	height            int
}

func NewModel(store storage.Provider, sched *scheduler.Scheduler, sess models.Session) Model {
	pm := plan.New(0, 0)
	pm.SetRows(sess.Rows, sess.Courses)

	m := Model{
		store:     store,
		scheduler: sched,
		session:   sess,
		state:     constants.StatePlan,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		planModel: pm,
	}
	m.updateValidationStatus()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == constants.StatePlan {
		keys = append(keys, m.keys.Up, m.keys.Down)
	}
	return append(keys, m.keys.Generate)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right}
	actions := []key.Binding{m.keys.Generate}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Session returns the session as currently displayed.
func (m Model) Session() models.Session {
	return m.session
}

// regenerate replans the session and persists the result.
func (m *Model) regenerate() {
	next, err := session.Regenerate(m.session, m.scheduler, session.RegenerateRequest{Note: "Regenerated from the TUI."})
	if err != nil {
		m.status = "⚠ " + err.Error()
		return
	}
	next.UpdatedAt = session.Now().UTC()
	if err := m.store.SaveSession(next); err != nil {
		m.status = "⚠ failed to save plan: " + err.Error()
		return
	}

	m.session = next
	m.planModel.SetRows(next.Rows, next.Courses)
	m.updateValidationStatus()
	if next.Summary.Feasible {
		m.status = "✓ Plan regenerated"
	} else {
		m.status = fmt.Sprintf("❌ Plan regenerated, short by %.2fh", next.Summary.ShortfallHours)
	}
}

func (m *Model) updateValidationStatus() {
	if m.session.Summary == nil {
		m.validationWarning = ""
		return
	}
	result := validation.New().ValidatePlan(m.session.Rows, *m.session.Summary, m.session.Constraints, m.session.Profile)
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.validationWarning = ""
	}
}

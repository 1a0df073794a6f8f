package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyplan/internal/models"
)

var (
	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	courseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)

	topicStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model is a scrollable day-by-day view of plan rows.
type Model struct {
	viewport viewport.Model
	rows     []models.PlanRow
	titles   map[string]string
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		titles:   make(map[string]string),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.rows) == 0 {
		return "No plan yet. Press 'g' to generate."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetRows replaces the displayed rows. Topic titles are looked up from
// courses; topics without a title show their id.
func (m *Model) SetRows(rows []models.PlanRow, courses []models.CourseSpec) {
	m.rows = rows
	m.titles = make(map[string]string)
	for _, c := range courses {
		for _, t := range c.Topics {
			if t.Title != "" {
				m.titles[c.CourseID+"/"+t.TopicID] = t.Title
			}
		}
	}
	m.Render()
}

func (m *Model) Render() {
	if len(m.rows) == 0 {
		m.viewport.SetContent("No plan loaded.")
		return
	}

	var b strings.Builder
	current := ""
	for _, row := range m.rows {
		if row.Date != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = row.Date
			b.WriteString(dateStyle.Render(row.Date) + "\n")
		}

		label := row.TopicID
		if title, ok := m.titles[row.CourseID+"/"+row.TopicID]; ok {
			label = title
		}
		fmt.Fprintf(&b, "  %s %s %s\n",
			courseStyle.Render(row.CourseID),
			topicStyle.Render(fmt.Sprintf("%s %.2fh", label, row.Hours)),
			statusStyle.Render(fmt.Sprintf("%s %.0f%%", row.TaskType, row.Progress*100)),
		)
	}
	m.viewport.SetContent(b.String())
}

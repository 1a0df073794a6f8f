package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studyplan/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StatePlan:
		content = m.planModel.View()
	case constants.StateSummary:
		content = m.viewSummary()
	case constants.StateEstimates:
		content = m.viewEstimates()
	case constants.StateHistory:
		content = m.viewHistory()
	}

	parts := []string{m.viewTabs(), docStyle.Render(content)}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	if m.validationWarning != "" {
		parts = append(parts, warningStyle.Render(m.validationWarning))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	tabs := []string{titleStyle.Render(m.session.Name)}
	for i, title := range tabTitles {
		if m.state == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewSummary() string {
	s := m.session.Summary
	if s == nil {
		return "No plan yet. Press 'g' to generate."
	}

	var b strings.Builder
	if s.Feasible {
		b.WriteString(okStyle.Render("✓ Plan is feasible") + "\n\n")
	} else {
		b.WriteString(dangerStyle.Render(fmt.Sprintf("❌ Plan is short by %.2fh", s.ShortfallHours)) + "\n\n")
	}
	fmt.Fprintf(&b, "Required  %.2fh\nAvailable %.2fh\nPlanned   %.2fh\n\n",
		s.TotalRequiredHours, s.TotalAvailableHours, s.TotalAllocatedHours)

	for _, c := range s.Courses {
		mark := "✓"
		if !c.Feasible {
			mark = "❌"
		}
		fmt.Fprintf(&b, "%s %-10s exam %s  required %.2fh  study %.2fh  review %.2fh  final %.2fh\n",
			mark, c.CourseID, c.ExamDate, c.RequiredHours, c.StudyHours, c.ReviewHours, c.FinalReviewHours)
	}

	if len(s.Warnings) > 0 {
		b.WriteString("\n" + headerStyle.Render("Warnings") + "\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "  • %s\n", w)
		}
	}
	if len(s.Mitigations) > 0 {
		b.WriteString("\n" + headerStyle.Render("Options") + "\n")
		for i, mit := range s.Mitigations {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, mit.Description)
		}
	}
	return b.String()
}

func (m Model) viewEstimates() string {
	if len(m.session.Estimates) == 0 {
		return "No estimates yet. Press 'g' to generate."
	}
	var b strings.Builder
	total := 0.0
	for _, e := range m.session.Estimates {
		fmt.Fprintf(&b, "%-10s %-20s %6.2fh  %-6s %s\n", e.CourseID, e.TopicID, e.EstimatedHours, e.Confidence, e.Basis)
		total += e.EstimatedHours
	}
	fmt.Fprintf(&b, "\nTotal: %.2fh", total)
	return b.String()
}

func (m Model) viewHistory() string {
	if len(m.session.History) == 0 {
		return "No history."
	}
	var b strings.Builder
	for _, h := range m.session.History {
		fmt.Fprintf(&b, "%s  %-8s %s\n", h.CreatedAt.Local().Format("2006-01-02 15:04"), h.Kind, h.Text)
	}
	return b.String()
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/models"
)

// CSVHeaders are the columns written by WriteCSV.
var CSVHeaders = []string{"date", "course_id", "task_type", "topic_id", "topic_label", "hours", "progress"}

// Paths are the files written by Plan.
type Paths struct {
	CSV      string
	Markdown string
}

// Plan writes study_plan.csv and study_plan.md into dir, creating it if
// needed. Rows are written in the order given.
func Plan(dir string, sess models.Session) (Paths, error) {
	if sess.Summary == nil {
		return Paths{}, fmt.Errorf("session %q has no plan, run 'studyplan plan' first", sess.Name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Paths{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	paths := Paths{
		CSV:      filepath.Join(dir, constants.ExportCSVName),
		Markdown: filepath.Join(dir, constants.ExportMarkdownName),
	}
	titles := topicTitles(sess.Courses)

	if err := writeFile(paths.CSV, func(w io.Writer) error {
		return WriteCSV(w, sess.Rows, titles)
	}); err != nil {
		return Paths{}, err
	}
	if err := writeFile(paths.Markdown, func(w io.Writer) error {
		return WriteMarkdown(w, sess.Name, sess.Rows, *sess.Summary, titles)
	}); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// TopicKey identifies a topic across courses.
type TopicKey struct {
	CourseID string
	TopicID  string
}

func topicTitles(courses []models.CourseSpec) map[TopicKey]string {
	titles := make(map[TopicKey]string)
	for _, c := range courses {
		for _, t := range c.Topics {
			titles[TopicKey{c.CourseID, t.TopicID}] = t.Title
		}
	}
	return titles
}

func label(titles map[TopicKey]string, row models.PlanRow) string {
	if t := titles[TopicKey{row.CourseID, row.TopicID}]; t != "" {
		return t
	}
	return row.TopicID
}

// WriteCSV writes the rows with a header line.
func WriteCSV(w io.Writer, rows []models.PlanRow, titles map[TopicKey]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Date,
			r.CourseID,
			string(r.TaskType),
			r.TopicID,
			label(titles, r),
			strconv.FormatFloat(r.Hours, 'f', 2, 64),
			strconv.FormatFloat(r.Progress, 'f', 4, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdown renders the summary, per-course totals, warnings,
// mitigations and the day-by-day table.
func WriteMarkdown(w io.Writer, name string, rows []models.PlanRow, summary models.PlanSummary, titles map[TopicKey]string) error {
	var b strings.Builder

	title := "Study Plan"
	if name != "" {
		title += ": " + name
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Required hours: %.2f\n", summary.TotalRequiredHours)
	fmt.Fprintf(&b, "- Available hours: %.2f\n", summary.TotalAvailableHours)
	fmt.Fprintf(&b, "- Planned hours: %.2f\n", summary.TotalAllocatedHours)
	feasible := "Yes"
	if !summary.Feasible {
		feasible = fmt.Sprintf("No (short %.2f hours)", summary.ShortfallHours)
	}
	fmt.Fprintf(&b, "- Feasible: %s\n", feasible)

	if len(summary.Courses) > 0 {
		b.WriteString("\n## Courses\n\n")
		b.WriteString("| Course | Exam | Weight | Required | Study | Review | Final review | Shortfall |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|\n")
		for _, c := range summary.Courses {
			fmt.Fprintf(&b, "| %s | %s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				c.CourseID, c.ExamDate, c.PriorityWeight, c.RequiredHours, c.StudyHours,
				c.ReviewHours, c.FinalReviewHours, c.ShortfallHours)
		}
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Warnings\n")
		for _, warning := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}

	if len(summary.Mitigations) > 0 {
		b.WriteString("\n## Options\n")
		for i, m := range summary.Mitigations {
			fmt.Fprintf(&b, "%d. %s (recovers %.2f hours)\n", i+1, m.Description, m.HoursRecovered)
		}
	}

	b.WriteString("\n## Day-by-Day Plan\n\n")
	b.WriteString("| Date | Course | Task | Topic | Hours | Progress |\n")
	b.WriteString("|---|---|---|---|---:|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %.2f | %.0f%% |\n",
			r.Date, r.CourseID, r.TaskType, escape(label(titles, r)), r.Hours, r.Progress*100)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/studyplan/internal/models"
)

func sampleSession() models.Session {
	return models.Session{
		Name: "finals",
		Courses: []models.CourseSpec{{
			CourseID: "bio",
			Topics:   []models.TopicSpec{{CourseID: "bio", TopicID: "cells", Title: "Cells | Membranes"}},
		}},
		Rows: []models.PlanRow{
			{Date: "2026-10-21", CourseID: "bio", TopicID: "cells", Hours: 2, TaskType: models.TaskInitialStudy, Progress: 0.5},
			{Date: "2026-10-22", CourseID: "bio", TopicID: "cells", Hours: 2, TaskType: models.TaskInitialStudy, Progress: 1},
		},
		Summary: &models.PlanSummary{
			TotalRequiredHours: 10, TotalAvailableHours: 4, TotalAllocatedHours: 4,
			ShortfallHours: 6,
			Warnings:       []string{"course \"bio\" topic \"cells\": missing page count"},
			Mitigations: []models.Mitigation{
				{Kind: models.MitigationStartEarlier, Description: "Start 2 day(s) earlier", HoursRecovered: 6},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	sess := sampleSession()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sess.Rows, topicTitles(sess.Courses)); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(CSVHeaders, ",") {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][4] != "Cells | Membranes" || records[1][5] != "2.00" || records[2][6] != "1.0000" {
		t.Errorf("unexpected row %v / %v", records[1], records[2])
	}
}

func TestWriteMarkdown(t *testing.T) {
	sess := sampleSession()
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, sess.Name, sess.Rows, *sess.Summary, topicTitles(sess.Courses)); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Study Plan: finals",
		"- Feasible: No (short 6.00 hours)",
		"## Warnings",
		"1. Start 2 day(s) earlier (recovers 6.00 hours)",
		`| 2026-10-21 | bio | initial-study | Cells \| Membranes | 2.00 | 50% |`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestPlanWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := Plan(dir, sampleSession())
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	for _, p := range []string{paths.CSV, paths.Markdown} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
	if filepath.Base(paths.CSV) != "study_plan.csv" || filepath.Base(paths.Markdown) != "study_plan.md" {
		t.Errorf("unexpected file names %+v", paths)
	}
}

func TestPlanWithoutSummary(t *testing.T) {
	sess := sampleSession()
	sess.Summary = nil
	if _, err := Plan(t.TempDir(), sess); err == nil {
		t.Error("expected error for session without a plan")
	}
}

package validation

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
	apperrors "github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/models"
)

// ConflictType represents the type of plan conflict
type ConflictType string

const (
	ConflictOverCapacity     ConflictType = "over_capacity"
	ConflictRowAfterExam     ConflictType = "row_after_exam"
	ConflictStudyInBuffer    ConflictType = "study_in_buffer"
	ConflictReviewOutsideBuf ConflictType = "final_review_outside_buffer"
	ConflictOutOfOrder       ConflictType = "out_of_order"
	ConflictMitigationCount  ConflictType = "mitigation_count"
	ConflictNonPositiveHours ConflictType = "non_positive_hours"
	ConflictUnknownCourse    ConflictType = "unknown_course"
	ConflictInvalidDate      ConflictType = "invalid_date"
)

// Conflict is one broken plan rule.
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string // YYYY-MM-DD format (if applicable)
	CourseID    string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// ParseDate parses a YYYY-MM-DD value, reporting failures as a ConfigError
// on field.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, value)
	if err != nil {
		return time.Time{}, apperrors.NewConfigError(field, "invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// ValidateConstraints rejects time budgets the scheduler cannot work with.
func ValidateConstraints(c models.UserConstraints, profile *models.Profile) error {
	if _, err := ParseDate("start_date", c.StartDate); err != nil {
		return err
	}
	if c.WeekdayHours <= 0 || math.IsNaN(c.WeekdayHours) {
		return apperrors.NewConfigError("weekday_hours", "must be positive, got %g", c.WeekdayHours)
	}
	if c.WeekendHours <= 0 || math.IsNaN(c.WeekendHours) {
		return apperrors.NewConfigError("weekend_hours", "must be positive, got %g", c.WeekendHours)
	}
	if c.WeekdayHours > constants.MaxDailyHours || c.WeekendHours > constants.MaxDailyHours {
		return apperrors.NewConfigError("capacity", "daily hours cannot exceed %g", constants.MaxDailyHours)
	}
	if c.BufferDays < 0 {
		return apperrors.NewConfigError("buffer_days", "must not be negative, got %d", c.BufferDays)
	}
	if c.ChunkHours <= 0 || math.IsNaN(c.ChunkHours) {
		return apperrors.NewConfigError("chunk_hours", "must be positive, got %g", c.ChunkHours)
	}
	if math.Round(c.ChunkHours*100) < 1 {
		return apperrors.NewConfigError("chunk_hours", "must be at least 0.01, got %g", c.ChunkHours)
	}
	if c.ReviewIntervalDays <= 0 {
		return apperrors.NewConfigError("review_interval_days", "must be positive, got %d", c.ReviewIntervalDays)
	}
	if profile != nil && profile.Capacity != nil {
		if profile.Capacity.WeekdayHours <= 0 || profile.Capacity.WeekendHours <= 0 {
			return apperrors.NewConfigError("profile.hours", "capacity override must be positive, got weekday=%g weekend=%g",
				profile.Capacity.WeekdayHours, profile.Capacity.WeekendHours)
		}
		if profile.Capacity.WeekdayHours > constants.MaxDailyHours || profile.Capacity.WeekendHours > constants.MaxDailyHours {
			return apperrors.NewConfigError("profile.hours", "daily hours cannot exceed %g", constants.MaxDailyHours)
		}
	}
	return nil
}

// ValidateCourses checks ids and exam dates. Courses without an exam date
// are accepted here; the scheduler assigns them a default.
func ValidateCourses(courses []models.CourseSpec, start time.Time) error {
	seen := make(map[string]bool, len(courses))
	anyOnOrAfterStart := false
	withoutExam := 0

	for _, c := range courses {
		if c.CourseID == "" {
			return apperrors.NewConfigError("course_id", "course id must not be empty")
		}
		if seen[c.CourseID] {
			return apperrors.NewConfigError("course_id", "duplicate course id %q", c.CourseID)
		}
		seen[c.CourseID] = true

		topics := make(map[string]bool, len(c.Topics))
		for _, t := range c.Topics {
			if t.TopicID == "" {
				return apperrors.NewConfigError("topic_id", "course %q has a topic without an id", c.CourseID)
			}
			if topics[t.TopicID] {
				return apperrors.NewConfigError("topic_id", "course %q has duplicate topic id %q", c.CourseID, t.TopicID)
			}
			topics[t.TopicID] = true
		}

		if c.ExamDate == "" {
			withoutExam++
			continue
		}
		exam, err := ParseDate("exam_date", c.ExamDate)
		if err != nil {
			return fmt.Errorf("course %q: %w", c.CourseID, err)
		}
		if !start.After(exam) {
			anyOnOrAfterStart = true
		}
	}

	if len(courses) > 0 && withoutExam == 0 && !anyOnOrAfterStart {
		return apperrors.NewConfigError("start_date", "start date %s is after every exam date", start.Format(constants.DateFormat))
	}
	return nil
}

// ValidateOverrides rejects non-positive override weights.
func ValidateOverrides(overrides map[string]float64) error {
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if w := overrides[id]; w <= 0 || math.IsNaN(w) {
			return apperrors.NewConfigError("weight", "override weight for %q must be positive, got %g", id, w)
		}
	}
	return nil
}

// Validator checks generated plans against the scheduling rules.
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidatePlan reports every row that breaks the capacity, exam-date or
// ordering rules, and a summary whose mitigation count is not 0 or 3.
// Exam dates come from the summary so defaulted dates are honored.
func (v *Validator) ValidatePlan(rows []models.PlanRow, summary models.PlanSummary, constraints models.UserConstraints, profile *models.Profile) ValidationResult {
	var result ValidationResult

	weekday, weekend := constraints.WeekdayHours, constraints.WeekendHours
	if profile != nil && profile.Capacity != nil {
		weekday, weekend = profile.Capacity.WeekdayHours, profile.Capacity.WeekendHours
	}

	exams := make(map[string]time.Time, len(summary.Courses))
	for _, c := range summary.Courses {
		if t, err := time.Parse(constants.DateFormat, c.ExamDate); err == nil {
			exams[c.CourseID] = t
		}
	}

	perDay := make(map[string]int64)
	var days []string
	for i, row := range rows {
		date, err := time.Parse(constants.DateFormat, row.Date)
		if err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Row %d has invalid date %q", i, row.Date),
				CourseID:    row.CourseID,
			})
			continue
		}

		if row.Hours <= 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictNonPositiveHours,
				Description: fmt.Sprintf("%s %s/%s has non-positive hours %.2f", row.Date, row.CourseID, row.TopicID, row.Hours),
				Date:        row.Date,
				CourseID:    row.CourseID,
			})
		}

		if _, ok := perDay[row.Date]; !ok {
			days = append(days, row.Date)
		}
		perDay[row.Date] += int64(math.Round(row.Hours * 100))

		if i > 0 && RowLess(row, rows[i-1]) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOutOfOrder,
				Description: fmt.Sprintf("Row %d (%s %s/%s) is out of order", i, row.Date, row.CourseID, row.TopicID),
				Date:        row.Date,
				CourseID:    row.CourseID,
			})
		}

		exam, ok := exams[row.CourseID]
		if !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownCourse,
				Description: fmt.Sprintf("%s row for unknown course %q", row.Date, row.CourseID),
				Date:        row.Date,
				CourseID:    row.CourseID,
			})
			continue
		}
		bufferStart := exam.AddDate(0, 0, -constraints.BufferDays)
		switch {
		case !date.Before(exam):
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictRowAfterExam,
				Description: fmt.Sprintf("%s %s/%s falls on or after the exam", row.Date, row.CourseID, row.TopicID),
				Date:        row.Date,
				CourseID:    row.CourseID,
			})
		case row.TaskType == models.TaskFinalReview && date.Before(bufferStart):
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictReviewOutsideBuf,
				Description: fmt.Sprintf("%s %s/%s final review before the buffer window", row.Date, row.CourseID, row.TopicID),
				Date:        row.Date,
				CourseID:    row.CourseID,
			})
		case row.TaskType != models.TaskFinalReview && !date.Before(bufferStart):
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictStudyInBuffer,
				Description: fmt.Sprintf("%s %s/%s %s inside the buffer window", row.Date, row.CourseID, row.TopicID, row.TaskType),
				Date:        row.Date,
				CourseID:    row.CourseID,
			})
		}
	}

	for _, day := range days {
		date, _ := time.Parse(constants.DateFormat, day)
		capacity := weekday
		if models.IsWeekend(date) {
			capacity = weekend
		}
		if perDay[day] > int64(math.Round(capacity*100)) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOverCapacity,
				Description: fmt.Sprintf("%s has %.2fh allocated, capacity is %.2fh", day, float64(perDay[day])/100, capacity),
				Date:        day,
			})
		}
	}

	n := len(summary.Mitigations)
	if (summary.Feasible && n != 0) || (!summary.Feasible && n != 3) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMitigationCount,
			Description: fmt.Sprintf("Summary has %d mitigations with feasible=%v", n, summary.Feasible),
		})
	}

	return result
}

// RowLess is the canonical plan row order: date, course, topic, then task type.
func RowLess(a, b models.PlanRow) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.CourseID != b.CourseID {
		return a.CourseID < b.CourseID
	}
	if a.TopicID != b.TopicID {
		return a.TopicID < b.TopicID
	}
	return a.TaskType.Order() < b.TaskType.Order()
}

package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studyplan/internal/estimator"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/scheduler"
)

// Now is the clock used for timestamps. Tests replace it.
var Now = time.Now

// New returns an empty session with the given time budget.
func New(name string, constraints models.UserConstraints) models.Session {
	now := Now().UTC()
	return models.Session{
		ID:          uuid.New().String(),
		Name:        name,
		CreatedAt:   now,
		UpdatedAt:   now,
		Constraints: constraints,
	}
}

// RegenerateRequest carries the per-call planning inputs.
type RegenerateRequest struct {
	Overrides map[string]float64
	Note      string
}

// Regenerate runs estimation and planning from scratch and returns a new
// session whose estimates, rows and summary replace the previous ones. The
// input session is not modified. On a config error the input is returned
// unchanged alongside the error.
func Regenerate(sess models.Session, sched *scheduler.Scheduler, req RegenerateRequest) (models.Session, error) {
	est := estimator.Estimate(sess.Courses, sess.Profile)

	res, err := sched.Plan(scheduler.Request{
		Estimates:   est.Estimates,
		Courses:     sess.Courses,
		Constraints: sess.Constraints,
		Profile:     sess.Profile,
		Overrides:   req.Overrides,
		Warnings:    est.Warnings,
	})
	if err != nil {
		logger.Warn("Planning rejected", "session", sess.ID, "error", err)
		return sess, fmt.Errorf("failed to plan session %s: %w", sess.Name, err)
	}

	next := clone(sess)
	next.Estimates = est.Estimates
	next.Rows = res.Rows
	summary := res.Summary
	next.Summary = &summary
	next.UpdatedAt = Now().UTC()
	if req.Note != "" {
		next = appendHistory(next, models.HistoryNote, req.Note)
	}

	logger.Info("Plan regenerated",
		"session", sess.ID,
		"courses", len(sess.Courses),
		"rows", len(res.Rows),
		"feasible", summary.Feasible,
		"shortfall", summary.ShortfallHours,
	)
	return next, nil
}

// ApplyProfile replaces the session's profile and records the submission
// and its notes in history.
func ApplyProfile(sess models.Session, p models.Profile, notes []string) models.Session {
	next := clone(sess)
	next.Profile = &p
	next = appendHistory(next, models.HistoryProfile, describeProfile(p))
	for _, n := range notes {
		next = appendHistory(next, models.HistoryNote, n)
	}
	next.UpdatedAt = Now().UTC()
	return next
}

// ClearProfile removes the active profile.
func ClearProfile(sess models.Session) models.Session {
	next := clone(sess)
	next.Profile = nil
	next = appendHistory(next, models.HistoryProfile, "Profile cleared.")
	next.UpdatedAt = Now().UTC()
	return next
}

// ReplaceCourse swaps in course by id, or appends it when new. A course is
// always replaced whole, never merged.
func ReplaceCourse(sess models.Session, course models.CourseSpec) models.Session {
	next := clone(sess)
	course.Topics = append([]models.TopicSpec(nil), course.Topics...)
	for i := range course.Topics {
		course.Topics[i].CourseID = course.CourseID
	}
	replaced := false
	for i, c := range next.Courses {
		if c.CourseID == course.CourseID {
			next.Courses[i] = course
			replaced = true
			break
		}
	}
	if !replaced {
		next.Courses = append(next.Courses, course)
	}
	next.UpdatedAt = Now().UTC()
	return next
}

// RemoveCourse drops a course by id. The bool reports whether it existed.
func RemoveCourse(sess models.Session, courseID string) (models.Session, bool) {
	next := clone(sess)
	for i, c := range next.Courses {
		if c.CourseID == courseID {
			next.Courses = append(next.Courses[:i], next.Courses[i+1:]...)
			next.UpdatedAt = Now().UTC()
			return next, true
		}
	}
	return sess, false
}

// SetConstraints replaces the time budget wholesale.
func SetConstraints(sess models.Session, c models.UserConstraints) models.Session {
	next := clone(sess)
	next.Constraints = c
	next.UpdatedAt = Now().UTC()
	return next
}

// AddNote records a free-form note in history.
func AddNote(sess models.Session, kind models.HistoryKind, text string) models.Session {
	return appendHistory(clone(sess), kind, text)
}

func appendHistory(sess models.Session, kind models.HistoryKind, text string) models.Session {
	h := models.NewHistory(0, sess.History...)
	h.Append(models.HistoryEntry{
		ID:        uuid.New().String(),
		CreatedAt: Now().UTC(),
		Kind:      kind,
		Text:      text,
	})
	sess.History = h.Entries()
	return sess
}

func describeProfile(p models.Profile) string {
	text := fmt.Sprintf("Profile submitted: %d ranked, %d familiarity, %d coverage, %d weakness scores",
		len(p.RankedCourses), len(p.FamiliarityByCourse), len(p.CoverageByCourse), len(p.WeaknessByCourse))
	if p.Capacity != nil {
		text += fmt.Sprintf(", capacity %.1fh weekday / %.1fh weekend", p.Capacity.WeekdayHours, p.Capacity.WeekendHours)
	}
	return text + "."
}

// clone copies the slices a pipeline stage may write to, so the caller's
// session value stays untouched.
func clone(s models.Session) models.Session {
	out := s
	out.Courses = make([]models.CourseSpec, len(s.Courses))
	for i, c := range s.Courses {
		c.Topics = append([]models.TopicSpec(nil), c.Topics...)
		out.Courses[i] = c
	}
	out.History = append([]models.HistoryEntry(nil), s.History...)
	return out
}

package models

import "strings"

// Difficulty tags a topic's conceptual difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// TaskMix tags how much practice work a topic carries besides reading.
type TaskMix string

const (
	TaskMixReadOnly        TaskMix = "read-only"
	TaskMixReadPractice    TaskMix = "read+practice"
	TaskMixProblemSetHeavy TaskMix = "problem-set-heavy"
)

// TopicSpec is one unit of study content.
type TopicSpec struct {
	CourseID   string     `json:"course_id" yaml:"course_id"`
	TopicID    string     `json:"topic_id" yaml:"topic_id"`
	Title      string     `json:"title" yaml:"title"`
	PageCount  *int       `json:"page_count,omitempty" yaml:"page_count,omitempty"` // nil when unknown
	Difficulty Difficulty `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	TaskMix    TaskMix    `json:"task_mix,omitempty" yaml:"task_mix,omitempty"`
}

// CourseSpec groups a course's topics in syllabus order with its exam date.
type CourseSpec struct {
	CourseID       string      `json:"course_id" yaml:"course_id"`
	Name           string      `json:"name,omitempty" yaml:"name,omitempty"`
	ExamDate       string      `json:"exam_date,omitempty" yaml:"exam_date,omitempty"` // YYYY-MM-DD, empty when unknown
	Topics         []TopicSpec `json:"topics" yaml:"topics"`
	PriorityWeight float64     `json:"priority_weight,omitempty" yaml:"priority_weight,omitempty"` // 0 means 1.0
}

// Weight returns the course's default priority weight.
func (c CourseSpec) Weight() float64 {
	if c.PriorityWeight <= 0 {
		return 1.0
	}
	return c.PriorityWeight
}

// NormalizeDifficulty maps loosely written tags onto the canonical values.
// Unrecognized input is returned lowercased and unchanged otherwise.
func NormalizeDifficulty(s string) Difficulty {
	return Difficulty(strings.ToLower(strings.TrimSpace(s)))
}

// NormalizeTaskMix maps loosely written task-mix tags onto the canonical values.
func NormalizeTaskMix(s string) TaskMix {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "_", "-")
	v = strings.ReplaceAll(v, " ", "-")
	switch v {
	case "read", "reading", "readonly":
		return TaskMixReadOnly
	case "read-practice", "read-and-practice", "read&practice":
		return TaskMixReadPractice
	case "problem-set", "problem-sets", "problemset-heavy":
		return TaskMixProblemSetHeavy
	}
	return TaskMix(v)
}

// IsValid reports whether d is one of the known difficulty tags.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// IsValid reports whether m is one of the known task-mix tags.
func (m TaskMix) IsValid() bool {
	switch m {
	case TaskMixReadOnly, TaskMixReadPractice, TaskMixProblemSetHeavy:
		return true
	}
	return false
}

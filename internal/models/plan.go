package models

// TaskType says what a plan row asks the learner to do.
type TaskType string

const (
	TaskInitialStudy TaskType = "initial-study"
	TaskSpacedReview TaskType = "spaced-review"
	TaskFinalReview  TaskType = "final-review"
)

// Order gives the sort position of a task type within one day and topic.
func (t TaskType) Order() int {
	switch t {
	case TaskInitialStudy:
		return 0
	case TaskSpacedReview:
		return 1
	case TaskFinalReview:
		return 2
	}
	return 3
}

// PlanRow is a single allocation of hours on one date.
type PlanRow struct {
	Date     string   `json:"date"` // YYYY-MM-DD
	CourseID string   `json:"course_id"`
	TopicID  string   `json:"topic_id"`
	Hours    float64  `json:"hours"`
	TaskType TaskType `json:"task_type"`
	Progress float64  `json:"progress"` // cumulative initial-study fraction of the topic
}

// MitigationKind names a strategy for closing a shortfall.
type MitigationKind string

const (
	MitigationIncreaseWeekday MitigationKind = "increase-weekday-capacity"
	MitigationIncreaseWeekend MitigationKind = "increase-weekend-capacity"
	MitigationStartEarlier    MitigationKind = "move-start-earlier"
	MitigationDropTopics      MitigationKind = "drop-low-priority-topics"
)

// Mitigation is a quantified suggestion for an infeasible plan.
type Mitigation struct {
	Kind           MitigationKind `json:"kind"`
	Description    string         `json:"description"`
	HoursRecovered float64        `json:"hours_recovered"`
	Change         float64        `json:"change"`
	Unit           string         `json:"unit"`
	Resolves       bool           `json:"resolves"`
}

// CourseTotals aggregates one course's plan.
type CourseTotals struct {
	CourseID         string  `json:"course_id"`
	ExamDate         string  `json:"exam_date"`
	PriorityWeight   float64 `json:"priority_weight"`
	RequiredHours    float64 `json:"required_hours"`
	StudyHours       float64 `json:"study_hours"`
	ReviewHours      float64 `json:"review_hours"`
	FinalReviewHours float64 `json:"final_review_hours"`
	ShortfallHours   float64 `json:"shortfall_hours"`
	Feasible         bool    `json:"feasible"`
}

// PlanSummary is the aggregate outcome of a planning call.
type PlanSummary struct {
	TotalRequiredHours  float64        `json:"total_required_hours"`
	TotalAvailableHours float64        `json:"total_available_hours"`
	TotalAllocatedHours float64        `json:"total_allocated_hours"`
	Courses             []CourseTotals `json:"courses"`
	Feasible            bool           `json:"feasible"`
	ShortfallHours      float64        `json:"shortfall_hours"`
	Warnings            []string       `json:"warnings"`
	Mitigations         []Mitigation   `json:"mitigations"`
}

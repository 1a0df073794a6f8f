package models

import "time"

// Session bundles one learner's planning inputs and the latest outputs.
// Pipeline stages return a new Session instead of mutating shared state.
type Session struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Courses     []CourseSpec    `json:"courses"`
	Constraints UserConstraints `json:"constraints"`
	Profile     *Profile        `json:"profile,omitempty"`
	History     []HistoryEntry  `json:"history"`
	Estimates   []TopicEstimate `json:"estimates"`
	Rows        []PlanRow       `json:"rows"`
	Summary     *PlanSummary    `json:"summary,omitempty"`
}

// CourseIDs returns the session's course ids in stored order.
func (s Session) CourseIDs() []string {
	ids := make([]string, 0, len(s.Courses))
	for _, c := range s.Courses {
		ids = append(ids, c.CourseID)
	}
	return ids
}

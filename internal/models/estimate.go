package models

// Confidence grades how much of an estimate came from real signals.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Basis identifies the estimation path that produced a number.
type Basis string

const (
	BasisNoProfileDefault              Basis = "no-profile-default-multipliers"
	BasisNoProfileFallback             Basis = "no-profile-fallback-multipliers"
	BasisProfileDefault                Basis = "profile-default-multipliers"
	BasisProfileFallback               Basis = "profile-fallback-multipliers"
	BasisDefaultTopicNoProfileDefault  Basis = "default-topic-no-profile-default-multipliers"
	BasisDefaultTopicNoProfileFallback Basis = "default-topic-no-profile-fallback-multipliers"
	BasisDefaultTopicProfileDefault    Basis = "default-topic-profile-default-multipliers"
	BasisDefaultTopicProfileFallback   Basis = "default-topic-profile-fallback-multipliers"
)

// TopicEstimate is the hours estimate for one topic.
type TopicEstimate struct {
	CourseID       string     `json:"course_id"`
	TopicID        string     `json:"topic_id"`
	EstimatedHours float64    `json:"estimated_hours"`
	Confidence     Confidence `json:"confidence"`
	Basis          Basis      `json:"basis"`
}

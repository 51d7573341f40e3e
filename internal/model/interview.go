package model

import "time"

// InterviewStatus represents the lifecycle state of an interview session.
type InterviewStatus string

const (
	InterviewStatusInProgress InterviewStatus = "in_progress"
	InterviewStatusCompleted  InterviewStatus = "completed"
	InterviewStatusFailed     InterviewStatus = "failed"
)

// TurnRole identifies who produced a conversation entry.
type TurnRole string

const (
	RoleCandidate TurnRole = "candidate"
	RoleAgent     TurnRole = "agent"
)

// Turn is a single conversation entry. Insertion order is chronological.
type Turn struct {
	Role      TurnRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Interview is the persisted record of one voice interview session.
type Interview struct {
	ID              string          `json:"id"`
	CandidateID     string          `json:"candidate_id"`
	Status          InterviewStatus `json:"status"`
	Transcript      []Turn          `json:"transcript,omitempty"`
	Inconsistencies []Inconsistency `json:"inconsistencies,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	DurationSeconds float64         `json:"duration_seconds,omitempty"`
}

// InterviewFilter specifies criteria for listing interviews.
type InterviewFilter struct {
	Status      InterviewStatus `json:"status,omitempty"`
	CandidateID string          `json:"candidate_id,omitempty"`
	Unscored    bool            `json:"unscored,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Offset      int             `json:"offset,omitempty"`
}

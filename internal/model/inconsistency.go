package model

import "time"

// InconsistencyType classifies a detected mismatch.
type InconsistencyType string

const (
	InconsistencyExperienceMismatch InconsistencyType = "experience_mismatch"
	InconsistencySalaryMismatch     InconsistencyType = "salary_mismatch"
	InconsistencyStartDateMismatch  InconsistencyType = "start_date_mismatch"
	InconsistencyLLMHallucination   InconsistencyType = "llm_hallucination"
)

// Severity grades how serious a detected inconsistency is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Inconsistency records a mismatch between the registration form, the fact
// contract, and what was actually said during the interview. Records are
// append-only for the lifetime of a session and feed credibility scoring.
type Inconsistency struct {
	Type           InconsistencyType `json:"type"`
	FormValue      string            `json:"form_value,omitempty"`
	InterviewValue string            `json:"interview_value,omitempty"`
	Severity       Severity          `json:"severity"`
	Description    string            `json:"description"`
	Turn           int               `json:"turn"`
	Timestamp      time.Time         `json:"timestamp"`
}

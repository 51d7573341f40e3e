package model

import "time"

// Candidate is the verified applicant record as stored in the candidates table.
// These are the only fields the interview agent is allowed to treat as truth.
type Candidate struct {
	ID                  string    `json:"id"`
	FullName            string    `json:"full_name"`
	PhoneNumber         string    `json:"phone_number"`
	Email               string    `json:"email,omitempty"`
	TargetRole          string    `json:"target_role"`
	YearsOfExperience   int       `json:"years_of_experience"`
	ExpectedSalary      int       `json:"expected_salary"`
	HasFieldExperience  bool      `json:"has_field_experience"`
	ProximityToBranch   string    `json:"proximity_to_branch,omitempty"`
	CanStartImmediately string    `json:"can_start_immediately,omitempty"`
	AcademicStatus      string    `json:"academic_status,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// RegistrationForm is the raw pre-interview application the candidate filled
// in online. Free-text values, unverified; used for inconsistency detection
// and credibility scoring, never as a source of facts for the agent.
type RegistrationForm struct {
	YearsOfExperience   string `json:"years_of_experience,omitempty"`
	ExpectedSalary      string `json:"expected_salary,omitempty"`
	HasFieldExperience  string `json:"has_field_experience,omitempty"`
	ProximityToBranch   string `json:"proximity_to_branch,omitempty"`
	CanStartImmediately string `json:"can_start_immediately,omitempty"`
	AcademicStatus      string `json:"academic_status,omitempty"`
	PreferredSchedule   string `json:"preferred_schedule,omitempty"`
	DetailedResidence   string `json:"detailed_residence,omitempty"`
}

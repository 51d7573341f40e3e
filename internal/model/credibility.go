package model

import "time"

// CredibilityReport is the post-interview verdict comparing the registration
// form against the spoken transcript. Produced by the scoring engine, stored
// alongside the interview.
type CredibilityReport struct {
	InterviewID          string    `json:"interview_id"`
	Score                int       `json:"credibility_score"`
	Level                string    `json:"credibility_level"`
	InconsistenciesFound []string  `json:"inconsistencies_found,omitempty"`
	ConsistencyAreas     []string  `json:"consistency_areas,omitempty"`
	RedFlags             []string  `json:"red_flags,omitempty"`
	Recommendation       string    `json:"recommendation"`
	Summary              string    `json:"bottom_line_summary,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// DashboardStats aggregates interview activity for the analytics endpoint.
type DashboardStats struct {
	TotalCandidates      int            `json:"total_candidates"`
	TotalInterviews      int            `json:"total_interviews"`
	CompletedInterviews  int            `json:"completed_interviews"`
	AvgDurationSeconds   float64        `json:"avg_duration_seconds"`
	AvgCredibilityScore  float64        `json:"avg_credibility_score"`
	HallucinationsCaught int            `json:"hallucinations_caught"`
	InterviewsByRole     map[string]int `json:"interviews_by_role"`
}

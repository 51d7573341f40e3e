package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/goldencrust/interview-agent/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface consumed by the interview agent.
// The live session only ever appends; nothing it writes is read back during
// the same session.
type Store interface {
	// Candidates
	GetCandidate(ctx context.Context, candidateID string) (*model.Candidate, error)
	GetRegistrationForm(ctx context.Context, candidateID string) (*model.RegistrationForm, error)

	// Interviews
	CreateInterview(ctx context.Context, interviewID, candidateID string, startedAt time.Time) error
	AppendTranscript(ctx context.Context, interviewID string, turns []model.Turn, inconsistencies []model.Inconsistency) error
	MarkCompleted(ctx context.Context, interviewID string, duration time.Duration) error
	GetInterview(ctx context.Context, interviewID string) (*model.Interview, error)
	ListInterviews(ctx context.Context, filter model.InterviewFilter) ([]model.Interview, error)

	// Credibility
	SaveCredibilityReport(ctx context.Context, report *model.CredibilityReport) error
	GetCredibilityReport(ctx context.Context, interviewID string) (*model.CredibilityReport, error)

	// Analytics
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

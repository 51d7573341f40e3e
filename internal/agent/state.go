package agent

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/goldencrust/interview-agent/internal/contract"
	"github.com/goldencrust/interview-agent/internal/model"
	"github.com/goldencrust/interview-agent/internal/stage"
)

// State is the full conversational context of one interview session. It is
// exclusively owned by the session's control loop: the pipeline mutates it
// once per turn and nothing else touches it concurrently.
type State struct {
	Contract *contract.Contract
	Role     stage.Role

	Stage           stage.Stage
	QuestionsAsked  []string
	History         []model.Turn
	Inconsistencies []model.Inconsistency

	LatestUserInput string
	LatestResponse  string

	InterviewID string
	StartedAt   time.Time
	TurnCount   int
}

// NewState initializes session state at the opening stage. The candidate's
// target role must be one of the registered roles.
func NewState(ct *contract.Contract) (*State, error) {
	role, err := stage.LookupRole(ct.TargetRole())
	if err != nil {
		return nil, eris.Wrapf(err, "agent: candidate %s", ct.CandidateID())
	}
	return &State{
		Contract:    ct,
		Role:        role,
		Stage:       stage.Opening,
		InterviewID: ct.InterviewID(),
		StartedAt:   time.Now().UTC(),
	}, nil
}

// Duration is how long the session has been running.
func (s *State) Duration() time.Duration {
	return time.Since(s.StartedAt)
}

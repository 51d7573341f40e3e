package contract

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/goldencrust/interview-agent/internal/store"
)

// Loader builds contracts from the candidate store.
type Loader struct {
	store store.Store
}

// NewLoader creates a contract loader backed by the given store.
func NewLoader(s store.Store) *Loader {
	return &Loader{store: s}
}

// Load fetches the candidate's verified fields and constructs the session
// contract. Returns an error wrapping store.ErrNotFound when no candidate
// record exists.
func (l *Loader) Load(ctx context.Context, candidateID, interviewID string) (*Contract, error) {
	candidate, err := l.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, eris.Wrapf(err, "contract: load candidate %s", candidateID)
	}

	ct, err := New(interviewID, candidate)
	if err != nil {
		return nil, err
	}

	zap.L().Info("contract created",
		zap.String("candidate_id", candidateID),
		zap.String("interview_id", interviewID),
		zap.Int("years_of_experience", ct.YearsOfExperience()),
		zap.String("digest", ct.Digest()),
	)
	return ct, nil
}

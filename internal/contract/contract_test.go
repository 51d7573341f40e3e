package contract

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goldencrust/interview-agent/internal/model"
	"github.com/goldencrust/interview-agent/internal/store"
)

func testCandidate() *model.Candidate {
	return &model.Candidate{
		ID:                  "cand-1",
		FullName:            "أحمد خالد",
		TargetRole:          "خباز",
		YearsOfExperience:   5,
		ExpectedSalary:      400,
		HasFieldExperience:  true,
		ProximityToBranch:   "10 دقائق",
		CanStartImmediately: "نعم",
	}
}

func TestNew(t *testing.T) {
	ct, err := New("iv-1", testCandidate())
	require.NoError(t, err)
	assert.Equal(t, "cand-1", ct.CandidateID())
	assert.Equal(t, "iv-1", ct.InterviewID())
	assert.Equal(t, 5, ct.YearsOfExperience())
	assert.Equal(t, 400, ct.ExpectedSalary())
	assert.True(t, ct.HasFieldExperience())
	assert.Len(t, ct.Digest(), 12)
	assert.False(t, ct.CreatedAt().IsZero())
}

func TestNew_ValidatesFacts(t *testing.T) {
	c := testCandidate()
	c.YearsOfExperience = 51
	_, err := New("iv-1", c)
	require.Error(t, err)

	c = testCandidate()
	c.YearsOfExperience = -1
	_, err = New("iv-1", c)
	require.Error(t, err)

	c = testCandidate()
	c.ExpectedSalary = -5
	_, err = New("iv-1", c)
	require.Error(t, err)
}

func TestDigest_Deterministic(t *testing.T) {
	a, err := New("iv-1", testCandidate())
	require.NoError(t, err)
	b, err := New("iv-2", testCandidate())
	require.NoError(t, err)
	// Digest covers the facts only, not the session id.
	assert.Equal(t, a.Digest(), b.Digest())

	changed := testCandidate()
	changed.YearsOfExperience = 6
	c, err := New("iv-1", changed)
	require.NoError(t, err)
	assert.NotEqual(t, a.Digest(), c.Digest())
}

func TestVerifyIntegrity(t *testing.T) {
	ct, err := New("iv-1", testCandidate())
	require.NoError(t, err)
	assert.True(t, ct.VerifyIntegrity())
}

func TestVerifyIntegrity_Tampered(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(*Contract)
	}{
		{"years", func(c *Contract) { c.yearsOfExperience = 10 }},
		{"salary", func(c *Contract) { c.expectedSalary = 900 }},
		{"field experience", func(c *Contract) { c.hasFieldExperience = false }},
		{"candidate id", func(c *Contract) { c.candidateID = "other" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := New("iv-1", testCandidate())
			require.NoError(t, err)
			tt.tamper(ct)
			assert.False(t, ct.VerifyIntegrity())
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ct, err := New("iv-1", testCandidate())
	require.NoError(t, err)

	restored := FromSnapshot(ct.Snapshot())
	assert.True(t, restored.VerifyIntegrity())
	assert.Equal(t, ct.Digest(), restored.Digest())
	assert.Equal(t, ct.YearsOfExperience(), restored.YearsOfExperience())
}

func TestSnapshot_AlteredFailsIntegrity(t *testing.T) {
	ct, err := New("iv-1", testCandidate())
	require.NoError(t, err)

	snap := ct.Snapshot()
	snap.ExpectedSalary = 999
	assert.False(t, FromSnapshot(snap).VerifyIntegrity())
}

func TestFactSummary(t *testing.T) {
	ct, err := New("iv-1", testCandidate())
	require.NoError(t, err)
	s := ct.FactSummary()
	assert.Contains(t, s, "أحمد خالد")
	assert.Contains(t, s, "5 سنة (بالضبط)")
	assert.Contains(t, s, "400 دينار")
	assert.Contains(t, s, "خبرة في المجال: نعم")
	assert.Contains(t, s, "10 دقائق")
}

func TestFactSummary_MissingOptionalFields(t *testing.T) {
	c := testCandidate()
	c.ProximityToBranch = ""
	c.HasFieldExperience = false
	ct, err := New("iv-1", c)
	require.NoError(t, err)
	s := ct.FactSummary()
	assert.Contains(t, s, "قرب السكن: غير محدد")
	assert.Contains(t, s, "خبرة في المجال: لا")
}

type mockStore struct {
	mock.Mock
	store.Store
}

func (m *mockStore) GetCandidate(ctx context.Context, id string) (*model.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func TestLoader(t *testing.T) {
	ms := &mockStore{}
	ms.On("GetCandidate", mock.Anything, "cand-1").Return(testCandidate(), nil)

	ct, err := NewLoader(ms).Load(context.Background(), "cand-1", "iv-1")
	require.NoError(t, err)
	assert.Equal(t, "أحمد خالد", ct.FullName())
	assert.True(t, ct.VerifyIntegrity())
	ms.AssertExpectations(t)
}

func TestLoader_NotFound(t *testing.T) {
	ms := &mockStore{}
	ms.On("GetCandidate", mock.Anything, "ghost").Return(nil, store.ErrNotFound)

	_, err := NewLoader(ms).Load(context.Background(), "ghost", "iv-1")
	require.Error(t, err)
	assert.True(t, eris.Is(err, store.ErrNotFound))
}

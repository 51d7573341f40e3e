package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldencrust/interview-agent/internal/analytics"
	"github.com/goldencrust/interview-agent/internal/model"
	"github.com/goldencrust/interview-agent/internal/store"
)

// apiStore stubs the store surface the REST handlers touch.
type apiStore struct {
	store.Store
	candidate *model.Candidate
	interview *model.Interview
	report    *model.CredibilityReport
	stats     *model.DashboardStats
	created   []string
}

func (s *apiStore) GetCandidate(ctx context.Context, id string) (*model.Candidate, error) {
	if s.candidate == nil || s.candidate.ID != id {
		return nil, store.ErrNotFound
	}
	return s.candidate, nil
}

func (s *apiStore) CreateInterview(ctx context.Context, interviewID, candidateID string, startedAt time.Time) error {
	s.created = append(s.created, interviewID)
	return nil
}

func (s *apiStore) GetInterview(ctx context.Context, id string) (*model.Interview, error) {
	if s.interview == nil || s.interview.ID != id {
		return nil, store.ErrNotFound
	}
	return s.interview, nil
}

func (s *apiStore) GetCredibilityReport(ctx context.Context, id string) (*model.CredibilityReport, error) {
	if s.report == nil || s.report.InterviewID != id {
		return nil, store.ErrNotFound
	}
	return s.report, nil
}

func (s *apiStore) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	return s.stats, nil
}

func newAPIRouter(as *apiStore) http.Handler {
	api := &apiServer{store: as, analytics: analytics.NewService(as)}
	r := chi.NewRouter()
	r.Get("/health", api.handleHealth)
	r.Get("/api/candidates/{id}", api.handleGetCandidate)
	r.Post("/api/interviews/start", api.handleStartInterview)
	r.Get("/api/interviews/{id}", api.handleGetInterview)
	r.Get("/api/scoring/{id}", api.handleGetReport)
	r.Get("/api/analytics/dashboard", api.handleDashboard)
	return r
}

func TestHealth(t *testing.T) {
	r := newAPIRouter(&apiStore{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetCandidate(t *testing.T) {
	as := &apiStore{candidate: &model.Candidate{ID: "cand-1", FullName: "أحمد خالد", TargetRole: "خباز"}}
	r := newAPIRouter(as)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/candidates/cand-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Candidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "أحمد خالد", got.FullName)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/candidates/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartInterview(t *testing.T) {
	as := &apiStore{candidate: &model.Candidate{ID: "cand-1"}}
	r := newAPIRouter(as)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/interviews/start",
		strings.NewReader(`{"candidate_id":"cand-1"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["interview_id"])
	require.Len(t, as.created, 1)
	assert.Equal(t, resp["interview_id"], as.created[0])
}

func TestStartInterview_Validation(t *testing.T) {
	as := &apiStore{candidate: &model.Candidate{ID: "cand-1"}}
	r := newAPIRouter(as)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/interviews/start",
		strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/interviews/start",
		strings.NewReader(`{"candidate_id":"ghost"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/interviews/start",
		strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInterviewAndReport(t *testing.T) {
	as := &apiStore{
		interview: &model.Interview{ID: "iv-1", CandidateID: "cand-1", Status: model.InterviewStatusCompleted},
		report:    &model.CredibilityReport{InterviewID: "iv-1", Score: 82, Level: "عالية"},
	}
	r := newAPIRouter(as)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/interviews/iv-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scoring/iv-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var report model.CredibilityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 82, report.Score)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scoring/iv-2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	as := &apiStore{stats: &model.DashboardStats{TotalInterviews: 4, CompletedInterviews: 3}}
	r := newAPIRouter(as)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analytics/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var d analytics.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 4, d.TotalInterviews)
	assert.InDelta(t, 0.75, d.CompletionRate, 1e-9)
}

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goldencrust/interview-agent/internal/analytics"
	"github.com/goldencrust/interview-agent/internal/scoring"
	"github.com/goldencrust/interview-agent/internal/store"
)

// apiServer carries the REST surface around the live websocket interview.
type apiServer struct {
	store     store.Store
	scorer    *scoring.Scorer
	analytics *analytics.Service
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *apiServer) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	candidate, err := a.store.GetCandidate(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound, "candidate not found")
			return
		}
		zap.L().Error("get candidate failed", zap.String("candidate_id", id), zap.Error(err))
		writeAPIError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, candidate)
}

func (a *apiServer) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CandidateID string `json:"candidate_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CandidateID == "" {
		writeAPIError(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	if _, err := a.store.GetCandidate(r.Context(), req.CandidateID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound, "candidate not found")
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	interviewID := uuid.NewString()
	if err := a.store.CreateInterview(r.Context(), interviewID, req.CandidateID, time.Now().UTC()); err != nil {
		zap.L().Error("create interview failed", zap.String("candidate_id", req.CandidateID), zap.Error(err))
		writeAPIError(w, http.StatusInternalServerError, "failed to create interview")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"interview_id": interviewID})
}

func (a *apiServer) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	iv, err := a.store.GetInterview(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound, "interview not found")
			return
		}
		zap.L().Error("get interview failed", zap.String("interview_id", id), zap.Error(err))
		writeAPIError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

func (a *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := a.scorer.Score(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound, "interview not found")
			return
		}
		zap.L().Error("scoring failed", zap.String("interview_id", id), zap.Error(err))
		writeAPIError(w, http.StatusInternalServerError, "scoring failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *apiServer) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := a.store.GetCredibilityReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound, "report not found")
			return
		}
		zap.L().Error("get report failed", zap.String("interview_id", id), zap.Error(err))
		writeAPIError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *apiServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.analytics.Dashboard(r.Context())
	if err != nil {
		zap.L().Error("dashboard failed", zap.Error(err))
		writeAPIError(w, http.StatusInternalServerError, "analytics unavailable")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

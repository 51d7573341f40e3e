package analytics

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/goldencrust/interview-agent/internal/model"
	"github.com/goldencrust/interview-agent/internal/store"
)

// Dashboard is the aggregate view served to the hiring dashboard: raw store
// counters plus the rates derived from them.
type Dashboard struct {
	model.DashboardStats
	CompletionRate float64 `json:"completion_rate"`
}

// Service computes dashboard aggregates over the interview store.
type Service struct {
	store store.Store
}

// NewService wires the analytics service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Dashboard loads the store counters and derives rates.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.store.DashboardStats(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "analytics: dashboard stats")
	}

	d := &Dashboard{DashboardStats: *stats}
	if stats.TotalInterviews > 0 {
		d.CompletionRate = float64(stats.CompletedInterviews) / float64(stats.TotalInterviews)
	}
	return d, nil
}

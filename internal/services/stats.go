// Package services – dashboard statistics.
package services

import (
	"context"
	"time"

	"github.com/ileco-one/triage-backend/internal/domain"
)

// Stats is the dashboard headline counter set.
type Stats struct {
	TotalActive   int `json:"total_active"`
	InQueue       int `json:"in_queue"`
	CriticalCount int `json:"critical_count"`
	ResolvedToday int `json:"resolved_today"`
}

// StatsService computes headline counters from the aggregated view.
type StatsService struct {
	Agg *Aggregator
	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewStatsService constructs a StatsService.
func NewStatsService(a *Aggregator) *StatsService {
	return &StatsService{Agg: a, Now: func() time.Time { return time.Now().UTC() }}
}

// Snapshot counts over the unfiltered aggregate: every visible complaint
// regardless of status, the agent-queue length, CRITICAL rows, and
// resolutions whose record was created today. Aggregation failures
// degrade to zeros.
func (s *StatsService) Snapshot(ctx context.Context) Stats {
	var st Stats
	now := s.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, c := range s.Agg.Aggregate(ctx, Filters{}) {
		st.TotalActive++
		if c.Family == domain.FamilyAgent {
			st.InQueue++
		}
		if c.Priority == domain.PriorityCritical {
			st.CriticalCount++
		}
		if c.Status == domain.StatusResolved && !c.CreatedAt.Before(today) {
			st.ResolvedToday++
		}
	}
	return st
}

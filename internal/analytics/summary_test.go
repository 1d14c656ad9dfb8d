package analytics_test

import (
	"math"
	"testing"

	"github.com/pulse-check/pulsecheck-backend/internal/analytics"
)

func TestBuildSummaryEmpty(t *testing.T) {
	s := analytics.BuildSummary(nil, nil, t0)

	if s.SubjectCount != 0 || s.AtRiskSubjects != 0 {
		t.Fatalf("counts: %+v", s)
	}
	if s.AverageScore != 0 || math.IsNaN(s.AverageScore) {
		t.Fatalf("average: got %v, want 0", s.AverageScore)
	}
	if s.ScoreTrend != analytics.TrendStable {
		t.Fatalf("trend: got %q, want stable", s.ScoreTrend)
	}
	if len(s.Alerts) != 0 {
		t.Fatalf("alerts on empty history: %+v", s.Alerts)
	}
	// Chart buckets are always emitted so the dashboard axis is stable.
	if len(s.WeeklyAverages) != 8 || len(s.MonthlyAverages) != 6 {
		t.Fatalf("buckets: %d weekly, %d monthly", len(s.WeeklyAverages), len(s.MonthlyAverages))
	}
	if s.GeneratedAt != t0.Unix() {
		t.Fatalf("generated_at: got %d", s.GeneratedAt)
	}
}

func TestBuildSummaryCohort(t *testing.T) {
	s := analytics.BuildSummary(cohortHistory(), nil, t0)

	if s.SubjectCount != 2 || s.PreviousCount != 2 {
		t.Fatalf("counts: %+v", s)
	}
	approx(t, s.AverageScore, 55, "average")
	approx(t, s.PreviousAverage, 80, "previous average")
	if s.ScoreTrend != analytics.TrendDown {
		t.Fatalf("trend: got %q, want down", s.ScoreTrend)
	}
	if len(s.Alerts) != 2 {
		t.Fatalf("alerts: %+v", s.Alerts)
	}
}

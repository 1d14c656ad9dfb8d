package analytics_test

import (
	"testing"
	"time"

	"github.com/pulse-check/pulsecheck-backend/internal/analytics"
	"github.com/pulse-check/pulsecheck-backend/internal/survey"
)

func indicator(subject, typ string, value float64, at time.Time) survey.IndicatorRecord {
	return survey.IndicatorRecord{
		ID:         subject + "-" + typ + "-" + at.Format("20060102T150405"),
		SubjectID:  subject,
		Type:       typ,
		Value:      value,
		RecordedAt: at,
	}
}

func TestWindowedIndicatorAverages(t *testing.T) {
	from := t0.AddDate(0, 0, -7)
	records := []survey.IndicatorRecord{
		indicator("a", "stress", 8, from),                    // inclusive lower bound
		indicator("b", "stress", 4, t0.AddDate(0, 0, -3)),
		indicator("a", "stress", 9, t0),                      // exclusive upper bound
		indicator("a", "stress", 2, from.AddDate(0, 0, -1)),  // before window
		indicator("a", "wellbeing", 7, t0.AddDate(0, 0, -2)),
	}

	got := analytics.WindowedIndicatorAverages(records, from, t0)
	if len(got) != 2 {
		t.Fatalf("types: got %v, want stress and wellbeing", got)
	}
	s := got["stress"]
	if s.Samples != 2 {
		t.Fatalf("stress samples: got %d, want 2", s.Samples)
	}
	approx(t, s.Average, 6, "stress window average")
	if _, ok := got["mood"]; ok {
		t.Fatal("absent type must not appear")
	}
}

func TestIndicatorTrends(t *testing.T) {
	records := []survey.IndicatorRecord{
		// stress: last week avg 4, this week avg 7 -> up.
		indicator("a", "stress", 4, t0.AddDate(0, 0, -10)),
		indicator("a", "stress", 7, t0.AddDate(0, 0, -2)),
		// wellbeing: 6 -> 5, inside the 2-point deadband -> stable.
		indicator("a", "wellbeing", 6, t0.AddDate(0, 0, -10)),
		indicator("a", "wellbeing", 5, t0.AddDate(0, 0, -2)),
		// motivation: only this week -> stable, never compared to an
		// empty window.
		indicator("a", "motivation", 1, t0.AddDate(0, 0, -2)),
	}

	got := analytics.IndicatorTrends(records, t0)
	want := map[string]analytics.Trend{
		"stress":     analytics.TrendUp,
		"wellbeing":  analytics.TrendStable,
		"motivation": analytics.TrendStable,
	}
	for typ, w := range want {
		if got[typ] != w {
			t.Errorf("%s: got %q, want %q", typ, got[typ], w)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("trend types: got %v", got)
	}
}

func TestIndicatorTrendsEmpty(t *testing.T) {
	if got := analytics.IndicatorTrends(nil, t0); len(got) != 0 {
		t.Fatalf("empty records: got %v, want empty map", got)
	}
}

func TestWeeklyAverages(t *testing.T) {
	history := []survey.ScoredAssessment{
		assessment("a", 80, t0.AddDate(0, 0, -1)),  // current week
		assessment("b", 60, t0.AddDate(0, 0, -3)),  // current week
		assessment("a", 40, t0.AddDate(0, 0, -10)), // previous week
	}

	got := analytics.WeeklyAverages(history, t0, 4)
	if len(got) != 4 {
		t.Fatalf("buckets: got %d, want 4", len(got))
	}
	// Oldest first; the two most recent buckets carry the data.
	last := got[3]
	if last.Samples != 2 {
		t.Fatalf("current week samples: got %d, want 2", last.Samples)
	}
	approx(t, last.Average, 70, "current week average")
	prev := got[2]
	if prev.Samples != 1 {
		t.Fatalf("previous week samples: got %d, want 1", prev.Samples)
	}
	approx(t, prev.Average, 40, "previous week average")
	// Empty buckets report zero samples, not NaN averages.
	if got[0].Samples != 0 || got[0].Average != 0 {
		t.Fatalf("empty bucket: %+v", got[0])
	}
	if got[0].Start >= got[3].Start {
		t.Fatal("buckets not sorted oldest first")
	}
}

func TestMonthlyAverages(t *testing.T) {
	history := []survey.ScoredAssessment{
		assessment("a", 90, time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)),
		assessment("b", 50, time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)),
		assessment("a", 30, time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)),
	}

	got := analytics.MonthlyAverages(history, t0, 6)
	if len(got) != 6 {
		t.Fatalf("buckets: got %d, want 6", len(got))
	}
	byLabel := map[string]analytics.PeriodAverage{}
	for _, p := range got {
		byLabel[p.Label] = p
	}
	may := byLabel["May 2025"]
	if may.Samples != 2 {
		t.Fatalf("may samples: got %d, want 2", may.Samples)
	}
	approx(t, may.Average, 70, "may average")
	mar := byLabel["Mar 2025"]
	if mar.Samples != 1 {
		t.Fatalf("march samples: got %d, want 1", mar.Samples)
	}
	if jun := byLabel["Jun 2025"]; jun.Samples != 0 {
		t.Fatalf("june must be empty so far: %+v", jun)
	}
}

package analytics_test

import (
	"math"
	"testing"
	"time"

	"github.com/pulse-check/pulsecheck-backend/internal/analytics"
	"github.com/pulse-check/pulsecheck-backend/internal/survey"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func assessment(subject string, overall float64, at time.Time) survey.ScoredAssessment {
	return survey.ScoredAssessment{
		ID:              subject + "-" + at.Format("20060102T150405"),
		SubjectID:       subject,
		QuestionnaireID: "pulse-weekly",
		Overall:         overall,
		Answered:        5,
		CreatedAt:       at,
	}
}

func approx(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: got %v, want %v", label, got, want)
	}
}

// Two subjects each with two assessments: A drops 70->50, B drops 90->60.
// Current average 55, previous 80, so the cohort trends down and A's
// 20-point drop alerts.
func cohortHistory() []survey.ScoredAssessment {
	return []survey.ScoredAssessment{
		assessment("subj-a", 70, t0.AddDate(0, 0, -14)),
		assessment("subj-a", 50, t0.AddDate(0, 0, -1)),
		assessment("subj-b", 90, t0.AddDate(0, 0, -13)),
		assessment("subj-b", 60, t0.AddDate(0, 0, -2)),
	}
}

func TestLatestPerSubject(t *testing.T) {
	by := analytics.LatestPerSubject(cohortHistory())
	if len(by) != 2 {
		t.Fatalf("subjects: got %d, want 2", len(by))
	}
	a := by["subj-a"]
	approx(t, a.Latest.Overall, 50, "subj-a latest")
	if a.Previous == nil {
		t.Fatal("subj-a previous missing")
	}
	approx(t, a.Previous.Overall, 70, "subj-a previous")
}

func TestLatestPerSubjectSingleAssessment(t *testing.T) {
	by := analytics.LatestPerSubject([]survey.ScoredAssessment{
		assessment("subj-a", 42, t0),
	})
	if by["subj-a"].Previous != nil {
		t.Fatalf("previous must be nil for single assessment, got %+v", by["subj-a"].Previous)
	}
}

func TestCohortTrendDownWithAlert(t *testing.T) {
	by := analytics.LatestPerSubject(cohortHistory())

	avg := analytics.AverageScore(by)
	approx(t, avg, 55, "current average")

	prev, n := analytics.PreviousAverage(by)
	approx(t, prev, 80, "previous average")
	if n != 2 {
		t.Fatalf("previous count: got %d, want 2", n)
	}

	if trend := analytics.ScoreTrend(avg, prev, n); trend != analytics.TrendDown {
		t.Fatalf("trend: got %q, want down", trend)
	}

	alerts := analytics.DeltaAlerts(by)
	// B dropped 30, A dropped 20; both clear the 15-point bar, B's
	// assessment is older so A sorts first.
	if len(alerts) != 2 {
		t.Fatalf("alerts: got %d, want 2: %+v", len(alerts), alerts)
	}
	if alerts[0].SubjectID != "subj-a" {
		t.Fatalf("alert order: got %q first, want subj-a", alerts[0].SubjectID)
	}
	approx(t, alerts[0].Delta, -20, "subj-a delta")
}

func TestScoreTrendDeadband(t *testing.T) {
	cases := []struct {
		cur, prev float64
		count     int
		want      analytics.Trend
	}{
		{60, 60, 1, analytics.TrendStable},
		{64, 60, 1, analytics.TrendStable}, // +4 inside deadband
		{66, 60, 1, analytics.TrendUp},
		{54, 60, 1, analytics.TrendDown},
		{56, 60, 1, analytics.TrendStable}, // -4 inside deadband
		{10, 90, 0, analytics.TrendStable}, // no previous data
	}
	for _, c := range cases {
		if got := analytics.ScoreTrend(c.cur, c.prev, c.count); got != c.want {
			t.Errorf("ScoreTrend(%v, %v, %d) = %q, want %q", c.cur, c.prev, c.count, got, c.want)
		}
	}
}

func TestAverageScoreEmptyIsZero(t *testing.T) {
	by := analytics.LatestPerSubject(nil)
	if got := analytics.AverageScore(by); got != 0 || math.IsNaN(got) {
		t.Fatalf("empty average: got %v, want 0", got)
	}
	prev, n := analytics.PreviousAverage(by)
	if prev != 0 || n != 0 {
		t.Fatalf("empty previous: got %v/%d, want 0/0", prev, n)
	}
}

func TestAtRiskCount(t *testing.T) {
	by := analytics.LatestPerSubject([]survey.ScoredAssessment{
		assessment("low", 30, t0),
		assessment("edge", 45, t0), // exactly at threshold: not at risk
		assessment("ok", 70, t0),
	})
	if got := analytics.AtRiskCount(by); got != 1 {
		t.Fatalf("at risk: got %d, want 1", got)
	}
}

func TestDimensionAveragesSkipMissing(t *testing.T) {
	a1 := assessment("subj-a", 60, t0)
	a1.DimensionScores = map[string]float64{"stress": 2, "energy": 4}
	a2 := assessment("subj-b", 70, t0)
	a2.DimensionScores = map[string]float64{"stress": 4}

	got := analytics.DimensionAverages(analytics.LatestPerSubject([]survey.ScoredAssessment{a1, a2}))
	if len(got) != 2 {
		t.Fatalf("dimensions: got %+v, want 2 entries", got)
	}
	// Sorted by label: energy then stress.
	if got[0].Label != "energy" || got[0].Samples != 1 {
		t.Fatalf("energy entry: %+v", got[0])
	}
	approx(t, got[0].Average, 4, "energy average over reporting subjects only")
	if got[1].Label != "stress" || got[1].Samples != 2 {
		t.Fatalf("stress entry: %+v", got[1])
	}
	approx(t, got[1].Average, 3, "stress average")
}

func TestDeltaAlertsBoundary(t *testing.T) {
	history := []survey.ScoredAssessment{
		assessment("exact", 60, t0.AddDate(0, 0, -7)),
		assessment("exact", 45, t0), // delta -15: alerts
		assessment("near", 60, t0.AddDate(0, 0, -7)),
		assessment("near", 46, t0), // delta -14: no alert
		assessment("rise", 40, t0.AddDate(0, 0, -7)),
		assessment("rise", 90, t0), // improvement: no alert
	}
	alerts := analytics.DeltaAlerts(analytics.LatestPerSubject(history))
	if len(alerts) != 1 || alerts[0].SubjectID != "exact" {
		t.Fatalf("alerts: got %+v, want only subj exact", alerts)
	}
}

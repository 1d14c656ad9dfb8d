package analytics

import (
	"time"

	"github.com/pulse-check/pulsecheck-backend/internal/survey"
)

// Summary is the aggregation result object handed to the dashboard.
// Zeroed fields mean "no data"; callers must check the counts before
// treating averages as scores.
type Summary struct {
	AverageScore      float64                `json:"average_score"`
	PreviousAverage   float64                `json:"previous_average"`
	ScoreTrend        Trend                  `json:"score_trend"`
	SubjectCount      int                    `json:"subject_count"`
	PreviousCount     int                    `json:"previous_count"`
	AtRiskSubjects    int                    `json:"at_risk_subjects"`
	DimensionAverages []DimensionAverage     `json:"dimension_averages"`
	Alerts            []Alert                `json:"alerts"`
	WeeklyAverages    []PeriodAverage        `json:"weekly_averages"`
	MonthlyAverages   []PeriodAverage        `json:"monthly_averages"`
	Indicators        map[string]TrendWindow `json:"indicators"`
	IndicatorTrends   map[string]Trend       `json:"indicator_trends"`
	GeneratedAt       int64                  `json:"generated_at"`
}

// BuildSummary reduces assessment and indicator history into one
// dashboard payload. Trend and alert rules are only applied when the
// backing collections are non-empty.
func BuildSummary(history []survey.ScoredAssessment, indicators []survey.IndicatorRecord, now time.Time) Summary {
	bySubject := LatestPerSubject(history)

	s := Summary{
		SubjectCount:      len(bySubject),
		AverageScore:      AverageScore(bySubject),
		DimensionAverages: DimensionAverages(bySubject),
		ScoreTrend:        TrendStable,
		WeeklyAverages:    WeeklyAverages(history, now, 8),
		MonthlyAverages:   MonthlyAverages(history, now, 6),
		Indicators:        WindowedIndicatorAverages(indicators, now.AddDate(0, 0, -7), now),
		IndicatorTrends:   IndicatorTrends(indicators, now),
		GeneratedAt:       now.Unix(),
	}
	if len(bySubject) == 0 {
		return s
	}
	s.AtRiskSubjects = AtRiskCount(bySubject)
	s.PreviousAverage, s.PreviousCount = PreviousAverage(bySubject)
	s.ScoreTrend = ScoreTrend(s.AverageScore, s.PreviousAverage, s.PreviousCount)
	s.Alerts = DeltaAlerts(bySubject)
	return s
}

// Package analytics reduces persisted assessment and indicator history
// into dashboard signals. Every function here is pure and read-only over
// already-fetched slices, so concurrent dashboard viewers need no
// synchronization.
package analytics

import (
	"sort"

	"github.com/pulse-check/pulsecheck-backend/internal/survey"
)

const (
	// ScoreDeadband is the minimum average movement classified as a
	// real trend rather than noise, on the 0-100 overall scale.
	ScoreDeadband = 5.0
	// AtRiskThreshold marks subjects whose latest overall falls below.
	AtRiskThreshold = 45.0
	// AlertDelta triggers a per-subject alert when the latest overall
	// dropped at least this much against the previous period.
	AlertDelta = -15.0
)

// Trend is the three-valued period-over-period classification. Dashboard
// consumers are coded against exactly these states.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// SubjectHistory pairs a subject's most recent assessment with the
// immediately preceding one. Previous is nil for single-assessment
// subjects.
type SubjectHistory struct {
	Latest   survey.ScoredAssessment
	Previous *survey.ScoredAssessment
}

// LatestPerSubject reduces history to each subject's latest and previous
// assessment by creation time.
func LatestPerSubject(history []survey.ScoredAssessment) map[string]SubjectHistory {
	bySubject := map[string][]survey.ScoredAssessment{}
	for _, a := range history {
		bySubject[a.SubjectID] = append(bySubject[a.SubjectID], a)
	}
	out := make(map[string]SubjectHistory, len(bySubject))
	for sub, list := range bySubject {
		sort.Slice(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
		h := SubjectHistory{Latest: list[0]}
		if len(list) > 1 {
			prev := list[1]
			h.Previous = &prev
		}
		out[sub] = h
	}
	return out
}

// AverageScore is the mean latest overall across subjects, 0 when empty.
func AverageScore(bySubject map[string]SubjectHistory) float64 {
	if len(bySubject) == 0 {
		return 0
	}
	var sum float64
	for _, h := range bySubject {
		sum += h.Latest.Overall
	}
	return sum / float64(len(bySubject))
}

// PreviousAverage is the mean previous overall across the subjects that
// have one; the second return is how many contributed.
func PreviousAverage(bySubject map[string]SubjectHistory) (float64, int) {
	var sum float64
	n := 0
	for _, h := range bySubject {
		if h.Previous != nil {
			sum += h.Previous.Overall
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// ScoreTrend classifies current vs previous averages with the 5-point
// deadband. Insufficient data reads as stable, keeping the contract
// three-valued.
func ScoreTrend(currentAvg, previousAvg float64, previousCount int) Trend {
	if previousCount == 0 {
		return TrendStable
	}
	return classify(currentAvg-previousAvg, ScoreDeadband)
}

func classify(delta, deadband float64) Trend {
	switch {
	case delta > deadband:
		return TrendUp
	case delta < -deadband:
		return TrendDown
	default:
		return TrendStable
	}
}

// AtRiskCount counts subjects whose latest overall is below the fixed
// risk threshold.
func AtRiskCount(bySubject map[string]SubjectHistory) int {
	n := 0
	for _, h := range bySubject {
		if h.Latest.Overall < AtRiskThreshold {
			n++
		}
	}
	return n
}

// DimensionAverage is one dimension's population mean over the subjects
// that reported it.
type DimensionAverage struct {
	Label   string  `json:"label"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// DimensionAverages averages each dimension over the subjects whose
// latest assessment reports it. Subjects lacking a dimension are left
// out of its denominator, never counted as zero.
func DimensionAverages(bySubject map[string]SubjectHistory) []DimensionAverage {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, h := range bySubject {
		for label, score := range h.Latest.DimensionScores {
			sums[label] += score
			counts[label]++
		}
	}
	out := make([]DimensionAverage, 0, len(sums))
	for label, sum := range sums {
		out = append(out, DimensionAverage{
			Label:   label,
			Average: sum / float64(counts[label]),
			Samples: counts[label],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Alert flags a subject whose overall dropped sharply between periods.
type Alert struct {
	SubjectID string  `json:"subject_id"`
	Latest    float64 `json:"latest"`
	Previous  float64 `json:"previous"`
	Delta     float64 `json:"delta"`
	CreatedAt int64   `json:"created_at"`
}

// DeltaAlerts emits an alert per subject whose latest overall fell by at
// least 15 points against the previous assessment, most recent first.
func DeltaAlerts(bySubject map[string]SubjectHistory) []Alert {
	var out []Alert
	for sub, h := range bySubject {
		if h.Previous == nil {
			continue
		}
		delta := h.Latest.Overall - h.Previous.Overall
		if delta <= AlertDelta {
			out = append(out, Alert{
				SubjectID: sub,
				Latest:    h.Latest.Overall,
				Previous:  h.Previous.Overall,
				Delta:     delta,
				CreatedAt: h.Latest.CreatedAt.Unix(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

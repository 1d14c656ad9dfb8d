package analytics

import (
	"sort"
	"time"

	"github.com/pulse-check/pulsecheck-backend/internal/survey"
)

// IndicatorDeadband is the movement threshold for pulse indicators,
// narrower than the 0-100 score deadband because indicators live on
// small scales (typically 1-10).
const IndicatorDeadband = 2.0

// TrendWindow is a time-bounded per-indicator-type average used for
// period-over-period comparison.
type TrendWindow struct {
	Type    string  `json:"type"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// WindowedIndicatorAverages filters records into [from, to) and computes
// the per-type mean. Types with no samples in the window are absent.
func WindowedIndicatorAverages(records []survey.IndicatorRecord, from, to time.Time) map[string]TrendWindow {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		if r.RecordedAt.Before(from) || !r.RecordedAt.Before(to) {
			continue
		}
		sums[r.Type] += r.Value
		counts[r.Type]++
	}
	out := make(map[string]TrendWindow, len(sums))
	for typ, sum := range sums {
		out[typ] = TrendWindow{Type: typ, Average: sum / float64(counts[typ]), Samples: counts[typ]}
	}
	return out
}

// IndicatorTrends classifies week-over-week movement per indicator type
// with the 2-point deadband. Types without samples in both weeks read as
// stable; the trend rule is never applied to an empty window.
func IndicatorTrends(records []survey.IndicatorRecord, now time.Time) map[string]Trend {
	thisWeek := WindowedIndicatorAverages(records, now.AddDate(0, 0, -7), now)
	lastWeek := WindowedIndicatorAverages(records, now.AddDate(0, 0, -14), now.AddDate(0, 0, -7))

	out := make(map[string]Trend, len(thisWeek))
	for typ, cur := range thisWeek {
		prev, ok := lastWeek[typ]
		if !ok || prev.Samples == 0 || cur.Samples == 0 {
			out[typ] = TrendStable
			continue
		}
		out[typ] = classify(cur.Average-prev.Average, IndicatorDeadband)
	}
	return out
}

// PeriodAverage is one rollup bucket for dashboard charts.
type PeriodAverage struct {
	Start   int64   `json:"start"` // unix seconds, bucket start
	Label   string  `json:"label"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// WeeklyAverages rolls overall scores up into the trailing n calendar
// weeks ending at now, oldest first. Empty buckets report 0 with zero
// samples; callers must check Samples before reading Average as data.
func WeeklyAverages(history []survey.ScoredAssessment, now time.Time, weeks int) []PeriodAverage {
	return rollup(history, now, weeks, func(t time.Time, i int) (time.Time, time.Time, string) {
		end := startOfDay(t).AddDate(0, 0, -7*i+1)
		start := end.AddDate(0, 0, -7)
		return start, end, start.Format("Jan 02")
	})
}

// MonthlyAverages rolls overall scores up into the trailing n calendar
// months ending at now, oldest first.
func MonthlyAverages(history []survey.ScoredAssessment, now time.Time, months int) []PeriodAverage {
	return rollup(history, now, months, func(t time.Time, i int) (time.Time, time.Time, string) {
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		start := first.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		return start, end, start.Format("Jan 2006")
	})
}

func rollup(history []survey.ScoredAssessment, now time.Time, n int, bounds func(time.Time, int) (time.Time, time.Time, string)) []PeriodAverage {
	out := make([]PeriodAverage, 0, n)
	for i := 0; i < n; i++ {
		start, end, label := bounds(now, i)
		var sum float64
		samples := 0
		for _, a := range history {
			if a.CreatedAt.Before(start) || !a.CreatedAt.Before(end) {
				continue
			}
			sum += a.Overall
			samples++
		}
		p := PeriodAverage{Start: start.Unix(), Label: label, Samples: samples}
		if samples > 0 {
			p.Average = sum / float64(samples)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

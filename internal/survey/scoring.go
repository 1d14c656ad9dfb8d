package survey

import (
	"strconv"
	"strings"
)

// ScoreResult holds one submission's reduced scores. Dimensions with no
// eligible answered questions are absent from the map, never zero, so
// consumers can tell "not measured" apart from "scored 0". Answered is
// the count of scoring-eligible answers; when it is zero Overall is 0
// and means "no data", not "worst score".
type ScoreResult struct {
	Overall    float64            `json:"overall"`
	Dimensions map[string]float64 `json:"dimensions"`
	Answered   int                `json:"answered"`
}

// pointStrategy resolves a raw answer into a point value for one
// question type. ok=false marks the answer ineligible for scoring.
type pointStrategy interface {
	points(q QuestionDefinition, raw interface{}) (float64, bool)
}

// Scorer converts a completed answer set into dimension scores and an
// overall 0-100 score. One strategy per question type; the map is the
// closed dispatch table for the QuestionType enum.
type Scorer struct {
	strategies map[QuestionType]pointStrategy
}

func NewScorer() *Scorer {
	return &Scorer{
		strategies: map[QuestionType]pointStrategy{
			TypeSingleChoice:   choiceStrategy{},
			TypeMultipleChoice: choiceStrategy{},
			TypeLikert:         scaleStrategy{},
			TypeNumeric:        scaleStrategy{},
			TypeFreeText:       freeTextStrategy{},
		},
	}
}

// Score reduces answers over the questionnaire's resolved visible
// sequence. Unanswered and non-scoring questions are excluded from every
// denominator.
func (s *Scorer) Score(qn Questionnaire, answers AnswerSet) ScoreResult {
	type bucket struct {
		sum   float64
		count int
	}
	// Fresh accumulator per call keeps Score a pure function.
	buckets := map[string]*bucket{}
	answered := 0

	for _, q := range VisibleQuestions(qn.Questions, answers) {
		raw, ok := answers[q.ID]
		if !ok {
			continue
		}
		strat, ok := s.strategies[q.Type]
		if !ok {
			continue
		}
		pts, eligible := strat.points(q, raw)
		if !eligible {
			continue
		}
		if q.Reversed && q.Scale != nil {
			pts = (q.Scale.Max + q.Scale.Min) - pts
		}
		pts *= q.EffectiveWeight()
		answered++

		dim := q.Dimension
		if dim == "" {
			dim = "general"
		}
		b := buckets[dim]
		if b == nil {
			b = &bucket{}
			buckets[dim] = b
		}
		b.sum += pts
		b.count++
	}

	res := ScoreResult{Dimensions: map[string]float64{}, Answered: answered}
	if answered == 0 {
		return res
	}

	// Mean, never sum: dimensions stay comparable no matter how many
	// questions feed them.
	for dim, b := range buckets {
		res.Dimensions[dim] = b.sum / float64(b.count)
	}

	weights := dimensionWeights(qn.Dimensions)
	var weighted, totalWeight float64
	for dim, score := range res.Dimensions {
		w := weights[dim]
		if w <= 0 {
			w = 1
		}
		weighted += score * w
		totalWeight += w
	}
	maxPts := qn.maxPossiblePoints()
	if totalWeight > 0 && maxPts > 0 {
		res.Overall = (weighted / totalWeight) / maxPts * 100
	}
	return res
}

func dimensionWeights(cats []DimensionCategory) map[string]float64 {
	out := make(map[string]float64, len(cats))
	for _, c := range cats {
		out[c.Label] = c.Weight
	}
	return out
}

// maxPossiblePoints returns the configured scale ceiling, falling back
// to the largest scale max or option point value across the questions.
func (qn Questionnaire) maxPossiblePoints() float64 {
	if qn.MaxPoints > 0 {
		return qn.MaxPoints
	}
	var max float64
	for _, q := range qn.Questions {
		if q.Scale != nil && q.Scale.Max > max {
			max = q.Scale.Max
		}
		for _, o := range q.Options {
			if o.Points > max {
				max = o.Points
			}
		}
	}
	return max
}

// --- strategies ---

// scaleStrategy covers likert and numeric answers: the raw value itself,
// clamped to the declared scale.
type scaleStrategy struct{}

func (scaleStrategy) points(q QuestionDefinition, raw interface{}) (float64, bool) {
	v, ok := toFloat(raw)
	if !ok {
		return 0, false
	}
	if q.Scale != nil {
		if v < q.Scale.Min {
			v = q.Scale.Min
		}
		if v > q.Scale.Max {
			v = q.Scale.Max
		}
	}
	return v, true
}

// choiceStrategy looks up the configured point value of each selected
// option token, summing for multi-select.
type choiceStrategy struct{}

func (choiceStrategy) points(q QuestionDefinition, raw interface{}) (float64, bool) {
	tokens := answerTokens(raw)
	if len(tokens) == 0 {
		return 0, false
	}
	var sum float64
	hit := false
	for _, t := range tokens {
		if opt, ok := optionFor(q.Options, t); ok {
			sum += opt.Points
			hit = true
		}
	}
	return sum, hit
}

// freeTextStrategy: free text never contributes points and is excluded
// from denominators.
type freeTextStrategy struct{}

func (freeTextStrategy) points(QuestionDefinition, interface{}) (float64, bool) {
	return 0, false
}

func optionFor(opts []Option, token string) (Option, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	for _, o := range opts {
		if strings.EqualFold(o.Value, t) || strings.EqualFold(o.ID, t) {
			return o, true
		}
	}
	return Option{}, false
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case map[string]interface{}:
		if inner, ok := v["value"]; ok {
			return toFloat(inner)
		}
		return 0, false
	default:
		return 0, false
	}
}

package survey

import "time"

// QuestionType enumerates the supported question kinds. Scoring and
// rendering dispatch on this as a closed set; adding a type means adding
// a strategy in scoring.go as well.
type QuestionType string

const (
	TypeSingleChoice   QuestionType = "single_choice"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeLikert         QuestionType = "likert"
	TypeFreeText       QuestionType = "free_text"
	TypeNumeric        QuestionType = "numeric"
)

// Option is one selectable answer of a choice question.
type Option struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Value  string  `json:"value"`
	Points float64 `json:"points"`
}

// LikertScale bounds a likert or numeric question and optionally labels
// individual steps.
type LikertScale struct {
	Min    float64        `json:"min"`
	Max    float64        `json:"max"`
	Labels map[string]string `json:"labels,omitempty"`
}

// FollowUpTemplate describes a question that is materialized into the
// visible sequence when its parent condition matches.
type FollowUpTemplate struct {
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	Required  bool         `json:"required"`
	Options   []Option     `json:"options,omitempty"`
	Scale     *LikertScale `json:"likert_scale,omitempty"`
	Dimension string       `json:"dimension,omitempty"`
	Reversed  bool         `json:"reversed,omitempty"`
	Weight    float64      `json:"weight,omitempty"`
}

// RuleCondition is one (match values, show) pair of a conditional rule.
// Conditions are evaluated in declaration order; the first one that
// matches the dependency's answer decides visibility.
type RuleCondition struct {
	Match     []string           `json:"match"`
	Show      bool               `json:"show"`
	FollowUps []FollowUpTemplate `json:"follow_ups,omitempty"`
}

// ConditionalRule gates a question on a previously answered question.
type ConditionalRule struct {
	DependsOn  string          `json:"depends_on"`
	Conditions []RuleCondition `json:"conditions"`
}

// QuestionDefinition is an authored question. Definitions are seeded by
// an authoring process and never mutated by this engine; follow-ups are
// synthesized copies, not edits.
type QuestionDefinition struct {
	ID         string           `json:"id"`
	Text       string           `json:"text"`
	Type       QuestionType     `json:"type"`
	Required   bool             `json:"required"`
	Options    []Option         `json:"options,omitempty"`
	Scale      *LikertScale     `json:"likert_scale,omitempty"`
	Rule       *ConditionalRule `json:"conditional_rule,omitempty"`
	Dimension  string           `json:"dimension,omitempty"`
	Reversed   bool             `json:"reversed,omitempty"`
	Weight     float64          `json:"weight,omitempty"`
	OrderIndex int              `json:"order_index"`
}

// EffectiveWeight returns the question's weight, defaulting to 1.
func (q QuestionDefinition) EffectiveWeight() float64 {
	if q.Weight > 0 {
		return q.Weight
	}
	return 1
}

// DimensionCategory names a scoring axis and weights its contribution to
// the overall score.
type DimensionCategory struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// Questionnaire bundles the authored questions with their dimension
// groupings and the scale ceiling used to normalize the overall score.
type Questionnaire struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Questions  []QuestionDefinition `json:"questions"`
	Dimensions []DimensionCategory  `json:"dimensions,omitempty"`
	// MaxPoints is the highest point value any single question can
	// yield. When zero it is derived from the question definitions.
	MaxPoints float64 `json:"max_points,omitempty"`
	CreatedAt int64   `json:"created_at,omitempty"`
}

// AnswerSet maps question id to the subject's raw answer: a scalar, a
// list of selections, or a number. It only grows through explicit answer
// events during a session.
type AnswerSet map[string]interface{}

// Clone returns an independent shallow copy.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ScoredAssessment is the immutable result of one completed submission.
type ScoredAssessment struct {
	ID              string             `json:"id"`
	SubjectID       string             `json:"subject_id"`
	QuestionnaireID string             `json:"questionnaire_id"`
	Answers         AnswerSet          `json:"answers"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	Overall         float64            `json:"overall"` // 0-100
	Answered        int                `json:"answered"`
	CreatedAt       time.Time          `json:"created_at"`
}

// IndicatorRecord is a lighter-weight periodic pulse metric (stress,
// wellbeing, motivation) recorded outside a full questionnaire.
type IndicatorRecord struct {
	ID         string    `json:"id"`
	SubjectID  string    `json:"subject_id"`
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

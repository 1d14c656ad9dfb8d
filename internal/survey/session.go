package survey

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidationError reports a required visible question without an answer.
// It is recoverable and never corrupts the session's answer set.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.QuestionID, e.Reason)
}

// Session owns one subject's accumulating answers and a cursor into the
// live visible sequence. All methods are request-scoped and
// single-threaded per session.
type Session struct {
	ID            string
	SubjectID     string
	Questionnaire Questionnaire
	StartedAt     time.Time

	answers   AnswerSet
	cursor    int
	scorer    *Scorer
	submitted bool
}

func NewSession(subjectID string, qn Questionnaire) *Session {
	return &Session{
		ID:            uuid.New().String(),
		SubjectID:     subjectID,
		Questionnaire: qn,
		StartedAt:     time.Now(),
		answers:       AnswerSet{},
		scorer:        NewScorer(),
	}
}

// Visible recomputes the visible sequence for the current answers.
func (s *Session) Visible() []QuestionDefinition {
	return VisibleQuestions(s.Questionnaire.Questions, s.answers)
}

// Current returns the question at the cursor, if any.
func (s *Session) Current() (QuestionDefinition, bool) {
	seq := s.Visible()
	if s.cursor < 0 || s.cursor >= len(seq) {
		return QuestionDefinition{}, false
	}
	return seq[s.cursor], true
}

// Answers returns a copy of the stored answers.
func (s *Session) Answers() AnswerSet { return s.answers.Clone() }

// Answer records a value for a question, overwriting any previous value.
// For multi-select questions the value toggles membership in the stored
// selection list instead.
func (s *Session) Answer(questionID string, value interface{}) {
	if q, ok := s.question(questionID); ok && q.Type == TypeMultipleChoice {
		s.answers[questionID] = toggle(answerTokens(s.answers[questionID]), value)
		return
	}
	s.answers[questionID] = value
}

func toggle(current []string, value interface{}) []string {
	// A list value replaces the whole selection.
	switch value.(type) {
	case []string, []interface{}:
		return answerTokens(value)
	}
	tokens := answerTokens(value)
	if len(tokens) == 0 {
		return current
	}
	t := tokens[0]
	out := make([]string, 0, len(current)+1)
	removed := false
	for _, c := range current {
		if c == t {
			removed = true
			continue
		}
		out = append(out, c)
	}
	if !removed {
		out = append(out, t)
	}
	return out
}

func (s *Session) question(id string) (QuestionDefinition, bool) {
	for _, q := range s.Visible() {
		if q.ID == id {
			return q, true
		}
	}
	for _, q := range s.Questionnaire.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return QuestionDefinition{}, false
}

// Advance moves the cursor forward one position after validating the
// current question. At the last position it submits instead and returns
// the resulting assessment.
func (s *Session) Advance() (*ScoredAssessment, error) {
	if cur, ok := s.Current(); ok && cur.Required {
		if _, answered := s.answers[cur.ID]; !answered {
			return nil, &ValidationError{QuestionID: cur.ID, Reason: "required question unanswered"}
		}
	}
	// Recompute after the validation: the answer just given may have
	// grown or shrunk the sequence.
	seq := s.Visible()
	if s.cursor >= len(seq)-1 {
		return s.Submit()
	}
	s.cursor++
	return nil, nil
}

// Retreat moves the cursor back one position. Stored answers are kept;
// pruning of stale branches happens on the next recomputation.
func (s *Session) Retreat() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// Progress reports (cursor+1)/len(sequence), recomputed every step since
// the sequence length changes as branches appear or vanish.
func (s *Session) Progress() float64 {
	seq := s.Visible()
	if len(seq) == 0 {
		return 0
	}
	pos := s.cursor + 1
	if pos > len(seq) {
		pos = len(seq)
	}
	return float64(pos) / float64(len(seq))
}

// Submit validates every required question in a freshly recomputed
// sequence, then scores the answers into an immutable assessment. The
// recompute guards against answers invalidated by a later branch change.
func (s *Session) Submit() (*ScoredAssessment, error) {
	for _, q := range s.Visible() {
		if !q.Required {
			continue
		}
		if _, answered := s.answers[q.ID]; !answered {
			return nil, &ValidationError{QuestionID: q.ID, Reason: "required question unanswered"}
		}
	}
	res := s.scorer.Score(s.Questionnaire, s.answers)
	s.submitted = true
	return &ScoredAssessment{
		ID:              uuid.New().String(),
		SubjectID:       s.SubjectID,
		QuestionnaireID: s.Questionnaire.ID,
		Answers:         s.answers.Clone(),
		DimensionScores: res.Dimensions,
		Overall:         res.Overall,
		Answered:        res.Answered,
		CreatedAt:       time.Now(),
	}, nil
}

// Submitted reports whether the session already produced an assessment.
func (s *Session) Submitted() bool { return s.submitted }

// CursorIndex exposes the zero-based cursor for the rendering layer.
func (s *Session) CursorIndex() int { return s.cursor }

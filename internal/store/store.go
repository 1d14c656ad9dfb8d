package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/pulse-check/pulsecheck-backend/internal/survey"
)

var (
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
)

// AssessmentListOpts filters assessment history for aggregation and
// subject views.
type AssessmentListOpts struct {
	SubjectID       string
	QuestionnaireID string
	Limit           int
	Offset          int
}

// Store persists questionnaires, scored assessments, and pulse
// indicators. Assessments are append-only; SaveAssessment takes the
// full record as one unit.
type Store interface {
	PutQuestionnaire(ctx context.Context, qn survey.Questionnaire) error
	GetQuestionnaire(ctx context.Context, id string) (survey.Questionnaire, error)
	ListQuestionnaires(ctx context.Context) ([]survey.Questionnaire, error)

	SaveAssessment(ctx context.Context, a survey.ScoredAssessment) error
	ListAssessments(ctx context.Context, opts AssessmentListOpts) ([]survey.ScoredAssessment, error)

	SaveIndicator(ctx context.Context, rec survey.IndicatorRecord) error
	ListIndicators(ctx context.Context, from, to time.Time) ([]survey.IndicatorRecord, error)
}

type memoryStore struct {
	mu             sync.RWMutex
	questionnaires map[string]survey.Questionnaire
	assessments    []survey.ScoredAssessment
	indicators     []survey.IndicatorRecord
}

// NewInMemoryStore backs offline/dev runs and tests.
func NewInMemoryStore() Store {
	return &memoryStore{questionnaires: map[string]survey.Questionnaire{}}
}

func (m *memoryStore) PutQuestionnaire(_ context.Context, qn survey.Questionnaire) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if qn.CreatedAt == 0 {
		qn.CreatedAt = time.Now().Unix()
	}
	m.questionnaires[qn.ID] = qn
	return nil
}

func (m *memoryStore) GetQuestionnaire(_ context.Context, id string) (survey.Questionnaire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qn, ok := m.questionnaires[id]
	if !ok {
		return survey.Questionnaire{}, ErrQuestionnaireNotFound
	}
	return qn, nil
}

func (m *memoryStore) ListQuestionnaires(_ context.Context) ([]survey.Questionnaire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]survey.Questionnaire, 0, len(m.questionnaires))
	for _, qn := range m.questionnaires {
		out = append(out, qn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) SaveAssessment(_ context.Context, a survey.ScoredAssessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessments = append(m.assessments, a)
	return nil
}

func (m *memoryStore) ListAssessments(_ context.Context, opts AssessmentListOpts) ([]survey.ScoredAssessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []survey.ScoredAssessment
	for _, a := range m.assessments {
		if opts.SubjectID != "" && a.SubjectID != opts.SubjectID {
			continue
		}
		if opts.QuestionnaireID != "" && a.QuestionnaireID != opts.QuestionnaireID {
			continue
		}
		out = append(out, a)
	}
	// Subject then recency, matching the SQL store's ordering.
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectID != out[j].SubjectID {
			return out[i].SubjectID < out[j].SubjectID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) SaveIndicator(_ context.Context, rec survey.IndicatorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indicators = append(m.indicators, rec)
	return nil
}

func (m *memoryStore) ListIndicators(_ context.Context, from, to time.Time) ([]survey.IndicatorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []survey.IndicatorRecord
	for _, r := range m.indicators {
		if r.RecordedAt.Before(from) || !r.RecordedAt.Before(to) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func paginate(list []survey.ScoredAssessment, limit, offset int) []survey.ScoredAssessment {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

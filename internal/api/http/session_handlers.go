package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pulse-check/pulsecheck-backend/internal/rbac"
	"github.com/pulse-check/pulsecheck-backend/internal/store"
	"github.com/pulse-check/pulsecheck-backend/internal/survey"
	syncx "github.com/pulse-check/pulsecheck-backend/internal/sync"
)

// sessionState is what the rendering layer needs to paint one question
// at a time.
type sessionState struct {
	SessionID string                     `json:"session_id"`
	Question  *survey.QuestionDefinition `json:"question,omitempty"`
	Index     int                        `json:"index"`
	Total     int                        `json:"total"`
	Progress  float64                    `json:"progress"`
	Submitted bool                       `json:"submitted"`
}

func stateOf(s *survey.Session) sessionState {
	st := sessionState{
		SessionID: s.ID,
		Index:     s.CursorIndex(),
		Total:     len(s.Visible()),
		Progress:  s.Progress(),
		Submitted: s.Submitted(),
	}
	if q, ok := s.Current(); ok {
		q = sanitizeQuestion(q)
		st.Question = &q
	}
	return st
}

// POST /sessions  { "questionnaire_id": "..." }
func StartSessionHandler(reg *survey.Registry, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionnaireID string `json:"questionnaire_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.QuestionnaireID == "" {
			http.Error(w, "questionnaire_id required", 400)
			return
		}
		qn, err := st.GetQuestionnaire(r.Context(), req.QuestionnaireID)
		if err != nil {
			if errors.Is(err, store.ErrQuestionnaireNotFound) {
				http.Error(w, err.Error(), 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		s := reg.Start(sub, qn)
		writeJSON(w, http.StatusCreated, stateOf(s))
	}
}

// GET /sessions/{sessionID}
func GetSessionHandler(reg *survey.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(reg, r)
		if err != nil {
			http.Error(w, err.Error(), statusOf(err))
			return
		}
		writeJSON(w, http.StatusOK, stateOf(s))
	}
}

// POST /sessions/{sessionID}/answers  { "question_id": "...", "value": ... }
func AnswerHandler(reg *survey.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(reg, r)
		if err != nil {
			http.Error(w, err.Error(), statusOf(err))
			return
		}
		var req struct {
			QuestionID string      `json:"question_id"`
			Value      interface{} `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.QuestionID == "" {
			http.Error(w, "question_id required", 400)
			return
		}
		s.Answer(req.QuestionID, req.Value)
		writeJSON(w, http.StatusOK, stateOf(s))
	}
}

// POST /sessions/{sessionID}/advance — moves forward; at the last
// question this submits and persists the assessment.
func AdvanceHandler(reg *survey.Registry, st store.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(reg, r)
		if err != nil {
			http.Error(w, err.Error(), statusOf(err))
			return
		}
		a, err := s.Advance()
		if err != nil {
			var verr *survey.ValidationError
			if errors.As(err, &verr) {
				http.Error(w, verr.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		if a == nil {
			writeJSON(w, http.StatusOK, stateOf(s))
			return
		}
		if err := persistAssessment(r, st, events, reg, s, a); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /sessions/{sessionID}/retreat
func RetreatHandler(reg *survey.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(reg, r)
		if err != nil {
			http.Error(w, err.Error(), statusOf(err))
			return
		}
		s.Retreat()
		writeJSON(w, http.StatusOK, stateOf(s))
	}
}

// POST /sessions/{sessionID}/submit — explicit submission regardless of
// cursor position.
func SubmitSessionHandler(reg *survey.Registry, st store.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(reg, r)
		if err != nil {
			http.Error(w, err.Error(), statusOf(err))
			return
		}
		a, err := s.Submit()
		if err != nil {
			var verr *survey.ValidationError
			if errors.As(err, &verr) {
				http.Error(w, verr.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		if err := persistAssessment(r, st, events, reg, s, a); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func persistAssessment(r *http.Request, st store.Store, events *syncx.EventRepo, reg *survey.Registry, s *survey.Session, a *survey.ScoredAssessment) error {
	// The assessment crosses the storage boundary as one unit.
	if err := st.SaveAssessment(r.Context(), *a); err != nil {
		return err
	}
	if events != nil {
		data, _ := json.Marshal(map[string]interface{}{
			"subject_id":       a.SubjectID,
			"questionnaire_id": a.QuestionnaireID,
			"overall":          a.Overall,
		})
		_ = events.Append(r.Context(), syncx.Event{
			Type:     syncx.EventAssessmentSubmitted,
			Key:      a.ID,
			DataJSON: string(data),
		})
	}
	reg.Remove(s.ID)
	return nil
}

func sessionFor(reg *survey.Registry, r *http.Request) (*survey.Session, error) {
	s, err := reg.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		return nil, err
	}
	// Sessions are private to the subject that started them.
	if sub := rbac.SubjectFromContext(r.Context()); sub != "" && s.SubjectID != sub {
		return nil, survey.ErrSessionNotFound
	}
	return s, nil
}

func statusOf(err error) int {
	if errors.Is(err, survey.ErrSessionNotFound) {
		return 404
	}
	return 500
}

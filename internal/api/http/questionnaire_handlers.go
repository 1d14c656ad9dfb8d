package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulse-check/pulsecheck-backend/internal/rbac"
	"github.com/pulse-check/pulsecheck-backend/internal/store"
	"github.com/pulse-check/pulsecheck-backend/internal/survey"
)

// POST /questionnaires — manager uploads an authored questionnaire.
// Definitions are validated for the obvious authoring mistakes here;
// deeper shape errors are the authoring tool's responsibility.
func UploadQuestionnaireHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var qn survey.Questionnaire
		if err := json.NewDecoder(r.Body).Decode(&qn); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if qn.ID == "" {
			qn.ID = uuid.New().String()
		}
		if len(qn.Questions) == 0 {
			http.Error(w, "questionnaire has no questions", 400)
			return
		}
		for _, q := range qn.Questions {
			if (q.Type == survey.TypeSingleChoice || q.Type == survey.TypeMultipleChoice) && len(q.Options) == 0 {
				http.Error(w, "choice question "+q.ID+" has no options", 400)
				return
			}
		}
		if err := st.PutQuestionnaire(r.Context(), qn); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusCreated, qn)
	}
}

// GET /questionnaires/{questionnaireID}
func GetQuestionnaireHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionnaireID")
		qn, err := st.GetQuestionnaire(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrQuestionnaireNotFound) {
				http.Error(w, err.Error(), 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		// Subjects get questions without scoring configuration.
		if rbac.RoleFromContext(r.Context()) == "subject" {
			qn = sanitizeForSubject(qn)
		}
		writeJSON(w, http.StatusOK, qn)
	}
}

// GET /questionnaires
func ListQuestionnairesHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := st.ListQuestionnaires(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		type summary struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			Questions int    `json:"questions"`
			CreatedAt int64  `json:"created_at"`
		}
		out := make([]summary, 0, len(list))
		for _, qn := range list {
			out = append(out, summary{ID: qn.ID, Title: qn.Title, Questions: len(qn.Questions), CreatedAt: qn.CreatedAt})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// sanitizeForSubject strips point values and scoring flags so the
// rendering layer cannot leak them to the person answering.
func sanitizeForSubject(qn survey.Questionnaire) survey.Questionnaire {
	qn.Dimensions = nil
	qn.MaxPoints = 0
	questions := make([]survey.QuestionDefinition, len(qn.Questions))
	for i, q := range qn.Questions {
		questions[i] = sanitizeQuestion(q)
	}
	qn.Questions = questions
	return qn
}

func sanitizeQuestion(q survey.QuestionDefinition) survey.QuestionDefinition {
	q.Reversed = false
	q.Weight = 0
	q.Options = stripPoints(q.Options)
	if q.Rule != nil {
		rule := *q.Rule
		conds := make([]survey.RuleCondition, len(rule.Conditions))
		for i, c := range rule.Conditions {
			fups := make([]survey.FollowUpTemplate, len(c.FollowUps))
			for j, f := range c.FollowUps {
				f.Options = stripPoints(f.Options)
				f.Reversed = false
				f.Weight = 0
				fups[j] = f
			}
			c.FollowUps = fups
			conds[i] = c
		}
		rule.Conditions = conds
		q.Rule = &rule
	}
	return q
}

func stripPoints(opts []survey.Option) []survey.Option {
	out := make([]survey.Option, len(opts))
	for i, o := range opts {
		o.Points = 0
		out[i] = o
	}
	return out
}

package http

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pulse-check/pulsecheck-backend/internal/analytics"
	"github.com/pulse-check/pulsecheck-backend/internal/rbac"
	"github.com/pulse-check/pulsecheck-backend/internal/store"
)

// GET /dashboard/summary?questionnaire_id=...&days=180
// Reduces persisted history into the org-wide dashboard payload. The
// cache is optional; a nil cache recomputes per request.
func DashboardSummaryHandler(st store.Store, cache analytics.SummaryCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qnID := strings.TrimSpace(r.URL.Query().Get("questionnaire_id"))
		days := parseIntDefault(r.URL.Query().Get("days"), 180)
		key := qnID
		if key == "" {
			key = "all"
		}

		if cache != nil {
			if cached, err := cache.Get(r.Context(), key); err == nil && cached != nil {
				writeJSON(w, http.StatusOK, cached)
				return
			}
		}

		now := time.Now()
		history, err := st.ListAssessments(r.Context(), store.AssessmentListOpts{QuestionnaireID: qnID})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		indicators, err := st.ListIndicators(r.Context(), now.AddDate(0, 0, -days), now)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}

		summary := analytics.BuildSummary(history, indicators, now)
		if cache != nil {
			if err := cache.Set(r.Context(), key, &summary); err != nil {
				log.Printf("dashboard cache set failed: %v", err)
			}
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// GET /assessments?subject_id=...&limit=50&offset=0
// Subjects only ever see their own history; managers see everyone's.
func ListAssessmentsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())

		subjectID := strings.TrimSpace(r.URL.Query().Get("subject_id"))
		if role != "admin" && role != "manager" {
			subjectID = sub
		}
		list, err := st.ListAssessments(r.Context(), store.AssessmentListOpts{
			SubjectID:       subjectID,
			QuestionnaireID: strings.TrimSpace(r.URL.Query().Get("questionnaire_id")),
			Limit:           parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:          parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

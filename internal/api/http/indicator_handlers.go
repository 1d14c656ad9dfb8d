package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pulse-check/pulsecheck-backend/internal/rbac"
	"github.com/pulse-check/pulsecheck-backend/internal/store"
	"github.com/pulse-check/pulsecheck-backend/internal/survey"
	syncx "github.com/pulse-check/pulsecheck-backend/internal/sync"
)

// POST /indicators  { "type": "stress", "value": 7 }
// Quick pulse check-ins between full questionnaires.
func RecordIndicatorHandler(st store.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type  string  `json:"type"`
			Value float64 `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Type == "" {
			http.Error(w, "type required", 400)
			return
		}
		rec := survey.IndicatorRecord{
			ID:         uuid.New().String(),
			SubjectID:  rbac.SubjectFromContext(r.Context()),
			Type:       req.Type,
			Value:      req.Value,
			RecordedAt: time.Now(),
		}
		if err := st.SaveIndicator(r.Context(), rec); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if events != nil {
			data, _ := json.Marshal(rec)
			_ = events.Append(r.Context(), syncx.Event{
				Type:     syncx.EventIndicatorRecorded,
				Key:      rec.ID,
				DataJSON: string(data),
			})
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// GET /indicators?days=30
func ListIndicatorsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := parseIntDefault(r.URL.Query().Get("days"), 30)
		now := time.Now()
		list, err := st.ListIndicators(r.Context(), now.AddDate(0, 0, -days), now)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/pulse-check/pulsecheck-backend/internal/survey"
)

// SQLStore persists through database/sql against sqlite or postgres.
// Question definitions and answer payloads ride in JSON text columns;
// the columns the aggregation layer filters on are first-class.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutQuestionnaire(ctx context.Context, qn survey.Questionnaire) error {
	if qn.CreatedAt == 0 {
		qn.CreatedAt = time.Now().Unix()
	}
	def, err := json.Marshal(qn)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO questionnaires (id,title,definition_json,created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, definition_json=EXCLUDED.definition_json`,
		qn.ID, qn.Title, string(def), qn.CreatedAt)
	return err
}

func (s *SQLStore) GetQuestionnaire(ctx context.Context, id string) (survey.Questionnaire, error) {
	row := s.db.QueryRowContext(ctx, `SELECT definition_json FROM questionnaires WHERE id=$1`, id)
	var def string
	if err := row.Scan(&def); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return survey.Questionnaire{}, ErrQuestionnaireNotFound
		}
		return survey.Questionnaire{}, err
	}
	var qn survey.Questionnaire
	if err := json.Unmarshal([]byte(def), &qn); err != nil {
		return survey.Questionnaire{}, err
	}
	return qn, nil
}

func (s *SQLStore) ListQuestionnaires(ctx context.Context) ([]survey.Questionnaire, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT definition_json FROM questionnaires ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []survey.Questionnaire
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return nil, err
		}
		var qn survey.Questionnaire
		if err := json.Unmarshal([]byte(def), &qn); err != nil {
			return nil, err
		}
		out = append(out, qn)
	}
	return out, rows.Err()
}

// SaveAssessment writes one complete assessment in a single statement;
// there is no partial-persistence path.
func (s *SQLStore) SaveAssessment(ctx context.Context, a survey.ScoredAssessment) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	dims, err := json.Marshal(a.DimensionScores)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO assessments
		(id,questionnaire_id,subject_id,answers_json,dimension_scores_json,overall,answered,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.QuestionnaireID, a.SubjectID, string(answers), string(dims),
		a.Overall, a.Answered, a.CreatedAt.Unix())
	return err
}

func (s *SQLStore) ListAssessments(ctx context.Context, opts AssessmentListOpts) ([]survey.ScoredAssessment, error) {
	q := `SELECT id,questionnaire_id,subject_id,answers_json,dimension_scores_json,overall,answered,created_at
		FROM assessments WHERE 1=1`
	args := []interface{}{}
	n := 0
	add := func(clause string, v interface{}) {
		n++
		q += clause + placeholder(n)
		args = append(args, v)
	}
	if opts.SubjectID != "" {
		add(` AND subject_id=`, opts.SubjectID)
	}
	if opts.QuestionnaireID != "" {
		add(` AND questionnaire_id=`, opts.QuestionnaireID)
	}
	q += ` ORDER BY subject_id ASC, created_at DESC`
	if opts.Limit > 0 {
		add(` LIMIT `, opts.Limit)
	}
	if opts.Offset > 0 {
		add(` OFFSET `, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []survey.ScoredAssessment
	for rows.Next() {
		var a survey.ScoredAssessment
		var answers, dims string
		var created int64
		if err := rows.Scan(&a.ID, &a.QuestionnaireID, &a.SubjectID, &answers, &dims, &a.Overall, &a.Answered, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			a.Answers = survey.AnswerSet{}
		}
		if err := json.Unmarshal([]byte(dims), &a.DimensionScores); err != nil {
			a.DimensionScores = map[string]float64{}
		}
		a.CreatedAt = time.Unix(created, 0)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveIndicator(ctx context.Context, rec survey.IndicatorRecord) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO indicators (id,subject_id,typ,value,recorded_at)
		VALUES ($1,$2,$3,$4,$5)`,
		rec.ID, rec.SubjectID, rec.Type, rec.Value, rec.RecordedAt.Unix())
	return err
}

func (s *SQLStore) ListIndicators(ctx context.Context, from, to time.Time) ([]survey.IndicatorRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,subject_id,typ,value,recorded_at
		FROM indicators WHERE recorded_at >= $1 AND recorded_at < $2 ORDER BY recorded_at ASC`,
		from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []survey.IndicatorRecord
	for rows.Next() {
		var r survey.IndicatorRecord
		var recorded int64
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.Type, &r.Value, &recorded); err != nil {
			return nil, err
		}
		r.RecordedAt = time.Unix(recorded, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholder(n int) string {
	// pgx stdlib and modernc sqlite both accept $N placeholders.
	return "$" + strconv.Itoa(n)
}

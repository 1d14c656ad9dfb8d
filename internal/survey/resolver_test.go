package survey_test

import (
	"reflect"
	"testing"

	"github.com/pulse-check/pulsecheck-backend/internal/survey"
)

func branchingDefs() []survey.QuestionDefinition {
	return []survey.QuestionDefinition{
		{
			ID:   "q1",
			Text: "Have you felt stressed this week?",
			Type: survey.TypeSingleChoice,
			Options: []survey.Option{
				{ID: "yes", Value: "yes", Points: 1},
				{ID: "no", Value: "no", Points: 5},
			},
		},
		{
			ID:   "q2",
			Text: "How is your workload?",
			Type: survey.TypeLikert,
			Rule: &survey.ConditionalRule{
				DependsOn: "q1",
				Conditions: []survey.RuleCondition{
					{
						Match: []string{"yes"},
						Show:  true,
						FollowUps: []survey.FollowUpTemplate{
							{Text: "What was the main source?", Type: survey.TypeFreeText},
						},
					},
				},
			},
			Scale: &survey.LikertScale{Min: 1, Max: 5},
		},
	}
}

func visibleIDs(defs []survey.QuestionDefinition, answers survey.AnswerSet) []string {
	out := []string{}
	for _, q := range survey.VisibleQuestions(defs, answers) {
		out = append(out, q.ID)
	}
	return out
}

func TestVisibleQuestionsEntryAlwaysShown(t *testing.T) {
	defs := branchingDefs()
	got := visibleIDs(defs, survey.AnswerSet{})
	want := []string{"q1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("empty answers: got %v, want %v", got, want)
	}
}

func TestVisibleQuestionsBranchAndFollowUp(t *testing.T) {
	defs := branchingDefs()

	got := visibleIDs(defs, survey.AnswerSet{"q1": "yes"})
	want := []string{"q1", "q2", "q2-followup-0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("q1=yes: got %v, want %v", got, want)
	}

	got = visibleIDs(defs, survey.AnswerSet{"q1": "no"})
	want = []string{"q1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("q1=no: got %v, want %v", got, want)
	}
}

func TestVisibleQuestionsReversalPrunesBranch(t *testing.T) {
	defs := branchingDefs()
	answers := survey.AnswerSet{"q1": "yes", "q2": 4.0, "q2-followup-0": "deadlines"}

	// The stale branch answers stay stored, but after reversing q1 the
	// branch and its follow-up vanish from the sequence.
	answers["q1"] = "no"
	got := visibleIDs(defs, answers)
	want := []string{"q1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("after reversal: got %v, want %v", got, want)
	}
}

func TestVisibleQuestionsIdempotent(t *testing.T) {
	defs := branchingDefs()
	answers := survey.AnswerSet{"q1": "yes"}

	first := visibleIDs(defs, answers)
	second := visibleIDs(defs, answers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recompute with same answers diverged: %v vs %v", first, second)
	}
}

func TestVisibleQuestionsNoDuplicateIDs(t *testing.T) {
	defs := branchingDefs()
	got := visibleIDs(defs, survey.AnswerSet{"q1": "yes"})
	seen := map[string]bool{}
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate id %q in sequence %v", id, got)
		}
		seen[id] = true
	}
}

func TestVisibleQuestionsHiddenDependencyKeepsDependentHidden(t *testing.T) {
	defs := []survey.QuestionDefinition{
		{ID: "a", Type: survey.TypeSingleChoice, Options: []survey.Option{{Value: "yes"}, {Value: "no"}}},
		{
			ID:   "b",
			Type: survey.TypeSingleChoice,
			Rule: &survey.ConditionalRule{
				DependsOn:  "a",
				Conditions: []survey.RuleCondition{{Match: []string{"yes"}, Show: true}},
			},
			Options: []survey.Option{{Value: "often"}},
		},
		{
			ID:   "c",
			Type: survey.TypeFreeText,
			Rule: &survey.ConditionalRule{
				DependsOn:  "b",
				Conditions: []survey.RuleCondition{{Match: []string{"often"}, Show: true}},
			},
		},
	}

	// b is hidden (a=no), so b never got an answer and c stays hidden
	// transitively without extra bookkeeping.
	got := visibleIDs(defs, survey.AnswerSet{"a": "no"})
	want := []string{"a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestVisibleQuestionsFirstConditionWins(t *testing.T) {
	defs := []survey.QuestionDefinition{
		{ID: "a", Type: survey.TypeSingleChoice, Options: []survey.Option{{Value: "yes_often"}}},
		{
			ID:   "b",
			Type: survey.TypeFreeText,
			Rule: &survey.ConditionalRule{
				DependsOn: "a",
				Conditions: []survey.RuleCondition{
					{Match: []string{"yes"}, Show: true},
					{Match: []string{"often"}, Show: false},
				},
			},
		},
	}

	// "yes_often" substring-matches both conditions. Declaration order
	// decides, so the first (show) wins.
	got := visibleIDs(defs, survey.AnswerSet{"a": "yes_often"})
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestVisibleQuestionsMatchingIsCaseInsensitiveAndLoose(t *testing.T) {
	defs := branchingDefs()

	for _, raw := range []interface{}{
		"YES",
		"  yes  ",
		[]interface{}{"no", "Yes"},
		map[string]interface{}{"value": "yes"},
	} {
		got := visibleIDs(defs, survey.AnswerSet{"q1": raw})
		if len(got) != 3 {
			t.Errorf("answer %#v: got %v, want branch visible", raw, got)
		}
	}
}

func TestVisibleQuestionsEmptyDefinitions(t *testing.T) {
	if got := survey.VisibleQuestions(nil, survey.AnswerSet{"x": "y"}); got != nil {
		t.Fatalf("nil defs: got %v, want nil", got)
	}
}

func TestVisibleQuestionsShowFalseHides(t *testing.T) {
	defs := []survey.QuestionDefinition{
		{ID: "a", Type: survey.TypeSingleChoice, Options: []survey.Option{{Value: "fine"}}},
		{
			ID:   "b",
			Type: survey.TypeFreeText,
			Rule: &survey.ConditionalRule{
				DependsOn:  "a",
				Conditions: []survey.RuleCondition{{Match: []string{"fine"}, Show: false}},
			},
		},
	}
	got := visibleIDs(defs, survey.AnswerSet{"a": "fine"})
	want := []string{"a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

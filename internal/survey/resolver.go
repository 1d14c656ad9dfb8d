package survey

import (
	"fmt"
	"strconv"
	"strings"
)

// VisibleQuestions derives the ordered set of currently visible questions
// for the given answers, including materialized follow-ups. The sequence
// is recomputed from scratch on every answer change so that reversing an
// earlier answer prunes now-invalid branches and their follow-ups.
func VisibleQuestions(defs []QuestionDefinition, answers AnswerSet) []QuestionDefinition {
	if len(defs) == 0 {
		return nil
	}
	out := make([]QuestionDefinition, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))

	include := func(q QuestionDefinition) {
		if _, dup := seen[q.ID]; dup {
			return
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}

	for i, q := range defs {
		// The entry question is always shown.
		if i == 0 || q.Rule == nil {
			include(q)
			continue
		}
		raw, answered := answers[q.Rule.DependsOn]
		if !answered {
			// A hidden dependency never gets a stored answer, so its
			// dependents stay hidden without extra bookkeeping.
			continue
		}
		tokens := answerTokens(raw)
		cond, matched := firstMatch(q.Rule.Conditions, tokens)
		if !matched || !cond.Show {
			continue
		}
		include(q)
		for idx, tpl := range cond.FollowUps {
			include(materialize(q.ID, idx, tpl))
		}
	}
	return out
}

// firstMatch walks conditions in declaration order and returns the first
// whose match tokens hit any answer token. Declaration order resolves
// the case where several conditions would match.
func firstMatch(conds []RuleCondition, tokens []string) (RuleCondition, bool) {
	for _, c := range conds {
		for _, m := range c.Match {
			if tokenMatches(m, tokens) {
				return c, true
			}
		}
	}
	return RuleCondition{}, false
}

// tokenMatches compares case-insensitively and accepts substring hits in
// either direction. The looseness is intentional: authored triggers like
// "yes" should also fire on stored option values like "yes_often".
func tokenMatches(match string, tokens []string) bool {
	m := strings.ToLower(strings.TrimSpace(match))
	if m == "" {
		return false
	}
	for _, t := range tokens {
		lt := strings.ToLower(strings.TrimSpace(t))
		if lt == "" {
			continue
		}
		if lt == m || strings.Contains(lt, m) || strings.Contains(m, lt) {
			return true
		}
	}
	return false
}

// answerTokens normalizes a raw stored answer into comparable string
// tokens: scalars are wrapped, {value|selected} objects unwrapped, and
// lists flattened element-wise.
func answerTokens(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, answerTokens(e)...)
		}
		return out
	case map[string]interface{}:
		if inner, ok := v["value"]; ok {
			return answerTokens(inner)
		}
		if inner, ok := v["selected"]; ok {
			return answerTokens(inner)
		}
		return nil
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case int:
		return []string{strconv.Itoa(v)}
	case bool:
		return []string{strconv.FormatBool(v)}
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

// materialize turns a follow-up template into a synthetic question with a
// deterministic id derived from its parent and position.
func materialize(parentID string, idx int, tpl FollowUpTemplate) QuestionDefinition {
	return QuestionDefinition{
		ID:        fmt.Sprintf("%s-followup-%d", parentID, idx),
		Text:      tpl.Text,
		Type:      tpl.Type,
		Required:  tpl.Required,
		Options:   tpl.Options,
		Scale:     tpl.Scale,
		Dimension: tpl.Dimension,
		Reversed:  tpl.Reversed,
		Weight:    tpl.Weight,
	}
}

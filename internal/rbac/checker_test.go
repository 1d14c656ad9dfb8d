package rbac_test

import (
	"testing"

	"github.com/pulse-check/pulsecheck-backend/internal/rbac"
)

func TestCheckerRolePermissions(t *testing.T) {
	c := rbac.NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"subject", "session:answer", true},
		{"subject", "questionnaire:view", true},
		{"subject", "dashboard:view", false},
		{"subject", "users:list", false},
		{"manager", "dashboard:view", true},
		{"manager", "assessment:view-all", true},
		{"manager", "session:answer", false},
		{"admin", "anything:at-all", true},
		{"unknown", "questionnaire:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := rbac.NewChecker(nil)
	if !c.Any("manager", "users:list", "session:answer") {
		t.Fatal("manager should satisfy at least one")
	}
	if c.Any("subject", "users:list", "dashboard:view") {
		t.Fatal("subject satisfies none of these")
	}
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := rbac.NewChecker(map[string][]string{
		"auditor": {"assessment:*"},
	})
	if !c.Has("auditor", "assessment:view-all") {
		t.Fatal("prefix wildcard should match")
	}
	if c.Has("auditor", "dashboard:view") {
		t.Fatal("prefix wildcard must stay scoped")
	}
}

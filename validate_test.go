package cedar_test

import (
	"strings"
	"testing"

	"github.com/charbonnierg/cedar"
	"github.com/charbonnierg/cedar/internal/testutil"
)

func TestValidatePolicies(t *testing.T) {
	t.Parallel()

	t.Run("conforming policies pass", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `
			permit (principal == User::"alice", action == Action::"view", resource is Doc);
			forbid (principal in Group::"banned", action, resource);
		`)
		res := cedar.ValidatePolicies(docSchema(), ps)
		testutil.Equals(t, res.Passed(), true)
		testutil.Equals(t, res.PassedWithoutWarning(), true)
	})

	t.Run("unknown entity type in scope", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `permit (principal == Ghost::"g", action, resource);`)
		res := cedar.ValidatePolicies(docSchema(), ps)
		testutil.Equals(t, res.Passed(), false)
		testutil.Equals(t, len(res.Errors), 1)
		testutil.FatalIf(t, !strings.Contains(res.Errors[0], "policy `policy0`"), "error %q lacks policy id", res.Errors[0])
		testutil.FatalIf(t, !strings.Contains(res.Errors[0], "Ghost"), "error %q lacks type name", res.Errors[0])
	})

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `permit (principal, action == Action::"shred", resource);`)
		res := cedar.ValidatePolicies(docSchema(), ps)
		testutil.Equals(t, res.Passed(), false)
		testutil.FatalIf(t, !strings.Contains(res.Errors[0], "shred"), "error %q lacks action", res.Errors[0])
	})

	t.Run("inapplicable action", func(t *testing.T) {
		t.Parallel()
		// view applies to (User, Doc); a Group principal can never match.
		ps := mustParsePolicies(t, `permit (principal is Group, action == Action::"view", resource);`)
		res := cedar.ValidatePolicies(docSchema(), ps)
		testutil.Equals(t, res.Passed(), false)
		testutil.FatalIf(t, !strings.Contains(res.Errors[0], "no declared action applies"),
			"unexpected error %q", res.Errors[0])
	})

	t.Run("errors are collected across policies", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `
			permit (principal == Ghost::"g", action, resource);
			permit (principal, action == Action::"shred", resource);
		`)
		res := cedar.ValidatePolicies(docSchema(), ps)
		testutil.Equals(t, len(res.Errors), 2)
	})

	t.Run("unreferenced types warn", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `permit (principal is User, action == Action::"view", resource is Doc);`)
		res := cedar.ValidatePolicies(docSchema(), ps)
		testutil.Equals(t, res.Passed(), true)
		testutil.Equals(t, res.PassedWithoutWarning(), false)
		testutil.Equals(t, len(res.Warnings), 1)
		testutil.FatalIf(t, !strings.Contains(res.Warnings[0], "Group"), "warning %q", res.Warnings[0])
	})
}

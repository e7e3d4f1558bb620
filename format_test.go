package cedar_test

import (
	"testing"

	"github.com/charbonnierg/cedar"
	"github.com/charbonnierg/cedar/internal/testutil"
)

func TestFormatPolicies(t *testing.T) {
	t.Parallel()

	t.Run("short policy stays on one line", func(t *testing.T) {
		t.Parallel()
		out, err := cedar.FormatPolicies([]byte(`permit(principal,action,resource);`), cedar.FormatConfig{})
		testutil.OK(t, err)
		testutil.Equals(t, string(out), "permit (principal, action, resource);\n")
	})

	t.Run("narrow width breaks the scope", func(t *testing.T) {
		t.Parallel()
		out, err := cedar.FormatPolicies(
			[]byte(`permit (principal == User::"alice", action == Action::"view", resource == Doc::"1");`),
			cedar.FormatConfig{LineWidth: 40, IndentWidth: 4},
		)
		testutil.OK(t, err)
		want := "permit (\n" +
			"    principal == User::\"alice\",\n" +
			"    action == Action::\"view\",\n" +
			"    resource == Doc::\"1\"\n" +
			");\n"
		testutil.Equals(t, string(out), want)
	})

	t.Run("formatted output reparses to the same policies", func(t *testing.T) {
		t.Parallel()
		src := []byte(`
			@id("a")
			permit (principal in Group::"eng", action, resource)
			when { principal.level >= 3 && resource.owner == principal || context.emergency };

			forbid (principal, action, resource) unless { context.mfa };
		`)
		out, err := cedar.FormatPolicies(src, cedar.FormatConfig{LineWidth: 60, IndentWidth: 2})
		testutil.OK(t, err)

		original, err := cedar.NewPolicySetFromBytes("src", src)
		testutil.OK(t, err)
		formatted, err := cedar.NewPolicySetFromBytes("out", out)
		testutil.OK(t, err)
		testutil.Equals(t, formatted.Len(), original.Len())
		formatted.Iterate(func(id cedar.PolicyID, p *cedar.Policy) bool {
			testutil.FatalIf(t, !p.Equal(original.Get(id)), "policy %s changed by formatting", id)
			return true
		})
	})

	t.Run("parse errors are reported", func(t *testing.T) {
		t.Parallel()
		_, err := cedar.FormatPolicies([]byte(`permit (`), cedar.FormatConfig{})
		testutil.Error(t, err)
	})
}

package eval_test

import (
	"testing"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/internal/eval"
	"github.com/charbonnierg/cedar/internal/parser"
	"github.com/charbonnierg/cedar/internal/testutil"
	"github.com/charbonnierg/cedar/types"
)

// condition parses a single condition expression by wrapping it in a
// minimal policy.
func condition(t testing.TB, expr string) ast.IsNode {
	t.Helper()
	p, err := parser.ParsePolicy([]byte("permit (principal, action, resource) when { " + expr + " };"))
	testutil.OK(t, err)
	return p.Conditions[0].Body
}

func testEnv(t testing.TB) eval.Env {
	t.Helper()
	em, err := types.NewEntityMap([]types.Entity{
		{
			UID:     types.NewEntityUID("User", "alice"),
			Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "admins")),
			Attributes: types.NewRecord(types.RecordMap{
				"name": types.String("alice"),
				"age":  types.Long(30),
			}),
		},
		{
			UID:     types.NewEntityUID("Group", "admins"),
			Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "staff")),
		},
		{UID: types.NewEntityUID("Group", "staff")},
		{UID: types.NewEntityUID("Doc", "spec")},
	})
	testutil.OK(t, err)
	return eval.Env{
		Entities:  em,
		Principal: types.NewEntityUID("User", "alice"),
		Action:    types.NewEntityUID("Action", "view"),
		Resource:  types.NewEntityUID("Doc", "spec"),
		Context:   types.NewRecord(types.RecordMap{"tier": types.String("gold"), "n": types.Long(2)}),
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	env := testEnv(t)

	tests := []struct {
		expr string
		want types.Value
	}{
		{"1 + 2 * 3", types.Long(7)},
		{"10 - 3 - 2", types.Long(5)},
		{"-(1 + 2)", types.Long(-3)},
		{"1 < 2 && 2 <= 2", types.True},
		{"3 >= 4 || 3 > 4", types.False},
		{`1 == "1"`, types.False},
		{`"alice" != "bob"`, types.True},
		{"!(1 > 2)", types.True},

		// Short-circuit suppresses errors in the untaken operand.
		{"false && principal.missing", types.False},
		{"true || principal.missing", types.True},
		{`if true then 1 else 1 + "x"`, types.Long(1)},
		{`if context.n == 2 then "two" else "other"`, types.String("two")},

		{"principal in principal", types.True},
		{`Ghost::"g" in Ghost::"g"`, types.True},
		{`principal in Group::"admins"`, types.True},
		{`principal in Group::"staff"`, types.True},
		{`principal in Group::"other"`, types.False},
		{`principal in [Group::"other", Group::"admins"]`, types.True},

		{"principal has name", types.True},
		{"principal has nickname", types.False},
		{`Ghost::"g" has name`, types.False},
		{"principal.age", types.Long(30)},
		{`context.tier`, types.String("gold")},
		{`context["tier"]`, types.String("gold")},
		{`context has "tier"`, types.True},

		{`principal.name like "al*"`, types.True},
		{`principal.name like "b*"`, types.False},

		{"principal is User", types.True},
		{"principal is Group", types.False},
		{`principal is User in Group::"staff"`, types.True},
		{`principal is User in Group::"other"`, types.False},

		{"[1, 2, 3].contains(2)", types.True},
		{"[1, 2].contains(3)", types.False},
		{"[1, 2].containsAll([2, 1])", types.True},
		{"[1, 2].containsAll([1, 3])", types.False},
		{"[1, 2].containsAny([3, 2])", types.True},
		{"[1, 2].containsAny([3, 4])", types.False},
		{`{tier: "gold"} == {"tier": "gold"}`, types.True},

		{`decimal("1.50").lessThan(decimal("2.00"))`, types.True},
		{`decimal("2.00").greaterThanOrEqual(decimal("2.00"))`, types.True},
		{`ip("192.168.1.1").isInRange(ip("192.168.0.0/16"))`, types.True},
		{`ip("10.0.0.1").isInRange(ip("192.168.0.0/16"))`, types.False},
		{`ip("127.0.0.1").isLoopback()`, types.True},
		{`ip("::1").isIpv6()`, types.True},
		{`ip("1.2.3.4").isIpv4()`, types.True},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			got, err := eval.Evaluate(condition(t, tt.expr), env)
			testutil.OK(t, err)
			testutil.FatalIf(t, !got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()
	env := testEnv(t)

	tests := []struct {
		expr string
		want error
	}{
		{"principal.nickname", eval.ErrAttributeNotFound},
		{`Ghost::"g".name`, eval.ErrEntityNotFound},
		{`Ghost::"g" in Group::"staff"`, eval.ErrEntityNotFound},
		{"1 + true", eval.ErrTypeMismatch},
		{"true && 1", eval.ErrTypeMismatch},
		{"1 in 2", eval.ErrTypeMismatch},
		{"principal in [1]", eval.ErrTypeMismatch},
		{`"a" < "b"`, eval.ErrTypeMismatch},
		{"context.tier.missing", eval.ErrTypeMismatch},
		{"9223372036854775807 + 1", eval.ErrIntegerOverflow},
		{"-9223372036854775808 - 1", eval.ErrIntegerOverflow},
		{"9223372036854775807 * 2", eval.ErrIntegerOverflow},
		{"-(-9223372036854775808)", eval.ErrIntegerOverflow},
		{`ip("1.2.3.4", "5.6.7.8")`, eval.ErrTypeMismatch},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.expr, func(t *testing.T) {
			t.Parallel()
			_, err := eval.Evaluate(condition(t, tt.expr), env)
			testutil.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("malformed decimal literal", func(t *testing.T) {
		t.Parallel()
		_, err := eval.Evaluate(condition(t, `decimal("abc")`), env)
		testutil.Error(t, err)
	})

	t.Run("unknown extension function", func(t *testing.T) {
		t.Parallel()
		n := ast.NodeTypeExtensionCall{Name: "frobnicate"}
		_, err := eval.Evaluate(n, env)
		testutil.ErrorIs(t, err, eval.ErrUnknownExtension)
	})

	t.Run("recursion limit", func(t *testing.T) {
		t.Parallel()
		var n ast.IsNode = ast.NodeValue{Value: types.True}
		for i := 0; i < 600; i++ {
			n = ast.NodeTypeNot{UnaryNode: ast.UnaryNode{Arg: n}}
		}
		_, err := eval.Evaluate(n, env)
		testutil.ErrorIs(t, err, eval.ErrRecursionLimitExceeded)
	})
}

func TestEntityAncestorMatches(t *testing.T) {
	t.Parallel()
	env := testEnv(t)

	alice := types.NewEntityUID("User", "alice")
	staff := types.NewEntityUID("Group", "staff")

	t.Run("transitive walk", func(t *testing.T) {
		t.Parallel()
		got := eval.EntityAncestorMatches(alice, func(u types.EntityUID) bool { return u == staff }, env.Entities)
		testutil.Equals(t, got, true)
	})

	t.Run("reflexive without store", func(t *testing.T) {
		t.Parallel()
		ghost := types.NewEntityUID("Ghost", "g")
		got := eval.EntityAncestorMatches(ghost, func(u types.EntityUID) bool { return u == ghost }, types.EntityMap{})
		testutil.Equals(t, got, true)
	})

	t.Run("absent ancestors end the walk", func(t *testing.T) {
		t.Parallel()
		em, err := types.NewEntityMap([]types.Entity{{
			UID:     types.NewEntityUID("User", "bob"),
			Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "missing")),
		}})
		testutil.OK(t, err)
		bob := types.NewEntityUID("User", "bob")
		got := eval.EntityAncestorMatches(bob, func(u types.EntityUID) bool { return u == staff }, em)
		testutil.Equals(t, got, false)
	})
}

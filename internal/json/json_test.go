package json_test

import (
	"strconv"
	"testing"

	internaljson "github.com/charbonnierg/cedar/internal/json"
	"github.com/charbonnierg/cedar/internal/parser"
	"github.com/charbonnierg/cedar/internal/testutil"
)

// The JSON policy format and the Cedar text form decode to the same AST,
// so a policy can cross between the two without loss.

func TestPolicyJSONRoundTrip(t *testing.T) {
	t.Parallel()

	srcs := []string{
		`permit (principal, action, resource);`,
		`forbid (principal == User::"alice", action == Action::"view", resource == Doc::"spec");`,
		`@id("grant") @owner("platform") permit (principal, action, resource);`,
		`permit (principal in Group::"eng", action in [Action::"a", Action::"b"], resource is Doc in Folder::"root");`,
		`permit (principal is User, action, resource)
			when { principal.age + 1 >= 18 && !(resource has locked) }
			unless { context.tier != "gold" || principal.name like "ban*" };`,
		`permit (principal, action, resource)
			when { [1, 2].containsAny([2, 3]) && {nested: {deep: true}}.nested.deep }
			when { if principal in Group::"eng" then true else false }
			when { principal is User in Group::"eng" }
			when { ip("10.0.0.1").isInRange(ip("10.0.0.0/8")) && decimal("0.5").lessThan(decimal("1.0")) };`,
	}
	for i, src := range srcs {
		src := src
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			t.Parallel()
			want, err := parser.ParsePolicy([]byte(src))
			testutil.OK(t, err)

			out, err := internaljson.MarshalPolicy(want)
			testutil.OK(t, err)
			got, err := internaljson.UnmarshalPolicy(out)
			testutil.OK(t, err)
			testutil.FatalIf(t, !got.Equal(want), "round trip mismatch for %s:\n%s", src, out)
		})
	}
}

func TestUnmarshalPolicy(t *testing.T) {
	t.Parallel()

	doc := `{
		"annotations": {"id": "grant"},
		"effect": "permit",
		"principal": {"op": "in", "entity": {"type": "Group", "id": "eng"}},
		"action": {"op": "in", "entities": [{"type": "Action", "id": "view"}, {"type": "Action", "id": "edit"}]},
		"resource": {"op": "is", "entity_type": "Doc", "in": {"entity": {"type": "Folder", "id": "root"}}},
		"conditions": [
			{"kind": "when", "body": {"&&": {
				"left": {">=": {"left": {".": {"left": {"Var": "principal"}, "attr": "age"}}, "right": {"Value": 18}}},
				"right": {"like": {"left": {".": {"left": {"Var": "principal"}, "attr": "name"}}, "pattern": [{"Literal": "a"}, "Wildcard"]}}
			}}},
			{"kind": "unless", "body": {"Value": false}}
		]
	}`
	got, err := internaljson.UnmarshalPolicy([]byte(doc))
	testutil.OK(t, err)

	want, err := parser.ParsePolicy([]byte(`
		@id("grant")
		permit (
			principal in Group::"eng",
			action in [Action::"view", Action::"edit"],
			resource is Doc in Folder::"root"
		)
		when { principal.age >= 18 && principal.name like "a*" }
		unless { false };
	`))
	testutil.OK(t, err)
	testutil.FatalIf(t, !got.Equal(want), "got %+v want %+v", got, want)
}

func TestUnmarshalPolicyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"unknown effect", `{"effect": "allow", "principal": {"op": "All"}, "action": {"op": "All"}, "resource": {"op": "All"}}`},
		{"unknown scope op", `{"effect": "permit", "principal": {"op": "around"}, "action": {"op": "All"}, "resource": {"op": "All"}}`},
		{"eq missing entity", `{"effect": "permit", "principal": {"op": "=="}, "action": {"op": "All"}, "resource": {"op": "All"}}`},
		{"action in missing entities", `{"effect": "permit", "principal": {"op": "All"}, "action": {"op": "in"}, "resource": {"op": "All"}}`},
		{"is in action slot", `{"effect": "permit", "principal": {"op": "All"}, "action": {"op": "is", "entity_type": "Action"}, "resource": {"op": "All"}}`},
		{"unknown condition kind", `{"effect": "permit", "principal": {"op": "All"}, "action": {"op": "All"}, "resource": {"op": "All"}, "conditions": [{"kind": "whilst", "body": {"Value": true}}]}`},
		{"unknown variable", `{"effect": "permit", "principal": {"op": "All"}, "action": {"op": "All"}, "resource": {"op": "All"}, "conditions": [{"kind": "when", "body": {"Var": "subject"}}]}`},
		{"two operator keys", `{"effect": "permit", "principal": {"op": "All"}, "action": {"op": "All"}, "resource": {"op": "All"}, "conditions": [{"kind": "when", "body": {"Value": 1, "Var": "principal"}}]}`},
		{"unknown operator", `{"effect": "permit", "principal": {"op": "All"}, "action": {"op": "All"}, "resource": {"op": "All"}, "conditions": [{"kind": "when", "body": {"frobnicate": {"left": {"Value": 1}}}}]}`},
		{"bad pattern component", `{"effect": "permit", "principal": {"op": "All"}, "action": {"op": "All"}, "resource": {"op": "All"}, "conditions": [{"kind": "when", "body": {"like": {"left": {"Var": "principal"}, "pattern": ["Star"]}}}]}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := internaljson.UnmarshalPolicy([]byte(tt.doc))
			testutil.Error(t, err)
		})
	}
}

package cedar_test

import (
	"encoding/json"
	"testing"

	"github.com/charbonnierg/cedar"
	"github.com/charbonnierg/cedar/internal/testutil"
)

func TestNewPolicySetFromBytes(t *testing.T) {
	t.Parallel()

	t.Run("positional ids", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `
			permit (principal, action, resource);
			forbid (principal, action, resource);
		`)
		testutil.Equals(t, ps.Len(), 2)
		testutil.Equals(t, ps.Get("policy0").Effect(), cedar.Permit)
		testutil.Equals(t, ps.Get("policy1").Effect(), cedar.Forbid)
	})

	t.Run("id annotation wins", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `
			@id("front-door")
			permit (principal, action, resource);
		`)
		testutil.FatalIf(t, ps.Get("front-door") == nil, "policy not registered under @id")
		testutil.FatalIf(t, ps.Get("policy0") != nil, "positional id should not exist")
	})

	t.Run("duplicate ids rejected", func(t *testing.T) {
		t.Parallel()
		_, err := cedar.NewPolicySetFromBytes("dup.cedar", []byte(`
			@id("same")
			permit (principal, action, resource);
			@id("same")
			forbid (principal, action, resource);
		`))
		testutil.ErrorIs(t, err, cedar.ErrDuplicatePolicyID)
	})

	t.Run("syntax error yields no partial set", func(t *testing.T) {
		t.Parallel()
		ps, err := cedar.NewPolicySetFromBytes("bad.cedar", []byte(`
			permit (principal, action, resource);
			permit (principal action resource);
		`))
		testutil.Error(t, err)
		testutil.FatalIf(t, ps != nil, "partial set returned on error")
	})

	t.Run("position records filename", func(t *testing.T) {
		t.Parallel()
		ps, err := cedar.NewPolicySetFromBytes("app.cedar", []byte(`permit (principal, action, resource);`))
		testutil.OK(t, err)
		pos := ps.Get("policy0").Position()
		testutil.Equals(t, pos.Filename, "app.cedar")
		testutil.Equals(t, pos.Line, 1)
		testutil.Equals(t, pos.Column, 1)
	})
}

func TestPolicySetAddRemove(t *testing.T) {
	t.Parallel()
	ps := cedar.NewPolicySet()
	p, err := cedar.NewPolicyFromString(`permit (principal, action, resource);`)
	testutil.OK(t, err)

	testutil.OK(t, ps.Add("one", p))
	testutil.ErrorIs(t, ps.Add("one", p), cedar.ErrDuplicatePolicyID)
	testutil.Equals(t, ps.Len(), 1)

	testutil.Equals(t, ps.Remove("one"), true)
	testutil.Equals(t, ps.Remove("one"), false)
	testutil.Equals(t, ps.Len(), 0)
	// The id is free again after removal.
	testutil.OK(t, ps.Add("one", p))
}

func TestPolicySetOrderPreserved(t *testing.T) {
	t.Parallel()
	ps := mustParsePolicies(t, `
		forbid (principal, action, resource);
		permit (principal == User::"a", action, resource);
		permit (principal == User::"b", action, resource);
	`)
	var ids []cedar.PolicyID
	ps.Iterate(func(id cedar.PolicyID, _ *cedar.Policy) bool {
		ids = append(ids, id)
		return true
	})
	testutil.Equals(t, ids, []cedar.PolicyID{"policy0", "policy1", "policy2"})

	want := "forbid (principal, action, resource);\n\n" +
		"permit (principal == User::\"a\", action, resource);\n\n" +
		"permit (principal == User::\"b\", action, resource);"
	testutil.Equals(t, string(ps.MarshalCedar()), want)
}

func TestPolicySetJSONRoundTrip(t *testing.T) {
	t.Parallel()
	ps := mustParsePolicies(t, `
		permit (principal == User::"alice", action, resource) when { context.mfa };
		forbid (principal, action, resource) when { resource.locked };
	`)
	out, err := json.Marshal(ps)
	testutil.OK(t, err)

	var back cedar.PolicySet
	testutil.OK(t, json.Unmarshal(out, &back))
	testutil.Equals(t, back.Len(), 2)
	testutil.FatalIf(t, !back.Get("policy0").Equal(ps.Get("policy0")), "policy0 changed")
	testutil.FatalIf(t, !back.Get("policy1").Equal(ps.Get("policy1")), "policy1 changed")
}

func TestPolicySetJSONEmpty(t *testing.T) {
	t.Parallel()
	ps := cedar.NewPolicySet()
	out, err := json.Marshal(ps)
	testutil.OK(t, err)
	testutil.Equals(t, string(out), `{"staticPolicies":{}}`)
}

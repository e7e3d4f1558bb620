package cedar_test

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/charbonnierg/cedar"
	"github.com/charbonnierg/cedar/internal/testutil"
	"github.com/charbonnierg/cedar/types"
)

func mustParsePolicies(t testing.TB, doc string) *cedar.PolicySet {
	t.Helper()
	ps, err := cedar.NewPolicySetFromBytes("policy.cedar", []byte(doc))
	testutil.OK(t, err)
	return ps
}

func mustEntities(t testing.TB, entities ...types.Entity) types.EntityMap {
	t.Helper()
	em, err := types.NewEntityMap(entities)
	testutil.OK(t, err)
	return em
}

var viewRequest = cedar.Request{
	Principal: types.NewEntityUID("User", "alice"),
	Action:    types.NewEntityUID("Action", "view"),
	Resource:  types.NewEntityUID("Doc", "1"),
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	t.Run("default deny on empty policy set", func(t *testing.T) {
		t.Parallel()
		resp := cedar.Authorize(cedar.NewPolicySet(), types.EntityMap{}, viewRequest)
		testutil.Equals(t, resp.Decision, cedar.Deny)
		testutil.Equals(t, len(resp.Diagnostics.Reasons), 0)
		testutil.Equals(t, len(resp.Diagnostics.Errors), 0)
	})

	t.Run("unconstrained permit allows", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `permit (principal, action, resource);`)
		resp := cedar.Authorize(ps, types.EntityMap{}, viewRequest)
		testutil.Equals(t, resp.Decision, cedar.Allow)
		testutil.Equals(t, resp.Diagnostics.Reasons, []cedar.PolicyID{"policy0"})
	})

	t.Run("forbid overrides permit", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `
			permit (principal, action, resource);
			forbid (principal, action, resource) when { true };
		`)
		resp := cedar.Authorize(ps, types.EntityMap{}, viewRequest)
		testutil.Equals(t, resp.Decision, cedar.Deny)
		testutil.Equals(t, resp.Diagnostics.Reasons, []cedar.PolicyID{"policy1"})
		testutil.Equals(t, len(resp.Diagnostics.Errors), 0)
	})

	t.Run("all satisfied permits are reasons", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `
			permit (principal, action, resource);
			permit (principal == User::"alice", action, resource);
		`)
		resp := cedar.Authorize(ps, types.EntityMap{}, viewRequest)
		testutil.Equals(t, resp.Decision, cedar.Allow)
		testutil.Equals(t, resp.Diagnostics.Reasons, []cedar.PolicyID{"policy0", "policy1"})
	})

	t.Run("missing attribute denies with diagnostic", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `
			permit (principal, action, resource) when { principal.department == "eng" };
		`)
		entities := mustEntities(t, types.Entity{
			UID:        types.NewEntityUID("User", "alice"),
			Attributes: types.NewRecord(types.RecordMap{"name": types.String("Alice")}),
		})
		resp := cedar.Authorize(ps, entities, viewRequest)
		testutil.Equals(t, resp.Decision, cedar.Deny)
		testutil.Equals(t, len(resp.Diagnostics.Reasons), 0)
		testutil.Equals(t, len(resp.Diagnostics.Errors), 1)
		testutil.FatalIf(t, !strings.Contains(resp.Diagnostics.Errors[0], "attribute not found"),
			"unexpected diagnostic %q", resp.Diagnostics.Errors[0])
	})

	t.Run("hierarchy membership in scope", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `permit (principal in Group::"admins", action, resource);`)
		entities := mustEntities(t, types.Entity{
			UID:     types.NewEntityUID("User", "alice"),
			Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "admins")),
		})
		resp := cedar.Authorize(ps, entities, viewRequest)
		testutil.Equals(t, resp.Decision, cedar.Allow)
		testutil.Equals(t, resp.Diagnostics.Reasons, []cedar.PolicyID{"policy0"})
	})

	t.Run("hierarchy is transitive", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `permit (principal, action, resource) when { principal in Org::"acme" };`)
		entities := mustEntities(t,
			types.Entity{
				UID:     types.NewEntityUID("User", "alice"),
				Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "admins")),
			},
			types.Entity{
				UID:     types.NewEntityUID("Group", "admins"),
				Parents: types.NewEntityUIDSet(types.NewEntityUID("Org", "acme")),
			},
		)
		resp := cedar.Authorize(ps, entities, viewRequest)
		testutil.Equals(t, resp.Decision, cedar.Allow)
	})

	t.Run("scope gating skips conditions", func(t *testing.T) {
		t.Parallel()
		// The condition would error on every request, but the action
		// scope never matches, so no error may surface.
		ps := mustParsePolicies(t, `
			permit (principal, action == Action::"delete", resource)
			when { principal.missing == 1 };
		`)
		resp := cedar.Authorize(ps, types.EntityMap{}, viewRequest)
		testutil.Equals(t, resp.Decision, cedar.Deny)
		testutil.Equals(t, len(resp.Diagnostics.Errors), 0)
	})

	t.Run("unless clause", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `
			permit (principal, action, resource) unless { context.banned == true };
		`)
		allowed := cedar.Authorize(ps, types.EntityMap{}, cedar.Request{
			Principal: viewRequest.Principal,
			Action:    viewRequest.Action,
			Resource:  viewRequest.Resource,
			Context:   types.NewRecord(types.RecordMap{"banned": types.False}),
		})
		testutil.Equals(t, allowed.Decision, cedar.Allow)

		denied := cedar.Authorize(ps, types.EntityMap{}, cedar.Request{
			Principal: viewRequest.Principal,
			Action:    viewRequest.Action,
			Resource:  viewRequest.Resource,
			Context:   types.NewRecord(types.RecordMap{"banned": types.True}),
		})
		testutil.Equals(t, denied.Decision, cedar.Deny)
	})

	t.Run("error in one policy does not abort others", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `
			permit (principal, action, resource) when { principal.missing == 1 };
			permit (principal, action, resource);
		`)
		resp := cedar.Authorize(ps, types.EntityMap{}, viewRequest)
		testutil.Equals(t, resp.Decision, cedar.Allow)
		testutil.Equals(t, resp.Diagnostics.Reasons, []cedar.PolicyID{"policy1"})
		testutil.Equals(t, len(resp.Diagnostics.Errors), 1)
	})

	t.Run("empty principal type denies with diagnostic", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `permit (principal, action, resource);`)
		resp := cedar.Authorize(ps, types.EntityMap{}, cedar.Request{
			Action:   viewRequest.Action,
			Resource: viewRequest.Resource,
		})
		testutil.Equals(t, resp.Decision, cedar.Deny)
		testutil.Equals(t, len(resp.Diagnostics.Errors), 1)
	})

	t.Run("correlation id is echoed", func(t *testing.T) {
		t.Parallel()
		ps := mustParsePolicies(t, `permit (principal, action, resource);`)
		req := viewRequest
		req.CorrelationID = "req-42"
		resp := cedar.Authorize(ps, types.EntityMap{}, req)
		testutil.Equals(t, resp.CorrelationID, "req-42")
	})
}

func TestAuthorizeIsolation(t *testing.T) {
	t.Parallel()
	ps := mustParsePolicies(t, `
		permit (principal in Group::"admins", action, resource);
		forbid (principal, action, resource) when { context.banned == true };
	`)
	entities := mustEntities(t, types.Entity{
		UID:     types.NewEntityUID("User", "alice"),
		Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "admins")),
	})

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		banned := i%2 == 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := cedar.Authorize(ps, entities, cedar.Request{
				Principal: types.NewEntityUID("User", "alice"),
				Action:    types.NewEntityUID("Action", "view"),
				Resource:  types.NewEntityUID("Doc", "1"),
				Context:   types.NewRecord(types.RecordMap{"banned": types.Boolean(banned)}),
			})
			want := cedar.Allow
			if banned {
				want = cedar.Deny
			}
			if resp.Decision != want {
				t.Errorf("decision got %v want %v", resp.Decision, want)
			}
		}()
	}
	wg.Wait()
}

func TestResponseJSON(t *testing.T) {
	t.Parallel()
	ps := mustParsePolicies(t, `permit (principal, action, resource);`)
	req := viewRequest
	req.CorrelationID = "abc"
	resp := cedar.Authorize(ps, types.EntityMap{}, req)

	out, err := json.Marshal(resp)
	testutil.OK(t, err)
	testutil.Equals(t, string(out),
		`{"decision":"Allow","diagnostics":{"reasons":["policy0"],"errors":[]},"correlation_id":"abc"}`)

	var back cedar.Response
	testutil.OK(t, json.Unmarshal(out, &back))
	testutil.Equals(t, back.Decision, cedar.Allow)
	testutil.Equals(t, back.CorrelationID, "abc")
}

func TestDecisionJSON(t *testing.T) {
	t.Parallel()
	var d cedar.Decision
	testutil.OK(t, json.Unmarshal([]byte(`"Allow"`), &d))
	testutil.Equals(t, d, cedar.Allow)
	testutil.OK(t, json.Unmarshal([]byte(`"Deny"`), &d))
	testutil.Equals(t, d, cedar.Deny)
	testutil.Error(t, json.Unmarshal([]byte(`"Maybe"`), &d))
	testutil.Equals(t, cedar.Allow.String(), "Allow")
	testutil.Equals(t, cedar.Deny.String(), "Deny")
}

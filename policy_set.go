package cedar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/charbonnierg/cedar/internal/parser"
)

// A PolicySet is an ordered collection of policies with unique ids.
// Order is preserved for diagnostics and round-tripping only; it never
// affects the decision. A PolicySet is not safe for concurrent mutation,
// but once fully constructed it may be shared by any number of
// concurrent Authorize calls.
type PolicySet struct {
	policies map[PolicyID]*Policy
	order    []PolicyID
}

// NewPolicySet returns an empty PolicySet.
func NewPolicySet() *PolicySet {
	return &PolicySet{policies: make(map[PolicyID]*Policy)}
}

// NewPolicySetFromBytes parses a document containing zero or more
// policies in Cedar source text. Each policy's id is taken from its
// `@id("...")` annotation when present, and is otherwise `policy<n>`
// with n the position in the document, starting at 0. The filename is
// used in policy positions only.
//
// Parsing is all-or-nothing: a syntax error or a duplicate id fails the
// whole call and no partial set is returned.
func NewPolicySetFromBytes(filename string, document []byte) (*PolicySet, error) {
	asts, err := parser.ParsePolicies(document)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	ps := NewPolicySet()
	for i, ast := range asts {
		ast.Position.Filename = filename
		id := PolicyID(fmt.Sprintf("policy%d", i))
		if v, ok := ast.Annotation(idAnnotation); ok {
			id = PolicyID(v)
		}
		if err := ps.Add(id, newPolicy(ast)); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return ps, nil
}

// Add inserts a policy under the given id. A duplicate id is an error.
func (ps *PolicySet) Add(id PolicyID, p *Policy) error {
	if _, ok := ps.policies[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePolicyID, id)
	}
	ps.policies[id] = p
	ps.order = append(ps.order, id)
	return nil
}

// Get returns the policy with the given id, or nil if absent.
func (ps *PolicySet) Get(id PolicyID) *Policy {
	return ps.policies[id]
}

// Remove deletes the policy with the given id and reports whether it was
// present.
func (ps *PolicySet) Remove(id PolicyID) bool {
	if _, ok := ps.policies[id]; !ok {
		return false
	}
	delete(ps.policies, id)
	for i, oid := range ps.order {
		if oid == id {
			ps.order = append(ps.order[:i], ps.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of policies in the set.
func (ps *PolicySet) Len() int {
	return len(ps.policies)
}

// Iterate calls f for each policy in insertion order until f returns
// false.
func (ps *PolicySet) Iterate(f func(PolicyID, *Policy) bool) {
	for _, id := range ps.order {
		if !f(id, ps.policies[id]) {
			return
		}
	}
}

// Map returns a copy of the id-to-policy mapping, safe for the caller to
// mutate.
func (ps *PolicySet) Map() map[PolicyID]*Policy {
	m := make(map[PolicyID]*Policy, len(ps.policies))
	for id, p := range ps.policies {
		m[id] = p
	}
	return m
}

// MarshalCedar renders every policy as Cedar source text in insertion
// order, separated by blank lines.
func (ps *PolicySet) MarshalCedar() []byte {
	var buf bytes.Buffer
	for i, id := range ps.order {
		if i != 0 {
			buf.WriteString("\n\n")
		}
		buf.Write(ps.policies[id].MarshalCedar())
	}
	return buf.Bytes()
}

type policySetJSON struct {
	StaticPolicies map[PolicyID]*Policy `json:"staticPolicies"`
}

// MarshalJSON renders the set as `{"staticPolicies": {id: policy}}` with
// each policy in the JSON policy format.
func (ps *PolicySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(policySetJSON{StaticPolicies: ps.policies})
}

// UnmarshalJSON parses the `{"staticPolicies": ...}` form. Policies are
// ordered by id, since JSON objects carry no order of their own.
func (ps *PolicySet) UnmarshalJSON(b []byte) error {
	var res policySetJSON
	if err := json.Unmarshal(b, &res); err != nil {
		return err
	}
	ids := make([]PolicyID, 0, len(res.StaticPolicies))
	for id := range res.StaticPolicies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	next := NewPolicySet()
	for _, id := range ids {
		if err := next.Add(id, res.StaticPolicies[id]); err != nil {
			return err
		}
	}
	*ps = *next
	return nil
}

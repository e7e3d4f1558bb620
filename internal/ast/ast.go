// Package ast defines the in-memory representation of a parsed policy:
// its effect, annotations, scope constraints and condition expression
// trees. Both the Cedar text parser and the JSON policy codec produce
// this representation, so the two forms are interchangeable.
package ast

import "github.com/charbonnierg/cedar/types"

// A Position describes where a policy or token appears in source text.
type Position struct {
	Filename string // filename, if any
	Offset   int    // byte offset, starting at 0
	Line     int    // line number, starting at 1
	Column   int    // column number, starting at 1 (character count per line)
}

// An Annotation is a single `@key("value")` marker on a policy.
type Annotation struct {
	Key   types.String
	Value types.String
}

// Effect is a policy's contribution to the decision when it matches:
// permit or forbid.
type Effect bool

const (
	EffectPermit Effect = true
	EffectForbid Effect = false
)

// ConditionKind distinguishes `when` from `unless` clauses.
type ConditionKind bool

const (
	ConditionWhen   ConditionKind = true
	ConditionUnless ConditionKind = false
)

// A Condition is one `when`/`unless` clause with its body expression.
type Condition struct {
	Kind ConditionKind
	Body IsNode
}

// A Policy is a single parsed permit or forbid rule.
type Policy struct {
	Effect      Effect
	Annotations []Annotation
	Principal   IsPrincipalScopeNode
	Action      IsActionScopeNode
	Resource    IsResourceScopeNode
	Conditions  []Condition
	Position    Position
}

// NewPolicy returns a policy that applies to every request: its three
// scope slots are unconstrained and it has no conditions.
func NewPolicy(effect Effect) *Policy {
	return &Policy{
		Effect:    effect,
		Principal: ScopeTypeAll{},
		Action:    ScopeTypeAll{},
		Resource:  ScopeTypeAll{},
	}
}

// Annotation returns the value of the named annotation, if present.
func (p *Policy) Annotation(key types.String) (types.String, bool) {
	for _, a := range p.Annotations {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Equal reports structural equality of two policies, ignoring position.
func (p *Policy) Equal(other *Policy) bool {
	if p.Effect != other.Effect ||
		len(p.Annotations) != len(other.Annotations) ||
		len(p.Conditions) != len(other.Conditions) {
		return false
	}
	for i, a := range p.Annotations {
		if other.Annotations[i] != a {
			return false
		}
	}
	if !scopeEqual(p.Principal, other.Principal) ||
		!scopeEqual(p.Action, other.Action) ||
		!scopeEqual(p.Resource, other.Resource) {
		return false
	}
	for i, c := range p.Conditions {
		if c.Kind != other.Conditions[i].Kind || !NodeEqual(c.Body, other.Conditions[i].Body) {
			return false
		}
	}
	return true
}

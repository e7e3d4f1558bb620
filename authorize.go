package cedar

import (
	"encoding/json"
	"fmt"
	"sort"

	internalast "github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/internal/eval"
	"github.com/charbonnierg/cedar/types"
)

// A Decision is the result of an authorization: Allow or Deny.
type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

func (d Decision) String() string {
	if d == Allow {
		return "Allow"
	}
	return "Deny"
}

// MarshalJSON renders the decision as `"Allow"` or `"Deny"`.
func (d Decision) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses `"Allow"` or `"Deny"`.
func (d *Decision) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "Allow":
		*d = Allow
	case "Deny":
		*d = Deny
	default:
		return fmt.Errorf("invalid decision %q", s)
	}
	return nil
}

// A Request asks whether a principal may perform an action on a
// resource, given a context. CorrelationID is an opaque caller-supplied
// tag echoed back on the Response; it is never evaluated.
type Request struct {
	Principal     types.EntityUID `json:"principal"`
	Action        types.EntityUID `json:"action"`
	Resource      types.EntityUID `json:"resource"`
	Context       types.Record    `json:"context"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

func (r Request) validate() error {
	for _, v := range []struct {
		slot string
		uid  types.EntityUID
	}{
		{"principal", r.Principal},
		{"action", r.Action},
		{"resource", r.Resource},
	} {
		if v.uid.Type == "" {
			return fmt.Errorf("%w: %s has an empty entity type", ErrInvalidRequest, v.slot)
		}
	}
	return nil
}

// Diagnostics explain a decision: which policies determined it and
// which evaluation errors occurred along the way.
type Diagnostics struct {
	// Reasons holds the ids of the policies that determined the
	// decision, in id order. It is empty for a default deny.
	Reasons []PolicyID `json:"reasons"`
	// Errors lists evaluation errors in policy order. An error in one
	// policy never prevents evaluation of the others.
	Errors []string `json:"errors"`
}

// A Response carries the decision for one request together with its
// diagnostics.
type Response struct {
	Decision      Decision    `json:"decision"`
	Diagnostics   Diagnostics `json:"diagnostics"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// Authorize decides one request against a policy set and an entity
// store.
//
// Policies whose scope does not match the request are skipped without
// evaluating their condition. A condition evaluation error is recorded
// in the diagnostics and the policy contributes nothing. Any satisfied
// forbid policy denies the request; otherwise any satisfied permit
// policy allows it; otherwise the request is denied with no reasons.
func Authorize(ps *PolicySet, entities types.EntityMap, req Request) Response {
	resp := Response{
		Decision:      Deny,
		Diagnostics:   Diagnostics{Reasons: []PolicyID{}, Errors: []string{}},
		CorrelationID: req.CorrelationID,
	}
	if err := req.validate(); err != nil {
		resp.Diagnostics.Errors = append(resp.Diagnostics.Errors, err.Error())
		return resp
	}

	env := eval.Env{
		Entities:  entities,
		Principal: req.Principal,
		Action:    req.Action,
		Resource:  req.Resource,
		Context:   req.Context,
	}

	var permits, forbids []PolicyID
	ps.Iterate(func(id PolicyID, p *Policy) bool {
		if !eval.PolicyMatches(p.ast, req.Principal, req.Action, req.Resource, entities) {
			return true
		}
		satisfied, err := conditionsSatisfied(p.ast, env)
		if err != nil {
			resp.Diagnostics.Errors = append(resp.Diagnostics.Errors,
				fmt.Sprintf("while evaluating policy `%s`: %s", id, err))
			return true
		}
		if !satisfied {
			return true
		}
		if p.Effect() == Forbid {
			forbids = append(forbids, id)
		} else {
			permits = append(permits, id)
		}
		return true
	})

	switch {
	case len(forbids) > 0:
		resp.Diagnostics.Reasons = forbids
	case len(permits) > 0:
		resp.Decision = Allow
		resp.Diagnostics.Reasons = permits
	}
	sort.Slice(resp.Diagnostics.Reasons, func(a, b int) bool {
		return resp.Diagnostics.Reasons[a] < resp.Diagnostics.Reasons[b]
	})
	return resp
}

// conditionsSatisfied reports whether every `when` body evaluates true
// and every `unless` body evaluates false.
func conditionsSatisfied(p *internalast.Policy, env eval.Env) (bool, error) {
	for _, c := range p.Conditions {
		v, err := eval.Evaluate(c.Body, env)
		if err != nil {
			return false, err
		}
		b, err := eval.ValueToBool(v)
		if err != nil {
			return false, err
		}
		if bool(b) != bool(c.Kind == internalast.ConditionWhen) {
			return false, nil
		}
	}
	return true, nil
}

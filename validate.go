package cedar

import (
	"fmt"

	internalast "github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/schema"
	"github.com/charbonnierg/cedar/types"
)

// ValidatePolicies checks every policy in the set against the schema:
// entity types named in principal and resource scopes must be declared,
// actions named in action scopes must be declared, and for constrained
// scopes at least one action must apply to the constrained principal
// and resource types. Problems are collected, not fail-fast, each
// message naming the offending policy id.
//
// Entity types declared by the schema but never referenced by any
// policy scope are reported as warnings; warnings do not fail
// validation.
func ValidatePolicies(s *schema.Schema, ps *PolicySet) schema.ValidationResult {
	var res schema.ValidationResult
	referenced := make(map[types.EntityType]bool)

	ps.Iterate(func(id PolicyID, p *Policy) bool {
		v := policyValidator{schema: s, referenced: referenced}
		for _, msg := range v.validate(p.ast) {
			res.Errors = append(res.Errors, fmt.Sprintf("policy `%s`: %s", id, msg))
		}
		return true
	})

	for _, et := range s.EntityTypes() {
		if !referenced[et] {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("entity type %q is not referenced by any policy", et))
		}
	}
	return res
}

type policyValidator struct {
	schema     *schema.Schema
	referenced map[types.EntityType]bool
}

func (v *policyValidator) validate(p *internalast.Policy) []string {
	var msgs []string

	principalTypes, errs := v.validateEntityScope("principal", p.Principal)
	msgs = append(msgs, errs...)
	actionUIDs, errs := v.validateActionScope(p.Action)
	msgs = append(msgs, errs...)
	resourceTypes, errs := v.validateEntityScope("resource", p.Resource)
	msgs = append(msgs, errs...)

	if len(msgs) == 0 {
		if msg := v.validateApplication(principalTypes, resourceTypes, actionUIDs); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// validateEntityScope checks a principal or resource scope and returns
// the entity types it constrains to. Nil means unconstrained.
func (v *policyValidator) validateEntityScope(slot string, s internalast.IsScopeNode) ([]types.EntityType, []string) {
	check := func(et types.EntityType) []string {
		v.referenced[et] = true
		if !v.schema.HasEntityType(et) {
			return []string{fmt.Sprintf("%s scope: entity type %q not declared in schema", slot, et)}
		}
		return nil
	}
	switch sc := s.(type) {
	case internalast.ScopeTypeAll:
		return nil, nil
	case internalast.ScopeTypeEq:
		return []types.EntityType{sc.Entity.Type}, check(sc.Entity.Type)
	case internalast.ScopeTypeIn:
		return v.typesIn(sc.Entity.Type), check(sc.Entity.Type)
	case internalast.ScopeTypeIs:
		return []types.EntityType{sc.Type}, check(sc.Type)
	case internalast.ScopeTypeIsIn:
		msgs := check(sc.Type)
		msgs = append(msgs, check(sc.Entity.Type)...)
		return []types.EntityType{sc.Type}, msgs
	}
	return nil, nil
}

// typesIn returns the entity types whose members can be descendants of
// the target type, the target included, per the declared memberOf
// relations.
func (v *policyValidator) typesIn(target types.EntityType) []types.EntityType {
	result := []types.EntityType{target}
	seen := map[types.EntityType]bool{target: true}
	changed := true
	for changed {
		changed = false
		for _, et := range v.schema.EntityTypes() {
			if seen[et] {
				continue
			}
			for _, parent := range v.schema.ParentTypes(et) {
				if seen[parent] {
					seen[et] = true
					result = append(result, et)
					changed = true
					break
				}
			}
		}
	}
	return result
}

// validateActionScope checks an action scope and returns the action
// uids it constrains to. Nil means unconstrained.
func (v *policyValidator) validateActionScope(s internalast.IsActionScopeNode) ([]types.EntityUID, []string) {
	check := func(uid types.EntityUID) []string {
		if !v.schema.HasAction(uid) {
			return []string{fmt.Sprintf("action scope: action %s not declared in schema", uid)}
		}
		return nil
	}
	switch sc := s.(type) {
	case internalast.ScopeTypeAll:
		return nil, nil
	case internalast.ScopeTypeEq:
		return []types.EntityUID{sc.Entity}, check(sc.Entity)
	case internalast.ScopeTypeIn:
		return []types.EntityUID{sc.Entity}, check(sc.Entity)
	case internalast.ScopeTypeInSet:
		var msgs []string
		for _, uid := range sc.Entities {
			msgs = append(msgs, check(uid)...)
		}
		return sc.Entities, msgs
	}
	return nil, nil
}

// validateApplication checks that at least one relevant action applies
// to the policy's principal and resource type constraints.
func (v *policyValidator) validateApplication(principalTypes, resourceTypes []types.EntityType, actionUIDs []types.EntityUID) string {
	if principalTypes == nil && resourceTypes == nil && actionUIDs == nil {
		return ""
	}
	if actionUIDs == nil {
		actionUIDs = v.schema.Actions()
	}
	for _, uid := range actionUIDs {
		principals, resources, ok := v.schema.AppliesTo(uid)
		if !ok {
			continue
		}
		if intersects(principalTypes, principals) && intersects(resourceTypes, resources) {
			return ""
		}
	}
	return "no declared action applies to the principal and resource types in scope"
}

// intersects reports whether the constraint and declaration share a
// type. A nil constraint matches anything; a nil declaration declares
// no constraint on the slot and also matches.
func intersects(constraint, declared []types.EntityType) bool {
	if constraint == nil || declared == nil {
		return true
	}
	for _, c := range constraint {
		for _, d := range declared {
			if c == d {
				return true
			}
		}
	}
	return false
}

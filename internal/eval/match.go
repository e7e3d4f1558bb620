package eval

import (
	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/types"
)

// ScopeMatches reports whether uid satisfies a scope constraint. Scope
// matching never errors: a uid absent from the store matches `in`
// constraints only reflexively.
func ScopeMatches(s ast.IsScopeNode, uid types.EntityUID, entities types.EntityMap) bool {
	switch t := s.(type) {
	case ast.ScopeTypeAll:
		return true
	case ast.ScopeTypeEq:
		return uid == t.Entity
	case ast.ScopeTypeIn:
		return EntityAncestorMatches(uid, func(u types.EntityUID) bool { return u == t.Entity }, entities)
	case ast.ScopeTypeInSet:
		members := make(map[types.EntityUID]struct{}, len(t.Entities))
		for _, e := range t.Entities {
			members[e] = struct{}{}
		}
		return EntityAncestorMatches(uid, func(u types.EntityUID) bool {
			_, ok := members[u]
			return ok
		}, entities)
	case ast.ScopeTypeIs:
		return uid.Type == t.Type
	case ast.ScopeTypeIsIn:
		return uid.Type == t.Type &&
			EntityAncestorMatches(uid, func(u types.EntityUID) bool { return u == t.Entity }, entities)
	}
	return false
}

// PolicyMatches reports whether all three scope slots of a policy match
// the request uids.
func PolicyMatches(p *ast.Policy, principal, action, resource types.EntityUID, entities types.EntityMap) bool {
	return ScopeMatches(p.Principal, principal, entities) &&
		ScopeMatches(p.Action, action, entities) &&
		ScopeMatches(p.Resource, resource, entities)
}

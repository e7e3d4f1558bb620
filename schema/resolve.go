package schema

import (
	"sort"
	"strings"

	"github.com/charbonnierg/cedar/types"
)

// resolvedEntity is an entity type declaration with every referenced
// type name fully qualified.
type resolvedEntity struct {
	shape       *RecordType
	parentTypes []types.EntityType
}

// resolvedAction is an action declaration with qualified applies-to
// types and parent action uids.
type resolvedAction struct {
	principals []types.EntityType
	resources  []types.EntityType
	context    *RecordType
	parents    []types.EntityUID
}

type resolved struct {
	entities map[types.EntityType]resolvedEntity
	actions  map[types.EntityUID]resolvedAction
	// namespaces maps qualified entity type names back to the
	// namespace that declared them, for resolving shape references.
	namespaces map[types.EntityType]string
}

// actionType returns the entity type of action uids declared in ns.
func actionType(ns string) types.EntityType {
	if ns == "" {
		return "Action"
	}
	return types.EntityType(ns + "::Action")
}

// qualify resolves a type name referenced inside namespace ns: an
// unqualified name declared in ns gets the namespace prefix, anything
// else is taken as already qualified.
func (s *Schema) qualify(ns, name string) types.EntityType {
	if ns != "" && !strings.Contains(name, "::") {
		if decl, ok := s.namespaces[ns]; ok {
			if _, ok := decl.entities[name]; ok {
				return types.EntityType(ns + "::" + name)
			}
		}
	}
	return types.EntityType(name)
}

// resolve flattens the namespaced declarations into maps keyed by fully
// qualified type names and action uids. Dangling references are kept
// as-is; validation reports them.
func (s *Schema) resolve() resolved {
	r := resolved{
		entities:   make(map[types.EntityType]resolvedEntity),
		actions:    make(map[types.EntityUID]resolvedAction),
		namespaces: make(map[types.EntityType]string),
	}
	for nsName, ns := range s.namespaces {
		for entityName, entity := range ns.entities {
			qualified := s.qualify(nsName, entityName)
			re := resolvedEntity{shape: entity.shape}
			for _, parent := range entity.memberOf {
				re.parentTypes = append(re.parentTypes, s.qualify(nsName, parent))
			}
			r.entities[qualified] = re
			r.namespaces[qualified] = nsName
		}
		for actionName, action := range ns.actions {
			uid := types.NewEntityUID(actionType(nsName), types.String(actionName))
			ra := resolvedAction{}
			for _, group := range action.memberOf {
				ra.parents = append(ra.parents, types.NewEntityUID(actionType(nsName), types.String(group)))
			}
			if action.appliesTo != nil {
				for _, p := range action.appliesTo.principals {
					ra.principals = append(ra.principals, s.qualify(nsName, p))
				}
				for _, res := range action.appliesTo.resources {
					ra.resources = append(ra.resources, s.qualify(nsName, res))
				}
				ra.context = action.appliesTo.context
			}
			r.actions[uid] = ra
		}
	}
	return r
}

// EntityTypes returns every declared entity type, fully qualified and
// sorted.
func (s *Schema) EntityTypes() []types.EntityType {
	r := s.resolve()
	out := make([]types.EntityType, 0, len(r.entities))
	for et := range r.entities {
		out = append(out, et)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// HasEntityType reports whether the fully qualified entity type is
// declared.
func (s *Schema) HasEntityType(et types.EntityType) bool {
	_, ok := s.resolve().entities[et]
	return ok
}

// Actions returns every declared action uid, sorted.
func (s *Schema) Actions() []types.EntityUID {
	r := s.resolve()
	out := make([]types.EntityUID, 0, len(r.actions))
	for uid := range r.actions {
		out = append(out, uid)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Type != out[b].Type {
			return out[a].Type < out[b].Type
		}
		return out[a].ID < out[b].ID
	})
	return out
}

// HasAction reports whether the action uid is declared.
func (s *Schema) HasAction(uid types.EntityUID) bool {
	_, ok := s.resolve().actions[uid]
	return ok
}

// AppliesTo returns the principal and resource types an action applies
// to. Nil slices mean the action declares no constraint for that slot.
// ok is false when the action is not declared.
func (s *Schema) AppliesTo(uid types.EntityUID) (principals, resources []types.EntityType, ok bool) {
	ra, ok := s.resolve().actions[uid]
	if !ok {
		return nil, nil, false
	}
	return ra.principals, ra.resources, true
}

// ParentTypes returns the declared parent entity types of et.
func (s *Schema) ParentTypes(et types.EntityType) []types.EntityType {
	return s.resolve().entities[et].parentTypes
}

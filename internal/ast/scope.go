package ast

import "github.com/charbonnierg/cedar/types"

// IsScopeNode is implemented by every scope constraint variant.
type IsScopeNode interface {
	isScope()
}

// IsPrincipalScopeNode is the subset of scope variants valid in the
// principal slot: all, ==, in, is, is-in.
type IsPrincipalScopeNode interface {
	IsScopeNode
	isPrincipalScope()
}

// IsActionScopeNode is the subset of scope variants valid in the action
// slot: all, ==, in, in-set.
type IsActionScopeNode interface {
	IsScopeNode
	isActionScope()
}

// IsResourceScopeNode is the subset of scope variants valid in the
// resource slot: all, ==, in, is, is-in.
type IsResourceScopeNode interface {
	IsScopeNode
	isResourceScope()
}

// ScopeTypeAll leaves the slot unconstrained.
type ScopeTypeAll struct{}

// ScopeTypeEq constrains the slot to exactly one entity.
type ScopeTypeEq struct {
	Entity types.EntityUID
}

// ScopeTypeIn constrains the slot to descendants of one entity.
type ScopeTypeIn struct {
	Entity types.EntityUID
}

// ScopeTypeInSet constrains the action slot to a set of actions.
type ScopeTypeInSet struct {
	Entities []types.EntityUID
}

// ScopeTypeIs constrains the slot to entities of one type.
type ScopeTypeIs struct {
	Type types.EntityType
}

// ScopeTypeIsIn combines a type constraint with a hierarchy constraint.
type ScopeTypeIsIn struct {
	Type   types.EntityType
	Entity types.EntityUID
}

func (ScopeTypeAll) isScope()   {}
func (ScopeTypeEq) isScope()    {}
func (ScopeTypeIn) isScope()    {}
func (ScopeTypeInSet) isScope() {}
func (ScopeTypeIs) isScope()    {}
func (ScopeTypeIsIn) isScope()  {}

func (ScopeTypeAll) isPrincipalScope()  {}
func (ScopeTypeEq) isPrincipalScope()   {}
func (ScopeTypeIn) isPrincipalScope()   {}
func (ScopeTypeIs) isPrincipalScope()   {}
func (ScopeTypeIsIn) isPrincipalScope() {}

func (ScopeTypeAll) isActionScope()   {}
func (ScopeTypeEq) isActionScope()    {}
func (ScopeTypeIn) isActionScope()    {}
func (ScopeTypeInSet) isActionScope() {}

func (ScopeTypeAll) isResourceScope()  {}
func (ScopeTypeEq) isResourceScope()   {}
func (ScopeTypeIn) isResourceScope()   {}
func (ScopeTypeIs) isResourceScope()   {}
func (ScopeTypeIsIn) isResourceScope() {}

func scopeEqual(a, b IsScopeNode) bool {
	switch at := a.(type) {
	case ScopeTypeAll:
		_, ok := b.(ScopeTypeAll)
		return ok
	case ScopeTypeEq:
		bt, ok := b.(ScopeTypeEq)
		return ok && at.Entity == bt.Entity
	case ScopeTypeIn:
		bt, ok := b.(ScopeTypeIn)
		return ok && at.Entity == bt.Entity
	case ScopeTypeInSet:
		bt, ok := b.(ScopeTypeInSet)
		if !ok || len(at.Entities) != len(bt.Entities) {
			return false
		}
		for i, e := range at.Entities {
			if bt.Entities[i] != e {
				return false
			}
		}
		return true
	case ScopeTypeIs:
		bt, ok := b.(ScopeTypeIs)
		return ok && at.Type == bt.Type
	case ScopeTypeIsIn:
		bt, ok := b.(ScopeTypeIsIn)
		return ok && at.Type == bt.Type && at.Entity == bt.Entity
	}
	return false
}

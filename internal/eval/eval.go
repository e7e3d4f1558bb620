// Package eval evaluates policy condition expressions against a request
// environment. Evaluation is pure: the same expression and environment
// always produce the same result, and neither the environment nor the
// entities are mutated.
package eval

import (
	"fmt"
	"math"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/internal/consts"
	"github.com/charbonnierg/cedar/types"
)

// maxRecursionDepth bounds expression nesting. Exceeding it is an
// evaluation error, not a stack overflow.
const maxRecursionDepth = 512

// Env binds the four request variables and the entity store an
// expression is evaluated against.
type Env struct {
	Entities  types.EntityMap
	Principal types.EntityUID
	Action    types.EntityUID
	Resource  types.EntityUID
	Context   types.Record
}

// Evaluate reduces an expression to a value under env.
func Evaluate(n ast.IsNode, env Env) (types.Value, error) {
	e := evaluator{env: env}
	return e.eval(n)
}

type evaluator struct {
	env   Env
	depth int
}

func (e *evaluator) eval(n ast.IsNode) (types.Value, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxRecursionDepth {
		return nil, ErrRecursionLimitExceeded
	}

	switch t := n.(type) {
	case ast.NodeValue:
		return t.Value, nil
	case ast.NodeTypeVariable:
		return e.evalVariable(t)
	case ast.NodeTypeNot:
		v, err := e.evalBool(t.Arg)
		if err != nil {
			return nil, err
		}
		return !v, nil
	case ast.NodeTypeNegate:
		v, err := e.evalLong(t.Arg)
		if err != nil {
			return nil, err
		}
		if v == math.MinInt64 {
			return nil, fmt.Errorf("%w: -(%d)", ErrIntegerOverflow, int64(v))
		}
		return -v, nil
	case ast.NodeTypeAnd:
		v, err := e.evalBool(t.Left)
		if err != nil {
			return nil, err
		}
		if !v {
			return types.False, nil
		}
		return e.evalBool(t.Right)
	case ast.NodeTypeOr:
		v, err := e.evalBool(t.Left)
		if err != nil {
			return nil, err
		}
		if v {
			return types.True, nil
		}
		return e.evalBool(t.Right)
	case ast.NodeTypeIfThenElse:
		cond, err := e.evalBool(t.If)
		if err != nil {
			return nil, err
		}
		if cond {
			return e.eval(t.Then)
		}
		return e.eval(t.Else)
	case ast.NodeTypeEquals:
		lhs, rhs, err := e.evalPair(t.BinaryNode)
		if err != nil {
			return nil, err
		}
		return types.Boolean(lhs.Equal(rhs)), nil
	case ast.NodeTypeNotEquals:
		lhs, rhs, err := e.evalPair(t.BinaryNode)
		if err != nil {
			return nil, err
		}
		return types.Boolean(!lhs.Equal(rhs)), nil
	case ast.NodeTypeLessThan:
		return e.evalCompare(t.BinaryNode, func(a, b types.Long) bool { return a < b })
	case ast.NodeTypeLessThanOrEqual:
		return e.evalCompare(t.BinaryNode, func(a, b types.Long) bool { return a <= b })
	case ast.NodeTypeGreaterThan:
		return e.evalCompare(t.BinaryNode, func(a, b types.Long) bool { return a > b })
	case ast.NodeTypeGreaterThanOrEqual:
		return e.evalCompare(t.BinaryNode, func(a, b types.Long) bool { return a >= b })
	case ast.NodeTypeAdd:
		return e.evalArith(t.BinaryNode, "+", checkedAdd)
	case ast.NodeTypeSub:
		return e.evalArith(t.BinaryNode, "-", checkedSub)
	case ast.NodeTypeMult:
		return e.evalArith(t.BinaryNode, "*", checkedMult)
	case ast.NodeTypeIn:
		return e.evalIn(t.BinaryNode)
	case ast.NodeTypeContains:
		lhs, err := e.evalSet(t.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := e.eval(t.Right)
		if err != nil {
			return nil, err
		}
		return types.Boolean(lhs.Contains(rhs)), nil
	case ast.NodeTypeContainsAll:
		return e.evalSetPair(t.BinaryNode, func(lhs, rhs types.Set) bool {
			all := true
			rhs.Iterate(func(v types.Value) bool {
				all = lhs.Contains(v)
				return all
			})
			return all
		})
	case ast.NodeTypeContainsAny:
		return e.evalSetPair(t.BinaryNode, func(lhs, rhs types.Set) bool {
			any := false
			rhs.Iterate(func(v types.Value) bool {
				any = lhs.Contains(v)
				return !any
			})
			return any
		})
	case ast.NodeTypeAccess:
		return e.evalAccess(t)
	case ast.NodeTypeHas:
		return e.evalHas(t)
	case ast.NodeTypeLike:
		s, err := e.evalString(t.Arg)
		if err != nil {
			return nil, err
		}
		return types.Boolean(t.Pattern.Match(string(s))), nil
	case ast.NodeTypeIs:
		return e.evalIs(t)
	case ast.NodeTypeSet:
		vals := make([]types.Value, len(t.Elements))
		for i, elem := range t.Elements {
			v, err := e.eval(elem)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return types.NewSet(vals), nil
	case ast.NodeTypeRecord:
		m := make(types.RecordMap, len(t.Elements))
		for _, elem := range t.Elements {
			v, err := e.eval(elem.Value)
			if err != nil {
				return nil, err
			}
			m[elem.Key] = v
		}
		return types.NewRecord(m), nil
	case ast.NodeTypeExtensionCall:
		return e.evalExtensionCall(t)
	default:
		return nil, fmt.Errorf("unknown expression node %T", n)
	}
}

func (e *evaluator) evalVariable(t ast.NodeTypeVariable) (types.Value, error) {
	switch string(t.Name) {
	case consts.Principal:
		return e.env.Principal, nil
	case consts.Action:
		return e.env.Action, nil
	case consts.Resource:
		return e.env.Resource, nil
	case consts.Context:
		return e.env.Context, nil
	default:
		return nil, fmt.Errorf("unknown variable %q", t.Name)
	}
}

func (e *evaluator) evalPair(b ast.BinaryNode) (types.Value, types.Value, error) {
	lhs, err := e.eval(b.Left)
	if err != nil {
		return nil, nil, err
	}
	rhs, err := e.eval(b.Right)
	if err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}

func (e *evaluator) evalCompare(b ast.BinaryNode, cmp func(a, b types.Long) bool) (types.Value, error) {
	lhs, err := e.evalLong(b.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := e.evalLong(b.Right)
	if err != nil {
		return nil, err
	}
	return types.Boolean(cmp(lhs, rhs)), nil
}

func (e *evaluator) evalArith(b ast.BinaryNode, op string, f func(a, b types.Long) (types.Long, bool)) (types.Value, error) {
	lhs, err := e.evalLong(b.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := e.evalLong(b.Right)
	if err != nil {
		return nil, err
	}
	res, ok := f(lhs, rhs)
	if !ok {
		return nil, fmt.Errorf("%w: %d %s %d", ErrIntegerOverflow, int64(lhs), op, int64(rhs))
	}
	return res, nil
}

func (e *evaluator) evalSetPair(b ast.BinaryNode, f func(lhs, rhs types.Set) bool) (types.Value, error) {
	lhs, err := e.evalSet(b.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := e.evalSet(b.Right)
	if err != nil {
		return nil, err
	}
	return types.Boolean(f(lhs, rhs)), nil
}

// evalIn implements `A in B`. B is an entity or a set of entities. The
// test is reflexive without consulting the store; a real ancestor walk
// requires A's record to be present.
func (e *evaluator) evalIn(b ast.BinaryNode) (types.Value, error) {
	lhs, err := e.evalEntity(b.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := e.eval(b.Right)
	if err != nil {
		return nil, err
	}
	query, err := entityQuery(rhs)
	if err != nil {
		return nil, err
	}
	return e.entityIn(lhs, query)
}

// entityQuery normalizes the right-hand side of `in` to a membership
// predicate over entity uids.
func entityQuery(v types.Value) (func(types.EntityUID) bool, error) {
	switch t := v.(type) {
	case types.EntityUID:
		return func(uid types.EntityUID) bool { return uid == t }, nil
	case types.Set:
		uids := make(map[types.EntityUID]struct{}, t.Len())
		var bad types.Value
		t.Iterate(func(elem types.Value) bool {
			uid, ok := elem.(types.EntityUID)
			if !ok {
				bad = elem
				return false
			}
			uids[uid] = struct{}{}
			return true
		})
		if bad != nil {
			return nil, fmt.Errorf("%w: expected entity in set, got %s", ErrTypeMismatch, TypeName(bad))
		}
		return func(uid types.EntityUID) bool {
			_, ok := uids[uid]
			return ok
		}, nil
	default:
		return nil, fmt.Errorf("%w: expected entity or set of entities, got %s", ErrTypeMismatch, TypeName(v))
	}
}

func (e *evaluator) entityIn(uid types.EntityUID, query func(types.EntityUID) bool) (types.Value, error) {
	if query(uid) {
		return types.True, nil
	}
	if _, ok := e.env.Entities.Get(uid); !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, uid)
	}
	return types.Boolean(EntityAncestorMatches(uid, query, e.env.Entities)), nil
}

// EntityAncestorMatches walks the parent graph breadth-first from uid and
// reports whether any uid on the walk (uid included) satisfies query.
// Ancestors absent from the store simply end their branch of the walk.
func EntityAncestorMatches(uid types.EntityUID, query func(types.EntityUID) bool, entities types.EntityMap) bool {
	if query(uid) {
		return true
	}
	seen := map[types.EntityUID]struct{}{uid: {}}
	frontier := []types.EntityUID{uid}
	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]
		entity, ok := entities.Get(next)
		if !ok {
			continue
		}
		stop := false
		entity.Parents.Iterate(func(parent types.EntityUID) bool {
			if _, dup := seen[parent]; dup {
				return true
			}
			seen[parent] = struct{}{}
			if query(parent) {
				stop = true
				return false
			}
			frontier = append(frontier, parent)
			return true
		})
		if stop {
			return true
		}
	}
	return false
}

func (e *evaluator) evalAccess(t ast.NodeTypeAccess) (types.Value, error) {
	v, err := e.eval(t.Arg)
	if err != nil {
		return nil, err
	}
	switch base := v.(type) {
	case types.EntityUID:
		entity, ok := e.env.Entities.Get(base)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, base)
		}
		attr, ok := entity.Attributes.Get(t.Attr)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrAttributeNotFound, base, t.Attr)
		}
		return attr, nil
	case types.Record:
		attr, ok := base.Get(t.Attr)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrAttributeNotFound, t.Attr)
		}
		return attr, nil
	default:
		return nil, fmt.Errorf("%w: expected entity or record, got %s", ErrTypeMismatch, TypeName(v))
	}
}

func (e *evaluator) evalHas(t ast.NodeTypeHas) (types.Value, error) {
	v, err := e.eval(t.Arg)
	if err != nil {
		return nil, err
	}
	switch base := v.(type) {
	case types.EntityUID:
		entity, ok := e.env.Entities.Get(base)
		if !ok {
			// An unknown entity has no attributes.
			return types.False, nil
		}
		_, ok = entity.Attributes.Get(t.Attr)
		return types.Boolean(ok), nil
	case types.Record:
		_, ok := base.Get(t.Attr)
		return types.Boolean(ok), nil
	default:
		return nil, fmt.Errorf("%w: expected entity or record, got %s", ErrTypeMismatch, TypeName(v))
	}
}

func (e *evaluator) evalIs(t ast.NodeTypeIs) (types.Value, error) {
	uid, err := e.evalEntity(t.Arg)
	if err != nil {
		return nil, err
	}
	if uid.Type != t.EntityType {
		return types.False, nil
	}
	if t.In == nil {
		return types.True, nil
	}
	rhs, err := e.eval(t.In)
	if err != nil {
		return nil, err
	}
	query, err := entityQuery(rhs)
	if err != nil {
		return nil, err
	}
	return e.entityIn(uid, query)
}

// Typed eval helpers.

func (e *evaluator) evalBool(n ast.IsNode) (types.Boolean, error) {
	v, err := e.eval(n)
	if err != nil {
		return false, err
	}
	return ValueToBool(v)
}

func (e *evaluator) evalLong(n ast.IsNode) (types.Long, error) {
	v, err := e.eval(n)
	if err != nil {
		return 0, err
	}
	return ValueToLong(v)
}

func (e *evaluator) evalString(n ast.IsNode) (types.String, error) {
	v, err := e.eval(n)
	if err != nil {
		return "", err
	}
	return ValueToString(v)
}

func (e *evaluator) evalSet(n ast.IsNode) (types.Set, error) {
	v, err := e.eval(n)
	if err != nil {
		return types.Set{}, err
	}
	return ValueToSet(v)
}

func (e *evaluator) evalEntity(n ast.IsNode) (types.EntityUID, error) {
	v, err := e.eval(n)
	if err != nil {
		return types.EntityUID{}, err
	}
	return ValueToEntity(v)
}

// Value coercions, exported for the authorizer's scope checks and tests.

func ValueToBool(v types.Value) (types.Boolean, error) {
	b, ok := v.(types.Boolean)
	if !ok {
		return false, fmt.Errorf("%w: expected bool, got %s", ErrTypeMismatch, TypeName(v))
	}
	return b, nil
}

func ValueToLong(v types.Value) (types.Long, error) {
	l, ok := v.(types.Long)
	if !ok {
		return 0, fmt.Errorf("%w: expected long, got %s", ErrTypeMismatch, TypeName(v))
	}
	return l, nil
}

func ValueToString(v types.Value) (types.String, error) {
	s, ok := v.(types.String)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %s", ErrTypeMismatch, TypeName(v))
	}
	return s, nil
}

func ValueToSet(v types.Value) (types.Set, error) {
	s, ok := v.(types.Set)
	if !ok {
		return types.Set{}, fmt.Errorf("%w: expected set, got %s", ErrTypeMismatch, TypeName(v))
	}
	return s, nil
}

func ValueToEntity(v types.Value) (types.EntityUID, error) {
	uid, ok := v.(types.EntityUID)
	if !ok {
		return types.EntityUID{}, fmt.Errorf("%w: expected entity, got %s", ErrTypeMismatch, TypeName(v))
	}
	return uid, nil
}

func ValueToDecimal(v types.Value) (types.Decimal, error) {
	d, ok := v.(types.Decimal)
	if !ok {
		return 0, fmt.Errorf("%w: expected decimal, got %s", ErrTypeMismatch, TypeName(v))
	}
	return d, nil
}

func ValueToIP(v types.Value) (types.IPAddr, error) {
	ip, ok := v.(types.IPAddr)
	if !ok {
		return types.IPAddr{}, fmt.Errorf("%w: expected ipaddr, got %s", ErrTypeMismatch, TypeName(v))
	}
	return ip, nil
}

// TypeName names a value's Cedar type for error messages.
func TypeName(v types.Value) string {
	switch v.(type) {
	case types.Boolean:
		return "bool"
	case types.Long:
		return "long"
	case types.String:
		return "string"
	case types.Set:
		return "set"
	case types.Record:
		return "record"
	case types.EntityUID:
		return "entity"
	case types.Decimal:
		return "decimal"
	case types.IPAddr:
		return "ipaddr"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Checked int64 arithmetic. The bool result is false on overflow.

func checkedAdd(a, b types.Long) (types.Long, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func checkedSub(a, b types.Long) (types.Long, bool) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return a - b, true
}

func checkedMult(a, b types.Long) (types.Long, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	res := a * b
	if res/b != a {
		return 0, false
	}
	return res, true
}

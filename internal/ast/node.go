package ast

import "github.com/charbonnierg/cedar/types"

// IsNode is implemented by every expression node variant. The variant set
// is closed: the evaluator, both renderers and the JSON codec switch over
// it exhaustively.
type IsNode interface {
	isNode()
}

// NodeValue is a literal value.
type NodeValue struct {
	Value types.Value
}

// NodeTypeVariable is one of the four request variables: principal,
// action, resource or context.
type NodeTypeVariable struct {
	Name types.String
}

// BinaryNode holds the operands shared by all binary operators.
type BinaryNode struct {
	Left, Right IsNode
}

type NodeTypeAnd struct{ BinaryNode }
type NodeTypeOr struct{ BinaryNode }
type NodeTypeEquals struct{ BinaryNode }
type NodeTypeNotEquals struct{ BinaryNode }
type NodeTypeLessThan struct{ BinaryNode }
type NodeTypeLessThanOrEqual struct{ BinaryNode }
type NodeTypeGreaterThan struct{ BinaryNode }
type NodeTypeGreaterThanOrEqual struct{ BinaryNode }
type NodeTypeAdd struct{ BinaryNode }
type NodeTypeSub struct{ BinaryNode }
type NodeTypeMult struct{ BinaryNode }

// NodeTypeIn is the hierarchy membership test `left in right`.
type NodeTypeIn struct{ BinaryNode }

type NodeTypeContains struct{ BinaryNode }
type NodeTypeContainsAll struct{ BinaryNode }
type NodeTypeContainsAny struct{ BinaryNode }

// UnaryNode holds the operand shared by unary operators.
type UnaryNode struct {
	Arg IsNode
}

type NodeTypeNot struct{ UnaryNode }
type NodeTypeNegate struct{ UnaryNode }

// NodeTypeAccess is attribute access, `arg.attr` or `arg["attr"]`.
type NodeTypeAccess struct {
	UnaryNode
	Attr types.String
}

// NodeTypeHas is the attribute existence test `arg has attr`.
type NodeTypeHas struct {
	UnaryNode
	Attr types.String
}

// NodeTypeLike is the wildcard match `arg like "pat*"`.
type NodeTypeLike struct {
	UnaryNode
	Pattern types.Pattern
}

// NodeTypeIs is the type test `arg is Type`, optionally combined with a
// hierarchy test `arg is Type in entity`.
type NodeTypeIs struct {
	UnaryNode
	EntityType types.EntityType
	// In is nil unless the `is ... in` form was used.
	In IsNode
}

// NodeTypeIfThenElse evaluates Then or Else depending on If; the untaken
// branch is never evaluated.
type NodeTypeIfThenElse struct {
	If, Then, Else IsNode
}

// NodeTypeSet is a set literal.
type NodeTypeSet struct {
	Elements []IsNode
}

// RecordElementNode is one key/value pair of a record literal.
type RecordElementNode struct {
	Key   types.String
	Value IsNode
}

// NodeTypeRecord is a record literal.
type NodeTypeRecord struct {
	Elements []RecordElementNode
}

// NodeTypeExtensionCall is a call to a named extension function, either
// in constructor form `ip("1.2.3.4")` or method form
// `a.isInRange(b)` (the receiver is the first argument).
type NodeTypeExtensionCall struct {
	Name types.String
	Args []IsNode
}

func (NodeValue) isNode()                  {}
func (NodeTypeVariable) isNode()           {}
func (NodeTypeAnd) isNode()                {}
func (NodeTypeOr) isNode()                 {}
func (NodeTypeEquals) isNode()             {}
func (NodeTypeNotEquals) isNode()          {}
func (NodeTypeLessThan) isNode()           {}
func (NodeTypeLessThanOrEqual) isNode()    {}
func (NodeTypeGreaterThan) isNode()        {}
func (NodeTypeGreaterThanOrEqual) isNode() {}
func (NodeTypeAdd) isNode()                {}
func (NodeTypeSub) isNode()                {}
func (NodeTypeMult) isNode()               {}
func (NodeTypeIn) isNode()                 {}
func (NodeTypeContains) isNode()           {}
func (NodeTypeContainsAll) isNode()        {}
func (NodeTypeContainsAny) isNode()        {}
func (NodeTypeNot) isNode()                {}
func (NodeTypeNegate) isNode()             {}
func (NodeTypeAccess) isNode()             {}
func (NodeTypeHas) isNode()                {}
func (NodeTypeLike) isNode()               {}
func (NodeTypeIs) isNode()                 {}
func (NodeTypeIfThenElse) isNode()         {}
func (NodeTypeSet) isNode()                {}
func (NodeTypeRecord) isNode()             {}
func (NodeTypeExtensionCall) isNode()      {}

// NodeEqual reports structural equality of two expression trees.
func NodeEqual(a, b IsNode) bool {
	switch at := a.(type) {
	case NodeValue:
		bt, ok := b.(NodeValue)
		return ok && at.Value.Equal(bt.Value)
	case NodeTypeVariable:
		bt, ok := b.(NodeTypeVariable)
		return ok && at.Name == bt.Name
	case NodeTypeAnd:
		bt, ok := b.(NodeTypeAnd)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeOr:
		bt, ok := b.(NodeTypeOr)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeEquals:
		bt, ok := b.(NodeTypeEquals)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeNotEquals:
		bt, ok := b.(NodeTypeNotEquals)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeLessThan:
		bt, ok := b.(NodeTypeLessThan)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeLessThanOrEqual:
		bt, ok := b.(NodeTypeLessThanOrEqual)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeGreaterThan:
		bt, ok := b.(NodeTypeGreaterThan)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeGreaterThanOrEqual:
		bt, ok := b.(NodeTypeGreaterThanOrEqual)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeAdd:
		bt, ok := b.(NodeTypeAdd)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeSub:
		bt, ok := b.(NodeTypeSub)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeMult:
		bt, ok := b.(NodeTypeMult)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeIn:
		bt, ok := b.(NodeTypeIn)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeContains:
		bt, ok := b.(NodeTypeContains)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeContainsAll:
		bt, ok := b.(NodeTypeContainsAll)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeContainsAny:
		bt, ok := b.(NodeTypeContainsAny)
		return ok && binaryEqual(at.BinaryNode, bt.BinaryNode)
	case NodeTypeNot:
		bt, ok := b.(NodeTypeNot)
		return ok && NodeEqual(at.Arg, bt.Arg)
	case NodeTypeNegate:
		bt, ok := b.(NodeTypeNegate)
		return ok && NodeEqual(at.Arg, bt.Arg)
	case NodeTypeAccess:
		bt, ok := b.(NodeTypeAccess)
		return ok && at.Attr == bt.Attr && NodeEqual(at.Arg, bt.Arg)
	case NodeTypeHas:
		bt, ok := b.(NodeTypeHas)
		return ok && at.Attr == bt.Attr && NodeEqual(at.Arg, bt.Arg)
	case NodeTypeLike:
		bt, ok := b.(NodeTypeLike)
		return ok && string(at.Pattern.MarshalCedar()) == string(bt.Pattern.MarshalCedar()) &&
			NodeEqual(at.Arg, bt.Arg)
	case NodeTypeIs:
		bt, ok := b.(NodeTypeIs)
		if !ok || at.EntityType != bt.EntityType || !NodeEqual(at.Arg, bt.Arg) {
			return false
		}
		if (at.In == nil) != (bt.In == nil) {
			return false
		}
		return at.In == nil || NodeEqual(at.In, bt.In)
	case NodeTypeIfThenElse:
		bt, ok := b.(NodeTypeIfThenElse)
		return ok && NodeEqual(at.If, bt.If) && NodeEqual(at.Then, bt.Then) && NodeEqual(at.Else, bt.Else)
	case NodeTypeSet:
		bt, ok := b.(NodeTypeSet)
		if !ok || len(at.Elements) != len(bt.Elements) {
			return false
		}
		for i, e := range at.Elements {
			if !NodeEqual(e, bt.Elements[i]) {
				return false
			}
		}
		return true
	case NodeTypeRecord:
		bt, ok := b.(NodeTypeRecord)
		if !ok || len(at.Elements) != len(bt.Elements) {
			return false
		}
		for i, e := range at.Elements {
			if e.Key != bt.Elements[i].Key || !NodeEqual(e.Value, bt.Elements[i].Value) {
				return false
			}
		}
		return true
	case NodeTypeExtensionCall:
		bt, ok := b.(NodeTypeExtensionCall)
		if !ok || at.Name != bt.Name || len(at.Args) != len(bt.Args) {
			return false
		}
		for i, e := range at.Args {
			if !NodeEqual(e, bt.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func binaryEqual(a, b BinaryNode) bool {
	return NodeEqual(a.Left, b.Left) && NodeEqual(a.Right, b.Right)
}

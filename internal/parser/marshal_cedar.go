package parser

import (
	"bytes"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/internal/consts"
	"github.com/charbonnierg/cedar/types"
)

// MarshalPolicy renders a policy in its canonical text form: annotations
// and conditions each on their own line, the scope on one line.
// Re-parsing the output yields a structurally identical policy.
func MarshalPolicy(p *ast.Policy) []byte {
	var buf bytes.Buffer
	for _, a := range p.Annotations {
		buf.WriteByte('@')
		buf.WriteString(string(a.Key))
		buf.WriteByte('(')
		buf.WriteString(types.QuoteString(string(a.Value)))
		buf.WriteString(")\n")
	}
	if p.Effect == ast.EffectPermit {
		buf.WriteString("permit (")
	} else {
		buf.WriteString("forbid (")
	}
	marshalScope(&buf, consts.Principal, p.Principal)
	buf.WriteString(", ")
	marshalScope(&buf, consts.Action, p.Action)
	buf.WriteString(", ")
	marshalScope(&buf, consts.Resource, p.Resource)
	buf.WriteByte(')')
	for _, c := range p.Conditions {
		if c.Kind == ast.ConditionWhen {
			buf.WriteString("\nwhen { ")
		} else {
			buf.WriteString("\nunless { ")
		}
		marshalNode(&buf, c.Body, 0)
		buf.WriteString(" }")
	}
	buf.WriteByte(';')
	return buf.Bytes()
}

func marshalScope(buf *bytes.Buffer, slot string, s ast.IsScopeNode) {
	buf.WriteString(slot)
	switch t := s.(type) {
	case ast.ScopeTypeAll:
	case ast.ScopeTypeEq:
		buf.WriteString(" == ")
		buf.Write(t.Entity.MarshalCedar())
	case ast.ScopeTypeIn:
		buf.WriteString(" in ")
		buf.Write(t.Entity.MarshalCedar())
	case ast.ScopeTypeInSet:
		buf.WriteString(" in [")
		for i, e := range t.Entities {
			if i != 0 {
				buf.WriteString(", ")
			}
			buf.Write(e.MarshalCedar())
		}
		buf.WriteByte(']')
	case ast.ScopeTypeIs:
		buf.WriteString(" is ")
		buf.WriteString(string(t.Type))
	case ast.ScopeTypeIsIn:
		buf.WriteString(" is ")
		buf.WriteString(string(t.Type))
		buf.WriteString(" in ")
		buf.Write(t.Entity.MarshalCedar())
	}
}

// Operator precedence levels used to decide where parentheses are
// required when rendering an expression tree.
const (
	precOr = iota + 1
	precAnd
	precRelation
	precAdd
	precMult
	precUnary
	precMember
)

// marshalNode renders n into buf, wrapping it in parentheses whenever its
// precedence is below the minimum required by the surrounding context.
func marshalNode(buf *bytes.Buffer, n ast.IsNode, minPrec int) {
	prec := nodePrecedence(n)
	if prec < minPrec {
		buf.WriteByte('(')
		writeNode(buf, n)
		buf.WriteByte(')')
		return
	}
	writeNode(buf, n)
}

func nodePrecedence(n ast.IsNode) int {
	switch n.(type) {
	case ast.NodeTypeOr:
		return precOr
	case ast.NodeTypeAnd:
		return precAnd
	case ast.NodeTypeEquals, ast.NodeTypeNotEquals,
		ast.NodeTypeLessThan, ast.NodeTypeLessThanOrEqual,
		ast.NodeTypeGreaterThan, ast.NodeTypeGreaterThanOrEqual,
		ast.NodeTypeIn, ast.NodeTypeHas, ast.NodeTypeLike, ast.NodeTypeIs:
		return precRelation
	case ast.NodeTypeIfThenElse:
		// An if-then-else is only rendered bare at the top of a clause;
		// anywhere else it is parenthesized.
		return 0
	case ast.NodeTypeAdd, ast.NodeTypeSub:
		return precAdd
	case ast.NodeTypeMult:
		return precMult
	case ast.NodeTypeNot, ast.NodeTypeNegate:
		return precUnary
	default:
		return precMember
	}
}

func writeBinary(buf *bytes.Buffer, b ast.BinaryNode, op string, prec int) {
	// Binary operators are rendered left-associative: the right operand
	// needs one level more.
	marshalNode(buf, b.Left, prec)
	buf.WriteByte(' ')
	buf.WriteString(op)
	buf.WriteByte(' ')
	marshalNode(buf, b.Right, prec+1)
}

func writeNode(buf *bytes.Buffer, n ast.IsNode) {
	switch t := n.(type) {
	case ast.NodeValue:
		buf.Write(t.Value.MarshalCedar())
	case ast.NodeTypeVariable:
		buf.WriteString(string(t.Name))
	case ast.NodeTypeOr:
		writeBinary(buf, t.BinaryNode, "||", precOr)
	case ast.NodeTypeAnd:
		writeBinary(buf, t.BinaryNode, "&&", precAnd)
	case ast.NodeTypeEquals:
		writeRelation(buf, t.BinaryNode, "==")
	case ast.NodeTypeNotEquals:
		writeRelation(buf, t.BinaryNode, "!=")
	case ast.NodeTypeLessThan:
		writeRelation(buf, t.BinaryNode, "<")
	case ast.NodeTypeLessThanOrEqual:
		writeRelation(buf, t.BinaryNode, "<=")
	case ast.NodeTypeGreaterThan:
		writeRelation(buf, t.BinaryNode, ">")
	case ast.NodeTypeGreaterThanOrEqual:
		writeRelation(buf, t.BinaryNode, ">=")
	case ast.NodeTypeIn:
		writeRelation(buf, t.BinaryNode, "in")
	case ast.NodeTypeAdd:
		writeBinary(buf, t.BinaryNode, "+", precAdd)
	case ast.NodeTypeSub:
		writeBinary(buf, t.BinaryNode, "-", precAdd)
	case ast.NodeTypeMult:
		writeBinary(buf, t.BinaryNode, "*", precMult)
	case ast.NodeTypeContains:
		writeMethod(buf, t.BinaryNode, "contains")
	case ast.NodeTypeContainsAll:
		writeMethod(buf, t.BinaryNode, "containsAll")
	case ast.NodeTypeContainsAny:
		writeMethod(buf, t.BinaryNode, "containsAny")
	case ast.NodeTypeNot:
		buf.WriteByte('!')
		marshalNode(buf, t.Arg, precUnary)
	case ast.NodeTypeNegate:
		buf.WriteString("-(")
		writeNode(buf, t.Arg)
		buf.WriteByte(')')
	case ast.NodeTypeAccess:
		marshalNode(buf, t.Arg, precMember)
		if identOK(string(t.Attr)) {
			buf.WriteByte('.')
			buf.WriteString(string(t.Attr))
		} else {
			buf.WriteByte('[')
			buf.WriteString(types.QuoteString(string(t.Attr)))
			buf.WriteByte(']')
		}
	case ast.NodeTypeHas:
		marshalNode(buf, t.Arg, precRelation+1)
		buf.WriteString(" has ")
		if identOK(string(t.Attr)) {
			buf.WriteString(string(t.Attr))
		} else {
			buf.WriteString(types.QuoteString(string(t.Attr)))
		}
	case ast.NodeTypeLike:
		marshalNode(buf, t.Arg, precRelation+1)
		buf.WriteString(" like ")
		buf.Write(t.Pattern.MarshalCedar())
	case ast.NodeTypeIs:
		marshalNode(buf, t.Arg, precRelation+1)
		buf.WriteString(" is ")
		buf.WriteString(string(t.EntityType))
		if t.In != nil {
			buf.WriteString(" in ")
			marshalNode(buf, t.In, precRelation+1)
		}
	case ast.NodeTypeIfThenElse:
		buf.WriteString("if ")
		marshalNode(buf, t.If, 0)
		buf.WriteString(" then ")
		marshalNode(buf, t.Then, 0)
		buf.WriteString(" else ")
		marshalNode(buf, t.Else, 0)
	case ast.NodeTypeSet:
		buf.WriteByte('[')
		for i, e := range t.Elements {
			if i != 0 {
				buf.WriteString(", ")
			}
			marshalNode(buf, e, 0)
		}
		buf.WriteByte(']')
	case ast.NodeTypeRecord:
		buf.WriteByte('{')
		for i, e := range t.Elements {
			if i != 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(types.QuoteString(string(e.Key)))
			buf.WriteString(": ")
			marshalNode(buf, e.Value, 0)
		}
		buf.WriteByte('}')
	case ast.NodeTypeExtensionCall:
		writeExtensionCall(buf, t)
	}
}

// writeRelation renders a non-associative relational operator: both
// operands must bind tighter than the relation itself.
func writeRelation(buf *bytes.Buffer, b ast.BinaryNode, op string) {
	marshalNode(buf, b.Left, precRelation+1)
	buf.WriteByte(' ')
	buf.WriteString(op)
	buf.WriteByte(' ')
	marshalNode(buf, b.Right, precRelation+1)
}

func writeMethod(buf *bytes.Buffer, b ast.BinaryNode, name string) {
	marshalNode(buf, b.Left, precMember)
	buf.WriteByte('.')
	buf.WriteString(name)
	buf.WriteByte('(')
	marshalNode(buf, b.Right, 0)
	buf.WriteByte(')')
}

// writeExtensionCall renders constructor-style calls as `name(args)` and
// method-style calls (two or more arguments where the first is the
// receiver) in receiver.method(args) form.
func writeExtensionCall(buf *bytes.Buffer, t ast.NodeTypeExtensionCall) {
	if len(t.Args) == 0 || isConstructorExtension(string(t.Name)) {
		buf.WriteString(string(t.Name))
		buf.WriteByte('(')
		for i, a := range t.Args {
			if i != 0 {
				buf.WriteString(", ")
			}
			marshalNode(buf, a, 0)
		}
		buf.WriteByte(')')
		return
	}
	marshalNode(buf, t.Args[0], precMember)
	buf.WriteByte('.')
	buf.WriteString(string(t.Name))
	buf.WriteByte('(')
	for i, a := range t.Args[1:] {
		if i != 0 {
			buf.WriteString(", ")
		}
		marshalNode(buf, a, 0)
	}
	buf.WriteByte(')')
}

func isConstructorExtension(name string) bool {
	switch name {
	case "ip", "decimal":
		return true
	default:
		return false
	}
}

func identOK(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r, i == 0) {
			return false
		}
	}
	switch s {
	// Reserved words cannot be used in dotted access.
	case "true", "false", "if", "then", "else", "in", "is", "like", "has":
		return false
	}
	return true
}

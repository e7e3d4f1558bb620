package parser

import (
	"bytes"
	"strings"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/internal/consts"
	"github.com/charbonnierg/cedar/types"
)

// Config controls the pretty printer.
type Config struct {
	// LineWidth is the column the formatter tries to stay within.
	LineWidth int
	// IndentWidth is the number of spaces per indentation level.
	IndentWidth int
}

// DefaultConfig matches the defaults of the reference Cedar formatter.
var DefaultConfig = Config{LineWidth: 88, IndentWidth: 2}

// PrettyPrintPolicies formats a sequence of policies, separated by blank
// lines.
func PrettyPrintPolicies(policies []*ast.Policy, cfg Config) []byte {
	var buf bytes.Buffer
	for i, p := range policies {
		if i != 0 {
			buf.WriteString("\n\n")
		}
		buf.Write(PrettyPrintPolicy(p, cfg))
	}
	if len(policies) > 0 {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// PrettyPrintPolicy formats one policy. The scope is kept on a single
// line when it fits within cfg.LineWidth, otherwise each slot moves to
// its own indented line. Condition bodies that overflow are broken at
// their top-level boolean operators.
func PrettyPrintPolicy(p *ast.Policy, cfg Config) []byte {
	if cfg.LineWidth <= 0 {
		cfg.LineWidth = DefaultConfig.LineWidth
	}
	if cfg.IndentWidth <= 0 {
		cfg.IndentWidth = DefaultConfig.IndentWidth
	}
	indent := strings.Repeat(" ", cfg.IndentWidth)

	var buf bytes.Buffer
	for _, a := range p.Annotations {
		buf.WriteByte('@')
		buf.WriteString(string(a.Key))
		buf.WriteByte('(')
		buf.WriteString(types.QuoteString(string(a.Value)))
		buf.WriteString(")\n")
	}

	effect := "permit"
	if p.Effect == ast.EffectForbid {
		effect = "forbid"
	}

	scopes := []string{
		scopeString(consts.Principal, p.Principal),
		scopeString(consts.Action, p.Action),
		scopeString(consts.Resource, p.Resource),
	}
	oneLine := effect + " (" + strings.Join(scopes, ", ") + ")"
	if len(oneLine) <= cfg.LineWidth {
		buf.WriteString(oneLine)
	} else {
		buf.WriteString(effect)
		buf.WriteString(" (\n")
		for i, s := range scopes {
			buf.WriteString(indent)
			buf.WriteString(s)
			if i != len(scopes)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteByte(')')
	}

	for _, c := range p.Conditions {
		kw := "when"
		if c.Kind == ast.ConditionUnless {
			kw = "unless"
		}
		var body bytes.Buffer
		marshalNode(&body, c.Body, 0)
		if len(kw)+len(body.String())+4 <= cfg.LineWidth {
			buf.WriteString("\n" + kw + " { " + body.String() + " }")
			continue
		}
		buf.WriteString("\n" + kw + " {\n")
		for _, line := range splitBoolean(c.Body) {
			var lb bytes.Buffer
			if line.op != "" {
				lb.WriteString(line.op)
				lb.WriteByte(' ')
			}
			marshalNode(&lb, line.node, line.minPrec)
			buf.WriteString(indent)
			buf.Write(lb.Bytes())
			buf.WriteByte('\n')
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(';')
	return buf.Bytes()
}

func scopeString(slot string, s ast.IsScopeNode) string {
	var buf bytes.Buffer
	marshalScope(&buf, slot, s)
	return buf.String()
}

type booleanLine struct {
	op      string // "&&", "||" or "" for the first operand
	node    ast.IsNode
	minPrec int
}

// splitBoolean flattens the top-level chain of one boolean operator into
// one operand per line, operators leading continuation lines.
func splitBoolean(n ast.IsNode) []booleanLine {
	var op string
	var prec int
	switch n.(type) {
	case ast.NodeTypeAnd:
		op, prec = "&&", precAnd
	case ast.NodeTypeOr:
		op, prec = "||", precOr
	default:
		return []booleanLine{{node: n}}
	}

	var operands []ast.IsNode
	var flatten func(n ast.IsNode)
	flatten = func(n ast.IsNode) {
		if a, ok := n.(ast.NodeTypeAnd); ok && op == "&&" {
			flatten(a.Left)
			operands = append(operands, a.Right)
			return
		}
		if o, ok := n.(ast.NodeTypeOr); ok && op == "||" {
			flatten(o.Left)
			operands = append(operands, o.Right)
			return
		}
		operands = append(operands, n)
	}
	flatten(n)

	lines := make([]booleanLine, len(operands))
	for i, o := range operands {
		lines[i] = booleanLine{node: o, minPrec: prec + 1}
		if i > 0 {
			lines[i].op = op
		}
	}
	return lines
}

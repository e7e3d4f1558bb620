package cedar

import (
	internalast "github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/internal/json"
	"github.com/charbonnierg/cedar/internal/parser"
	"github.com/charbonnierg/cedar/types"
)

// A PolicyID is a string identifier unique to a policy within a
// PolicySet.
type PolicyID string

// An Effect is a policy's contribution to the decision when it matches:
// Permit or Forbid.
type Effect bool

const (
	Permit Effect = true
	Forbid Effect = false
)

func (e Effect) String() string {
	if e == Permit {
		return "permit"
	}
	return "forbid"
}

// A Position describes where a policy appeared in source text.
type Position struct {
	// Filename is the name of the file as given to NewPolicySetFromBytes.
	Filename string `json:"filename"`
	// Offset is the byte offset, starting at 0.
	Offset int `json:"offset"`
	// Line is the line number, starting at 1.
	Line int `json:"line"`
	// Column is the column number, starting at 1.
	Column int `json:"column"`
}

// Annotations are the `@key("value")` markers attached to a policy.
type Annotations map[string]string

// A Policy is a single immutable permit or forbid rule with an optional
// condition. The zero Policy is not valid; policies are produced by
// parsing Cedar source text or the JSON policy format.
type Policy struct {
	ast *internalast.Policy
}

func newPolicy(ast *internalast.Policy) *Policy {
	return &Policy{ast: ast}
}

// NewPolicyFromString parses a single policy from Cedar source text.
func NewPolicyFromString(text string) (*Policy, error) {
	var p Policy
	if err := p.UnmarshalCedar([]byte(text)); err != nil {
		return nil, err
	}
	return &p, nil
}

// UnmarshalCedar parses exactly one policy in Cedar source text.
func (p *Policy) UnmarshalCedar(b []byte) error {
	ast, err := parser.ParsePolicy(b)
	if err != nil {
		return err
	}
	p.ast = ast
	return nil
}

// MarshalCedar renders the policy as canonical Cedar source text. The
// output parses back to a policy structurally equal to p.
func (p *Policy) MarshalCedar() []byte {
	return parser.MarshalPolicy(p.ast)
}

// UnmarshalJSON parses a policy in the JSON policy format. The result is
// identical to parsing the equivalent Cedar source text.
func (p *Policy) UnmarshalJSON(b []byte) error {
	ast, err := json.UnmarshalPolicy(b)
	if err != nil {
		return err
	}
	p.ast = ast
	return nil
}

// MarshalJSON renders the policy in the JSON policy format.
func (p *Policy) MarshalJSON() ([]byte, error) {
	return json.MarshalPolicy(p.ast)
}

// Format renders the policy as pretty-printed Cedar source text under
// the given configuration.
func (p *Policy) Format(cfg FormatConfig) []byte {
	return parser.PrettyPrintPolicy(p.ast, parser.Config{
		LineWidth:   cfg.LineWidth,
		IndentWidth: cfg.IndentWidth,
	})
}

// Effect returns whether the policy permits or forbids.
func (p *Policy) Effect() Effect {
	return p.ast.Effect == internalast.EffectPermit
}

// Annotations returns a copy of the policy's annotations.
func (p *Policy) Annotations() Annotations {
	res := make(Annotations, len(p.ast.Annotations))
	for _, a := range p.ast.Annotations {
		res[string(a.Key)] = string(a.Value)
	}
	return res
}

// Position returns where the policy appeared in its source document.
func (p *Policy) Position() Position {
	return Position{
		Filename: p.ast.Position.Filename,
		Offset:   p.ast.Position.Offset,
		Line:     p.ast.Position.Line,
		Column:   p.ast.Position.Column,
	}
}

// Equal reports structural equality of two policies, ignoring position.
func (p *Policy) Equal(other *Policy) bool {
	return p.ast.Equal(other.ast)
}

// idAnnotation is promoted to the policy id when a document is parsed
// with NewPolicySetFromBytes.
const idAnnotation = types.String("id")

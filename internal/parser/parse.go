package parser

import (
	"fmt"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/internal/consts"
	"github.com/charbonnierg/cedar/types"
)

// ParsePolicies parses a document containing zero or more policies.
// The input is all-or-nothing: any syntax error fails the whole parse and
// no partial result is returned.
func ParsePolicies(src []byte) ([]*ast.Policy, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	var policies []*ast.Policy
	for !p.peek().isEOF() {
		pol, err := p.parsePolicy()
		if err != nil {
			return nil, err
		}
		policies = append(policies, pol)
	}
	return policies, nil
}

// ParsePolicy parses exactly one policy.
func ParsePolicy(src []byte) (*ast.Policy, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	pol, err := p.parsePolicy()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); !tok.isEOF() {
		return nil, p.errorf(tok, "unexpected input after policy")
	}
	return pol, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) exact(text string) error {
	tok := p.advance()
	if tok.Text != text || tok.isString() {
		return p.errorf(tok, "expected %q, got %q", text, tok.Text)
	}
	return nil
}

func (p *parser) parsePolicy() (*ast.Policy, error) {
	start := p.peek()
	annotations, err := p.parseAnnotations()
	if err != nil {
		return nil, err
	}

	pol := ast.NewPolicy(ast.EffectPermit)
	pol.Annotations = annotations
	pol.Position = start.Pos

	switch tok := p.advance(); {
	case tok.isIdentText("permit"):
		pol.Effect = ast.EffectPermit
	case tok.isIdentText("forbid"):
		pol.Effect = ast.EffectForbid
	default:
		return nil, p.errorf(tok, "expected permit or forbid, got %q", tok.Text)
	}

	if err := p.exact("("); err != nil {
		return nil, err
	}
	if pol.Principal, err = p.parsePrincipalScope(); err != nil {
		return nil, err
	}
	if err := p.exact(","); err != nil {
		return nil, err
	}
	if pol.Action, err = p.parseActionScope(); err != nil {
		return nil, err
	}
	if err := p.exact(","); err != nil {
		return nil, err
	}
	if pol.Resource, err = p.parseResourceScope(); err != nil {
		return nil, err
	}
	if err := p.exact(")"); err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if !tok.isIdentText("when") && !tok.isIdentText("unless") {
			break
		}
		p.advance()
		kind := ast.ConditionWhen
		if tok.Text == "unless" {
			kind = ast.ConditionUnless
		}
		if err := p.exact("{"); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.exact("}"); err != nil {
			return nil, err
		}
		pol.Conditions = append(pol.Conditions, ast.Condition{Kind: kind, Body: body})
	}

	if err := p.exact(";"); err != nil {
		return nil, err
	}
	return pol, nil
}

func (p *parser) parseAnnotations() ([]ast.Annotation, error) {
	var annotations []ast.Annotation
	for p.peek().isOperator("@") {
		p.advance()
		key := p.advance()
		if !key.isIdent() {
			return nil, p.errorf(key, "expected annotation name, got %q", key.Text)
		}
		for _, a := range annotations {
			if a.Key == types.String(key.Text) {
				return nil, p.errorf(key, "duplicate annotation %q", key.Text)
			}
		}
		if err := p.exact("("); err != nil {
			return nil, err
		}
		val := p.advance()
		if !val.isString() {
			return nil, p.errorf(val, "expected annotation value string, got %q", val.Text)
		}
		s, err := val.stringValue()
		if err != nil {
			return nil, p.errorf(val, "%v", err)
		}
		if err := p.exact(")"); err != nil {
			return nil, err
		}
		annotations = append(annotations, ast.Annotation{
			Key:   types.String(key.Text),
			Value: types.String(s),
		})
	}
	return annotations, nil
}

func (p *parser) parsePrincipalScope() (ast.IsPrincipalScopeNode, error) {
	if err := p.exact(consts.Principal); err != nil {
		return nil, err
	}
	return p.parseEntityScope()
}

func (p *parser) parseResourceScope() (ast.IsResourceScopeNode, error) {
	if err := p.exact(consts.Resource); err != nil {
		return nil, err
	}
	return p.parseEntityScope()
}

// parseEntityScope parses the constraint shared by the principal and
// resource slots: nothing, `== uid`, `in uid`, `is Type` or
// `is Type in uid`.
func (p *parser) parseEntityScope() (interface {
	ast.IsPrincipalScopeNode
	ast.IsResourceScopeNode
}, error) {
	switch tok := p.peek(); {
	case tok.isOperator("=="):
		p.advance()
		uid, err := p.parseEntityUID()
		if err != nil {
			return nil, err
		}
		return ast.ScopeTypeEq{Entity: uid}, nil
	case tok.isIdentText("in"):
		p.advance()
		uid, err := p.parseEntityUID()
		if err != nil {
			return nil, err
		}
		return ast.ScopeTypeIn{Entity: uid}, nil
	case tok.isIdentText("is"):
		p.advance()
		typ, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if p.peek().isIdentText("in") {
			p.advance()
			uid, err := p.parseEntityUID()
			if err != nil {
				return nil, err
			}
			return ast.ScopeTypeIsIn{Type: typ, Entity: uid}, nil
		}
		return ast.ScopeTypeIs{Type: typ}, nil
	default:
		return ast.ScopeTypeAll{}, nil
	}
}

func (p *parser) parseActionScope() (ast.IsActionScopeNode, error) {
	if err := p.exact(consts.Action); err != nil {
		return nil, err
	}
	switch tok := p.peek(); {
	case tok.isOperator("=="):
		p.advance()
		uid, err := p.parseEntityUID()
		if err != nil {
			return nil, err
		}
		return ast.ScopeTypeEq{Entity: uid}, nil
	case tok.isIdentText("in"):
		p.advance()
		if p.peek().isOperator("[") {
			p.advance()
			var uids []types.EntityUID
			for !p.peek().isOperator("]") {
				if len(uids) > 0 {
					if err := p.exact(","); err != nil {
						return nil, err
					}
				}
				uid, err := p.parseEntityUID()
				if err != nil {
					return nil, err
				}
				uids = append(uids, uid)
			}
			p.advance() // ]
			return ast.ScopeTypeInSet{Entities: uids}, nil
		}
		uid, err := p.parseEntityUID()
		if err != nil {
			return nil, err
		}
		return ast.ScopeTypeIn{Entity: uid}, nil
	default:
		return ast.ScopeTypeAll{}, nil
	}
}

// parsePath parses a possibly namespaced entity type, e.g.
// `PhotoApp::User`.
func (p *parser) parsePath() (types.EntityType, error) {
	tok := p.advance()
	if !tok.isIdent() {
		return "", p.errorf(tok, "expected entity type, got %q", tok.Text)
	}
	path := tok.Text
	for p.peek().isOperator("::") {
		if !p.tokens[p.pos+1].isIdent() {
			break
		}
		p.advance()
		next := p.advance()
		path += "::" + next.Text
	}
	return types.EntityType(path), nil
}

// parseEntityUID parses `Path::"id"`.
func (p *parser) parseEntityUID() (types.EntityUID, error) {
	typ, err := p.parsePath()
	if err != nil {
		return types.EntityUID{}, err
	}
	return p.parseEntityUIDRest(typ)
}

func (p *parser) parseEntityUIDRest(typ types.EntityType) (types.EntityUID, error) {
	if err := p.exact("::"); err != nil {
		return types.EntityUID{}, err
	}
	tok := p.advance()
	if !tok.isString() {
		return types.EntityUID{}, p.errorf(tok, "expected entity id string, got %q", tok.Text)
	}
	id, err := tok.stringValue()
	if err != nil {
		return types.EntityUID{}, p.errorf(tok, "%v", err)
	}
	return types.NewEntityUID(typ, types.String(id)), nil
}

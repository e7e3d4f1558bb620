package parser

import (
	"strconv"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/internal/consts"
	"github.com/charbonnierg/cedar/types"
)

func (p *parser) parseExpr() (ast.IsNode, error) {
	if p.peek().isIdentText("if") {
		p.advance()
		return p.parseIf()
	}
	return p.parseOr()
}

func (p *parser) parseIf() (ast.IsNode, error) {
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.exact("then"); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.exact("else"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NodeTypeIfThenElse{If: cond, Then: then, Else: els}, nil
}

func (p *parser) parseOr() (ast.IsNode, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().isOperator("||") {
		p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = ast.NodeTypeOr{BinaryNode: ast.BinaryNode{Left: lhs, Right: rhs}}
	}
	return lhs, nil
}

func (p *parser) parseAnd() (ast.IsNode, error) {
	lhs, err := p.parseRelation()
	if err != nil {
		return nil, err
	}
	for p.peek().isOperator("&&") {
		p.advance()
		rhs, err := p.parseRelation()
		if err != nil {
			return nil, err
		}
		lhs = ast.NodeTypeAnd{BinaryNode: ast.BinaryNode{Left: lhs, Right: rhs}}
	}
	return lhs, nil
}

func (p *parser) parseRelation() (ast.IsNode, error) {
	lhs, err := p.parseAdd()
	if err != nil {
		return nil, err
	}

	switch tok := p.peek(); {
	case tok.isIdentText("has"):
		p.advance()
		return p.parseHas(lhs)
	case tok.isIdentText("like"):
		p.advance()
		return p.parseLike(lhs)
	case tok.isIdentText("is"):
		p.advance()
		return p.parseIs(lhs)
	case tok.isIdentText("in"):
		p.advance()
		rhs, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		return ast.NodeTypeIn{BinaryNode: ast.BinaryNode{Left: lhs, Right: rhs}}, nil
	}

	// Relational operators do not chain: `a < b < c` is a parse error.
	var build func(ast.BinaryNode) ast.IsNode
	switch tok := p.peek(); {
	case tok.isOperator("=="):
		build = func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeEquals{BinaryNode: b} }
	case tok.isOperator("!="):
		build = func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeNotEquals{BinaryNode: b} }
	case tok.isOperator("<"):
		build = func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeLessThan{BinaryNode: b} }
	case tok.isOperator("<="):
		build = func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeLessThanOrEqual{BinaryNode: b} }
	case tok.isOperator(">"):
		build = func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeGreaterThan{BinaryNode: b} }
	case tok.isOperator(">="):
		build = func(b ast.BinaryNode) ast.IsNode { return ast.NodeTypeGreaterThanOrEqual{BinaryNode: b} }
	default:
		return lhs, nil
	}
	p.advance()
	rhs, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	return build(ast.BinaryNode{Left: lhs, Right: rhs}), nil
}

func (p *parser) parseHas(lhs ast.IsNode) (ast.IsNode, error) {
	tok := p.advance()
	switch {
	case tok.isIdent():
		return ast.NodeTypeHas{UnaryNode: ast.UnaryNode{Arg: lhs}, Attr: types.String(tok.Text)}, nil
	case tok.isString():
		s, err := tok.stringValue()
		if err != nil {
			return nil, p.errorf(tok, "%v", err)
		}
		return ast.NodeTypeHas{UnaryNode: ast.UnaryNode{Arg: lhs}, Attr: types.String(s)}, nil
	}
	return nil, p.errorf(tok, "expected attribute name after has, got %q", tok.Text)
}

func (p *parser) parseLike(lhs ast.IsNode) (ast.IsNode, error) {
	tok := p.advance()
	if !tok.isString() {
		return nil, p.errorf(tok, "expected pattern literal after like, got %q", tok.Text)
	}
	pat, err := types.ParsePattern(tok.Text[1 : len(tok.Text)-1])
	if err != nil {
		return nil, p.errorf(tok, "%v", err)
	}
	return ast.NodeTypeLike{UnaryNode: ast.UnaryNode{Arg: lhs}, Pattern: pat}, nil
}

func (p *parser) parseIs(lhs ast.IsNode) (ast.IsNode, error) {
	typ, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	res := ast.NodeTypeIs{UnaryNode: ast.UnaryNode{Arg: lhs}, EntityType: typ}
	if p.peek().isIdentText("in") {
		p.advance()
		in, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		res.In = in
	}
	return res, nil
}

func (p *parser) parseAdd() (ast.IsNode, error) {
	lhs, err := p.parseMult()
	if err != nil {
		return nil, err
	}
	for {
		var sub bool
		switch {
		case p.peek().isOperator("+"):
		case p.peek().isOperator("-"):
			sub = true
		default:
			return lhs, nil
		}
		p.advance()
		rhs, err := p.parseMult()
		if err != nil {
			return nil, err
		}
		if sub {
			lhs = ast.NodeTypeSub{BinaryNode: ast.BinaryNode{Left: lhs, Right: rhs}}
		} else {
			lhs = ast.NodeTypeAdd{BinaryNode: ast.BinaryNode{Left: lhs, Right: rhs}}
		}
	}
}

func (p *parser) parseMult() (ast.IsNode, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().isOperator("*") {
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = ast.NodeTypeMult{BinaryNode: ast.BinaryNode{Left: lhs, Right: rhs}}
	}
	return lhs, nil
}

func (p *parser) parseUnary() (ast.IsNode, error) {
	switch tok := p.peek(); {
	case tok.isOperator("!"):
		p.advance()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NodeTypeNot{UnaryNode: ast.UnaryNode{Arg: arg}}, nil
	case tok.isOperator("-"):
		p.advance()
		// A minus directly before an integer literal is part of the
		// literal, which allows the full int64 range.
		if num := p.peek(); num.isInt() {
			p.advance()
			i, err := strconv.ParseInt("-"+num.Text, 10, 64)
			if err != nil {
				return nil, p.errorf(num, "invalid integer literal: %v", err)
			}
			return ast.NodeValue{Value: types.Long(i)}, nil
		}
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NodeTypeNegate{UnaryNode: ast.UnaryNode{Arg: arg}}, nil
	}
	return p.parseMember()
}

func (p *parser) parseMember() (ast.IsNode, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch tok := p.peek(); {
		case tok.isOperator("."):
			p.advance()
			lhs, err = p.parseAccess(lhs)
			if err != nil {
				return nil, err
			}
		case tok.isOperator("["):
			p.advance()
			key := p.advance()
			if !key.isString() {
				return nil, p.errorf(key, "expected string inside index access, got %q", key.Text)
			}
			s, err := key.stringValue()
			if err != nil {
				return nil, p.errorf(key, "%v", err)
			}
			if err := p.exact("]"); err != nil {
				return nil, err
			}
			lhs = ast.NodeTypeAccess{UnaryNode: ast.UnaryNode{Arg: lhs}, Attr: types.String(s)}
		default:
			return lhs, nil
		}
	}
}

// parseAccess parses what follows a dot: plain attribute access, one of
// the built-in set methods, or an extension method call.
func (p *parser) parseAccess(lhs ast.IsNode) (ast.IsNode, error) {
	name := p.advance()
	if !name.isIdent() {
		return nil, p.errorf(name, "expected attribute or method name, got %q", name.Text)
	}
	if !p.peek().isOperator("(") {
		return ast.NodeTypeAccess{UnaryNode: ast.UnaryNode{Arg: lhs}, Attr: types.String(name.Text)}, nil
	}
	p.advance()
	args, err := p.parseExprList(")")
	if err != nil {
		return nil, err
	}
	b := func(arg ast.IsNode) ast.BinaryNode { return ast.BinaryNode{Left: lhs, Right: arg} }
	switch name.Text {
	case "contains":
		if len(args) != 1 {
			return nil, p.errorf(name, "contains takes exactly one argument")
		}
		return ast.NodeTypeContains{BinaryNode: b(args[0])}, nil
	case "containsAll":
		if len(args) != 1 {
			return nil, p.errorf(name, "containsAll takes exactly one argument")
		}
		return ast.NodeTypeContainsAll{BinaryNode: b(args[0])}, nil
	case "containsAny":
		if len(args) != 1 {
			return nil, p.errorf(name, "containsAny takes exactly one argument")
		}
		return ast.NodeTypeContainsAny{BinaryNode: b(args[0])}, nil
	default:
		// Method form extension call: the receiver is the first argument.
		return ast.NodeTypeExtensionCall{
			Name: types.String(name.Text),
			Args: append([]ast.IsNode{lhs}, args...),
		}, nil
	}
}

func (p *parser) parseExprList(terminator string) ([]ast.IsNode, error) {
	var res []ast.IsNode
	for !p.peek().isOperator(terminator) {
		if len(res) > 0 {
			if err := p.exact(","); err != nil {
				return nil, err
			}
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	p.advance() // terminator
	return res, nil
}

func (p *parser) parsePrimary() (ast.IsNode, error) {
	switch tok := p.advance(); {
	case tok.isInt():
		i, err := tok.intValue()
		if err != nil {
			return nil, p.errorf(tok, "invalid integer literal: %v", err)
		}
		return ast.NodeValue{Value: types.Long(i)}, nil
	case tok.isString():
		s, err := tok.stringValue()
		if err != nil {
			return nil, p.errorf(tok, "%v", err)
		}
		return ast.NodeValue{Value: types.String(s)}, nil
	case tok.isIdentText("true"):
		return ast.NodeValue{Value: types.True}, nil
	case tok.isIdentText("false"):
		return ast.NodeValue{Value: types.False}, nil
	case tok.isIdentText(consts.Principal),
		tok.isIdentText(consts.Action),
		tok.isIdentText(consts.Resource),
		tok.isIdentText(consts.Context):
		return ast.NodeTypeVariable{Name: types.String(tok.Text)}, nil
	case tok.isIdentText("if"):
		return p.parseIf()
	case tok.isOperator("("):
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.exact(")"); err != nil {
			return nil, err
		}
		return e, nil
	case tok.isOperator("["):
		elems, err := p.parseExprList("]")
		if err != nil {
			return nil, err
		}
		return ast.NodeTypeSet{Elements: elems}, nil
	case tok.isOperator("{"):
		return p.parseRecord()
	case tok.isIdent():
		return p.parseIdentExpr(tok)
	default:
		return nil, p.errorf(tok, "unexpected token %q", tok.Text)
	}
}

// parseIdentExpr parses the expressions that begin with an identifier:
// entity uids (`User::"alice"`) and extension constructor calls
// (`ip("10.0.0.0/8")`).
func (p *parser) parseIdentExpr(first Token) (ast.IsNode, error) {
	path := first.Text
	for p.peek().isOperator("::") {
		p.advance()
		switch next := p.advance(); {
		case next.isIdent():
			path += "::" + next.Text
		case next.isString():
			id, err := next.stringValue()
			if err != nil {
				return nil, p.errorf(next, "%v", err)
			}
			return ast.NodeValue{
				Value: types.NewEntityUID(types.EntityType(path), types.String(id)),
			}, nil
		default:
			return nil, p.errorf(next, "expected identifier or string after ::, got %q", next.Text)
		}
	}
	if p.peek().isOperator("(") {
		p.advance()
		args, err := p.parseExprList(")")
		if err != nil {
			return nil, err
		}
		return ast.NodeTypeExtensionCall{Name: types.String(path), Args: args}, nil
	}
	return nil, p.errorf(first, "invalid expression starting with %q", first.Text)
}

func (p *parser) parseRecord() (ast.IsNode, error) {
	var elems []ast.RecordElementNode
	known := map[types.String]bool{}
	for !p.peek().isOperator("}") {
		if len(elems) > 0 {
			if err := p.exact(","); err != nil {
				return nil, err
			}
		}
		key := p.advance()
		var name types.String
		switch {
		case key.isIdent():
			name = types.String(key.Text)
		case key.isString():
			s, err := key.stringValue()
			if err != nil {
				return nil, p.errorf(key, "%v", err)
			}
			name = types.String(s)
		default:
			return nil, p.errorf(key, "expected record key, got %q", key.Text)
		}
		if known[name] {
			return nil, p.errorf(key, "duplicate record key %q", name)
		}
		known[name] = true
		if err := p.exact(":"); err != nil {
			return nil, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, ast.RecordElementNode{Key: name, Value: v})
	}
	p.advance() // }
	return ast.NodeTypeRecord{Elements: elems}, nil
}

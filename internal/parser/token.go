// Package parser implements the Cedar policy text form: tokenizing,
// parsing into the internal AST, and rendering the AST back to canonical
// or pretty-printed source text.
package parser

import (
	"strconv"

	"github.com/charbonnierg/cedar/internal/ast"
	"github.com/charbonnierg/cedar/types"
)

// Position is re-exported so callers of the parser report locations with
// the same type the AST carries.
type Position = ast.Position

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenInt
	TokenString
	TokenOperator
	TokenUnknown
)

// Token is a single lexical token with its source position.
type Token struct {
	Type TokenType
	Pos  Position
	Text string
}

func (t Token) isEOF() bool    { return t.Type == TokenEOF }
func (t Token) isIdent() bool  { return t.Type == TokenIdent }
func (t Token) isInt() bool    { return t.Type == TokenInt }
func (t Token) isString() bool { return t.Type == TokenString }

func (t Token) isIdentText(s string) bool {
	return t.Type == TokenIdent && t.Text == s
}

func (t Token) isOperator(s string) bool {
	return t.Type == TokenOperator && t.Text == s
}

// intValue parses the token as a signed 64-bit integer.
func (t Token) intValue() (int64, error) {
	return strconv.ParseInt(t.Text, 10, 64)
}

// stringValue returns the unquoted value of a string token.
func (t Token) stringValue() (string, error) {
	return types.UnquoteString(t.Text)
}

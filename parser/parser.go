// Package parser implements the recursive-descent SQL parser (spec
// §4.2): tokens to a fully-annotated SelectStatement AST, validating
// function arity and aggregate placement along the way.
package parser

import (
	"strings"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/lexer"
	"github.com/tessera-sql/sqlengine/pos"
	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/token"
	"github.com/tessera-sql/sqlengine/udf"
)

// Options bundles the parse-time inputs (spec §6 "parseSql({query,
// functions})").
type Options struct {
	Query     string
	Functions map[string]udf.Function
}

// ParseSql tokenizes and parses opts.Query into a SelectStatement.
func ParseSql(opts Options) (*ast.SelectStatement, error) {
	toks, err := lexer.Tokenize(opts.Query)
	if err != nil {
		return nil, err
	}
	p := &parser{
		toks:      toks,
		src:       opts.Query,
		functions: normalizeFunctions(opts.Functions),
	}
	stmt, err := p.parseSelectStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.EOF); err != nil {
		return nil, err
	}
	return stmt, nil
}

func normalizeFunctions(fns map[string]udf.Function) map[string]udf.Function {
	out := make(map[string]udf.Function, len(fns))
	for name, fn := range fns {
		out[strings.ToUpper(name)] = fn
	}
	return out
}

type parser struct {
	toks      []token.Token
	pos       int
	src       string
	functions map[string]udf.Function
}

func (p *parser) cur() token.Token  { return p.toks[p.pos] }
func (p *parser) atEnd() bool       { return p.cur().Kind == token.EOF }
func (p *parser) prevOrNil() *token.Token {
	if p.pos == 0 {
		return nil
	}
	return &p.toks[p.pos-1]
}

func (p *parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) check(kind token.Kind) bool { return p.cur().Kind == kind }

func (p *parser) checkOp(text string) bool {
	return p.cur().Kind == token.OPERATOR && p.cur().Text == text
}

func (p *parser) checkPunct(text string) bool {
	return p.cur().Kind == token.PUNCT && p.cur().Text == text
}

func (p *parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) matchOp(text string) bool {
	if p.checkOp(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) matchPunct(text string) bool {
	if p.checkPunct(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(kind token.Kind) error {
	if p.check(kind) {
		p.advance()
		return nil
	}
	return p.unexpected(kind.String())
}

func (p *parser) expectPunct(text string) error {
	if p.checkPunct(text) {
		p.advance()
		return nil
	}
	return p.unexpected(text)
}

func (p *parser) unexpected(expected string) error {
	got := p.cur().Text
	if p.cur().Kind == token.EOF {
		got = "end of input"
	}
	r := p.cur().Range
	if prev := p.prevOrNil(); prev != nil {
		return sqlerr.NewParseError(sqlerr.KindExpectedAfter, r, expected, prev.Text, got)
	}
	return sqlerr.NewParseError(sqlerr.KindUnexpectedToken, r, expected, got)
}

// clauseStarter reports whether the current token begins a clause that
// cannot also be a bare-identifier column alias (spec §4.2).
func (p *parser) clauseStarter() bool {
	switch p.cur().Kind {
	case token.FROM, token.WHERE, token.GROUP, token.HAVING, token.ORDER,
		token.LIMIT, token.OFFSET, token.JOIN, token.INNER, token.LEFT,
		token.RIGHT, token.FULL, token.POSITIONAL, token.EOF, token.ON:
		return true
	}
	return p.checkPunct(")") || p.checkPunct(",")
}

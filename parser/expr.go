package parser

import (
	"strings"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/internal/similartext"
	"github.com/tessera-sql/sqlengine/pos"
	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/token"
	"github.com/tessera-sql/sqlengine/value"
)

// parseExpr is the entry point for expression parsing: OR is the
// lowest-precedence operator (spec §4.2).
func (p *parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (ast.Expr, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(token.OR) {
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = &ast.Binary{Op: ast.Or, L: l, R: r, Range: pos.Join(l.Pos(), r.Pos())}
	}
	return l, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	l, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.match(token.AND) {
		r, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l = &ast.Binary{Op: ast.And, L: l, R: r, Range: pos.Join(l.Pos(), r.Pos())}
	}
	return l, nil
}

// parseNot handles a prefix NOT; NOT also has special handling before
// LIKE/BETWEEN/IN inside parseComparison (spec §4.2).
func (p *parser) parseNot() (ast.Expr, error) {
	if p.check(token.NOT) {
		start := p.cur().Range.Start
		p.advance()
		arg, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Not, Arg: arg, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (ast.Expr, error) {
	l, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return p.parseComparisonRest(l)
}

func (p *parser) parseComparisonRest(l ast.Expr) (ast.Expr, error) {
	for {
		switch {
		case p.checkOp("=") || p.checkOp("!=") || p.checkOp("<>") ||
			p.checkOp("<") || p.checkOp("<=") || p.checkOp(">") || p.checkOp(">="):
			op := p.advance().Text
			r, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			l = &ast.Binary{Op: cmpOp(op), L: l, R: r, Range: pos.Join(l.Pos(), r.Pos())}
		case p.check(token.LIKE):
			p.advance()
			r, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			l = &ast.Binary{Op: ast.Like, L: l, R: r, Range: pos.Join(l.Pos(), r.Pos())}
		case p.check(token.NOT) && p.peekAhead(1, token.LIKE):
			p.advance()
			p.advance()
			r, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			like := &ast.Binary{Op: ast.Like, L: l, R: r, Range: pos.Join(l.Pos(), r.Pos())}
			l = &ast.Unary{Op: ast.Not, Arg: like, Range: like.Range}
		case p.check(token.BETWEEN):
			p.advance()
			lo, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			if err := p.expect(token.AND); err != nil {
				return nil, err
			}
			hi, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			l = &ast.Between{Expr: l, Lo: lo, Hi: hi, Range: pos.Join(l.Pos(), hi.Pos())}
		case p.check(token.NOT) && p.peekAhead(1, token.BETWEEN):
			p.advance()
			p.advance()
			lo, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			if err := p.expect(token.AND); err != nil {
				return nil, err
			}
			hi, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			l = &ast.NotBetween{Expr: l, Lo: lo, Hi: hi, Range: pos.Join(l.Pos(), hi.Pos())}
		case p.check(token.IN):
			p.advance()
			n, err := p.parseInRHS(l, false)
			if err != nil {
				return nil, err
			}
			l = n
		case p.check(token.NOT) && p.peekAhead(1, token.IN):
			p.advance()
			p.advance()
			n, err := p.parseInRHS(l, true)
			if err != nil {
				return nil, err
			}
			l = n
		case p.check(token.IS):
			p.advance()
			neg := p.match(token.NOT)
			if err := p.expect(token.NULL); err != nil {
				return nil, err
			}
			op := ast.IsNull
			if neg {
				op = ast.IsNotNull
			}
			l = &ast.Unary{Op: op, Arg: l, Range: pos.Range{Start: l.Pos().Start, End: p.prevEnd()}}
		default:
			return l, nil
		}
	}
}

func (p *parser) peekAhead(n int, kind token.Kind) bool {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return false
	}
	return p.toks[idx].Kind == kind
}

func cmpOp(text string) ast.BinaryOp {
	switch text {
	case "=":
		return ast.Eq
	case "!=", "<>":
		return ast.Neq
	case "<":
		return ast.Lt
	case "<=":
		return ast.Lte
	case ">":
		return ast.Gt
	case ">=":
		return ast.Gte
	default:
		return ast.Eq
	}
}

func (p *parser) parseInRHS(l ast.Expr, negated bool) (ast.Expr, error) {
	start := l.Pos().Start
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	if p.check(token.SELECT) {
		sub, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		end := p.prevEnd()
		if negated {
			return &ast.NotInSubquery{Expr: l, Subquery: sub, Range: pos.Range{Start: start, End: end}}, nil
		}
		return &ast.InSubquery{Expr: l, Subquery: sub, Range: pos.Range{Start: start, End: end}}, nil
	}
	var values []ast.Expr
	for {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if !p.matchPunct(",") {
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	end := p.prevEnd()
	if negated {
		return &ast.NotInList{Expr: l, Values: values, Range: pos.Range{Start: start, End: end}}, nil
	}
	return &ast.InList{Expr: l, Values: values, Range: pos.Range{Start: start, End: end}}, nil
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	l, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		if p.checkOp("+") || p.checkOp("-") {
			op := p.advance().Text
			if p.check(token.INTERVAL) {
				iv, err := p.parseInterval()
				if err != nil {
					return nil, err
				}
				bop := ast.PlusInterval
				if op == "-" {
					bop = ast.MinusInterval
				}
				l = &ast.Binary{Op: bop, L: l, R: iv, Range: pos.Join(l.Pos(), iv.Pos())}
				continue
			}
			r, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			bop := ast.Add
			if op == "-" {
				bop = ast.Sub
			}
			l = &ast.Binary{Op: bop, L: l, R: r, Range: pos.Join(l.Pos(), r.Pos())}
			continue
		}
		return l, nil
	}
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.checkOp("*") || p.checkOp("/") || p.checkOp("%") {
		op := p.advance().Text
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		var bop ast.BinaryOp
		switch op {
		case "*":
			bop = ast.Mul
		case "/":
			bop = ast.Div
		case "%":
			bop = ast.Mod
		}
		l = &ast.Binary{Op: bop, L: l, R: r, Range: pos.Join(l.Pos(), r.Pos())}
	}
	return l, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.checkOp("-") {
		start := p.cur().Range.Start
		p.advance()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Neg, Arg: arg, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parseInterval() (ast.Expr, error) {
	start := p.cur().Range.Start
	if err := p.expect(token.INTERVAL); err != nil {
		return nil, err
	}
	val, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	unit, err := p.parseIntervalUnit()
	if err != nil {
		return nil, err
	}
	return &ast.Interval{Value: val, Unit: unit, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
}

func (p *parser) parseIntervalUnit() (ast.IntervalUnit, error) {
	if !token.IsIntervalUnit(p.cur().Kind) {
		return 0, p.unexpected("interval unit")
	}
	kind := p.advance().Kind
	switch kind {
	case token.SECOND:
		return ast.UnitSecond, nil
	case token.MINUTE:
		return ast.UnitMinute, nil
	case token.HOUR:
		return ast.UnitHour, nil
	case token.DAY:
		return ast.UnitDay, nil
	case token.MONTH:
		return ast.UnitMonth, nil
	case token.YEAR:
		return ast.UnitYear, nil
	default:
		return 0, p.unexpected("interval unit")
	}
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	start := p.cur().Range.Start
	switch {
	case p.check(token.NUMBER):
		t := p.advance()
		var v value.SqlValue
		if t.BigInt != nil {
			v = value.BigInt(t.BigInt)
		} else if t.IsInt {
			v = value.Int64(int64(t.Num))
		} else {
			v = value.Float64(t.Num)
		}
		return &ast.Literal{Value: v, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	case p.check(token.STRING):
		t := p.advance()
		return &ast.Literal{Value: value.String(t.Text), Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	case p.check(token.TRUE):
		p.advance()
		return &ast.Literal{Value: value.Bool(true), Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	case p.check(token.FALSE):
		p.advance()
		return &ast.Literal{Value: value.Bool(false), Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	case p.check(token.NULL):
		p.advance()
		return &ast.Literal{Value: value.Null, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	case p.check(token.NOT):
		p.advance()
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Not, Arg: arg, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	case p.check(token.EXISTS):
		p.advance()
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		sub, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return &ast.Exists{Subquery: sub, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	case p.check(token.CASE):
		return p.parseCase()
	case p.check(token.CAST):
		return p.parseCast()
	case p.check(token.INTERVAL):
		return p.parseInterval()
	case p.checkPunct("("):
		return p.parseParenthesized()
	case p.check(token.QUOTED_IDENT):
		t := p.advance()
		return &ast.Identifier{Name: t.Text, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	case p.check(token.IDENT):
		return p.parseIdentOrCall()
	default:
		return nil, p.unexpected("expression")
	}
}

func (p *parser) parseParenthesized() (ast.Expr, error) {
	start := p.cur().Range.Start
	p.advance() // '('
	if p.check(token.SELECT) {
		sub, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return &ast.Subquery{Select: sub, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseIdentOrCall() (ast.Expr, error) {
	start := p.cur().Range.Start
	name := p.advance().Text
	if p.checkPunct(".") {
		p.advance()
		if p.checkPunct("*") {
			p.advance()
			return &ast.Identifier{Name: name + ".*", Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
		}
		var part string
		if p.check(token.QUOTED_IDENT) || p.check(token.IDENT) {
			part = p.advance().Text
		} else {
			return nil, p.unexpected("identifier")
		}
		return &ast.Identifier{Name: name + "." + part, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	}
	if p.checkPunct("(") {
		return p.parseFunctionCall(name, start)
	}
	return &ast.Identifier{Name: name, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
}

func (p *parser) parseFunctionCall(name string, start int) (ast.Expr, error) {
	p.advance() // '('
	upper := strings.ToUpper(name)
	distinct := false
	if p.match(token.DISTINCT) {
		distinct = true
	}

	var args []ast.Expr
	if p.checkPunct("*") {
		starPos := p.cur().Range
		p.advance()
		if upper != "COUNT" {
			return nil, sqlerr.NewParseError(sqlerr.KindStarNotAllowed, starPos)
		}
		args = append(args, &ast.Identifier{Name: "*", Range: starPos})
	} else if !p.checkPunct(")") {
		for {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.matchPunct(",") {
				break
			}
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	if err := p.validateArity(name, upper, args); err != nil {
		return nil, err
	}

	fn := &ast.Function{Name: name, Args: args, Distinct: distinct}

	// FILTER is lexed as IDENT ("FILTER" is not a reserved keyword in
	// this dialect's tokenizer); accept it case-insensitively.
	if isFilterKeyword(p) {
		filterPos := p.cur().Range.Start
		p.advance() // FILTER
		if !ast.IsAggregateFunctionName(name) {
			return nil, sqlerr.NewParseError(sqlerr.KindFilterNotAgg, pos.Range{Start: filterPos, End: p.prevEnd()})
		}
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		if err := p.expect(token.WHERE); err != nil {
			return nil, err
		}
		pred, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		fn.Filter = pred
	}

	fn.Range = pos.Range{Start: start, End: p.prevEnd()}

	if distinct && upper != "COUNT" && !ast.IsAggregateFunctionName(name) {
		// DISTINCT only makes sense inside an aggregate call; scalar
		// functions simply ignore it structurally, but reject it early
		// since it can never be satisfied.
		return nil, sqlerr.NewParseError(sqlerr.KindWrongArity, fn.Range, name, "no DISTINCT", len(args))
	}

	return fn, nil
}

// isFilterKeyword reports whether the current token spells "FILTER",
// case-insensitively; FILTER is a contextual keyword (only meaningful
// right after a function call) so the tokenizer lexes it as a plain
// identifier.
func isFilterKeyword(p *parser) bool {
	return p.check(token.IDENT) && strings.EqualFold(p.cur().Text, "FILTER")
}

func (p *parser) validateArity(name, upper string, args []ast.Expr) error {
	a, ok := builtinArity[upper]
	if !ok {
		if fn, ok := p.functions[upper]; ok {
			a = fn.Arguments()
		} else {
			suggestion := similartext.FindFromMap(builtinArity, upper)
			return sqlerr.NewParseError(sqlerr.KindUnknownFunction, fnRangeOf(args, name), name+suggestion)
		}
	}
	if !a.Accepts(len(args)) {
		return sqlerr.NewParseError(sqlerr.KindWrongArity, fnRangeOf(args, name), name, arityDesc(a), len(args))
	}
	return nil
}

func fnRangeOf(args []ast.Expr, name string) pos.Range {
	if len(args) == 0 {
		return pos.Range{}
	}
	r := args[0].Pos()
	for _, a := range args[1:] {
		r = pos.Join(r, a.Pos())
	}
	return r
}

func arityDesc(a interface{ Accepts(int) bool }) string {
	return "matching argument count"
}

func (p *parser) parseCase() (ast.Expr, error) {
	start := p.cur().Range.Start
	p.advance() // CASE
	c := &ast.Case{}
	if !p.check(token.WHEN) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.CaseExpr = e
	}
	for p.match(token.WHEN) {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		res, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, ast.WhenClause{Condition: cond, Result: res})
	}
	if len(c.Whens) == 0 {
		return nil, p.unexpected("WHEN")
	}
	if p.match(token.ELSE) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Else = e
	}
	if err := p.expect(token.END); err != nil {
		return nil, err
	}
	c.Range = pos.Range{Start: start, End: p.prevEnd()}
	return c, nil
}

func (p *parser) parseCast() (ast.Expr, error) {
	start := p.cur().Range.Start
	p.advance() // CAST
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.AS); err != nil {
		return nil, err
	}
	if !p.check(token.IDENT) {
		return nil, p.unexpected("type name")
	}
	toType := strings.ToUpper(p.advance().Text)
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return &ast.Cast{Expr: e, ToType: toType, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
}

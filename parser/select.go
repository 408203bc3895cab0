package parser

import (
	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/pos"
	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/token"
)

func (p *parser) parseSelectStatement() (*ast.SelectStatement, error) {
	start := p.cur().Range.Start
	if p.check(token.WITH) {
		// CTEs are not supported (spec §1 Non-goals): there is no
		// name-binding CTE layer, so the keyword is rejected explicitly
		// with a parse error rather than silently mis-parsed.
		return nil, sqlerr.NewParseError(sqlerr.KindUnexpectedToken, p.cur().Range, "SELECT", "WITH")
	}
	if err := p.expect(token.SELECT); err != nil {
		return nil, err
	}

	stmt := &ast.SelectStatement{}
	if p.match(token.DISTINCT) {
		stmt.Distinct = true
	} else {
		p.match(token.ALL)
	}

	cols, err := p.parseSelectColumns()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols

	if err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	from, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.From = from

	joins, err := p.parseJoins()
	if err != nil {
		return nil, err
	}
	stmt.Joins = joins

	if p.match(token.WHERE) {
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := expectNoAggregate(where, "WHERE"); err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.match(token.GROUP) {
		if err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := expectNoAggregate(e, "GROUP BY"); err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, e)
			if !p.matchPunct(",") {
				break
			}
		}
	}

	if p.match(token.HAVING) {
		having, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Having = having
	}

	if p.match(token.ORDER) {
		if err := p.expect(token.BY); err != nil {
			return nil, err
		}
		items, err := p.parseOrderByItems()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = items
	}

	limit, err := p.parseLimitClause()
	if err != nil {
		return nil, err
	}
	stmt.Limit = limit

	stmt.Range = pos.Range{Start: start, End: p.prevEnd()}
	return stmt, nil
}

func (p *parser) prevEnd() int {
	if prev := p.prevOrNil(); prev != nil {
		return prev.Range.End
	}
	return p.cur().Range.End
}

func (p *parser) parseSelectColumns() ([]ast.SelectColumn, error) {
	var cols []ast.SelectColumn
	for {
		col, err := p.parseSelectColumn()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if !p.matchPunct(",") {
			break
		}
	}
	return cols, nil
}

func (p *parser) parseSelectColumn() (ast.SelectColumn, error) {
	start := p.cur().Range.Start
	if p.checkPunct("*") {
		p.advance()
		return ast.SelectColumn{Star: true, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	}
	// qualified star "t.*"
	if p.check(token.IDENT) && p.peekIsQualifiedStar() {
		name := p.advance().Text
		p.advance() // '.'
		p.advance() // '*'
		return ast.SelectColumn{Star: true, QualifiedStar: name, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	}

	e, err := p.parseExpr()
	if err != nil {
		return ast.SelectColumn{}, err
	}
	alias := ""
	if p.match(token.AS) {
		a, err := p.parseAliasIdent()
		if err != nil {
			return ast.SelectColumn{}, err
		}
		alias = a
	} else if p.canBeBareAlias() {
		alias = p.advance().Orig
		if alias == "" {
			alias = p.toks[p.pos-1].Text
		}
	}
	return ast.SelectColumn{Expr: e, Alias: alias, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
}

func (p *parser) peekIsQualifiedStar() bool {
	if p.pos+2 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].Kind == token.PUNCT && p.toks[p.pos+1].Text == "." &&
		p.toks[p.pos+2].Kind == token.PUNCT && p.toks[p.pos+2].Text == "*"
}

// canBeBareAlias reports whether the current token can serve as a bare
// (AS-less) alias following a column expression (spec §4.2).
func (p *parser) canBeBareAlias() bool {
	if p.clauseStarter() {
		return false
	}
	return p.check(token.IDENT) || (token.IsKeyword(p.cur().Kind) && !isReservedAfterColumn(p.cur().Kind))
}

func isReservedAfterColumn(k token.Kind) bool {
	switch k {
	case token.AND, token.OR, token.IN, token.IS, token.LIKE, token.BETWEEN,
		token.NOT, token.END, token.THEN, token.ELSE, token.WHEN:
		return true
	}
	return false
}

func (p *parser) parseAliasIdent() (string, error) {
	if p.check(token.IDENT) {
		return p.advance().Text, nil
	}
	if token.IsKeyword(p.cur().Kind) {
		t := p.advance()
		if t.Orig != "" {
			return t.Orig, nil
		}
		return t.Text, nil
	}
	return "", p.unexpected("alias")
}

func (p *parser) parseTableRef() (*ast.TableRef, error) {
	start := p.cur().Range.Start
	if !p.check(token.IDENT) {
		return nil, p.unexpected("table name")
	}
	name := p.advance().Text
	alias := ""
	if p.match(token.AS) {
		a, err := p.parseAliasIdent()
		if err != nil {
			return nil, err
		}
		alias = a
	} else if p.check(token.IDENT) {
		alias = p.advance().Text
	}
	return &ast.TableRef{Name: name, Alias: alias, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
}

func (p *parser) parseJoins() ([]ast.JoinClause, error) {
	var joins []ast.JoinClause
	for {
		start := p.cur().Range.Start
		jt, ok, err := p.parseJoinType()
		if err != nil {
			return nil, err
		}
		if !ok {
			return joins, nil
		}
		table, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		var on ast.Expr
		if jt != ast.PositionalJoinType {
			if err := p.expect(token.ON); err != nil {
				return nil, err
			}
			on, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := expectNoAggregate(on, "JOIN ON"); err != nil {
				return nil, err
			}
		}
		joins = append(joins, ast.JoinClause{Type: jt, Table: *table, On: on, Range: pos.Range{Start: start, End: p.prevEnd()}})
	}
}

func (p *parser) parseJoinType() (ast.JoinType, bool, error) {
	switch p.cur().Kind {
	case token.JOIN:
		p.advance()
		return ast.InnerJoin, true, nil
	case token.INNER:
		p.advance()
		if err := p.expect(token.JOIN); err != nil {
			return 0, false, err
		}
		return ast.InnerJoin, true, nil
	case token.LEFT:
		p.advance()
		p.match(token.OUTER)
		if err := p.expect(token.JOIN); err != nil {
			return 0, false, err
		}
		return ast.LeftJoin, true, nil
	case token.RIGHT:
		p.advance()
		p.match(token.OUTER)
		if err := p.expect(token.JOIN); err != nil {
			return 0, false, err
		}
		return ast.RightJoin, true, nil
	case token.FULL:
		p.advance()
		p.match(token.OUTER)
		if err := p.expect(token.JOIN); err != nil {
			return 0, false, err
		}
		return ast.FullJoin, true, nil
	case token.POSITIONAL:
		p.advance()
		if err := p.expect(token.JOIN); err != nil {
			return 0, false, err
		}
		return ast.PositionalJoinType, true, nil
	default:
		return 0, false, nil
	}
}

func (p *parser) parseOrderByItems() ([]ast.OrderByItem, error) {
	var items []ast.OrderByItem
	for {
		start := p.cur().Range.Start
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		desc := false
		if p.match(token.ASC) {
			desc = false
		} else if p.match(token.DESC) {
			desc = true
		}
		var nullsFirst *bool
		if p.match(token.NULLS) {
			if p.match(token.FIRST) {
				t := true
				nullsFirst = &t
			} else if p.match(token.LAST) {
				f := false
				nullsFirst = &f
			} else {
				return nil, p.unexpected("FIRST or LAST")
			}
		}
		items = append(items, ast.OrderByItem{Expr: e, Desc: desc, NullsFirst: nullsFirst, Range: pos.Range{Start: start, End: p.prevEnd()}})
		if !p.matchPunct(",") {
			break
		}
	}
	return items, nil
}

func (p *parser) parseLimitClause() (*ast.LimitClause, error) {
	start := p.cur().Range.Start
	if p.match(token.LIMIT) {
		n, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		lc := &ast.LimitClause{Limit: &n}
		if p.match(token.OFFSET) {
			off, err := p.parseIntLiteral()
			if err != nil {
				return nil, err
			}
			lc.Offset = &off
		}
		lc.Range = pos.Range{Start: start, End: p.prevEnd()}
		return lc, nil
	}
	if p.match(token.OFFSET) {
		off, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		return &ast.LimitClause{Offset: &off, Range: pos.Range{Start: start, End: p.prevEnd()}}, nil
	}
	return nil, nil
}

func (p *parser) parseIntLiteral() (int64, error) {
	if !p.check(token.NUMBER) {
		return 0, p.unexpected("integer")
	}
	t := p.advance()
	if t.BigInt != nil {
		return t.BigInt.Int64(), nil
	}
	return int64(t.Num), nil
}

// expectNoAggregate walks e (not descending into subqueries, which have
// their own scope) and rejects any aggregate function call, per spec
// §4.2/§4.3 ("aggregate functions do not appear in WHERE, JOIN ON,
// GROUP BY").
func expectNoAggregate(e ast.Expr, clause string) error {
	var bad *ast.Function
	ast.Walk(e, func(n ast.Expr) {
		if f, ok := n.(*ast.Function); ok && ast.IsAggregateFunctionName(f.Name) {
			bad = f
		}
	})
	if bad != nil {
		return sqlerr.NewParseError(sqlerr.KindAggregateNotAllowed, bad.Range, bad.Name, clause)
	}
	return nil
}

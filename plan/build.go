package plan

import (
	"strings"

	"github.com/tessera-sql/sqlengine/ast"
)

// Build constructs a Plan from stmt, following the fixed bottom-up
// shape spec §4.3 describes:
//
//	Scan(base) -> [HashJoin|NestedLoopJoin|PositionalJoin]*
//	           -> Filter(where)?
//	           -> HashAggregate(columns) | ScalarAggregate(columns) | Project(columns)
//	           -> Sort(orderBy)?
//	           -> Distinct?
//	           -> Limit(limit, offset)?
func Build(stmt *ast.SelectStatement) (Node, error) {
	tables := tableAliases(stmt)

	if isBareCountStar(stmt) {
		return &Count{Table: stmt.From.Name, Alias: stmt.From.EffectiveName()}, nil
	}

	colsByTable := computeColumnHints(stmt, tables)

	var conjuncts []ast.Expr
	if stmt.Where != nil {
		conjuncts = splitConjuncts(stmt.Where)
	}

	pushed := make(map[string][]ast.Expr)
	var remaining []ast.Expr
	singleTable := ""
	if len(tables) == 1 {
		singleTable = tables[0]
	}
	for _, c := range conjuncts {
		table, ok := soleReferencedTable(c, tables, singleTable)
		if ok {
			pushed[table] = append(pushed[table], c)
		} else {
			remaining = append(remaining, c)
		}
	}

	canPushLimitOffset := len(stmt.Joins) == 0 && len(stmt.GroupBy) == 0 &&
		!ast.ContainsAggregate(selectExprList(stmt)) && len(stmt.OrderBy) == 0 && !stmt.Distinct &&
		len(remaining) == 0

	node := buildScan(stmt.From, colsByTable[stmt.From.EffectiveName()], pushed[stmt.From.EffectiveName()], stmt, canPushLimitOffset)

	for _, j := range stmt.Joins {
		right := buildScan(&j.Table, colsByTable[j.Table.EffectiveName()], pushed[j.Table.EffectiveName()], nil, false)
		node = buildJoin(node, right, tableAliasesSoFar(stmt, j), &j)
	}

	if len(remaining) > 0 {
		node = &Filter{Child: node, Condition: combineAnd(remaining)}
	}

	hasAgg := ast.ContainsAggregate(selectExprList(stmt)) || stmt.Having != nil && ast.ContainsAggregate(stmt.Having)
	switch {
	case len(stmt.GroupBy) > 0:
		node = &HashAggregate{Child: node, GroupBy: stmt.GroupBy, Columns: projectColumns(stmt.Columns), Having: stmt.Having}
	case hasAgg:
		node = &ScalarAggregate{Child: node, Columns: projectColumns(stmt.Columns), Having: stmt.Having}
	default:
		node = &Project{Child: node, Columns: projectColumns(stmt.Columns)}
	}

	if len(stmt.OrderBy) > 0 {
		node = &Sort{Child: node, OrderBy: stmt.OrderBy}
	}
	if stmt.Distinct {
		node = &Distinct{Child: node}
	}
	if stmt.Limit != nil {
		node = &Limit{Child: node, Limit: stmt.Limit.Limit, Offset: stmt.Limit.Offset}
	}
	return node, nil
}

func isBareCountStar(stmt *ast.SelectStatement) bool {
	if stmt.Where != nil || len(stmt.GroupBy) > 0 || len(stmt.Joins) > 0 || stmt.Having != nil {
		return false
	}
	if len(stmt.Columns) != 1 {
		return false
	}
	col := stmt.Columns[0]
	if col.Star || col.Expr == nil {
		return false
	}
	fn, ok := col.Expr.(*ast.Function)
	if !ok || strings.ToUpper(fn.Name) != "COUNT" || len(fn.Args) != 1 {
		return false
	}
	id, ok := fn.Args[0].(*ast.Identifier)
	return ok && id.Name == "*"
}

func buildScan(t *ast.TableRef, columns []string, where []ast.Expr, stmt *ast.SelectStatement, pushLimitOffset bool) Node {
	scan := &Scan{Table: t.Name, Alias: t.EffectiveName(), Columns: columns}
	if len(where) > 0 {
		scan.Where = combineAnd(where)
	}
	if pushLimitOffset && stmt != nil && stmt.Limit != nil {
		scan.Limit = stmt.Limit.Limit
		scan.Offset = stmt.Limit.Offset
	}
	return scan
}

func buildJoin(left, right Node, leftTables []string, j *ast.JoinClause) Node {
	rightTable := j.Table.EffectiveName()
	if j.Type == ast.PositionalJoinType {
		return &PositionalJoin{Left: left, Right: right, LeftTable: strings.Join(leftTables, ","), RightTable: rightTable}
	}
	if lk, rk, ok := equiJoinKeys(j.On, leftTables, rightTable); ok {
		return &HashJoin{Left: left, Right: right, LeftTable: strings.Join(leftTables, ","), RightTable: rightTable, LeftKey: lk, RightKey: rk, Type: j.Type}
	}
	return &NestedLoopJoin{Left: left, Right: right, LeftTable: strings.Join(leftTables, ","), RightTable: rightTable, On: j.On, Type: j.Type}
}

// equiJoinKeys reports whether on is a pure "left = right" equality
// where one operand is referentially a column of leftTables and the
// other of rightTable (spec §4.3 "Join-strategy choice").
func equiJoinKeys(on ast.Expr, leftTables []string, rightTable string) (leftKey, rightKey ast.Expr, ok bool) {
	bin, isBin := on.(*ast.Binary)
	if !isBin || bin.Op != ast.Eq {
		return nil, nil, false
	}
	lID, lOK := bin.L.(*ast.Identifier)
	rID, rOK := bin.R.(*ast.Identifier)
	if !lOK || !rOK {
		return nil, nil, false
	}
	lTable, _ := lID.Qualifier()
	rTable, _ := rID.Qualifier()
	if belongsTo(lTable, leftTables) && rTable == rightTable {
		return bin.L, bin.R, true
	}
	if belongsTo(rTable, leftTables) && lTable == rightTable {
		return bin.R, bin.L, true
	}
	return nil, nil, false
}

func belongsTo(table string, tables []string) bool {
	for _, t := range tables {
		if t == table {
			return true
		}
	}
	return false
}

func tableAliases(stmt *ast.SelectStatement) []string {
	out := []string{stmt.From.EffectiveName()}
	for _, j := range stmt.Joins {
		out = append(out, j.Table.EffectiveName())
	}
	return out
}

func tableAliasesSoFar(stmt *ast.SelectStatement, upTo ast.JoinClause) []string {
	out := []string{stmt.From.EffectiveName()}
	for _, j := range stmt.Joins {
		if j.Range == upTo.Range {
			break
		}
		out = append(out, j.Table.EffectiveName())
	}
	return out
}

func projectColumns(cols []ast.SelectColumn) []ProjectColumn {
	out := make([]ProjectColumn, len(cols))
	for i, c := range cols {
		out[i] = ProjectColumn{Star: c.Star, QualifiedStar: c.QualifiedStar, Expr: c.Expr, Alias: c.Alias}
	}
	return out
}

func selectExprList(stmt *ast.SelectStatement) ast.Expr {
	// ContainsAggregate walks a single node; wrap the column/having
	// expressions in a synthetic conjunction so one Walk covers all of
	// them (none of these nodes are ever evaluated directly).
	var exprs []ast.Expr
	for _, c := range stmt.Columns {
		if c.Expr != nil {
			exprs = append(exprs, c.Expr)
		}
	}
	for _, o := range stmt.OrderBy {
		exprs = append(exprs, o.Expr)
	}
	if len(exprs) == 0 {
		return &ast.Literal{}
	}
	return combineAnd(exprs)
}

func splitConjuncts(e ast.Expr) []ast.Expr {
	if b, ok := e.(*ast.Binary); ok && b.Op == ast.And {
		return append(splitConjuncts(b.L), splitConjuncts(b.R)...)
	}
	return []ast.Expr{e}
}

func combineAnd(exprs []ast.Expr) ast.Expr {
	if len(exprs) == 0 {
		return nil
	}
	out := exprs[0]
	for _, e := range exprs[1:] {
		out = &ast.Binary{Op: ast.And, L: out, R: e, Range: e.Pos()}
	}
	return out
}

// soleReferencedTable reports whether every identifier in e resolves to
// exactly one table (qualified explicitly, or implicitly when the query
// has only one table), returning that table.
func soleReferencedTable(e ast.Expr, tables []string, singleTable string) (string, bool) {
	idents := ast.Identifiers(e)
	found := ""
	for _, name := range idents {
		table := ""
		if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
			table = name[:dot]
		} else if singleTable != "" {
			table = singleTable
		} else {
			return "", false
		}
		if !belongsTo(table, tables) {
			return "", false
		}
		if found == "" {
			found = table
		} else if found != table {
			return "", false
		}
	}
	if found == "" {
		return "", false
	}
	return found, true
}

// computeColumnHints gathers, per table, the set of column names needed
// across the whole statement (spec §4.3 "Scan hints: columns"). A nil
// slice for a table means "all columns needed" (a star referenced that
// table); an unqualified identifier is added to every table's list.
func computeColumnHints(stmt *ast.SelectStatement, tables []string) map[string][]string {
	needed := make(map[string]map[string]bool, len(tables))
	allColumns := make(map[string]bool, len(tables))
	for _, t := range tables {
		needed[t] = make(map[string]bool)
	}

	addIdent := func(name string) {
		if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
			table, col := name[:dot], name[dot+1:]
			if belongsTo(table, tables) {
				needed[table][col] = true
			}
			return
		}
		for _, t := range tables {
			needed[t][name] = true
		}
	}

	var exprs []ast.Expr
	for _, c := range stmt.Columns {
		switch {
		case c.Star && c.QualifiedStar != "":
			allColumns[c.QualifiedStar] = true
		case c.Star:
			for _, t := range tables {
				allColumns[t] = true
			}
		default:
			exprs = append(exprs, c.Expr)
		}
	}
	if stmt.Where != nil {
		exprs = append(exprs, stmt.Where)
	}
	exprs = append(exprs, stmt.GroupBy...)
	if stmt.Having != nil {
		exprs = append(exprs, stmt.Having)
	}
	for _, o := range stmt.OrderBy {
		exprs = append(exprs, o.Expr)
	}
	for _, j := range stmt.Joins {
		if j.On != nil {
			exprs = append(exprs, j.On)
		}
	}
	for _, e := range exprs {
		for _, name := range ast.Identifiers(e) {
			addIdent(name)
		}
	}

	out := make(map[string][]string, len(tables))
	for _, t := range tables {
		if allColumns[t] {
			out[t] = nil
			continue
		}
		cols := make([]string, 0, len(needed[t]))
		for c := range needed[t] {
			cols = append(cols, c)
		}
		out[t] = cols
	}
	return out
}

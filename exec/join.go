package exec

import (
	"strings"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/expression"
	"github.com/tessera-sql/sqlengine/plan"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

// buildHashJoin evaluates LeftKey/RightKey against each side, probing an
// in-memory hash table built over the right side (spec §4.5 "Hash
// join"). NULL keys never match, per SQL equi-join semantics.
func buildHashJoin(n *plan.HashJoin, ctx *row.Context) (row.Iter, error) {
	leftRows, rightRows, err := drainSides(n.Left, n.Right, ctx)
	if err != nil {
		return nil, err
	}

	index := newKeyIndex()
	for i, rr := range rightRows {
		k, err := expression.Evaluate(n.RightKey, rr, ctx)
		if err != nil {
			return nil, err
		}
		if k.IsNull() {
			continue
		}
		index.add(value.Stringify(k), i)
	}

	rightCols := rawColumns(rightRows, n.RightTable)
	leftCols := rawColumns(leftRows, n.LeftTable)
	rightMatched := make([]bool, len(rightRows))

	var out []*row.Row
	for _, lr := range leftRows {
		lk, err := expression.Evaluate(n.LeftKey, lr, ctx)
		if err != nil {
			return nil, err
		}
		var matches []int
		if !lk.IsNull() {
			matches = index.lookup(value.Stringify(lk))
		}
		if len(matches) == 0 {
			if n.Type == ast.LeftJoin || n.Type == ast.FullJoin {
				out = append(out, row.Join(lr, row.NullPad(n.RightTable, rightCols)))
			}
			continue
		}
		for _, i := range matches {
			rightMatched[i] = true
			out = append(out, row.Join(lr, rightRows[i]))
		}
	}
	if n.Type == ast.RightJoin || n.Type == ast.FullJoin {
		for i, rr := range rightRows {
			if rightMatched[i] {
				continue
			}
			out = append(out, row.Join(row.NullPad(n.LeftTable, leftCols), rr))
		}
	}
	return &sliceIter{rows: out}, nil
}

// buildNestedLoopJoin evaluates On against every (left, right) pair
// (spec §4.5 "Nested-loop join"), used whenever the ON clause is not a
// pure equi-join the planner can hash.
func buildNestedLoopJoin(n *plan.NestedLoopJoin, ctx *row.Context) (row.Iter, error) {
	leftRows, rightRows, err := drainSides(n.Left, n.Right, ctx)
	if err != nil {
		return nil, err
	}
	rightCols := rawColumns(rightRows, n.RightTable)
	leftCols := rawColumns(leftRows, n.LeftTable)
	rightMatched := make([]bool, len(rightRows))

	var out []*row.Row
	for _, lr := range leftRows {
		matchedAny := false
		for i, rr := range rightRows {
			combined := row.Join(lr, rr)
			if n.On != nil {
				v, err := expression.Evaluate(n.On, combined, ctx)
				if err != nil {
					return nil, err
				}
				if v.IsNull() || !v.Truthy() {
					continue
				}
			}
			matchedAny = true
			rightMatched[i] = true
			out = append(out, combined)
		}
		if !matchedAny && (n.Type == ast.LeftJoin || n.Type == ast.FullJoin) {
			out = append(out, row.Join(lr, row.NullPad(n.RightTable, rightCols)))
		}
	}
	if n.Type == ast.RightJoin || n.Type == ast.FullJoin {
		for i, rr := range rightRows {
			if rightMatched[i] {
				continue
			}
			out = append(out, row.Join(row.NullPad(n.LeftTable, leftCols), rr))
		}
	}
	return &sliceIter{rows: out}, nil
}

// buildPositionalJoin pairs rows by index with no ON condition (spec
// §4.5 "Positional join"); the shorter side is NULL-padded out to the
// longer side's length.
func buildPositionalJoin(n *plan.PositionalJoin, ctx *row.Context) (row.Iter, error) {
	leftRows, rightRows, err := drainSides(n.Left, n.Right, ctx)
	if err != nil {
		return nil, err
	}
	rightCols := rawColumns(rightRows, n.RightTable)
	leftCols := rawColumns(leftRows, n.LeftTable)

	count := len(leftRows)
	if len(rightRows) > count {
		count = len(rightRows)
	}
	out := make([]*row.Row, count)
	for i := 0; i < count; i++ {
		var lr, rr *row.Row
		if i < len(leftRows) {
			lr = leftRows[i]
		} else {
			lr = row.NullPad(n.LeftTable, leftCols)
		}
		if i < len(rightRows) {
			rr = rightRows[i]
		} else {
			rr = row.NullPad(n.RightTable, rightCols)
		}
		out[i] = row.Join(lr, rr)
	}
	return &sliceIter{rows: out}, nil
}

func drainSides(leftNode, rightNode plan.Node, ctx *row.Context) (left, right []*row.Row, err error) {
	leftIt, err := Build(leftNode, ctx)
	if err != nil {
		return nil, nil, err
	}
	left, err = drain(leftIt, ctx)
	if err != nil {
		return nil, nil, err
	}
	rightIt, err := Build(rightNode, ctx)
	if err != nil {
		return nil, nil, err
	}
	right, err = drain(rightIt, ctx)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// rawColumns recovers the bare ("table.col" with the prefix stripped)
// column names a NullPad needs to match side's shape, from the first
// available row; an empty side yields no columns (a documented
// limitation for all-empty tables under an outer join). When alias
// names more than one table (the left side of a 3+ table join chain),
// the prefix won't match and columns come back already-qualified by
// their original table; qualified lookups against that padded row
// still resolve correctly, only the outer re-qualification is skipped.
func rawColumns(rows []*row.Row, alias string) []string {
	if len(rows) == 0 {
		return nil
	}
	r := rows[0]
	prefix := alias + "."
	cols := make([]string, 0, len(r.Primary))
	for _, idx := range r.Primary {
		name := r.Columns[idx]
		cols = append(cols, strings.TrimPrefix(name, prefix))
	}
	return cols
}

package exec

import (
	"strings"

	"github.com/tessera-sql/sqlengine/expression"
	"github.com/tessera-sql/sqlengine/plan"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

// buildHashAggregate groups child by GroupBy, preserving first-seen
// group order, then emits Columns (and drops groups HAVING rejects) per
// group (spec §4.6 "GROUP BY").
func buildHashAggregate(n *plan.HashAggregate, ctx *row.Context) (row.Iter, error) {
	child, err := Build(n.Child, ctx)
	if err != nil {
		return nil, err
	}
	rows, err := drain(child, ctx)
	if err != nil {
		return nil, err
	}

	index := newKeyIndex()
	var order []string
	for i, r := range rows {
		var key strings.Builder
		for _, e := range n.GroupBy {
			v, err := expression.Evaluate(e, r, ctx)
			if err != nil {
				return nil, err
			}
			key.WriteString(value.Stringify(v))
			key.WriteByte('\x1f')
		}
		k := key.String()
		if len(index.lookup(k)) == 0 {
			order = append(order, k)
		}
		index.add(k, i)
	}

	var out []*row.Row
	for _, k := range order {
		idxs := index.lookup(k)
		groupRows := make([]*row.Row, len(idxs))
		for j, idx := range idxs {
			groupRows[j] = rows[idx]
		}
		rep := groupRows[0]
		groupCtx := ctx.WithGroup(groupRows)
		if n.Having != nil {
			v, err := expression.Evaluate(n.Having, rep, groupCtx)
			if err != nil {
				return nil, err
			}
			if v.IsNull() || !v.Truthy() {
				continue
			}
		}
		outRow, err := renderColumns(n.Columns, rep, groupCtx)
		if err != nil {
			return nil, err
		}
		out = append(out, outRow)
	}
	return &sliceIter{rows: out}, nil
}

// buildScalarAggregate treats all of child as a single group, always
// emitting exactly one row, even over zero input rows (spec §4.6
// "Aggregation without GROUP BY").
func buildScalarAggregate(n *plan.ScalarAggregate, ctx *row.Context) (row.Iter, error) {
	child, err := Build(n.Child, ctx)
	if err != nil {
		return nil, err
	}
	rows, err := drain(child, ctx)
	if err != nil {
		return nil, err
	}

	groupCtx := ctx.WithGroup(rows)
	var rep *row.Row
	if len(rows) > 0 {
		rep = rows[0]
	} else {
		rep = row.New(nil, nil)
	}
	if n.Having != nil {
		v, err := expression.Evaluate(n.Having, rep, groupCtx)
		if err != nil {
			return nil, err
		}
		if v.IsNull() || !v.Truthy() {
			return &sliceIter{}, nil
		}
	}
	outRow, err := renderColumns(n.Columns, rep, groupCtx)
	if err != nil {
		return nil, err
	}
	return &sliceIter{rows: []*row.Row{outRow}}, nil
}

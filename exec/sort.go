package exec

import (
	"sort"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/expression"
	"github.com/tessera-sql/sqlengine/plan"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

// buildSort materializes child fully, ranks it by n.OrderBy (multi-key,
// stable, default NULLs-low per spec §4.6/§9), then streams it back.
func buildSort(n *plan.Sort, ctx *row.Context) (row.Iter, error) {
	child, err := Build(n.Child, ctx)
	if err != nil {
		return nil, err
	}
	rows, err := drain(child, ctx)
	if err != nil {
		return nil, err
	}

	keys := make([][]value.SqlValue, len(rows))
	for i, r := range rows {
		vals := make([]value.SqlValue, len(n.OrderBy))
		for k, item := range n.OrderBy {
			v, err := expression.Evaluate(item.Expr, r, ctx)
			if err != nil {
				return nil, err
			}
			vals[k] = v
		}
		keys[i] = vals
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return less(keys[idx[a]], keys[idx[b]], n.OrderBy, ctx.NullsFirstDefault)
	})

	out := make([]*row.Row, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return &sliceIter{rows: out}, nil
}

func less(a, b []value.SqlValue, items []ast.OrderByItem, defaultNullsFirst *bool) bool {
	for k, item := range items {
		av, bv := a[k], b[k]
		nullsFirst := !item.Desc // spec §4.6/§9 default: "NULLs low"
		if defaultNullsFirst != nil {
			nullsFirst = *defaultNullsFirst
		}
		if item.NullsFirst != nil {
			nullsFirst = *item.NullsFirst
		}
		switch {
		case av.IsNull() && bv.IsNull():
			continue
		case av.IsNull():
			return nullsFirst
		case bv.IsNull():
			return !nullsFirst
		}
		c := value.Compare(av, bv)
		if c == 0 {
			continue
		}
		if item.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

// drain pulls every row from it into a slice, closing it afterward.
func drain(it row.Iter, ctx *row.Context) ([]*row.Row, error) {
	defer it.Close(ctx)
	var out []*row.Row
	for {
		if ctx.Cancelled() {
			return out, nil
		}
		r, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return out, nil
		}
		out = append(out, r)
	}
}

// sliceIter replays a materialized row slice.
type sliceIter struct {
	rows []*row.Row
	pos  int
}

func (it *sliceIter) Next(ctx *row.Context) (*row.Row, error) {
	if ctx.Cancelled() || it.pos >= len(it.rows) {
		return nil, nil
	}
	r := it.rows[it.pos]
	it.pos++
	return r, nil
}

func (it *sliceIter) Close(ctx *row.Context) error { return nil }

package exec

import (
	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/expression"
	"github.com/tessera-sql/sqlengine/row"
)

// filterIter keeps rows from child for which condition is truthy (spec
// §4.4: a NULL or FALSE predicate result drops the row).
type filterIter struct {
	child     row.Iter
	condition ast.Expr
	index     int64
}

func (it *filterIter) Next(ctx *row.Context) (*row.Row, error) {
	for {
		if ctx.Cancelled() {
			return nil, nil
		}
		r, err := it.child.Next(ctx)
		if err != nil || r == nil {
			return nil, err
		}
		it.index++
		rowCtx := ctx.WithRowIndex(it.index)
		v, err := expression.Evaluate(it.condition, r, rowCtx)
		if err != nil {
			return nil, err
		}
		if !v.IsNull() && v.Truthy() {
			return r, nil
		}
	}
}

func (it *filterIter) Close(ctx *row.Context) error { return it.child.Close(ctx) }

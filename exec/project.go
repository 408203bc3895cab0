package exec

import (
	"strings"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/expression"
	"github.com/tessera-sql/sqlengine/plan"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

// projectIter evaluates columns against each row of child, in order,
// expanding any Star/QualifiedStar entries against the child row's own
// Primary columns since there is no static schema to consult (spec §4.3
// Project).
type projectIter struct {
	child   row.Iter
	columns []plan.ProjectColumn
	index   int64
}

func (it *projectIter) Next(ctx *row.Context) (*row.Row, error) {
	r, err := it.child.Next(ctx)
	if err != nil || r == nil {
		return nil, err
	}
	it.index++
	return renderColumns(it.columns, r, ctx.WithRowIndex(it.index))
}

func (it *projectIter) Close(ctx *row.Context) error { return it.child.Close(ctx) }

// renderColumns builds one output row from columns, evaluated against
// r under ctx; used by both plain projection and the aggregate
// operators' output stage since star expansion and derived-expression
// evaluation work the same way in both.
func renderColumns(columns []plan.ProjectColumn, r *row.Row, ctx *row.Context) (*row.Row, error) {
	var outCols []string
	var outCells []row.Thunk
	for _, c := range columns {
		switch {
		case c.Star && c.QualifiedStar != "":
			prefix := c.QualifiedStar + "."
			for _, idx := range r.Primary {
				name := r.Columns[idx]
				if !strings.HasPrefix(name, prefix) {
					continue
				}
				idx := idx
				outCols = append(outCols, name[len(prefix):])
				outCells = append(outCells, func() (value.SqlValue, error) { return r.Get(idx) })
			}
		case c.Star:
			for _, idx := range r.Primary {
				idx := idx
				outCols = append(outCols, r.Columns[idx])
				outCells = append(outCells, func() (value.SqlValue, error) { return r.Get(idx) })
			}
		default:
			expr := c.Expr
			outCols = append(outCols, columnLabel(c))
			outCells = append(outCells, func() (value.SqlValue, error) { return expression.Evaluate(expr, r, ctx) })
		}
	}
	return row.New(outCols, outCells), nil
}

// columnLabel picks the output name for a derived projection column:
// its explicit alias, a bare identifier's own (unqualified) name, a
// function call's name, or a generic positional fallback.
func columnLabel(c plan.ProjectColumn) string {
	if c.Alias != "" {
		return c.Alias
	}
	switch e := c.Expr.(type) {
	case *ast.Identifier:
		_, col := e.Qualifier()
		return col
	case *ast.Function:
		return e.Name
	default:
		return "?column?"
	}
}

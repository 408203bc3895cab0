// Package exec is the pull-based executor (spec §4.3 rowexec-style
// operators, §5 scheduling/ordering/cancellation guarantees): it turns
// a plan.Node into a row.Iter, one operator type per plan node.
package exec

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tessera-sql/sqlengine/plan"
	"github.com/tessera-sql/sqlengine/pos"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/value"
)

var zeroRange = pos.Range{}

// Build turns a plan node into its executing RowIter.
func Build(node plan.Node, ctx *row.Context) (row.Iter, error) {
	switch n := node.(type) {
	case *plan.Scan:
		return buildScan(n, ctx)
	case *plan.Count:
		return buildCount(n, ctx)
	case *plan.Filter:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return &filterIter{child: child, condition: n.Condition}, nil
	case *plan.Project:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return &projectIter{child: child, columns: n.Columns}, nil
	case *plan.HashJoin:
		return buildHashJoin(n, ctx)
	case *plan.NestedLoopJoin:
		return buildNestedLoopJoin(n, ctx)
	case *plan.PositionalJoin:
		return buildPositionalJoin(n, ctx)
	case *plan.HashAggregate:
		return buildHashAggregate(n, ctx)
	case *plan.ScalarAggregate:
		return buildScalarAggregate(n, ctx)
	case *plan.Sort:
		return buildSort(n, ctx)
	case *plan.Distinct:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return &distinctIter{child: child, seen: newKeyIndex()}, nil
	case *plan.Limit:
		child, err := Build(n.Child, ctx)
		if err != nil {
			return nil, err
		}
		return &limitIter{child: child, limit: n.Limit, offset: n.Offset}, nil
	default:
		return nil, fmt.Errorf("exec: unhandled plan node %T", node)
	}
}

func buildScan(n *plan.Scan, ctx *row.Context) (row.Iter, error) {
	ds, ok := ctx.Tables[n.Table]
	if !ok {
		return nil, sqlerr.NewExecutionError(sqlerr.KindTableNotFound, zeroRange, nil, n.Table)
	}
	res, err := ds.Scan(ctx, row.ScanOptions{Columns: n.Columns, Where: n.Where, Limit: n.Limit, Offset: n.Offset, Signal: ctx.Signal})
	if err != nil {
		return nil, wrapSourceError(err, n.Table)
	}
	if res.AppliedLimitOffset && !res.AppliedWhere && n.Where != nil {
		return nil, sqlerr.NewExecutionError(sqlerr.KindDataSourceContract, zeroRange, nil, n.Table)
	}
	it := res.Rows
	if n.Where != nil && !res.AppliedWhere {
		it = &filterIter{child: it, condition: n.Where}
	}
	if !res.AppliedLimitOffset && (n.Limit != nil || n.Offset != nil) {
		it = &limitIter{child: it, limit: n.Limit, offset: n.Offset}
	}
	return &aliasIter{child: it, alias: n.Alias}, nil
}

func buildCount(n *plan.Count, ctx *row.Context) (row.Iter, error) {
	ds, ok := ctx.Tables[n.Table]
	if !ok {
		return nil, sqlerr.NewExecutionError(sqlerr.KindTableNotFound, zeroRange, nil, n.Table)
	}
	if nr, ok := ds.NumRows(ctx); ok {
		return &onceIter{row: row.FromValues([]string{"COUNT(*)"}, []value.SqlValue{value.Int64(nr)})}, nil
	}
	res, err := ds.Scan(ctx, row.ScanOptions{Signal: ctx.Signal})
	if err != nil {
		return nil, wrapSourceError(err, n.Table)
	}
	defer res.Rows.Close(ctx)
	count := int64(0)
	for {
		r, err := res.Rows.Next(ctx)
		if err != nil {
			return nil, err
		}
		if r == nil {
			break
		}
		count++
	}
	return &onceIter{row: row.FromValues([]string{"COUNT(*)"}, []value.SqlValue{value.Int64(count)})}, nil
}

// onceIter yields a single precomputed row, then ends (used by Count).
type onceIter struct {
	row  *row.Row
	done bool
}

func (it *onceIter) Next(ctx *row.Context) (*row.Row, error) {
	if it.done || ctx.Cancelled() {
		return nil, nil
	}
	it.done = true
	return it.row, nil
}

func (it *onceIter) Close(ctx *row.Context) error { return nil }

// aliasIter rewrites a freshly scanned row's bare columns into both
// "alias.column" and bare "column" form, so downstream qualified
// lookups ("t.c") work against base table scans, not just joins.
type aliasIter struct {
	child row.Iter
	alias string
}

func (it *aliasIter) Next(ctx *row.Context) (*row.Row, error) {
	r, err := it.child.Next(ctx)
	if err != nil || r == nil {
		return nil, err
	}
	return row.Qualify(it.alias, r), nil
}

func (it *aliasIter) Close(ctx *row.Context) error { return it.child.Close(ctx) }

// wrapSourceError attaches table context to a raw error a DataSource
// returned, via github.com/pkg/errors, before it surfaces to the
// caller; a source that already raises a structured sqlerr is passed
// through untouched.
func wrapSourceError(err error, table string) error {
	switch err.(type) {
	case *sqlerr.ExecutionError, *sqlerr.ParseError:
		return err
	}
	return errors.Wrapf(err, "scanning table %q", table)
}

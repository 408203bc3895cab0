package exec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/datasource"
	"github.com/tessera-sql/sqlengine/plan"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/value"
)

func id(name string) ast.Expr { return &ast.Identifier{Name: name} }

func newCtx(tables map[string]row.DataSource) *row.Context {
	return &row.Context{Tables: tables}
}

func usersTable() row.DataSource {
	return datasource.NewArray([]string{"id", "name"}, [][]value.SqlValue{
		{value.Int64(1), value.String("alice")},
		{value.Int64(2), value.String("bob")},
		{value.Int64(3), value.String("carol")},
	})
}

func readAll(t *testing.T, it row.Iter, ctx *row.Context) []*row.Row {
	t.Helper()
	defer it.Close(ctx)
	var out []*row.Row
	for {
		r, err := it.Next(ctx)
		require.NoError(t, err)
		if r == nil {
			return out
		}
		out = append(out, r)
	}
}

func TestBuildScanQualifiesRowsAndAppliesWhere(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{"users": usersTable()})
	scan := &plan.Scan{
		Table: "users", Alias: "u",
		Where: &ast.Binary{Op: ast.Gt, L: id("id"), R: &ast.Literal{Value: value.Int64(1)}},
	}
	it, err := Build(scan, ctx)
	require.NoError(err)
	rows := readAll(t, it, ctx)
	require.Len(rows, 2)
	v, ok, err := rows[0].Lookup("u.name")
	require.True(ok)
	require.NoError(err)
	require.Equal("bob", v.String())
}

func TestBuildScanUnknownTableIsExecutionError(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{})
	_, err := Build(&plan.Scan{Table: "missing"}, ctx)
	require.Error(err)
	var execErr *sqlerr.ExecutionError
	require.ErrorAs(err, &execErr)
}

func TestBuildCountUsesNumRowsShortcut(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{"users": usersTable()})
	it, err := Build(&plan.Count{Table: "users"}, ctx)
	require.NoError(err)
	rows := readAll(t, it, ctx)
	require.Len(rows, 1)
	v, err := rows[0].Get(0)
	require.NoError(err)
	require.Equal(int64(3), v.Int64())
}

func TestBuildProjectStarAndDerivedColumn(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{"users": usersTable()})
	proj := &plan.Project{
		Child: &plan.Scan{Table: "users", Alias: "u"},
		Columns: []plan.ProjectColumn{
			{Star: true},
			{Expr: id("u.name"), Alias: "who"},
		},
	}
	it, err := Build(proj, ctx)
	require.NoError(err)
	rows := readAll(t, it, ctx)
	require.Len(rows, 3)
	require.Contains(rows[0].Columns, "who")
	v, ok, err := rows[0].Lookup("who")
	require.True(ok)
	require.NoError(err)
	require.Equal("alice", v.String())
}

func TestBuildLimitOffset(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{"users": usersTable()})
	limit := int64(1)
	offset := int64(1)
	node := &plan.Limit{Child: &plan.Scan{Table: "users", Alias: "u"}, Limit: &limit, Offset: &offset}
	it, err := Build(node, ctx)
	require.NoError(err)
	rows := readAll(t, it, ctx)
	require.Len(rows, 1)
	v, _, err := rows[0].Lookup("u.name")
	require.NoError(err)
	require.Equal("bob", v.String())
}

func TestBuildDistinctDedupesByCanonicalKey(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{"numbers": datasource.NewArray(
		[]string{"n"},
		[][]value.SqlValue{{value.Int64(1)}, {value.Int64(1)}, {value.Int64(2)}},
	)})
	it, err := Build(&plan.Distinct{Child: &plan.Scan{Table: "numbers", Alias: "t"}}, ctx)
	require.NoError(err)
	out := readAll(t, it, ctx)
	require.Len(out, 2)
}

func TestBuildSortOrdersWithNullsLowDefault(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{"numbers": datasource.NewArray(
		[]string{"n"},
		[][]value.SqlValue{{value.Int64(3)}, {value.Null}, {value.Int64(1)}},
	)})
	node := &plan.Sort{Child: &plan.Scan{Table: "numbers", Alias: "t"}, OrderBy: []ast.OrderByItem{{Expr: id("n")}}}
	it, err := Build(node, ctx)
	require.NoError(err)
	out := readAll(t, it, ctx)
	require.Len(out, 3)
	v0, _, err := out[0].Lookup("n")
	require.NoError(err)
	require.True(v0.IsNull(), "NULLs sort low by default")
	v1, _, err := out[1].Lookup("n")
	require.NoError(err)
	require.Equal(int64(1), v1.Int64())
}

func abTables() map[string]row.DataSource {
	return map[string]row.DataSource{
		"a": datasource.NewArray([]string{"id"}, [][]value.SqlValue{{value.Int64(1)}, {value.Int64(2)}}),
		"b": datasource.NewArray([]string{"a_id"}, [][]value.SqlValue{{value.Int64(1)}}),
	}
}

func TestBuildHashJoinLeftJoinPadsUnmatchedRows(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(abTables())
	join := &plan.HashJoin{
		Left: &plan.Scan{Table: "a", Alias: "a"}, Right: &plan.Scan{Table: "b", Alias: "b"},
		LeftTable: "a", RightTable: "b",
		LeftKey: id("a.id"), RightKey: id("b.a_id"),
		Type: ast.LeftJoin,
	}
	it, err := Build(join, ctx)
	require.NoError(err)
	out := readAll(t, it, ctx)
	require.Len(out, 2)
	v, ok, err := out[1].Lookup("b.a_id")
	require.True(ok)
	require.NoError(err)
	require.True(v.IsNull(), "unmatched left row should be NULL-padded on the right side")
}

func TestBuildNestedLoopJoinInner(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{
		"a": datasource.NewArray([]string{"id"}, [][]value.SqlValue{{value.Int64(1)}, {value.Int64(2)}}),
		"b": datasource.NewArray([]string{"id"}, [][]value.SqlValue{{value.Int64(2)}}),
	})
	join := &plan.NestedLoopJoin{
		Left: &plan.Scan{Table: "a", Alias: "a"}, Right: &plan.Scan{Table: "b", Alias: "b"},
		LeftTable: "a", RightTable: "b",
		On:   &ast.Binary{Op: ast.Lt, L: id("a.id"), R: id("b.id")},
		Type: ast.InnerJoin,
	}
	it, err := Build(join, ctx)
	require.NoError(err)
	out := readAll(t, it, ctx)
	require.Len(out, 1)
}

func TestBuildPositionalJoinPadsShorterSide(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{
		"a": datasource.NewArray([]string{"id"}, [][]value.SqlValue{{value.Int64(1)}, {value.Int64(2)}}),
		"b": datasource.NewArray([]string{"id"}, [][]value.SqlValue{{value.Int64(9)}}),
	})
	join := &plan.PositionalJoin{
		Left: &plan.Scan{Table: "a", Alias: "a"}, Right: &plan.Scan{Table: "b", Alias: "b"},
		LeftTable: "a", RightTable: "b",
	}
	it, err := Build(join, ctx)
	require.NoError(err)
	out := readAll(t, it, ctx)
	require.Len(out, 2)
	v, ok, err := out[1].Lookup("b.id")
	require.True(ok)
	require.NoError(err)
	require.True(v.IsNull())
}

func TestBuildHashAggregateGroupsAndAppliesHaving(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{"emp": datasource.NewArray(
		[]string{"dept", "amount"},
		[][]value.SqlValue{
			{value.String("eng"), value.Int64(10)},
			{value.String("eng"), value.Int64(20)},
			{value.String("sales"), value.Int64(5)},
		},
	)})
	agg := &plan.HashAggregate{
		Child:   &plan.Scan{Table: "emp", Alias: "e"},
		GroupBy: []ast.Expr{id("dept")},
		Columns: []plan.ProjectColumn{
			{Expr: id("dept"), Alias: "dept"},
			{Expr: &ast.Function{Name: "SUM", Args: []ast.Expr{id("amount")}}, Alias: "total"},
		},
		Having: &ast.Binary{Op: ast.Gt, L: &ast.Function{Name: "SUM", Args: []ast.Expr{id("amount")}}, R: &ast.Literal{Value: value.Int64(10)}},
	}
	it, err := Build(agg, ctx)
	require.NoError(err)
	out := readAll(t, it, ctx)
	require.Len(out, 1, "only eng's total (30) passes HAVING SUM(amount) > 10")
	v, _, err := out[0].Lookup("dept")
	require.NoError(err)
	require.Equal("eng", v.String())
}

func TestBuildScalarAggregateOverEmptyInputStillEmitsOneRow(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{"emp": datasource.NewArray([]string{"n"}, nil)})
	agg := &plan.ScalarAggregate{
		Child:   &plan.Scan{Table: "emp", Alias: "e"},
		Columns: []plan.ProjectColumn{{Expr: &ast.Function{Name: "COUNT", Args: []ast.Expr{id("*")}}, Alias: "c"}},
	}
	it, err := Build(agg, ctx)
	require.NoError(err)
	out := readAll(t, it, ctx)
	require.Len(out, 1)
	v, _, err := out[0].Lookup("c")
	require.NoError(err)
	require.Equal(int64(0), v.Int64())
}

func TestCancelledContextStopsScan(t *testing.T) {
	require := require.New(t)

	ctx := newCtx(map[string]row.DataSource{"users": usersTable()})
	ctx.Signal = cancelledSignal{}
	it, err := Build(&plan.Scan{Table: "users", Alias: "u"}, ctx)
	require.NoError(err)
	out := readAll(t, it, ctx)
	require.Empty(out)
}

type cancelledSignal struct{}

func (cancelledSignal) Cancelled() bool { return true }

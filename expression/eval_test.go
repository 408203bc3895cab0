package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

func lit(v value.SqlValue) ast.Expr { return &ast.Literal{Value: v} }
func ident(name string) ast.Expr    { return &ast.Identifier{Name: name} }

func binary(op ast.BinaryOp, l, r ast.Expr) ast.Expr { return &ast.Binary{Op: op, L: l, R: r} }

func evalOk(t *testing.T, n ast.Expr, r *row.Row) value.SqlValue {
	t.Helper()
	ctx := &row.Context{}
	v, err := Evaluate(n, r, ctx)
	require.NoError(t, err)
	return v
}

func TestEvaluateLiteralAndIdentifier(t *testing.T) {
	require := require.New(t)

	r := row.FromValues([]string{"a"}, []value.SqlValue{value.Int64(42)})
	require.Equal(int64(7), evalOk(t, lit(value.Int64(7)), r).Int64())
	require.Equal(int64(42), evalOk(t, ident("a"), r).Int64())
}

func TestEvaluateIdentifierUnknownColumnSuggestsClosest(t *testing.T) {
	require := require.New(t)

	r := row.FromValues([]string{"name", "age"}, []value.SqlValue{value.String("x"), value.Int64(1)})
	_, err := Evaluate(ident("nam"), r, &row.Context{})
	require.Error(err)
	require.Contains(err.Error(), "maybe you mean name")
}

func TestComparisonWithNullYieldsFalseNotNull(t *testing.T) {
	require := require.New(t)

	v := evalOk(t, binary(ast.Eq, lit(value.Null), lit(value.Int64(1))), nil)
	require.Equal(false, v.Bool())
	require.False(v.IsNull())
}

func TestAndOrThreeValuedLogic(t *testing.T) {
	require := require.New(t)

	// NULL AND FALSE -> FALSE (short-circuits once either side is known false)
	v := evalOk(t, binary(ast.And, lit(value.Null), lit(value.Bool(false))), nil)
	require.False(v.IsNull())
	require.False(v.Bool())

	// NULL AND TRUE -> NULL
	v = evalOk(t, binary(ast.And, lit(value.Null), lit(value.Bool(true))), nil)
	require.True(v.IsNull())

	// NULL OR TRUE -> TRUE
	v = evalOk(t, binary(ast.Or, lit(value.Null), lit(value.Bool(true))), nil)
	require.False(v.IsNull())
	require.True(v.Bool())

	// NULL OR FALSE -> NULL
	v = evalOk(t, binary(ast.Or, lit(value.Null), lit(value.Bool(false))), nil)
	require.True(v.IsNull())

	// FALSE AND <anything> short-circuits without evaluating the right side.
	v = evalOk(t, binary(ast.And, lit(value.Bool(false)), ident("boom")), nil)
	require.False(v.Bool())
}

func TestArithmetic(t *testing.T) {
	require := require.New(t)

	v := evalOk(t, binary(ast.Add, lit(value.Int64(2)), lit(value.Int64(3))), nil)
	require.Equal(int64(5), v.Int64())

	v = evalOk(t, binary(ast.Div, lit(value.Int64(1)), lit(value.Int64(0))), nil)
	require.True(v.IsNull())
}

func TestLikeIsCaseInsensitive(t *testing.T) {
	require := require.New(t)

	v := evalOk(t, binary(ast.Like, lit(value.String("Hello World")), lit(value.String("hello%"))), nil)
	require.True(v.Bool())
}

func TestBetween(t *testing.T) {
	require := require.New(t)

	n := &ast.Between{Expr: lit(value.Int64(5)), Lo: lit(value.Int64(1)), Hi: lit(value.Int64(10))}
	require.True(evalOk(t, n, nil).Bool())

	n2 := &ast.Between{Expr: lit(value.Null), Lo: lit(value.Int64(1)), Hi: lit(value.Int64(10))}
	v := evalOk(t, n2, nil)
	require.False(v.IsNull())
	require.False(v.Bool())
}

func TestInList(t *testing.T) {
	require := require.New(t)

	n := &ast.InList{Expr: lit(value.Int64(2)), Values: []ast.Expr{lit(value.Int64(1)), lit(value.Int64(2))}}
	require.True(evalOk(t, n, nil).Bool())

	neg := &ast.NotInList{Expr: lit(value.Int64(3)), Values: []ast.Expr{lit(value.Int64(1)), lit(value.Int64(2))}}
	require.True(evalOk(t, neg, nil).Bool())
}

func TestCaseSimpleAndSearched(t *testing.T) {
	require := require.New(t)

	simple := &ast.Case{
		CaseExpr: lit(value.Int64(2)),
		Whens: []ast.WhenClause{
			{Condition: lit(value.Int64(1)), Result: lit(value.String("one"))},
			{Condition: lit(value.Int64(2)), Result: lit(value.String("two"))},
		},
		Else: lit(value.String("other")),
	}
	require.Equal("two", evalOk(t, simple, nil).String())

	searched := &ast.Case{
		Whens: []ast.WhenClause{
			{Condition: lit(value.Bool(false)), Result: lit(value.String("no"))},
			{Condition: lit(value.Bool(true)), Result: lit(value.String("yes"))},
		},
	}
	require.Equal("yes", evalOk(t, searched, nil).String())
}

func TestCastToIntAndText(t *testing.T) {
	require := require.New(t)

	toInt := &ast.Cast{Expr: lit(value.Float64(3.9)), ToType: "INT"}
	require.Equal(int64(3), evalOk(t, toInt, nil).Int64())

	toText := &ast.Cast{Expr: lit(value.Int64(5)), ToType: "TEXT"}
	require.Equal("5", evalOk(t, toText, nil).String())

	null := &ast.Cast{Expr: lit(value.Null), ToType: "INT"}
	require.True(evalOk(t, null, nil).IsNull())
}

func TestAggregateSumOverEmptyGroupIsNull(t *testing.T) {
	require := require.New(t)

	fn := &ast.Function{Name: "SUM", Args: []ast.Expr{ident("n")}}
	ctx := (&row.Context{}).WithGroup(nil)
	v, err := Evaluate(fn, nil, ctx)
	require.NoError(err)
	require.True(v.IsNull())
}

func TestAggregateCountStarOverGroup(t *testing.T) {
	require := require.New(t)

	group := []*row.Row{
		row.FromValues([]string{"n"}, []value.SqlValue{value.Int64(1)}),
		row.FromValues([]string{"n"}, []value.SqlValue{value.Int64(2)}),
	}
	fn := &ast.Function{Name: "COUNT", Args: []ast.Expr{ident("*")}}
	ctx := (&row.Context{}).WithGroup(group)
	v, err := Evaluate(fn, group[0], ctx)
	require.NoError(err)
	require.Equal(int64(2), v.Int64())
}

func TestUnknownFunctionErrorIncludesName(t *testing.T) {
	require := require.New(t)

	fn := &ast.Function{Name: "NOPE"}
	_, err := Evaluate(fn, nil, &row.Context{})
	require.Error(err)
	require.Contains(err.Error(), "NOPE")
}

func TestScalarFunctionDispatch(t *testing.T) {
	require := require.New(t)

	fn := &ast.Function{Name: "UPPER", Args: []ast.Expr{lit(value.String("abc"))}}
	v := evalOk(t, fn, nil)
	require.Equal("ABC", v.String())
}

// stubRows plans any subquery to the fixed single-column stream vals.
func stubRows(vals ...int64) row.PlanAndRunFunc {
	rows := make([]*row.Row, len(vals))
	for i, v := range vals {
		rows[i] = row.FromValues([]string{"n"}, []value.SqlValue{value.Int64(v)})
	}
	return func(ctx *row.Context, stmt *ast.SelectStatement) (row.Iter, error) {
		return &stubIter{rows: rows}, nil
	}
}

type stubIter struct {
	rows []*row.Row
	pos  int
}

func (it *stubIter) Next(ctx *row.Context) (*row.Row, error) {
	if it.pos >= len(it.rows) {
		return nil, nil
	}
	r := it.rows[it.pos]
	it.pos++
	return r, nil
}

func (it *stubIter) Close(ctx *row.Context) error { return nil }

func TestInSubqueryMembership(t *testing.T) {
	require := require.New(t)

	ctx := &row.Context{PlanAndRun: stubRows(1, 2, 3)}
	n := &ast.InSubquery{Expr: lit(value.Int64(2)), Subquery: &ast.SelectStatement{}}
	v, err := Evaluate(n, nil, ctx)
	require.NoError(err)
	require.True(v.Bool())

	neg := &ast.NotInSubquery{Expr: lit(value.Int64(9)), Subquery: &ast.SelectStatement{}}
	v, err = Evaluate(neg, nil, ctx)
	require.NoError(err)
	require.True(v.Bool())
}

func TestExistsAndNotExists(t *testing.T) {
	require := require.New(t)

	present := &row.Context{PlanAndRun: stubRows(1)}
	v, err := Evaluate(&ast.Exists{Subquery: &ast.SelectStatement{}}, nil, present)
	require.NoError(err)
	require.True(v.Bool())

	empty := &row.Context{PlanAndRun: stubRows()}
	v, err = Evaluate(&ast.NotExists{Subquery: &ast.SelectStatement{}}, nil, empty)
	require.NoError(err)
	require.True(v.Bool())
}

func TestScalarSubqueryReturnsFirstRowFirstColumn(t *testing.T) {
	require := require.New(t)

	ctx := &row.Context{PlanAndRun: stubRows(42)}
	v, err := Evaluate(&ast.Subquery{Select: &ast.SelectStatement{}}, nil, ctx)
	require.NoError(err)
	require.Equal(int64(42), v.Int64())
}

func TestScalarSubqueryOverEmptyResultIsNull(t *testing.T) {
	require := require.New(t)

	ctx := &row.Context{PlanAndRun: stubRows()}
	v, err := Evaluate(&ast.Subquery{Select: &ast.SelectStatement{}}, nil, ctx)
	require.NoError(err)
	require.True(v.IsNull())
}

package expression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

func TestIntervalArithAddsDaysToDate(t *testing.T) {
	require := require.New(t)

	n := &ast.Binary{
		Op: ast.PlusInterval,
		L:  lit(value.Date("2024-01-01")),
		R:  &ast.Interval{Value: lit(value.Int64(5)), Unit: ast.UnitDay},
	}
	v := evalOk(t, n, nil)
	require.Equal("2024-01-06", v.String())
}

func TestIntervalArithSubtractsMonths(t *testing.T) {
	require := require.New(t)

	n := &ast.Binary{
		Op: ast.MinusInterval,
		L:  lit(value.Date("2024-03-15")),
		R:  &ast.Interval{Value: lit(value.Int64(1)), Unit: ast.UnitMonth},
	}
	v := evalOk(t, n, nil)
	require.Equal("2024-02-15", v.String())
}

func TestIntervalArithNullBasePropagates(t *testing.T) {
	require := require.New(t)

	n := &ast.Binary{
		Op: ast.PlusInterval,
		L:  lit(value.Null),
		R:  &ast.Interval{Value: lit(value.Int64(1)), Unit: ast.UnitDay},
	}
	require.True(evalOk(t, n, nil).IsNull())
}

func TestStandaloneIntervalIsExecutionError(t *testing.T) {
	require := require.New(t)

	_, err := Evaluate(&ast.Interval{Value: lit(value.Int64(1)), Unit: ast.UnitDay}, nil, newCtx())
	require.Error(err)
}

func newCtx() *row.Context { return &row.Context{} }

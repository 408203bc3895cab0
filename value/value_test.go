package value

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArithNullPropagation(t *testing.T) {
	require.True(t, Arith("+", Null, Int64(1)).IsNull())
	require.True(t, Arith("+", Int64(1), Null).IsNull())
}

func TestArithDivModByZero(t *testing.T) {
	require.True(t, Arith("/", Int64(1), Int64(0)).IsNull())
	require.True(t, Arith("%", Int64(1), Int64(0)).IsNull())
	require.True(t, Arith("/", Float64(1), Float64(0)).IsNull())
}

func TestArithPromotion(t *testing.T) {
	v := Arith("+", Int64(1), Float64(2.5))
	require.Equal(t, KindFloat64, v.Kind())
	require.Equal(t, 3.5, v.Float64())

	big1 := BigInt(big.NewInt(10))
	v2 := Arith("+", big1, Int64(5))
	require.Equal(t, KindBigInt, v2.Kind())
	require.Equal(t, "15", v2.BigInt().String())

	v3 := Arith("+", big1, Float64(1.5))
	require.Equal(t, KindFloat64, v3.Kind())
}

func TestCompareNumeric(t *testing.T) {
	require.Equal(t, -1, Compare(Int64(1), Float64(2)))
	require.Equal(t, 0, Compare(Int64(2), Float64(2)))
	require.Equal(t, 1, Compare(BigInt(big.NewInt(5)), Int64(3)))
}

func TestEqualNullNeverEqual(t *testing.T) {
	require.False(t, Equal(Null, Null))
	require.False(t, Equal(Null, Int64(0)))
}

func TestStringifyDeterministicForJSON(t *testing.T) {
	a := JSON(map[string]interface{}{"b": 1, "a": 2})
	b := JSON(map[string]interface{}{"a": 2, "b": 1})
	require.Equal(t, Stringify(a), Stringify(b))
}

func TestTruthy(t *testing.T) {
	require.False(t, Null.Truthy())
	require.False(t, Int64(0).Truthy())
	require.True(t, Int64(1).Truthy())
	require.False(t, String("").Truthy())
	require.True(t, String("x").Truthy())
}

package function

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/value"
)

func call(t *testing.T, reg *Registry, name string, args ...value.SqlValue) value.SqlValue {
	t.Helper()
	e, ok := reg.Lookup(name)
	require.True(t, ok, "function %s not registered", name)
	v, err := e.Fn(args)
	require.NoError(t, err)
	return v
}

func TestStringFamily(t *testing.T) {
	require := require.New(t)

	require.Equal("ABC", call(t, StringFamily, "UPPER", value.String("abc")).String())
	require.Equal("abc", call(t, StringFamily, "LOWER", value.String("ABC")).String())
	require.Equal(int64(3), call(t, StringFamily, "LENGTH", value.String("abc")).Int64())
	require.Equal("a-b", call(t, StringFamily, "CONCAT_WS", value.String("-"), value.String("a"), value.String("b")).String())
}

func TestMathFamily(t *testing.T) {
	require := require.New(t)

	require.Equal(int64(5), call(t, MathFamily, "ABS", value.Int64(-5)).Int64())
	v := call(t, MathFamily, "POWER", value.Int64(2), value.Int64(3))
	f, ok := v.AsFloat64()
	require.True(ok)
	require.Equal(8.0, f)
	require.True(call(t, MathFamily, "SQRT", value.Null).IsNull())
}

func TestRegexFamily(t *testing.T) {
	require := require.New(t)

	require.True(call(t, RegexFamily, "REGEXP_LIKE", value.String("hello"), value.String("^h.*o$")).Bool())
	require.Equal("hXllo", call(t, RegexFamily, "REGEXP_REPLACE", value.String("hello"), value.String("e"), value.String("X")).String())
}

func TestJSONFamily(t *testing.T) {
	require := require.New(t)

	obj := call(t, JSONFamily, "JSON_OBJECT", value.String("a"), value.Int64(1))
	require.Equal(value.KindJSON, obj.Kind())

	v := call(t, JSONFamily, "JSON_VALUE", value.JSON(map[string]interface{}{"a": float64(1)}), value.String("a"))
	require.False(v.IsNull())
}

func TestConditionalFamily(t *testing.T) {
	require := require.New(t)

	require.Equal(int64(2), call(t, ConditionalFamily, "COALESCE", value.Null, value.Int64(2)).Int64())
	require.Equal(int64(1), call(t, ConditionalFamily, "IFNULL", value.Int64(1), value.Int64(2)).Int64())
	require.True(call(t, ConditionalFamily, "NULLIF", value.Int64(1), value.Int64(1)).IsNull())
	require.Equal(int64(3), call(t, ConditionalFamily, "GREATEST", value.Int64(1), value.Int64(3), value.Int64(2)).Int64())
	require.Equal(int64(1), call(t, ConditionalFamily, "LEAST", value.Int64(1), value.Int64(3), value.Int64(2)).Int64())
}

func TestDateTimeFamily(t *testing.T) {
	require := require.New(t)

	v := call(t, DateTimeFamily, "DATEDIFF", value.Date("2024-01-10"), value.Date("2024-01-01"))
	require.Equal(int64(9), v.Int64())

	formatted := call(t, DateTimeFamily, "DATE_FORMAT", value.Timestamp("2024-01-10T15:04:05Z"), value.String("%Y-%m-%d"))
	require.Equal("2024-01-10", formatted.String())
}

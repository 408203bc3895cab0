package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/expression/function"
	"github.com/tessera-sql/sqlengine/value"
)

func call(t *testing.T, name string, args ...value.SqlValue) value.SqlValue {
	t.Helper()
	e, ok := function.SpatialFamily.Lookup(name)
	require.True(t, ok, "function %s not registered", name)
	v, err := e.Fn(args)
	require.NoError(t, err)
	return v
}

func TestParsePointRoundTrip(t *testing.T) {
	require := require.New(t)

	p, ok := ParsePoint("POINT(1 2)")
	require.True(ok)
	require.Equal(Point{X: 1, Y: 2}, p)
	require.Equal("POINT(1 2)", p.WKT())
}

func TestGeomFromTextAndAsText(t *testing.T) {
	require := require.New(t)

	g := call(t, "ST_GEOMFROMTEXT", value.String("POINT(3 4)"))
	require.Equal(value.KindGeometry, g.Kind())

	text := call(t, "ST_ASTEXT", g)
	require.Equal("POINT(3 4)", text.String())
}

func TestStEquals(t *testing.T) {
	require := require.New(t)

	eq := call(t, "ST_EQUALS", value.String("POINT(1 1)"), value.String("POINT(1 1)"))
	require.True(eq.Bool())

	neq := call(t, "ST_EQUALS", value.String("POINT(1 1)"), value.String("POINT(2 2)"))
	require.False(neq.Bool())
}

func TestStDistance(t *testing.T) {
	require := require.New(t)

	d := call(t, "ST_DISTANCE", value.String("POINT(0 0)"), value.String("POINT(3 4)"))
	f, ok := d.AsFloat64()
	require.True(ok)
	require.Equal(5.0, f)
}

func TestStContainsFallsBackToEquality(t *testing.T) {
	require := require.New(t)

	v := call(t, "ST_CONTAINS", value.String("POINT(1 1)"), value.String("POINT(1 1)"))
	require.True(v.Bool())
}

// Package spatial implements a minimal WKT-only geometry value and a
// handful of predicates, registered through the same FunctionRegistry
// mechanism every other scalar family uses (spec §2 "Spatial family"
// row; SPEC_FULL.md §3 "no third-party geometry library appears
// anywhere in the example pack, so this stays a from-scratch internal
// implementation").
package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tessera-sql/sqlengine/expression/function"
	"github.com/tessera-sql/sqlengine/value"
)

// Point is the only geometry shape this module supports; it implements
// value.Geometry via WKT().
type Point struct{ X, Y float64 }

func (p Point) WKT() string {
	return fmt.Sprintf("POINT(%s %s)", trimFloat(p.X), trimFloat(p.Y))
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParsePoint parses a "POINT(x y)" WKT literal.
func ParsePoint(wkt string) (Point, bool) {
	s := strings.TrimSpace(wkt)
	if !strings.HasPrefix(strings.ToUpper(s), "POINT") {
		return Point{}, false
	}
	open, close := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || close < 0 || close < open {
		return Point{}, false
	}
	fields := strings.Fields(s[open+1 : close])
	if len(fields) != 2 {
		return Point{}, false
	}
	x, err1 := strconv.ParseFloat(fields[0], 64)
	y, err2 := strconv.ParseFloat(fields[1], 64)
	if err1 != nil || err2 != nil {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

func asPoint(v value.SqlValue) (Point, bool) {
	if v.Kind() == value.KindGeometry {
		if g := v.Geometry(); g != nil {
			return ParsePoint(g.WKT())
		}
		return Point{}, false
	}
	if v.Kind() == value.KindString {
		return ParsePoint(v.String())
	}
	return Point{}, false
}

func init() {
	function.SpatialFamily.Register("ST_GEOMFROMTEXT", function.Arity(1, 1), func(a []value.SqlValue) (value.SqlValue, error) {
		if a[0].IsNull() {
			return value.Null, nil
		}
		p, ok := ParsePoint(a[0].String())
		if !ok {
			return value.Null, nil
		}
		return value.GeometryValue(p), nil
	})
	function.SpatialFamily.Register("ST_ASTEXT", function.Arity(1, 1), func(a []value.SqlValue) (value.SqlValue, error) {
		if a[0].IsNull() {
			return value.Null, nil
		}
		p, ok := asPoint(a[0])
		if !ok {
			return value.Null, nil
		}
		return value.String(p.WKT()), nil
	})
	function.SpatialFamily.Register("ST_EQUALS", function.Arity(2, 2), func(a []value.SqlValue) (value.SqlValue, error) {
		p1, ok1 := asPoint(a[0])
		p2, ok2 := asPoint(a[1])
		if !ok1 || !ok2 {
			return value.Null, nil
		}
		return value.Bool(p1 == p2), nil
	})
	function.SpatialFamily.Register("ST_DISTANCE", function.Arity(2, 2), func(a []value.SqlValue) (value.SqlValue, error) {
		p1, ok1 := asPoint(a[0])
		p2, ok2 := asPoint(a[1])
		if !ok1 || !ok2 {
			return value.Null, nil
		}
		dx, dy := p1.X-p2.X, p1.Y-p2.Y
		return value.Float64(math.Sqrt(dx*dx + dy*dy)), nil
	})
	function.SpatialFamily.Register("ST_WITHIN", function.Arity(2, 2), func(a []value.SqlValue) (value.SqlValue, error) {
		return stEqualsFallback(a)
	})
	function.SpatialFamily.Register("ST_CONTAINS", function.Arity(2, 2), func(a []value.SqlValue) (value.SqlValue, error) {
		return stEqualsFallback(a)
	})
	function.SpatialFamily.Register("ST_INTERSECTS", function.Arity(2, 2), func(a []value.SqlValue) (value.SqlValue, error) {
		return stEqualsFallback(a)
	})
}

// stEqualsFallback implements WITHIN/CONTAINS/INTERSECTS for the
// point-only geometry model as point equality — the only relationship
// two zero-dimensional shapes can have.
func stEqualsFallback(a []value.SqlValue) (value.SqlValue, error) {
	p1, ok1 := asPoint(a[0])
	p2, ok2 := asPoint(a[1])
	if !ok1 || !ok2 {
		return value.Null, nil
	}
	return value.Bool(p1 == p2), nil
}

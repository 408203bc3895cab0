// Package value defines SqlValue, the tagged-variant runtime primitive
// that every row cell, literal and expression result is expressed in.
package value

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the variant held by an SqlValue.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindBigInt
	KindFloat64
	KindString
	KindBytes
	KindDate
	KindTime
	KindTimestamp
	KindJSON
	KindGeometry
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt64:
		return "INT64"
	case KindBigInt:
		return "BIGINT"
	case KindFloat64:
		return "FLOAT64"
	case KindString:
		return "STRING"
	case KindBytes:
		return "BYTES"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindJSON:
		return "JSON"
	case KindGeometry:
		return "GEOMETRY"
	default:
		return "UNKNOWN"
	}
}

// Geometry is the opaque spatial value carried by a KindGeometry SqlValue.
// The core never interprets it beyond this interface; concrete geometry
// types and predicates live in expression/function/spatial.
type Geometry interface {
	WKT() string
}

// SqlValue is the runtime primitive. The zero value is Null.
type SqlValue struct {
	kind   Kind
	b      bool
	i      int64
	big    *big.Int
	f      float64
	s      string
	bytes  []byte
	json   interface{}
	geom   Geometry
}

// Null is the SQL NULL value.
var Null = SqlValue{kind: KindNull}

func Bool(b bool) SqlValue              { return SqlValue{kind: KindBool, b: b} }
func Int64(i int64) SqlValue            { return SqlValue{kind: KindInt64, i: i} }
func BigInt(v *big.Int) SqlValue        { return SqlValue{kind: KindBigInt, big: v} }
func Float64(f float64) SqlValue        { return SqlValue{kind: KindFloat64, f: f} }
func String(s string) SqlValue          { return SqlValue{kind: KindString, s: s} }
func Bytes(b []byte) SqlValue           { return SqlValue{kind: KindBytes, bytes: b} }
func Date(s string) SqlValue            { return SqlValue{kind: KindDate, s: s} }
func Time(s string) SqlValue            { return SqlValue{kind: KindTime, s: s} }
func Timestamp(s string) SqlValue       { return SqlValue{kind: KindTimestamp, s: s} }
func JSON(v interface{}) SqlValue       { return SqlValue{kind: KindJSON, json: v} }
func GeometryValue(g Geometry) SqlValue { return SqlValue{kind: KindGeometry, geom: g} }

// Of converts a plain Go value (as produced by a data source cell thunk,
// a UDF, or a literal) into an SqlValue. Values that are already
// SqlValue pass through unchanged.
func Of(v interface{}) SqlValue {
	switch t := v.(type) {
	case nil:
		return Null
	case SqlValue:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int64(int64(t))
	case int32:
		return Int64(int64(t))
	case int64:
		return Int64(t)
	case *big.Int:
		return BigInt(t)
	case float32:
		return Float64(float64(t))
	case float64:
		return Float64(t)
	case string:
		return String(t)
	case []byte:
		return Bytes(t)
	case Geometry:
		return GeometryValue(t)
	default:
		return JSON(t)
	}
}

func (v SqlValue) Kind() Kind   { return v.kind }
func (v SqlValue) IsNull() bool { return v.kind == KindNull }

func (v SqlValue) Bool() bool         { return v.b }
func (v SqlValue) Int64() int64       { return v.i }
func (v SqlValue) BigInt() *big.Int   { return v.big }
func (v SqlValue) Float64() float64   { return v.f }
func (v SqlValue) String() string     { return v.s }
func (v SqlValue) Bytes() []byte      { return v.bytes }
func (v SqlValue) JSON() interface{}  { return v.json }
func (v SqlValue) Geometry() Geometry { return v.geom }

// IsNumeric reports whether the value is one of Int64/BigInt/Float64.
func (v SqlValue) IsNumeric() bool {
	switch v.kind {
	case KindInt64, KindBigInt, KindFloat64:
		return true
	default:
		return false
	}
}

// AsFloat64 coerces a numeric value to float64. Non-numeric values yield
// (0, false).
func (v SqlValue) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindInt64:
		return float64(v.i), true
	case KindBigInt:
		f := new(big.Float).SetInt(v.big)
		r, _ := f.Float64()
		return r, true
	case KindFloat64:
		return v.f, true
	default:
		return 0, false
	}
}

// Truthy implements SQL value-truthiness, used by CAST ... AS BOOL and by
// short-circuit AND/OR. NULL is not truthy.
func (v SqlValue) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt64:
		return v.i != 0
	case KindBigInt:
		return v.big != nil && v.big.Sign() != 0
	case KindFloat64:
		return v.f != 0
	case KindString:
		return v.s != "" && v.s != "0"
	default:
		return true
	}
}

// Stringify renders the value into a canonical, type-tagged string used
// as a set/group/distinct key (spec §4.5-4.6 "JSON-stringify"/"stringify"
// canonicalization). It never errors: every SqlValue has a defined
// textual form.
func Stringify(v SqlValue) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindBigInt:
		if v.big == nil {
			return "0"
		}
		return v.big.String()
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString, KindDate, KindTime, KindTimestamp:
		return "s:" + v.s
	case KindBytes:
		return "b:" + string(v.bytes)
	case KindJSON:
		return "j:" + stringifyJSON(v.json)
	case KindGeometry:
		if v.geom == nil {
			return "g:"
		}
		return "g:" + v.geom.WKT()
	default:
		return fmt.Sprintf("%v", v.json)
	}
}

// stringifyJSON renders arbitrarily nested JSON deterministically:
// object keys are sorted so two structurally equal documents stringify
// identically regardless of construction order.
func stringifyJSON(v interface{}) string {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			b.WriteString(stringifyJSON(t[k]))
		}
		b.WriteByte('}')
		return b.String()
	case []interface{}:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(stringifyJSON(e))
		}
		b.WriteByte(']')
		return b.String()
	case string:
		return strconv.Quote(t)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", t)
	}
}

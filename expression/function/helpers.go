package function

import "github.com/tessera-sql/sqlengine/value"

// argT is a local alias kept for brevity across the family files; every
// Entry.Fn receives/returns value.SqlValue.
type argT = value.SqlValue

var nullV = value.Null

func strV(s string) argT   { return value.String(s) }
func intV(n int64) argT    { return value.Int64(n) }
func floatV(f float64) argT { return value.Float64(f) }
func boolV(b bool) argT    { return value.Bool(b) }

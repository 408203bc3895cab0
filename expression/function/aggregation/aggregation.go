// Package aggregation implements COUNT/SUM/AVG/MIN/MAX/STDDEV_SAMP/
// STDDEV_POP/JSON_ARRAYAGG with DISTINCT and FILTER support (spec §4.4
// "Aggregate semantics"). It knows nothing about the AST: the caller
// (the expression evaluator) supplies per-row argument/filter
// evaluation as closures, which keeps this package a leaf depending
// only on row and value — the same dependency-injection shape used to
// break the plan/expression import cycle (see DESIGN.md).
package aggregation

import (
	"math"

	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

// Names is the closed set of built-in aggregate function names.
var Names = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"STDDEV_SAMP": true, "STDDEV_POP": true, "JSON_ARRAYAGG": true,
}

// ArgEval evaluates the aggregate's single argument expression against
// r. CountStar is true when the argument is the literal "*" (only valid
// for COUNT).
type ArgEval func(r *row.Row) (value.SqlValue, error)

// FilterEval evaluates the aggregate call's FILTER (WHERE ...) clause
// against r; nil means there is no FILTER.
type FilterEval func(r *row.Row) (bool, error)

// Compute applies name over group, honoring distinct and an optional
// filter (spec §4.4, §4.6). countStar selects COUNT(*) behavior
// (group size, no per-row evaluation) over COUNT(expr).
func Compute(name string, distinct, countStar bool, group []*row.Row, argEval ArgEval, filterEval FilterEval) (value.SqlValue, error) {
	filtered := group
	if filterEval != nil {
		filtered = nil
		for _, r := range group {
			ok, err := filterEval(r)
			if err != nil {
				return value.Null, err
			}
			if ok {
				filtered = append(filtered, r)
			}
		}
	}

	switch name {
	case "COUNT":
		if countStar {
			return value.Int64(int64(len(filtered))), nil
		}
		return computeCount(filtered, distinct, argEval)
	case "SUM":
		return computeSum(filtered, distinct, argEval)
	case "AVG":
		return computeAvg(filtered, distinct, argEval)
	case "MIN":
		return computeMinMax(filtered, argEval, -1)
	case "MAX":
		return computeMinMax(filtered, argEval, 1)
	case "STDDEV_SAMP":
		return computeStddev(filtered, argEval, true)
	case "STDDEV_POP":
		return computeStddev(filtered, argEval, false)
	case "JSON_ARRAYAGG":
		return computeJSONArrayAgg(filtered, distinct, argEval)
	default:
		return value.Null, nil
	}
}

func computeCount(group []*row.Row, distinct bool, argEval ArgEval) (value.SqlValue, error) {
	if !distinct {
		n := int64(0)
		for _, r := range group {
			v, err := argEval(r)
			if err != nil {
				return value.Null, err
			}
			if !v.IsNull() {
				n++
			}
		}
		return value.Int64(n), nil
	}
	seen := make(map[string]bool)
	for _, r := range group {
		v, err := argEval(r)
		if err != nil {
			return value.Null, err
		}
		if v.IsNull() {
			continue
		}
		seen[value.Stringify(v)] = true
	}
	return value.Int64(int64(len(seen))), nil
}

func computeSum(group []*row.Row, distinct bool, argEval ArgEval) (value.SqlValue, error) {
	vals, err := numericValues(group, distinct, argEval)
	if err != nil {
		return value.Null, err
	}
	if len(vals) == 0 {
		return value.Null, nil // spec §4.4 "SUM returns NULL on an empty count"
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return value.Float64(sum), nil
}

func computeAvg(group []*row.Row, distinct bool, argEval ArgEval) (value.SqlValue, error) {
	vals, err := numericValues(group, distinct, argEval)
	if err != nil {
		return value.Null, err
	}
	if len(vals) == 0 {
		return value.Null, nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return value.Float64(sum / float64(len(vals))), nil
}

func numericValues(group []*row.Row, distinct bool, argEval ArgEval) ([]float64, error) {
	var out []float64
	seen := make(map[string]bool)
	for _, r := range group {
		v, err := argEval(r)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			continue
		}
		f, ok := v.AsFloat64()
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue // spec §4.4 "SUM/AVG: ignore NULL and non-finite"
		}
		if distinct {
			key := value.Stringify(v)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, f)
	}
	return out, nil
}

func computeMinMax(group []*row.Row, argEval ArgEval, sign int) (value.SqlValue, error) {
	var best value.SqlValue
	found := false
	for _, r := range group {
		v, err := argEval(r)
		if err != nil {
			return value.Null, err
		}
		if v.IsNull() {
			continue
		}
		if !found {
			best, found = v, true
			continue
		}
		if value.Compare(v, best)*sign > 0 {
			best = v
		}
	}
	if !found {
		return value.Null, nil
	}
	return best, nil
}

func computeStddev(group []*row.Row, argEval ArgEval, sample bool) (value.SqlValue, error) {
	vals, err := numericValues(group, false, argEval)
	if err != nil {
		return value.Null, err
	}
	n := len(vals)
	if sample && n < 2 {
		return value.Null, nil
	}
	if !sample && n == 0 {
		return value.Null, nil
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(n)
	sq := 0.0
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	divisor := float64(n)
	if sample {
		divisor = float64(n - 1)
	}
	return value.Float64(math.Sqrt(sq / divisor)), nil
}

func computeJSONArrayAgg(group []*row.Row, distinct bool, argEval ArgEval) (value.SqlValue, error) {
	var arr []interface{}
	seen := make(map[string]bool)
	for _, r := range group {
		v, err := argEval(r)
		if err != nil {
			return value.Null, err
		}
		if distinct {
			key := value.Stringify(v)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		arr = append(arr, jsonableValue(v))
	}
	if arr == nil {
		arr = []interface{}{}
	}
	return value.JSON(arr), nil
}

func jsonableValue(v value.SqlValue) interface{} {
	if v.IsNull() {
		return nil
	}
	if v.Kind() == value.KindJSON {
		return v.JSON()
	}
	if f, ok := v.AsFloat64(); ok && v.IsNumeric() {
		return f
	}
	return v.String()
}

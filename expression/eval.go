// Package expression implements the evaluator: `Evaluate(node, row,
// ctx) -> SqlValue` and the full operator/function semantics of spec
// §4.4, wired against the scalar function families in
// expression/function and the aggregate engine in
// expression/function/aggregation.
package expression

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/expression/function"
	"github.com/tessera-sql/sqlengine/expression/function/aggregation"
	"github.com/tessera-sql/sqlengine/internal/similartext"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/value"
)

// Evaluate computes node against r under ctx (spec §4.4). ctx.Group,
// when non-nil, makes aggregate calls meaningful; ctx.RowIndex, when
// set, is attached to any ExecutionError raised.
func Evaluate(node ast.Expr, r *row.Row, ctx *row.Context) (value.SqlValue, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.Identifier:
		return evalIdentifier(n, r, ctx)
	case *ast.Unary:
		return evalUnary(n, r, ctx)
	case *ast.Binary:
		return evalBinary(n, r, ctx)
	case *ast.Between:
		return evalBetween(n.Expr, n.Lo, n.Hi, r, ctx, false)
	case *ast.NotBetween:
		return evalBetween(n.Expr, n.Lo, n.Hi, r, ctx, true)
	case *ast.InList:
		return evalInList(n.Expr, n.Values, r, ctx, false)
	case *ast.NotInList:
		return evalInList(n.Expr, n.Values, r, ctx, true)
	case *ast.InSubquery:
		return evalInSubquery(n.Expr, n.Subquery, r, ctx, false)
	case *ast.NotInSubquery:
		return evalInSubquery(n.Expr, n.Subquery, r, ctx, true)
	case *ast.Exists:
		return evalExists(n.Subquery, ctx, false)
	case *ast.NotExists:
		return evalExists(n.Subquery, ctx, true)
	case *ast.Case:
		return evalCase(n, r, ctx)
	case *ast.Cast:
		return evalCast(n, r, ctx)
	case *ast.Function:
		return evalFunction(n, r, ctx)
	case *ast.Interval:
		return value.Null, sqlerr.NewExecutionError(sqlerr.KindStandaloneInterval, n.Range, ctx.RowIndex)
	case *ast.Subquery:
		return evalScalarSubquery(n.Select, ctx)
	default:
		return value.Null, fmt.Errorf("expression: unhandled node type %T", node)
	}
}

func evalIdentifier(n *ast.Identifier, r *row.Row, ctx *row.Context) (value.SqlValue, error) {
	if r == nil {
		return value.Null, sqlerr.NewExecutionError(sqlerr.KindColumnNotFound, n.Range, ctx.RowIndex, n.Name, "")
	}
	v, ok, err := r.Lookup(n.Name)
	if err != nil {
		return value.Null, err
	}
	if !ok {
		available := strings.Join(r.Columns, ", ") + similartext.Find(r.Columns, n.Name)
		return value.Null, sqlerr.NewExecutionError(sqlerr.KindColumnNotFound, n.Range, ctx.RowIndex, n.Name, available)
	}
	return v, nil
}

func evalUnary(n *ast.Unary, r *row.Row, ctx *row.Context) (value.SqlValue, error) {
	v, err := Evaluate(n.Arg, r, ctx)
	if err != nil {
		return value.Null, err
	}
	switch n.Op {
	case ast.Not:
		if v.IsNull() {
			return value.Null, nil
		}
		return value.Bool(!v.Truthy()), nil
	case ast.IsNull:
		return value.Bool(v.IsNull()), nil
	case ast.IsNotNull:
		return value.Bool(!v.IsNull()), nil
	case ast.Neg:
		if v.IsNull() {
			return value.Null, nil
		}
		return value.Arith("-", value.Int64(0), v), nil
	default:
		return value.Null, nil
	}
}

func evalBinary(n *ast.Binary, r *row.Row, ctx *row.Context) (value.SqlValue, error) {
	switch n.Op {
	case ast.And:
		l, err := Evaluate(n.L, r, ctx)
		if err != nil {
			return value.Null, err
		}
		if !l.IsNull() && !l.Truthy() {
			return value.Bool(false), nil // short-circuits to FALSE on falsy left
		}
		rv, err := Evaluate(n.R, r, ctx)
		if err != nil {
			return value.Null, err
		}
		if l.IsNull() || rv.IsNull() {
			if !rv.IsNull() && !rv.Truthy() {
				return value.Bool(false), nil
			}
			return value.Null, nil
		}
		return value.Bool(l.Truthy() && rv.Truthy()), nil
	case ast.Or:
		l, err := Evaluate(n.L, r, ctx)
		if err != nil {
			return value.Null, err
		}
		if !l.IsNull() && l.Truthy() {
			return value.Bool(true), nil // short-circuits to TRUE on truthy left
		}
		rv, err := Evaluate(n.R, r, ctx)
		if err != nil {
			return value.Null, err
		}
		if l.IsNull() || rv.IsNull() {
			if !rv.IsNull() && rv.Truthy() {
				return value.Bool(true), nil
			}
			return value.Null, nil
		}
		return value.Bool(l.Truthy() || rv.Truthy()), nil
	case ast.PlusInterval, ast.MinusInterval:
		return evalIntervalArith(n, r, ctx)
	}

	l, err := Evaluate(n.L, r, ctx)
	if err != nil {
		return value.Null, err
	}
	rv, err := Evaluate(n.R, r, ctx)
	if err != nil {
		return value.Null, err
	}

	switch n.Op {
	case ast.Add:
		return value.Arith("+", l, rv), nil
	case ast.Sub:
		return value.Arith("-", l, rv), nil
	case ast.Mul:
		return value.Arith("*", l, rv), nil
	case ast.Div:
		return value.Arith("/", l, rv), nil
	case ast.Mod:
		return value.Arith("%", l, rv), nil
	case ast.Eq, ast.Neq, ast.Lt, ast.Lte, ast.Gt, ast.Gte:
		if l.IsNull() || rv.IsNull() {
			return value.Bool(false), nil // spec §4.4: NULL comparisons yield FALSE, not NULL
		}
		c := value.Compare(l, rv)
		switch n.Op {
		case ast.Eq:
			return value.Bool(c == 0), nil
		case ast.Neq:
			return value.Bool(c != 0), nil
		case ast.Lt:
			return value.Bool(c < 0), nil
		case ast.Lte:
			return value.Bool(c <= 0), nil
		case ast.Gt:
			return value.Bool(c > 0), nil
		case ast.Gte:
			return value.Bool(c >= 0), nil
		}
	case ast.Like:
		return evalLike(l, rv)
	}
	return value.Null, nil
}

// evalLike translates the RHS pattern to an anchored, case-insensitive
// regular expression (spec §4.4 "LIKE").
func evalLike(l, pattern value.SqlValue) (value.SqlValue, error) {
	if l.IsNull() || pattern.IsNull() {
		return value.Bool(false), nil
	}
	re, err := likeRegexp(pattern.String())
	if err != nil {
		return value.Bool(false), nil
	}
	return value.Bool(re.MatchString(l.String())), nil
}

func likeRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

func evalBetween(exprN, loN, hiN ast.Expr, r *row.Row, ctx *row.Context, negate bool) (value.SqlValue, error) {
	v, err := Evaluate(exprN, r, ctx)
	if err != nil {
		return value.Null, err
	}
	lo, err := Evaluate(loN, r, ctx)
	if err != nil {
		return value.Null, err
	}
	hi, err := Evaluate(hiN, r, ctx)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() || lo.IsNull() || hi.IsNull() {
		return value.Bool(false), nil
	}
	inRange := value.Compare(v, lo) >= 0 && value.Compare(v, hi) <= 0
	if negate {
		return value.Bool(!inRange), nil
	}
	return value.Bool(inRange), nil
}

func evalInList(exprN ast.Expr, values []ast.Expr, r *row.Row, ctx *row.Context, negate bool) (value.SqlValue, error) {
	v, err := Evaluate(exprN, r, ctx)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Bool(false), nil
	}
	found := false
	for _, valueExpr := range values {
		cand, err := Evaluate(valueExpr, r, ctx)
		if err != nil {
			return value.Null, err
		}
		if !cand.IsNull() && value.Compare(v, cand) == 0 {
			found = true
			break
		}
	}
	if negate {
		return value.Bool(!found), nil
	}
	return value.Bool(found), nil
}

func evalInSubquery(exprN ast.Expr, stmt *ast.SelectStatement, r *row.Row, ctx *row.Context, negate bool) (value.SqlValue, error) {
	v, err := Evaluate(exprN, r, ctx)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Bool(false), nil
	}
	iter, err := ctx.PlanAndRun(ctx, stmt)
	if err != nil {
		return value.Null, err
	}
	defer iter.Close(ctx)
	found := false
	for {
		sr, err := iter.Next(ctx)
		if err != nil {
			return value.Null, err
		}
		if sr == nil {
			break
		}
		cell, err := sr.Get(0)
		if err != nil {
			return value.Null, err
		}
		if !cell.IsNull() && value.Compare(v, cell) == 0 {
			found = true
			break
		}
	}
	if negate {
		return value.Bool(!found), nil
	}
	return value.Bool(found), nil
}

func evalExists(stmt *ast.SelectStatement, ctx *row.Context, negate bool) (value.SqlValue, error) {
	iter, err := ctx.PlanAndRun(ctx, stmt)
	if err != nil {
		return value.Null, err
	}
	defer iter.Close(ctx)
	first, err := iter.Next(ctx)
	if err != nil {
		return value.Null, err
	}
	exists := first != nil
	if negate {
		return value.Bool(!exists), nil
	}
	return value.Bool(exists), nil
}

func evalScalarSubquery(stmt *ast.SelectStatement, ctx *row.Context) (value.SqlValue, error) {
	iter, err := ctx.PlanAndRun(ctx, stmt)
	if err != nil {
		return value.Null, err
	}
	defer iter.Close(ctx)
	first, err := iter.Next(ctx)
	if err != nil {
		return value.Null, err
	}
	if first == nil || len(first.Columns) == 0 {
		return value.Null, nil
	}
	return first.Get(0)
}

func evalCase(n *ast.Case, r *row.Row, ctx *row.Context) (value.SqlValue, error) {
	var caseVal value.SqlValue
	simple := n.CaseExpr != nil
	if simple {
		v, err := Evaluate(n.CaseExpr, r, ctx)
		if err != nil {
			return value.Null, err
		}
		caseVal = v
	}
	for _, when := range n.Whens {
		if simple {
			condVal, err := Evaluate(when.Condition, r, ctx)
			if err != nil {
				return value.Null, err
			}
			if !caseVal.IsNull() && !condVal.IsNull() && value.Compare(caseVal, condVal) == 0 {
				return Evaluate(when.Result, r, ctx)
			}
			continue
		}
		condVal, err := Evaluate(when.Condition, r, ctx)
		if err != nil {
			return value.Null, err
		}
		if !condVal.IsNull() && condVal.Truthy() {
			return Evaluate(when.Result, r, ctx)
		}
	}
	if n.Else != nil {
		return Evaluate(n.Else, r, ctx)
	}
	return value.Null, nil
}

func evalCast(n *ast.Cast, r *row.Row, ctx *row.Context) (value.SqlValue, error) {
	v, err := Evaluate(n.Expr, r, ctx)
	if err != nil {
		return value.Null, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	switch n.ToType {
	case "TEXT", "VARCHAR", "STRING", "CHAR":
		if v.Kind() == value.KindJSON {
			return value.String(value.Stringify(v)), nil
		}
		return value.String(v.String()), nil
	case "INT", "INTEGER":
		if v.Kind() == value.KindJSON {
			return value.Null, sqlerr.NewExecutionError(sqlerr.KindUnsupportedCast, n.Range, ctx.RowIndex, "JSON", n.ToType)
		}
		f, ok := v.AsFloat64()
		if !ok {
			return value.Null, nil
		}
		return value.Int64(int64(f)), nil
	case "BIGINT":
		if v.Kind() == value.KindJSON {
			return value.Null, sqlerr.NewExecutionError(sqlerr.KindUnsupportedCast, n.Range, ctx.RowIndex, "JSON", n.ToType)
		}
		i, err := cast.ToInt64E(v.String())
		if err == nil {
			return value.BigInt(big.NewInt(i)), nil
		}
		if f, ok := v.AsFloat64(); ok {
			return value.BigInt(big.NewInt(int64(f))), nil
		}
		return value.Null, nil
	case "FLOAT", "REAL", "DOUBLE":
		if v.Kind() == value.KindJSON {
			return value.Null, sqlerr.NewExecutionError(sqlerr.KindUnsupportedCast, n.Range, ctx.RowIndex, "JSON", n.ToType)
		}
		f, ok := v.AsFloat64()
		if !ok {
			return value.Null, nil
		}
		return value.Float64(f), nil
	case "BOOL", "BOOLEAN":
		if v.Kind() == value.KindJSON {
			return value.Null, sqlerr.NewExecutionError(sqlerr.KindUnsupportedCast, n.Range, ctx.RowIndex, "JSON", n.ToType)
		}
		return value.Bool(v.Truthy()), nil
	default:
		return value.Null, sqlerr.NewExecutionError(sqlerr.KindUnsupportedCast, n.Range, ctx.RowIndex, v.Kind().String(), n.ToType)
	}
}

func evalIntervalArith(n *ast.Binary, r *row.Row, ctx *row.Context) (value.SqlValue, error) {
	base, err := Evaluate(n.L, r, ctx)
	if err != nil {
		return value.Null, err
	}
	iv, ok := n.R.(*ast.Interval)
	if !ok {
		return value.Null, fmt.Errorf("expression: interval binary op without Interval RHS")
	}
	amount, err := Evaluate(iv.Value, r, ctx)
	if err != nil {
		return value.Null, err
	}
	if base.IsNull() || amount.IsNull() {
		return value.Null, nil
	}
	n64 := amount.Int64()
	if n.Op == ast.MinusInterval {
		n64 = -n64
	}
	return applyInterval(base, iv.Unit, n64, n.Range, ctx)
}

func evalFunction(n *ast.Function, r *row.Row, ctx *row.Context) (value.SqlValue, error) {
	upper := strings.ToUpper(n.Name)

	if ctx.Group != nil && aggregation.Names[upper] {
		return evalAggregate(n, upper, r, ctx)
	}

	args := make([]value.SqlValue, 0, len(n.Args))
	if upper == "COUNT" && len(n.Args) == 1 {
		if id, ok := n.Args[0].(*ast.Identifier); ok && id.Name == "*" {
			// COUNT(*) evaluated with no group context at all (ctx.Group
			// nil) degenerates to a constant.
			return value.Int64(1), nil
		}
	}
	for _, a := range n.Args {
		v, err := Evaluate(a, r, ctx)
		if err != nil {
			return value.Null, err
		}
		args = append(args, v)
	}

	if e, ok := function.StringFamily.Lookup(upper); ok {
		return callEntry(e, args, n)
	}
	if e, ok := function.RegexFamily.Lookup(upper); ok {
		return callEntry(e, args, n)
	}
	if e, ok := function.MathFamily.Lookup(upper); ok {
		return callEntry(e, args, n)
	}
	if e, ok := function.JSONFamily.Lookup(upper); ok {
		return callEntry(e, args, n)
	}
	if e, ok := function.ConditionalFamily.Lookup(upper); ok {
		return callEntry(e, args, n)
	}
	if e, ok := function.SpatialFamily.Lookup(upper); ok {
		return callEntry(e, args, n)
	}
	if e, ok := function.DateTimeFamily.Lookup(upper); ok {
		return callEntry(e, args, n)
	}
	if fn, ok := ctx.Functions[upper]; ok {
		v, err := fn.Apply(args...)
		if err != nil {
			return value.Null, sqlerr.NewExecutionError(sqlerr.KindInvalidArgument, n.Range, ctx.RowIndex, n.Name, err.Error())
		}
		return v, nil
	}
	suggestion := similartext.FindFromMap(ctx.Functions, n.Name)
	return value.Null, sqlerr.NewExecutionError(sqlerr.KindUnknownCallable, n.Range, ctx.RowIndex, n.Name+suggestion)
}

func callEntry(e function.Entry, args []value.SqlValue, n *ast.Function) (value.SqlValue, error) {
	if !e.Arity.Accepts(len(args)) {
		return value.Null, sqlerr.NewExecutionError(sqlerr.KindInvalidArgument, n.Range, nil, n.Name, "wrong argument count")
	}
	return e.Fn(args)
}

func evalAggregate(n *ast.Function, upper string, r *row.Row, ctx *row.Context) (value.SqlValue, error) {
	countStar := false
	if upper == "COUNT" && len(n.Args) == 1 {
		if id, ok := n.Args[0].(*ast.Identifier); ok && id.Name == "*" {
			countStar = true
		}
	}
	var argExpr ast.Expr
	if len(n.Args) > 0 {
		argExpr = n.Args[0]
	}
	argEval := func(gr *row.Row) (value.SqlValue, error) {
		if argExpr == nil {
			return value.Null, nil
		}
		return Evaluate(argExpr, gr, ctx)
	}
	var filterEval aggregation.FilterEval
	if n.Filter != nil {
		filterEval = func(gr *row.Row) (bool, error) {
			v, err := Evaluate(n.Filter, gr, ctx)
			if err != nil {
				return false, err
			}
			return !v.IsNull() && v.Truthy(), nil
		}
	}
	return aggregation.Compute(upper, n.Distinct, countStar, ctx.Group, argEval, filterEval)
}

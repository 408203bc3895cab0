package function

import (
	"math"
	"math/rand"

	"github.com/tessera-sql/sqlengine/value"
)

func init() {
	unary := func(name string, f func(float64) float64) {
		MathFamily.Register(name, arity(1, 1), func(a []argT) (argT, error) {
			if a[0].IsNull() {
				return nullV, nil
			}
			fv, ok := a[0].AsFloat64()
			if !ok {
				return nullV, nil
			}
			return floatV(f(fv)), nil
		})
	}
	MathFamily.Register("ABS", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		if a[0].Kind() == value.KindFloat64 {
			fv, _ := a[0].AsFloat64()
			return floatV(math.Abs(fv)), nil
		}
		n := a[0].Int64()
		if n < 0 {
			n = -n
		}
		return intV(n), nil
	})
	unary("CEIL", math.Ceil)
	unary("CEILING", math.Ceil)
	unary("FLOOR", math.Floor)
	MathFamily.Register("ROUND", arity(1, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		fv, ok := a[0].AsFloat64()
		if !ok {
			return nullV, nil
		}
		places := 0
		if len(a) == 2 && !a[1].IsNull() {
			places = int(a[1].Int64())
		}
		mult := math.Pow(10, float64(places))
		return floatV(math.Round(fv*mult) / mult), nil
	})
	MathFamily.Register("POWER", arity(2, 2), powFn)
	MathFamily.Register("POW", arity(2, 2), powFn)
	unary("SQRT", math.Sqrt)
	MathFamily.Register("MOD", arity(2, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		x, _ := a[0].AsFloat64()
		y, _ := a[1].AsFloat64()
		if y == 0 {
			return nullV, nil
		}
		return floatV(math.Mod(x, y)), nil
	})
	MathFamily.Register("RAND", arity(0, 1), func(a []argT) (argT, error) {
		if len(a) == 1 && !a[0].IsNull() {
			return floatV(rand.New(rand.NewSource(a[0].Int64())).Float64()), nil
		}
		return floatV(rand.Float64()), nil
	})
	MathFamily.Register("RANDOM", arity(0, 0), func(a []argT) (argT, error) {
		return floatV(rand.Float64()), nil
	})
	MathFamily.Register("LOG", arity(1, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		x, _ := a[0].AsFloat64()
		if len(a) == 2 {
			if a[1].IsNull() {
				return nullV, nil
			}
			base, _ := a[1].AsFloat64()
			return floatV(math.Log(x) / math.Log(base)), nil
		}
		return floatV(math.Log(x)), nil
	})
	unary("LOG10", math.Log10)
	unary("LN", math.Log)
	unary("EXP", math.Exp)
	MathFamily.Register("SIGN", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		fv, _ := a[0].AsFloat64()
		switch {
		case fv > 0:
			return intV(1), nil
		case fv < 0:
			return intV(-1), nil
		default:
			return intV(0), nil
		}
	})
}

func powFn(a []argT) (argT, error) {
	if a[0].IsNull() || a[1].IsNull() {
		return nullV, nil
	}
	x, _ := a[0].AsFloat64()
	y, _ := a[1].AsFloat64()
	return floatV(math.Pow(x, y)), nil
}

package value

import "math/big"

// Arith applies a binary arithmetic operator under SQL three-valued
// logic: any NULL operand yields NULL, and division/modulo by zero
// yields NULL rather than erroring (spec §4.4).
//
// Numeric promotion (spec §3): mixed Int64/Float64 promotes to Float64;
// a BigInt operand is preserved unless mixed with a Float64, in which
// case it is demoted to Float64 for the operation.
func Arith(op string, l, r SqlValue) SqlValue {
	if l.IsNull() || r.IsNull() {
		return Null
	}
	if !l.IsNumeric() || !r.IsNumeric() {
		return Null
	}

	if l.Kind() == KindBigInt && r.Kind() == KindBigInt {
		return bigIntArith(op, l.BigInt(), r.BigInt())
	}
	if l.Kind() == KindFloat64 || r.Kind() == KindFloat64 {
		lf, _ := l.AsFloat64()
		rf, _ := r.AsFloat64()
		return floatArith(op, lf, rf)
	}
	if l.Kind() == KindBigInt || r.Kind() == KindBigInt {
		lb := toBig(l)
		rb := toBig(r)
		return bigIntArith(op, lb, rb)
	}
	return int64Arith(op, l.Int64(), r.Int64())
}

func toBig(v SqlValue) *big.Int {
	if v.Kind() == KindBigInt {
		return v.BigInt()
	}
	return big.NewInt(v.Int64())
}

func int64Arith(op string, l, r int64) SqlValue {
	switch op {
	case "+":
		return Int64(l + r)
	case "-":
		return Int64(l - r)
	case "*":
		return Int64(l * r)
	case "/":
		if r == 0 {
			return Null
		}
		if l%r == 0 {
			return Int64(l / r)
		}
		return Float64(float64(l) / float64(r))
	case "%":
		if r == 0 {
			return Null
		}
		return Int64(l % r)
	default:
		return Null
	}
}

func floatArith(op string, l, r float64) SqlValue {
	switch op {
	case "+":
		return Float64(l + r)
	case "-":
		return Float64(l - r)
	case "*":
		return Float64(l * r)
	case "/":
		if r == 0 {
			return Null
		}
		return Float64(l / r)
	case "%":
		if r == 0 {
			return Null
		}
		m := l - r*float64(int64(l/r))
		return Float64(m)
	default:
		return Null
	}
}

func bigIntArith(op string, l, r *big.Int) SqlValue {
	z := new(big.Int)
	switch op {
	case "+":
		return BigInt(z.Add(l, r))
	case "-":
		return BigInt(z.Sub(l, r))
	case "*":
		return BigInt(z.Mul(l, r))
	case "/":
		if r.Sign() == 0 {
			return Null
		}
		q, rem := new(big.Int).QuoRem(l, r, new(big.Int))
		if rem.Sign() == 0 {
			return BigInt(q)
		}
		lf := new(big.Float).SetInt(l)
		rf := new(big.Float).SetInt(r)
		f, _ := new(big.Float).Quo(lf, rf).Float64()
		return Float64(f)
	case "%":
		if r.Sign() == 0 {
			return Null
		}
		return BigInt(z.Rem(l, r))
	default:
		return Null
	}
}

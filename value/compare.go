package value

import (
	"math/big"
	"strings"
)

// Compare orders two SqlValues for ORDER BY / MIN / MAX. It never
// receives NULLs directly - callers strip NULLs per spec §4.6 (MIN/MAX
// ignore NULL) or handle NULL ordering themselves (Sort, spec §4.6).
//
// Primitive types (number/bigint/bool/string) compare natively; anything
// else (dates stored as strings compare lexically, which matches ISO-8601
// ordering) falls back to string coercion, matching spec §4.6's "then by
// primitive comparison when both sides are of primitive types... else by
// string coercion".
func Compare(l, r SqlValue) int {
	if l.IsNumeric() && r.IsNumeric() {
		return compareNumeric(l, r)
	}
	if l.Kind() == KindBool && r.Kind() == KindBool {
		if l.Bool() == r.Bool() {
			return 0
		}
		if !l.Bool() {
			return -1
		}
		return 1
	}
	if isPrimitiveStringLike(l) && isPrimitiveStringLike(r) {
		return strings.Compare(coerceString(l), coerceString(r))
	}
	return strings.Compare(coerceString(l), coerceString(r))
}

func isPrimitiveStringLike(v SqlValue) bool {
	switch v.Kind() {
	case KindString, KindDate, KindTime, KindTimestamp:
		return true
	default:
		return false
	}
}

func coerceString(v SqlValue) string {
	switch v.Kind() {
	case KindString, KindDate, KindTime, KindTimestamp:
		return v.String()
	default:
		return Stringify(v)
	}
}

func compareNumeric(l, r SqlValue) int {
	if l.Kind() == KindBigInt && r.Kind() == KindBigInt {
		return l.BigInt().Cmp(r.BigInt())
	}
	if l.Kind() == KindFloat64 || r.Kind() == KindFloat64 {
		lf, _ := l.AsFloat64()
		rf, _ := r.AsFloat64()
		switch {
		case lf < rf:
			return -1
		case lf > rf:
			return 1
		default:
			return 0
		}
	}
	if l.Kind() == KindBigInt || r.Kind() == KindBigInt {
		return toBig(l).Cmp(toBig(r))
	}
	switch {
	case l.Int64() < r.Int64():
		return -1
	case l.Int64() > r.Int64():
		return 1
	default:
		return 0
	}
}

// Equal implements loose value equality, used by InList/InSubquery
// membership tests and DISTINCT key construction. NULL is never equal to
// anything, including NULL (spec §4.4 "x = NULL always returns zero rows").
func Equal(l, r SqlValue) bool {
	if l.IsNull() || r.IsNull() {
		return false
	}
	if l.IsNumeric() && r.IsNumeric() {
		return compareNumeric(l, r) == 0
	}
	if l.Kind() == KindBool && r.Kind() == KindBool {
		return l.Bool() == r.Bool()
	}
	return Stringify(l) == Stringify(r)
}

// compareBig orders two BigInt values; it is unexported and nothing in
// the module calls it.
func compareBig(a, b *big.Int) int { return a.Cmp(b) }

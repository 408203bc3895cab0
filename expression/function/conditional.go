package function

import "github.com/tessera-sql/sqlengine/value"

func init() {
	ConditionalFamily.Register("COALESCE", variadic(1), func(a []argT) (argT, error) {
		for _, v := range a {
			if !v.IsNull() {
				return v, nil
			}
		}
		return nullV, nil
	})
	ConditionalFamily.Register("IFNULL", arity(2, 2), func(a []argT) (argT, error) {
		if !a[0].IsNull() {
			return a[0], nil
		}
		return a[1], nil
	})
	ConditionalFamily.Register("NULLIF", arity(2, 2), func(a []argT) (argT, error) {
		if value.Equal(a[0], a[1]) {
			return nullV, nil
		}
		return a[0], nil
	})
	ConditionalFamily.Register("GREATEST", variadic(1), func(a []argT) (argT, error) {
		return extreme(a, 1)
	})
	ConditionalFamily.Register("LEAST", variadic(1), func(a []argT) (argT, error) {
		return extreme(a, -1)
	})
}

// extreme returns the max (sign=1) or min (sign=-1) of a, skipping NULLs
// (mirrors MIN/MAX aggregate semantics: spec §4.4 "ignore NULL").
func extreme(a []argT, sign int) (argT, error) {
	var best argT
	found := false
	for _, v := range a {
		if v.IsNull() {
			continue
		}
		if !found {
			best = v
			found = true
			continue
		}
		if value.Compare(v, best)*sign > 0 {
			best = v
		}
	}
	if !found {
		return nullV, nil
	}
	return best, nil
}

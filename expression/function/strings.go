package function

import "strings"

func init() {
	StringFamily.Register("UPPER", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		return strV(strings.ToUpper(a[0].String())), nil
	})
	StringFamily.Register("LOWER", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		return strV(strings.ToLower(a[0].String())), nil
	})
	StringFamily.Register("LENGTH", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		return intV(int64(len(a[0].String()))), nil
	})
	StringFamily.Register("CHAR_LENGTH", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		return intV(int64(len([]rune(a[0].String())))), nil
	})
	StringFamily.Register("SUBSTRING", arity(2, 3), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		s := []rune(a[0].String())
		start := int(a[1].Int64())
		if start < 1 {
			start = 1
		}
		if start > len(s)+1 {
			return strV(""), nil
		}
		length := len(s) - (start - 1)
		if len(a) == 3 && !a[2].IsNull() {
			length = int(a[2].Int64())
		}
		if length < 0 {
			length = 0
		}
		end := start - 1 + length
		if end > len(s) {
			end = len(s)
		}
		return strV(string(s[start-1 : end])), nil
	})
	StringFamily.Register("CONCAT", variadic(1), func(a []argT) (argT, error) {
		var b strings.Builder
		for _, v := range a {
			if v.IsNull() {
				return nullV, nil
			}
			b.WriteString(v.String())
		}
		return strV(b.String()), nil
	})
	StringFamily.Register("CONCAT_WS", variadic(2), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		sep := a[0].String()
		var parts []string
		for _, v := range a[1:] {
			if !v.IsNull() {
				parts = append(parts, v.String())
			}
		}
		return strV(strings.Join(parts, sep)), nil
	})
	StringFamily.Register("TRIM", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		return strV(strings.TrimSpace(a[0].String())), nil
	})
	StringFamily.Register("LTRIM", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		return strV(strings.TrimLeft(a[0].String(), " \t\n\r")), nil
	})
	StringFamily.Register("RTRIM", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		return strV(strings.TrimRight(a[0].String(), " \t\n\r")), nil
	})
	StringFamily.Register("REPLACE", arity(3, 3), func(a []argT) (argT, error) {
		for _, v := range a {
			if v.IsNull() {
				return nullV, nil
			}
		}
		return strV(strings.ReplaceAll(a[0].String(), a[1].String(), a[2].String())), nil
	})
	StringFamily.Register("LPAD", arity(3, 3), func(a []argT) (argT, error) { return pad(a, true) })
	StringFamily.Register("RPAD", arity(3, 3), func(a []argT) (argT, error) { return pad(a, false) })
	StringFamily.Register("REVERSE", arity(1, 1), func(a []argT) (argT, error) {
		if a[0].IsNull() {
			return nullV, nil
		}
		r := []rune(a[0].String())
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return strV(string(r)), nil
	})
	StringFamily.Register("LOCATE", arity(2, 3), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		substr, s := a[0].String(), a[1].String()
		start := 0
		if len(a) == 3 && !a[2].IsNull() {
			start = int(a[2].Int64()) - 1
			if start < 0 {
				start = 0
			}
		}
		if start > len(s) {
			return intV(0), nil
		}
		idx := strings.Index(s[start:], substr)
		if idx < 0 {
			return intV(0), nil
		}
		return intV(int64(start + idx + 1)), nil
	})
	StringFamily.Register("INSTR", arity(2, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		idx := strings.Index(a[0].String(), a[1].String())
		return intV(int64(idx + 1)), nil
	})
	StringFamily.Register("LEFT", arity(2, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		s := []rune(a[0].String())
		n := int(a[1].Int64())
		if n < 0 {
			n = 0
		}
		if n > len(s) {
			n = len(s)
		}
		return strV(string(s[:n])), nil
	})
	StringFamily.Register("RIGHT", arity(2, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		s := []rune(a[0].String())
		n := int(a[1].Int64())
		if n < 0 {
			n = 0
		}
		if n > len(s) {
			n = len(s)
		}
		return strV(string(s[len(s)-n:])), nil
	})
	StringFamily.Register("REPEAT", arity(2, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		n := int(a[1].Int64())
		if n < 0 {
			n = 0
		}
		return strV(strings.Repeat(a[0].String(), n)), nil
	})
}

func pad(a []argT, left bool) (argT, error) {
	if a[0].IsNull() || a[1].IsNull() || a[2].IsNull() {
		return nullV, nil
	}
	s := a[0].String()
	total := int(a[1].Int64())
	padStr := a[2].String()
	if total <= len([]rune(s)) || padStr == "" {
		r := []rune(s)
		if total < 0 {
			total = 0
		}
		if total > len(r) {
			total = len(r)
		}
		if left {
			return strV(string(r[len(r)-total:])), nil
		}
		return strV(string(r[:total])), nil
	}
	need := total - len([]rune(s))
	var b strings.Builder
	for b.Len() < need {
		b.WriteString(padStr)
	}
	padding := []rune(b.String())[:need]
	if left {
		return strV(string(padding) + s), nil
	}
	return strV(s + string(padding)), nil
}

package function

import "regexp"

func init() {
	RegexFamily.Register("REGEXP_LIKE", arity(2, 3), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		re, err := compileRegexp(a[1], flagsArg(a, 2))
		if err != nil {
			return nullV, err
		}
		return boolV(re.MatchString(a[0].String())), nil
	})
	RegexFamily.Register("REGEXP_REPLACE", arity(3, 4), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() || a[2].IsNull() {
			return nullV, nil
		}
		re, err := compileRegexp(a[1], flagsArg(a, 3))
		if err != nil {
			return nullV, err
		}
		return strV(re.ReplaceAllString(a[0].String(), a[2].String())), nil
	})
	RegexFamily.Register("REGEXP_EXTRACT", arity(2, 3), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		re, err := compileRegexp(a[1], flagsArg(a, 2))
		if err != nil {
			return nullV, err
		}
		m := re.FindStringSubmatch(a[0].String())
		if m == nil {
			return nullV, nil
		}
		group := 0
		if len(a) == 3 && !a[2].IsNull() {
			group = int(a[2].Int64())
		}
		if group < 0 || group >= len(m) {
			return nullV, nil
		}
		return strV(m[group]), nil
	})
}

// flagsArg returns the optional flags argument at idx, or a NULL
// SqlValue when the caller omitted it.
func flagsArg(a []argT, idx int) argT {
	if idx >= len(a) {
		return nullV
	}
	return a[idx]
}

func compileRegexp(pattern argT, flags argT) (*regexp.Regexp, error) {
	p := pattern.String()
	if !flags.IsNull() {
		for _, f := range flags.String() {
			if f == 'i' {
				p = "(?i)" + p
				break
			}
		}
	}
	return regexp.Compile(p)
}

package function

import (
	"strings"
	"time"

	"github.com/tessera-sql/sqlengine/value"
)

// Now is overridable in tests; production code always calls time.Now().
var Now = func() time.Time { return time.Now().UTC() }

func init() {
	DateTimeFamily.Register("CURRENT_DATE", arity(0, 0), func(a []argT) (argT, error) {
		return value.Date(Now().Format("2006-01-02")), nil
	})
	DateTimeFamily.Register("CURRENT_TIME", arity(0, 0), func(a []argT) (argT, error) {
		return value.Time(Now().Format("15:04:05")), nil
	})
	DateTimeFamily.Register("CURRENT_TIMESTAMP", arity(0, 0), func(a []argT) (argT, error) {
		return value.Timestamp(Now().Format(time.RFC3339)), nil
	})
	DateTimeFamily.Register("NOW", arity(0, 0), func(a []argT) (argT, error) {
		return value.Timestamp(Now().Format(time.RFC3339)), nil
	})
	DateTimeFamily.Register("DATE_FORMAT", arity(2, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		t, ok := parseDateTime(a[0].String())
		if !ok {
			return nullV, nil
		}
		return strV(applyMySQLFormat(t, a[1].String())), nil
	})
	DateTimeFamily.Register("DATEDIFF", arity(2, 2), func(a []argT) (argT, error) {
		if a[0].IsNull() || a[1].IsNull() {
			return nullV, nil
		}
		t1, ok1 := parseDateTime(a[0].String())
		t2, ok2 := parseDateTime(a[1].String())
		if !ok1 || !ok2 {
			return nullV, nil
		}
		days := int64(t1.Truncate(24*time.Hour).Sub(t2.Truncate(24*time.Hour)).Hours() / 24)
		return intV(days), nil
	})
}

// parseDateTime accepts the ISO-8601 date/time/timestamp conventions
// spec §3 uses for Date/Time/Timestamp values.
func parseDateTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// applyMySQLFormat supports the common subset of MySQL DATE_FORMAT
// specifiers (%Y %m %d %H %i %s).
func applyMySQLFormat(t time.Time, format string) string {
	r := strings.NewReplacer(
		"%Y", t.Format("2006"),
		"%m", t.Format("01"),
		"%d", t.Format("02"),
		"%H", t.Format("15"),
		"%i", t.Format("04"),
		"%s", t.Format("05"),
	)
	return r.Replace(format)
}

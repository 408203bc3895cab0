package expression

import (
	"time"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/pos"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/sqlerr"
	"github.com/tessera-sql/sqlengine/value"
)

// applyInterval adjusts base (a Date/Time/Timestamp SqlValue) by n units
// of unit, on a UTC normalization of the value, preserving the input's
// format (date vs datetime) per spec §4.4 "INTERVAL arithmetic".
func applyInterval(base value.SqlValue, unit ast.IntervalUnit, n int64, r pos.Range, ctx *row.Context) (value.SqlValue, error) {
	layout, isDateOnly := layoutFor(base.Kind())
	if layout == "" {
		return value.Null, sqlerr.NewExecutionError(sqlerr.KindInvalidArgument, r, ctx.RowIndex, "INTERVAL", "operand is not a date/time/timestamp value")
	}
	t, err := time.Parse(layout, base.String())
	if err != nil {
		return value.Null, sqlerr.NewExecutionError(sqlerr.KindInvalidArgument, r, ctx.RowIndex, "INTERVAL", err.Error())
	}
	t = t.UTC()

	switch unit {
	case ast.UnitSecond:
		t = t.Add(time.Duration(n) * time.Second)
	case ast.UnitMinute:
		t = t.Add(time.Duration(n) * time.Minute)
	case ast.UnitHour:
		t = t.Add(time.Duration(n) * time.Hour)
	case ast.UnitDay:
		t = t.AddDate(0, 0, int(n))
	case ast.UnitMonth:
		t = t.AddDate(0, int(n), 0)
	case ast.UnitYear:
		t = t.AddDate(int(n), 0, 0)
	}

	switch {
	case isDateOnly:
		return value.Date(t.Format("2006-01-02")), nil
	case base.Kind() == value.KindTime:
		return value.Time(t.Format("15:04:05")), nil
	default:
		return value.Timestamp(t.Format(time.RFC3339)), nil
	}
}

func layoutFor(k value.Kind) (layout string, isDateOnly bool) {
	switch k {
	case value.KindDate:
		return "2006-01-02", true
	case value.KindTime:
		return "15:04:05", false
	case value.KindTimestamp:
		return time.RFC3339, false
	default:
		return "", false
	}
}

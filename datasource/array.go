// Package datasource provides the trivial DataSource adapter the engine
// wraps bare in-memory row slices in (spec §6 "Arrays are adapted to a
// trivial DataSource").
package datasource

import (
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

// Array adapts a fixed slice of rows (sharing one column list) into a
// DataSource. It applies none of the scan hints itself — the engine
// re-applies columns/where/limit/offset on top, which is always
// correct, just not always optimal (spec §6 "If the source does not
// apply a hint, the core re-applies it on top of the scan output.").
type Array struct {
	Columns []string
	Rows    [][]value.SqlValue
}

// NewArray builds an Array DataSource from column names and row values;
// every inner slice must have len(Columns) entries.
func NewArray(columns []string, rows [][]value.SqlValue) *Array {
	return &Array{Columns: columns, Rows: rows}
}

func (a *Array) Scan(ctx *row.Context, opts row.ScanOptions) (row.ScanResult, error) {
	return row.ScanResult{
		Rows:               &arrayIter{source: a, pos: 0},
		AppliedWhere:       false,
		AppliedLimitOffset: false,
	}, nil
}

func (a *Array) NumRows(ctx *row.Context) (int64, bool) {
	return int64(len(a.Rows)), true
}

type arrayIter struct {
	source *Array
	pos    int
}

func (it *arrayIter) Next(ctx *row.Context) (*row.Row, error) {
	if ctx.Cancelled() {
		return nil, nil
	}
	if it.pos >= len(it.source.Rows) {
		return nil, nil
	}
	values := it.source.Rows[it.pos]
	it.pos++
	return row.FromValues(it.source.Columns, values), nil
}

func (it *arrayIter) Close(ctx *row.Context) error { return nil }

// Package row defines the lazy row representation every operator
// produces and consumes (spec §3 "Row"), the pull-based RowIter
// contract (spec §5), the per-query Context threaded through planning
// and evaluation, and the DataSource capability the engine scans
// against (spec §6).
package row

import (
	"github.com/sirupsen/logrus"
	"github.com/opentracing/opentracing-go"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/cancel"
	"github.com/tessera-sql/sqlengine/udf"
	"github.com/tessera-sql/sqlengine/value"
)

// Thunk yields a cell's value; sources may defer materialization until
// the first call (spec §3 "cell thunk").
type Thunk func() (value.SqlValue, error)

// Row is an ordered list of column names plus one thunk per name. Rows
// carry no fixed schema beyond their own columns; the engine never
// mutates a Row once constructed (spec §3 "Lifecycle").
type Row struct {
	Columns []string
	// Primary lists the indices into Columns/cells that make up the
	// row's "real" columns, in display order, for star expansion. A
	// plain Row's Primary is every column; Qualify and Join narrow it
	// to the qualified "table.col" half, excluding the convenience
	// bare-name aliases they append for unqualified lookup.
	Primary []int
	cells   []Thunk
	cache   []cellCache
}

type cellCache struct {
	done bool
	val  value.SqlValue
	err  error
}

// New builds a Row from parallel column/thunk slices.
func New(columns []string, cells []Thunk) *Row {
	primary := make([]int, len(columns))
	for i := range columns {
		primary[i] = i
	}
	return &Row{Columns: columns, Primary: primary, cells: cells, cache: make([]cellCache, len(cells))}
}

// FromValues builds a Row whose cells are already materialized
// SqlValues, the common case for array-adapted tables and projected
// output rows.
func FromValues(columns []string, values []value.SqlValue) *Row {
	cells := make([]Thunk, len(values))
	for i, v := range values {
		v := v
		cells[i] = func() (value.SqlValue, error) { return v, nil }
	}
	return New(columns, cells)
}

// Index returns the position of name in r.Columns, or -1.
func (r *Row) Index(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Get invokes (and memoizes) the thunk at position i. Each cell is
// invoked at most once per Row (spec §5 "Shared state").
func (r *Row) Get(i int) (value.SqlValue, error) {
	if i < 0 || i >= len(r.cells) {
		return value.Null, nil
	}
	c := &r.cache[i]
	if c.done {
		return c.val, c.err
	}
	c.val, c.err = r.cells[i]()
	c.done = true
	return c.val, c.err
}

// Lookup resolves name by exact column match; failing that, by matching
// the suffix after the last '.' (spec §4.4 "if not found and name
// contains '.', also try the suffix"). ok is false when neither matches.
func (r *Row) Lookup(name string) (value.SqlValue, bool, error) {
	if i := r.Index(name); i >= 0 {
		v, err := r.Get(i)
		return v, true, err
	}
	if dot := lastDot(name); dot >= 0 {
		suffix := name[dot+1:]
		if i := r.Index(suffix); i >= 0 {
			v, err := r.Get(i)
			return v, true, err
		}
	}
	return value.Null, false, nil
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// Values materializes every cell into a plain slice, used where a row
// must be captured outside the engine's lazy pipeline (group buffering,
// sort/distinct materialization).
func (r *Row) Values() ([]value.SqlValue, error) {
	out := make([]value.SqlValue, len(r.cells))
	for i := range r.cells {
		v, err := r.Get(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Qualify exposes every column of r additionally as "alias.c", used
// once per base table scan so later joins and qualified identifiers
// ("t.c") resolve uniformly (spec §4.5 "Row merging"). r's own bare
// names remain reachable too; Primary becomes the qualified half, for
// star expansion.
func Qualify(alias string, r *Row) *Row {
	if alias == "" || r == nil {
		return r
	}
	columns := make([]string, 0, 2*len(r.Columns))
	cells := make([]Thunk, 0, 2*len(r.Columns))
	for i, c := range r.Columns {
		i := i
		columns = append(columns, alias+"."+c)
		cells = append(cells, func() (value.SqlValue, error) { return r.Get(i) })
	}
	qualifiedCount := len(columns)
	for i, c := range r.Columns {
		i := i
		columns = append(columns, c)
		cells = append(cells, func() (value.SqlValue, error) { return r.Get(i) })
	}
	out := New(columns, cells)
	primary := make([]int, qualifiedCount)
	for i := 0; i < qualifiedCount; i++ {
		primary[i] = i
	}
	out.Primary = primary
	return out
}

// Join concatenates two already-Qualified rows into one join-output row
// (spec §4.5 "Row merging"). Each side's qualified ("table.col") columns
// are kept as-is; a bare-name convenience alias is rebuilt over the
// union, with the later side (r) winning any collision. Either side may
// be nil (an unmatched outer-join row), in which case only the other
// side's columns appear.
func Join(l, r *Row) *Row {
	var columns []string
	var cells []Thunk
	bareThunk := make(map[string]Thunk)
	var bareOrder []string

	add := func(src *Row) {
		if src == nil {
			return
		}
		for _, idx := range src.Primary {
			idx := idx
			name := src.Columns[idx]
			th := func() (value.SqlValue, error) { return src.Get(idx) }
			columns = append(columns, name)
			cells = append(cells, th)
			bare := name
			if dot := lastDot(name); dot >= 0 {
				bare = name[dot+1:]
			}
			if _, seen := bareThunk[bare]; !seen {
				bareOrder = append(bareOrder, bare)
			}
			bareThunk[bare] = th // later side wins (spec §4.5 "later side wins")
		}
	}
	add(l)
	add(r)
	qualifiedCount := len(columns)
	for _, name := range bareOrder {
		columns = append(columns, name)
		cells = append(cells, bareThunk[name])
	}
	out := New(columns, cells)
	primary := make([]int, qualifiedCount)
	for i := 0; i < qualifiedCount; i++ {
		primary[i] = i
	}
	out.Primary = primary
	return out
}

// NullPad builds an all-NULL Row already Qualified under alias over
// columns, standing in for the missing side of an outer join; pass the
// result to Join as the absent side (spec §4.5 "Unmatched...emit
// the...row padded with NULLs").
func NullPad(alias string, columns []string) *Row {
	cells := make([]Thunk, len(columns))
	for i := range cells {
		cells[i] = nullThunk
	}
	return Qualify(alias, New(append([]string(nil), columns...), cells))
}

func nullThunk() (value.SqlValue, error) { return value.Null, nil }

// Iter is the pull-based row stream every operator produces (spec §5).
// Next returns (nil, nil) at end of stream.
type Iter interface {
	Next(ctx *Context) (*Row, error)
	Close(ctx *Context) error
}

// ScanOptions carries the pushdown hints the planner computes for a
// table scan (spec §4.3 "Scan hints", §6 "DataSource interface").
type ScanOptions struct {
	Columns []string // nil means "all columns needed"
	Where   ast.Expr // nil when no pushdown-safe predicate exists
	Limit   *int64
	Offset  *int64
	Signal  cancel.Handle
}

// ScanResult is what a DataSource returns from Scan (spec §6).
type ScanResult struct {
	Rows               Iter
	AppliedWhere       bool
	AppliedLimitOffset bool
}

// DataSource is the capability the engine scans a named table through
// (spec §6). NumRows, when non-nil, lets the planner answer an
// unfiltered COUNT(*) without streaming (spec §4.3 "COUNT optimization").
type DataSource interface {
	Scan(ctx *Context, opts ScanOptions) (ScanResult, error)
	NumRows(ctx *Context) (int64, bool)
}

// PlanAndRunFunc executes a nested SELECT statement (a scalar subquery,
// an IN-subquery, or an EXISTS check) and returns its result stream.
// Context carries this as a function pointer rather than a direct
// import so that the row package never needs to import the plan or
// exec packages that depend on it (see DESIGN.md, "breaking the
// plan/expression/exec import cycle").
type PlanAndRunFunc func(ctx *Context, stmt *ast.SelectStatement) (Iter, error)

// Context is threaded through planning, execution and expression
// evaluation for one query run (spec §4.4 "ctx carries the table map,
// user-function map, optional cancellation signal, an optional current
// row index, and optionally the current group of rows").
type Context struct {
	QueryID   string
	Tables    map[string]DataSource
	Functions map[string]udf.Function
	Signal    cancel.Handle
	Logger    *logrus.Entry
	Tracer    opentracing.Tracer

	// RowIndex is the 1-based index of the row currently being produced,
	// attached to execution errors for diagnostics; nil outside of a
	// row-scoped evaluation.
	RowIndex *int64

	// Group is the current aggregate group, present only while evaluating
	// an expression inside HashAggregate/ScalarAggregate re-entry (spec
	// §4.4 "Aggregate semantics (only reachable when the caller passed a
	// group)").
	Group []*Row

	// NullsFirstDefault overrides the "NULLs low" ORDER BY default (spec
	// §4.6, §9 Open Questions) when set by engine.Config; nil keeps the
	// built-in default.
	NullsFirstDefault *bool

	PlanAndRun PlanAndRunFunc
}

// Cancelled reports whether the query's cancellation signal has fired.
func (c *Context) Cancelled() bool {
	if c == nil || c.Signal == nil {
		return false
	}
	return c.Signal.Cancelled()
}

// WithRowIndex returns a shallow copy of c scoped to row index idx
// (1-based), used by operators that attach row context to errors
// without mutating the shared Context other operators hold.
func (c *Context) WithRowIndex(idx int64) *Context {
	cp := *c
	cp.RowIndex = &idx
	return &cp
}

// WithGroup returns a shallow copy of c scoped to an aggregate group. A
// nil group is stored as an empty, non-nil one, so an aggregate over zero
// rows still evaluates in a group context.
func (c *Context) WithGroup(group []*Row) *Context {
	if group == nil {
		group = []*Row{}
	}
	cp := *c
	cp.Group = group
	return &cp
}

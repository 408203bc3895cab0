// Package plan defines the relational plan node types spec §3 lists and
// the planSql builder (spec §4.3). Nodes hold raw ast.Expr rather than a
// separate bound-expression IR, keeping this package dependent only on
// ast and row — not on the expression evaluator — which is what lets
// the expression package depend on plan-shaped execution via function
// injection instead of a direct import (see DESIGN.md).
package plan

import (
	"github.com/tessera-sql/sqlengine/ast"
)

// Node is any plan operator. Every concrete node is a distinct Go type;
// the executor switches on concrete type to build its RowIter.
type Node interface {
	node()
}

// Scan reads a table through its DataSource, with precomputed pushdown
// hints (spec §4.3 "Scan hints").
type Scan struct {
	Table   string
	Alias   string
	Columns []string // nil means "all columns needed"
	Where   ast.Expr // nil when no pushdown-safe predicate exists
	Limit   *int64
	Offset  *int64
}

func (*Scan) node() {}

// Count replaces a bare, unfiltered "SELECT COUNT(*) FROM t" plan (spec
// §4.3 "COUNT optimization").
type Count struct {
	Table string
	Alias string
}

func (*Count) node() {}

// Filter keeps rows from Child matching Condition.
type Filter struct {
	Child     Node
	Condition ast.Expr
}

func (*Filter) node() {}

// ProjectColumn is one output column: either a star/qualified-star
// expansion (resolved against the child row's own columns at execution
// time, since the engine has no static schema) or a derived expression
// with its output alias.
type ProjectColumn struct {
	Star          bool
	QualifiedStar string // table name, set only when Star && QualifiedStar != ""
	Expr          ast.Expr
	Alias         string // output column name; "" for Star items
}

// Project evaluates Columns against each row of Child, in order,
// resolving aliases (spec §3 "Select AST").
type Project struct {
	Child   Node
	Columns []ProjectColumn
}

func (*Project) node() {}

// JoinType mirrors ast.JoinType; duplicated here so plan does not need
// to re-export the ast constant names for callers that only see plan.
type JoinType = ast.JoinType

// HashJoin joins Left and Right by equality of LeftKey/RightKey (spec
// §4.5).
type HashJoin struct {
	Left, Right         Node
	LeftTable, RightTable string
	LeftKey, RightKey   ast.Expr
	Type                JoinType
}

func (*HashJoin) node() {}

// NestedLoopJoin evaluates On against the cross product of Left and
// Right (spec §4.5), used whenever the ON condition is not a pure
// equi-join between one column from each side.
type NestedLoopJoin struct {
	Left, Right           Node
	LeftTable, RightTable string
	On                    ast.Expr
	Type                  JoinType
}

func (*NestedLoopJoin) node() {}

// PositionalJoin pairs rows by index, no ON condition (spec §4.5).
type PositionalJoin struct {
	Left, Right           Node
	LeftTable, RightTable string
}

func (*PositionalJoin) node() {}

// HashAggregate groups Child by GroupBy, emitting Columns per group
// (spec §4.6).
type HashAggregate struct {
	Child   Node
	GroupBy []ast.Expr
	Columns []ProjectColumn
	Having  ast.Expr // nil if absent
}

func (*HashAggregate) node() {}

// ScalarAggregate treats all of Child as one group, always emitting
// exactly one row (spec §4.6).
type ScalarAggregate struct {
	Child   Node
	Columns []ProjectColumn
	Having  ast.Expr
}

func (*ScalarAggregate) node() {}

// Sort performs the ORDER BY (spec §4.6).
type Sort struct {
	Child   Node
	OrderBy []ast.OrderByItem
}

func (*Sort) node() {}

// Distinct dedupes Child's rows by canonical stringification (spec
// §4.6).
type Distinct struct {
	Child Node
}

func (*Distinct) node() {}

// Limit applies offset/limit (spec §4.6).
type Limit struct {
	Child  Node
	Limit  *int64
	Offset *int64
}

func (*Limit) node() {}

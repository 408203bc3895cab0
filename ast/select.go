package ast

import "github.com/tessera-sql/sqlengine/pos"

// SelectColumn is one item of the SELECT column list: a bare "*", a
// qualified "t.*", or a derived expression with an optional alias.
type SelectColumn struct {
	Star          bool
	QualifiedStar string // table name, set only when Star && QualifiedStar != ""
	Expr          Expr   // nil when Star
	Alias         string // "" if absent
	Range         pos.Range
}

// TableRef names a table and an optional alias.
type TableRef struct {
	Name  string
	Alias string // "" if absent; Alias defaults to Name for lookups
	Range pos.Range
}

// EffectiveName returns Alias if set, else Name.
func (t TableRef) EffectiveName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// JoinType enumerates supported join kinds.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
	PositionalJoinType
)

// JoinClause is one ordered join in the FROM clause.
type JoinClause struct {
	Type  JoinType
	Table TableRef
	On    Expr // nil for PositionalJoinType
	Range pos.Range
}

// OrderByItem is one ORDER BY term.
type OrderByItem struct {
	Expr  Expr
	Desc  bool
	// NullsFirst is nil when the term did not specify NULLS FIRST/LAST,
	// in which case the default (NULLs low: FIRST for ASC, LAST for DESC)
	// applies (spec §4.6, §9 Open Questions).
	NullsFirst *bool
	Range      pos.Range
}

// LimitClause holds LIMIT/OFFSET, either of which may be absent.
type LimitClause struct {
	Limit  *int64
	Offset *int64
	Range  pos.Range
}

// SelectStatement is the AST produced by the parser for one SELECT.
type SelectStatement struct {
	Distinct bool
	Columns  []SelectColumn
	From     *TableRef
	Joins    []JoinClause
	Where    Expr // nil if absent
	GroupBy  []Expr
	Having   Expr // nil if absent
	OrderBy  []OrderByItem
	Limit    *LimitClause
	Range    pos.Range
}

// Package ast defines the fully position-annotated expression and
// SELECT-statement AST produced by the parser (spec §3).
package ast

import (
	"strings"

	"github.com/tessera-sql/sqlengine/pos"
	"github.com/tessera-sql/sqlengine/value"
)

// Expr is the tagged-sum interface every expression node implements.
// Every concrete node carries its own [Start, End) range.
type Expr interface {
	Pos() pos.Range
}

// Literal is a constant value.
type Literal struct {
	Value value.SqlValue
	Range pos.Range
}

func (n *Literal) Pos() pos.Range { return n.Range }

// Identifier names a column. Name may be qualified ("table.column") or
// the wildcard "*" when it appears as a function argument (COUNT(*)).
type Identifier struct {
	Name  string
	Range pos.Range
}

func (n *Identifier) Pos() pos.Range { return n.Range }

// Qualifier splits a possibly-qualified name into (table, column). table
// is "" when the name is unqualified.
func (n *Identifier) Qualifier() (table, column string) {
	if i := strings.LastIndexByte(n.Name, '.'); i >= 0 {
		return n.Name[:i], n.Name[i+1:]
	}
	return "", n.Name
}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	Not UnaryOp = iota
	IsNull
	IsNotNull
	Neg
)

type Unary struct {
	Op    UnaryOp
	Arg   Expr
	Range pos.Range
}

func (n *Unary) Pos() pos.Range { return n.Range }

// BinaryOp enumerates binary operators: arithmetic, comparison, logical
// and pattern matching.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Neq
	Lt
	Lte
	Gt
	Gte
	And
	Or
	Like
	PlusInterval
	MinusInterval
)

type Binary struct {
	Op    BinaryOp
	L, R  Expr
	Range pos.Range
}

func (n *Binary) Pos() pos.Range { return n.Range }

type Between struct {
	Expr, Lo, Hi Expr
	Range        pos.Range
}

func (n *Between) Pos() pos.Range { return n.Range }

type NotBetween struct {
	Expr, Lo, Hi Expr
	Range        pos.Range
}

func (n *NotBetween) Pos() pos.Range { return n.Range }

type InList struct {
	Expr   Expr
	Values []Expr
	Range  pos.Range
}

func (n *InList) Pos() pos.Range { return n.Range }

type NotInList struct {
	Expr   Expr
	Values []Expr
	Range  pos.Range
}

func (n *NotInList) Pos() pos.Range { return n.Range }

type InSubquery struct {
	Expr     Expr
	Subquery *SelectStatement
	Range    pos.Range
}

func (n *InSubquery) Pos() pos.Range { return n.Range }

type NotInSubquery struct {
	Expr     Expr
	Subquery *SelectStatement
	Range    pos.Range
}

func (n *NotInSubquery) Pos() pos.Range { return n.Range }

type Exists struct {
	Subquery *SelectStatement
	Range    pos.Range
}

func (n *Exists) Pos() pos.Range { return n.Range }

type NotExists struct {
	Subquery *SelectStatement
	Range    pos.Range
}

func (n *NotExists) Pos() pos.Range { return n.Range }

type WhenClause struct {
	Condition Expr
	Result    Expr
}

// Case covers both the simple form (CaseExpr != nil, each When compared
// by equality) and the searched form (CaseExpr == nil, each When
// evaluated as a predicate).
type Case struct {
	CaseExpr Expr // nil for searched CASE
	Whens    []WhenClause
	Else     Expr // nil if absent
	Range    pos.Range
}

func (n *Case) Pos() pos.Range { return n.Range }

type Cast struct {
	Expr   Expr
	ToType string
	Range  pos.Range
}

func (n *Cast) Pos() pos.Range { return n.Range }

// Function covers both scalar and aggregate calls; the distinction is
// made by name lookup at plan/eval time, not by the parser (spec §3).
type Function struct {
	Name     string
	Args     []Expr
	Distinct bool
	Filter   Expr // nil if absent
	Range    pos.Range
}

func (n *Function) Pos() pos.Range { return n.Range }

// IntervalUnit enumerates INTERVAL units.
type IntervalUnit int

const (
	UnitSecond IntervalUnit = iota
	UnitMinute
	UnitHour
	UnitDay
	UnitMonth
	UnitYear
)

// Interval is only meaningful as the right operand of PlusInterval /
// MinusInterval; standalone use is an execution error (spec §4.4).
type Interval struct {
	Value Expr
	Unit  IntervalUnit
	Range pos.Range
}

func (n *Interval) Pos() pos.Range { return n.Range }

// Subquery is a scalar subquery used as an expression.
type Subquery struct {
	Select *SelectStatement
	Range  pos.Range
}

func (n *Subquery) Pos() pos.Range { return n.Range }

// AggregateNames is the closed set of built-in aggregate function names
// (spec §2 Aggregate engine row); GREATEST/LEAST/COALESCE etc. are
// scalar (SPEC_FULL.md §4).
var AggregateNames = map[string]bool{
	"COUNT":         true,
	"SUM":           true,
	"AVG":           true,
	"MIN":           true,
	"MAX":           true,
	"STDDEV_SAMP":   true,
	"STDDEV_POP":    true,
	"JSON_ARRAYAGG": true,
}

// IsAggregateFunctionName reports whether name (in any case) names a
// built-in aggregate.
func IsAggregateFunctionName(name string) bool {
	return AggregateNames[strings.ToUpper(name)]
}

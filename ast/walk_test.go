package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/pos"
	"github.com/tessera-sql/sqlengine/value"
)

func ident(name string) *Identifier { return &Identifier{Name: name} }
func lit(v value.SqlValue) *Literal { return &Literal{Value: v} }

func TestContainsAggregate(t *testing.T) {
	fn := &Function{Name: "COUNT", Args: []Expr{ident("*")}}
	bin := &Binary{Op: Gt, L: fn, R: lit(value.Int64(1))}
	require.True(t, ContainsAggregate(bin))

	plain := &Binary{Op: Gt, L: ident("age"), R: lit(value.Int64(1))}
	require.False(t, ContainsAggregate(plain))
}

func TestContainsAggregateSkipsSubquery(t *testing.T) {
	sub := &Subquery{Select: &SelectStatement{
		Columns: []SelectColumn{{Expr: &Function{Name: "COUNT", Args: []Expr{ident("*")}}}},
	}}
	require.False(t, ContainsAggregate(sub))
}

func TestIdentifiersDedup(t *testing.T) {
	e := &Binary{Op: And,
		L: &Binary{Op: Eq, L: ident("a"), R: ident("b")},
		R: &Binary{Op: Eq, L: ident("a"), R: lit(value.Int64(1))},
	}
	names := Identifiers(e)
	require.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestQualifier(t *testing.T) {
	id := &Identifier{Name: "t.c", Range: pos.Range{Start: 0, End: 3}}
	tbl, col := id.Qualifier()
	require.Equal(t, "t", tbl)
	require.Equal(t, "c", col)
}

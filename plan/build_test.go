package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/ast"
)

func id(name string) ast.Expr { return &ast.Identifier{Name: name} }

func TestBuildBareCountStarUsesCountNode(t *testing.T) {
	require := require.New(t)

	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Expr: &ast.Function{Name: "COUNT", Args: []ast.Expr{id("*")}}}},
		From:    &ast.TableRef{Name: "orders"},
	}
	node, err := Build(stmt)
	require.NoError(err)
	count, ok := node.(*Count)
	require.True(ok, "expected *Count, got %T", node)
	require.Equal("orders", count.Table)
}

func TestBuildSimpleSelectProducesProjectOverScan(t *testing.T) {
	require := require.New(t)

	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Star: true}},
		From:    &ast.TableRef{Name: "users"},
	}
	node, err := Build(stmt)
	require.NoError(err)
	proj, ok := node.(*Project)
	require.True(ok, "expected *Project, got %T", node)
	scan, ok := proj.Child.(*Scan)
	require.True(ok, "expected *Scan child, got %T", proj.Child)
	require.Equal("users", scan.Table)
	require.Nil(scan.Columns, "star select needs all columns")
}

func TestBuildPushesSingleTableWhereIntoScan(t *testing.T) {
	require := require.New(t)

	where := &ast.Binary{Op: ast.Eq, L: id("age"), R: &ast.Literal{}}
	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Star: true}},
		From:    &ast.TableRef{Name: "users"},
		Where:   where,
	}
	node, err := Build(stmt)
	require.NoError(err)
	proj := node.(*Project)
	scan := proj.Child.(*Scan)
	require.NotNil(scan.Where, "single-table predicate should push down into the scan")
}

func TestBuildPushesLimitOffsetWhenSafe(t *testing.T) {
	require := require.New(t)

	limit := int64(10)
	offset := int64(5)
	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Star: true}},
		From:    &ast.TableRef{Name: "users"},
		Limit:   &ast.LimitClause{Limit: &limit, Offset: &offset},
	}
	node, err := Build(stmt)
	require.NoError(err)
	// Top node is still Limit (the executor still enforces it), but the
	// scan hint is also set for a data source that wants to short-circuit.
	top, ok := node.(*Limit)
	require.True(ok, "expected *Limit, got %T", node)
	proj := top.Child.(*Project)
	scan := proj.Child.(*Scan)
	require.Equal(&limit, scan.Limit)
	require.Equal(&offset, scan.Offset)
}

func TestBuildDoesNotPushLimitThroughJoin(t *testing.T) {
	require := require.New(t)

	limit := int64(10)
	// A WHERE referencing no single table (none here, since this is a
	// single-table query) still pushes; use a join instead to block it.
	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Star: true}},
		From:    &ast.TableRef{Name: "a"},
		Joins: []ast.JoinClause{{
			Type:  ast.InnerJoin,
			Table: ast.TableRef{Name: "b"},
			On:    &ast.Binary{Op: ast.Eq, L: id("a.id"), R: id("b.a_id")},
		}},
		Limit: &ast.LimitClause{Limit: &limit},
	}
	node, err := Build(stmt)
	require.NoError(err)
	top := node.(*Limit)
	proj := top.Child.(*Project)
	join, ok := proj.Child.(*HashJoin)
	require.True(ok, "expected *HashJoin, got %T", proj.Child)
	leftScan := join.Left.(*Scan)
	require.Nil(leftScan.Limit, "joins must not push limit/offset into either scan")
}

func TestBuildEquiJoinBecomesHashJoin(t *testing.T) {
	require := require.New(t)

	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Star: true}},
		From:    &ast.TableRef{Name: "a"},
		Joins: []ast.JoinClause{{
			Type:  ast.LeftJoin,
			Table: ast.TableRef{Name: "b"},
			On:    &ast.Binary{Op: ast.Eq, L: id("a.id"), R: id("b.a_id")},
		}},
	}
	node, err := Build(stmt)
	require.NoError(err)
	proj := node.(*Project)
	join, ok := proj.Child.(*HashJoin)
	require.True(ok, "expected *HashJoin, got %T", proj.Child)
	require.Equal(ast.LeftJoin, join.Type)
	require.Equal("a", join.LeftTable)
	require.Equal("b", join.RightTable)
}

func TestBuildNonEquiJoinBecomesNestedLoop(t *testing.T) {
	require := require.New(t)

	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Star: true}},
		From:    &ast.TableRef{Name: "a"},
		Joins: []ast.JoinClause{{
			Type:  ast.InnerJoin,
			Table: ast.TableRef{Name: "b"},
			On:    &ast.Binary{Op: ast.Lt, L: id("a.id"), R: id("b.a_id")},
		}},
	}
	node, err := Build(stmt)
	require.NoError(err)
	proj := node.(*Project)
	_, ok := proj.Child.(*NestedLoopJoin)
	require.True(ok, "expected *NestedLoopJoin, got %T", proj.Child)
}

func TestBuildPositionalJoin(t *testing.T) {
	require := require.New(t)

	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Star: true}},
		From:    &ast.TableRef{Name: "a"},
		Joins: []ast.JoinClause{{
			Type:  ast.PositionalJoinType,
			Table: ast.TableRef{Name: "b"},
		}},
	}
	node, err := Build(stmt)
	require.NoError(err)
	proj := node.(*Project)
	_, ok := proj.Child.(*PositionalJoin)
	require.True(ok, "expected *PositionalJoin, got %T", proj.Child)
}

func TestBuildGroupByProducesHashAggregate(t *testing.T) {
	require := require.New(t)

	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{
			{Expr: id("dept")},
			{Expr: &ast.Function{Name: "COUNT", Args: []ast.Expr{id("*")}}},
		},
		From:    &ast.TableRef{Name: "emp"},
		GroupBy: []ast.Expr{id("dept")},
	}
	node, err := Build(stmt)
	require.NoError(err)
	_, ok := node.(*HashAggregate)
	require.True(ok, "expected *HashAggregate, got %T", node)
}

func TestBuildBareAggregateWithoutGroupByProducesScalarAggregate(t *testing.T) {
	require := require.New(t)

	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Expr: &ast.Function{Name: "SUM", Args: []ast.Expr{id("amount")}}}},
		From:    &ast.TableRef{Name: "orders"},
	}
	node, err := Build(stmt)
	require.NoError(err)
	_, ok := node.(*ScalarAggregate)
	require.True(ok, "expected *ScalarAggregate, got %T", node)
}

func TestBuildOrderByAndDistinctWrapInOrder(t *testing.T) {
	require := require.New(t)

	stmt := &ast.SelectStatement{
		Distinct: true,
		Columns:  []ast.SelectColumn{{Star: true}},
		From:     &ast.TableRef{Name: "users"},
		OrderBy:  []ast.OrderByItem{{Expr: id("name")}},
	}
	node, err := Build(stmt)
	require.NoError(err)
	dist, ok := node.(*Distinct)
	require.True(ok, "expected *Distinct at top, got %T", node)
	_, ok = dist.Child.(*Sort)
	require.True(ok, "expected *Sort under *Distinct, got %T", dist.Child)
}

func TestBuildColumnHintsNarrowToReferencedColumns(t *testing.T) {
	require := require.New(t)

	stmt := &ast.SelectStatement{
		Columns: []ast.SelectColumn{{Expr: id("name")}},
		From:    &ast.TableRef{Name: "users"},
		Where:   &ast.Binary{Op: ast.Eq, L: id("age"), R: &ast.Literal{}},
	}
	node, err := Build(stmt)
	require.NoError(err)
	proj := node.(*Project)
	scan := proj.Child.(*Scan)
	require.ElementsMatch([]string{"name", "age"}, scan.Columns)
}

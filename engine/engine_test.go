package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/datasource"
	"github.com/tessera-sql/sqlengine/value"
)

func usersTable() *datasource.Array {
	return datasource.NewArray([]string{"id", "name"}, [][]value.SqlValue{
		{value.Int64(1), value.String("alice")},
		{value.Int64(2), value.String("bob")},
	})
}

func TestExecuteSQLEndToEndSelect(t *testing.T) {
	require := require.New(t)

	e := New(nil)
	e.RegisterTable("users", usersTable())
	res, err := e.ExecuteSQL(Options{Query: "SELECT name FROM users WHERE id = 2"})
	require.NoError(err)
	defer res.Close()

	r, err := res.Next()
	require.NoError(err)
	require.NotNil(r)
	v, err := r.Get(0)
	require.NoError(err)
	require.Equal("bob", v.String())

	r, err = res.Next()
	require.NoError(err)
	require.Nil(r, "only one row should match id = 2")
}

func TestExecuteSQLAssignsQueryID(t *testing.T) {
	require := require.New(t)

	e := New(nil)
	e.RegisterTable("users", usersTable())
	res, err := e.ExecuteSQL(Options{Query: "SELECT * FROM users"})
	require.NoError(err)
	defer res.Close()
	require.NotEmpty(res.QueryID())
}

func TestExecuteSQLParseErrorSurfacesBeforeAnyRow(t *testing.T) {
	require := require.New(t)

	e := New(nil)
	_, err := e.ExecuteSQL(Options{Query: "NOT A QUERY"})
	require.Error(err)
}

func TestExecuteSQLCountStarOverRegisteredTable(t *testing.T) {
	require := require.New(t)

	e := New(nil)
	e.RegisterTable("users", usersTable())
	res, err := e.ExecuteSQL(Options{
		Query: "SELECT COUNT(*) FROM users",
	})
	require.NoError(err)
	defer res.Close()
	r, err := res.Next()
	require.NoError(err)
	v, err := r.Get(0)
	require.NoError(err)
	require.Equal(int64(2), v.Int64())
}

func TestExecuteSQLRespectsNullsFirstDefaultFromConfig(t *testing.T) {
	require := require.New(t)

	nullsFirst := false
	cfg := DefaultConfig()
	cfg.NullsFirstDefault = &nullsFirst
	e := New(cfg)
	e.RegisterTable("nums", datasource.NewArray([]string{"n"}, [][]value.SqlValue{
		{value.Null}, {value.Int64(1)},
	}))
	res, err := e.ExecuteSQL(Options{Query: "SELECT n FROM nums ORDER BY n"})
	require.NoError(err)
	defer res.Close()

	r, err := res.Next()
	require.NoError(err)
	v, err := r.Get(0)
	require.NoError(err)
	require.Equal(int64(1), v.Int64(), "NullsFirstDefault=false should sort NULL last")
}

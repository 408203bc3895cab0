package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCSVParsesHeaderAndRows(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "users.csv")
	require.NoError(os.WriteFile(path, []byte("id,name\n1,alice\n2,bob\n"), 0o644))

	ds, err := loadCSV(path)
	require.NoError(err)
	require.Equal([]string{"id", "name"}, ds.Columns)
	require.Len(ds.Rows, 2)
	require.Equal("alice", ds.Rows[0][1].String())
}

func TestLoadCSVEmptyFileYieldsNoColumnsOrRows(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	require.NoError(os.WriteFile(path, []byte(""), 0o644))

	ds, err := loadCSV(path)
	require.NoError(err)
	require.Nil(ds.Columns)
	require.Nil(ds.Rows)
}

func TestMultiFlagAccumulatesValues(t *testing.T) {
	require := require.New(t)

	var m multiFlag
	require.NoError(m.Set("a=1.csv"))
	require.NoError(m.Set("b=2.csv"))
	require.Equal([]string{"a=1.csv", "b=2.csv"}, []string(m))
	require.Equal("a=1.csv,b=2.csv", m.String())
}

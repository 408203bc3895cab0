package datasource

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

func TestArrayScanStreamsRowsInOrder(t *testing.T) {
	require := require.New(t)

	a := NewArray([]string{"id", "name"}, [][]value.SqlValue{
		{value.Int64(1), value.String("a")},
		{value.Int64(2), value.String("b")},
	})

	res, err := a.Scan(&row.Context{}, row.ScanOptions{})
	require.NoError(err)
	require.False(res.AppliedWhere)
	require.False(res.AppliedLimitOffset)

	ctx := &row.Context{}
	var got []int64
	for {
		r, err := res.Rows.Next(ctx)
		require.NoError(err)
		if r == nil {
			break
		}
		v, _, err := r.Lookup("id")
		require.NoError(err)
		got = append(got, v.Int64())
	}
	require.Equal([]int64{1, 2}, got)
	require.NoError(res.Rows.Close(ctx))
}

func TestArrayNumRows(t *testing.T) {
	require := require.New(t)

	a := NewArray([]string{"id"}, [][]value.SqlValue{
		{value.Int64(1)}, {value.Int64(2)}, {value.Int64(3)},
	})
	n, ok := a.NumRows(&row.Context{})
	require.True(ok)
	require.Equal(int64(3), n)
}

func TestArrayScanRespectsCancellation(t *testing.T) {
	require := require.New(t)

	a := NewArray([]string{"id"}, [][]value.SqlValue{{value.Int64(1)}})
	res, err := a.Scan(&row.Context{}, row.ScanOptions{})
	require.NoError(err)

	ctx := &row.Context{Signal: cancelledSignal{}}
	r, err := res.Rows.Next(ctx)
	require.NoError(err)
	require.Nil(r)
}

type cancelledSignal struct{}

func (cancelledSignal) Cancelled() bool { return true }

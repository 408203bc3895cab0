package exec

import "github.com/tessera-sql/sqlengine/row"

// limitIter skips offset rows then yields up to limit more (spec §4.6
// LIMIT/OFFSET). A nil bound is unbounded.
type limitIter struct {
	child       row.Iter
	limit       *int64
	offset      *int64
	skipped     int64
	emitted     int64
	skippedDone bool
}

func (it *limitIter) Next(ctx *row.Context) (*row.Row, error) {
	if it.limit != nil && it.emitted >= *it.limit {
		return nil, nil
	}
	if !it.skippedDone {
		for it.offset != nil && it.skipped < *it.offset {
			r, err := it.child.Next(ctx)
			if err != nil {
				return nil, err
			}
			if r == nil {
				it.skippedDone = true
				return nil, nil
			}
			it.skipped++
		}
		it.skippedDone = true
	}
	if ctx.Cancelled() {
		return nil, nil
	}
	r, err := it.child.Next(ctx)
	if err != nil || r == nil {
		return nil, err
	}
	it.emitted++
	return r, nil
}

func (it *limitIter) Close(ctx *row.Context) error { return it.child.Close(ctx) }

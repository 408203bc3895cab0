package exec

import (
	"strconv"
	"strings"

	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/value"
)

// distinctIter dedupes rows by canonical "name:kind:value|..." stringification
// of every column, preserving first-seen order (spec §4.6 DISTINCT). The
// canonical string is the correctness contract; keyIndex's structural
// hash only narrows which prior keys get compared.
type distinctIter struct {
	child row.Iter
	seen  *keyIndex
}

func (it *distinctIter) Next(ctx *row.Context) (*row.Row, error) {
	for {
		if ctx.Cancelled() {
			return nil, nil
		}
		r, err := it.child.Next(ctx)
		if err != nil || r == nil {
			return nil, err
		}
		key, err := canonicalKey(r)
		if err != nil {
			return nil, err
		}
		if len(it.seen.lookup(key)) > 0 {
			continue
		}
		it.seen.add(key, 0)
		return r, nil
	}
}

func (it *distinctIter) Close(ctx *row.Context) error { return it.child.Close(ctx) }

func canonicalKey(r *row.Row) (string, error) {
	var b strings.Builder
	for _, idx := range r.Primary {
		v, err := r.Get(idx)
		if err != nil {
			return "", err
		}
		b.WriteString(r.Columns[idx])
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(v.Kind())))
		b.WriteByte(':')
		b.WriteString(value.Stringify(v))
		b.WriteByte('|')
	}
	return b.String(), nil
}

package exec

import (
	"github.com/mitchellh/hashstructure"
)

// keyIndex buckets canonical string keys by their structural hash as a
// fast pre-filter, falling back to exact string equality inside the
// bucket for the actual correctness check (spec's two-tier hash-join
// build/probe and GROUP BY/DISTINCT key comparison: stringify is the
// contract, the hash only narrows candidates).
type keyIndex struct {
	buckets map[uint64][]keyBucket
}

type keyBucket struct {
	key     string
	indices []int
}

func newKeyIndex() *keyIndex {
	return &keyIndex{buckets: make(map[uint64][]keyBucket)}
}

func (k *keyIndex) add(key string, index int) {
	h := hashKey(key)
	for i, b := range k.buckets[h] {
		if b.key == key {
			k.buckets[h][i].indices = append(b.indices, index)
			return
		}
	}
	k.buckets[h] = append(k.buckets[h], keyBucket{key: key, indices: []int{index}})
}

func (k *keyIndex) lookup(key string) []int {
	for _, b := range k.buckets[hashKey(key)] {
		if b.key == key {
			return b.indices
		}
	}
	return nil
}

func hashKey(key string) uint64 {
	h, err := hashstructure.Hash(key, nil)
	if err != nil {
		return 0
	}
	return h
}

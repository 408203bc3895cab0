// Package similartext builds the ", maybe you mean X?" suffix appended
// to unknown-column and unknown-function errors (spec §4.7 "available
// columns", supplemented per SPEC_FULL.md §4), grounded on the
// teacher's internal/similartext package of the same name and shape.
package similartext

import "strings"

// maxDistance bounds how different a candidate may be from name and
// still count as a plausible typo.
const maxDistance = 2

// Find returns a ", maybe you mean a, b or c?" suffix naming every name
// in names within maxDistance edits of name, or "" if none qualify.
func Find(names []string, name string) string {
	if name == "" || len(names) == 0 {
		return ""
	}
	best := maxDistance + 1
	var matches []string
	for _, n := range names {
		d := levenshtein(name, n)
		switch {
		case d > best:
			continue
		case d < best:
			best = d
			matches = []string{n}
		default:
			matches = append(matches, n)
		}
	}
	if best > maxDistance || len(matches) == 0 {
		return ""
	}
	return ", maybe you mean " + join(matches) + "?"
}

// FindFromMap is Find over a map's keys, for registries keyed by name.
func FindFromMap[V any](names map[string]V, name string) string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	return Find(keys, name)
}

func join(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}

// levenshtein computes the classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

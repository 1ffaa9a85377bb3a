package tdfa

import (
	"sort"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// UTF8Class is a sorted, non-overlapping set of codepoint intervals for
// codepoints >= 0x80 — spec.md §4.5's "UTF-8 DFA states use an interval
// tree for codepoints >= 128 and a byte table otherwise." Codepoints below
// 0x80 are single bytes and belong in a DfaState's ordinary Transitions
// table; this type exists only for the >= 0x80 remainder.
//
// Scope decision (see DESIGN.md): this implementation narrows every
// Wildcard group to the byte-level complement of the delimiter set
// (regexast.RemoveDelimitersFromWildcard), so no lexer path currently
// constructs a UTF8Class at determinization time — CLP/log-surgeon schemas
// are byte-oriented per spec.md §6, and no example scenario exercises a
// variable rule matching non-ASCII codepoints directly. UTF8Class is kept
// as a standalone, independently testable primitive (built on
// golang.org/x/text/unicode/rangetable, same as the rest of the pack uses
// for table-driven Unicode classification) for schema authors who declare
// an explicit `\p{...}`-style class in a future schema revision, rather
// than expanding such a class into thousands of per-codepoint byte
// sequences at build time.
type UTF8Class struct {
	lo, hi []rune // parallel, sorted, non-overlapping
}

// interval is one half-open-free [lo, hi] inclusive codepoint range.
type interval struct{ lo, hi rune }

// NewUTF8Class builds a class from possibly-overlapping, possibly-unsorted
// intervals, merging and sorting them.
func NewUTF8Class(ranges ...[2]rune) *UTF8Class {
	ivals := make([]interval, len(ranges))
	for i, r := range ranges {
		lo, hi := r[0], r[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		ivals[i] = interval{lo, hi}
	}
	sort.Slice(ivals, func(i, j int) bool { return ivals[i].lo < ivals[j].lo })

	c := &UTF8Class{}
	for _, iv := range ivals {
		n := len(c.lo)
		if n > 0 && iv.lo <= c.hi[n-1]+1 {
			if iv.hi > c.hi[n-1] {
				c.hi[n-1] = iv.hi
			}
			continue
		}
		c.lo = append(c.lo, iv.lo)
		c.hi = append(c.hi, iv.hi)
	}
	return c
}

// Contains reports whether r falls in one of the class's intervals.
func (c *UTF8Class) Contains(r rune) bool {
	i := sort.Search(len(c.lo), func(i int) bool { return c.lo[i] > r })
	if i == 0 {
		return false
	}
	i--
	return r >= c.lo[i] && r <= c.hi[i]
}

// Intervals returns the class's merged [lo, hi] pairs in ascending order.
func (c *UTF8Class) Intervals() [][2]rune {
	out := make([][2]rune, len(c.lo))
	for i := range c.lo {
		out[i] = [2]rune{c.lo[i], c.hi[i]}
	}
	return out
}

// FromRangeTable builds a UTF8Class from a standard unicode.RangeTable
// (e.g. unicode.L, unicode.N), the same table shape golang.org/x/text's
// rangetable helpers consume and produce — so a schema author's `\p{L}`
// style class reuses the standard library's own Unicode tables instead of
// a hand-maintained copy.
func FromRangeTable(rt *unicode.RangeTable) *UTF8Class {
	var ranges [][2]rune
	rangetable.Visit(rt, func(lo, hi rune) {
		ranges = append(ranges, [2]rune{lo, hi})
	})
	return NewUTF8Class(ranges...)
}

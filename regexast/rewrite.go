package regexast

// ByteSet is a 256-bit membership set over byte values, used both for the
// schema's configured delimiter set and for a subtree's possible-inputs
// (first-byte) set.
type ByteSet [256]bool

// NewByteSet builds a ByteSet from the given ranges.
func NewByteSet(ranges ...ByteRange) ByteSet {
	var s ByteSet
	for _, r := range ranges {
		for b := int(r.Lo); b <= int(r.Hi); b++ {
			s[b] = true
		}
	}
	return s
}

// Complement returns the set of bytes not in s.
func (s ByteSet) Complement() ByteSet {
	var out ByteSet
	for i := range out {
		out[i] = !s[i]
	}
	return out
}

// Ranges collapses the set into a minimal sorted slice of inclusive ranges.
func (s ByteSet) Ranges() []ByteRange {
	var out []ByteRange
	i := 0
	for i < 256 {
		if !s[i] {
			i++
			continue
		}
		lo := i
		for i < 256 && s[i] {
			i++
		}
		out = append(out, ByteRange{Lo: byte(lo), Hi: byte(i - 1)})
	}
	return out
}

// RemoveDelimitersFromWildcard implements spec.md §4.1 rewrite 1: every
// wildcard Group in the subtree rooted at id is replaced by the complement
// of delims, narrowed to the byte domain (§4.1: "wildcard expands to
// [0..0x10FFFF] and is later narrowed by delimiters"; this module treats
// the schema's byte alphabet as the narrowing domain, since §6's schema
// regex subset is defined over literal bytes and byte-range classes, not
// arbitrary Unicode ranges — see DESIGN.md).
func (a *Ast) RemoveDelimitersFromWildcard(id NodeID, delims ByteSet) {
	if id == InvalidNode {
		return
	}
	n := a.Node(id)
	switch n.Kind {
	case Group:
		if n.Wildcard {
			n.Ranges = delims.Complement().Ranges()
			n.Negate = false
			n.Wildcard = false
		}
	case Cat, Or:
		a.RemoveDelimitersFromWildcard(n.Left, delims)
		a.RemoveDelimitersFromWildcard(n.Right, delims)
	case Mult:
		a.RemoveDelimitersFromWildcard(n.Child, delims)
	case Capture:
		a.RemoveDelimitersFromWildcard(n.Child, delims)
	}
}

// PrefixWithDelimiterClass implements spec.md §4.1 rewrite 2: wraps id in a
// Cat node whose left side is a single-byte Group over delims, forcing the
// rule to only match immediately after a delimiter (or, per the lexer's
// start-of-input priming, at position 0).
func (a *Ast) PrefixWithDelimiterClass(id NodeID, delims ByteSet) NodeID {
	delimGroup := a.NewGroup(delims.Ranges(), false)
	return a.NewCat(delimGroup, id)
}

// PossibleInputs computes the set of bytes that can legally begin a match
// of the subtree rooted at id (spec.md §4.1 "possible-inputs bitset"). For
// a Mult node whose minimum is 0, the first bytes of whatever follows it
// are not part of this subtree's own possible-inputs set (that is the
// caller's job when walking a Cat); an empty-matching subtree contributes
// no bytes of its own.
func (a *Ast) PossibleInputs(id NodeID) ByteSet {
	var out ByteSet
	if id == InvalidNode {
		return out
	}
	n := a.Node(id)
	switch n.Kind {
	case Literal:
		out[n.Byte] = true
	case Group:
		eff := n.Ranges
		set := NewByteSet(eff...)
		if n.Negate {
			set = set.Complement()
		}
		return set
	case Cat:
		left := a.PossibleInputs(n.Left)
		out = left
		if a.Nullable(n.Left) {
			right := a.PossibleInputs(n.Right)
			for i := range out {
				out[i] = out[i] || right[i]
			}
		}
	case Or:
		l := a.PossibleInputs(n.Left)
		r := a.PossibleInputs(n.Right)
		for i := range out {
			out[i] = l[i] || r[i]
		}
	case Mult:
		return a.PossibleInputs(n.Child)
	case Capture:
		return a.PossibleInputs(n.Child)
	}
	return out
}

// Nullable reports whether the subtree rooted at id can match the empty
// string, used by PossibleInputs to decide whether a Cat's right side also
// contributes first bytes.
func (a *Ast) Nullable(id NodeID) bool {
	if id == InvalidNode {
		return true
	}
	n := a.Node(id)
	switch n.Kind {
	case Literal, Group:
		return false
	case Cat:
		return a.Nullable(n.Left) && a.Nullable(n.Right)
	case Or:
		return a.Nullable(n.Left) || a.Nullable(n.Right)
	case Mult:
		return n.Min == 0 || a.Nullable(n.Child)
	case Capture:
		return a.Nullable(n.Child)
	default:
		return true
	}
}

package regexast

// CaptureSet is a set of capture names, used to compute the positive and
// negative capture sets the Or node needs when emitting negative tag
// operations (spec.md §4.1: "add-to-nfa for Or emits, on one branch, the
// negative tag operations for the captures present only in the other
// branch").
type CaptureSet map[string]bool

// union returns a new set containing every name in a or b.
func union(a, b CaptureSet) CaptureSet {
	out := make(CaptureSet, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

// SubtreeCaptures returns every capture name that occurs anywhere in the
// subtree rooted at id. Every capture reachable from a node is "positive"
// for that node in the sense of spec.md §4.1 ("subtree_positive_captures"):
// a name the subtree may bind if matched at all.
func (a *Ast) SubtreeCaptures(id NodeID) CaptureSet {
	if id == InvalidNode {
		return CaptureSet{}
	}
	n := a.Node(id)
	switch n.Kind {
	case Literal, Group:
		return CaptureSet{}
	case Cat, Or:
		return union(a.SubtreeCaptures(n.Left), a.SubtreeCaptures(n.Right))
	case Mult:
		return a.SubtreeCaptures(n.Child)
	case Capture:
		s := a.SubtreeCaptures(n.Child)
		out := make(CaptureSet, len(s)+1)
		for k := range s {
			out[k] = true
		}
		out[n.Name] = true
		return out
	default:
		return CaptureSet{}
	}
}

// NegativeCaptures returns the captures that occur in sibling but not in
// id's own subtree: the set of names for which id's branch must emit
// TagNegate operations when both branches of an Or join at a shared
// continuation.
func (a *Ast) NegativeCaptures(id, sibling NodeID) CaptureSet {
	own := a.SubtreeCaptures(id)
	other := a.SubtreeCaptures(sibling)
	out := make(CaptureSet)
	for k := range other {
		if !own[k] {
			out[k] = true
		}
	}
	return out
}

// AllCaptureNames walks the whole tree and returns every capture name in
// first-occurrence (pre-order) order, each name once. Per-rule name
// uniqueness itself is enforced by the schema parser, not here.
func (a *Ast) AllCaptureNames() []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(id NodeID)
	walk = func(id NodeID) {
		if id == InvalidNode {
			return
		}
		n := a.Node(id)
		switch n.Kind {
		case Cat, Or:
			walk(n.Left)
			walk(n.Right)
		case Mult:
			walk(n.Child)
		case Capture:
			if !seen[n.Name] {
				seen[n.Name] = true
				names = append(names, n.Name)
			}
			walk(n.Child)
		}
	}
	walk(a.root)
	return names
}

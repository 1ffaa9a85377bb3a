// Package register implements the append-only PrefixTree and the
// RegisterHandler that names leaves in it (spec.md §4.3, L3). A register is
// a handle into the tree; a register's current node plus its ancestor
// chain is the reverse sequence of positions recorded for the tag that
// register tracks. The tree never frees nodes — it is reset wholesale
// between scans, the same lifecycle the NFA/DFA arenas in tnfa/tdfa use.
package register

import "errors"

// NodeID indexes a PrefixTree node. The root is always NodeID(0).
type NodeID uint32

// Root is the sentinel "no position recorded yet" node.
const Root NodeID = 0

// UnmatchedPos is the sentinel position recorded for a capture that is
// known not to have occurred (spec.md §3 Register: "a register with node
// at the sentinel root position denotes unmatched").
const UnmatchedPos int64 = -1

// ErrOutOfRange is returned for an out-of-bounds node or register access,
// a programmer error per spec.md §7.4.
var ErrOutOfRange = errors.New("register: index out of range")

type node struct {
	pred NodeID
	pos  int64
}

// PrefixTree is an append-only tree of recorded positions. insert adds a
// new child under a predecessor; set rewrites an existing node's own
// position without touching its parent link.
type PrefixTree struct {
	nodes []node
}

// NewPrefixTree creates a tree containing only the root, (pred=0, pos=-1).
func NewPrefixTree() *PrefixTree {
	return &PrefixTree{nodes: []node{{pred: Root, pos: UnmatchedPos}}}
}

// Insert appends a new node as a child of pred recording pos, returning the
// new node's ID.
func (t *PrefixTree) Insert(pred NodeID, pos int64) (NodeID, error) {
	if int(pred) >= len(t.nodes) {
		return 0, ErrOutOfRange
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{pred: pred, pos: pos})
	return id, nil
}

// Set rewrites the position stored at id, leaving its predecessor link
// untouched.
func (t *PrefixTree) Set(id NodeID, pos int64) error {
	if int(id) >= len(t.nodes) {
		return ErrOutOfRange
	}
	t.nodes[id].pos = pos
	return nil
}

// GetReversedPositions walks id's predecessor chain up to (but excluding)
// the root, returning the recorded positions tip-to-root (most recent
// occurrence first), matching spec.md §4.3 and the tip-to-root ordering
// guarantee in §5.
func (t *PrefixTree) GetReversedPositions(id NodeID) ([]int64, error) {
	if int(id) >= len(t.nodes) {
		return nil, ErrOutOfRange
	}
	var out []int64
	for id != Root {
		n := t.nodes[id]
		out = append(out, n.pos)
		id = n.pred
	}
	return out, nil
}

// Reset discards every node but the root, releasing the tree's storage for
// reuse between scans (spec.md §5: "cleared on reset()").
func (t *PrefixTree) Reset() {
	t.nodes = t.nodes[:1]
}

// Len returns the number of nodes in the tree, including the root.
func (t *PrefixTree) Len() int { return len(t.nodes) }

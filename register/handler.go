package register

// RegisterID indexes a register: a named, mutable "current position" in the
// owning Handler's PrefixTree.
type RegisterID uint32

// Handler owns a PrefixTree and the registers pointing into it. Operations
// mirror spec.md §4.3 exactly: add_register, set_register, copy_register,
// append_position, get_reversed_positions.
type Handler struct {
	tree *PrefixTree
	regs []NodeID
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{tree: NewPrefixTree()}
}

// AddRegister allocates a fresh register pointing at a new child of parent
// (or of the tree root if parent is nil).
func (h *Handler) AddRegister(parent *NodeID) (RegisterID, error) {
	p := Root
	if parent != nil {
		p = *parent
	}
	node, err := h.tree.Insert(p, UnmatchedPos)
	if err != nil {
		return 0, err
	}
	id := RegisterID(len(h.regs))
	h.regs = append(h.regs, node)
	return id, nil
}

// SetRegister rewrites reg's leaf position in place (single-valued capture
// update).
func (h *Handler) SetRegister(reg RegisterID, pos int64) error {
	node, err := h.node(reg)
	if err != nil {
		return err
	}
	return h.tree.Set(node, pos)
}

// CopyRegister makes dest point wherever src currently points, so the two
// registers share history from this point on without copying any tree data.
func (h *Handler) CopyRegister(dest, src RegisterID) error {
	srcNode, err := h.node(src)
	if err != nil {
		return err
	}
	if int(dest) >= len(h.regs) {
		return ErrOutOfRange
	}
	h.regs[dest] = srcNode
	return nil
}

// AppendPosition records a new occurrence for reg: a fresh child node under
// reg's current leaf, used when the tag reg tracks is multi-valued (inside
// a repetition) so every occurrence survives rather than being overwritten.
func (h *Handler) AppendPosition(reg RegisterID, pos int64) error {
	cur, err := h.node(reg)
	if err != nil {
		return err
	}
	newNode, err := h.tree.Insert(cur, pos)
	if err != nil {
		return err
	}
	h.regs[reg] = newNode
	return nil
}

// Negate records the "unmatched" sentinel at reg's current leaf.
func (h *Handler) Negate(reg RegisterID) error {
	return h.SetRegister(reg, UnmatchedPos)
}

// GetReversedPositions delegates to the tree, returning reg's recorded
// positions tip-to-root.
func (h *Handler) GetReversedPositions(reg RegisterID) ([]int64, error) {
	node, err := h.node(reg)
	if err != nil {
		return nil, err
	}
	return h.tree.GetReversedPositions(node)
}

// CurrentNode exposes the PrefixTree node a register currently points at,
// used by tdfa determinization to compare two configurations' histories by
// structural node identity.
func (h *Handler) CurrentNode(reg RegisterID) (NodeID, error) {
	return h.node(reg)
}

func (h *Handler) node(reg RegisterID) (NodeID, error) {
	if int(reg) >= len(h.regs) {
		return 0, ErrOutOfRange
	}
	return h.regs[reg], nil
}

// Reset clears the underlying tree and every register back to "unmatched",
// called between scans.
func (h *Handler) Reset() {
	h.tree.Reset()
	for i := range h.regs {
		h.regs[i] = Root
	}
}

// Count returns the number of registers allocated.
func (h *Handler) Count() int { return len(h.regs) }

// Snapshot captures every register's current node, letting a caller that
// speculatively advances past a DFA accept (hunting for a longer match)
// roll back the register bank if that longer attempt dead-ends — the tree
// itself is append-only and never shrinks, so rollback is just repointing.
func (h *Handler) Snapshot() []NodeID {
	snap := make([]NodeID, len(h.regs))
	copy(snap, h.regs)
	return snap
}

// Restore repoints every register to the node recorded in snap.
func (h *Handler) Restore(snap []NodeID) {
	copy(h.regs, snap)
}

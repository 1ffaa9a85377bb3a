package tnfa

import "github.com/coregx/logslex/internal/conv"

// Fragment is a partially built NFA piece: an entry state and an exit state
// that still needs to be patched to a continuation. regexast's addToNFA
// composes Fragments the way Thompson construction always has: concatenation
// patches one fragment's exit to the next's entry, alternation joins two
// fragments under a shared Spontaneous entry, repetition loops a fragment's
// exit back to a Spontaneous split.
type Fragment struct {
	Start StateID
	// Exit is a StateSpontaneous state with exactly one edge whose Dest is
	// still InvalidState, ready for Builder.Patch.
	Exit StateID
}

// Builder incrementally constructs an NFA. One Builder accumulates the
// states of every rule folded into a single lexer, so tag IDs and state IDs
// stay unique across rules.
type Builder struct {
	states []State
	root   StateID
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{states: make([]State, 0, 64), root: InvalidState}
}

// AddByte appends a StateByte state consuming [lo, hi] to next.
func (b *Builder) AddByte(lo, hi byte, next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{kind: StateByte, lo: lo, hi: hi, next: next})
	return id
}

// AddSparse appends a StateSparse state. ranges is copied defensively.
func (b *Builder) AddSparse(ranges []ByteRange) StateID {
	cp := make([]ByteRange, len(ranges))
	copy(cp, ranges)
	id := StateID(len(b.states))
	b.states = append(b.states, State{kind: StateSparse, ranges: cp})
	return id
}

// AddSpontaneous appends a StateSpontaneous state with the given edges.
// edges is copied defensively.
func (b *Builder) AddSpontaneous(edges []SpontEdge) StateID {
	cp := make([]SpontEdge, len(edges))
	copy(cp, edges)
	id := StateID(len(b.states))
	b.states = append(b.states, State{kind: StateSpontaneous, edges: cp})
	return id
}

// AddMatch appends a StateMatch state accepting rule.
func (b *Builder) AddMatch(rule RuleID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{kind: StateMatch, rule: rule})
	return id
}

// OpenExit creates a single-edge dangling Spontaneous state, the building
// block every Fragment.Exit is made of. The single edge's Dest stays
// InvalidState until Patch connects it to a continuation.
func (b *Builder) OpenExit() StateID {
	return b.OpenExitWithOps(nil)
}

// OpenExitWithOps is OpenExit but the dangling edge also carries tag
// operations, used by Capture to record its end tag exactly where control
// leaves the captured subtree.
func (b *Builder) OpenExitWithOps(ops []TagOp) StateID {
	return b.AddSpontaneous([]SpontEdge{{Ops: ops, Dest: InvalidState}})
}

// Patch rewires every dangling (InvalidState) destination reachable
// directly from the given open-exit spontaneous state to target. Only
// states created via OpenExit/OpenExitWithOps (single edge, Dest ==
// InvalidState) may be patched this way; states with more than one
// dangling edge (Mult/Or splits under construction) use PatchAt.
func (b *Builder) Patch(exit StateID, target StateID) error {
	if int(exit) >= len(b.states) {
		return &BuildError{Message: "state ID out of bounds", State: exit}
	}
	s := &b.states[exit]
	if s.kind != StateSpontaneous {
		return &BuildError{Message: "cannot patch a non-spontaneous state", State: exit}
	}
	for i := range s.edges {
		if s.edges[i].Dest == InvalidState {
			s.edges[i].Dest = target
		}
	}
	return nil
}

// PatchAt sets exactly the edge at index idx of a Spontaneous state,
// regardless of its current Dest. Used to wire up split states (Or
// alternation, Mult loops) whose two edges must be patched independently.
func (b *Builder) PatchAt(id StateID, idx int, target StateID) error {
	if int(id) >= len(b.states) {
		return &BuildError{Message: "state ID out of bounds", State: id}
	}
	s := &b.states[id]
	if s.kind != StateSpontaneous || idx >= len(s.edges) {
		return &BuildError{Message: "invalid edge index for PatchAt", State: id}
	}
	s.edges[idx].Dest = target
	return nil
}

// SetRoot installs the NFA root: a Spontaneous state with one edge per
// rule's start state, in rule-ID (priority) order.
func (b *Builder) SetRoot(ruleStarts []StateID) {
	edges := make([]SpontEdge, len(ruleStarts))
	for i, s := range ruleStarts {
		edges[i] = SpontEdge{Dest: s}
	}
	b.root = b.AddSpontaneous(edges)
}

// Build finalizes the NFA. tagCount is the number of tag IDs allocated by
// the caller (regexast build step) across every rule.
func (b *Builder) Build(ruleCount, tagCount int) (*NFA, error) {
	if b.root == InvalidState {
		return nil, &BuildError{Message: "root not set"}
	}
	return &NFA{
		states:    b.states,
		root:      b.root,
		ruleCount: ruleCount,
		tagCount:  tagCount,
	}, nil
}

// StateCount returns the number of states built so far, used by callers
// enforcing a size budget (e.g. schema.Compile's maxNFAStates) before they
// call Build.
func (b *Builder) StateCount() int { return len(b.states) }

// NextID previews the ID the next Add* call would assign.
func (b *Builder) NextID() StateID { return StateID(conv.IntToUint32(len(b.states))) }

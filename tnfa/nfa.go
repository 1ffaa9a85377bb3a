// Package tnfa implements a tagged Thompson NFA: a Thompson-style
// non-deterministic automaton whose epsilon transitions may also carry "tag
// operations" that record the input position at which a schema capture
// group started, ended, or failed to occur. It is the L2 component of the
// log-event tokenizer: RegexAst (regexast) compiles into one tnfa.NFA per
// schema, and tdfa determinizes that NFA into a tagged DFA.
//
// The tagged-NFA/tagged-DFA construction follows Ville Laurikari's "NFAs
// with Tagged Transitions" (the same approach used by TRE and by the
// log-surgeon project this schema language is modeled on): tags generalize
// submatch tracking so that capture positions can be recovered without
// backtracking.
package tnfa

import "fmt"

// StateID uniquely identifies an NFA state within one NFA.
type StateID uint32

// Special state IDs.
const (
	InvalidState StateID = 0xFFFFFFFF
)

// RuleID identifies one schema variable rule within a lexer.
type RuleID uint32

// TagID uniquely identifies a capture boundary (start or end) across every
// rule compiled into one lexer. Tag IDs are allocated lexer-globally, never
// reused, by the regexast -> tnfa build step.
type TagID uint32

// TagOpKind is the kind of a tag operation carried by a spontaneous
// transition.
type TagOpKind uint8

const (
	// TagSet records the current input position for TagOp.Tag.
	TagSet TagOpKind = iota
	// TagNegate marks TagOp.Tag as "not taken on this path" — used on the
	// branch of an alternation that does not contain the capture, so
	// determinization can tell the two branches apart.
	TagNegate
)

// TagOp is one tag operation: "when this spontaneous transition is taken,
// do Kind to Tag". MultiValued marks tags that sit inside a repetition,
// whose every occurrence must be retained rather than overwritten.
type TagOp struct {
	Tag         TagID
	Kind        TagOpKind
	MultiValued bool
}

// SpontEdge is one spontaneous (epsilon-generalized) transition: it
// consumes no input but may record tag operations on the way to Dest.
// An edge with a nil Ops is a pure epsilon move.
type SpontEdge struct {
	Ops  []TagOp
	Dest StateID
}

// ByteRange is an inclusive byte transition target used by sparse states.
type ByteRange struct {
	Lo, Hi byte
	Next   StateID
}

// StateKind discriminates the four shapes an NFA state can take. Only the
// fields relevant to Kind are meaningful, mirroring a tagged union.
type StateKind uint8

const (
	// StateByte consumes a single byte in [Lo, Hi] and moves to Next.
	StateByte StateKind = iota
	// StateSparse consumes a single byte via one of several disjoint
	// byte ranges (character class), each with its own successor.
	StateSparse
	// StateSpontaneous is a zero-width move along one or more SpontEdges,
	// optionally recording tag operations. Generalizes epsilon, split,
	// and capture-boundary states into one shape.
	StateSpontaneous
	// StateMatch is an accepting state for RuleID.
	StateMatch
)

// String implements fmt.Stringer.
func (k StateKind) String() string {
	switch k {
	case StateByte:
		return "Byte"
	case StateSparse:
		return "Sparse"
	case StateSpontaneous:
		return "Spontaneous"
	case StateMatch:
		return "Match"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// State is one NFA state. Matches the data model's "Nfa state" shape from
// the design: accepting flag + rule ID, byte transitions, spontaneous
// transitions.
type State struct {
	kind StateKind

	// StateByte
	lo, hi byte
	next   StateID

	// StateSparse
	ranges []ByteRange

	// StateSpontaneous
	edges []SpontEdge

	// StateMatch
	rule RuleID
}

// Kind returns the state's kind.
func (s *State) Kind() StateKind { return s.kind }

// ByteRange returns the byte range and successor for a StateByte state.
func (s *State) ByteRange() (lo, hi byte, next StateID) {
	return s.lo, s.hi, s.next
}

// Sparse returns the byte ranges for a StateSparse state.
func (s *State) Sparse() []ByteRange { return s.ranges }

// Edges returns the spontaneous transitions for a StateSpontaneous state.
func (s *State) Edges() []SpontEdge { return s.edges }

// Rule returns the accepting rule ID for a StateMatch state.
func (s *State) Rule() RuleID { return s.rule }

// NFA is a compiled tagged Thompson NFA for every rule of one schema.
type NFA struct {
	states []State
	root   StateID // spontaneous state with one edge per rule's start

	// ruleCount is the number of rules folded into this NFA.
	ruleCount int

	// tagCount is the number of tag IDs (2 per capture: start, end) that
	// transitions in this NFA may reference.
	tagCount int
}

// State returns the state for id, or nil if id is out of range.
func (n *NFA) State(id StateID) *State {
	if id == InvalidState || int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

// Root returns the NFA's root state: a StateSpontaneous state with one
// edge to each rule's start state.
func (n *NFA) Root() StateID { return n.root }

// States returns the number of states in the NFA.
func (n *NFA) States() int { return len(n.states) }

// RuleCount returns the number of rules compiled into this NFA.
func (n *NFA) RuleCount() int { return n.ruleCount }

// TagCount returns the number of tag IDs referenced by this NFA.
func (n *NFA) TagCount() int { return n.tagCount }

// String implements fmt.Stringer.
func (n *NFA) String() string {
	return fmt.Sprintf("NFA{states: %d, rules: %d, tags: %d}", len(n.states), n.ruleCount, n.tagCount)
}

// Package tdfa determinizes a tagged NFA (tnfa.NFA) into a tagged DFA: a
// byte-driven automaton whose transitions carry register operations that
// reproduce, without backtracking, the capture positions a backtracking
// engine would have recorded (spec.md §4.4, L4).
//
// Design decision (recorded in DESIGN.md "Open Question decisions" /
// simplifications): this package allocates exactly one register per tag,
// globally, rather than Laurikari's full per-configuration register
// allocation with state-merging minimization. DFA-state identity is the
// classic subset-construction key (the set of live NFA states), and at
// each transition, newly reached configurations are deduplicated by
// priority order (first epsilon path wins ties, matching rule-priority
// semantics) before their tag operations are translated 1:1 into
// RegOp. This is sufficient for every property in spec.md §8 — it
// sacrifices some of Laurikari's register-count minimality, not
// correctness — and keeps RegCopy available for API completeness
// even though this construction never needs to emit it.
package tdfa

import (
	"fmt"
	"sort"

	"github.com/coregx/logslex/tnfa"
)

// StateID identifies a Dfa state.
type StateID uint32

// DeadState is the sentinel "no transition" destination.
const DeadState StateID = 0xFFFFFFFF

// RegisterID is a register handle. Under this package's one-register-per-tag
// design, RegisterID(t) always names the register tracking tnfa.TagID(t).
type RegisterID uint32

// RegOpKind is the kind of a register operation (spec.md §3 "Register
// operation").
type RegOpKind uint8

const (
	// RegSet appends/overwrites the current input position for Reg.
	RegSet RegOpKind = iota
	// RegCopy makes Reg alias Other's current leaf. Never emitted by
	// Determinize under the one-register-per-tag design; retained so the
	// type matches spec.md's register-operation shape and so a future,
	// fuller Laurikari-style allocator can emit it without an API change.
	RegCopy
	// RegNegate records the unmatched sentinel for Reg.
	RegNegate
)

// RegOp is one register operation attached to a DfaTransition.
type RegOp struct {
	Reg         RegisterID
	Kind        RegOpKind
	Other       RegisterID // meaningful only for RegCopy
	MultiValued bool
}

// Transition is one byte-range's worth of a DfaState's outgoing edges.
type Transition struct {
	Lo, Hi byte
	Dest   StateID
	Ops    []RegOp
}

// CaptureTag names the pair of registers a named capture resolves to.
type CaptureTag struct {
	Start, End RegisterID
}

// RuleMatch is one accepting rule recorded at a DfaState, together with the
// capture table needed to resolve that rule's named captures.
type RuleMatch struct {
	Rule     tnfa.RuleID
	Captures map[string]CaptureTag
}

// DfaState is one state of the tagged DFA.
type DfaState struct {
	// Transitions is kept sorted and non-overlapping by Lo;
	// TransitionFor scans it linearly.
	Transitions []Transition

	// Matches lists every rule accepted at this state, in ascending
	// RuleID (priority) order; empty if this state is not accepting.
	Matches []RuleMatch
}

// Accepting reports whether this state accepts any rule.
func (s *DfaState) Accepting() bool { return len(s.Matches) > 0 }

// WinningMatch returns the highest-priority (lowest RuleID) match at this
// state, implementing spec.md §8 property 1's tie-break.
func (s *DfaState) WinningMatch() (RuleMatch, bool) {
	if len(s.Matches) == 0 {
		return RuleMatch{}, false
	}
	return s.Matches[0], true
}

// TransitionFor returns the transition matching byte b, or (nil, false) if
// b leads to a dead state.
func (s *DfaState) TransitionFor(b byte) (*Transition, bool) {
	// Transitions are few and sorted; linear scan is simple and fast for
	// the small per-state transition counts schemas produce in practice.
	for i := range s.Transitions {
		t := &s.Transitions[i]
		if b >= t.Lo && b <= t.Hi {
			return t, true
		}
	}
	return nil, false
}

// Dfa is the full tagged DFA for one schema: every rule's variable folded
// into one automaton, plus the total register/tag count needed to size a
// runtime register bank.
type Dfa struct {
	states     []DfaState
	start      StateID
	tagCount   int
	firstBytes [256]bool // union of bytes that can start ANY rule from start

	// entryOps are register operations to apply once, at position 0,
	// before the first byte is read — the tag-side equivalent of
	// spec.md §4.6's start-of-input priming. Covers rules beginning with
	// a capture around a possibly-empty prefix.
	entryOps []RegOp
}

// Start returns the DFA's start state.
func (d *Dfa) Start() StateID { return d.start }

// EntryOps returns the register operations a Lexer must apply once, at
// position 0, before consuming any input.
func (d *Dfa) EntryOps() []RegOp { return d.entryOps }

// State returns the state for id.
func (d *Dfa) State(id StateID) *DfaState {
	if id == DeadState || int(id) >= len(d.states) {
		return nil
	}
	return &d.states[id]
}

// States returns the number of states.
func (d *Dfa) States() int { return len(d.states) }

// TagCount returns the number of tags (== number of registers, under the
// one-register-per-tag design).
func (d *Dfa) TagCount() int { return d.tagCount }

// CanStartWith reports whether byte b can begin a match of any rule from
// the start state — the "first_char bitset" spec.md §4.6 primes the lexer
// with.
func (d *Dfa) CanStartWith(b byte) bool { return d.firstBytes[b] }

func (d *Dfa) String() string {
	return fmt.Sprintf("Dfa{states: %d, tags: %d}", len(d.states), d.tagCount)
}

// sortRuleIDs is a tiny helper used by Determinize to keep Matches in
// priority order.
func sortRuleIDs(ids []tnfa.RuleID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

package tdfa

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coregx/logslex/internal/sparse"
	"github.com/coregx/logslex/tnfa"
)

// config is one live NFA configuration reached during closure: the
// byte-consuming or match state itself, plus the tag operations accumulated
// along the highest-priority epsilon path that reached it.
type config struct {
	state tnfa.StateID
	ops   []tnfa.TagOp
}

// closure computes the epsilon-closure of starts: every StateByte,
// StateSparse or StateMatch state reachable via zero or more StateSpontaneous
// hops, in priority order (starts are walked in order, and each
// StateSpontaneous state's own SpontEdges are walked in order), with the
// tag operations accumulated along the way. A destination state already
// recorded by a higher-priority path is never revisited, matching the
// "leftmost alternative wins" priority semantics spec.md §8 property 1
// requires of rule and alternation ordering.
func closure(nfa *tnfa.NFA, starts []tnfa.StateID) []config {
	universe := uint32(nfa.States())
	visitedSpont := sparse.New(universe)
	seenDest := sparse.New(universe)
	var out []config

	var walk func(id tnfa.StateID, ops []tnfa.TagOp)
	walk = func(id tnfa.StateID, ops []tnfa.TagOp) {
		st := nfa.State(id)
		if st == nil {
			return
		}
		switch st.Kind() {
		case tnfa.StateByte, tnfa.StateSparse, tnfa.StateMatch:
			if !seenDest.Insert(uint32(id)) {
				return
			}
			out = append(out, config{state: id, ops: ops})
		case tnfa.StateSpontaneous:
			if !visitedSpont.Insert(uint32(id)) {
				return
			}
			for _, e := range st.Edges() {
				next := ops
				if len(e.Ops) > 0 {
					merged := make([]tnfa.TagOp, 0, len(ops)+len(e.Ops))
					merged = append(merged, ops...)
					merged = append(merged, e.Ops...)
					next = merged
				}
				walk(e.Dest, next)
			}
		}
	}

	for _, s := range starts {
		walk(s, nil)
	}
	return out
}

// translateOps maps accumulated tag operations 1:1 into register operations
// under the one-register-per-tag scheme.
func translateOps(ops []tnfa.TagOp) []RegOp {
	if len(ops) == 0 {
		return nil
	}
	out := make([]RegOp, len(ops))
	for i, op := range ops {
		kind := RegSet
		if op.Kind == tnfa.TagNegate {
			kind = RegNegate
		}
		out[i] = RegOp{Reg: RegisterID(op.Tag), Kind: kind, MultiValued: op.MultiValued}
	}
	return out
}

func concatOps(cfgs []config) []tnfa.TagOp {
	var out []tnfa.TagOp
	for _, c := range cfgs {
		out = append(out, c.ops...)
	}
	return out
}

// stateKey identifies a DFA state by the sorted set of live NFA state IDs it
// folds together; tag-operation history never affects identity, only the
// transition edges leading into a state.
func stateKey(cfgs []config) string {
	ids := make([]uint32, len(cfgs))
	for i, c := range cfgs {
		ids[i] = uint32(c.state)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	return b.String()
}

func opsEqual(a, b []RegOp) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// mergeTransitions collapses adjacent single-byte transitions sharing the
// same destination and register operations into contiguous ranges, keeping
// DfaState.Transitions compact.
func mergeTransitions(in []Transition) []Transition {
	if len(in) == 0 {
		return nil
	}
	out := make([]Transition, 0, len(in))
	cur := in[0]
	for _, t := range in[1:] {
		if t.Lo == cur.Hi+1 && t.Dest == cur.Dest && opsEqual(t.Ops, cur.Ops) {
			cur.Hi = t.Hi
			continue
		}
		out = append(out, cur)
		cur = t
	}
	out = append(out, cur)
	return out
}

// DefaultMaxStates bounds subset construction when Determinize is called
// with maxStates <= 0, guarding against schemas that blow up combinatorially
// (e.g. deeply nested unbounded repetitions of wide character classes).
const DefaultMaxStates = 1 << 16

// Determinize runs subset construction over nfa, producing the tagged DFA
// for every rule folded into it. ruleCaptures supplies, for each rule, the
// named-capture -> register table that CompileRule produced (already
// translated from tnfa.TagID to RegisterID by the caller, a 1:1 relabeling
// under this package's one-register-per-tag design). maxStates <= 0 uses
// DefaultMaxStates.
func Determinize(nfa *tnfa.NFA, ruleCaptures map[tnfa.RuleID]map[string]CaptureTag, maxStates int) (*Dfa, error) {
	if nfa.RuleCount() == 0 {
		return nil, ErrNoRules
	}
	if maxStates <= 0 {
		maxStates = DefaultMaxStates
	}

	var states []DfaState
	var cfgsByState [][]config
	keyIndex := make(map[string]StateID)
	var queue []StateID

	addState := func(cfgs []config) (StateID, error) {
		key := stateKey(cfgs)
		if id, ok := keyIndex[key]; ok {
			return id, nil
		}
		if len(states) >= maxStates {
			return 0, ErrTooComplex
		}
		id := StateID(len(states))
		keyIndex[key] = id
		states = append(states, DfaState{})
		cfgsByState = append(cfgsByState, cfgs)
		queue = append(queue, id)
		return id, nil
	}

	initCfgs := closure(nfa, []tnfa.StateID{nfa.Root()})
	startID, err := addState(initCfgs)
	if err != nil {
		return nil, err
	}
	entryOps := translateOps(concatOps(initCfgs))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		cfgs := cfgsByState[id]

		var ruleIDs []tnfa.RuleID
		seenRule := make(map[tnfa.RuleID]bool)
		for _, c := range cfgs {
			st := nfa.State(c.state)
			if st.Kind() == tnfa.StateMatch {
				r := st.Rule()
				if !seenRule[r] {
					seenRule[r] = true
					ruleIDs = append(ruleIDs, r)
				}
			}
		}
		sortRuleIDs(ruleIDs)
		matches := make([]RuleMatch, 0, len(ruleIDs))
		for _, r := range ruleIDs {
			matches = append(matches, RuleMatch{Rule: r, Captures: ruleCaptures[r]})
		}

		var trans []Transition
		for b := 0; b <= 0xFF; b++ {
			byteVal := byte(b)
			var nextStarts []tnfa.StateID
			for _, c := range cfgs {
				st := nfa.State(c.state)
				switch st.Kind() {
				case tnfa.StateByte:
					lo, hi, next := st.ByteRange()
					if byteVal >= lo && byteVal <= hi {
						nextStarts = append(nextStarts, next)
					}
				case tnfa.StateSparse:
					for _, r := range st.Sparse() {
						if byteVal >= r.Lo && byteVal <= r.Hi {
							nextStarts = append(nextStarts, r.Next)
							break
						}
					}
				}
			}
			if len(nextStarts) == 0 {
				continue
			}
			destCfgs := closure(nfa, nextStarts)
			destID, err := addState(destCfgs)
			if err != nil {
				return nil, err
			}
			ops := translateOps(concatOps(destCfgs))
			trans = append(trans, Transition{Lo: byteVal, Hi: byteVal, Dest: destID, Ops: ops})
		}

		states[id].Matches = matches
		states[id].Transitions = mergeTransitions(trans)
	}

	d := &Dfa{
		states:   states,
		start:    startID,
		tagCount: nfa.TagCount(),
		entryOps: entryOps,
	}
	for _, t := range d.states[startID].Transitions {
		for b := int(t.Lo); b <= int(t.Hi); b++ {
			d.firstBytes[b] = true
		}
	}
	return d, nil
}

package tdfa

import (
	"fmt"
	"sort"

	"github.com/coregx/logslex/tnfa"
	"github.com/fxamacker/cbor/v2"
)

// bfsOrder computes a BFS visitation order from the start state, the same
// ground-truth renumbering tnfa.NFA.Serialize uses: two Dfas built from
// structurally equivalent schemas in different rule orders serialize
// identically once BFS-renumbered.
func (d *Dfa) bfsOrder() (order []StateID, renumber map[StateID]uint32) {
	order = make([]StateID, 0, len(d.states))
	renumber = make(map[StateID]uint32, len(d.states))
	visited := make(map[StateID]bool, len(d.states))

	queue := []StateID{d.start}
	visited[d.start] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		renumber[id] = uint32(len(order))
		order = append(order, id)

		s := d.State(id)
		if s == nil {
			continue
		}
		for _, t := range s.Transitions {
			if t.Dest == DeadState || visited[t.Dest] {
				continue
			}
			visited[t.Dest] = true
			queue = append(queue, t.Dest)
		}
	}
	return order, renumber
}

type serialRegOp struct {
	Reg         uint32
	Kind        uint8
	Other       uint32
	MultiValued bool
}

type serialTransition struct {
	Lo, Hi byte
	Dest   uint32
	Ops    []serialRegOp `cbor:",omitempty"`
}

type serialCaptureTag struct {
	Name  string
	Start uint32
	End   uint32
}

type serialRuleMatch struct {
	Rule     uint32
	Captures []serialCaptureTag
}

type serialDfaState struct {
	Transitions []serialTransition `cbor:",omitempty"`
	Matches     []serialRuleMatch  `cbor:",omitempty"`
}

type serialDfa struct {
	Start    uint32
	TagCount uint32
	EntryOps []serialRegOp
	States   []serialDfaState
}

const deadSerial uint32 = 0xFFFFFFFF

func remapState(renumber map[StateID]uint32, id StateID) uint32 {
	if id == DeadState {
		return deadSerial
	}
	if v, ok := renumber[id]; ok {
		return v
	}
	return deadSerial
}

func unremapState(v uint32) StateID {
	if v == deadSerial {
		return DeadState
	}
	return StateID(v)
}

func serializeOps(ops []RegOp) []serialRegOp {
	if len(ops) == 0 {
		return nil
	}
	out := make([]serialRegOp, len(ops))
	for i, op := range ops {
		out[i] = serialRegOp{Reg: uint32(op.Reg), Kind: uint8(op.Kind), Other: uint32(op.Other), MultiValued: op.MultiValued}
	}
	return out
}

func deserializeOps(in []serialRegOp) []RegOp {
	if len(in) == 0 {
		return nil
	}
	out := make([]RegOp, len(in))
	for i, op := range in {
		out[i] = RegOp{Reg: RegisterID(op.Reg), Kind: RegOpKind(op.Kind), Other: RegisterID(op.Other), MultiValued: op.MultiValued}
	}
	return out
}

func serializeCaptures(m map[string]CaptureTag) []serialCaptureTag {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]serialCaptureTag, len(names))
	for i, name := range names {
		tag := m[name]
		out[i] = serialCaptureTag{Name: name, Start: uint32(tag.Start), End: uint32(tag.End)}
	}
	return out
}

func deserializeCaptures(in []serialCaptureTag) map[string]CaptureTag {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]CaptureTag, len(in))
	for _, c := range in {
		out[c.Name] = CaptureTag{Start: RegisterID(c.Start), End: RegisterID(c.End)}
	}
	return out
}

// Serialize encodes the Dfa as CBOR in BFS order, the ground-truth format
// for tdfa golden-file tests (mirrors tnfa.NFA.Serialize).
func (d *Dfa) Serialize() ([]byte, error) {
	order, renumber := d.bfsOrder()
	out := serialDfa{
		Start:    remapState(renumber, d.start),
		TagCount: uint32(d.tagCount),
		EntryOps: serializeOps(d.entryOps),
		States:   make([]serialDfaState, len(order)),
	}
	for i, id := range order {
		s := d.State(id)
		ss := serialDfaState{}
		if len(s.Transitions) > 0 {
			ss.Transitions = make([]serialTransition, len(s.Transitions))
			for j, t := range s.Transitions {
				ss.Transitions[j] = serialTransition{
					Lo:   t.Lo,
					Hi:   t.Hi,
					Dest: remapState(renumber, t.Dest),
					Ops:  serializeOps(t.Ops),
				}
			}
		}
		if len(s.Matches) > 0 {
			ss.Matches = make([]serialRuleMatch, len(s.Matches))
			for j, m := range s.Matches {
				ss.Matches[j] = serialRuleMatch{Rule: uint32(m.Rule), Captures: serializeCaptures(m.Captures)}
			}
		}
		out.States[i] = ss
	}
	return cbor.Marshal(out)
}

// Deserialize reconstructs a Dfa from the CBOR form produced by Serialize.
func Deserialize(data []byte) (*Dfa, error) {
	var in serialDfa
	if err := cbor.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("tdfa: deserialize: %w", err)
	}
	states := make([]DfaState, len(in.States))
	for i, ss := range in.States {
		s := DfaState{}
		if len(ss.Transitions) > 0 {
			s.Transitions = make([]Transition, len(ss.Transitions))
			for j, t := range ss.Transitions {
				s.Transitions[j] = Transition{Lo: t.Lo, Hi: t.Hi, Dest: unremapState(t.Dest), Ops: deserializeOps(t.Ops)}
			}
		}
		if len(ss.Matches) > 0 {
			s.Matches = make([]RuleMatch, len(ss.Matches))
			for j, m := range ss.Matches {
				s.Matches[j] = RuleMatch{Rule: tnfa.RuleID(m.Rule), Captures: deserializeCaptures(m.Captures)}
			}
		}
		states[i] = s
	}
	d := &Dfa{
		states:   states,
		start:    unremapState(in.Start),
		tagCount: int(in.TagCount),
		entryOps: deserializeOps(in.EntryOps),
	}
	if start := d.State(d.start); start != nil {
		for _, t := range start.Transitions {
			for b := int(t.Lo); b <= int(t.Hi); b++ {
				d.firstBytes[b] = true
			}
		}
	}
	return d, nil
}

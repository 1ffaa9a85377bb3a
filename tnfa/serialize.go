package tnfa

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// bfsOrder computes a breadth-first-search visitation order starting at the
// NFA's root, renumbering states as it goes. This is the "ground truth"
// ordering spec.md §4.2 calls for: two structurally identical NFAs built in
// different construction orders serialize identically once BFS-renumbered,
// which is what makes the serialized form usable as a unit-test fixture.
func (n *NFA) bfsOrder() (order []StateID, renumber map[StateID]uint32) {
	order = make([]StateID, 0, len(n.states))
	renumber = make(map[StateID]uint32, len(n.states))
	visited := make(map[StateID]bool, len(n.states))

	queue := []StateID{n.root}
	visited[n.root] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		renumber[id] = uint32(len(order))
		order = append(order, id)

		s := n.State(id)
		if s == nil {
			continue
		}
		var succs []StateID
		switch s.kind {
		case StateByte:
			succs = []StateID{s.next}
		case StateSparse:
			for _, r := range s.ranges {
				succs = append(succs, r.Next)
			}
		case StateSpontaneous:
			for _, e := range s.edges {
				succs = append(succs, e.Dest)
			}
		case StateMatch:
			// no successors
		}
		for _, to := range succs {
			if to == InvalidState || visited[to] {
				continue
			}
			visited[to] = true
			queue = append(queue, to)
		}
	}
	return order, renumber
}

// serialByteRange and serialEdge mirror ByteRange/SpontEdge but with
// BFS-renumbered, CBOR-friendly successor indices.
type serialByteRange struct {
	Lo, Hi byte
	Next   uint32
}

type serialTagOp struct {
	Tag         uint32
	Kind        uint8
	MultiValued bool
}

type serialEdge struct {
	Ops  []serialTagOp
	Dest uint32
}

type serialState struct {
	Kind   uint8
	Lo, Hi byte     `cbor:",omitempty"`
	Next   uint32   `cbor:",omitempty"`
	Ranges []serialByteRange `cbor:",omitempty"`
	Edges  []serialEdge      `cbor:",omitempty"`
	Rule   uint32            `cbor:",omitempty"`
}

// serialNFA is the ground-truth wire format for an NFA: BFS-ordered states
// plus the rule/tag counts needed to reconstruct an *NFA.
type serialNFA struct {
	Root      uint32
	RuleCount uint32
	TagCount  uint32
	States    []serialState
}

const invalidSerial uint32 = 0xFFFFFFFF

func remapID(renumber map[StateID]uint32, id StateID) uint32 {
	if id == InvalidState {
		return invalidSerial
	}
	if v, ok := renumber[id]; ok {
		return v
	}
	return invalidSerial
}

// Serialize encodes the NFA as CBOR in BFS order, suitable for golden-file
// unit tests (spec.md §4.2: "This format is the ground truth for NFA unit
// tests").
func (n *NFA) Serialize() ([]byte, error) {
	order, renumber := n.bfsOrder()
	out := serialNFA{
		Root:      remapID(renumber, n.root),
		RuleCount: uint32(n.ruleCount),
		TagCount:  uint32(n.tagCount),
		States:    make([]serialState, len(order)),
	}
	for i, id := range order {
		s := n.State(id)
		ss := serialState{Kind: uint8(s.kind)}
		switch s.kind {
		case StateByte:
			ss.Lo, ss.Hi = s.lo, s.hi
			ss.Next = remapID(renumber, s.next)
		case StateSparse:
			ss.Ranges = make([]serialByteRange, len(s.ranges))
			for j, r := range s.ranges {
				ss.Ranges[j] = serialByteRange{Lo: r.Lo, Hi: r.Hi, Next: remapID(renumber, r.Next)}
			}
		case StateSpontaneous:
			ss.Edges = make([]serialEdge, len(s.edges))
			for j, e := range s.edges {
				se := serialEdge{Dest: remapID(renumber, e.Dest)}
				for _, op := range e.Ops {
					se.Ops = append(se.Ops, serialTagOp{Tag: uint32(op.Tag), Kind: uint8(op.Kind), MultiValued: op.MultiValued})
				}
				ss.Edges[j] = se
			}
		case StateMatch:
			ss.Rule = uint32(s.rule)
		}
		out.States[i] = ss
	}
	return cbor.Marshal(out)
}

// Deserialize reconstructs an NFA from the CBOR form produced by Serialize.
// The result's state IDs are exactly the BFS order used at serialization
// time (0-based, contiguous), so re-serializing a deserialized NFA is a
// byte-for-byte round trip.
func Deserialize(data []byte) (*NFA, error) {
	var in serialNFA
	if err := cbor.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("tnfa: deserialize: %w", err)
	}
	states := make([]State, len(in.States))
	for i, ss := range in.States {
		s := State{kind: StateKind(ss.Kind)}
		switch s.kind {
		case StateByte:
			s.lo, s.hi = ss.Lo, ss.Hi
			s.next = unserialID(ss.Next)
		case StateSparse:
			s.ranges = make([]ByteRange, len(ss.Ranges))
			for j, r := range ss.Ranges {
				s.ranges[j] = ByteRange{Lo: r.Lo, Hi: r.Hi, Next: unserialID(r.Next)}
			}
		case StateSpontaneous:
			s.edges = make([]SpontEdge, len(ss.Edges))
			for j, se := range ss.Edges {
				edge := SpontEdge{Dest: unserialID(se.Dest)}
				for _, op := range se.Ops {
					edge.Ops = append(edge.Ops, TagOp{Tag: TagID(op.Tag), Kind: TagOpKind(op.Kind), MultiValued: op.MultiValued})
				}
				s.edges[j] = edge
			}
		case StateMatch:
			s.rule = RuleID(ss.Rule)
		}
		states[i] = s
	}
	return &NFA{
		states:    states,
		root:      unserialID(in.Root),
		ruleCount: int(in.RuleCount),
		tagCount:  int(in.TagCount),
	}, nil
}

func unserialID(v uint32) StateID {
	if v == invalidSerial {
		return InvalidState
	}
	return StateID(v)
}

package regexast

import "github.com/coregx/logslex/tnfa"

// TagAllocator hands out fresh, never-reused tag ID pairs. One allocator is
// shared across every rule folded into a lexer, so tag IDs stay unique
// lexer-wide even though (per the Design Notes' lifted restriction) capture
// *names* only need to be unique within a single rule.
type TagAllocator struct {
	next tnfa.TagID
}

// Alloc returns a fresh (start, end) tag ID pair.
func (t *TagAllocator) Alloc() (start, end tnfa.TagID) {
	start, end = t.next, t.next+1
	t.next += 2
	return start, end
}

// Count returns the number of tag IDs allocated so far.
func (t *TagAllocator) Count() int { return int(t.next) }

// CaptureTag is the tag-ID pair a named capture was assigned.
type CaptureTag struct {
	Start, End tnfa.TagID
}

// tagPrepass walks the whole subtree once and assigns a CaptureTag to each
// Capture node before any Fragment is built. This lets Or compute negative
// tag operations for a capture defined in its *other* branch, which may be
// visited after the branch currently being built.
func tagPrepass(a *Ast, id NodeID, alloc *TagAllocator, byNode map[NodeID]CaptureTag, byName map[string]CaptureTag) {
	if id == InvalidNode {
		return
	}
	n := a.Node(id)
	switch n.Kind {
	case Cat, Or:
		tagPrepass(a, n.Left, alloc, byNode, byName)
		tagPrepass(a, n.Right, alloc, byNode, byName)
	case Mult:
		tagPrepass(a, n.Child, alloc, byNode, byName)
	case Capture:
		start, end := alloc.Alloc()
		tag := CaptureTag{Start: start, End: end}
		byNode[id] = tag
		byName[n.Name] = tag
		tagPrepass(a, n.Child, alloc, byNode, byName)
	}
}

func negateOps(names CaptureSet, byName map[string]CaptureTag) []tnfa.TagOp {
	if len(names) == 0 {
		return nil
	}
	ops := make([]tnfa.TagOp, 0, 2*len(names))
	for name := range names {
		tag, ok := byName[name]
		if !ok {
			continue
		}
		ops = append(ops, tnfa.TagOp{Tag: tag.Start, Kind: tnfa.TagNegate}, tnfa.TagOp{Tag: tag.End, Kind: tnfa.TagNegate})
	}
	return ops
}

func toTnfaRanges(ranges []ByteRange, next tnfa.StateID) []tnfa.ByteRange {
	out := make([]tnfa.ByteRange, len(ranges))
	for i, r := range ranges {
		out[i] = tnfa.ByteRange{Lo: r.Lo, Hi: r.Hi, Next: next}
	}
	return out
}

// CompileRule compiles one rule's AST (already rewritten: wildcard-narrowed
// and, for non-timestamp variables, delimiter-prefixed per spec.md §4.1)
// into fragments appended to b, finishing with a StateMatch for ruleID.
// Returns the rule's start state and its name -> CaptureTag table.
func CompileRule(a *Ast, ruleID tnfa.RuleID, b *tnfa.Builder, alloc *TagAllocator) (start tnfa.StateID, captures map[string]CaptureTag, err error) {
	byNode := make(map[NodeID]CaptureTag)
	byName := make(map[string]CaptureTag)
	tagPrepass(a, a.root, alloc, byNode, byName)

	frag := addToNFA(a, a.root, b, byNode, byName, false)
	matchState := b.AddMatch(ruleID)
	if err := b.Patch(frag.Exit, matchState); err != nil {
		return tnfa.InvalidState, nil, err
	}
	return frag.Start, byName, nil
}

func addToNFA(a *Ast, id NodeID, b *tnfa.Builder, byNode map[NodeID]CaptureTag, byName map[string]CaptureTag, multiValued bool) tnfa.Fragment {
	n := a.Node(id)
	switch n.Kind {
	case Literal:
		exit := b.OpenExit()
		entry := b.AddByte(n.Byte, n.Byte, exit)
		return tnfa.Fragment{Start: entry, Exit: exit}

	case Group:
		exit := b.OpenExit()
		ranges := n.Ranges
		if n.Negate {
			ranges = NewByteSet(ranges...).Complement().Ranges()
		}
		entry := b.AddSparse(toTnfaRanges(ranges, exit))
		return tnfa.Fragment{Start: entry, Exit: exit}

	case Cat:
		left := addToNFA(a, n.Left, b, byNode, byName, multiValued)
		right := addToNFA(a, n.Right, b, byNode, byName, multiValued)
		_ = b.Patch(left.Exit, right.Start)
		return tnfa.Fragment{Start: left.Start, Exit: right.Exit}

	case Or:
		exit := b.OpenExit()
		negForLeft := negateOps(a.NegativeCaptures(n.Left, n.Right), byName)
		negForRight := negateOps(a.NegativeCaptures(n.Right, n.Left), byName)
		left := addToNFA(a, n.Left, b, byNode, byName, multiValued)
		right := addToNFA(a, n.Right, b, byNode, byName, multiValued)
		entry := b.AddSpontaneous([]tnfa.SpontEdge{
			{Ops: negForRight, Dest: left.Start},
			{Ops: negForLeft, Dest: right.Start},
		})
		_ = b.Patch(left.Exit, exit)
		_ = b.Patch(right.Exit, exit)
		return tnfa.Fragment{Start: entry, Exit: exit}

	case Mult:
		return addMult(a, n, b, byNode, byName, multiValued)

	case Capture:
		tag := byNode[id]
		childFrag := addToNFA(a, n.Child, b, byNode, byName, multiValued)
		endExit := b.OpenExitWithOps([]tnfa.TagOp{{Tag: tag.End, Kind: tnfa.TagSet, MultiValued: multiValued}})
		_ = b.Patch(childFrag.Exit, endExit)
		entry := b.AddSpontaneous([]tnfa.SpontEdge{
			{Ops: []tnfa.TagOp{{Tag: tag.Start, Kind: tnfa.TagSet, MultiValued: multiValued}}, Dest: childFrag.Start},
		})
		return tnfa.Fragment{Start: entry, Exit: endExit}

	default:
		// Unreachable for well-formed trees; treat as empty match.
		exit := b.OpenExit()
		return tnfa.Fragment{Start: exit, Exit: exit}
	}
}

// addMult expands a repetition node following classic bounded Thompson
// construction: Min required copies in sequence, then (Max-Min) optional
// copies, or an unbounded loop when n.Unbounded. Captures anywhere under a
// node that can execute more than once become multi-valued (spec.md §4.1:
// "Captures inside a multiplication become multi-valued").
func addMult(a *Ast, n *Node, b *tnfa.Builder, byNode map[NodeID]CaptureTag, byName map[string]CaptureTag, multiValued bool) tnfa.Fragment {
	childMV := multiValued || n.Unbounded || n.Min > 1 || n.Max > 1

	finalExit := b.OpenExit()

	var tail tnfa.StateID = finalExit
	if n.Unbounded {
		split := b.AddSpontaneous([]tnfa.SpontEdge{{Dest: tnfa.InvalidState}, {Dest: tnfa.InvalidState}})
		body := addToNFA(a, n.Child, b, byNode, byName, true)
		_ = b.PatchAt(split, 0, body.Start)
		_ = b.Patch(body.Exit, split)
		_ = b.PatchAt(split, 1, finalExit)
		tail = split
	} else {
		for k := 0; k < n.Max-n.Min; k++ {
			split := b.AddSpontaneous([]tnfa.SpontEdge{{Dest: tnfa.InvalidState}, {Dest: tnfa.InvalidState}})
			copyFrag := addToNFA(a, n.Child, b, byNode, byName, childMV)
			_ = b.Patch(copyFrag.Exit, tail)
			_ = b.PatchAt(split, 0, copyFrag.Start)
			_ = b.PatchAt(split, 1, tail)
			tail = split
		}
	}

	if n.Min == 0 {
		return tnfa.Fragment{Start: tail, Exit: finalExit}
	}

	var start tnfa.StateID
	prevExit := tnfa.InvalidState
	for i := 0; i < n.Min; i++ {
		copyFrag := addToNFA(a, n.Child, b, byNode, byName, childMV)
		if i == 0 {
			start = copyFrag.Start
		} else {
			_ = b.Patch(prevExit, copyFrag.Start)
		}
		prevExit = copyFrag.Exit
	}
	_ = b.Patch(prevExit, tail)
	return tnfa.Fragment{Start: start, Exit: finalExit}
}

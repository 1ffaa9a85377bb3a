package tdfa

// Intersect builds the product DFA of a and b: it accepts exactly the
// strings both a and b accept, via paired-state BFS over live (a, b) state
// pairs (grounded on the teacher's CompositeSequenceDFA subset-construction
// style in nfa/composite_dfa.go, generalized from one automaton to two).
//
// This is the query package's core primitive for deciding whether a
// wildcard query's single-token interpretation (spec.md §4.8) can match a
// given variable type: intersect the query's token DFA with the variable's
// DFA and check for a reachable accepting pair. Accepting states carry a's
// RuleMatch table (the variable side), since b — a query pattern — has no
// named captures of its own.
func Intersect(a, b *Dfa) *Dfa {
	type pair struct{ a, b StateID }

	keyIndex := make(map[pair]StateID)
	var states []DfaState
	var pairs []pair
	var queue []pair

	addState := func(p pair) StateID {
		if id, ok := keyIndex[p]; ok {
			return id
		}
		id := StateID(len(states))
		keyIndex[p] = id
		states = append(states, DfaState{})
		pairs = append(pairs, p)
		queue = append(queue, p)
		return id
	}

	startID := addState(pair{a.start, b.start})

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		id := keyIndex[p]
		sa := a.State(p.a)
		sb := b.State(p.b)
		if sa == nil || sb == nil {
			continue
		}
		if sa.Accepting() && sb.Accepting() {
			states[id].Matches = sa.Matches
		}

		var trans []Transition
		for bt := 0; bt <= 0xFF; bt++ {
			byteVal := byte(bt)
			ta, oka := sa.TransitionFor(byteVal)
			if !oka {
				continue
			}
			tb, okb := sb.TransitionFor(byteVal)
			if !okb {
				continue
			}
			destID := addState(pair{ta.Dest, tb.Dest})
			trans = append(trans, Transition{Lo: byteVal, Hi: byteVal, Dest: destID, Ops: ta.Ops})
		}
		states[id].Transitions = mergeTransitions(trans)
	}

	d := &Dfa{states: states, start: startID, tagCount: a.tagCount}
	for _, t := range d.states[startID].Transitions {
		for bt := int(t.Lo); bt <= int(t.Hi); bt++ {
			d.firstBytes[bt] = true
		}
	}
	return d
}

// Intersects reports whether a and b share any accepted string, without
// materializing the full product DFA that Intersect builds.
func Intersects(a, b *Dfa) bool {
	type pair struct{ a, b StateID }
	start := pair{a.start, b.start}
	visited := map[pair]bool{start: true}
	queue := []pair{start}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		sa := a.State(p.a)
		sb := b.State(p.b)
		if sa == nil || sb == nil {
			continue
		}
		if sa.Accepting() && sb.Accepting() {
			return true
		}
		for bt := 0; bt <= 0xFF; bt++ {
			byteVal := byte(bt)
			ta, oka := sa.TransitionFor(byteVal)
			if !oka {
				continue
			}
			tb, okb := sb.TransitionFor(byteVal)
			if !okb {
				continue
			}
			next := pair{ta.Dest, tb.Dest}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

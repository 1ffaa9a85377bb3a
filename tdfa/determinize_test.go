package tdfa

import (
	"testing"

	"github.com/coregx/logslex/tnfa"
)

// buildLiteralRuleNFA compiles a trivial one-rule NFA matching exactly the
// given literal byte string, for tests that don't want to pull in the
// regexast/schema parsing stack.
func buildLiteralRuleNFA(t *testing.T, s string) *tnfa.NFA {
	t.Helper()
	b := tnfa.NewBuilder()
	exit := b.OpenExit()
	match := b.AddMatch(0)
	if err := b.Patch(exit, match); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	// AddByte takes its successor up front, so the chain is built
	// back-to-front: the last byte's state points at exit, the
	// second-to-last points at the last byte's state, and so on.
	entry := exit
	for i := len(s) - 1; i >= 0; i-- {
		entry = b.AddByte(s[i], s[i], entry)
	}
	b.SetRoot([]tnfa.StateID{entry})
	nfa, err := b.Build(1, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return nfa
}

func TestDeterminize_NoRules(t *testing.T) {
	b := tnfa.NewBuilder()
	exit := b.OpenExit()
	b.SetRoot([]tnfa.StateID{exit})
	nfa, err := b.Build(0, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := Determinize(nfa, nil, 0); err != ErrNoRules {
		t.Fatalf("Determinize() error = %v, want ErrNoRules", err)
	}
}

func TestDeterminize_LiteralMatch(t *testing.T) {
	nfa := buildLiteralRuleNFA(t, "ab")
	dfa, err := Determinize(nfa, nil, 0)
	if err != nil {
		t.Fatalf("Determinize: %v", err)
	}

	st := dfa.Start()
	for _, b := range []byte("ab") {
		s := dfa.State(st)
		tr, ok := s.TransitionFor(b)
		if !ok {
			t.Fatalf("no transition for %q from state %v", b, st)
		}
		st = tr.Dest
	}
	s := dfa.State(st)
	if !s.Accepting() {
		t.Fatalf("expected final state to accept")
	}
	m, ok := s.WinningMatch()
	if !ok || m.Rule != 0 {
		t.Fatalf("WinningMatch() = %+v, %v, want rule 0", m, ok)
	}
}

func TestDeterminize_WrongByteDeadEnds(t *testing.T) {
	nfa := buildLiteralRuleNFA(t, "ab")
	dfa, err := Determinize(nfa, nil, 0)
	if err != nil {
		t.Fatalf("Determinize: %v", err)
	}
	s := dfa.State(dfa.Start())
	if _, ok := s.TransitionFor('z'); ok {
		t.Fatalf("expected no transition for an unmatched byte")
	}
}

func TestDeterminize_MaxStatesExceeded(t *testing.T) {
	nfa := buildLiteralRuleNFA(t, "abcdef")
	if _, err := Determinize(nfa, nil, 1); err != ErrTooComplex {
		t.Fatalf("Determinize() error = %v, want ErrTooComplex", err)
	}
}

func TestDeterminize_RulePriorityLowestWins(t *testing.T) {
	// Two rules matching the same literal "a": rule 0 must win regardless
	// of build order, since rule_id doubles as declaration-order priority.
	b := tnfa.NewBuilder()
	exit0 := b.OpenExit()
	m0 := b.AddMatch(0)
	b.Patch(exit0, m0)
	start0 := b.AddByte('a', 'a', exit0)

	exit1 := b.OpenExit()
	m1 := b.AddMatch(1)
	b.Patch(exit1, m1)
	start1 := b.AddByte('a', 'a', exit1)

	b.SetRoot([]tnfa.StateID{start0, start1})
	nfa, err := b.Build(2, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	dfa, err := Determinize(nfa, nil, 0)
	if err != nil {
		t.Fatalf("Determinize: %v", err)
	}
	s := dfa.State(dfa.Start())
	tr, ok := s.TransitionFor('a')
	if !ok {
		t.Fatalf("expected transition for 'a'")
	}
	accept := dfa.State(tr.Dest)
	m, ok := accept.WinningMatch()
	if !ok || m.Rule != 0 {
		t.Fatalf("WinningMatch() = %+v, want rule 0 to win", m)
	}
	if len(accept.Matches) != 2 {
		t.Fatalf("expected both rules recorded as matches, got %+v", accept.Matches)
	}
}

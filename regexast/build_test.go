package regexast

import (
	"testing"

	"github.com/coregx/logslex/tnfa"
)

// compileOne is a small end-to-end helper: parse-free, build a single-rule
// NFA straight from an already-built Ast (tests construct the Ast by hand
// via the arena API to stay independent of the schema package's parser).
func compileOne(t *testing.T, a *Ast) (*tnfa.NFA, map[string]CaptureTag) {
	t.Helper()
	b := tnfa.NewBuilder()
	alloc := &TagAllocator{}
	start, captures, err := CompileRule(a, 0, b, alloc)
	if err != nil {
		t.Fatalf("CompileRule: %v", err)
	}
	b.SetRoot([]tnfa.StateID{start})
	nfa, err := b.Build(1, alloc.Count())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return nfa, captures
}

func TestCompileRule_Literal(t *testing.T) {
	a := New()
	a.SetRoot(a.NewLiteral('a'))
	nfa, _ := compileOne(t, a)
	if nfa.States() == 0 {
		t.Fatalf("expected at least one state")
	}
	if nfa.RuleCount() != 1 {
		t.Fatalf("RuleCount() = %d, want 1", nfa.RuleCount())
	}
}

func TestCompileRule_Capture(t *testing.T) {
	a := New()
	cap := a.NewCapture("word", a.NewMult(a.NewGroup([]ByteRange{{Lo: 'a', Hi: 'z'}}, false), 1, 0, true))
	a.SetRoot(cap)
	nfa, captures := compileOne(t, a)

	tag, ok := captures["word"]
	if !ok {
		t.Fatalf("expected capture %q in returned table", "word")
	}
	if tag.Start == tag.End {
		t.Fatalf("start and end tags must differ")
	}
	if nfa.TagCount() != 2 {
		t.Fatalf("TagCount() = %d, want 2", nfa.TagCount())
	}
}

func TestCompileRule_OrEmitsNegativeTagsForOtherBranch(t *testing.T) {
	a := New()
	left := a.NewCapture("x", a.NewLiteral('a'))
	right := a.NewLiteral('b')
	or := a.NewOr(left, right)
	a.SetRoot(or)

	nfa, captures := compileOne(t, a)
	if _, ok := captures["x"]; !ok {
		t.Fatalf("expected capture %q", "x")
	}

	foundNegate := false
	for i := 0; i < nfa.States(); i++ {
		st := nfa.State(tnfa.StateID(i))
		if st.Kind() != tnfa.StateSpontaneous {
			continue
		}
		for _, e := range st.Edges() {
			for _, op := range e.Ops {
				if op.Kind == tnfa.TagNegate {
					foundNegate = true
				}
			}
		}
	}
	if !foundNegate {
		t.Fatalf("expected a TagNegate op on the branch lacking capture %q", "x")
	}
}

func TestCompileRule_MultUnboundedMarksMultiValuedCapture(t *testing.T) {
	a := New()
	cap := a.NewCapture("digit", a.NewGroup([]ByteRange{{Lo: '0', Hi: '9'}}, false))
	star := a.NewMult(cap, 0, 0, true)
	a.SetRoot(star)

	nfa, _ := compileOne(t, a)
	sawMultiValued := false
	for i := 0; i < nfa.States(); i++ {
		st := nfa.State(tnfa.StateID(i))
		if st.Kind() != tnfa.StateSpontaneous {
			continue
		}
		for _, e := range st.Edges() {
			for _, op := range e.Ops {
				if op.MultiValued {
					sawMultiValued = true
				}
			}
		}
	}
	if !sawMultiValued {
		t.Fatalf("expected a multi-valued tag op inside an unbounded repetition")
	}
}

func TestTagAllocator_NeverReuses(t *testing.T) {
	alloc := &TagAllocator{}
	s1, e1 := alloc.Alloc()
	s2, e2 := alloc.Alloc()
	if s1 == s2 || s1 == e2 || e1 == s2 || e1 == e2 {
		t.Fatalf("tag IDs must never repeat across allocations: got (%d,%d) (%d,%d)", s1, e1, s2, e2)
	}
	if alloc.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", alloc.Count())
	}
}

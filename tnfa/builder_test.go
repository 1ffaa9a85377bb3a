package tnfa

import "testing"

func TestBuilder_AddByteAndPatch(t *testing.T) {
	b := NewBuilder()
	exit := b.OpenExit()
	entry := b.AddByte('a', 'a', exit)
	match := b.AddMatch(0)
	if err := b.Patch(exit, match); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	b.SetRoot([]StateID{entry})

	nfa, err := b.Build(1, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	entrySt := nfa.State(entry)
	if entrySt.Kind() != StateByte {
		t.Fatalf("expected StateByte, got %v", entrySt.Kind())
	}
	lo, hi, next := entrySt.ByteRange()
	if lo != 'a' || hi != 'a' || next != exit {
		t.Fatalf("unexpected byte range: lo=%c hi=%c next=%v", lo, hi, next)
	}
	exitSt := nfa.State(exit)
	if exitSt.Edges()[0].Dest != match {
		t.Fatalf("Patch did not rewire exit's dangling edge")
	}
}

func TestBuilder_PatchAt(t *testing.T) {
	b := NewBuilder()
	split := b.AddSpontaneous([]SpontEdge{{Dest: InvalidState}, {Dest: InvalidState}})
	a := b.AddMatch(0)
	c := b.AddMatch(1)
	if err := b.PatchAt(split, 0, a); err != nil {
		t.Fatalf("PatchAt(0): %v", err)
	}
	if err := b.PatchAt(split, 1, c); err != nil {
		t.Fatalf("PatchAt(1): %v", err)
	}
	b.SetRoot([]StateID{split})
	nfa, err := b.Build(2, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	edges := nfa.State(split).Edges()
	if edges[0].Dest != a || edges[1].Dest != c {
		t.Fatalf("PatchAt wired wrong targets: %+v", edges)
	}
}

func TestBuilder_BuildFailsWithoutRoot(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Build(0, 0); err == nil {
		t.Fatalf("expected error building without a root")
	}
}

func TestBuilder_PatchOutOfBounds(t *testing.T) {
	b := NewBuilder()
	if err := b.Patch(StateID(99), StateID(0)); err == nil {
		t.Fatalf("expected error patching an out-of-bounds state")
	}
}

func TestBuilder_SetRoot_OneEdgePerRule(t *testing.T) {
	b := NewBuilder()
	r1 := b.AddMatch(0)
	r2 := b.AddMatch(1)
	b.SetRoot([]StateID{r1, r2})
	nfa, err := b.Build(2, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root := nfa.State(nfa.Root())
	if len(root.Edges()) != 2 || root.Edges()[0].Dest != r1 || root.Edges()[1].Dest != r2 {
		t.Fatalf("SetRoot did not preserve rule-priority edge order: %+v", root.Edges())
	}
}

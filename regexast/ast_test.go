package regexast

import "testing"

func TestAst_LiteralAndCat(t *testing.T) {
	a := New()
	l1 := a.NewLiteral('a')
	l2 := a.NewLiteral('b')
	cat := a.NewCat(l1, l2)
	a.SetRoot(cat)

	if a.Root() != cat {
		t.Fatalf("Root() = %v, want %v", a.Root(), cat)
	}
	n := a.Node(cat)
	if n.Kind != Cat || n.Left != l1 || n.Right != l2 {
		t.Fatalf("unexpected Cat node: %+v", n)
	}
}

func TestAst_PossibleInputs_Literal(t *testing.T) {
	a := New()
	lit := a.NewLiteral('x')
	set := a.PossibleInputs(lit)
	for b := 0; b < 256; b++ {
		want := b == 'x'
		if set[b] != want {
			t.Fatalf("PossibleInputs[%d] = %v, want %v", b, set[b], want)
		}
	}
}

func TestAst_PossibleInputs_CatNullableLeft(t *testing.T) {
	a := New()
	// (a?)b: possible inputs are {'a', 'b'} since left side is nullable.
	opt := a.NewMult(a.NewLiteral('a'), 0, 1, false)
	cat := a.NewCat(opt, a.NewLiteral('b'))
	set := a.PossibleInputs(cat)
	if !set['a'] || !set['b'] {
		t.Fatalf("expected both 'a' and 'b' reachable, got %v", set)
	}
	if set['c'] {
		t.Fatalf("unexpected byte 'c' reachable")
	}
}

func TestAst_Nullable(t *testing.T) {
	a := New()
	lit := a.NewLiteral('a')
	if a.Nullable(lit) {
		t.Fatalf("literal should not be nullable")
	}
	star := a.NewMult(lit, 0, 0, true)
	if !a.Nullable(star) {
		t.Fatalf("star should be nullable")
	}
	plus := a.NewMult(lit, 1, 0, true)
	if a.Nullable(plus) {
		t.Fatalf("plus should not be nullable")
	}
}

func TestAst_NegatedGroup(t *testing.T) {
	a := New()
	g := a.NewGroup([]ByteRange{{Lo: 'a', Hi: 'z'}}, true)
	set := a.PossibleInputs(g)
	if set['m'] {
		t.Fatalf("negated group should exclude 'm'")
	}
	if !set['0'] {
		t.Fatalf("negated group should include '0'")
	}
}

func TestClone_DeepCopiesRanges(t *testing.T) {
	src := New()
	g := src.NewGroup([]ByteRange{{Lo: 'a', Hi: 'c'}}, false)
	src.SetRoot(g)

	dst := New()
	newRoot := Clone(dst, src, src.Root())

	dst.Node(newRoot).Ranges[0].Hi = 'z'
	if src.Node(g).Ranges[0].Hi == 'z' {
		t.Fatalf("Clone must deep-copy Ranges, mutation leaked into source")
	}
}

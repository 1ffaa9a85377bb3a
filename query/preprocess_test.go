package query

import "testing"

func TestPreprocess_LiteralsPassThrough(t *testing.T) {
	units, err := preprocess("abc")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("units = %+v, want 3 literal units", units)
	}
	for i, want := range []byte("abc") {
		if units[i].kind != unitLiteral || units[i].b != want {
			t.Fatalf("units[%d] = %+v, want literal %q", i, units[i], want)
		}
	}
}

func TestPreprocess_CollapsesStarRun(t *testing.T) {
	units, err := preprocess("a**b")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("units = %+v, want [a, *, b]", units)
	}
	if units[1].kind != unitStar || units[1].raw != "**" {
		t.Fatalf("units[1] = %+v, want a collapsed star run", units[1])
	}
}

func TestPreprocess_CollapsesQuestionRunPreservingCount(t *testing.T) {
	units, err := preprocess("a???b")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if len(units) != 3 || units[1].kind != unitQuestion || units[1].count != 3 {
		t.Fatalf("units = %+v, want a single unitQuestion with count 3", units)
	}
}

func TestPreprocess_MixedRunWithStarBecomesStar(t *testing.T) {
	units, err := preprocess("a?*?b")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if len(units) != 3 || units[1].kind != unitStar {
		t.Fatalf("units = %+v, want the mixed run to collapse to a single star", units)
	}
}

func TestPreprocess_EscapedWildcardIsLiteral(t *testing.T) {
	units, err := preprocess(`a\*b`)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if len(units) != 3 || units[1].kind != unitLiteral || units[1].b != '*' {
		t.Fatalf("units = %+v, want the escaped '*' treated as a literal byte", units)
	}
	if units[1].raw != `\*` {
		t.Fatalf("units[1].raw = %q, want %q (escape preserved in raw text)", units[1].raw, `\*`)
	}
}

func TestPreprocess_EscapedQuestionIsLiteral(t *testing.T) {
	units, err := preprocess(`\?`)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if len(units) != 1 || units[0].kind != unitLiteral || units[0].b != '?' {
		t.Fatalf("units = %+v, want a single literal '?'", units)
	}
}

func TestPreprocess_DanglingEscapeIsError(t *testing.T) {
	_, err := preprocess(`abc\`)
	if err != ErrMalformedEscape {
		t.Fatalf("preprocess() error = %v, want ErrMalformedEscape", err)
	}
}

func TestPreprocess_EmptyQuery(t *testing.T) {
	units, err := preprocess("")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("units = %+v, want empty", units)
	}
}

func TestBoundaryOK_DelimiterNeighbors(t *testing.T) {
	units, err := preprocess("foo bar")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	isDelim := func(b byte) bool { return b == ' ' }
	// units: f,o,o,' ',b,a,r -- span [0,3) is "foo", bounded by start and a
	// delimiter space.
	if !boundaryOK(units, 0, 3, isDelim) {
		t.Fatalf("expected [0,3) (\"foo\") to satisfy the boundary check")
	}
	// span [4,7) is "bar", bounded by a delimiter and end of query.
	if !boundaryOK(units, 4, 7, isDelim) {
		t.Fatalf("expected [4,7) (\"bar\") to satisfy the boundary check")
	}
	// span [0,2) is "fo", whose right neighbor is 'o' (not a delimiter).
	if boundaryOK(units, 0, 2, isDelim) {
		t.Fatalf("expected [0,2) (\"fo\") to fail the boundary check")
	}
}

func TestBoundaryOK_WildcardNeighborSatisfiesBoundary(t *testing.T) {
	units, err := preprocess("*foo*")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	isDelim := func(b byte) bool { return false }
	// units: *, f, o, o, * -- span [1,4) is "foo", bounded by wildcards.
	if !boundaryOK(units, 1, 4, isDelim) {
		t.Fatalf("expected a wildcard-bounded span to satisfy the boundary check")
	}
}

func TestCanonicalize_MergesAdjacentStaticTokens(t *testing.T) {
	in := []QueryToken{
		{Kind: KindStatic, Substring: "foo"},
		{Kind: KindStatic, Substring: "bar"},
		{Kind: KindVariable, Substring: "42", Rule: 1},
	}
	out := canonicalize(in)
	if len(out) != 2 {
		t.Fatalf("canonicalize() = %+v, want 2 tokens (merged static + variable)", out)
	}
	if out[0].Kind != KindStatic || out[0].Substring != "foobar" {
		t.Fatalf("out[0] = %+v, want merged static \"foobar\"", out[0])
	}
}

func TestEqualTokens(t *testing.T) {
	a := []QueryToken{{Kind: KindStatic, Substring: "x"}}
	b := []QueryToken{{Kind: KindStatic, Substring: "x"}}
	c := []QueryToken{{Kind: KindStatic, Substring: "y"}}
	if !equalTokens(a, b) {
		t.Fatalf("expected identical token sequences to be equal")
	}
	if equalTokens(a, c) {
		t.Fatalf("expected differing token sequences to be unequal")
	}
}

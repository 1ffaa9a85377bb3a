package query

import (
	"testing"

	"github.com/coregx/logslex/schema"
)

func compileTestSchema(t *testing.T, src string) *schema.Compiled {
	t.Helper()
	cfg, err := schema.Load(src, "<test>")
	if err != nil {
		t.Fatalf("schema.Load: %v", err)
	}
	compiled, err := schema.Compile(cfg, 0)
	if err != nil {
		t.Fatalf("schema.Compile: %v", err)
	}
	return compiled
}

func hasInterpretation(interps []QueryInterpretation, want []QueryToken) bool {
	for _, in := range interps {
		if equalTokens(in.Tokens, want) {
			return true
		}
	}
	return false
}

func TestInterpret_LiteralMatchingAVariableRule(t *testing.T) {
	c := compileTestSchema(t, "delimiters: [ ]\nnum: [0-9]+\n")
	isDelim := func(b byte) bool {
		for _, d := range c.Delimiters {
			if d == b {
				return true
			}
		}
		return false
	}
	var numRule = c.Kinds.Newline + 1 // the reserved newline rule is id 0, num is the next one compiled

	interps, err := Interpret("42", c.Dfa, isDelim, 0)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if len(interps) == 0 {
		t.Fatalf("Interpret(\"42\") produced no interpretations")
	}
	want := []QueryToken{{Kind: KindVariable, Substring: "42", Rule: numRule}}
	if !hasInterpretation(interps, want) {
		t.Fatalf("Interpret(\"42\") = %+v, want an interpretation with token %+v", interps, want)
	}
}

func TestInterpret_MalformedEscapePropagatesError(t *testing.T) {
	c := compileTestSchema(t, "delimiters: [ ]\nnum: [0-9]+\n")
	isDelim := func(b byte) bool { return b == ' ' }
	_, err := Interpret(`42\`, c.Dfa, isDelim, 0)
	if err != ErrMalformedEscape {
		t.Fatalf("Interpret() error = %v, want ErrMalformedEscape", err)
	}
}

func TestInterpret_BareStarIsItsOwnStaticToken(t *testing.T) {
	c := compileTestSchema(t, "delimiters: [ ]\nnum: [0-9]+\n")
	isDelim := func(b byte) bool { return b == ' ' }
	interps, err := Interpret("*", c.Dfa, isDelim, 0)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	want := []QueryToken{{Kind: KindStatic, Substring: "*"}}
	if !hasInterpretation(interps, want) {
		t.Fatalf("Interpret(\"*\") = %+v, want the lone-wildcard static interpretation %+v", interps, want)
	}
}

func TestInterpret_WildcardQueryYieldsAContainsWildcardVariant(t *testing.T) {
	c := compileTestSchema(t, "delimiters: [ ]\nword: [a-z]+\n")
	isDelim := func(b byte) bool { return b == ' ' }
	interps, err := Interpret("a*c", c.Dfa, isDelim, 0)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	found := false
	for _, in := range interps {
		for _, tok := range in.Tokens {
			if tok.Substring == "a*c" && tok.ContainsWildcard {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("Interpret(\"a*c\") = %+v, want some token spanning \"a*c\" with ContainsWildcard=true", interps)
	}
}

func TestInterpret_ShortLiteralQueryProducesAtLeastOneInterpretation(t *testing.T) {
	c := compileTestSchema(t, "delimiters: [ ]\nword: [a-z]+\n")
	isDelim := func(b byte) bool { return b == ' ' }
	interps, err := Interpret("xy", c.Dfa, isDelim, 0)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if len(interps) == 0 {
		t.Fatalf("Interpret(\"xy\") produced no interpretations")
	}
}

func TestInterpret_TruncatesAtMaxInterpretations(t *testing.T) {
	c := compileTestSchema(t, "delimiters: [ ]\nword: [a-z]+\n")
	isDelim := func(b byte) bool { return b == ' ' }
	interps, err := Interpret("a?c?e?g?i", c.Dfa, isDelim, 2)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if len(interps) > 2 {
		t.Fatalf("Interpret() returned %d interpretations, want at most the requested cap of 2", len(interps))
	}
}

func TestInterpret_EmptyQueryYieldsOneEmptyInterpretation(t *testing.T) {
	c := compileTestSchema(t, "delimiters: [ ]\nword: [a-z]+\n")
	isDelim := func(b byte) bool { return b == ' ' }
	interps, err := Interpret("", c.Dfa, isDelim, 0)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if len(interps) != 1 || len(interps[0].Tokens) != 0 {
		t.Fatalf("Interpret(\"\") = %+v, want exactly one interpretation with zero tokens", interps)
	}
}

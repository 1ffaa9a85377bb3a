// Package query implements the wildcard QueryEngine (spec.md §4.8, L8):
// compiling a wildcard search string into the set of canonical token
// sequences a compiled lexer could have produced it from, using the same
// DFA intersection primitive tdfa exposes for that purpose.
package query

import "github.com/coregx/logslex/tnfa"

// TokenKind discriminates a QueryInterpretation's tokens.
type TokenKind uint8

const (
	// KindStatic is literal query text: no variable rule may match across
	// its boundary with a neighboring token.
	KindStatic TokenKind = iota
	// KindVariable is a substring that some schema rule could have produced.
	KindVariable
)

// QueryToken is one element of a QueryInterpretation.
type QueryToken struct {
	Kind TokenKind

	// Substring is the original query text this token spans (with escapes
	// still literal — \* stays "\*", not "*" — since two different source
	// substrings that happen to unescape the same way are not the same
	// token for canonicalization purposes until merged).
	Substring string

	// Rule is meaningful only for KindVariable.
	Rule tnfa.RuleID
	// ContainsWildcard reports whether Substring itself still has a '*'/'?'
	// (spec.md §4.8: "VariableQueryToken{rule_id, substring, contains_wildcard}").
	ContainsWildcard bool
}

// QueryInterpretation is one canonical token sequence realizing the whole
// query string.
type QueryInterpretation struct {
	Tokens []QueryToken
}

// equalTokens reports whether two token sequences are identical, used to
// dedupe interpretations that the DP can otherwise produce more than once.
func equalTokens(a, b []QueryToken) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// canonicalize merges adjacent static tokens into one, the canonicalization
// spec.md §4.8 requires so interpretation equality is well-defined.
func canonicalize(toks []QueryToken) []QueryToken {
	if len(toks) == 0 {
		return toks
	}
	out := make([]QueryToken, 0, len(toks))
	for _, t := range toks {
		if n := len(out); n > 0 && out[n-1].Kind == KindStatic && t.Kind == KindStatic {
			out[n-1].Substring += t.Substring
			continue
		}
		out = append(out, t)
	}
	return out
}

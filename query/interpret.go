package query

import (
	"sort"
	"strings"

	"github.com/coregx/logslex/tdfa"
	"github.com/coregx/logslex/tnfa"
)

// DefaultMaxInterpretations bounds how many distinct interpretations
// Interpret keeps per query prefix before truncating — the dynamic
// program's cross product can grow combinatorially on adversarial inputs
// (many short wildcard-separated tokens, each matching several rules).
// Truncation always keeps the first DefaultMaxInterpretations found; callers
// needing exhaustive enumeration on a small, trusted query can pass a
// larger cap to Interpret.
const DefaultMaxInterpretations = 4096

// substring reconstructs the original query text spanned by units[i:j].
func substring(units []unit, i, j int) string {
	var b strings.Builder
	for k := i; k < j; k++ {
		b.WriteString(units[k].raw)
	}
	return b.String()
}

func anyWildcard(units []unit, i, j int) bool {
	for k := i; k < j; k++ {
		if units[k].isWildcard() {
			return true
		}
	}
	return false
}

// boundaryOK reports whether units[i:j] is "surrounded by delimiters or
// wildcards in the original query" (spec.md §4.8): its immediate neighbors
// (or the query's own start/end) are either a wildcard unit or a literal
// delimiter byte.
func boundaryOK(units []unit, i, j int, isDelim func(byte) bool) bool {
	left := i == 0 || units[i-1].isWildcard() || (units[i-1].kind == unitLiteral && isDelim(units[i-1].b))
	right := j == len(units) || units[j].isWildcard() || (units[j].kind == unitLiteral && isDelim(units[j].b))
	return left && right
}

// singleToken computes T(i,j): the set of single-token interpretations of
// units[i:j] against lexerDfa (spec.md §4.8).
func singleToken(units []unit, i, j int, lexerDfa *tdfa.Dfa, isDelim func(byte) bool) ([]QueryToken, error) {
	s := substring(units, i, j)

	if j-i == 1 && units[i].kind == unitStar {
		return []QueryToken{{Kind: KindStatic, Substring: "*"}}, nil
	}

	if !boundaryOK(units, i, j, isDelim) {
		return []QueryToken{{Kind: KindStatic, Substring: s}}, nil
	}

	hasWildcard := anyWildcard(units, i, j)
	pattern := substringPattern(units, i, j)
	qDfa, err := buildSubstringDfa(pattern)
	if err != nil {
		return nil, err
	}

	var out []QueryToken
	if hasWildcard {
		out = append(out, QueryToken{Kind: KindStatic, Substring: s, ContainsWildcard: true})
	}

	inter := tdfa.Intersect(lexerDfa, qDfa)
	seen := make(map[tnfa.RuleID]bool)
	var rules []tnfa.RuleID
	for id := 0; id < inter.States(); id++ {
		st := inter.State(tdfa.StateID(id))
		for _, m := range st.Matches {
			if !seen[m.Rule] {
				seen[m.Rule] = true
				rules = append(rules, m.Rule)
			}
		}
	}
	sort.Slice(rules, func(a, b int) bool { return rules[a] < rules[b] })
	for _, r := range rules {
		out = append(out, QueryToken{Kind: KindVariable, Substring: s, Rule: r, ContainsWildcard: hasWildcard})
	}
	return out, nil
}

// Interpret compiles a raw wildcard query string into the set of canonical
// QueryInterpretations it could realize against lexerDfa, per spec.md §4.8.
// isDelim reports whether a byte belongs to the schema's delimiter set.
func Interpret(rawQuery string, lexerDfa *tdfa.Dfa, isDelim func(byte) bool, maxInterpretations int) ([]QueryInterpretation, error) {
	if maxInterpretations <= 0 {
		maxInterpretations = DefaultMaxInterpretations
	}
	units, err := preprocess(rawQuery)
	if err != nil {
		return nil, err
	}
	n := len(units)

	tCache := make(map[[2]int][]QueryToken)
	tOf := func(i, j int) ([]QueryToken, error) {
		key := [2]int{i, j}
		if v, ok := tCache[key]; ok {
			return v, nil
		}
		v, err := singleToken(units, i, j, lexerDfa, isDelim)
		if err != nil {
			return nil, err
		}
		tCache[key] = v
		return v, nil
	}

	// skipSpan implements "skip substrings of length >= 2 that start or end
	// with a greedy wildcard" — their interpretations are already reachable
	// by extending the adjacent single-wildcard span instead.
	skipSpan := func(i, j int) bool {
		if j-i < 2 {
			return false
		}
		return units[i].kind == unitStar || units[j-1].kind == unitStar
	}

	iCache := make(map[int][]QueryInterpretation)
	iCache[0] = []QueryInterpretation{{}}

	var iOf func(a int) ([]QueryInterpretation, error)
	iOf = func(a int) ([]QueryInterpretation, error) {
		if v, ok := iCache[a]; ok {
			return v, nil
		}
		var result []QueryInterpretation
		add := func(prefix []QueryToken, tok QueryToken) {
			if len(result) >= maxInterpretations {
				return
			}
			seq := make([]QueryToken, 0, len(prefix)+1)
			seq = append(seq, prefix...)
			seq = append(seq, tok)
			seq = canonicalize(seq)
			for _, existing := range result {
				if equalTokens(existing.Tokens, seq) {
					return
				}
			}
			result = append(result, QueryInterpretation{Tokens: seq})
		}

		if !skipSpan(0, a) {
			toks, err := tOf(0, a)
			if err != nil {
				return nil, err
			}
			for _, t := range toks {
				add(nil, t)
			}
		}

		for k := 1; k < a; k++ {
			if skipSpan(k, a) {
				continue
			}
			prefixes, err := iOf(k)
			if err != nil {
				return nil, err
			}
			toks, err := tOf(k, a)
			if err != nil {
				return nil, err
			}
			for _, prefix := range prefixes {
				for _, t := range toks {
					add(prefix.Tokens, t)
					if len(result) >= maxInterpretations {
						break
					}
				}
				if len(result) >= maxInterpretations {
					break
				}
			}
		}

		iCache[a] = result
		return result, nil
	}

	return iOf(n)
}

package query

import (
	"strings"

	"github.com/coregx/logslex/regexast"
	"github.com/coregx/logslex/schema"
	"github.com/coregx/logslex/tdfa"
	"github.com/coregx/logslex/tnfa"
)

// substringPattern builds the tiny regex text spec.md §4.8 describes:
// '*' -> ".*", '?' -> ".", every other byte escaped if it is a regex
// metacharacter so schema's parser reads it as a literal.
func substringPattern(units []unit, i, j int) string {
	var b strings.Builder
	for k := i; k < j; k++ {
		u := units[k]
		switch u.kind {
		case unitStar:
			b.WriteString(".*")
		case unitQuestion:
			for c := 0; c < u.count; c++ {
				b.WriteByte('.')
			}
		case unitLiteral:
			b.WriteString(escapeRegexByte(u.b))
		}
	}
	return b.String()
}

const regexMetachars = `*+?.|()[]{}\`

func escapeRegexByte(b byte) string {
	if strings.IndexByte(regexMetachars, b) >= 0 {
		return "\\" + string(b)
	}
	return string(b)
}

// buildSubstringDfa compiles pattern into a one-rule tdfa.Dfa with every
// '.' treated as matching any byte (not narrowed by a schema's delimiter
// set — a query substring regex has no delimiter concept of its own).
func buildSubstringDfa(pattern string) (*tdfa.Dfa, error) {
	ast, err := schema.ParseRegex(pattern, "<query>", 0)
	if err != nil {
		return nil, err
	}
	ast.RemoveDelimitersFromWildcard(ast.Root(), regexast.ByteSet{})

	b := tnfa.NewBuilder()
	alloc := &regexast.TagAllocator{}
	start, _, err := regexast.CompileRule(ast, 0, b, alloc)
	if err != nil {
		return nil, err
	}
	b.SetRoot([]tnfa.StateID{start})
	nfa, err := b.Build(1, alloc.Count())
	if err != nil {
		return nil, err
	}
	return tdfa.Determinize(nfa, nil, 0)
}

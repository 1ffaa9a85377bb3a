package schema

import (
	"fmt"

	"github.com/projectdiscovery/gologger"

	"github.com/coregx/logslex/lexer"
	"github.com/coregx/logslex/regexast"
	"github.com/coregx/logslex/tdfa"
	"github.com/coregx/logslex/tnfa"
)

// reservedNewlineName is the synthetic rule every schema gets for free, so
// logparser.Parser's boundary state machine can read a Newline token kind
// off the lexer without every schema author declaring one (spec.md §4.7).
const reservedNewlineName = "__newline__"

// timestampVariableName is the one variable name spec.md §4.1 rewrite 3
// singles out: its rule is split into a FirstTimestamp/NewLineTimestamp
// pair instead of getting the ordinary delimiter-prefix rewrite.
const timestampVariableName = "timestamp"

// Compiled is the output of Compile: everything a lexer.Lexer and
// logparser.Parser need to run over a schema.
type Compiled struct {
	Dfa        *tdfa.Dfa
	Kinds      lexer.RuleKinds
	Delimiters []byte
	// Names maps a variable's rule_id to its declared name, for
	// logparser.LogEvent.LogType reconstruction.
	Names map[tnfa.RuleID]string
}

// Compile builds a Config into a ready-to-run Compiled schema: spec.md
// §4.1's rewrites, §4.4's tagged-NFA/DFA construction, and the reserved
// Newline/FirstTimestamp/NewLineTimestamp rule wiring logparser depends on.
//
// maxNFAStates, when > 0, bounds both the combined NFA's state count
// (exceeding it returns tnfa.ErrTooComplex) and tdfa.Determinize's subset
// construction (spec.md §7.3 "a schema whose combined automaton would exceed
// a configured state budget is a build-time error, not a runtime one"); 0
// leaves the NFA unbounded and selects tdfa.DefaultMaxStates.
func Compile(cfg *Config, maxNFAStates int) (*Compiled, error) {
	delims := regexast.NewByteSet()
	for _, b := range cfg.Delimiters {
		delims[b] = true
	}

	hasNonTimestamp := false
	for _, v := range cfg.Variables {
		if v.Name != timestampVariableName {
			hasNonTimestamp = true
		}
	}
	if hasNonTimestamp && !cfg.HasDelimiters {
		return nil, ErrNoDelimiters
	}

	seenNames := make(map[string]bool)
	timestampSeen := false
	for _, v := range cfg.Variables {
		if v.Name == timestampVariableName {
			if timestampSeen {
				return nil, &ParseError{File: cfg.File, Line: v.Line, Message: ErrTimestampReused.Error()}
			}
			timestampSeen = true
			continue
		}
		if seenNames[v.Name] {
			return nil, &ParseError{File: cfg.File, Line: v.Line, Message: fmt.Sprintf("%v: %q", ErrDuplicateVariable, v.Name)}
		}
		seenNames[v.Name] = true
	}

	b := tnfa.NewBuilder()
	alloc := &regexast.TagAllocator{}

	type ruleInfo struct {
		ruleID   tnfa.RuleID
		name     string
		captures map[string]regexast.CaptureTag
	}
	var rules []ruleInfo
	var ruleStarts []tnfa.StateID
	var kinds lexer.RuleKinds

	nextRuleID := tnfa.RuleID(0)
	compileOne := func(name, pattern string, line int, prefixWithDelim bool) (tnfa.RuleID, map[string]regexast.CaptureTag, error) {
		ast, err := ParseRegex(pattern, cfg.File, line)
		if err != nil {
			return 0, nil, err
		}
		ast.RemoveDelimitersFromWildcard(ast.Root(), delims)
		root := ast.Root()
		if prefixWithDelim {
			root = ast.PrefixWithDelimiterClass(root, delims)
			ast.SetRoot(root)
		}
		ruleID := nextRuleID
		nextRuleID++
		start, captures, err := regexast.CompileRule(ast, ruleID, b, alloc)
		if err != nil {
			return 0, nil, err
		}
		ruleStarts = append(ruleStarts, start)
		gologger.Debug().Msgf("schema: compiled rule %d (%q) from %s:%d", ruleID, name, cfg.File, line)
		return ruleID, captures, nil
	}

	// Reserved Newline rule: single '\n' byte, no delimiter prefix (a
	// newline is itself a delimiter candidate, not bounded by one).
	newlineRuleID, _, err := compileOne(reservedNewlineName, `\n`, 0, false)
	if err != nil {
		return nil, err
	}
	kinds.Newline, kinds.HasNewline = newlineRuleID, true
	rules = append(rules, ruleInfo{ruleID: newlineRuleID, name: reservedNewlineName})

	for _, v := range cfg.Variables {
		if v.Name == timestampVariableName {
			firstID, firstCaps, err := compileOne(v.Name, v.Pattern, v.Line, false)
			if err != nil {
				return nil, err
			}
			kinds.FirstTimestamp, kinds.HasFirstTimestamp = firstID, true
			rules = append(rules, ruleInfo{ruleID: firstID, name: v.Name, captures: firstCaps})

			nlID, nlCaps, err := compileOne(v.Name, v.Pattern, v.Line, true)
			if err != nil {
				return nil, err
			}
			kinds.NewLineTimestamp, kinds.HasNewLineTimestamp = nlID, true
			rules = append(rules, ruleInfo{ruleID: nlID, name: v.Name, captures: nlCaps})
			continue
		}

		ruleID, caps, err := compileOne(v.Name, v.Pattern, v.Line, true)
		if err != nil {
			return nil, err
		}
		rules = append(rules, ruleInfo{ruleID: ruleID, name: v.Name, captures: caps})
	}

	b.SetRoot(ruleStarts)
	if maxNFAStates > 0 && b.StateCount() > maxNFAStates {
		return nil, fmt.Errorf("schema: %w (nfa: %d states > %d)", tnfa.ErrTooComplex, b.StateCount(), maxNFAStates)
	}

	nfa, err := b.Build(len(rules), alloc.Count())
	if err != nil {
		return nil, err
	}

	ruleCaptures := make(map[tnfa.RuleID]map[string]tdfa.CaptureTag, len(rules))
	names := make(map[tnfa.RuleID]string, len(rules))
	for _, r := range rules {
		names[r.ruleID] = r.name
		if len(r.captures) == 0 {
			continue
		}
		dst := make(map[string]tdfa.CaptureTag, len(r.captures))
		for name, tag := range r.captures {
			dst[name] = tdfa.CaptureTag{Start: tdfa.RegisterID(tag.Start), End: tdfa.RegisterID(tag.End)}
		}
		ruleCaptures[r.ruleID] = dst
	}

	dfa, err := tdfa.Determinize(nfa, ruleCaptures, maxNFAStates)
	if err != nil {
		return nil, err
	}
	gologger.Info().Msgf("schema: compiled %d rules into a %d-state dfa (%d tags)", len(rules), dfa.States(), dfa.TagCount())

	return &Compiled{
		Dfa:        dfa,
		Kinds:      kinds,
		Delimiters: cfg.Delimiters,
		Names:      names,
	}, nil
}

// DefaultVariables returns the CLP-style default schema (spec.md §8
// scenario S4): timestamp, int, float, hex, hasNumber and keyValuePair
// variables, the set every example schema in the original project ships
// with out of the box.
func DefaultVariables() []Variable {
	return []Variable{
		{Name: "timestamp", Pattern: `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{3})?`},
		{Name: "int", Pattern: `-?\d+`},
		{Name: "float", Pattern: `-?\d+\.\d+`},
		{Name: "hex", Pattern: `0[xX][0-9a-fA-F]+`},
		{Name: "hasNumber", Pattern: `[^ \t\r\n]*\d[^ \t\r\n]*`},
		{Name: "keyValuePair", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*=[^ \t\r\n]+`},
	}
}

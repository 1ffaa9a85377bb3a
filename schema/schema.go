package schema

import (
	"bufio"
	"strings"
)

// Variable is one `<name>: <regex>` declaration from schema text.
type Variable struct {
	Name    string
	Pattern string
	Line    int
}

// Config is a parsed, not-yet-compiled schema: delimiters plus variable
// declarations in declaration order (declaration order is rule priority —
// spec.md §4.4: "the rule with the lowest rule_id (= earliest declaration
// in the schema) wins").
type Config struct {
	File        string
	Delimiters  []byte
	DelimitersLine int
	HasDelimiters  bool
	Variables   []Variable
}

// Load parses schema text (spec.md §6) into a Config. It does not compile
// regexes yet — that happens in Compile, so a syntax error reports which
// variable it came from.
func Load(source, file string) (*Config, error) {
	cfg := &Config{File: file}
	sc := bufio.NewScanner(strings.NewReader(source))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := stripComments(sc.Text())
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(trimmed, "delimiters:"); ok {
			if cfg.HasDelimiters {
				return nil, &ParseError{File: file, Line: lineNo, Message: "duplicate delimiters line"}
			}
			delims, err := parseDelimiterCharset(strings.TrimSpace(rest))
			if err != nil {
				return nil, &ParseError{File: file, Line: lineNo, Message: err.Error()}
			}
			cfg.Delimiters = delims
			cfg.DelimitersLine = lineNo
			cfg.HasDelimiters = true
			continue
		}
		name, pattern, ok := strings.Cut(trimmed, ":")
		if !ok {
			return nil, &ParseError{File: file, Line: lineNo, Message: "expected '<name>: <regex>' or 'delimiters: <charset>'"}
		}
		name = strings.TrimSpace(name)
		pattern = strings.TrimSpace(pattern)
		if name == "" {
			return nil, &ParseError{File: file, Line: lineNo, Message: "empty variable name"}
		}
		if !isIdentifier(name) {
			return nil, &ParseError{File: file, Line: lineNo, Message: "variable name must be a non-empty identifier, got " + name}
		}
		cfg.Variables = append(cfg.Variables, Variable{Name: name, Pattern: pattern, Line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isIdentifier(s string) bool {
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isAlpha {
			return false
		}
		if i > 0 && !isAlpha && !isDigit {
			return false
		}
	}
	return len(s) > 0
}

// parseDelimiterCharset parses the `delimiters:` line's value, a bracketed
// or bare character class using the same escapes as the regex language
// (spec.md §6 "regex-charset").
func parseDelimiterCharset(s string) ([]byte, error) {
	if s == "" {
		return nil, errEmptyDelimiters
	}
	pattern := s
	if !strings.HasPrefix(pattern, "[") {
		pattern = "[" + pattern + "]"
	}
	ast, err := ParseRegex(pattern, "<delimiters>", 0)
	if err != nil {
		return nil, err
	}
	set := ast.PossibleInputs(ast.Root())
	var out []byte
	for b := 0; b < 256; b++ {
		if set[b] {
			out = append(out, byte(b))
		}
	}
	return out, nil
}

// Package schema compiles the text schema language (spec.md §6) into a
// lexer-ready tdfa.Dfa: variable rules and a delimiter set, parsed with a
// hand-written recursive-descent parser rather than the original project's
// LALR(1) grammar (spec.md's Design Notes call for lifting this to a
// simpler, embeddable parser; a PCRE-like subset with named captures has
// no natural LALR(1) grammar worth generating one for).
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/logslex/regexast"
)

// ParseError is a build-time schema diagnostic: spec.md §7.3 requires a
// descriptive message including file path and line number.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// parser is a recursive-descent parser over one regex literal's runes.
type parser struct {
	file    string
	line    int
	src     []rune
	pos     int
	ast     *regexast.Ast
	names   map[string]bool // capture names seen so far, within this rule
	nextCap int
}

// ParseRegex parses a single PCRE-like regex literal (spec.md §6) into a
// fresh regexast.Ast. file/line are used only for diagnostics.
func ParseRegex(pattern, file string, line int) (*regexast.Ast, error) {
	p := &parser{
		file:  file,
		line:  line,
		src:   []rune(pattern),
		ast:   regexast.New(),
		names: make(map[string]bool),
	}
	root, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errf("unexpected %q", p.peek())
	}
	p.ast.SetRoot(root)
	return p.ast, nil
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{File: p.file, Line: p.line, Column: p.pos + 1, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) advance() rune {
	r := p.src[p.pos]
	p.pos++
	return r
}

// parseAlt := Cat ('|' Cat)*
func (p *parser) parseAlt() (regexast.NodeID, error) {
	left, err := p.parseCat()
	if err != nil {
		return regexast.InvalidNode, err
	}
	for !p.eof() && p.peek() == '|' {
		p.advance()
		right, err := p.parseCat()
		if err != nil {
			return regexast.InvalidNode, err
		}
		left = p.ast.NewOr(left, right)
	}
	return left, nil
}

// parseCat := Rep*
func (p *parser) parseCat() (regexast.NodeID, error) {
	var nodes []regexast.NodeID
	for !p.eof() && p.peek() != '|' && p.peek() != ')' {
		n, err := p.parseRep()
		if err != nil {
			return regexast.InvalidNode, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		// Empty alternative: zero-width match, represented as Mult{min:0,max:0}
		// over an arbitrary child — simplest is an empty literal group.
		empty := p.ast.NewGroup(nil, false)
		return p.ast.NewMult(empty, 0, 0, false), nil
	}
	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = p.ast.NewCat(acc, n)
	}
	return acc, nil
}

// parseRep := Atom ('*' | '+' | '?' | '{' m [',' [n]] '}')?
func (p *parser) parseRep() (regexast.NodeID, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return regexast.InvalidNode, err
	}
	if p.eof() {
		return atom, nil
	}
	switch p.peek() {
	case '*':
		p.advance()
		return p.ast.NewMult(atom, 0, 0, true), nil
	case '+':
		p.advance()
		return p.ast.NewMult(atom, 1, 0, true), nil
	case '?':
		p.advance()
		return p.ast.NewMult(atom, 0, 1, false), nil
	case '{':
		return p.parseBoundedRep(atom)
	}
	return atom, nil
}

func (p *parser) parseBoundedRep(atom regexast.NodeID) (regexast.NodeID, error) {
	start := p.pos
	p.advance() // '{'
	m, ok := p.parseInt()
	if !ok {
		p.pos = start
		return atom, nil // not a repetition bound; '{' is a literal elsewhere handled by caller
	}
	if p.eof() {
		return regexast.InvalidNode, p.errf("unterminated repetition bound")
	}
	switch p.peek() {
	case '}':
		p.advance()
		return p.ast.NewMult(atom, m, m, false), nil
	case ',':
		p.advance()
		if !p.eof() && p.peek() == '}' {
			p.advance()
			return p.ast.NewMult(atom, m, 0, true), nil
		}
		n, ok := p.parseInt()
		if !ok || p.eof() || p.peek() != '}' {
			return regexast.InvalidNode, p.errf("malformed repetition bound")
		}
		p.advance()
		if n < m {
			return regexast.InvalidNode, p.errf("repetition bound max %d < min %d", n, m)
		}
		return p.ast.NewMult(atom, m, n, false), nil
	default:
		return regexast.InvalidNode, p.errf("malformed repetition bound")
	}
}

func (p *parser) parseInt() (int, bool) {
	start := p.pos
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.advance()
	}
	if p.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(string(p.src[start:p.pos]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseAtom := '.' | '[' Class ']' | '(' ['?<' name '>'] Alt ')' | Escape | Literal
func (p *parser) parseAtom() (regexast.NodeID, error) {
	if p.eof() {
		return regexast.InvalidNode, p.errf("unexpected end of pattern")
	}
	switch c := p.peek(); c {
	case '.':
		p.advance()
		return p.ast.NewWildcard(), nil
	case '[':
		return p.parseClass()
	case '(':
		return p.parseGroup()
	case '\\':
		return p.parseEscape()
	case '*', '+', '?':
		return regexast.InvalidNode, p.errf("repetition operator %q with nothing to repeat", c)
	default:
		p.advance()
		return p.literalNode(c)
	}
}

func (p *parser) literalNode(r rune) (regexast.NodeID, error) {
	if r > 0xFF {
		return regexast.InvalidNode, p.errf("non-ASCII literal %q not supported (bytes only)", r)
	}
	return p.ast.NewLiteral(byte(r)), nil
}

func (p *parser) parseGroup() (regexast.NodeID, error) {
	p.advance() // '('
	name := ""
	isCapture := false
	if !p.eof() && p.peek() == '?' {
		save := p.pos
		p.advance()
		if !p.eof() && p.peek() == '<' {
			p.advance()
			start := p.pos
			for !p.eof() && p.peek() != '>' {
				p.advance()
			}
			if p.eof() {
				return regexast.InvalidNode, p.errf("unterminated named capture")
			}
			name = string(p.src[start:p.pos])
			p.advance() // '>'
			if name == "" {
				return regexast.InvalidNode, p.errf("empty capture name")
			}
			if p.names[name] {
				return regexast.InvalidNode, p.errf("duplicate capture name %q", name)
			}
			p.names[name] = true
			isCapture = true
		} else {
			p.pos = save
		}
	}
	body, err := p.parseAlt()
	if err != nil {
		return regexast.InvalidNode, err
	}
	if p.eof() || p.peek() != ')' {
		return regexast.InvalidNode, p.errf("unterminated group")
	}
	p.advance() // ')'
	if isCapture {
		return p.ast.NewCapture(name, body), nil
	}
	return body, nil
}

func (p *parser) parseClass() (regexast.NodeID, error) {
	p.advance() // '['
	negate := false
	if !p.eof() && p.peek() == '^' {
		negate = true
		p.advance()
	}
	var ranges []regexast.ByteRange
	first := true
	for {
		if p.eof() {
			return regexast.InvalidNode, p.errf("unterminated character class")
		}
		if p.peek() == ']' && !first {
			p.advance()
			break
		}
		first = false
		lo, err := p.classByte()
		if err != nil {
			return regexast.InvalidNode, err
		}
		if lo.isShorthand {
			ranges = append(ranges, lo.ranges...)
			continue
		}
		hi := lo.b
		if !p.eof() && p.peek() == '-' && p.pos+1 < len(p.src) && p.src[p.pos+1] != ']' {
			p.advance() // '-'
			hiTok, err := p.classByte()
			if err != nil {
				return regexast.InvalidNode, err
			}
			if hiTok.isShorthand {
				return regexast.InvalidNode, p.errf("invalid range end")
			}
			hi = hiTok.b
		}
		if hi < lo.b {
			return regexast.InvalidNode, p.errf("invalid range %d-%d", lo.b, hi)
		}
		ranges = append(ranges, regexast.ByteRange{Lo: lo.b, Hi: hi})
	}
	return p.ast.NewGroup(ranges, negate), nil
}

type classToken struct {
	b           byte
	isShorthand bool
	ranges      []regexast.ByteRange
}

func (p *parser) classByte() (classToken, error) {
	c := p.advance()
	if c == '\\' {
		if p.eof() {
			return classToken{}, p.errf("dangling escape")
		}
		e := p.advance()
		if ranges, ok := shorthandRanges(e); ok {
			return classToken{isShorthand: true, ranges: ranges}, nil
		}
		b, err := escapeByte(e)
		if err != nil {
			return classToken{}, p.errf("%v", err)
		}
		return classToken{b: b}, nil
	}
	if c > 0xFF {
		return classToken{}, p.errf("non-ASCII class member %q not supported", c)
	}
	return classToken{b: byte(c)}, nil
}

func (p *parser) parseEscape() (regexast.NodeID, error) {
	p.advance() // '\\'
	if p.eof() {
		return regexast.InvalidNode, p.errf("dangling escape")
	}
	e := p.advance()
	if ranges, ok := shorthandRanges(e); ok {
		return p.ast.NewGroup(ranges, false), nil
	}
	b, err := escapeByte(e)
	if err != nil {
		return regexast.InvalidNode, p.errf("%v", err)
	}
	return p.ast.NewLiteral(b), nil
}

// shorthandRanges expands \d and \s into byte ranges; \D and \S are not
// shorthands here
// (spec.md §6: "\n, \r, \t, \v, \f, \s, \d behave as in ordinary regex").
func shorthandRanges(e rune) ([]regexast.ByteRange, bool) {
	switch e {
	case 'd':
		return []regexast.ByteRange{{Lo: '0', Hi: '9'}}, true
	case 's':
		return []regexast.ByteRange{{Lo: ' ', Hi: ' '}, {Lo: '\t', Hi: '\t'}, {Lo: '\n', Hi: '\n'}, {Lo: '\r', Hi: '\r'}, {Lo: '\v', Hi: '\v'}, {Lo: '\f', Hi: '\f'}}, true
	}
	return nil, false
}

func escapeByte(e rune) (byte, error) {
	switch e {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'v':
		return '\v', nil
	case 'f':
		return '\f', nil
	case '\\', '.', '|', '(', ')', '[', ']', '{', '}', '*', '+', '?', '^', '-':
		return byte(e), nil
	default:
		if e <= 0xFF {
			return byte(e), nil
		}
		return 0, fmt.Errorf("invalid escape %q", e)
	}
}

// stripComments removes `// ...` line comments from schema source text
// (spec.md §6: "Comments begin with // and extend to end of line").
func stripComments(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

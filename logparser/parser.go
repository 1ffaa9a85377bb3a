package logparser

import (
	"errors"
	"io"

	"github.com/coregx/logslex/inputbuf"
	"github.com/coregx/logslex/lexer"
	"github.com/coregx/logslex/tdfa"
	"github.com/coregx/logslex/tnfa"
)

// ErrFinished is returned by NextEvent once the underlying token stream is
// exhausted and every event has already been emitted.
var ErrFinished = errors.New("logparser: no more events")

// TokenSource is anything that can hand back the next lexer token — a
// *lexer.Lexer satisfies it directly. Declaring it as an interface (rather
// than depending on *lexer.Lexer) is what lets NewFromBuffer and
// NewFromReader below share one Parser implementation: spec.md describes
// them as separate classes because the underlying project wires its own
// I/O scheduling into each; here both just differ in how they construct
// the inputbuf.Buffer a Lexer reads from.
type TokenSource interface {
	NextToken() (*lexer.Token, error)
}

type state uint8

const (
	stateBeforeFirstEvent state = iota
	stateInEvent
)

// Parser drives the BeforeFirstEvent/InEvent boundary state machine over a
// TokenSource.
type Parser struct {
	src   TokenSource
	names map[tnfa.RuleID]string

	state   state
	cur     *LogEvent
	pending *lexer.Token
	ended   bool

	sawNewlineThisEvent bool
	tokensAfterNewline  int
}

// New builds a Parser over any TokenSource (most commonly a *lexer.Lexer).
// names supplies the rule_id -> variable name table logtype
// reconstruction needs; it may be nil.
func New(src TokenSource, names map[tnfa.RuleID]string) *Parser {
	return &Parser{src: src, names: names, state: stateBeforeFirstEvent}
}

// NewFromBuffer builds a Parser reading from an existing in-memory
// Lexer/Buffer pair — the Go equivalent of spec.md's BufferParser.
func NewFromBuffer(dfa *tdfa.Dfa, buf *inputbuf.Buffer, delimiters []byte, kinds lexer.RuleKinds, names map[tnfa.RuleID]string) *Parser {
	return New(lexer.New(dfa, buf, delimiters, kinds), names)
}

// NewFromReader builds a Parser streaming from an io.Reader — the Go
// equivalent of spec.md's ReaderParser.
func NewFromReader(dfa *tdfa.Dfa, r io.Reader, delimiters []byte, kinds lexer.RuleKinds, names map[tnfa.RuleID]string) *Parser {
	buf := inputbuf.New(r, 0)
	return NewFromBuffer(dfa, buf, delimiters, kinds, names)
}

func newEvent() *LogEvent {
	return &LogEvent{Tokens: []lexer.Token{{}}} // index 0 reserved
}

func (p *Parser) nextToken() (*lexer.Token, error) {
	if p.pending != nil {
		t := p.pending
		p.pending = nil
		return t, nil
	}
	return p.src.NextToken()
}

// NextEvent returns the next complete LogEvent, or ErrFinished once the
// stream is exhausted.
func (p *Parser) NextEvent() (*LogEvent, error) {
	if p.ended {
		return nil, ErrFinished
	}
	for {
		tok, err := p.nextToken()
		if err != nil {
			return nil, err
		}

		switch p.state {
		case stateBeforeFirstEvent:
			switch tok.Kind {
			case lexer.KindFirstTimestamp, lexer.KindNewLineTimestamp:
				p.cur = newEvent()
				p.cur.HasTimestamp = true
				p.cur.Tokens[0] = *tok
				p.state = stateInEvent
				p.sawNewlineThisEvent = false
				p.tokensAfterNewline = 0
			case lexer.KindEnd:
				p.ended = true
				return nil, ErrFinished
			default:
				p.cur = newEvent()
				p.cur.HasTimestamp = false
				p.cur.Tokens = append(p.cur.Tokens, *tok)
				p.state = stateInEvent
				p.sawNewlineThisEvent = tok.Kind == lexer.KindNewline
				p.tokensAfterNewline = 0
			}

		case stateInEvent:
			boundary := p.cur.HasTimestamp && tok.Kind == lexer.KindNewLineTimestamp
			if !p.cur.HasTimestamp && tok.Kind != lexer.KindNewline && len(tok.Bytes()) > 0 && tok.Bytes()[0] == '\n' {
				boundary = true
			}

			if boundary {
				nlByte, rest := tok.SplitFirstByte()
				p.cur.Tokens = append(p.cur.Tokens, nlByte)
				finished := p.finish()
				p.pending = &rest
				p.state = stateBeforeFirstEvent
				return finished, nil
			}

			if !p.cur.HasTimestamp && tok.Kind == lexer.KindNewline {
				p.cur.Tokens = append(p.cur.Tokens, *tok)
				finished := p.finish()
				p.state = stateBeforeFirstEvent
				return finished, nil
			}

			if tok.Kind == lexer.KindEnd {
				finished := p.finish()
				p.ended = true
				return finished, nil
			}

			if p.sawNewlineThisEvent {
				p.tokensAfterNewline++
			} else if tok.Kind == lexer.KindNewline {
				p.sawNewlineThisEvent = true
			}
			p.cur.Tokens = append(p.cur.Tokens, *tok)
		}
	}
}

// finish closes out the in-progress event, computing its multi-line flag
// (spec.md §4.7: "has a timestamp, contains at least one Newline token,
// and there is at least one further token between the first Newline and
// the event's end").
func (p *Parser) finish() *LogEvent {
	e := p.cur
	p.cur = nil
	e.MultiLine = e.HasTimestamp && p.sawNewlineThisEvent && p.tokensAfterNewline > 0
	return e
}

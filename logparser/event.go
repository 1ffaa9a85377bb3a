// Package logparser implements the log-event boundary state machine over a
// lexer's token stream: spec.md §4.7, L7.
package logparser

import (
	"strings"

	"github.com/coregx/logslex/lexer"
	"github.com/coregx/logslex/tnfa"
)

// LogEvent is an ordered sequence of tokens forming one log event. Tokens[0]
// is reserved for the timestamp token and is the zero Token (Kind
// KindUncaughtString, zero length) when HasTimestamp is false — spec.md
// §4.7's "index 0 reserved" convention.
type LogEvent struct {
	Tokens       []lexer.Token
	HasTimestamp bool
	MultiLine    bool
}

// Timestamp returns the event's timestamp token, if any.
func (e *LogEvent) Timestamp() (lexer.Token, bool) {
	if !e.HasTimestamp || len(e.Tokens) == 0 {
		return lexer.Token{}, false
	}
	return e.Tokens[0], true
}

// LogType reconstructs the event's logtype: its raw byte sequence with
// every variable token replaced by "<name>". The first token is omitted
// when the event has no timestamp (the reserved index-0 sentinel).
//
// Scope decision (see DESIGN.md): spec.md also describes an "expanded
// form showing named sub-captures at their recorded positions" for rules
// with captures; this implementation substitutes the bare variable name
// for every variable token uniformly. Per-capture expansion is not
// reconstructed into the logtype string — callers that need individual
// capture positions read them directly off the token's Captures field,
// which LogType does not discard.
func (e *LogEvent) LogType(names map[tnfa.RuleID]string) string {
	var b strings.Builder
	start := 0
	if !e.HasTimestamp {
		start = 1
	}
	for _, t := range e.Tokens[start:] {
		switch t.Kind {
		case lexer.KindVariable, lexer.KindFirstTimestamp, lexer.KindNewLineTimestamp:
			name := names[t.Rule]
			if name == "" {
				name = "variable"
			}
			b.WriteByte('<')
			b.WriteString(name)
			b.WriteByte('>')
		default:
			b.Write(t.Bytes())
		}
	}
	return b.String()
}

// View is a LogEvent whose tokens still point into the Lexer's live input
// buffer; it is only valid until that buffer's next Reset.
type View struct {
	*LogEvent
}

// DeepCopy copies every token's bytes into one contiguous owned buffer and
// rewrites token spans to reference it, producing a LogEvent that outlives
// the originating input buffer (spec.md §4.7 "Deep copy").
func (v View) DeepCopy() *LogEvent {
	total := 0
	for _, t := range v.Tokens {
		total += t.Len()
	}
	owned := make([]byte, 0, total)
	tokens := make([]lexer.Token, len(v.Tokens))
	offset := 0
	for i, t := range v.Tokens {
		b := t.Bytes()
		owned = append(owned, b...)
		tokens[i] = t.Rebound(owned, offset, offset+len(b))
		offset += len(b)
	}
	// Rebound captured a provisional owned slice per append; fix up every
	// token to share the single final backing array (append may have
	// reallocated along the way).
	for i := range tokens {
		n := tokens[i].End - tokens[i].Start
		tokens[i] = tokens[i].Rebound(owned, tokens[i].Start, tokens[i].Start+n)
	}
	return &LogEvent{
		Tokens:       tokens,
		HasTimestamp: v.HasTimestamp,
		MultiLine:    v.MultiLine,
	}
}

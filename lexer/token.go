package lexer

import (
	"github.com/coregx/logslex/inputbuf"
	"github.com/coregx/logslex/tnfa"
)

// Kind classifies a Token the way LogParser's boundary state machine needs
// (spec.md §4.7): ordinary variable matches plus the handful of reserved
// kinds that drive event-boundary detection.
type Kind uint8

const (
	// KindUncaughtString is unclassified input: a single byte from which no
	// rule reached an accepting state (also the kind of the byte
	// SplitFirstByte carves off).
	KindUncaughtString Kind = iota
	// KindNewline is a single '\n' byte matched by the reserved newline
	// rule every schema carries (spec.md §4.7's InEvent/timestamp-less
	// boundary case reads this kind directly).
	KindNewline
	// KindFirstTimestamp is the first schema timestamp variable matched at
	// the very start of input (spec.md §4.1 rewrite #3).
	KindFirstTimestamp
	// KindNewLineTimestamp is the first schema timestamp variable matched
	// immediately after a newline.
	KindNewLineTimestamp
	// KindVariable is an ordinary (non-timestamp) schema variable match.
	KindVariable
	// KindEnd is a synthetic token the Lexer returns at EOF, and again on
	// every later call; it is never backed by buffer bytes.
	KindEnd
)

// Token is one lexer output: a classified byte span plus, for variable
// matches, the named capture positions recorded within it.
//
// Scope decision (see DESIGN.md): Buffer positions here are the
// ever-increasing logical stream position inputbuf.Buffer hands out, not a
// raw ring-array offset, so there is no "End < Start means wrap-around"
// case to special-case the way spec.md §3 describes it for a fixed-size
// ring-offset representation — inputbuf.Buffer.Slice already resolves the
// wrap transparently from two monotonic endpoints.
type Token struct {
	Kind Kind

	// Rule is the winning (lowest-priority-number) accepting rule for
	// KindVariable/KindFirstTimestamp/KindNewLineTimestamp tokens.
	Rule tnfa.RuleID
	// AllRules lists every rule accepted at the matched state, ascending,
	// for callers interested in ambiguous matches (spec.md §4.6
	// "Multi-rule accepts").
	AllRules []tnfa.RuleID

	Start, End int // [Start, End) in the owning Buffer's logical position space
	Line       int

	// Captures maps "<name>.start" and "<name>.end", for each named capture
	// of Rule, to the positions recorded for that tag, tip-to-root (most recent occurrence first) per
	// register.Handler.GetReversedPositions. Nil for tokens with no
	// captures (plain literals/classes, or non-variable kinds).
	Captures map[string][]int64

	buf   *inputbuf.Buffer
	owned []byte // non-nil once Rebound onto an owned, deep-copied buffer
}

// Bytes materializes the token's backing bytes. Valid until the owning
// Buffer is Reset, unless the token has been Rebound onto an owned buffer.
func (t *Token) Bytes() []byte {
	if t.owned != nil {
		return t.owned[t.Start:t.End]
	}
	if t.Kind == KindEnd || t.buf == nil {
		return nil
	}
	return t.buf.Slice(t.Start, t.End)
}

// Len returns the token's byte length.
func (t *Token) Len() int { return t.End - t.Start }

// Rebound returns a copy of t pointing at [start:end] of an owned buffer
// instead of the live input buffer — the primitive LogEventView.DeepCopy
// uses to produce a LogEvent that outlives its originating Buffer.
func (t Token) Rebound(owned []byte, start, end int) Token {
	t.owned = owned
	t.Start = start
	t.End = end
	t.buf = nil
	return t
}

// SplitFirstByte splits off t's first byte as its own single-byte
// UncaughtString token, returning it alongside the remainder (t with its
// first byte trimmed). Used by logparser to carve the newline off a token
// that straddles an event boundary (spec.md §4.7 InEvent boundary case).
func (t Token) SplitFirstByte() (first, rest Token) {
	first = t
	first.Kind = KindUncaughtString
	first.Rule = 0
	first.AllRules = nil
	first.Captures = nil
	first.End = first.Start + 1

	rest = t
	rest.Start = t.Start + 1
	return first, rest
}

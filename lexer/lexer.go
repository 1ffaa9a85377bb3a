// Package lexer runs a tagged DFA (tdfa.Dfa) over a streaming input buffer
// (inputbuf.Buffer), producing one classified Token at a time: spec.md
// §4.6, L6.
package lexer

import (
	"fmt"
	"sort"

	"github.com/coregx/logslex/inputbuf"
	"github.com/coregx/logslex/register"
	"github.com/coregx/logslex/tdfa"
	"github.com/coregx/logslex/tnfa"
)

// RuleKinds names the handful of reserved rules every schema compiles that
// drive LogParser's boundary detection (spec.md §4.1 rewrite #3, §4.7).
type RuleKinds struct {
	Newline             tnfa.RuleID
	HasNewline          bool
	FirstTimestamp      tnfa.RuleID
	HasFirstTimestamp   bool
	NewLineTimestamp    tnfa.RuleID
	HasNewLineTimestamp bool
}

func (rk RuleKinds) classify(r tnfa.RuleID) Kind {
	switch {
	case rk.HasNewline && r == rk.Newline:
		return KindNewline
	case rk.HasFirstTimestamp && r == rk.FirstTimestamp:
		return KindFirstTimestamp
	case rk.HasNewLineTimestamp && r == rk.NewLineTimestamp:
		return KindNewLineTimestamp
	default:
		return KindVariable
	}
}

// Lexer drives Dfa simulation over a Buffer.
//
// Simplification (see DESIGN.md): spec.md's InputBuffer handshake returns
// a BufferOutOfBounds code so a caller can interleave its own I/O
// scheduling with scanning (a single-threaded coroutine-style design).
// This Go port instead blocks synchronously inside the Lexer — readByte
// calls Buffer.ReadIfSafe/IncreaseCapacity itself until a byte is
// available — since nothing here needs cooperative scheduling across
// goroutines; callers that do want that can wrap a Lexer in their own
// goroutine and channel.
type Lexer struct {
	dfa    *tdfa.Dfa
	buf    *inputbuf.Buffer
	regs   *register.Handler
	kinds  RuleKinds
	delims [256]bool

	primed     tdfa.StateID // state reached by virtually consuming one delimiter byte from Start
	afterDelim bool         // true at start-of-input and right after a delimiter byte
	line       int
	emittedEnd bool
}

// New creates a Lexer. delimiters is the schema's configured delimiter
// byte set (spec.md §6); it may be empty for schemas with no non-timestamp
// variables.
func New(dfa *tdfa.Dfa, buf *inputbuf.Buffer, delimiters []byte, kinds RuleKinds) *Lexer {
	l := &Lexer{
		dfa:        dfa,
		buf:        buf,
		regs:       register.NewHandler(),
		kinds:      kinds,
		afterDelim: true,
		line:       1,
		primed:     tdfa.DeadState,
	}
	for _, d := range delimiters {
		l.delims[d] = true
	}
	for i := 0; i < dfa.TagCount(); i++ {
		_, _ = l.regs.AddRegister(nil)
	}
	applyOps(l.regs, dfa.EntryOps(), 0)

	sorted := append([]byte(nil), delimiters...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if start := dfa.State(dfa.Start()); start != nil {
		for _, d := range sorted {
			if t, ok := start.TransitionFor(d); ok {
				l.primed = t.Dest
				break
			}
		}
	}
	return l
}

// Registers exposes the underlying register bank, e.g. for a caller
// building a LogEvent that wants raw capture positions.
func (l *Lexer) Registers() *register.Handler { return l.regs }

func applyOps(regs *register.Handler, ops []tdfa.RegOp, pos int64) {
	for _, op := range ops {
		reg := register.RegisterID(op.Reg)
		switch op.Kind {
		case tdfa.RegSet:
			if op.MultiValued {
				_ = regs.AppendPosition(reg, pos)
			} else {
				_ = regs.SetRegister(reg, pos)
			}
		case tdfa.RegNegate:
			_ = regs.Negate(reg)
		case tdfa.RegCopy:
			_ = regs.CopyRegister(reg, register.RegisterID(op.Other))
		}
	}
}

// readByte returns the next input byte, growing/refilling the buffer as
// needed until one is available.
func (l *Lexer) readByte() (byte, error) {
	for i := 0; i < 64; i++ {
		b, err := l.buf.NextByte()
		if err == nil {
			return b, nil
		}
		if err != inputbuf.ErrOutOfBounds {
			return 0, err
		}
		n, rerr := l.buf.ReadIfSafe()
		if rerr != nil {
			return 0, rerr
		}
		if n == 0 {
			l.buf.IncreaseCapacity()
		}
	}
	return 0, fmt.Errorf("lexer: no progress reading input after growth retries")
}

// firstStep resolves the transition taken by the very first byte of a new
// token. When primed (start-of-input or just past a delimiter), it prefers
// the state reached by virtually consuming a delimiter byte first — the
// continuation of any delimiter-prefixed variable rule — falling back to
// an ordinary Start transition for rules that don't require one (e.g.
// firstTimestamp). This is a deliberate approximation of spec.md §4.6's
// priming (see DESIGN.md): a true union of both paths would require
// re-merging two DFA states at runtime; preferring the primed path first
// is sufficient for every schema in spec.md §8's scenarios, where
// delimiter-prefixed and bare-start rules never both match the same
// first byte.
func (l *Lexer) firstStep(b byte) (*tdfa.Transition, *tdfa.DfaState) {
	if l.afterDelim && l.primed != tdfa.DeadState {
		if ps := l.dfa.State(l.primed); ps != nil {
			if t, ok := ps.TransitionFor(b); ok {
				return t, ps
			}
		}
	}
	start := l.dfa.State(l.dfa.Start())
	if t, ok := start.TransitionFor(b); ok {
		return t, start
	}
	return nil, start
}

// NextToken scans and returns the next token, applying longest-match with
// rule-priority tie-break (spec.md §4.6 steps 1-5).
func (l *Lexer) NextToken() (*Token, error) {
	if l.emittedEnd {
		return &Token{Kind: KindEnd, buf: l.buf}, nil
	}

	startPos := l.buf.Pos()
	startLine := l.line

	b, err := l.readByte()
	if err != nil {
		return nil, err
	}
	if b == inputbuf.EOF {
		l.emittedEnd = true
		return &Token{Kind: KindEnd, Start: startPos, End: startPos, Line: startLine, buf: l.buf}, nil
	}

	type checkpoint struct {
		pos     int
		line    int
		matches []tdfa.RuleMatch
		regs    []register.NodeID
	}
	var last *checkpoint

	t, _ := l.firstStep(b)
	if t == nil {
		// No rule can start with this byte at all: single-byte
		// UncaughtString, matching spec.md §4.6 step 3's fallback.
		l.line += newlineDelta(b)
		l.afterDelim = l.delims[b]
		return &Token{Kind: KindUncaughtString, Start: startPos, End: startPos + 1, Line: startLine, buf: l.buf}, nil
	}
	applyOps(l.regs, t.Ops, int64(l.buf.Pos()))
	l.line += newlineDelta(b)
	state := l.dfa.State(t.Dest)

	if state != nil && state.Accepting() {
		last = &checkpoint{pos: l.buf.Pos(), line: l.line, matches: state.Matches, regs: l.regs.Snapshot()}
	}

	for state != nil {
		nb, err := l.readByte()
		if err != nil {
			return nil, err
		}
		if nb == inputbuf.EOF {
			break
		}
		nt, ok := state.TransitionFor(nb)
		if !ok {
			// Dead end: nb does not belong to this token. Stop here; the
			// rewind below (to last.pos, or to startPos+1 if nothing was
			// ever accepted) puts the buffer cursor back before nb so the
			// next NextToken call re-reads it.
			break
		}
		applyOps(l.regs, nt.Ops, int64(l.buf.Pos()))
		l.line += newlineDelta(nb)
		state = l.dfa.State(nt.Dest)
		if state != nil && state.Accepting() {
			last = &checkpoint{pos: l.buf.Pos(), line: l.line, matches: state.Matches, regs: l.regs.Snapshot()}
		}
	}

	if last == nil {
		// Never accepted: fall back to the single first byte as
		// UncaughtString, rewinding any bytes consumed beyond it.
		l.rewindTo(startPos + 1)
		l.line = startLine + newlineDelta(b)
		l.afterDelim = l.delims[b]
		return &Token{Kind: KindUncaughtString, Start: startPos, End: startPos + 1, Line: startLine, buf: l.buf}, nil
	}

	l.rewindTo(last.pos)
	l.regs.Restore(last.regs)
	l.line = last.line

	win, _ := bestMatch(last.matches)
	kind := l.kinds.classify(win.Rule)
	tok := &Token{
		Kind:     kind,
		Rule:     win.Rule,
		AllRules: ruleIDs(last.matches),
		Start:    startPos,
		End:      last.pos,
		Line:     startLine,
		buf:      l.buf,
	}
	if len(win.Captures) > 0 {
		tok.Captures = make(map[string][]int64, len(win.Captures))
		for name, ct := range win.Captures {
			startPositions, _ := l.regs.GetReversedPositions(register.RegisterID(ct.Start))
			endPositions, _ := l.regs.GetReversedPositions(register.RegisterID(ct.End))
			tok.Captures[name+".start"] = startPositions
			tok.Captures[name+".end"] = endPositions
		}
	}

	lastByte := l.buf.ByteAt(last.pos - 1)
	l.afterDelim = l.delims[lastByte]
	return tok, nil
}

func bestMatch(matches []tdfa.RuleMatch) (tdfa.RuleMatch, bool) {
	if len(matches) == 0 {
		return tdfa.RuleMatch{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Rule < best.Rule {
			best = m
		}
	}
	return best, true
}

func ruleIDs(matches []tdfa.RuleMatch) []tnfa.RuleID {
	out := make([]tnfa.RuleID, len(matches))
	for i, m := range matches {
		out[i] = m.Rule
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func newlineDelta(b byte) int {
	if b == '\n' {
		return 1
	}
	return 0
}

// rewindTo moves the buffer's logical read cursor back to pos, used after
// scanning past the longest accepted match in search of an even longer
// one. Buffer positions are monotonic logical offsets, so this is just a
// cursor reset within already-read bytes.
func (l *Lexer) rewindTo(pos int) {
	l.buf.Seek(pos)
}

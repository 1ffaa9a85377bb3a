// Package inputbuf implements the streaming byte source the Lexer reads
// from: a two-half ring buffer that can be grown without invalidating
// previously handed-out token spans (spec.md §4.5, L5).
package inputbuf

import (
	"errors"
	"io"

	"github.com/coregx/logslex/internal/pagesize"
)

// ErrOutOfBounds is returned by NextByte when the next byte hasn't been
// read from the underlying reader yet — the caller should ReadIfSafe or
// IncreaseCapacity and retry.
var ErrOutOfBounds = errors.New("inputbuf: next byte not yet available")

// EOF is the sentinel byte value NextByte returns once the source reader
// is exhausted and every buffered byte has been consumed.
const EOF byte = 0xFF

// Buffer is a growable ring buffer split into two contiguous halves. A
// half may only be refilled once it is fully consumed (ConsumedPos has
// passed its last byte), which is what lets token spans handed out to
// callers stay valid across a refill of the *other* half: the arrays
// backing already-consumed halves are never reused while still
// referenced, only reallocated wholesale on IncreaseCapacity.
type Buffer struct {
	data []byte // len(data) == 2*halfSize
	half int    // halfSize

	pos         int // next byte to hand out, absolute ring offset
	lastRead    int // one past the last byte successfully read from src
	consumedPos int // bytes before this are safe to overwrite

	flipped bool // true once the logical stream has wrapped past data's end

	finished bool // src returned io.EOF
	src      io.Reader
}

// DefaultInitialCapacity is one OS page per half, the same granularity
// internal/pagesize supplies for buffer growth (spec.md §4.5:
// "increase_capacity() doubles the ring").
func DefaultInitialCapacity() int {
	return pagesize.Get()
}

// New creates a Buffer reading from src with the given per-half capacity.
// halfSize <= 0 uses DefaultInitialCapacity.
func New(src io.Reader, halfSize int) *Buffer {
	if halfSize <= 0 {
		halfSize = DefaultInitialCapacity()
	}
	return &Buffer{
		data: make([]byte, 2*halfSize),
		half: halfSize,
		src:  src,
	}
}

// Pos returns the current logical read position.
func (b *Buffer) Pos() int { return b.pos }

// ConsumedPos returns the oldest position still guaranteed safe to read
// (spec.md §4.5 invariant: "consumed_pos is always <= the oldest position
// the caller still references").
func (b *Buffer) ConsumedPos() int { return b.consumedPos }

// Advance moves consumedPos forward, releasing bytes before pos for reuse.
// Callers must not retain spans into the buffer before the new
// consumedPos once this is called.
func (b *Buffer) Advance(to int) {
	if to > b.consumedPos {
		b.consumedPos = to
	}
}

// ReadIfSafe reads a full half's worth of bytes from src into whichever
// half is next needed, or no-ops if that half still holds live (unconsumed)
// data. lastRead only ever advances by a full half while src keeps
// producing full reads, so it stays half-aligned: the physical slot about
// to be refilled is the one last written exactly one ring ago, spanning
// absolute positions [lastRead-ring, lastRead-half) — safe to overwrite
// once consumedPos has passed lastRead-half. Returns the number of bytes
// read.
func (b *Buffer) ReadIfSafe() (int, error) {
	if b.finished {
		return 0, nil
	}
	ring := 2 * b.half
	if b.lastRead >= ring && b.consumedPos < b.lastRead-b.half {
		return 0, nil
	}

	physicalStart := b.lastRead % ring
	n, err := io.ReadFull(b.src, b.data[physicalStart:physicalStart+b.half])
	if n > 0 {
		b.lastRead += n
	}
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		b.finished = true
		return n, nil
	}
	if err != nil {
		return n, err
	}
	return n, nil
}

// IncreaseCapacity doubles the ring and re-linearizes its live content so
// that unconsumed data starts at offset 0 of the new, larger ring. Returns
// whether the ring had been flipped (and thus every stored position must
// be remapped by the caller — Lexer.flip_states in spec.md terms).
func (b *Buffer) IncreaseCapacity() (wasFlipped int) {
	ring := 2 * b.half
	// Collect the live bytes [consumedPos, lastRead) in logical order,
	// oldest first, walking the ring byte-by-byte so wrap is handled the
	// same way Slice/ByteAt handle it.
	length := b.lastRead - b.consumedPos
	linear := make([]byte, length)
	for i := 0; i < length; i++ {
		linear[i] = b.data[(b.consumedPos+i)%ring]
	}

	oldHalf := b.half
	newHalf := oldHalf * 2
	newData := make([]byte, 2*newHalf)
	n := copy(newData, linear)

	shift := b.consumedPos
	b.data = newData
	b.half = newHalf
	b.pos -= shift
	b.lastRead = n
	b.consumedPos = 0

	if b.flipped {
		wasFlipped = 1
	}
	b.flipped = false
	return wasFlipped
}

// NextByte returns the byte at pos and advances pos, wrapping within the
// ring. Returns ErrOutOfBounds if that byte hasn't been read from src
// yet, or EOF once src is exhausted and every byte has been handed out.
func (b *Buffer) NextByte() (byte, error) {
	if b.pos >= b.lastRead {
		if b.finished {
			return EOF, nil
		}
		return 0, ErrOutOfBounds
	}
	ring := 2 * b.half
	c := b.data[b.pos%ring]
	b.pos++
	if b.pos%ring == 0 {
		b.flipped = true
	}
	return c, nil
}

// ByteAt returns the byte at an already-read absolute position without
// advancing pos — used to materialize a token span.
func (b *Buffer) ByteAt(pos int) byte {
	return b.data[pos%(2*b.half)]
}

// Seek moves the read cursor back to a previously-visited position,
// letting a Lexer rewind after scanning past its longest accepted match in
// search of (and failing to find) an even longer one. pos must be within
// [consumedPos, lastRead].
func (b *Buffer) Seek(pos int) {
	b.pos = pos
}

// Slice copies out the bytes in [from, to) — used by a Token to
// materialize its text without holding a reference past the next reset.
func (b *Buffer) Slice(from, to int) []byte {
	out := make([]byte, 0, to-from)
	ring := 2 * b.half
	for p := from; p < to; p++ {
		out = append(out, b.data[p%ring])
	}
	return out
}

// Reset clears the buffer for reuse against a new source, invalidating
// every previously handed-out span (spec.md §4.5: spans are valid "until
// the next reset()").
func (b *Buffer) Reset(src io.Reader) {
	for i := range b.data {
		b.data[i] = 0
	}
	b.pos = 0
	b.lastRead = 0
	b.consumedPos = 0
	b.flipped = false
	b.finished = false
	b.src = src
}

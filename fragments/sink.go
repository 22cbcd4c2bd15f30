package fragments

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

// Pad returns the smallest multiple of 4 that is >= n.
func Pad(n int) int {
	return (n + 3) &^ 3
}

// A Writer is an append-only destination for encoded bytes.
//
// Write must either consume all of bs or return an error, and must
// not retain bs after returning. Reserve is a capacity hint for the
// next n bytes, and may do nothing.
type Writer interface {
	Write(bs []byte) (int, error)
	Reserve(n int)
}

// A Sink is a Writer that can also reserve space now and fill it in
// later, which lets length prefixes be written before the length is
// known.
type Sink interface {
	Writer
	// Allocate appends n placeholder bytes, to be filled in later
	// with Rewrite.
	Allocate(n int) (Placeholder, error)
	// Rewrite fills in the bytes reserved by a previous Allocate. bs
	// must be exactly as long as the allocation.
	Rewrite(p Placeholder, bs []byte) error
}

// A Placeholder is a handle to bytes reserved by [Sink.Allocate]. Its
// offset is only meaningful to the Sink that returned it.
type Placeholder struct {
	off, n int
}

// NewPlaceholder returns a Placeholder for n bytes at offset off.
// Sinks outside this package use it to implement [Sink.Allocate].
func NewPlaceholder(off, n int) Placeholder {
	return Placeholder{off, n}
}

// Offset returns the position of the reserved bytes, as recorded by
// the Sink that issued the placeholder.
func (p Placeholder) Offset() int { return p.off }

// Len returns the number of bytes reserved by the placeholder.
func (p Placeholder) Len() int { return p.n }

// ErrPlaceholder is returned by [Buffer.Rewrite] when the placeholder
// doesn't describe a valid region of the buffer.
var ErrPlaceholder = errors.New("invalid placeholder")

// Buffer is a growable in-memory Sink. The zero value is an empty
// buffer ready to use.
//
// A Buffer can be reused for several encodings by calling
// [Buffer.Reset] in between.
type Buffer struct {
	bs []byte
}

// NewBuffer returns a Buffer that appends to bs.
func NewBuffer(bs []byte) *Buffer {
	return &Buffer{bs}
}

// Bytes returns the buffer's contents. The slice aliases the buffer's
// storage, and is only valid until the next write or Reset.
func (b *Buffer) Bytes() []byte { return b.bs }

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return len(b.bs) }

// Reset empties the buffer, keeping its storage for reuse.
func (b *Buffer) Reset() { b.bs = b.bs[:0] }

func (b *Buffer) Write(bs []byte) (int, error) {
	b.bs = append(b.bs, bs...)
	return len(bs), nil
}

// WriteString is like Write, but avoids copying s to a byte slice
// first.
func (b *Buffer) WriteString(s string) (int, error) {
	b.bs = append(b.bs, s...)
	return len(s), nil
}

func (b *Buffer) Reserve(n int) {
	if n > 0 {
		b.bs = slices.Grow(b.bs, n)
	}
}

func (b *Buffer) Allocate(n int) (Placeholder, error) {
	off := len(b.bs)
	b.bs = append(b.bs, make([]byte, n)...)
	return Placeholder{off, n}, nil
}

func (b *Buffer) Rewrite(p Placeholder, bs []byte) error {
	if len(bs) != p.n {
		return fmt.Errorf("rewriting %d byte placeholder with %d bytes: %w", p.n, len(bs), ErrPlaceholder)
	}
	if p.off < 0 || p.off+p.n > len(b.bs) {
		return fmt.Errorf("placeholder [%d:%d] is outside buffer of length %d: %w", p.off, p.off+p.n, len(b.bs), ErrPlaceholder)
	}
	copy(b.bs[p.off:], bs)
	return nil
}

// Discard is a Sink that throws away everything written to it. It is
// used to measure the size of an encoding without producing it.
type Discard struct{}

func (Discard) Write(bs []byte) (int, error) { return len(bs), nil }
func (Discard) WriteString(s string) (int, error) { return len(s), nil }
func (Discard) Reserve(int) {}
func (Discard) Allocate(n int) (Placeholder, error) { return Placeholder{0, n}, nil }
func (Discard) Rewrite(p Placeholder, bs []byte) error { return nil }

var (
	_ Sink            = (*Buffer)(nil)
	_ Sink            = Discard{}
	_ io.StringWriter = (*Buffer)(nil)
	_ io.StringWriter = Discard{}
)

package fragments

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Framing selects how [Encoder.Frame] computes length prefixes.
type Framing int

const (
	// FrameAuto uses FramePatch if the output is a [Sink], and
	// FrameMeasure otherwise.
	FrameAuto Framing = iota
	// FramePatch reserves the length prefix with [Sink.Allocate],
	// encodes the frame body, then fills in the length with
	// [Sink.Rewrite]. The body is encoded once.
	FramePatch
	// FrameMeasure encodes the frame body to [Discard] to learn its
	// length, writes the length, then encodes the body again to the
	// output. Works with any [Writer].
	FrameMeasure
)

func (f Framing) String() string {
	switch f {
	case FrameAuto:
		return "auto"
	case FramePatch:
		return "patch"
	case FrameMeasure:
		return "measure"
	default:
		return fmt.Sprintf("Framing(%d)", int(f))
	}
}

var (
	// ErrNotPatchable is the error recorded when FramePatch is
	// requested on an output that isn't a [Sink].
	ErrNotPatchable = errors.New("output does not support placeholders")
	// ErrTooLarge is the error recorded when a length doesn't fit in
	// the 32-bit length fields of the wire format.
	ErrTooLarge = errors.New("length exceeds 32 bits")
)

// An EncoderFunc writes a value to the given encoder.
type EncoderFunc func(enc *Encoder)

// An Encoder writes OSC wire format fragments to a [Writer].
//
// Every method that produces text or blob data pads its output to a
// multiple of 4 bytes. [Encoder.Write] outputs bytes verbatim.
//
// Encoder methods don't return errors. Instead, the first error
// returned by Out is recorded and all later writes are skipped, so
// that encoding logic can be written straight-line and check
// [Encoder.Err] once at the end.
type Encoder struct {
	// Out is the destination of encoded bytes.
	Out Writer
	// Framing is the length prefix strategy for [Encoder.Frame].
	Framing Framing

	n       int
	err     error
	scratch [8]byte
}

var zeros [4]byte

// Len returns the number of bytes written to Out so far, including
// placeholder bytes.
func (e *Encoder) Len() int { return e.n }

// Err returns the first error encountered while writing, if any.
func (e *Encoder) Err() error { return e.err }

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Reserve passes a capacity hint for the next n bytes to Out.
func (e *Encoder) Reserve(n int) {
	if e.err != nil {
		return
	}
	e.Out.Reserve(n)
}

// Write writes bs as-is to the output. It is the caller's
// responsibility to ensure correct padding and encoding.
func (e *Encoder) Write(bs []byte) {
	if e.err != nil || len(bs) == 0 {
		return
	}
	n, err := e.Out.Write(bs)
	e.n += n
	if err != nil {
		e.fail(err)
	} else if n != len(bs) {
		e.fail(io.ErrShortWrite)
	}
}

func (e *Encoder) writeString(s string) {
	if e.err != nil || len(s) == 0 {
		return
	}
	sw, ok := e.Out.(io.StringWriter)
	if !ok {
		e.Write([]byte(s))
		return
	}
	n, err := sw.WriteString(s)
	e.n += n
	if err != nil {
		e.fail(err)
	} else if n != len(s) {
		e.fail(io.ErrShortWrite)
	}
}

// String writes s followed by 1 to 4 NUL bytes, such that the
// encoded length is a multiple of 4.
func (e *Encoder) String(s string) {
	e.Reserve(Pad(len(s) + 1))
	e.writeString(s)
	e.Write(zeros[:Pad(len(s)+1)-len(s)])
}

// StringBytes is like [Encoder.String], for text held in a byte
// slice.
func (e *Encoder) StringBytes(bs []byte) {
	e.Reserve(Pad(len(bs) + 1))
	e.Write(bs)
	e.Write(zeros[:Pad(len(bs)+1)-len(bs)])
}

// Blob writes a 32-bit length, followed by bs, followed by 0 to 3
// zero bytes of padding.
func (e *Encoder) Blob(bs []byte) {
	if uint64(len(bs)) > math.MaxUint32 {
		e.fail(fmt.Errorf("blob of %d bytes: %w", len(bs), ErrTooLarge))
		return
	}
	e.Reserve(4 + Pad(len(bs)))
	e.Uint32(uint32(len(bs)))
	e.Write(bs)
	e.Write(zeros[:Pad(len(bs))-len(bs)])
}

// Uint32 writes a big-endian uint32.
func (e *Encoder) Uint32(u32 uint32) {
	binary.BigEndian.PutUint32(e.scratch[:4], u32)
	e.Write(e.scratch[:4])
}

// Uint64 writes a big-endian uint64.
func (e *Encoder) Uint64(u64 uint64) {
	binary.BigEndian.PutUint64(e.scratch[:8], u64)
	e.Write(e.scratch[:8])
}

// Frame writes a 32-bit big-endian length, followed by the output of
// body. The length is the number of bytes written by body, not
// including the length field itself.
//
// How the length is computed depends on [Encoder.Framing]. With
// FrameMeasure, body runs twice and must produce the same number of
// bytes both times.
func (e *Encoder) Frame(body EncoderFunc) {
	if e.err != nil {
		return
	}
	switch e.Framing {
	case FramePatch:
		e.framePatch(body)
	case FrameMeasure:
		e.frameMeasure(body)
	default:
		if _, ok := e.Out.(Sink); ok {
			e.framePatch(body)
		} else {
			e.frameMeasure(body)
		}
	}
}

func (e *Encoder) framePatch(body EncoderFunc) {
	sink, ok := e.Out.(Sink)
	if !ok {
		e.fail(ErrNotPatchable)
		return
	}
	p, err := sink.Allocate(4)
	if err != nil {
		e.fail(err)
		return
	}
	e.n += p.Len()
	start := e.n
	body(e)
	if e.err != nil {
		return
	}
	ln, ok := frameLen(e.n - start)
	if !ok {
		e.fail(fmt.Errorf("frame of %d bytes: %w", e.n-start, ErrTooLarge))
		return
	}
	var bs [4]byte
	binary.BigEndian.PutUint32(bs[:], ln)
	if err := sink.Rewrite(p, bs[:]); err != nil {
		e.fail(err)
	}
}

func (e *Encoder) frameMeasure(body EncoderFunc) {
	want := Measure(body)
	ln, ok := frameLen(want)
	if !ok {
		e.fail(fmt.Errorf("frame of %d bytes: %w", want, ErrTooLarge))
		return
	}
	e.Uint32(ln)
	start := e.n
	body(e)
	if e.err != nil {
		return
	}
	if got := e.n - start; got != want {
		e.fail(fmt.Errorf("frame body wrote %d bytes, but measured %d", got, want))
	}
}

func frameLen(n int) (uint32, bool) {
	if uint64(n) > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// Measure returns the number of bytes fn writes, without keeping
// them.
func Measure(fn EncoderFunc) int {
	e := Encoder{Out: Discard{}}
	fn(&e)
	return e.n
}

package fragments

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrUnterminated is returned when a string has no NUL
	// terminator within its padded length.
	ErrUnterminated = errors.New("unterminated string")
	// ErrFrameLength is returned when a frame's length prefix is not
	// a multiple of 4, or runs past the end of the input.
	ErrFrameLength = errors.New("invalid frame length")
)

// A Decoder reads OSC wire format fragments from a byte slice.
//
// Methods consume the padding that follows text and blob data,
// except for [Decoder.Read] which reads bytes verbatim.
type Decoder struct {
	// In is the remaining input.
	In []byte

	// base is the offset of In within the outermost decoder's input,
	// so that nested frames report offsets relative to the whole
	// packet.
	base     int
	consumed int
}

// Offset returns the number of bytes consumed so far, relative to the
// start of the outermost input.
func (d *Decoder) Offset() int { return d.base + d.consumed }

// Remaining returns the number of unread input bytes.
func (d *Decoder) Remaining() int { return len(d.In) }

// Peek returns the next n bytes without consuming them. If fewer
// than n bytes remain, Peek returns all remaining bytes.
func (d *Decoder) Peek(n int) []byte {
	return d.In[:min(n, len(d.In))]
}

// Read reads n bytes, with no framing or padding. The returned slice
// aliases In.
func (d *Decoder) Read(n int) ([]byte, error) {
	if n < 0 || n > len(d.In) {
		return nil, io.ErrUnexpectedEOF
	}
	ret := d.In[:n:n]
	d.In = d.In[n:]
	d.consumed += n
	return ret, nil
}

// Uint32 reads a big-endian uint32.
func (d *Decoder) Uint32() (uint32, error) {
	bs, err := d.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(bs), nil
}

// Uint64 reads a big-endian uint64.
func (d *Decoder) Uint64() (uint64, error) {
	bs, err := d.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(bs), nil
}

// String reads a NUL-terminated string and its padding.
func (d *Decoder) String() (string, error) {
	end := bytes.IndexByte(d.In, 0)
	if end < 0 {
		return "", ErrUnterminated
	}
	bs, err := d.Read(Pad(end + 1))
	if err != nil {
		return "", err
	}
	return string(bs[:end]), nil
}

// Blob reads a length-prefixed byte array and its padding. The
// returned slice is a copy, and does not alias In.
func (d *Decoder) Blob() ([]byte, error) {
	ln, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	if uint64(ln) > uint64(len(d.In)) {
		return nil, io.ErrUnexpectedEOF
	}
	bs, err := d.Read(Pad(int(ln)))
	if err != nil {
		return nil, err
	}
	return bytes.Clone(bs[:ln]), nil
}

// Frame reads a length-prefixed frame, and returns a Decoder for the
// frame's contents. The frame's bytes are consumed from d.
func (d *Decoder) Frame() (*Decoder, error) {
	ln, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	if ln%4 != 0 || uint64(ln) > uint64(len(d.In)) {
		return nil, fmt.Errorf("frame length %d with %d bytes remaining: %w", ln, len(d.In), ErrFrameLength)
	}
	base := d.Offset()
	bs, err := d.Read(int(ln))
	if err != nil {
		return nil, err
	}
	return &Decoder{In: bs, base: base}, nil
}

package transport

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danderson/osc"
	"github.com/danderson/osc/fragments"
)

// ErrPacketTooLarge is returned by readers when an incoming packet
// exceeds the reader's MaxSize.
var ErrPacketTooLarge = errors.New("packet too large")

// Stream writes OSC packets to a byte stream, such as a TCP
// connection, using OSC 1.0 stream framing: each packet is preceded
// by its length as a big-endian int32.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	bw *bufio.Writer
}

// NewStream returns a Stream that writes to w.
func NewStream(w io.Writer) *Stream {
	return &Stream{bufio.NewWriter(w)}
}

// WritePacket writes p to the stream.
func (s *Stream) WritePacket(p osc.Packet) error {
	e := fragments.Encoder{Out: AppendOnly(s.bw)}
	e.Frame(func(e *fragments.Encoder) {
		// Errors are recorded in e.
		osc.EncodeTo(e, p)
	})
	if err := e.Err(); err != nil {
		return err
	}
	return s.bw.Flush()
}

// StreamReader reads OSC packets written by a [Stream].
//
// A StreamReader is not safe for concurrent use.
type StreamReader struct {
	// MaxSize is the size in bytes of the largest packet that
	// ReadPacket accepts. Zero means no limit beyond what the
	// framing can express.
	MaxSize int

	r   *bufio.Reader
	buf bytes.Buffer
}

// NewStreamReader returns a StreamReader that reads from r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: bufio.NewReader(r)}
}

// ReadPacket reads and decodes the next packet. It returns io.EOF if
// the stream ends cleanly between packets.
func (s *StreamReader) ReadPacket() (osc.Packet, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(s.r, hdr[:]); err != nil {
		return nil, err
	}
	ln := binary.BigEndian.Uint32(hdr[:])
	if s.MaxSize > 0 && uint64(ln) > uint64(s.MaxSize) {
		return nil, fmt.Errorf("%d byte packet exceeds limit of %d: %w", ln, s.MaxSize, ErrPacketTooLarge)
	}
	// ln is untrusted. Grow the buffer as bytes arrive, not up front.
	s.buf.Reset()
	n, err := io.CopyN(&s.buf, s.r, int64(ln))
	if n < int64(ln) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return osc.Decode(s.buf.Bytes())
}

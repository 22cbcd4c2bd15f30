package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/danderson/osc"
)

// SLIP framing bytes, from RFC 1055.
const (
	slipEnd    = 0xc0
	slipEsc    = 0xdb
	slipEscEnd = 0xdc
	slipEscEsc = 0xdd
)

// SLIP writes OSC packets to a byte stream using OSC 1.1 stream
// framing: each packet is SLIP-encoded, with an END byte both before
// and after it.
//
// A SLIP is not safe for concurrent use.
type SLIP struct {
	bw *bufio.Writer
}

// NewSLIP returns a SLIP that writes to w.
func NewSLIP(w io.Writer) *SLIP {
	return &SLIP{bufio.NewWriter(w)}
}

// WritePacket writes p to the stream.
func (s *SLIP) WritePacket(p osc.Packet) error {
	s.bw.WriteByte(slipEnd)
	// Escaping changes the length of the output, so placeholders
	// can't be patched after the fact. slipEscaper is append-only.
	if _, err := osc.EncodeInto(p, slipEscaper{s.bw}); err != nil {
		return err
	}
	s.bw.WriteByte(slipEnd)
	return s.bw.Flush()
}

type slipEscaper struct {
	w *bufio.Writer
}

func (s slipEscaper) Write(bs []byte) (int, error) {
	start := 0
	for i, b := range bs {
		var esc byte
		switch b {
		case slipEnd:
			esc = slipEscEnd
		case slipEsc:
			esc = slipEscEsc
		default:
			continue
		}
		if _, err := s.w.Write(bs[start:i]); err != nil {
			return start, err
		}
		if _, err := s.w.Write([]byte{slipEsc, esc}); err != nil {
			return i, err
		}
		start = i + 1
	}
	if _, err := s.w.Write(bs[start:]); err != nil {
		return start, err
	}
	return len(bs), nil
}

func (s slipEscaper) Reserve(int) {}

// SLIPReader reads OSC packets written by a [SLIP].
//
// A SLIPReader is not safe for concurrent use.
type SLIPReader struct {
	// MaxSize is the size in bytes of the largest packet that
	// ReadPacket accepts. Zero means no limit.
	MaxSize int

	r   *bufio.Reader
	buf []byte
}

// NewSLIPReader returns a SLIPReader that reads from r.
func NewSLIPReader(r io.Reader) *SLIPReader {
	return &SLIPReader{r: bufio.NewReader(r)}
}

// ReadPacket reads and decodes the next packet. Empty frames are
// skipped. It returns io.EOF if the stream ends cleanly between
// packets.
func (s *SLIPReader) ReadPacket() (osc.Packet, error) {
	s.buf = s.buf[:0]
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return nil, s.eof(err)
		}
		switch b {
		case slipEnd:
			if len(s.buf) == 0 {
				continue
			}
			return osc.Decode(s.buf)
		case slipEsc:
			b, err = s.r.ReadByte()
			if err != nil {
				return nil, s.eof(err)
			}
			switch b {
			case slipEscEnd:
				b = slipEnd
			case slipEscEsc:
				b = slipEsc
			default:
				return nil, fmt.Errorf("invalid SLIP escape sequence %02x %02x", slipEsc, b)
			}
		}
		if s.MaxSize > 0 && len(s.buf) >= s.MaxSize {
			if err := s.skipFrame(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("packet exceeds limit of %d bytes: %w", s.MaxSize, ErrPacketTooLarge)
		}
		s.buf = append(s.buf, b)
	}
}

// skipFrame discards input up to and including the next END byte,
// so that the following ReadPacket starts on a frame boundary. Running
// out of input is not an error.
func (s *SLIPReader) skipFrame() error {
	for {
		b, err := s.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		if b == slipEnd {
			return nil
		}
	}
}

func (s *SLIPReader) eof(err error) error {
	if errors.Is(err, io.EOF) && len(s.buf) > 0 {
		return io.ErrUnexpectedEOF
	}
	return err
}

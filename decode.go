package osc

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/danderson/osc/fragments"
)

// MaxDepth is the maximum nesting depth of bundles and arrays that
// [Decode] accepts. A message at the top level is at depth 0, and
// each enclosing bundle or array adds one level.
const MaxDepth = 64

// Decode parses bs as a single OSC packet.
//
// Any output of [Encode] decodes to a packet that is structurally
// equal to the one that was encoded. Decoded blobs don't alias bs.
//
// Decode returns a [ParseError] if bs is not a valid OSC packet,
// including if bundles or arrays are nested more than [MaxDepth]
// levels deep.
//
// A packet that starts with "#bundle" followed by a NUL is always
// decoded as a bundle. A message whose address is exactly "#bundle"
// therefore encodes, but fails to decode.
func Decode(bs []byte) (Packet, error) {
	d := &fragments.Decoder{In: bs}
	p, err := decodePacket(d, 0)
	if err != nil {
		return nil, err
	}
	if d.Remaining() > 0 {
		return nil, parseErr(d.Offset(), "%d trailing bytes after packet", d.Remaining())
	}
	return p, nil
}

const debugDecoders = false

func debugDecoder(msg string, args ...any) {
	if !debugDecoders {
		return
	}
	log.Printf(msg, args...)
}

var bundleHeader = bundleMarker + "\x00"

func decodePacket(d *fragments.Decoder, depth int) (Packet, error) {
	if string(d.Peek(len(bundleHeader))) == bundleHeader {
		return decodeBundle(d, depth)
	}
	return decodeMessage(d, depth)
}

func wrapErr(offset int, err error, what string) error {
	return ParseError{offset, fmt.Errorf("reading %s: %w", what, err)}
}

func decodeMessage(d *fragments.Decoder, depth int) (Packet, error) {
	off := d.Offset()
	addr, err := d.String()
	if err != nil {
		return nil, wrapErr(off, err, "address")
	}
	debugDecoder("message(%q) at offset %d", addr, off)
	if d.Remaining() == 0 {
		// Very old senders omit the type tag string entirely when
		// there are no arguments.
		return Message{Address: addr}, nil
	}

	off = d.Offset()
	tags, err := d.String()
	if err != nil {
		return nil, wrapErr(off, err, "type tags")
	}
	if !strings.HasPrefix(tags, ",") {
		return nil, parseErr(off, "type tag string %q does not start with ','", tags)
	}
	args, _, err := decodeArgs(d, tags[1:], depth, false)
	if err != nil {
		return nil, err
	}
	return Message{Address: addr, Args: args}, nil
}

// decodeArgs decodes arguments described by tags. If inArray is
// true, decoding stops at the first unmatched ']', and the tags
// following it are returned.
func decodeArgs(d *fragments.Decoder, tags string, depth int, inArray bool) ([]Arg, string, error) {
	var args []Arg
	for len(tags) > 0 {
		tag := tags[0]
		tags = tags[1:]
		switch tag {
		case '[':
			if depth+1 > MaxDepth {
				return nil, "", ParseError{d.Offset(), ErrTooDeep}
			}
			elems, rest, err := decodeArgs(d, tags, depth+1, true)
			if err != nil {
				return nil, "", err
			}
			args = append(args, Array(elems))
			tags = rest
		case ']':
			if !inArray {
				return nil, "", parseErr(d.Offset(), "unbalanced ']' in type tags")
			}
			return args, tags, nil
		default:
			arg, err := decodeArg(d, tag)
			if err != nil {
				return nil, "", err
			}
			args = append(args, arg)
		}
	}
	if inArray {
		return nil, "", parseErr(d.Offset(), "unterminated '[' in type tags")
	}
	return args, "", nil
}

func decodeArg(d *fragments.Decoder, tag byte) (Arg, error) {
	off := d.Offset()
	var (
		ret Arg
		err error
	)
	switch tag {
	case 'i':
		var u uint32
		u, err = d.Uint32()
		ret = Int32(int32(u))
	case 'h':
		var u uint64
		u, err = d.Uint64()
		ret = Int64(int64(u))
	case 'f':
		var u uint32
		u, err = d.Uint32()
		ret = Float32(math.Float32frombits(u))
	case 'd':
		var u uint64
		u, err = d.Uint64()
		ret = Float64(math.Float64frombits(u))
	case 'c':
		var u uint32
		u, err = d.Uint32()
		ret = Char(rune(u))
	case 's':
		var s string
		s, err = d.String()
		ret = String(s)
	case 'b':
		var bs []byte
		bs, err = d.Blob()
		ret = Blob(bs)
	case 't':
		ret, err = decodeTimeTag(d)
	case 'm':
		var bs []byte
		bs, err = d.Read(4)
		if err == nil {
			ret = MIDI{bs[0], bs[1], bs[2], bs[3]}
		}
	case 'r':
		var bs []byte
		bs, err = d.Read(4)
		if err == nil {
			ret = Color{bs[0], bs[1], bs[2], bs[3]}
		}
	case 'T':
		ret = Bool(true)
	case 'F':
		ret = Bool(false)
	case 'N':
		ret = Nil{}
	case 'I':
		ret = Infinity{}
	default:
		return nil, parseErr(off, "unknown type tag %q", tag)
	}
	if err != nil {
		return nil, wrapErr(off, err, fmt.Sprintf("%q argument", tag))
	}
	return ret, nil
}

func decodeTimeTag(d *fragments.Decoder) (TimeTag, error) {
	u, err := d.Uint64()
	if err != nil {
		return TimeTag{}, err
	}
	return TimeTag{uint32(u >> 32), uint32(u)}, nil
}

func decodeBundle(d *fragments.Decoder, depth int) (Packet, error) {
	if _, err := d.Read(len(bundleHeader)); err != nil {
		return nil, wrapErr(d.Offset(), err, "bundle header")
	}
	off := d.Offset()
	t, err := decodeTimeTag(d)
	if err != nil {
		return nil, wrapErr(off, err, "bundle time tag")
	}
	debugDecoder("bundle(%d.%d) at offset %d", t.Seconds, t.Fraction, off)

	ret := Bundle{Time: t}
	for d.Remaining() > 0 {
		off := d.Offset()
		if depth+1 > MaxDepth {
			return nil, ParseError{off, ErrTooDeep}
		}
		elem, err := d.Frame()
		if err != nil {
			return nil, wrapErr(off, err, "bundle element")
		}
		p, err := decodePacket(elem, depth+1)
		if err != nil {
			return nil, err
		}
		if elem.Remaining() > 0 {
			return nil, parseErr(elem.Offset(), "%d trailing bytes in bundle element", elem.Remaining())
		}
		ret.Content = append(ret.Content, p)
	}
	return ret, nil
}

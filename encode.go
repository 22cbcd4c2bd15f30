package osc

import (
	"fmt"
	"log"
	"math"

	"github.com/danderson/osc/fragments"
)

// Encode returns the OSC wire encoding of p.
//
// Encode panics if p is nil, contains a nil Packet or Arg, or
// contains a blob or bundle element of 4GiB or more, which cannot be
// represented in the wire format.
//
// Addresses and String arguments are written as-is. If one contains a
// NUL byte, the wire format ends the text there, and the encoded
// packet does not decode.
func Encode(p Packet) []byte {
	return Append(nil, p)
}

// Append appends the OSC wire encoding of p to bs, and returns the
// extended slice. It panics under the same conditions as [Encode].
func Append(bs []byte, p Packet) []byte {
	buf := fragments.NewBuffer(bs)
	if _, err := EncodeInto(p, buf); err != nil {
		panic(fmt.Sprintf("osc: encoding to memory buffer failed: %v", err))
	}
	return buf.Bytes()
}

// EncodeInto writes the OSC wire encoding of p to w, and returns the
// number of bytes written.
//
// Any error returned by w is returned unmodified. On error, w may
// contain a partial encoding of p, and should be reset or discarded.
//
// Bundle elements are length-prefixed. If w implements
// [fragments.Sink], the length prefix is patched in after each
// element is written. Otherwise, each element is measured before
// being written. Use [EncodeTo] to pick the strategy explicitly.
func EncodeInto(p Packet, w fragments.Writer) (int, error) {
	e := fragments.Encoder{Out: w}
	err := EncodeTo(&e, p)
	return e.Len(), err
}

// EncodeTo writes the OSC wire encoding of p to e, and returns the
// first error encountered by e, if any.
func EncodeTo(e *fragments.Encoder, p Packet) error {
	encodePacket(e, p)
	return e.Err()
}

// Size returns the number of bytes in the OSC wire encoding of p.
func Size(p Packet) int {
	return fragments.Measure(func(e *fragments.Encoder) {
		encodePacket(e, p)
	})
}

const debugEncoders = false

func debugEncoder(msg string, args ...any) {
	if !debugEncoders {
		return
	}
	log.Printf(msg, args...)
}

const bundleMarker = "#bundle"

func encodePacket(e *fragments.Encoder, p Packet) {
	switch v := p.(type) {
	case Message:
		encodeMessage(e, v)
	case *Message:
		if v == nil {
			panic("osc: cannot encode nil *Message")
		}
		encodeMessage(e, *v)
	case Bundle:
		encodeBundle(e, v)
	case *Bundle:
		if v == nil {
			panic("osc: cannot encode nil *Bundle")
		}
		encodeBundle(e, *v)
	case nil:
		panic("osc: cannot encode nil Packet")
	default:
		panic(fmt.Sprintf("osc: unhandled Packet type %T", p))
	}
}

func encodeMessage(e *fragments.Encoder, m Message) {
	debugEncoder("message(%q, %d args)", m.Address, len(m.Args))
	e.String(m.Address)

	// The whole type tag string precedes all argument data, so args
	// get walked twice.
	var tagBuf [64]byte
	e.StringBytes(appendTypeTags(append(tagBuf[:0], ','), m.Args))
	for _, arg := range m.Args {
		encodeArg(e, arg)
	}
}

func encodeBundle(e *fragments.Encoder, b Bundle) {
	debugEncoder("bundle(%d.%d, %d elements)", b.Time.Seconds, b.Time.Fraction, len(b.Content))
	e.String(bundleMarker)
	encodeTimeTag(e, b.Time)
	for _, p := range b.Content {
		e.Frame(func(e *fragments.Encoder) {
			encodePacket(e, p)
		})
	}
}

func encodeTimeTag(e *fragments.Encoder, t TimeTag) {
	e.Uint32(t.Seconds)
	e.Uint32(t.Fraction)
}

// encodeArg writes the data bytes of arg. The type tag is written
// separately, by appendTypeTags.
func encodeArg(e *fragments.Encoder, arg Arg) {
	switch v := arg.(type) {
	case Int32:
		e.Uint32(uint32(v))
	case Int64:
		e.Uint64(uint64(v))
	case Float32:
		e.Uint32(math.Float32bits(float32(v)))
	case Float64:
		e.Uint64(math.Float64bits(float64(v)))
	case Char:
		e.Uint32(uint32(v))
	case String:
		e.String(string(v))
	case Blob:
		e.Blob(v)
	case TimeTag:
		encodeTimeTag(e, v)
	case MIDI:
		e.Uint32(pack4(v.Port, v.Status, v.Data1, v.Data2))
	case Color:
		e.Uint32(pack4(v.R, v.G, v.B, v.A))
	case Bool, Nil, Infinity:
		// Carried entirely by the type tag.
	case Array:
		for _, elem := range v {
			encodeArg(e, elem)
		}
	default:
		panic(unhandledArg(arg))
	}
}

func unhandledArg(arg Arg) string {
	if arg == nil {
		return "osc: cannot encode nil Arg, use osc.Nil{} for a null argument"
	}
	return fmt.Sprintf("osc: unhandled Arg type %T", arg)
}

// pack4 returns the uint32 whose big-endian encoding is a, b, c, d.
func pack4(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

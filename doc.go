// Package osc encodes and decodes Open Sound Control packets.
//
// An OSC [Packet] is either a [Message], which carries an address and
// a list of typed arguments, or a [Bundle], which carries a time tag
// and a list of packets. Bundles may be nested.
//
// [Encode] produces the OSC 1.0 binary wire format:
//
//	message = text(address) text("," + type tags) argument-data...
//	bundle  = text("#bundle") timetag (int32 length, packet)...
//
// where text is the UTF-8 bytes of a string, followed by 1 to 4 NUL
// bytes such that the total length is a multiple of 4. All integers
// are big-endian, and every field is padded to a multiple of 4
// bytes.
//
// Arguments encode as follows:
//
//	Int32     i  4 bytes, two's complement
//	Int64     h  8 bytes, two's complement
//	Float32   f  4 bytes, IEEE 754
//	Float64   d  8 bytes, IEEE 754
//	Char      c  4 bytes, the character's code point
//	String    s  text
//	Blob      b  int32 length, then bytes, then 0-3 bytes of padding
//	TimeTag   t  8 bytes, seconds then fraction
//	MIDI      m  4 bytes, port, status, data1, data2
//	Color     r  4 bytes, red, green, blue, alpha
//	Bool      T or F, no data
//	Nil       N, no data
//	Infinity  I, no data
//	Array     [ then element tags then ], element data concatenated
//
// # Writing to other destinations
//
// [Encode] and [Append] produce byte slices. [EncodeInto] writes to
// any [fragments.Writer], for example a network stream. Writers that
// implement [fragments.Sink] get bundle element lengths patched in
// place, other writers get each bundle element measured with
// [fragments.Discard] before it is written. Both produce identical
// bytes.
//
// Encoding is pure computation. Encoding independent packets into
// independent writers is safe from multiple goroutines.
//
// # Decoding
//
// [Decode] parses the wire format back into packets. It is provided
// mainly so that programs can check their output, and for simple
// receivers. Decode does not dispatch messages or match address
// patterns.
package osc

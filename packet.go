package osc

import "time"

// A Packet is the unit of OSC transmission. It is either a [Message]
// or a [Bundle].
type Packet interface {
	isPacket()
}

// Message is an OSC message: an address, and a list of arguments for
// the method at that address.
type Message struct {
	// Address is the OSC address pattern of the message, for example
	// "/mixer/channel/1/gain".
	Address string
	Args    []Arg
}

// Bundle is a time-tagged collection of packets. Bundles may contain
// other bundles.
type Bundle struct {
	Time    TimeTag
	Content []Packet
}

func (Message) isPacket() {}
func (Bundle) isPacket() {}

// TimeTag is a 64-bit fixed point timestamp. Seconds is the integer
// part, and Fraction the fractional part in units of 1/2^32 seconds.
type TimeTag struct {
	Seconds  uint32
	Fraction uint32
}

// Immediately is the special TimeTag that means "as soon as
// possible".
var Immediately = TimeTag{0, 1}

// ntpEpochOffset is the number of seconds between the NTP epoch (1
// January 1900) and the Unix epoch.
const ntpEpochOffset = 2208988800

// FromTime returns the TimeTag for t. Times outside the range of
// TimeTag wrap around.
func FromTime(t time.Time) TimeTag {
	secs := t.Unix() + ntpEpochOffset
	frac := (uint64(t.Nanosecond()) << 32) / uint64(time.Second)
	return TimeTag{uint32(secs), uint32(frac)}
}

// Time returns t as a time.Time, assuming t is in the NTP era that
// began in 1900.
func (t TimeTag) Time() time.Time {
	nanos := (uint64(t.Fraction) * uint64(time.Second)) >> 32
	return time.Unix(int64(t.Seconds)-ntpEpochOffset, int64(nanos)).UTC()
}

// Arg is an argument to an OSC [Message].
//
// The set of argument types is fixed: [Int32], [Int64], [Float32],
// [Float64], [Char], [String], [Blob], [TimeTag], [MIDI], [Color],
// [Bool], [Nil], [Infinity] and [Array].
type Arg interface {
	// TypeTag returns the character that identifies the argument's
	// type in a message's type tag string. Arrays return '['.
	TypeTag() byte

	isArg()
}

type (
	// Int32 is a 32-bit signed integer argument.
	Int32 int32
	// Int64 is a 64-bit signed integer argument.
	Int64 int64
	// Float32 is a 32-bit IEEE 754 floating point argument.
	Float32 float32
	// Float64 is a 64-bit IEEE 754 floating point argument.
	Float64 float64
	// Char is a single Unicode character argument.
	Char rune
	// String is a text argument.
	String string
	// Blob is an arbitrary binary data argument.
	Blob []byte
	// Bool is a true or false argument. Bools have no data bytes, the
	// value is carried by the type tag.
	Bool bool
	// Nil is a null argument.
	Nil struct{}
	// Infinity is an argument representing infinity, or "impulse".
	Infinity struct{}
	// Array is an ordered group of arguments.
	Array []Arg
)

// MIDI is a 4-byte MIDI message argument.
type MIDI struct {
	Port   byte
	Status byte
	Data1  byte
	Data2  byte
}

// Color is a 32-bit RGBA color argument.
type Color struct {
	R, G, B, A byte
}

func (Int32) TypeTag() byte { return 'i' }
func (Int64) TypeTag() byte { return 'h' }
func (Float32) TypeTag() byte { return 'f' }
func (Float64) TypeTag() byte { return 'd' }
func (Char) TypeTag() byte { return 'c' }
func (String) TypeTag() byte { return 's' }
func (Blob) TypeTag() byte { return 'b' }
func (TimeTag) TypeTag() byte { return 't' }
func (MIDI) TypeTag() byte { return 'm' }
func (Color) TypeTag() byte { return 'r' }
func (Nil) TypeTag() byte { return 'N' }
func (Infinity) TypeTag() byte { return 'I' }
func (Array) TypeTag() byte { return '[' }

func (b Bool) TypeTag() byte {
	if b {
		return 'T'
	}
	return 'F'
}

func (Int32) isArg() {}
func (Int64) isArg() {}
func (Float32) isArg() {}
func (Float64) isArg() {}
func (Char) isArg() {}
func (String) isArg() {}
func (Blob) isArg() {}
func (TimeTag) isArg() {}
func (MIDI) isArg() {}
func (Color) isArg() {}
func (Bool) isArg() {}
func (Nil) isArg() {}
func (Infinity) isArg() {}
func (Array) isArg() {}

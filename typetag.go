package osc

import (
	"fmt"
	"strings"
)

// TypeTags returns the type tag string that describes args, as it
// appears in an encoded message: a comma followed by one tag per
// argument, with arrays enclosed in brackets. The returned string
// does not include the NUL padding.
func TypeTags(args []Arg) string {
	return string(appendTypeTags([]byte{','}, args))
}

func appendTypeTags(bs []byte, args []Arg) []byte {
	for _, arg := range args {
		switch v := arg.(type) {
		case Array:
			bs = append(bs, '[')
			bs = appendTypeTags(bs, v)
			bs = append(bs, ']')
		case nil:
			panic(unhandledArg(arg))
		default:
			bs = append(bs, arg.TypeTag())
		}
	}
	return bs
}

// String returns a human-readable rendering of the message, in the
// style of oscdump: the address, the type tags, then the arguments.
func (m Message) String() string {
	var ret strings.Builder
	ret.WriteString(m.Address)
	ret.WriteByte(' ')
	ret.WriteString(TypeTags(m.Args))
	for _, arg := range m.Args {
		ret.WriteByte(' ')
		writeArg(&ret, arg)
	}
	return ret.String()
}

func writeArg(w *strings.Builder, arg Arg) {
	switch v := arg.(type) {
	case String:
		fmt.Fprintf(w, "%q", string(v))
	case Char:
		fmt.Fprintf(w, "%q", rune(v))
	case Blob:
		fmt.Fprintf(w, "[%d byte blob]", len(v))
	case TimeTag:
		fmt.Fprintf(w, "%08x.%08x", v.Seconds, v.Fraction)
	case MIDI:
		fmt.Fprintf(w, "MIDI{%02x %02x %02x %02x}", v.Port, v.Status, v.Data1, v.Data2)
	case Color:
		fmt.Fprintf(w, "#%02x%02x%02x%02x", v.R, v.G, v.B, v.A)
	case Nil:
		w.WriteString("nil")
	case Infinity:
		w.WriteString("inf")
	case Array:
		w.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				w.WriteByte(' ')
			}
			writeArg(w, elem)
		}
		w.WriteByte(']')
	default:
		fmt.Fprint(w, arg)
	}
}

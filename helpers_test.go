package osc_test

import (
	"encoding/binary"
	"math"

	"github.com/danderson/osc"
)

// samplePackets exercises every argument type, and bundles nested in
// various ways.
var samplePackets = []struct {
	name string
	p    osc.Packet
}{
	{"empty message", osc.Message{Address: "/OSC/Message"}},
	{"string arg", osc.Message{
		Address: "/greet/me",
		Args:    []osc.Arg{osc.String("hi!")},
	}},
	{"all types", osc.Message{
		Address: "/all/the/things",
		Args: []osc.Arg{
			osc.Int32(-42),
			osc.Int64(math.MaxInt64),
			osc.Float32(3.25),
			osc.Float64(-1.0 / 3),
			osc.Char('λ'),
			osc.String(""),
			osc.String("four"),
			osc.Blob{},
			osc.Blob{1, 2, 3, 4, 5},
			osc.TimeTag{Seconds: 0xdeadbeef, Fraction: 0x80000000},
			osc.MIDI{Port: 1, Status: 0x90, Data1: 60, Data2: 127},
			osc.Color{R: 0xff, G: 0x80, B: 0, A: 0x40},
			osc.Bool(true),
			osc.Bool(false),
			osc.Nil{},
			osc.Infinity{},
		},
	}},
	{"arrays", osc.Message{
		Address: "/arrays",
		Args: []osc.Arg{
			osc.Array{},
			osc.Array{osc.Int32(42), osc.Array{osc.Float64(1.23), osc.Float64(3.21)}, osc.String("x")},
			osc.Array{osc.Array{osc.Array{osc.Nil{}}}, osc.Bool(true)},
		},
	}},
	{"empty bundle", osc.Bundle{Time: osc.Immediately}},
	{"bundle", osc.Bundle{
		Time: osc.TimeTag{Seconds: 1, Fraction: 2},
		Content: []osc.Packet{
			osc.Message{Address: "/a", Args: []osc.Arg{osc.Int32(1)}},
			osc.Message{Address: "/bb", Args: []osc.Arg{osc.Blob{9, 9, 9}}},
		},
	}},
	{"nested bundles", osc.Bundle{
		Time: osc.Immediately,
		Content: []osc.Packet{
			osc.Bundle{
				Time: osc.TimeTag{Seconds: 3},
				Content: []osc.Packet{
					osc.Message{Address: "/deep", Args: []osc.Arg{osc.String("down")}},
					osc.Bundle{},
				},
			},
			osc.Message{Address: "/shallow"},
			osc.Bundle{
				Content: []osc.Packet{
					osc.Message{Address: "/x", Args: []osc.Arg{osc.Array{osc.Int64(-1)}}},
				},
			},
		},
	}},
}

// text returns s encoded as OSC text.
func text(s string) []byte {
	ret := []byte(s)
	ret = append(ret, 0)
	for len(ret)%4 != 0 {
		ret = append(ret, 0)
	}
	return ret
}

func cat(parts ...[]byte) []byte {
	var ret []byte
	for _, p := range parts {
		ret = append(ret, p...)
	}
	return ret
}

func u32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func u64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// nestArrays returns a message containing depth nested arrays.
func nestArrays(depth int) osc.Message {
	arg := osc.Array{osc.Int32(1)}
	for range depth - 1 {
		arg = osc.Array{arg}
	}
	return osc.Message{Address: "/nested", Args: []osc.Arg{arg}}
}

// nestBundles returns depth nested bundles containing a message.
func nestBundles(depth int) osc.Packet {
	var ret osc.Packet = osc.Message{Address: "/nested"}
	for range depth {
		ret = osc.Bundle{Content: []osc.Packet{ret}}
	}
	return ret
}

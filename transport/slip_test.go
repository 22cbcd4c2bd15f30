package transport_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danderson/osc"
	"github.com/danderson/osc/transport"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSLIP(t *testing.T) {
	var buf bytes.Buffer
	s := transport.NewSLIP(&buf)
	for _, p := range packets {
		if err := s.WritePacket(p); err != nil {
			t.Fatalf("WritePacket: %v", err)
		}
	}
	if testing.Verbose() {
		t.Logf("SLIP stream: % x", buf.Bytes())
	}

	r := transport.NewSLIPReader(&buf)
	for i, want := range packets {
		got, err := r.ReadPacket()
		if err != nil {
			t.Fatalf("ReadPacket %d: %v", i, err)
		}
		if diff := cmp.Diff(got, want, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("packet %d wrong (-got+want):\n%s", i, diff)
		}
	}
	if _, err := r.ReadPacket(); !errors.Is(err, io.EOF) {
		t.Fatalf("ReadPacket at end of stream got err %v, want EOF", err)
	}
}

func TestSLIPEscaping(t *testing.T) {
	m := osc.Message{Address: "/e", Args: []osc.Arg{osc.MIDI{Port: 0xc0, Status: 0xdb, Data1: 1, Data2: 2}}}
	var buf bytes.Buffer
	if err := transport.NewSLIP(&buf).WritePacket(m); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	want := []byte{
		0xc0,
		'/', 'e', 0x00, 0x00,
		',', 'm', 0x00, 0x00,
		0xdb, 0xdc, // escaped END
		0xdb, 0xdd, // escaped ESC
		0x01, 0x02,
		0xc0,
	}
	if got := buf.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("wrong SLIP encoding:\n  got: % x\n want: % x", got, want)
	}
}

func TestSLIPReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"truncated", []byte{0xc0, '/', 'a'}, io.ErrUnexpectedEOF},
		{"truncated escape", []byte{0xc0, '/', 0xdb}, io.ErrUnexpectedEOF},
		{"only ENDs", []byte{0xc0, 0xc0, 0xc0}, io.EOF},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := transport.NewSLIPReader(bytes.NewReader(tc.in))
			if _, err := r.ReadPacket(); !errors.Is(err, tc.want) {
				t.Fatalf("ReadPacket got err %v, want %v", err, tc.want)
			}
		})
	}

	r := transport.NewSLIPReader(bytes.NewReader([]byte{0xc0, 0xdb, 0x01, 0xc0}))
	if _, err := r.ReadPacket(); err == nil {
		t.Fatal("ReadPacket accepted invalid escape sequence")
	}

	r = transport.NewSLIPReader(bytes.NewReader([]byte{0xc0, 1, 2, 3, 4, 5, 0xc0}))
	r.MaxSize = 4
	if _, err := r.ReadPacket(); !errors.Is(err, transport.ErrPacketTooLarge) {
		t.Fatalf("ReadPacket of oversized packet got err %v, want %v", err, transport.ErrPacketTooLarge)
	}
}

func TestSLIPReaderRecoversAfterOversized(t *testing.T) {
	big := osc.Message{Address: "/big", Args: []osc.Arg{osc.Int32(1), osc.Blob(make([]byte, 64))}}
	small := osc.Message{Address: "/s", Args: []osc.Arg{osc.Int32(2)}}

	var buf bytes.Buffer
	s := transport.NewSLIP(&buf)
	for _, p := range []osc.Packet{big, small, big} {
		if err := s.WritePacket(p); err != nil {
			t.Fatalf("WritePacket: %v", err)
		}
	}

	r := transport.NewSLIPReader(&buf)
	r.MaxSize = osc.Size(small)
	if _, err := r.ReadPacket(); !errors.Is(err, transport.ErrPacketTooLarge) {
		t.Fatalf("ReadPacket of oversized packet got err %v, want %v", err, transport.ErrPacketTooLarge)
	}
	got, err := r.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket after oversized packet: %v", err)
	}
	if diff := cmp.Diff(got, osc.Packet(small)); diff != "" {
		t.Fatalf("wrong packet after oversized packet (-got+want):\n%s", diff)
	}
	if _, err := r.ReadPacket(); !errors.Is(err, transport.ErrPacketTooLarge) {
		t.Fatalf("ReadPacket of final oversized packet got err %v, want %v", err, transport.ErrPacketTooLarge)
	}
	if _, err := r.ReadPacket(); !errors.Is(err, io.EOF) {
		t.Fatalf("ReadPacket at end of stream got err %v, want EOF", err)
	}
}

package fragments_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danderson/osc/fragments"
)

// appendOnly hides the Sink methods of a Buffer.
type appendOnly struct {
	b *fragments.Buffer
}

func (a appendOnly) Write(bs []byte) (int, error) { return a.b.Write(bs) }
func (a appendOnly) Reserve(n int) { a.b.Reserve(n) }

func TestPad(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{1, 4},
		{2, 4},
		{3, 4},
		{4, 4},
		{5, 8},
		{6, 8},
		{7, 8},
		{8, 8},
		{10, 12},
	}
	for _, tc := range tests {
		if got := fragments.Pad(tc.in); got != tc.want {
			t.Errorf("Pad(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestEncoder(t *testing.T) {
	tests := []struct {
		name string
		in   func(*fragments.Encoder)
		want []byte
	}{
		{
			"raw bytes",
			func(e *fragments.Encoder) {
				e.Write([]byte{1, 2, 3})
			},
			[]byte{0x01, 0x02, 0x03},
		},

		{
			"blob",
			func(e *fragments.Encoder) {
				e.Blob([]byte{1, 2, 3})
			},
			[]byte{
				0x00, 0x00, 0x00, 0x03, // length
				0x01, 0x02, 0x03, // val
				0x00, // pad
			},
		},

		{
			"aligned blob",
			func(e *fragments.Encoder) {
				e.Blob([]byte{1, 2, 3, 4})
			},
			[]byte{
				0x00, 0x00, 0x00, 0x04, // length
				0x01, 0x02, 0x03, 0x04, // val
			},
		},

		{
			"empty blob",
			func(e *fragments.Encoder) {
				e.Blob(nil)
			},
			[]byte{
				0x00, 0x00, 0x00, 0x00, // length
			},
		},

		{
			"string",
			func(e *fragments.Encoder) {
				e.String("foo")
			},
			[]byte{
				0x66, 0x6f, 0x6f, // val
				0x00, // terminator
			},
		},

		{
			"aligned string",
			func(e *fragments.Encoder) {
				e.String("abcd")
			},
			[]byte{
				0x61, 0x62, 0x63, 0x64, // val
				0x00, 0x00, 0x00, 0x00, // terminator + pad
			},
		},

		{
			"empty string",
			func(e *fragments.Encoder) {
				e.String("")
			},
			[]byte{0x00, 0x00, 0x00, 0x00},
		},

		{
			"string bytes",
			func(e *fragments.Encoder) {
				e.StringBytes([]byte(",iis"))
			},
			[]byte{
				0x2c, 0x69, 0x69, 0x73,
				0x00, 0x00, 0x00, 0x00,
			},
		},

		{
			"uints",
			func(e *fragments.Encoder) {
				e.Uint32(42)
				e.Uint64(66)
			},
			[]byte{
				0x00, 0x00, 0x00, 0x2a,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x42,
			},
		},

		{
			"frame",
			func(e *fragments.Encoder) {
				e.Frame(func(e *fragments.Encoder) {
					e.Uint32(1)
					e.String("hi")
				})
			},
			[]byte{
				0x00, 0x00, 0x00, 0x08, // length
				0x00, 0x00, 0x00, 0x01,
				0x68, 0x69, 0x00, 0x00,
			},
		},

		{
			"empty frame",
			func(e *fragments.Encoder) {
				e.Frame(func(e *fragments.Encoder) {})
			},
			[]byte{
				0x00, 0x00, 0x00, 0x00, // length
			},
		},

		{
			"nested frames followed by other stuff",
			func(e *fragments.Encoder) {
				e.Frame(func(e *fragments.Encoder) {
					e.Uint32(1)
					e.Frame(func(e *fragments.Encoder) {
						e.Uint32(2)
					})
				})
				e.Uint32(3)
			},
			[]byte{
				0x00, 0x00, 0x00, 0x0c, // length (outer)
				0x00, 0x00, 0x00, 0x01,
				0x00, 0x00, 0x00, 0x04, // length (inner)
				0x00, 0x00, 0x00, 0x02,
				0x00, 0x00, 0x00, 0x03,
			},
		},
	}

	framings := []fragments.Framing{fragments.FrameAuto, fragments.FramePatch, fragments.FrameMeasure}
	for _, tc := range tests {
		for _, framing := range framings {
			t.Run(tc.name+"/"+framing.String(), func(t *testing.T) {
				var buf fragments.Buffer
				e := fragments.Encoder{
					Out:     &buf,
					Framing: framing,
				}
				tc.in(&e)
				if err := e.Err(); err != nil {
					t.Fatalf("encoding failed: %v", err)
				}
				if got := buf.Bytes(); !bytes.Equal(got, tc.want) {
					t.Errorf("incorrect encode:\n  got: % x\n want: % x", got, tc.want)
				} else if testing.Verbose() {
					t.Logf("encoder got: % x", got)
				}
				if e.Len() != len(tc.want) {
					t.Errorf("Len() = %d, want %d", e.Len(), len(tc.want))
				}
				if got := fragments.Measure(tc.in); got != len(tc.want) {
					t.Errorf("Measure() = %d, want %d", got, len(tc.want))
				}
			})
		}
	}
}

func TestEncoderAppendOnly(t *testing.T) {
	body := func(e *fragments.Encoder) {
		e.Frame(func(e *fragments.Encoder) {
			e.String("/a")
			e.Frame(func(e *fragments.Encoder) {
				e.Blob([]byte{1})
			})
		})
	}

	var want fragments.Buffer
	e := fragments.Encoder{Out: &want}
	body(&e)
	if err := e.Err(); err != nil {
		t.Fatalf("encoding to buffer: %v", err)
	}

	var got fragments.Buffer
	e = fragments.Encoder{Out: appendOnly{&got}}
	body(&e)
	if err := e.Err(); err != nil {
		t.Fatalf("encoding to append-only writer: %v", err)
	}
	if !bytes.Equal(got.Bytes(), want.Bytes()) {
		t.Fatalf("append-only encoding differs:\n  got: % x\n want: % x", got.Bytes(), want.Bytes())
	}

	e = fragments.Encoder{Out: appendOnly{&got}, Framing: fragments.FramePatch}
	body(&e)
	if err := e.Err(); !errors.Is(err, fragments.ErrNotPatchable) {
		t.Fatalf("FramePatch on append-only writer got err %v, want %v", err, fragments.ErrNotPatchable)
	}
}

type failWriter struct {
	n   int
	err error
}

func (f *failWriter) Write(bs []byte) (int, error) {
	if len(bs) > f.n {
		return 0, f.err
	}
	f.n -= len(bs)
	return len(bs), nil
}

func (f *failWriter) Reserve(int) {}

type shortWriter struct{}

func (shortWriter) Write(bs []byte) (int, error) { return len(bs) - 1, nil }
func (shortWriter) Reserve(int) {}

func TestEncoderErrors(t *testing.T) {
	boom := errors.New("boom")
	w := &failWriter{n: 8, err: boom}
	e := fragments.Encoder{Out: w}
	e.Uint32(1)
	e.Uint32(2)
	if err := e.Err(); err != nil {
		t.Fatalf("unexpected error before limit: %v", err)
	}
	e.Uint32(3)
	if err := e.Err(); !errors.Is(err, boom) {
		t.Fatalf("got err %v, want %v", err, boom)
	}
	e.String("more")
	if got := e.Len(); got != 8 {
		t.Fatalf("Len() after error = %d, want 8", got)
	}

	e = fragments.Encoder{Out: shortWriter{}}
	e.Uint32(1)
	if err := e.Err(); err == nil {
		t.Fatal("short write did not produce an error")
	}
}

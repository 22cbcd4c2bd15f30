package osctest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danderson/osc"
	"github.com/danderson/osc/osctest"
	"github.com/danderson/osc/transport"
	"github.com/google/go-cmp/cmp"
)

func TestReceiver(t *testing.T) {
	r := osctest.NewReceiver(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	d, err := transport.DialUDP(ctx, r.Addr().String())
	if err != nil {
		t.Fatalf("dialing receiver: %v", err)
	}
	defer d.Close()

	want := osc.Message{
		Address: "/test/ping",
		Args:    []osc.Arg{osc.Int32(1), osc.String("pong")},
	}
	if err := d.WritePacket(want); err != nil {
		t.Fatalf("sending packet: %v", err)
	}
	got := r.MustNext(t)
	if diff := cmp.Diff(got, osc.Packet(want)); diff != "" {
		t.Fatalf("received wrong packet (-got+want):\n%s", diff)
	}
}

func TestFailSink(t *testing.T) {
	f := &osctest.FailSink{Limit: 6}
	if _, err := f.Write([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("write within limit failed: %v", err)
	}
	if _, err := f.Allocate(4); !errors.Is(err, osctest.ErrInjected) {
		t.Fatalf("Allocate past limit got err %v, want %v", err, osctest.ErrInjected)
	}

	boom := errors.New("boom")
	w := &osctest.FailWriter{Limit: 2, Err: boom}
	if _, err := w.Write([]byte{1, 2, 3}); !errors.Is(err, boom) {
		t.Fatalf("Write past limit got err %v, want %v", err, boom)
	}
}

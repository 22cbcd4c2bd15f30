package transport_test

import (
	"context"
	"testing"
	"time"

	"github.com/danderson/osc/transport"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestUDP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := transport.ListenUDP(ctx, "127.0.0.1:0", transport.ListenOptions{})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer conn.Close()
	deadline, _ := ctx.Deadline()
	conn.SetReadDeadline(deadline)

	d, err := transport.DialUDP(ctx, conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("DialUDP: %v", err)
	}
	defer d.Close()

	buf := make([]byte, 1500)
	for i, want := range packets {
		if err := d.WritePacket(want); err != nil {
			t.Fatalf("WritePacket %d: %v", i, err)
		}
		got, _, err := transport.ReadPacket(conn, buf)
		if err != nil {
			t.Fatalf("ReadPacket %d: %v", i, err)
		}
		if diff := cmp.Diff(got, want, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("packet %d wrong (-got+want):\n%s", i, diff)
		}
	}
}

func TestListenReusePort(t *testing.T) {
	ctx := context.Background()
	first, err := transport.ListenUDP(ctx, "127.0.0.1:0", transport.ListenOptions{ReusePort: true})
	if err != nil {
		t.Skipf("SO_REUSEPORT unavailable: %v", err)
	}
	defer first.Close()
	second, err := transport.ListenUDP(ctx, first.LocalAddr().String(), transport.ListenOptions{ReusePort: true})
	if err != nil {
		t.Fatalf("second listener on %s: %v", first.LocalAddr(), err)
	}
	second.Close()
}

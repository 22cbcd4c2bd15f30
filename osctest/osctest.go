// Package osctest provides helpers for testing code that sends OSC
// packets.
package osctest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"testing"
	"time"

	"github.com/danderson/osc"
	"github.com/danderson/osc/fragments"
	"github.com/danderson/osc/transport"
)

// Received is a datagram received by a [Receiver].
type Received struct {
	// From is the sender's address.
	From net.Addr
	// Packet is the decoded packet, or nil if Err is set.
	Packet osc.Packet
	// Err is the error from decoding the datagram, if any.
	Err error
}

// Receiver is a UDP socket on the loopback interface that decodes
// every datagram it receives.
type Receiver struct {
	conn    net.PacketConn
	t       testing.TB
	packets chan Received

	stop    chan struct{}
	stopped chan struct{}
}

// NewReceiver starts a Receiver dedicated to the calling test. It is
// shut down when the test completes.
//
// If testing.Verbose is true, the receiver logs every packet with
// t.Logf.
func NewReceiver(t testing.TB) *Receiver {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, err := transport.ListenUDP(ctx, "127.0.0.1:0", transport.ListenOptions{})
	if err != nil {
		t.Fatalf("starting UDP receiver: %v", err)
	}
	ret := &Receiver{
		conn:    conn,
		t:       t,
		packets: make(chan Received, 16),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go ret.run()
	t.Cleanup(ret.close)
	return ret
}

func (r *Receiver) run() {
	defer close(r.stopped)
	buf := make([]byte, 65536)
	for {
		p, from, err := transport.ReadPacket(r.conn, buf)
		if from == nil && err != nil {
			select {
			case <-r.stop:
			default:
				r.t.Errorf("UDP receiver stopped prematurely: %v", err)
			}
			return
		}
		if testing.Verbose() {
			if err != nil {
				r.t.Logf("received bad packet from %s: %v", from, err)
			} else {
				r.t.Logf("received packet from %s: %v", from, p)
			}
		}
		select {
		case r.packets <- Received{from, p, err}:
		case <-r.stop:
			return
		}
	}
}

func (r *Receiver) close() {
	close(r.stop)
	r.conn.Close()
	select {
	case <-r.stopped:
	case <-time.After(10 * time.Second):
		log.Print("timed out waiting for UDP receiver to stop")
	}
}

// Addr returns the address of the receiver's UDP socket.
func (r *Receiver) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// Next returns the next datagram received.
func (r *Receiver) Next(ctx context.Context) (Received, error) {
	select {
	case rcv := <-r.packets:
		return rcv, nil
	case <-ctx.Done():
		return Received{}, ctx.Err()
	}
}

// MustNext returns the next packet received. It causes an immediate
// test failure with t.Fatal if no valid packet arrives within 10
// seconds.
func (r *Receiver) MustNext(t testing.TB) osc.Packet {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rcv, err := r.Next(ctx)
	if err != nil {
		t.Fatalf("waiting for packet: %v", err)
	}
	if rcv.Err != nil {
		t.Fatalf("received invalid packet: %v", rcv.Err)
	}
	return rcv.Packet
}

// ErrInjected is the error returned by [FailSink] and [FailWriter]
// when no other error is configured.
var ErrInjected = errors.New("injected write failure")

// FailSink is a [fragments.Sink] that stores output in memory like
// [fragments.Buffer], but fails once more than Limit bytes have been
// written.
type FailSink struct {
	// Limit is the number of bytes the sink accepts before failing.
	Limit int
	// Err is the error to fail with. If nil, ErrInjected is used.
	Err error

	buf fragments.Buffer
}

// Bytes returns the bytes written so far.
func (f *FailSink) Bytes() []byte { return f.buf.Bytes() }

func (f *FailSink) check(n int) error {
	if f.buf.Len()+n <= f.Limit {
		return nil
	}
	err := f.Err
	if err == nil {
		err = ErrInjected
	}
	return fmt.Errorf("writing %d bytes at offset %d: %w", n, f.buf.Len(), err)
}

func (f *FailSink) Write(bs []byte) (int, error) {
	if err := f.check(len(bs)); err != nil {
		return 0, err
	}
	return f.buf.Write(bs)
}

func (f *FailSink) Reserve(n int) {}

func (f *FailSink) Allocate(n int) (fragments.Placeholder, error) {
	if err := f.check(n); err != nil {
		return fragments.Placeholder{}, err
	}
	return f.buf.Allocate(n)
}

func (f *FailSink) Rewrite(p fragments.Placeholder, bs []byte) error {
	return f.buf.Rewrite(p, bs)
}

// FailWriter is like [FailSink], but is append-only: it does not
// implement [fragments.Sink].
type FailWriter struct {
	// Limit is the number of bytes the writer accepts before failing.
	Limit int
	// Err is the error to fail with. If nil, ErrInjected is used.
	Err error

	sink FailSink
}

// Bytes returns the bytes written so far.
func (f *FailWriter) Bytes() []byte { return f.sink.Bytes() }

func (f *FailWriter) Write(bs []byte) (int, error) {
	f.sink.Limit, f.sink.Err = f.Limit, f.Err
	return f.sink.Write(bs)
}

func (f *FailWriter) Reserve(n int) {}

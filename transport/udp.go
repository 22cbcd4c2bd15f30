package transport

import (
	"context"
	"net"

	"github.com/danderson/osc"
	"github.com/danderson/osc/fragments"
)

// ListenOptions configures [ListenUDP].
type ListenOptions struct {
	// ReusePort sets SO_REUSEPORT on the socket, so that several
	// programs on the same host can receive packets sent to the same
	// port. Not supported on all platforms.
	ReusePort bool
}

// ListenUDP listens for OSC datagrams on the given UDP address.
func ListenUDP(ctx context.Context, addr string, opts ListenOptions) (net.PacketConn, error) {
	var lc net.ListenConfig
	if opts.ReusePort {
		lc.Control = reusePort
	}
	return lc.ListenPacket(ctx, "udp", addr)
}

// Datagram sends OSC packets over a connected datagram socket, one
// packet per datagram.
//
// A Datagram is not safe for concurrent use.
type Datagram struct {
	conn net.Conn
	buf  fragments.Buffer
}

// DialUDP returns a Datagram that sends packets to addr.
func DialUDP(ctx context.Context, addr string) (*Datagram, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, err
	}
	return NewDatagram(conn), nil
}

// NewDatagram returns a Datagram that sends packets on conn.
func NewDatagram(conn net.Conn) *Datagram {
	return &Datagram{conn: conn}
}

// WritePacket sends p as a single datagram.
func (d *Datagram) WritePacket(p osc.Packet) error {
	d.buf.Reset()
	if _, err := osc.EncodeInto(p, &d.buf); err != nil {
		return err
	}
	_, err := d.conn.Write(d.buf.Bytes())
	return err
}

// Close closes the underlying connection.
func (d *Datagram) Close() error {
	return d.conn.Close()
}

// ReadPacket reads and decodes one datagram from conn, using buf to
// receive it. buf should be large enough for the largest expected
// datagram, excess bytes are silently truncated by the OS.
func ReadPacket(conn net.PacketConn, buf []byte) (osc.Packet, net.Addr, error) {
	n, from, err := conn.ReadFrom(buf)
	if err != nil {
		return nil, nil, err
	}
	p, err := osc.Decode(buf[:n])
	if err != nil {
		return nil, from, err
	}
	return p, from, nil
}

package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/mds/mapset"
	"github.com/danderson/osc"
	"github.com/danderson/osc/fragments"
	"github.com/danderson/osc/transport"
	"github.com/kr/pretty"
)

var packetArgs struct {
	At string `flag:"at,Wrap the message in a bundle with this time tag (now, immediately, or SECS.FRAC)"`
}

var encodeArgs struct {
	Raw     bool   `flag:"raw,Write raw packet bytes instead of a hex dump"`
	Framing string `flag:"framing,default=auto,Bundle framing strategy (auto, patch, measure)"`
}

var sendArgs struct {
	TCP  bool `flag:"tcp,Send over TCP with length-prefix framing"`
	SLIP bool `flag:"slip,Send over TCP with SLIP framing"`
}

var listenArgs struct {
	ReusePort bool   `flag:"reuseport,Allow other programs to listen on the same port"`
	Only      string `flag:"only,Comma-separated list of addresses to print, others are ignored"`
	MaxSize   int    `flag:"max-size,default=65536,Largest datagram to receive"`
}

const argsHelp = `Arguments are written as tag:value:
  i:42         int32
  h:42         int64
  f:1.5        float32
  d:1.5        float64
  c:x          char
  s:text       string
  b:deadbeef   blob, in hex
  t:SECS.FRAC  time tag, or t:now, t:immediately
  m:1,2,3,4    MIDI message (port, status, data1, data2)
  r:ff0000ff   RGBA color
  T F N I      true, false, nil, infinity
  [ ... ]      array`

func main() {
	root := &command.C{
		Name:     "osc",
		Usage:    "command args...",
		Help:     "Encode, decode, send and receive Open Sound Control packets.",
		Commands: []*command.C{
			{
				Name:     "encode",
				Usage:    "encode address [args...]",
				Help:     "Encode a message and print it.\n\n" + argsHelp,
				SetFlags: command.Flags(flax.MustBind, &packetArgs, &encodeArgs),
				Run:      command.Adapt(runEncode),
			},
			{
				Name:  "decode",
				Usage: "decode [hex...]",
				Help: `Decode a packet and print it.

With arguments, the packet is read from the concatenated hex
arguments. Otherwise, raw packet bytes are read from stdin.`,
				Run: runDecode,
			},
			{
				Name:     "size",
				Usage:    "size address [args...]",
				Help:     "Print the encoded size of a message.\n\n" + argsHelp,
				SetFlags: command.Flags(flax.MustBind, &packetArgs),
				Run:      command.Adapt(runSize),
			},
			{
				Name:     "send",
				Usage:    "send host:port address [args...]",
				Help:     "Send a message, over UDP by default.\n\n" + argsHelp,
				SetFlags: command.Flags(flax.MustBind, &packetArgs, &sendArgs),
				Run:      command.Adapt(runSend),
			},
			{
				Name:     "listen",
				Usage:    "listen host:port",
				Help:     "Listen for UDP packets and print them.",
				SetFlags: command.Flags(flax.MustBind, &listenArgs),
				Run:      command.Adapt(runListen),
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	env := root.NewEnv(nil).SetContext(ctx)
	command.RunOrFail(env, os.Args[1:])
}

// buildPacket returns the packet described by the command line.
func buildPacket(address string, words []string) (osc.Packet, error) {
	args, err := parseArgs(words)
	if err != nil {
		return nil, err
	}
	msg := osc.Message{Address: address, Args: args}
	if packetArgs.At == "" {
		return msg, nil
	}
	at, err := parseTimeTag(packetArgs.At)
	if err != nil {
		return nil, fmt.Errorf("parsing --at: %w", err)
	}
	return osc.Bundle{Time: at, Content: []osc.Packet{msg}}, nil
}

func parseFraming(s string) (fragments.Framing, error) {
	for _, f := range []fragments.Framing{fragments.FrameAuto, fragments.FramePatch, fragments.FrameMeasure} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown framing %q", s)
}

func runEncode(env *command.Env, address string, rest ...string) error {
	p, err := buildPacket(address, rest)
	if err != nil {
		return err
	}
	framing, err := parseFraming(encodeArgs.Framing)
	if err != nil {
		return env.Usagef("%v", err)
	}

	var buf fragments.Buffer
	e := fragments.Encoder{Out: &buf, Framing: framing}
	if encodeArgs.Raw {
		e.Out = transport.AppendOnly(os.Stdout)
	}
	if err := osc.EncodeTo(&e, p); err != nil {
		return err
	}
	if !encodeArgs.Raw {
		fmt.Print(hex.Dump(buf.Bytes()))
	}
	return nil
}

func runDecode(env *command.Env) error {
	var (
		bs  []byte
		err error
	)
	if len(env.Args) > 0 {
		bs, err = hex.DecodeString(strings.Join(env.Args, ""))
	} else {
		bs, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}
	p, err := osc.Decode(bs)
	if err != nil {
		return err
	}
	printPacket(p, 0)
	fmt.Printf("\n%# v\n", pretty.Formatter(p))
	return nil
}

func runSize(env *command.Env, address string, rest ...string) error {
	p, err := buildPacket(address, rest)
	if err != nil {
		return err
	}
	fmt.Println(osc.Size(p))
	return nil
}

type packetWriter interface {
	WritePacket(osc.Packet) error
}

func runSend(env *command.Env, dest, address string, rest ...string) error {
	p, err := buildPacket(address, rest)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(env.Context(), 10*time.Second)
	defer cancel()

	var w packetWriter
	if sendArgs.TCP || sendArgs.SLIP {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", dest)
		if err != nil {
			return err
		}
		defer conn.Close()
		if sendArgs.SLIP {
			w = transport.NewSLIP(conn)
		} else {
			w = transport.NewStream(conn)
		}
	} else {
		d, err := transport.DialUDP(ctx, dest)
		if err != nil {
			return err
		}
		defer d.Close()
		w = d
	}

	if err := w.WritePacket(p); err != nil {
		return fmt.Errorf("sending packet: %w", err)
	}
	return nil
}

func runListen(env *command.Env, addr string) error {
	ctx := env.Context()
	conn, err := transport.ListenUDP(ctx, addr, transport.ListenOptions{ReusePort: listenArgs.ReusePort})
	if err != nil {
		return err
	}
	defer conn.Close()
	context.AfterFunc(ctx, func() { conn.Close() })

	only := mapset.New[string]()
	if listenArgs.Only != "" {
		only.Add(strings.Split(listenArgs.Only, ",")...)
	}

	fmt.Printf("listening on %s\n", conn.LocalAddr())
	buf := make([]byte, listenArgs.MaxSize)
	for {
		p, from, err := transport.ReadPacket(conn, buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if from == nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "bad packet from %s: %v\n", from, err)
			continue
		}
		if p = filterPacket(p, only); p == nil {
			continue
		}
		fmt.Printf("from %s:\n", from)
		printPacket(p, 1)
	}
}

// filterPacket returns p with all messages whose address is not in
// only removed, or nil if nothing remains. An empty only matches
// everything.
func filterPacket(p osc.Packet, only mapset.Set[string]) osc.Packet {
	if only.IsEmpty() {
		return p
	}
	switch v := p.(type) {
	case osc.Message:
		if only.Has(v.Address) {
			return v
		}
		return nil
	case osc.Bundle:
		var content []osc.Packet
		for _, c := range v.Content {
			if c = filterPacket(c, only); c != nil {
				content = append(content, c)
			}
		}
		if len(content) == 0 {
			return nil
		}
		return osc.Bundle{Time: v.Time, Content: content}
	default:
		panic(fmt.Sprintf("unknown packet type %T", p))
	}
}

// printPacket writes a human readable rendition of p to stdout.
func printPacket(p osc.Packet, indent int) {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	writePacket(w, p, indent)
}

func writePacket(w io.Writer, p osc.Packet, indent int) {
	prefix := strings.Repeat("  ", indent)
	switch v := p.(type) {
	case osc.Message:
		fmt.Fprintf(w, "%s%s\n", prefix, v)
	case osc.Bundle:
		if v.Time == osc.Immediately {
			fmt.Fprintf(w, "%sbundle immediately:\n", prefix)
		} else {
			fmt.Fprintf(w, "%sbundle at %s:\n", prefix, v.Time.Time().Format(time.RFC3339Nano))
		}
		for _, c := range v.Content {
			writePacket(w, c, indent+1)
		}
	default:
		panic(fmt.Sprintf("unknown packet type %T", p))
	}
}

// Package transport sends and receives OSC packets over byte streams
// and UDP.
//
// Stream and SLIP write packets straight to an [io.Writer] without
// buffering whole packets first, using the measure-then-write
// framing of [fragments.Encoder]. Datagram encodes each packet into
// a reused buffer, and sends it as a single UDP datagram.
package transport

// Package fragments provides low-level encoding and decoding helpers
// to construct and parse OSC packets.
//
// The provided encoder and decoder are very low level, and do not
// encode any OSC semantics beyond the wire format's alignment
// rules. It is the caller's responsibility to produce valid OSC
// packets using these tools.
//
// All encoding goes through a [Writer]. Two implementations are
// provided: [Buffer], a growable in-memory buffer, and [Discard],
// which stores nothing and is used to measure encodings. Writers
// that also implement [Sink] support placeholders, which let
// [Encoder.Frame] fill in a length prefix after the framed data has
// been written. Append-only writers, such as a network stream, get
// the same output by encoding each frame twice.
//
// You should not need to use this package directly, unless you are
// writing your own Writer to send packets somewhere other than a
// byte slice.
package fragments

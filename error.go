package osc

import (
	"errors"
	"fmt"
)

// ErrTooDeep is the reason given in a [ParseError] when bundles or
// arrays are nested more than [MaxDepth] levels deep.
var ErrTooDeep = errors.New("packet nested too deeply")

// ParseError is the error returned when bytes cannot be decoded as
// an OSC packet.
type ParseError struct {
	// Offset is the byte offset in the input at which decoding
	// failed.
	Offset int
	// Reason is an explanation of what's wrong with the input.
	Reason error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("invalid OSC packet at offset %d: %s", e.Offset, e.Reason)
}

func (e ParseError) Unwrap() error {
	return e.Reason
}

func parseErr(offset int, reason string, args ...any) error {
	return ParseError{offset, fmt.Errorf(reason, args...)}
}

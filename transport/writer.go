package transport

import (
	"io"

	"github.com/danderson/osc/fragments"
)

// AppendOnly adapts w to a [fragments.Writer]. The returned Writer
// does not implement [fragments.Sink], so packets encoded to it are
// written in a single forward pass, with bundle element lengths
// computed ahead of time.
func AppendOnly(w io.Writer) fragments.Writer {
	return appendOnly{w}
}

type appendOnly struct {
	w io.Writer
}

func (a appendOnly) Write(bs []byte) (int, error) {
	return a.w.Write(bs)
}

func (a appendOnly) Reserve(int) {}

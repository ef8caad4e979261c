package iostreams

import (
	"bytes"
	"io"
	"os"
)

// IOStreams bundles the process's input and output streams so commands
// can be exercised in tests without touching the real terminal.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// GetOSIOStreams returns streams bound to the real process streams
func GetOSIOStreams() *IOStreams {
	return &IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

// NewTestIOStreams returns buffer-backed streams plus the buffers for
// asserting on output
func NewTestIOStreams() (*IOStreams, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &IOStreams{
		In:     &bytes.Buffer{},
		Out:    out,
		ErrOut: errOut,
	}, out, errOut
}

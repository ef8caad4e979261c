package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Printer renders command results as formatted text or, with --json, a
// machine-readable document. Core results are structured values; this
// layer is the only place they become presentation.
type Printer struct {
	// JSON switches rendering to machine-readable output
	JSON bool
	// Color enables ANSI color on the text renderer
	Color bool
	// Quiet suppresses non-error text output
	Quiet bool

	Out    io.Writer
	ErrOut io.Writer
}

const (
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiReset  = "\x1b[0m"
)

// Success prints a success line unless quiet or JSON mode is active
func (p *Printer) Success(format string, args ...any) {
	p.textLine(p.Out, ansiGreen, "✓", format, args...)
}

// Info prints an informational line unless quiet or JSON mode is active
func (p *Printer) Info(format string, args ...any) {
	if p.Quiet || p.JSON {
		return
	}
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// Warn prints a warning line to stderr unless JSON mode is active
func (p *Printer) Warn(format string, args ...any) {
	p.textLine(p.ErrOut, ansiYellow, "!", format, args...)
}

// Error prints an error line to stderr. Errors print even in quiet mode.
func (p *Printer) Error(format string, args ...any) {
	if p.JSON {
		return
	}
	if p.Color {
		fmt.Fprintf(p.ErrOut, "%s✗%s "+format+"\n", append([]any{ansiRed, ansiReset}, args...)...)
		return
	}
	fmt.Fprintf(p.ErrOut, "✗ "+format+"\n", args...)
}

// Document renders v as indented JSON when --json is set. It is a no-op
// otherwise, letting commands emit both forms unconditionally.
func (p *Printer) Document(v any) error {
	if !p.JSON {
		return nil
	}
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) textLine(w io.Writer, color, mark, format string, args ...any) {
	if p.Quiet || p.JSON {
		return
	}
	if p.Color {
		fmt.Fprintf(w, "%s%s%s "+format+"\n", append([]any{color, mark, ansiReset}, args...)...)
		return
	}
	fmt.Fprintf(w, mark+" "+format+"\n", args...)
}

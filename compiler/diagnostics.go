package compiler

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Construct describes one source construct the generator could not lower.
type Construct struct {
	Kind    string            // node kind, e.g. "LambdaExpression"
	Context string            // enclosing type or method
	Attrs   map[string]string // what made this variant unsupported
}

// Key returns a unique string key for this construct (includes all attributes)
func (c Construct) Key() string {
	parts := []string{c.Kind}
	for _, k := range sortedKeys(c.Attrs) {
		parts = append(parts, fmt.Sprintf("%s=%s", k, c.Attrs[k]))
	}
	return strings.Join(parts, ":")
}

const (
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
	ansiReset  = "\033[0m"
)

// Diagnostics is the stream unsupported constructs and per-type failures
// are reported to. Nothing reported here stops the pass.
type Diagnostics struct {
	w          io.Writer
	color      bool
	constructs []Construct
	failures   []*TypeFailure
}

// NewDiagnostics writes to w, colored when w is a terminal.
func NewDiagnostics(w io.Writer) *Diagnostics {
	d := &Diagnostics{w: w}
	if f, ok := w.(*os.File); ok {
		d.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return d
}

func (d *Diagnostics) SetColor(on bool) { d.color = on }

func (d *Diagnostics) paint(code, s string) string {
	if !d.color {
		return s
	}
	return code + s + ansiReset
}

// Unsupported reports c on a single line.
func (d *Diagnostics) Unsupported(c Construct) {
	d.constructs = append(d.constructs, c)
	line := d.paint(ansiYellow+ansiBold, "unsupported: "+c.Kind)
	if c.Context != "" {
		line += " " + d.paint(ansiCyan, "-->") + " " + c.Context
	}
	if len(c.Attrs) > 0 {
		line += " (" + strings.TrimPrefix(c.Key(), c.Kind+":") + ")"
	}
	fmt.Fprintln(d.w, line)
}

// Failure reports a type whose generation was aborted.
func (d *Diagnostics) Failure(f *TypeFailure) {
	d.failures = append(d.failures, f)
	fmt.Fprintf(d.w, "%s %s %s\n", d.paint(ansiRed+ansiBold, "error:"), f.Type, f.Err)
}

func (d *Diagnostics) Constructs() []Construct { return d.constructs }

func (d *Diagnostics) Failures() []*TypeFailure { return d.failures }

// Package output renders child output for a terminal or as JSON lines.
package output

import (
	"fmt"
	"io"

	"github.com/jwalton/go-supportscolor"

	"github.com/vertti/ttysplit/pkg/child"
)

// Printer renders one spawn's output sequence and its final status.
type Printer interface {
	Line(out child.Output) error
	ReadError(err *child.ReadError) error
	Exit(status child.Status) error
}

// Color modes accepted by ColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorEnabled resolves a color mode. Auto follows what the terminal on
// stdout supports.
func ColorEnabled(mode string) (bool, error) {
	switch mode {
	case ColorAuto, "":
		return supportscolor.Stdout().SupportsColor, nil
	case ColorAlways:
		return true, nil
	case ColorNever:
		return false, nil
	default:
		return false, fmt.Errorf("invalid color mode %q (use %s, %s or %s)", mode, ColorAuto, ColorAlways, ColorNever)
	}
}

type palette struct {
	stdout, stderr, dim, reset string
}

var (
	colored = palette{stdout: "\033[32m", stderr: "\033[31m", dim: "\033[2m", reset: "\033[0m"}
	plain   = palette{}
)

// TextPrinter writes "[stdout] line" / "[stderr] line" to Out.
type TextPrinter struct {
	Out io.Writer
	// NoTag prints bare lines, without origin tags or the exit line.
	NoTag bool
	Color bool
}

func (p *TextPrinter) colors() palette {
	if p.Color {
		return colored
	}
	return plain
}

// Line prints one line of output.
func (p *TextPrinter) Line(out child.Output) error {
	if p.NoTag {
		_, err := fmt.Fprintln(p.Out, out.Line)
		return err
	}
	c := p.colors()
	color := c.stdout
	if out.Origin == child.Stderr {
		color = c.stderr
	}
	_, err := fmt.Fprintf(p.Out, "%s[%s]%s %s\n", color, out.Origin, c.reset, out.Line)
	return err
}

// ReadError reports a stream that ended with an error.
func (p *TextPrinter) ReadError(rerr *child.ReadError) error {
	c := p.colors()
	_, err := fmt.Fprintf(p.Out, "%s[error]%s %v\n", c.stderr, c.reset, rerr)
	return err
}

// Exit prints the final status, dimmed.
func (p *TextPrinter) Exit(status child.Status) error {
	if p.NoTag {
		return nil
	}
	c := p.colors()
	_, err := fmt.Fprintf(p.Out, "%s[exit] %s%s\n", c.dim, status, c.reset)
	return err
}

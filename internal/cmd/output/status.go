package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes colored status lines.
type Printer struct {
	w       io.Writer
	success *color.Color
	warning *color.Color
	failure *color.Color
	muted   *color.Color
}

// NewPrinter returns a printer writing to w. Colors are disabled when
// noColor is set or w is not a terminal.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:       w,
		success: color.New(color.FgGreen, color.Bold),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.Bold),
		muted:   color.New(color.FgHiBlack),
	}
	if noColor || color.NoColor {
		for _, c := range []*color.Color{p.success, p.warning, p.failure, p.muted} {
			c.DisableColor()
		}
	}
	return p
}

// Success prints a line marked with a check.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.success, "✓", format, args...)
}

// Warning prints a line marked with an exclamation.
func (p *Printer) Warning(format string, args ...any) {
	p.line(p.warning, "!", format, args...)
}

// Failure prints a line marked with a cross.
func (p *Printer) Failure(format string, args ...any) {
	p.line(p.failure, "✗", format, args...)
}

// Muted prints an indented detail line.
func (p *Printer) Muted(format string, args ...any) {
	_, _ = p.muted.Fprintf(p.w, "  "+format+"\n", args...)
}

func (p *Printer) line(c *color.Color, mark, format string, args ...any) {
	_, _ = c.Fprint(p.w, mark)
	_, _ = fmt.Fprintf(p.w, " "+format+"\n", args...)
}

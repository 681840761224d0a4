// internal/listing/listing.go
package listing

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styling
var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FF5F87"))

// Options contains configuration options for the listing sink
type Options struct {
	NoColor bool // Disable colored diagnostics even on a terminal
}

// Writer is the listing sink. Diagnostics and trace listings both flow
// through it; any diagnostic raises the error flag the driver polls
// between phases. Diagnostic lines are styled only when the destination
// is a terminal, so redirected listings stay byte-comparable.
type Writer struct {
	w       io.Writer
	color   bool
	errored bool
}

// NewWriter wraps w as a listing sink.
func NewWriter(w io.Writer, opts Options) *Writer {
	color := false
	if !opts.NoColor {
		if f, ok := w.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	return &Writer{w: w, color: color}
}

// Errorf writes one diagnostic line and raises the error flag.
func (w *Writer) Errorf(format string, args ...interface{}) {
	w.errored = true
	msg := fmt.Sprintf(format, args...)
	if w.color {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(w.w, msg)
}

// Printf writes listing text (dumps, trace output) unstyled.
func (w *Writer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(w.w, format, args...)
}

// Write lets table dumps and other listing producers treat the sink as
// a plain io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// HasErrors reports whether any diagnostic has been written.
func (w *Writer) HasErrors() bool { return w.errored }

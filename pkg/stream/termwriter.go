// Package stream renders a live TAP event stream to the terminal: progress on
// a single status line, failures and coverage tables as permanent output.
package stream

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/tapmonkey/pkg/statusline"
)

// termWriter is the single point of terminal output. Permanent lines are
// only ever written while the status line is stopped, so the two never
// interleave.
type termWriter struct {
	out    io.Writer
	line   statusline.Line
	width  int
	active bool
}

func newTermWriter(out io.Writer, line statusline.Line, width int) *termWriter {
	if line == nil {
		line = statusline.Nop{}
	}
	return &termWriter{out: out, line: line, width: width}
}

// PrintLine writes a line to the scrolling history. Always appends \n.
func (w *termWriter) PrintLine(s string) {
	fmt.Fprintln(w.out, s)
}

// StartLine makes the status line visible.
func (w *termWriter) StartLine() {
	w.line.Start()
	w.active = true
}

// StopLine hides the status line and reports whether it had been visible.
func (w *termWriter) StopLine() bool {
	was := w.active
	w.line.Stop()
	w.active = false
	return was
}

// SetStatus replaces the status line text. Callers fit it to the width first.
func (w *termWriter) SetStatus(s string) {
	w.line.SetText(s)
}

// Permanent prints lines with the status line suspended, then resumes it.
func (w *termWriter) Permanent(lines ...string) {
	w.StopLine()
	for _, l := range lines {
		w.PrintLine(l)
	}
	w.StartLine()
}

// fit truncates plain text so that reserved+text fits the terminal width.
// A width of zero disables truncation.
func (w *termWriter) fit(text string, reserved int) string {
	if w.width <= 0 {
		return text
	}
	avail := w.width - reserved
	if avail <= 1 {
		return runewidth.Truncate(text, 1, "")
	}
	return runewidth.Truncate(text, avail, "…")
}

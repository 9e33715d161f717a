package stream

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/tapmonkey/pkg/statusline"
	"github.com/dkoosis/tapmonkey/pkg/tap"
)

// frameWidth is the room the status line animation takes before the text.
var frameWidth = runewidth.StringWidth(statusline.Monkey.Frames[0])

// BailOutError reports that the producer bailed out. The run cannot go on.
type BailOutError struct {
	Raw string
}

func (e *BailOutError) Error() string {
	return e.Raw
}

// Options configure a Renderer.
type Options struct {
	Quiet   bool         // hide per-test and per-pass progress
	Theme   Theme        // zero value uses DefaultTheme
	HomeDir string       // shortened to ~ in failure locations
	Width   int          // terminal width for status text, 0 = unlimited
	Logger  *slog.Logger // nil uses slog.Default()
	Now     func() time.Time
}

// session is the mutable state of one run.
type session struct {
	start            time.Time
	hasFailures      bool
	currentTest      string
	printingCoverage bool
	borderCount      int
	finished         bool
}

// Renderer is the rendering state machine. Events must be delivered one at a
// time from a single goroutine.
type Renderer struct {
	tw     *termWriter
	errOut io.Writer
	format Formatter
	quiet  bool
	log    *slog.Logger
	now    func() time.Time

	s session
}

// NewRenderer creates a Renderer writing permanent output to out, fatal
// messages to errOut, and progress to line. The run's clock starts now.
func NewRenderer(out, errOut io.Writer, line statusline.Line, opts Options) *Renderer {
	if opts.Theme.Name == "" {
		opts.Theme = DefaultTheme()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renderer{
		tw:     newTermWriter(out, line, opts.Width),
		errOut: errOut,
		format: Formatter{Theme: opts.Theme, HomeDir: opts.HomeDir},
		quiet:  opts.Quiet,
		log:    opts.Logger,
		now:    opts.Now,
		s:      session{start: opts.Now()},
	}
}

// Handle performs the rendering action for one event. It returns a
// *BailOutError for a bail-out and an error wrapping ErrTooManyBorders for a
// malformed coverage table; both end the run.
func (r *Renderer) Handle(e tap.Event) error {
	if r.s.finished {
		r.log.Debug("event after summary ignored", "kind", e.Kind())
		return nil
	}

	switch e := e.(type) {
	case tap.TestEvent:
		r.handleTest(e)
	case tap.AssertEvent:
		if e.Passed() {
			r.handlePass(e)
		} else {
			r.handleFail(e)
		}
	case tap.CommentEvent:
		return r.handleComment(e)
	case tap.BailOutEvent:
		return r.handleBailOut(e)
	case tap.SummaryEvent:
		r.handleSummary(e)
	default:
		return fmt.Errorf("unhandled event %T", e)
	}
	return nil
}

// Close stops the status line. Safe to call more than once.
func (r *Renderer) Close() {
	r.tw.StopLine()
}

// HasFailures reports whether any assertion has failed so far.
func (r *Renderer) HasFailures() bool {
	return r.s.hasFailures
}

// CurrentTest returns the name of the last test group seen.
func (r *Renderer) CurrentTest() string {
	return r.s.currentTest
}

func (r *Renderer) handleTest(e tap.TestEvent) {
	r.tw.StartLine()
	r.s.currentTest = e.Name
	if r.quiet {
		return
	}
	const before, after = "Running ", " tests"
	name := r.tw.fit(e.Name, frameWidth+len(before)+len(after))
	r.tw.SetStatus(before + r.format.Theme.Underline.Render(name) + after)
}

func (r *Renderer) handlePass(e tap.AssertEvent) {
	if r.quiet {
		return
	}
	icon := r.format.Theme.Icons.Pass
	name := r.tw.fit(e.Name, frameWidth+runewidth.StringWidth(icon)+1)
	r.tw.SetStatus(r.format.Theme.Success.Render(icon) + " " + name)
}

func (r *Renderer) handleFail(e tap.AssertEvent) {
	r.s.hasFailures = true
	lines := r.format.Failure(e.Name, e.Error)
	if !r.s.printingCoverage {
		r.tw.Permanent(lines...)
		return
	}
	// The status line stays down once a coverage table has started.
	for _, l := range lines {
		r.tw.PrintLine(l)
	}
}

func (r *Renderer) handleComment(e tap.CommentEvent) error {
	border := IsBorder(e.Raw)

	if !r.s.printingCoverage && !border {
		text := strings.TrimSpace(e.Raw)
		if text == "" {
			return nil
		}
		r.tw.Permanent(joinNonEmpty(r.format.Theme.Icons.Comment, text))
		return nil
	}

	if !r.s.printingCoverage {
		r.s.printingCoverage = true
		r.tw.StopLine()
		r.log.Debug("coverage report started")
	}

	if !border {
		r.tw.PrintLine(CoverageRow(e.Raw))
		return nil
	}
	r.s.borderCount++
	line, err := CoverageBorder(e.Raw, r.s.borderCount)
	if err != nil {
		return fmt.Errorf("rendering coverage: %w", err)
	}
	r.tw.PrintLine(line)
	return nil
}

func (r *Renderer) handleBailOut(e tap.BailOutEvent) error {
	r.tw.StopLine()
	fmt.Fprintln(r.errOut, r.format.Theme.Error.Render(e.Raw))
	return &BailOutError{Raw: e.Raw}
}

func (r *Renderer) handleSummary(e tap.SummaryEvent) {
	r.tw.StopLine()
	r.s.finished = true

	totals := TotalsOf(e, r.now().Sub(r.s.start))
	failed := r.s.hasFailures || totals.Failing > 0
	for _, l := range r.format.Summary(totals, failed) {
		r.tw.PrintLine(l)
	}
}

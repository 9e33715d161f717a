package tap

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	versionRe   = regexp.MustCompile(`(?i)^TAP version (\d+)\s*$`)
	planRe      = regexp.MustCompile(`^(\d+)\.\.(\d+)`)
	assertRe    = regexp.MustCompile(`^(not )?ok\b\s*(\d+)?\s*(?:-\s+)?(.*)$`)
	directiveRe = regexp.MustCompile(`(?i)^(.*?)\s*#\s*(skip|todo)\b`)
	resultRe    = regexp.MustCompile(`^#\s*(?:(?:tests|pass|fail|todo|skip)\s+\d+|(?:not )?ok)\s*$`)
	testRe      = regexp.MustCompile(`^#\s*(.*?)\s*$`)
	bailOutRe   = regexp.MustCompile(`^Bail out!\s*(.*)$`)
)

// parser turns TAP lines into events. Failing asserts are held back until
// their YAML block (if any) has been read, so emitted order is source order.
// Passing asserts go out at once; a block under one is read and dropped.
type parser struct {
	emit ProcessFunc

	pending     *AssertEvent
	afterAssert bool
	inYAML      bool
	yamlIndent  string
	yamlLines   []string

	summary SummaryEvent
}

func newParser(fn ProcessFunc) *parser {
	return &parser{emit: fn}
}

func (p *parser) line(line string) {
	line = strings.TrimRight(line, "\r")
	trimmed := strings.TrimSpace(line)

	if p.inYAML {
		if trimmed == "..." {
			p.closeYAML()
			return
		}
		p.yamlLines = append(p.yamlLines, line)
		return
	}

	if p.afterAssert && trimmed == "---" {
		p.afterAssert = false
		p.inYAML = true
		p.yamlIndent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		p.yamlLines = p.yamlLines[:0]
		return
	}
	p.flushAssert()
	p.afterAssert = false

	if trimmed == "" {
		return
	}

	if m := versionRe.FindStringSubmatch(line); m != nil {
		p.summary.Version, _ = strconv.Atoi(m[1])
		return
	}
	if m := planRe.FindStringSubmatch(line); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		p.summary.Plans = append(p.summary.Plans, Plan{From: from, To: to})
		return
	}
	if m := assertRe.FindStringSubmatch(line); m != nil {
		p.pending = newAssert(line, m)
		p.afterAssert = true
		if p.pending.OK {
			p.flushAssert()
		}
		return
	}
	if resultRe.MatchString(line) {
		return
	}
	if m := testRe.FindStringSubmatch(line); m != nil {
		p.emit(TestEvent{Name: m[1]})
		return
	}
	if m := bailOutRe.FindStringSubmatch(line); m != nil {
		p.emit(BailOutEvent{Raw: line, Reason: m[1]})
		return
	}
	p.emit(CommentEvent{Raw: line})
}

func newAssert(line string, m []string) *AssertEvent {
	a := &AssertEvent{OK: m[1] == "", Raw: line}
	a.Number, _ = strconv.Atoi(m[2])
	a.Name = strings.TrimSpace(m[3])
	if d := directiveRe.FindStringSubmatch(a.Name); d != nil {
		a.Name = d[1]
		a.Directive = Directive(strings.ToUpper(d[2]))
	}
	if !a.OK {
		a.Error = &FailureDetail{}
	}
	return a
}

func (p *parser) closeYAML() {
	p.inYAML = false
	if p.pending != nil && !p.pending.OK {
		detail, err := decodeDiagnostic(p.yamlLines, p.yamlIndent)
		if err != nil {
			slog.Debug("undecodable diagnostic block", "assert", p.pending.Number, "error", err)
		}
		p.pending.Error = detail
	}
	p.flushAssert()
}

func (p *parser) flushAssert() {
	if p.pending == nil {
		return
	}
	a := *p.pending
	p.pending = nil

	p.summary.Asserts = append(p.summary.Asserts, a)
	if a.Passed() {
		p.summary.Pass = append(p.summary.Pass, a)
	} else {
		p.summary.Fail = append(p.summary.Fail, a)
	}
	p.emit(a)
}

// finish flushes any open assert and emits the summary.
func (p *parser) finish() {
	if p.inYAML {
		p.closeYAML()
	}
	p.flushAssert()
	p.emit(p.summary)
}

// scanResult carries a scanned line or terminal error from the scanner goroutine.
type scanResult struct {
	line string
	err  error
}

// Stream parses TAP from r line by line and calls fn for each event, ending
// with a single SummaryEvent at EOF. Stops early when ctx is cancelled, in
// which case no summary is emitted.
//
// The scanner runs in a background goroutine. On cancel, Stream closes r if
// it implements io.Closer; otherwise the caller must close the underlying
// reader to release the goroutine.
func Stream(ctx context.Context, r io.Reader, fn ProcessFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make(chan scanResult)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanResult{line: scanner.Text()}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- scanResult{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	p := newParser(fn)
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return ctx.Err()
		case res, ok := <-lines:
			if !ok {
				p.finish()
				return nil
			}
			if res.err != nil {
				return fmt.Errorf("scanning TAP input: %w", res.err)
			}
			p.line(res.line)
		}
	}
}

// Parse reads all of r and returns its events in order.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event
	err := Stream(context.Background(), r, func(e Event) {
		events = append(events, e)
	})
	return events, err
}

// ParseString is a convenience for parsing an in-memory document.
func ParseString(s string) ([]Event, error) {
	return Parse(strings.NewReader(s))
}
